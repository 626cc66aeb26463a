package nutrition

import "testing"

func TestLookup(t *testing.T) {
	t.Run("AdultMale", func(t *testing.T) {
		got := Lookup(25, Male)
		want := Targets{Calories: 2400, Protein: 56, Fat: 73, Carbs: 400}
		if got != want {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	})

	t.Run("AdultFemale", func(t *testing.T) {
		got := Lookup(25, Female)
		want := Targets{Calories: 1800, Protein: 46, Fat: 55, Carbs: 400}
		if got != want {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	})

	t.Run("CalorieBoundary6vs7", func(t *testing.T) {
		if got := Lookup(6, Male).Calories; got != 1200 {
			t.Errorf("Expected 1200 kcal at age 6, got %v", got)
		}
		if got := Lookup(7, Male).Calories; got != 1700 {
			t.Errorf("Expected 1700 kcal at age 7, got %v", got)
		}
	})

	t.Run("CalorieBoundary60vs61", func(t *testing.T) {
		if got := Lookup(60, Female).Calories; got != 1800 {
			t.Errorf("Expected 1800 kcal at age 60, got %v", got)
		}
		if got := Lookup(61, Female).Calories; got != 1600 {
			t.Errorf("Expected 1600 kcal at age 61, got %v", got)
		}
	})

	t.Run("ProteinBands", func(t *testing.T) {
		cases := []struct {
			age  int
			sex  Sex
			want float64
		}{
			{1, Male, 13},
			{3, Female, 13},
			{4, Male, 19},
			{8, Female, 19},
			{9, Male, 34},
			{13, Female, 34},
			{14, Male, 52},
			{18, Female, 46},
			{19, Male, 56},
			{120, Female, 46},
		}
		for _, c := range cases {
			if got := Lookup(c.age, c.sex).Protein; got != c.want {
				t.Errorf("age=%d sex=%s: expected protein %v, got %v", c.age, c.sex, c.want, got)
			}
		}
	})

	t.Run("ClampOutOfRange", func(t *testing.T) {
		if got, want := Lookup(0, Male), Lookup(1, Male); got != want {
			t.Errorf("Expected age 0 to clamp to age 1: got %+v want %+v", got, want)
		}
		if got, want := Lookup(200, Female), Lookup(120, Female); got != want {
			t.Errorf("Expected age 200 to clamp to age 120: got %+v want %+v", got, want)
		}
	})

	t.Run("TotalOverDomain", func(t *testing.T) {
		// Every age in [1,120] must resolve to a tabulated tuple with no zeros.
		for age := 1; age <= 120; age++ {
			for _, sex := range []Sex{Male, Female} {
				got := Lookup(age, sex)
				if got.Calories == 0 || got.Protein == 0 || got.Fat == 0 || got.Carbs == 0 {
					t.Fatalf("age=%d sex=%s: incomplete targets %+v", age, sex, got)
				}
			}
		}
	})
}
