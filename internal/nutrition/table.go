// Package nutrition provides the static age/sex reference table used to
// default a profile's daily macro targets.
package nutrition

// Sex is the biological sex used by the reference table.
type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

// Targets are daily macro goals. Calories in kcal, the rest in grams.
type Targets struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

const (
	minAge = 1
	maxAge = 120
)

// Lookup returns the recommended daily nutrition for the given age and sex.
// Age is clamped into [1,120] before band lookup, so the function is total:
// every input resolves to exactly one tabulated tuple.
func Lookup(age int, sex Sex) Targets {
	if age < minAge {
		age = minAge
	}
	if age > maxAge {
		age = maxAge
	}
	male := sex == Male

	return Targets{
		Calories: calories(age, male),
		Protein:  protein(age, male),
		Fat:      fat(age, male),
		Carbs:    carbs(age),
	}
}

func calories(age int, male bool) float64 {
	switch {
	case age <= 6:
		return pick(male, 1200, 1100)
	case age <= 18:
		return pick(male, 1700, 1500)
	case age <= 60:
		return pick(male, 2400, 1800)
	default:
		return pick(male, 2000, 1600)
	}
}

func protein(age int, male bool) float64 {
	switch {
	case age <= 3:
		return 13
	case age <= 8:
		return 19
	case age <= 13:
		return 34
	case age <= 18:
		return pick(male, 52, 46)
	default:
		return pick(male, 56, 46)
	}
}

func fat(age int, male bool) float64 {
	switch {
	case age <= 6:
		return pick(male, 47, 43)
	case age <= 18:
		return pick(male, 57, 50)
	case age <= 60:
		return pick(male, 73, 55)
	default:
		return pick(male, 61, 49)
	}
}

func carbs(age int) float64 {
	switch {
	case age <= 5:
		return 250
	case age <= 9:
		return 350
	default:
		return 400
	}
}

func pick(male bool, m, f float64) float64 {
	if male {
		return m
	}
	return f
}
