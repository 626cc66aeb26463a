package planner

import "github.com/ankush0511/nutriwise/internal/nutrition"

// Slot is one of the four daily meal periods.
type Slot string

const (
	Breakfast Slot = "breakfast"
	Lunch     Slot = "lunch"
	Dinner    Slot = "dinner"
	Snack     Slot = "snack"
)

// Slots lists the meal periods in plan order.
var Slots = []Slot{Breakfast, Lunch, Dinner, Snack}

// slotFractions allocate the daily targets across slots. They sum to 1.0.
var slotFractions = map[Slot]float64{
	Breakfast: 0.25,
	Lunch:     0.30,
	Dinner:    0.30,
	Snack:     0.15,
}

// Fraction returns the share of the daily targets assigned to a slot.
// Unknown slots get the snack share, matching the original planner's
// catch-all branch.
func Fraction(slot Slot) float64 {
	if f, ok := slotFractions[slot]; ok {
		return f
	}
	return slotFractions[Snack]
}

// SlotTarget scales each daily macro target by the slot's fraction.
func SlotTarget(daily nutrition.Targets, slot Slot) nutrition.Targets {
	f := Fraction(slot)
	return nutrition.Targets{
		Calories: daily.Calories * f,
		Protein:  daily.Protein * f,
		Fat:      daily.Fat * f,
		Carbs:    daily.Carbs * f,
	}
}

// Nutrients is the macronutrient breakdown of one recipe or slot total.
type Nutrients struct {
	Calories      float64 `json:"calories"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fats          float64 `json:"fats"`
	Proteins      float64 `json:"proteins"`
}

// Ingredient is one recipe ingredient with its quantity and unit.
type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Recipe is one generated recipe. Immutable once returned by the model.
type Recipe struct {
	RecipeName  string       `json:"recipe_name"`
	Ingredients []Ingredient `json:"ingredients"`
	Nutrients   Nutrients    `json:"nutrients"`
}

// SlotPlan holds the recipes generated for one meal period.
type SlotPlan struct {
	Slot           Slot              `json:"slot"`
	Target         nutrition.Targets `json:"target"`
	Recipes        []Recipe          `json:"recipes"`
	TotalNutrients Nutrients         `json:"total_nutrients"`
	// Failed marks a slot whose generation call did not produce usable
	// recipes. The rest of the plan is unaffected.
	Failed bool   `json:"failed,omitempty"`
	Error  string `json:"error,omitempty"`
}

// DailyPlan is the aggregated result across all four meal periods.
type DailyPlan struct {
	ProfileName string     `json:"profile_name,omitempty"`
	Slots       []SlotPlan `json:"slots"`
	Warnings    []string   `json:"warnings,omitempty"`
}

// Recipes returns all recipes across slots in insertion order.
func (p *DailyPlan) Recipes() []Recipe {
	var all []Recipe
	for _, slot := range p.Slots {
		all = append(all, slot.Recipes...)
	}
	return all
}
