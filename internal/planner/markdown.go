package planner

import (
	"fmt"
	"strconv"
	"strings"
)

// Markdown renders the plan as the downloadable document. Recipes appear in
// insertion order across slots; ingredient lines are `name: quantity unit`
// and nutrient lines carry their literal unit suffixes.
func (p *DailyPlan) Markdown() string {
	var b strings.Builder
	b.WriteString("# Daily Meal Plan\n\n")

	for i, rec := range p.Recipes() {
		fmt.Fprintf(&b, "## Recipe %d: %s\n\n", i+1, rec.RecipeName)

		b.WriteString("### Ingredients:\n")
		for _, ing := range rec.Ingredients {
			fmt.Fprintf(&b, "- %s: %s %s\n", ing.Name, formatQuantity(ing.Quantity), ing.Unit)
		}

		b.WriteString("\n### Nutrition:\n")
		fmt.Fprintf(&b, "- Calories: %s\n", formatQuantity(rec.Nutrients.Calories))
		fmt.Fprintf(&b, "- Carbs: %sg\n", formatQuantity(rec.Nutrients.Carbohydrates))
		fmt.Fprintf(&b, "- Fats: %sg\n", formatQuantity(rec.Nutrients.Fats))
		fmt.Fprintf(&b, "- Proteins: %sg\n\n", formatQuantity(rec.Nutrients.Proteins))
	}

	return b.String()
}

func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
