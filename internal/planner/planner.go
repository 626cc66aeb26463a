// Package planner generates a four-slot daily meal plan against a user's
// macro targets and aggregates the results into an exportable document.
package planner

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log"
	"strings"
	"text/template"
	"time"

	"github.com/ankush0511/nutriwise/internal/llm"
	"github.com/ankush0511/nutriwise/internal/nutrition"
	"github.com/ankush0511/nutriwise/internal/parse"
	"github.com/ankush0511/nutriwise/internal/shared"
)

//go:embed meal_prompt.md
var mealPrompt string

// Planner handles the generation of daily meal plans.
type Planner struct {
	textGen llm.TextGenerator
}

// NewPlanner creates a new Planner instance.
func NewPlanner(textGen llm.TextGenerator) *Planner {
	return &Planner{textGen: textGen}
}

// GenerateDailyPlan runs one generation call per slot, strictly in order.
// Recipe names produced by earlier slots are passed to later calls as an
// exclusion list. A failed slot is recorded with a warning and an empty
// recipe list; it never aborts the remaining slots.
func (p *Planner) GenerateDailyPlan(ctx context.Context, daily nutrition.Targets, allergies []string) (*DailyPlan, []shared.AgentMeta, error) {
	plan := &DailyPlan{}
	var metas []shared.AgentMeta
	var producedNames []string

	for _, slot := range Slots {
		target := SlotTarget(daily, slot)
		slotPlan, meta, err := p.generateSlot(ctx, slot, target, producedNames, allergies)
		if meta != nil {
			metas = append(metas, *meta)
		}
		if err != nil {
			warning := fmt.Sprintf("%s generation failed: %v", slot, err)
			log.Printf("planner: %s", warning)
			plan.Warnings = append(plan.Warnings, warning)
			plan.Slots = append(plan.Slots, SlotPlan{
				Slot:   slot,
				Target: target,
				Failed: true,
				Error:  err.Error(),
			})
			continue
		}

		for _, rec := range slotPlan.Recipes {
			producedNames = append(producedNames, rec.RecipeName)
		}
		plan.Slots = append(plan.Slots, *slotPlan)
	}

	if len(plan.Recipes()) == 0 {
		return nil, metas, fmt.Errorf("all meal slots failed to generate")
	}
	return plan, metas, nil
}

func (p *Planner) generateSlot(ctx context.Context, slot Slot, target nutrition.Targets, excluded, allergies []string) (*SlotPlan, *shared.AgentMeta, error) {
	prompt, err := buildMealPrompt(slot, target, excluded, allergies)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	resp, err := p.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, nil, fmt.Errorf("generation call failed: %w", err)
	}

	meta := &shared.AgentMeta{
		AgentName: "MealPlanner",
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}

	var parsed struct {
		Recipes        []Recipe  `json:"recipes"`
		TotalNutrients Nutrients `json:"total_nutrients"`
	}
	if !parse.ExtractInto(resp.Content, &parsed) {
		return nil, meta, fmt.Errorf("unparsable model response")
	}
	if len(parsed.Recipes) == 0 {
		return nil, meta, fmt.Errorf("model returned no recipes")
	}

	return &SlotPlan{
		Slot:           slot,
		Target:         target,
		Recipes:        parsed.Recipes,
		TotalNutrients: parsed.TotalNutrients,
	}, meta, nil
}

func buildMealPrompt(slot Slot, target nutrition.Targets, excluded, allergies []string) (string, error) {
	tmpl, err := template.New("meal").Parse(mealPrompt)
	if err != nil {
		return "", err
	}

	data := struct {
		Slot      Slot
		Calories  float64
		Carbs     float64
		Fats      float64
		Protein   float64
		Allergies string
		Excluded  string
	}{
		Slot:      slot,
		Calories:  target.Calories,
		Carbs:     target.Carbs,
		Fats:      target.Fat,
		Protein:   target.Protein,
		Allergies: listOrNone(allergies),
		Excluded:  listOrNone(excluded),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
