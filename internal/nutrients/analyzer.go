// Package nutrients looks up per-food nutritional profiles through a
// generation call and parses the response into a per-item map.
package nutrients

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
	"github.com/ankush0511/nutriwise/internal/parse"
	"github.com/ankush0511/nutriwise/internal/shared"
)

//go:embed nutrients_prompt.md
var nutrientsPrompt string

// Profile is one food item's nutritional breakdown. Keys are the nutrient
// names from the lookup contract; values are numeric where the model
// complied and left as-is otherwise.
type Profile map[string]any

// Result holds a batch lookup. When the response could not be parsed,
// Parsed is false and Raw carries the model text for the caller to show.
type Result struct {
	Profiles map[string]Profile `json:"profiles,omitempty"`
	Raw      string             `json:"raw,omitempty"`
	Parsed   bool               `json:"parsed"`
	Meta     shared.AgentMeta   `json:"-"`
}

// Analyzer performs nutrient profile lookups.
type Analyzer struct {
	textGen llm.TextGenerator
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer(textGen llm.TextGenerator) *Analyzer {
	return &Analyzer{textGen: textGen}
}

// Analyze looks up the nutritional profile for each given food item.
func (a *Analyzer) Analyze(ctx context.Context, items []string) (*Result, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("no food items given")
	}

	prompt, err := buildPrompt(items)
	if err != nil {
		return nil, fmt.Errorf("failed to build nutrient prompt: %w", err)
	}

	start := time.Now()
	resp, err := a.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("nutrient lookup failed: %w", err)
	}

	result := &Result{
		Meta: shared.AgentMeta{
			AgentName: "NutrientAgent",
			Usage:     resp.Usage,
			Latency:   time.Since(start),
		},
	}

	var profiles map[string]Profile
	if parse.ExtractInto(resp.Content, &profiles) && len(profiles) > 0 {
		result.Profiles = profiles
		result.Parsed = true
		return result, nil
	}

	log.Printf("nutrients: unparsable lookup response, returning raw text")
	result.Raw = parse.StripFences(resp.Content)
	return result, nil
}

func buildPrompt(items []string) (string, error) {
	tmpl, err := template.New("nutrients").Parse(nutrientsPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct{ Items string }{Items: strings.Join(items, ", ")})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
