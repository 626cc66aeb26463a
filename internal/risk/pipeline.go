// Package risk implements the allergen risk analysis pipeline: label OCR,
// ingredient identification, risk scoring, and risk-gated alternative
// suggestions.
package risk

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"text/template"
	"time"

	"github.com/ankush0511/nutriwise/internal/llm"
	"github.com/ankush0511/nutriwise/internal/parse"
	"github.com/ankush0511/nutriwise/internal/shared"

	"github.com/google/uuid"
)

//go:embed extractor_prompt.md
var extractorPrompt string

//go:embed scoring_prompt.md
var scoringPrompt string

//go:embed alternatives_prompt.md
var alternativesPrompt string

const ocrPrompt = "extract all the text from the image"

// Stage names a pipeline step for diagnostics. Every error leaving the
// pipeline is tagged with the stage that produced it.
type Stage string

const (
	StageTextExtraction  Stage = "text extraction"
	StageIngredientIdent Stage = "ingredient identification"
	StageRiskScoring     Stage = "risk scoring"
	StageAlternatives    Stage = "alternative suggestions"
)

// StageError wraps a failure with the pipeline stage it occurred in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// IngredientList is the structured output of the identification step.
type IngredientList struct {
	Ingredients []string `json:"ingredients"`
	Contains    []string `json:"contains"`
}

// Assessment is the scoring step's verdict. RiskScore is in [0,1].
type Assessment struct {
	AllergensFound []string `json:"allergens_found"`
	RiskScore      float64  `json:"risk_score"`
	Explanation    string   `json:"explanation"`
}

// Alternative is one substitute product suggestion. AllergenProfile is kept
// raw because models return either a mapping or a free-form string.
type Alternative struct {
	ProductName     string          `json:"product_name"`
	Reason          string          `json:"reason"`
	AllergenProfile json.RawMessage `json:"allergen_profile,omitempty"`
}

// Result is the terminal state of one pipeline run.
type Result struct {
	RunID         string         `json:"run_id"`
	ExtractedText string         `json:"extracted_text"`
	Ingredients   IngredientList `json:"ingredients"`
	Assessment    Assessment     `json:"assessment"`
	// AssessmentParsed is false when scoring output could not be parsed and
	// the zero-risk fallback was applied.
	AssessmentParsed bool `json:"assessment_parsed"`
	// AlternativesSkipped is true when the risk score stayed below the
	// threshold and the alternatives call was never made.
	AlternativesSkipped bool          `json:"alternatives_skipped"`
	Alternatives        []Alternative `json:"alternatives,omitempty"`
	// AlternativesRaw carries the model's raw text when the alternatives
	// response could not be parsed into structured suggestions.
	AlternativesRaw string `json:"alternatives_raw,omitempty"`

	Metas []shared.AgentMeta `json:"-"`
}

// Pipeline runs the analysis stages strictly in sequence. Alternatives are
// expensive and only requested when the score reaches the threshold.
type Pipeline struct {
	vision     llm.VisionAnalyzer
	extractor  llm.TextGenerator
	scorer     llm.TextGenerator
	alternates llm.TextGenerator
	threshold  float64
}

// NewPipeline creates a Pipeline from the injected model clients.
func NewPipeline(vision llm.VisionAnalyzer, extractor, scorer, alternates llm.TextGenerator, threshold float64) *Pipeline {
	return &Pipeline{
		vision:     vision,
		extractor:  extractor,
		scorer:     scorer,
		alternates: alternates,
		threshold:  threshold,
	}
}

// Analyze runs the full pipeline for one uploaded label image against the
// user's allergy set. It halts on the first stage failure; the returned
// error identifies the failing stage.
func (p *Pipeline) Analyze(ctx context.Context, mimeType string, image []byte, allergies []string) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}

	// Stage 1: extract raw text from the label image.
	text, err := p.extractText(ctx, mimeType, image, result)
	if err != nil {
		return nil, err
	}
	result.ExtractedText = text

	// Stage 2: identify ingredients from the raw text.
	rawIngredients, err := p.identifyIngredients(ctx, text, result)
	if err != nil {
		return nil, err
	}

	// Stage 3: score the ingredients against the allergy set.
	rawScoring, err := p.scoreRisk(ctx, rawIngredients, allergies, result)
	if err != nil {
		return nil, err
	}

	// Stage 4: alternatives only when scoring justified the extra call.
	if result.Assessment.RiskScore < p.threshold {
		result.AlternativesSkipped = true
		return result, nil
	}
	if err := p.suggestAlternatives(ctx, rawScoring, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Pipeline) extractText(ctx context.Context, mimeType string, image []byte, result *Result) (string, error) {
	if len(image) == 0 {
		return "", &StageError{Stage: StageTextExtraction, Err: fmt.Errorf("no image provided")}
	}

	start := time.Now()
	resp, err := p.vision.GenerateFromImage(ctx, ocrPrompt, mimeType, image)
	if err != nil {
		return "", &StageError{Stage: StageTextExtraction, Err: err}
	}
	result.Metas = append(result.Metas, meta("RiskOCR", resp.Usage, start))

	if strings.TrimSpace(resp.Content) == "" {
		return "", &StageError{Stage: StageTextExtraction, Err: fmt.Errorf("no readable text in image")}
	}
	return resp.Content, nil
}

func (p *Pipeline) identifyIngredients(ctx context.Context, text string, result *Result) (string, error) {
	prompt, err := buildPrompt("extractor", extractorPrompt, struct{ Text string }{Text: text})
	if err != nil {
		return "", &StageError{Stage: StageIngredientIdent, Err: err}
	}

	start := time.Now()
	resp, err := p.extractor.GenerateContent(ctx, prompt)
	if err != nil {
		return "", &StageError{Stage: StageIngredientIdent, Err: err}
	}
	result.Metas = append(result.Metas, meta("IngredientExtractor", resp.Usage, start))

	if strings.TrimSpace(resp.Content) == "" {
		return "", &StageError{Stage: StageIngredientIdent, Err: fmt.Errorf("empty model response")}
	}

	// Structured parse is best effort; the raw content is what downstream
	// scoring consumes.
	parse.ExtractInto(resp.Content, &result.Ingredients)
	return resp.Content, nil
}

func (p *Pipeline) scoreRisk(ctx context.Context, rawIngredients string, allergies []string, result *Result) (string, error) {
	prompt, err := buildPrompt("scoring", scoringPrompt, struct {
		Ingredients string
		Allergies   string
	}{
		Ingredients: rawIngredients,
		Allergies:   strings.Join(allergies, ", "),
	})
	if err != nil {
		return "", &StageError{Stage: StageRiskScoring, Err: err}
	}

	start := time.Now()
	resp, err := p.scorer.GenerateContent(ctx, prompt)
	if err != nil {
		return "", &StageError{Stage: StageRiskScoring, Err: err}
	}
	result.Metas = append(result.Metas, meta("RiskScorer", resp.Usage, start))

	if strings.TrimSpace(resp.Content) == "" {
		return "", &StageError{Stage: StageRiskScoring, Err: fmt.Errorf("empty model response")}
	}

	if parse.ExtractInto(resp.Content, &result.Assessment) {
		result.AssessmentParsed = true
	} else {
		// Fallback policy: an unparsable verdict is treated as no risk,
		// not as a pipeline failure.
		log.Printf("risk: could not parse scoring response for run %s, defaulting to risk_score=0", result.RunID)
		result.Assessment = Assessment{RiskScore: 0}
	}
	return resp.Content, nil
}

func (p *Pipeline) suggestAlternatives(ctx context.Context, rawScoring string, result *Result) error {
	prompt, err := buildPrompt("alternatives", alternativesPrompt, struct{ Assessment string }{Assessment: rawScoring})
	if err != nil {
		return &StageError{Stage: StageAlternatives, Err: err}
	}

	start := time.Now()
	resp, err := p.alternates.GenerateContent(ctx, prompt)
	if err != nil {
		return &StageError{Stage: StageAlternatives, Err: err}
	}
	result.Metas = append(result.Metas, meta("AlternativesAgent", resp.Usage, start))

	var suggestions struct {
		AlternativeSuggestions []Alternative `json:"alternative_suggestions"`
	}
	cleaned := parse.StripFences(resp.Content)
	if err := json.Unmarshal([]byte(cleaned), &suggestions); err != nil || len(suggestions.AlternativeSuggestions) == 0 {
		// Degraded terminal state: surface the raw text instead of failing.
		result.AlternativesRaw = resp.Content
		return nil
	}
	result.Alternatives = suggestions.AlternativeSuggestions
	return nil
}

func meta(agent string, usage shared.TokenUsage, start time.Time) shared.AgentMeta {
	return shared.AgentMeta{
		AgentName: agent,
		Usage:     usage,
		Latency:   time.Since(start),
	}
}

func buildPrompt(name, raw string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(raw)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
