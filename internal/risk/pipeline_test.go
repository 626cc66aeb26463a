package risk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ankush0511/nutriwise/internal/llm"
)

type mockVision struct {
	content string
	err     error
}

func (m *mockVision) GenerateFromImage(ctx context.Context, prompt, mimeType string, image []byte) (llm.ContentResponse, error) {
	if m.err != nil {
		return llm.ContentResponse{}, m.err
	}
	return llm.ContentResponse{Content: m.content}, nil
}

type mockTextGen struct {
	content string
	err     error
	calls   int
}

func (m *mockTextGen) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.calls++
	if m.err != nil {
		return llm.ContentResponse{}, m.err
	}
	return llm.ContentResponse{Content: m.content}, nil
}

const scoringLow = `{"allergens_found": [], "risk_score": 0.3, "explanation": "trace presence"}`
const scoringHigh = `{"allergens_found": ["milk", "nuts"], "risk_score": 1.0, "explanation": "multiple allergens"}`
const alternativesJSON = `{"alternative_suggestions": [
	{"product_name": "Oat Drink", "reason": "dairy free", "allergen_profile": {"milk": "absent"}},
	{"product_name": "Seed Butter", "reason": "nut free", "allergen_profile": "no nuts"},
	{"product_name": "Rice Crackers", "reason": "clean label"}
]}`

func newTestPipeline(vision *mockVision, extractor, scorer, alternates *mockTextGen, threshold float64) *Pipeline {
	return NewPipeline(vision, extractor, scorer, alternates, threshold)
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()
	image := []byte{0xff, 0xd8}
	allergies := []string{"milk", "nuts"}

	t.Run("LowRiskSkipsAlternatives", func(t *testing.T) {
		alternates := &mockTextGen{content: alternativesJSON}
		p := newTestPipeline(
			&mockVision{content: "INGREDIENTS: rice, salt"},
			&mockTextGen{content: `{"ingredients": ["rice", "salt"], "contains": []}`},
			&mockTextGen{content: scoringLow},
			alternates,
			1.0,
		)

		result, err := p.Analyze(ctx, "image/png", image, allergies)
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if !result.AlternativesSkipped {
			t.Error("Expected alternatives to be skipped for low risk")
		}
		if len(result.Alternatives) != 0 {
			t.Errorf("Expected no alternatives, got %d", len(result.Alternatives))
		}
		if alternates.calls != 0 {
			t.Errorf("Expected no alternatives call, got %d", alternates.calls)
		}
		if result.Assessment.RiskScore != 0.3 {
			t.Errorf("Expected risk score 0.3, got %v", result.Assessment.RiskScore)
		}
	})

	t.Run("HighRiskInvokesAlternatives", func(t *testing.T) {
		alternates := &mockTextGen{content: alternativesJSON}
		p := newTestPipeline(
			&mockVision{content: "INGREDIENTS: milk solids, peanuts"},
			&mockTextGen{content: `{"ingredients": ["milk solids", "peanuts"], "contains": ["milk", "nuts"]}`},
			&mockTextGen{content: scoringHigh},
			alternates,
			1.0,
		)

		result, err := p.Analyze(ctx, "image/png", image, allergies)
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if result.AlternativesSkipped {
			t.Error("Expected alternatives to be invoked for high risk")
		}
		if alternates.calls != 1 {
			t.Errorf("Expected exactly one alternatives call, got %d", alternates.calls)
		}
		if len(result.Alternatives) != 3 {
			t.Fatalf("Expected 3 alternatives, got %d", len(result.Alternatives))
		}
		if result.Alternatives[0].ProductName != "Oat Drink" {
			t.Errorf("Expected first alternative 'Oat Drink', got '%s'", result.Alternatives[0].ProductName)
		}
	})

	t.Run("ScoringErrorHaltsBeforeAlternatives", func(t *testing.T) {
		alternates := &mockTextGen{content: alternativesJSON}
		p := newTestPipeline(
			&mockVision{content: "INGREDIENTS: milk"},
			&mockTextGen{content: `{"ingredients": ["milk"]}`},
			&mockTextGen{err: fmt.Errorf("api unreachable")},
			alternates,
			1.0,
		)

		_, err := p.Analyze(ctx, "image/png", image, allergies)
		if err == nil {
			t.Fatal("Expected scoring failure to halt the pipeline")
		}
		var stageErr *StageError
		if !errors.As(err, &stageErr) {
			t.Fatalf("Expected a StageError, got %T", err)
		}
		if stageErr.Stage != StageRiskScoring {
			t.Errorf("Expected stage %q, got %q", StageRiskScoring, stageErr.Stage)
		}
		if alternates.calls != 0 {
			t.Errorf("Expected no alternatives call after scoring failure, got %d", alternates.calls)
		}
	})

	t.Run("ScoringParseFailureDefaultsToNoRisk", func(t *testing.T) {
		alternates := &mockTextGen{content: alternativesJSON}
		p := newTestPipeline(
			&mockVision{content: "INGREDIENTS: milk"},
			&mockTextGen{content: `{"ingredients": ["milk"]}`},
			&mockTextGen{content: "I am not JSON at all"},
			alternates,
			1.0,
		)

		result, err := p.Analyze(ctx, "image/png", image, allergies)
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if result.AssessmentParsed {
			t.Error("Expected AssessmentParsed to be false")
		}
		if result.Assessment.RiskScore != 0 {
			t.Errorf("Expected fallback risk score 0, got %v", result.Assessment.RiskScore)
		}
		if !result.AlternativesSkipped {
			t.Error("Expected the fallback verdict to skip alternatives")
		}
	})

	t.Run("EmptyOCRFailsTextExtraction", func(t *testing.T) {
		p := newTestPipeline(
			&mockVision{content: "   "},
			&mockTextGen{}, &mockTextGen{}, &mockTextGen{},
			1.0,
		)

		_, err := p.Analyze(ctx, "image/png", image, allergies)
		var stageErr *StageError
		if !errors.As(err, &stageErr) || stageErr.Stage != StageTextExtraction {
			t.Fatalf("Expected text extraction stage error, got %v", err)
		}
	})

	t.Run("EmptyIngredientResponseFails", func(t *testing.T) {
		p := newTestPipeline(
			&mockVision{content: "INGREDIENTS: rice"},
			&mockTextGen{content: ""},
			&mockTextGen{}, &mockTextGen{},
			1.0,
		)

		_, err := p.Analyze(ctx, "image/png", image, allergies)
		var stageErr *StageError
		if !errors.As(err, &stageErr) || stageErr.Stage != StageIngredientIdent {
			t.Fatalf("Expected ingredient identification stage error, got %v", err)
		}
	})

	t.Run("MalformedAlternativesDegradeToRawText", func(t *testing.T) {
		raw := "Here are some ideas: try oat milk and seed butter."
		p := newTestPipeline(
			&mockVision{content: "INGREDIENTS: milk"},
			&mockTextGen{content: `{"ingredients": ["milk"]}`},
			&mockTextGen{content: scoringHigh},
			&mockTextGen{content: raw},
			1.0,
		)

		result, err := p.Analyze(ctx, "image/png", image, allergies)
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if len(result.Alternatives) != 0 {
			t.Errorf("Expected no structured alternatives, got %d", len(result.Alternatives))
		}
		if result.AlternativesRaw != raw {
			t.Errorf("Expected raw alternatives text to be surfaced, got %q", result.AlternativesRaw)
		}
	})

	t.Run("FractionalThreshold", func(t *testing.T) {
		alternates := &mockTextGen{content: alternativesJSON}
		p := newTestPipeline(
			&mockVision{content: "INGREDIENTS: milk"},
			&mockTextGen{content: `{"ingredients": ["milk"]}`},
			&mockTextGen{content: `{"allergens_found": ["milk"], "risk_score": 0.6, "explanation": "one allergen"}`},
			alternates,
			0.5,
		)

		result, err := p.Analyze(ctx, "image/png", image, allergies)
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if result.AlternativesSkipped || alternates.calls != 1 {
			t.Error("Expected a 0.6 score to clear a 0.5 threshold")
		}
	})

	t.Run("RecordsMetaPerStage", func(t *testing.T) {
		p := newTestPipeline(
			&mockVision{content: "INGREDIENTS: rice"},
			&mockTextGen{content: `{"ingredients": ["rice"]}`},
			&mockTextGen{content: scoringLow},
			&mockTextGen{content: alternativesJSON},
			1.0,
		)

		result, err := p.Analyze(ctx, "image/png", image, allergies)
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		// OCR, extractor, scorer; alternatives skipped.
		if len(result.Metas) != 3 {
			t.Errorf("Expected 3 meta records, got %d", len(result.Metas))
		}
		var names []string
		for _, m := range result.Metas {
			names = append(names, m.AgentName)
		}
		joined := strings.Join(names, ",")
		if joined != "RiskOCR,IngredientExtractor,RiskScorer" {
			t.Errorf("Unexpected agent order: %s", joined)
		}
	})
}
