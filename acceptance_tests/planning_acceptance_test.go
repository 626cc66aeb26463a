package acceptance_tests

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ankush0511/nutriwise/internal/app"
	"github.com/ankush0511/nutriwise/internal/config"
	"github.com/ankush0511/nutriwise/internal/database"
	"github.com/ankush0511/nutriwise/internal/llm"
	"github.com/ankush0511/nutriwise/internal/metrics"
	"github.com/ankush0511/nutriwise/internal/nutrients"
	"github.com/ankush0511/nutriwise/internal/planner"
	"github.com/ankush0511/nutriwise/internal/profile"
	"github.com/ankush0511/nutriwise/internal/recipe"
	"github.com/ankush0511/nutriwise/internal/risk"
	"github.com/ankush0511/nutriwise/internal/shared"
)

// --- Mock LLM Client ---
type mockLLMClient struct {
	generateContentCalls int
}

func (m *mockLLMClient) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.generateContentCalls++

	if strings.Contains(prompt, "recipe_name") && strings.Contains(prompt, "Extract") {
		return response(`{"recipe_name": "Test Dish"}`), nil
	}
	if strings.Contains(prompt, "total_nutrients") {
		return response(`{
			"recipes": [
				{"recipe_name": "Test Dish", "ingredients": [{"name": "rice", "quantity": 100, "unit": "g"}],
				 "nutrients": {"calories": 500, "carbohydrates": 80, "fats": 10, "proteins": 15}}
			],
			"total_nutrients": {"calories": 500, "carbohydrates": 80, "fats": 10, "proteins": 15}
		}`), nil
	}
	return response("A generated recipe."), nil
}

func (m *mockLLMClient) GenerateFromImage(ctx context.Context, prompt, mimeType string, image []byte) (llm.ContentResponse, error) {
	return response("label text"), nil
}

func (m *mockLLMClient) GenerateFromAudio(ctx context.Context, prompt, mimeType string, audio []byte) (llm.ContentResponse, error) {
	return response("spoken ingredients"), nil
}

func response(content string) llm.ContentResponse {
	return llm.ContentResponse{
		Content: content,
		Usage:   shared.TokenUsage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30, Model: "mock-model"},
	}
}

func newTestApp(t *testing.T, client *mockLLMClient) (*app.App, *database.DB) {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		ProfileFilePath:       filepath.Join(dir, "profiles.json"),
		DatabasePath:          filepath.Join(dir, "test.db"),
		AlternativesThreshold: 1.0,
	}

	profiles, err := profile.NewStore(cfg.ProfileFilePath)
	if err != nil {
		t.Fatalf("failed to create profile store: %v", err)
	}
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return app.NewApp(
		cfg,
		profiles,
		recipe.NewGenerator(client, client, client),
		risk.NewPipeline(client, client, client, client, cfg.AlternativesThreshold),
		planner.NewPlanner(client),
		nutrients.NewAnalyzer(client),
		metrics.NewStore(db.SQL),
		db,
		planner.NewPlanRepository(db.SQL),
	), db
}

// TestDailyPlanEndToEnd drives a profile through plan generation and checks
// that the plan is persisted and execution metrics are recorded.
func TestDailyPlanEndToEnd(t *testing.T) {
	ctx := context.Background()
	client := &mockLLMClient{}
	application, db := newTestApp(t, client)

	err := application.SaveProfile(&profile.UserProfile{
		Name: "test-user", Age: 30, Sex: "male", Allergies: []string{"peanut"},
	})
	if err != nil {
		t.Fatalf("failed to save profile: %v", err)
	}

	result, err := application.GenerateDailyPlan(ctx, "test-user")
	if err != nil {
		t.Fatalf("GenerateDailyPlan() error = %v", err)
	}

	if len(result.Plan.Slots) != 4 {
		t.Errorf("expected 4 slot plans, got %d", len(result.Plan.Slots))
	}
	if result.Plan.ProfileName != "test-user" {
		t.Errorf("plan profile name = %q", result.Plan.ProfileName)
	}
	if !strings.HasPrefix(result.Markdown, "# Daily Meal Plan") {
		t.Errorf("markdown artifact missing header: %q", result.Markdown[:min(len(result.Markdown), 40)])
	}
	if client.generateContentCalls != 4 {
		t.Errorf("expected 4 generation calls, got %d", client.generateContentCalls)
	}

	stored, err := application.LatestPlan(ctx, "test-user")
	if err != nil {
		t.Fatalf("LatestPlan() error = %v", err)
	}
	if stored == nil || stored.ID != result.PlanID {
		t.Errorf("stored plan mismatch: %+v", stored)
	}

	var metricRows int
	if err := db.SQL.QueryRow(`SELECT COUNT(*) FROM execution_metrics`).Scan(&metricRows); err != nil {
		t.Fatalf("failed to count metric rows: %v", err)
	}
	if metricRows != 4 {
		t.Errorf("expected 4 metric rows, got %d", metricRows)
	}

	usage, err := application.DailyUsage(ctx, 1)
	if err != nil {
		t.Fatalf("DailyUsage() error = %v", err)
	}
	if len(usage) != 1 || usage[0].TotalPrompt != 40 {
		t.Errorf("unexpected daily usage: %+v", usage)
	}
}

// TestRecipeAndNutrientsEndToEnd covers the remaining text-mode operations.
func TestRecipeAndNutrientsEndToEnd(t *testing.T) {
	ctx := context.Background()
	client := &mockLLMClient{}
	application, _ := newTestApp(t, client)

	rec, err := application.RecipeFromText(ctx, "rice, lentils")
	if err != nil {
		t.Fatalf("RecipeFromText() error = %v", err)
	}
	if rec.Name != "Test Dish" {
		t.Errorf("recipe name = %q", rec.Name)
	}

	result, err := application.Nutrients(ctx, []string{"rice"})
	if err != nil {
		t.Fatalf("Nutrients() error = %v", err)
	}
	if result.Parsed {
		// The mock answers nutrient prompts with plain prose, so the
		// lookup must degrade to raw text rather than fail.
		t.Errorf("expected degraded raw result, got %+v", result)
	}
	if result.Raw == "" {
		t.Error("expected raw text in degraded result")
	}
}
