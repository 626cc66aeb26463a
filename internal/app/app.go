// Package app wires the agents, stores and repositories together and
// exposes the operations the CLI and HTTP server share.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/ankush0511/nutriwise/internal/config"
	"github.com/ankush0511/nutriwise/internal/database"
	"github.com/ankush0511/nutriwise/internal/metrics"
	"github.com/ankush0511/nutriwise/internal/nutrients"
	"github.com/ankush0511/nutriwise/internal/nutrition"
	"github.com/ankush0511/nutriwise/internal/planner"
	"github.com/ankush0511/nutriwise/internal/profile"
	"github.com/ankush0511/nutriwise/internal/recipe"
	"github.com/ankush0511/nutriwise/internal/risk"
	"github.com/ankush0511/nutriwise/internal/shared"
)

// App holds the application's dependencies.
type App struct {
	cfg           *config.Config
	profiles      *profile.Store
	recipes       *recipe.Generator
	riskPipeline  *risk.Pipeline
	mealPlanner   *planner.Planner
	nutrientAgent *nutrients.Analyzer
	metricsStore  *metrics.Store

	db       *database.DB
	planRepo *planner.PlanRepository
}

// NewApp creates and initializes a new App instance.
func NewApp(
	cfg *config.Config,
	profiles *profile.Store,
	recipes *recipe.Generator,
	riskPipeline *risk.Pipeline,
	mealPlanner *planner.Planner,
	nutrientAgent *nutrients.Analyzer,
	metricsStore *metrics.Store,
	db *database.DB,
	planRepo *planner.PlanRepository,
) *App {
	return &App{
		cfg:           cfg,
		profiles:      profiles,
		recipes:       recipes,
		riskPipeline:  riskPipeline,
		mealPlanner:   mealPlanner,
		nutrientAgent: nutrientAgent,
		metricsStore:  metricsStore,
		db:            db,
		planRepo:      planRepo,
	}
}

// RecipeFromText generates a recipe from a free-text ingredient list.
func (a *App) RecipeFromText(ctx context.Context, ingredients string) (recipe.Result, error) {
	result, err := a.recipes.FromText(ctx, ingredients)
	if err != nil {
		return recipe.Result{}, err
	}
	a.recordMetas(ctx, result.Meta)
	return result, nil
}

// RecipeFromImage generates a recipe from a photo of ingredients.
func (a *App) RecipeFromImage(ctx context.Context, mimeType string, image []byte) (recipe.Result, error) {
	result, err := a.recipes.FromImage(ctx, mimeType, image)
	if err != nil {
		return recipe.Result{}, err
	}
	a.recordMetas(ctx, result.Meta)
	return result, nil
}

// RecipeFromAudio generates a recipe from a spoken ingredient list.
func (a *App) RecipeFromAudio(ctx context.Context, mimeType string, audio []byte) (recipe.Result, error) {
	result, err := a.recipes.FromAudio(ctx, mimeType, audio)
	if err != nil {
		return recipe.Result{}, err
	}
	a.recordMetas(ctx, result.Meta)
	return result, nil
}

// AnalyzeLabel runs the allergen risk pipeline over a product label image
// using the named profile's allergy list.
func (a *App) AnalyzeLabel(ctx context.Context, profileName, mimeType string, image []byte) (*risk.Result, error) {
	prof, err := a.profiles.Load(profileName)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if prof == nil {
		return nil, fmt.Errorf("profile %q not found", profileName)
	}

	result, err := a.riskPipeline.Analyze(ctx, mimeType, image, prof.Allergies)
	if result != nil {
		a.recordMetas(ctx, result.Metas...)
	}
	return result, err
}

// PlanResult bundles a generated daily plan with its export artifact.
type PlanResult struct {
	PlanID   string             `json:"plan_id"`
	Plan     *planner.DailyPlan `json:"plan"`
	Markdown string             `json:"markdown"`
}

// GenerateDailyPlan builds a four-slot plan for the named profile,
// persists it and returns the plan with its markdown document.
func (a *App) GenerateDailyPlan(ctx context.Context, profileName string) (*PlanResult, error) {
	prof, err := a.profiles.Load(profileName)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if prof == nil {
		return nil, fmt.Errorf("profile %q not found", profileName)
	}

	plan, metas, err := a.mealPlanner.GenerateDailyPlan(ctx, prof.Targets(), prof.Allergies)
	a.recordMetas(ctx, metas...)
	if err != nil {
		return nil, err
	}
	plan.ProfileName = prof.Name

	id, err := a.planRepo.Save(ctx, prof.Name, plan)
	if err != nil {
		// Persistence failure should not discard a usable plan.
		log.Printf("app: failed to persist meal plan: %v", err)
	}

	return &PlanResult{PlanID: id, Plan: plan, Markdown: plan.Markdown()}, nil
}

// LatestPlan returns the most recent stored plan for a profile, or nil.
func (a *App) LatestPlan(ctx context.Context, profileName string) (*planner.StoredPlan, error) {
	return a.planRepo.Latest(ctx, profileName)
}

// Nutrients looks up nutritional profiles for a batch of food items.
func (a *App) Nutrients(ctx context.Context, items []string) (*nutrients.Result, error) {
	result, err := a.nutrientAgent.Analyze(ctx, items)
	if err != nil {
		return nil, err
	}
	a.recordMetas(ctx, result.Meta)
	return result, nil
}

// SaveProfile validates and persists a user profile.
func (a *App) SaveProfile(p *profile.UserProfile) error {
	return a.profiles.Save(p)
}

// LoadProfile returns the named profile, or nil when it does not exist.
func (a *App) LoadProfile(name string) (*profile.UserProfile, error) {
	return a.profiles.Load(name)
}

// ProfileNames lists all stored profile names.
func (a *App) ProfileNames() ([]string, error) {
	return a.profiles.Names()
}

// Recommended returns the reference daily targets for an age and sex.
func (a *App) Recommended(age int, sex nutrition.Sex) nutrition.Targets {
	return nutrition.Lookup(age, sex)
}

// DailyUsage reports token usage totals for the last N days.
func (a *App) DailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error) {
	return a.metricsStore.GetDailyUsage(ctx, days)
}

// CleanupMetrics deletes execution metrics older than the given number of days.
func (a *App) CleanupMetrics(ctx context.Context, olderThanDays int) (int64, error) {
	return a.metricsStore.Cleanup(ctx, olderThanDays)
}

// Health reports process and storage health.
func (a *App) Health(ctx context.Context) metrics.SysHealth {
	return a.metricsStore.Health(ctx, a.cfg.DataDir())
}

// Close releases the database connection.
func (a *App) Close() error {
	return a.db.Close()
}

// recordMetas persists execution metrics; failures are logged, never fatal.
func (a *App) recordMetas(ctx context.Context, metas ...shared.AgentMeta) {
	for _, m := range metas {
		if err := a.metricsStore.RecordMeta(ctx, m); err != nil {
			log.Printf("app: failed to record metrics for %s: %v", m.AgentName, err)
		}
	}
}
