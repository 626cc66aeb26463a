package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StoredPlan is a persisted meal plan row.
type StoredPlan struct {
	ID          string
	ProfileName string
	Plan        DailyPlan
	Markdown    string
	CreatedAt   time.Time
}

// PlanRepository persists generated daily plans to SQLite.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(db *sql.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// Save stores a generated plan for a profile and returns its ID.
func (r *PlanRepository) Save(ctx context.Context, profileName string, plan *DailyPlan) (string, error) {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan: %w", err)
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO meal_plans (id, profile_name, plan_json, markdown, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, profileName, string(planJSON), plan.Markdown(), time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert plan: %w", err)
	}
	return id, nil
}

// Latest returns a profile's most recent plan, or nil when none exists.
func (r *PlanRepository) Latest(ctx context.Context, profileName string) (*StoredPlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, profile_name, plan_json, markdown, created_at FROM meal_plans
		 WHERE profile_name = ? ORDER BY created_at DESC LIMIT 1`,
		profileName,
	)

	var stored StoredPlan
	var planJSON string
	err := row.Scan(&stored.ID, &stored.ProfileName, &planJSON, &stored.Markdown, &stored.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest plan: %w", err)
	}

	if err := json.Unmarshal([]byte(planJSON), &stored.Plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored plan: %w", err)
	}
	return &stored, nil
}
