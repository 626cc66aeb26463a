// Package profile holds user profiles and their flat-file persistence.
package profile

import (
	"fmt"
	"strings"

	"github.com/ankush0511/nutriwise/internal/nutrition"
)

// Severity is the user's declared allergy severity level.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// UserProfile describes one user. Name is the unique key; macro targets are
// optional and default from the nutrition reference table when absent.
type UserProfile struct {
	Name                string   `json:"name"`
	Age                 int      `json:"age"`
	Sex                 string   `json:"sex"`
	Allergies           []string `json:"allergies"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	SeverityLevel       Severity `json:"severity_level"`
	CalorieTarget       *float64 `json:"calorie_target,omitempty"`
	ProteinTarget       *float64 `json:"protein_target,omitempty"`
	FatTarget           *float64 `json:"fat_target,omitempty"`
	CarbTarget          *float64 `json:"carb_target,omitempty"`
}

// Validate checks the fields a profile must carry before it can be saved.
func (p *UserProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile name is required")
	}
	if p.Age < 1 || p.Age > 120 {
		return fmt.Errorf("age must be between 1 and 120, got %d", p.Age)
	}
	if p.Sex != string(nutrition.Male) && p.Sex != string(nutrition.Female) {
		return fmt.Errorf("sex must be %q or %q, got %q", nutrition.Male, nutrition.Female, p.Sex)
	}
	switch p.SeverityLevel {
	case SeverityMild, SeverityModerate, SeveritySevere:
	case "":
		p.SeverityLevel = SeverityModerate
	default:
		return fmt.Errorf("unknown severity level %q", p.SeverityLevel)
	}
	return nil
}

// Targets resolves the profile's daily macro targets once, filling any
// absent field from the nutrition reference table.
func (p *UserProfile) Targets() nutrition.Targets {
	recommended := nutrition.Lookup(p.Age, nutrition.Sex(p.Sex))

	t := recommended
	if p.CalorieTarget != nil {
		t.Calories = *p.CalorieTarget
	}
	if p.ProteinTarget != nil {
		t.Protein = *p.ProteinTarget
	}
	if p.FatTarget != nil {
		t.Fat = *p.FatTarget
	}
	if p.CarbTarget != nil {
		t.Carbs = *p.CarbTarget
	}
	return t
}
