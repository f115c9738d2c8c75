package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Campaign is the top of the marketing hierarchy: one strategy with budgets
// and a flight window. ExecutionID/ExecutionStep tag the run (and stage) that
// produced it; both empty means the campaign was created out-of-band.
type Campaign struct {
	ID             string         `json:"id" db:"id"`
	InitiativeID   string         `json:"initiative_id" db:"initiative_id"`
	Name           string         `json:"name" db:"name"`
	Objective      string         `json:"objective" db:"objective"` // e.g. "awareness", "conversions"
	Description    *string        `json:"description,omitempty" db:"description"`
	Status         *string        `json:"status,omitempty" db:"status"`
	BudgetMode     *string        `json:"budget_mode,omitempty" db:"budget_mode"` // "daily" or "lifetime"
	DailyBudget    *float64       `json:"daily_budget,omitempty" db:"daily_budget"`
	LifetimeBudget *float64       `json:"lifetime_budget,omitempty" db:"lifetime_budget"`
	SpentBudget    *float64       `json:"spent_budget,omitempty" db:"spent_budget"`
	IsActive       bool           `json:"is_active" db:"is_active"`
	StartDate      *time.Time     `json:"start_date,omitempty" db:"start_date"`
	EndDate        *time.Time     `json:"end_date,omitempty" db:"end_date"`
	Metrics        types.JSONText `json:"metrics,omitempty" db:"metrics"`
	ExecutionID    *string        `json:"execution_id,omitempty" db:"execution_id"`
	ExecutionStep  *string        `json:"execution_step,omitempty" db:"execution_step"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}
