package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// AdSet groups posts under one campaign with shared targeting, budget and
// schedule. Belongs to exactly one Campaign.
type AdSet struct {
	ID             string         `json:"id" db:"id"`
	CampaignID     string         `json:"campaign_id" db:"campaign_id"`
	InitiativeID   string         `json:"initiative_id" db:"initiative_id"`
	Name           string         `json:"name" db:"name"`
	Objective      *string        `json:"objective,omitempty" db:"objective"`
	Status         *string        `json:"status,omitempty" db:"status"`
	DailyBudget    *float64       `json:"daily_budget,omitempty" db:"daily_budget"`
	LifetimeBudget *float64       `json:"lifetime_budget,omitempty" db:"lifetime_budget"`
	TargetAudience types.JSONText `json:"target_audience,omitempty" db:"target_audience"` // Demographics, interests, locations
	Placements     types.JSONText `json:"placements,omitempty" db:"placements"`           // Platform placements (feed, stories, ...)
	CreativeBrief  types.JSONText `json:"creative_brief,omitempty" db:"creative_brief"`
	Schedule       types.JSONText `json:"schedule,omitempty" db:"schedule"`
	PostFrequency  *int           `json:"post_frequency,omitempty" db:"post_frequency"` // Posts per week
	PostVolume     *int           `json:"post_volume,omitempty" db:"post_volume"`       // Total posts planned
	IsActive       bool           `json:"is_active" db:"is_active"`
	StartTime      *time.Time     `json:"start_time,omitempty" db:"start_time"`
	EndTime        *time.Time     `json:"end_time,omitempty" db:"end_time"`
	ExecutionID    *string        `json:"execution_id,omitempty" db:"execution_id"`
	ExecutionStep  *string        `json:"execution_step,omitempty" db:"execution_step"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}
