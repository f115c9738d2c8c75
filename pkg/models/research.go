package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// ResearchEntry is a structured record of market/trend findings gathered for
// an initiative. Belongs to the initiative directly; association with a run is
// only through the execution tag.
type ResearchEntry struct {
	ID            string         `json:"id" db:"id"`
	InitiativeID  string         `json:"initiative_id" db:"initiative_id"`
	ResearchType  string         `json:"research_type" db:"research_type"` // competitor, trend, hashtag, audience
	Topic         string         `json:"topic" db:"topic"`
	Summary       *string        `json:"summary,omitempty" db:"summary"`
	Insights      types.JSONText `json:"insights,omitempty" db:"insights"` // Structured findings
	RawData       types.JSONText `json:"raw_data,omitempty" db:"raw_data"`
	Sources       pq.StringArray `json:"sources,omitempty" db:"sources"` // URLs and references
	SearchQueries pq.StringArray `json:"search_queries,omitempty" db:"search_queries"`
	Tags          pq.StringArray `json:"tags,omitempty" db:"tags"`
	ExecutionID   *string        `json:"execution_id,omitempty" db:"execution_id"`
	ExecutionStep *string        `json:"execution_step,omitempty" db:"execution_step"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty" db:"expires_at"` // When findings go stale
}
