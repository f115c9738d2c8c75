package models

import "time"

// ExecutionSummary is a derived, read-only projection over the ledger and the
// entity tables. Counts are recomputed on every read; nothing here is stored.
type ExecutionSummary struct {
	ExecutionID     string          `json:"execution_id"`
	InitiativeID    string          `json:"initiative_id"`
	WorkflowType    WorkflowType    `json:"workflow_type"`
	Status          ExecutionStatus `json:"status"`
	StartedAt       time.Time       `json:"started_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	DurationSeconds float64         `json:"duration_seconds"` // now-started while running, else completed-started
	StepsCompleted  []string        `json:"steps_completed"`
	StepsFailed     []string        `json:"steps_failed"`

	CampaignsCreated  int `json:"campaigns_created"`
	AdSetsCreated     int `json:"ad_sets_created"`
	PostsCreated      int `json:"posts_created"`
	ResearchEntries   int `json:"research_entries"`
	MediaFilesCreated int `json:"media_files_created"`
}

// FetchWarning marks a collection that could not be loaded during trace
// assembly. The trace is still usable; the named collection is empty.
type FetchWarning struct {
	Collection string `json:"collection"`
	Message    string `json:"message"`
}

// Trace is the full aggregate handed to a consumer: the summary plus every
// entity tagged with the execution, newest first. Built on demand, never
// persisted.
type Trace struct {
	Summary     ExecutionSummary     `json:"summary"`
	Campaigns   []Campaign           `json:"campaigns"`
	AdSets      []AdSet              `json:"ad_sets"`
	Posts       []Post               `json:"posts"`
	Research    []ResearchEntry      `json:"research"`
	MediaFiles  []MediaFile          `json:"media_files"`
	Violations  []GuardrailViolation `json:"guardrail_violations"`
	Warnings    []FetchWarning       `json:"warnings,omitempty"`
	AssembledAt time.Time            `json:"assembled_at"`
}

// EntityCounts collapses the five collection sizes for change detection.
func (t *Trace) EntityCounts() [5]int {
	return [5]int{
		t.Summary.CampaignsCreated,
		t.Summary.AdSetsCreated,
		t.Summary.PostsCreated,
		t.Summary.ResearchEntries,
		t.Summary.MediaFilesCreated,
	}
}
