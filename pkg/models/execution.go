package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

type ExecutionStatus string

const (
	RunningExecutionStatus   ExecutionStatus = "running"
	CompletedExecutionStatus ExecutionStatus = "completed"
	FailedExecutionStatus    ExecutionStatus = "failed"
)

// Terminal reports whether the status can no longer change.
func (s ExecutionStatus) Terminal() bool {
	return s == CompletedExecutionStatus || s == FailedExecutionStatus
}

type WorkflowType string

const (
	ResearchOnlyWorkflow WorkflowType = "research_only"
	ContentOnlyWorkflow  WorkflowType = "content_only"
	FullCycleWorkflow    WorkflowType = "full_cycle"
)

// Execution is the ledger row for one run of the multi-step workflow.
// Step lists are append-only; status and CompletedAt freeze once terminal.
type Execution struct {
	ID             string          `json:"execution_id" db:"execution_id"`       // Opaque unique token (UUID)
	InitiativeID   string          `json:"initiative_id" db:"initiative_id"`     // Owning initiative
	WorkflowType   WorkflowType    `json:"workflow_type" db:"workflow_type"`     // "research_only", "content_only", "full_cycle"
	Status         ExecutionStatus `json:"status" db:"status"`                   // "running", "completed", "failed"
	StartedAt      time.Time       `json:"started_at" db:"started_at"`           // Set when the run starts
	CompletedAt    *time.Time      `json:"completed_at,omitempty" db:"completed_at"` // Set only on terminal transition
	StepsCompleted pq.StringArray  `json:"steps_completed" db:"steps_completed"` // Ordered completed step names
	StepsFailed    pq.StringArray  `json:"steps_failed" db:"steps_failed"`       // Ordered failed step names
	ErrorMessages  types.JSONText  `json:"error_messages,omitempty" db:"error_messages"` // Per-step error payload, keyed by step
	Metadata       types.JSONText  `json:"metadata,omitempty" db:"metadata"`     // Free-form run metadata
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// GuardrailViolation records a policy/safety check failure surfaced during a
// step. Informational: it never changes ledger status by itself.
type GuardrailViolation struct {
	ID          int64     `json:"id" db:"id"`
	ExecutionID string    `json:"execution_id" db:"execution_id"`
	Step        string    `json:"step" db:"step"`
	Message     string    `json:"message" db:"message"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
