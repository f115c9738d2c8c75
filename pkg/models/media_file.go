package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// MediaFile is metadata for a generated image/video asset with a public
// retrieval location. There is no foreign key to Post; assets and posts from
// the same run share an execution tag and are surfaced as one combined
// collection at execution granularity.
type MediaFile struct {
	ID              string         `json:"id" db:"id"`
	InitiativeID    string         `json:"initiative_id" db:"initiative_id"`
	FileType        string         `json:"file_type" db:"file_type"` // image, video, reel
	PublicURL       string         `json:"public_url" db:"public_url"`
	StoragePath     string         `json:"storage_path" db:"storage_path"` // Path inside the storage bucket
	FileSizeBytes   *int64         `json:"file_size_bytes,omitempty" db:"file_size_bytes"`
	DurationSeconds *int           `json:"duration_seconds,omitempty" db:"duration_seconds"` // Videos only
	Dimensions      types.JSONText `json:"dimensions,omitempty" db:"dimensions"`             // {"width": ..., "height": ...}
	PromptUsed      *string        `json:"prompt_used,omitempty" db:"prompt_used"`           // Generation prompt
	Metadata        types.JSONText `json:"metadata,omitempty" db:"metadata"`
	ExecutionID     *string        `json:"execution_id,omitempty" db:"execution_id"`
	ExecutionStep   *string        `json:"execution_step,omitempty" db:"execution_step"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}
