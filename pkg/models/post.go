package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

type PostStatus string

const (
	DraftPostStatus     PostStatus = "draft"
	ScheduledPostStatus PostStatus = "scheduled"
	PublishedPostStatus PostStatus = "published"
	FailedPostStatus    PostStatus = "failed"
)

// Post is a single content item under an AdSet. Media association to specific
// MediaFile rows is informal (shared execution step and timing), not a hard
// key; MediaURLs carries whatever the content step attached directly.
type Post struct {
	ID                 string         `json:"id" db:"id"`
	AdSetID            string         `json:"ad_set_id" db:"ad_set_id"`
	InitiativeID       string         `json:"initiative_id" db:"initiative_id"`
	PostType           string         `json:"post_type" db:"post_type"` // image, video, carousel, story
	TextContent        *string        `json:"text_content,omitempty" db:"text_content"`
	Hashtags           pq.StringArray `json:"hashtags,omitempty" db:"hashtags"`
	Links              pq.StringArray `json:"links,omitempty" db:"links"`
	MediaURLs          pq.StringArray `json:"media_urls,omitempty" db:"media_urls"`
	Status             PostStatus     `json:"status" db:"status"`
	IsPublished        bool           `json:"is_published" db:"is_published"`
	ScheduledTime      *time.Time     `json:"scheduled_time,omitempty" db:"scheduled_time"`
	PublishedTime      *time.Time     `json:"published_time,omitempty" db:"published_time"`
	FacebookPostID     *string        `json:"facebook_post_id,omitempty" db:"facebook_post_id"`
	InstagramPostID    *string        `json:"instagram_post_id,omitempty" db:"instagram_post_id"`
	GenerationMetadata types.JSONText `json:"generation_metadata,omitempty" db:"generation_metadata"` // Model, prompts, etc.
	ExecutionID        *string        `json:"execution_id,omitempty" db:"execution_id"`
	ExecutionStep      *string        `json:"execution_step,omitempty" db:"execution_step"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at" db:"updated_at"`
}
