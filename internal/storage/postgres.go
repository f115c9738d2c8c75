package storage

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/ethanrimes/campaign-management-platform/pkg/models"
	"github.com/ethanrimes/campaign-management-platform/pkg/storage"
)

type DBInterface interface {
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
	QueryRowx(query string, args ...interface{}) *sqlx.Row
	Exec(query string, args ...interface{}) (sql.Result, error)
}

type PostgresStore struct {
	db DBInterface
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Begin() (storage.Store, error) {
	if db, ok := s.db.(*sqlx.DB); ok {
		tx, err := db.Beginx()
		if err != nil {
			return nil, err
		}
		return &PostgresStore{db: tx}, nil
	}
	return nil, fmt.Errorf("cannot begin transaction on unknown type")
}

func (s *PostgresStore) Commit() error {
	if tx, ok := s.db.(*sqlx.Tx); ok {
		return tx.Commit()
	}
	return fmt.Errorf("cannot commit: not a transaction")
}

func (s *PostgresStore) Rollback() error {
	if tx, ok := s.db.(*sqlx.Tx); ok {
		return tx.Rollback()
	}
	return fmt.Errorf("cannot rollback: not a transaction")
}

func (s *PostgresStore) Close() error {
	if db, ok := s.db.(*sqlx.DB); ok {
		return db.Close()
	}
	return nil // No-op for *sqlx.Tx
}

func (s *PostgresStore) SaveInitiative(in models.Initiative) error {
	_, err := s.db.Exec(`
		INSERT INTO initiatives (id, name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		in.ID, in.Name, in.IsActive, in.CreatedAt, in.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save initiative: %w", err)
	}
	return nil
}

func (s *PostgresStore) InitiativeExists(id string) (bool, error) {
	var exists bool
	err := s.db.Get(&exists, "SELECT EXISTS (SELECT 1 FROM initiatives WHERE id = $1)", id)
	if err != nil {
		return false, fmt.Errorf("initiative exists %s: %w", id, err)
	}
	return exists, nil
}

// SaveExecution creates a new ledger row
func (s *PostgresStore) SaveExecution(e models.Execution) error {
	_, err := s.db.Exec(`
		INSERT INTO execution_logs
			(execution_id, initiative_id, workflow_type, status, started_at, completed_at,
			 steps_completed, steps_failed, error_messages, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.InitiativeID, e.WorkflowType, e.Status, e.StartedAt, e.CompletedAt,
		e.StepsCompleted, e.StepsFailed, e.ErrorMessages, e.Metadata, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save execution: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetExecution(id string) (models.Execution, error) {
	var e models.Execution
	err := s.db.Get(&e, "SELECT * FROM execution_logs WHERE execution_id = $1", id)
	if err == sql.ErrNoRows {
		return models.Execution{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Execution{}, fmt.Errorf("get execution %s: %w", id, err)
	}
	return e, nil
}

// UpdateExecution persists mutable ledger fields for an existing row
func (s *PostgresStore) UpdateExecution(e models.Execution) error {
	res, err := s.db.Exec(`
		UPDATE execution_logs
		SET status = $1,
		    completed_at = $2,
		    steps_completed = $3,
		    steps_failed = $4,
		    error_messages = $5,
		    metadata = $6,
		    updated_at = CURRENT_TIMESTAMP
		WHERE execution_id = $7`,
		e.Status, e.CompletedAt, e.StepsCompleted, e.StepsFailed, e.ErrorMessages, e.Metadata, e.ID)
	if err != nil {
		return fmt.Errorf("update execution %s: %w", e.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListExecutions(filter storage.ExecutionFilter) ([]models.Execution, error) {
	execs := []models.Execution{}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	var err error
	if filter.InitiativeID != "" {
		err = s.db.Select(&execs, `
			SELECT * FROM execution_logs
			WHERE initiative_id = $1
			ORDER BY started_at DESC LIMIT $2`, filter.InitiativeID, limit)
	} else {
		err = s.db.Select(&execs, `
			SELECT * FROM execution_logs
			ORDER BY started_at DESC LIMIT $1`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	return execs, nil
}

func (s *PostgresStore) SaveGuardrailViolation(v models.GuardrailViolation) error {
	_, err := s.db.Exec(`
		INSERT INTO guardrail_violations (execution_id, step, message, created_at)
		VALUES ($1, $2, $3, $4)`,
		v.ExecutionID, v.Step, v.Message, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("save guardrail violation: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListGuardrailViolations(executionID string) ([]models.GuardrailViolation, error) {
	violations := []models.GuardrailViolation{}
	err := s.db.Select(&violations, `
		SELECT * FROM guardrail_violations
		WHERE execution_id = $1 ORDER BY created_at`, executionID)
	if err != nil {
		return nil, fmt.Errorf("list guardrail violations: %w", err)
	}
	return violations, nil
}

func (s *PostgresStore) SaveCampaign(c models.Campaign) error {
	_, err := s.db.Exec(`
		INSERT INTO campaigns
			(id, initiative_id, name, objective, description, status, budget_mode,
			 daily_budget, lifetime_budget, spent_budget, is_active, start_date, end_date,
			 metrics, execution_id, execution_step, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		c.ID, c.InitiativeID, c.Name, c.Objective, c.Description, c.Status, c.BudgetMode,
		c.DailyBudget, c.LifetimeBudget, c.SpentBudget, c.IsActive, c.StartDate, c.EndDate,
		c.Metrics, c.ExecutionID, c.ExecutionStep, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save campaign: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveAdSet(a models.AdSet) error {
	_, err := s.db.Exec(`
		INSERT INTO ad_sets
			(id, campaign_id, initiative_id, name, objective, status, daily_budget,
			 lifetime_budget, target_audience, placements, creative_brief, schedule,
			 post_frequency, post_volume, is_active, start_time, end_time,
			 execution_id, execution_step, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		a.ID, a.CampaignID, a.InitiativeID, a.Name, a.Objective, a.Status, a.DailyBudget,
		a.LifetimeBudget, a.TargetAudience, a.Placements, a.CreativeBrief, a.Schedule,
		a.PostFrequency, a.PostVolume, a.IsActive, a.StartTime, a.EndTime,
		a.ExecutionID, a.ExecutionStep, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save ad set: %w", err)
	}
	return nil
}

func (s *PostgresStore) SavePost(p models.Post) error {
	_, err := s.db.Exec(`
		INSERT INTO posts
			(id, ad_set_id, initiative_id, post_type, text_content, hashtags, links,
			 media_urls, status, is_published, scheduled_time, published_time,
			 facebook_post_id, instagram_post_id, generation_metadata,
			 execution_id, execution_step, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		p.ID, p.AdSetID, p.InitiativeID, p.PostType, p.TextContent, p.Hashtags, p.Links,
		p.MediaURLs, p.Status, p.IsPublished, p.ScheduledTime, p.PublishedTime,
		p.FacebookPostID, p.InstagramPostID, p.GenerationMetadata,
		p.ExecutionID, p.ExecutionStep, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save post: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveResearchEntry(r models.ResearchEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO research
			(id, initiative_id, research_type, topic, summary, insights, raw_data,
			 sources, search_queries, tags, execution_id, execution_step, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		r.ID, r.InitiativeID, r.ResearchType, r.Topic, r.Summary, r.Insights, r.RawData,
		r.Sources, r.SearchQueries, r.Tags, r.ExecutionID, r.ExecutionStep, r.CreatedAt, r.ExpiresAt)
	if err != nil {
		return fmt.Errorf("save research entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveMediaFile(m models.MediaFile) error {
	_, err := s.db.Exec(`
		INSERT INTO media_files
			(id, initiative_id, file_type, public_url, storage_path, file_size_bytes,
			 duration_seconds, dimensions, prompt_used, metadata,
			 execution_id, execution_step, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		m.ID, m.InitiativeID, m.FileType, m.PublicURL, m.StoragePath, m.FileSizeBytes,
		m.DurationSeconds, m.Dimensions, m.PromptUsed, m.Metadata,
		m.ExecutionID, m.ExecutionStep, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save media file: %w", err)
	}
	return nil
}

func (s *PostgresStore) countByExecution(table, executionID string) (int, error) {
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE execution_id = $1", table)
	if err := s.db.Get(&n, query, executionID); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (s *PostgresStore) CountCampaigns(executionID string) (int, error) {
	return s.countByExecution("campaigns", executionID)
}

func (s *PostgresStore) CountAdSets(executionID string) (int, error) {
	return s.countByExecution("ad_sets", executionID)
}

func (s *PostgresStore) CountPosts(executionID string) (int, error) {
	return s.countByExecution("posts", executionID)
}

func (s *PostgresStore) CountResearchEntries(executionID string) (int, error) {
	return s.countByExecution("research", executionID)
}

func (s *PostgresStore) CountMediaFiles(executionID string) (int, error) {
	return s.countByExecution("media_files", executionID)
}

func (s *PostgresStore) ListCampaigns(executionID string) ([]models.Campaign, error) {
	campaigns := []models.Campaign{}
	err := s.db.Select(&campaigns, `
		SELECT * FROM campaigns
		WHERE execution_id = $1 ORDER BY created_at DESC`, executionID)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return campaigns, nil
}

func (s *PostgresStore) ListAdSets(executionID string) ([]models.AdSet, error) {
	adSets := []models.AdSet{}
	err := s.db.Select(&adSets, `
		SELECT * FROM ad_sets
		WHERE execution_id = $1 ORDER BY created_at DESC`, executionID)
	if err != nil {
		return nil, fmt.Errorf("list ad sets: %w", err)
	}
	return adSets, nil
}

func (s *PostgresStore) ListPosts(executionID string) ([]models.Post, error) {
	posts := []models.Post{}
	err := s.db.Select(&posts, `
		SELECT * FROM posts
		WHERE execution_id = $1 ORDER BY created_at DESC`, executionID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *PostgresStore) ListResearchEntries(executionID string) ([]models.ResearchEntry, error) {
	research := []models.ResearchEntry{}
	err := s.db.Select(&research, `
		SELECT * FROM research
		WHERE execution_id = $1 ORDER BY created_at DESC`, executionID)
	if err != nil {
		return nil, fmt.Errorf("list research entries: %w", err)
	}
	return research, nil
}

func (s *PostgresStore) ListMediaFiles(executionID string) ([]models.MediaFile, error) {
	mediaFiles := []models.MediaFile{}
	err := s.db.Select(&mediaFiles, `
		SELECT * FROM media_files
		WHERE execution_id = $1 ORDER BY created_at DESC`, executionID)
	if err != nil {
		return nil, fmt.Errorf("list media files: %w", err)
	}
	return mediaFiles, nil
}
