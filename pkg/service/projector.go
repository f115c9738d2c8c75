package service

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/ethanrimes/campaign-management-platform/pkg/models"
	"github.com/ethanrimes/campaign-management-platform/pkg/storage"
)

const (
	// DefaultPageSize bounds ProjectMany when the caller passes no limit.
	DefaultPageSize = 50
	// MaxPageSize is the hard cap on a single listing, to bound the count
	// fan-out.
	MaxPageSize = 100
)

// ListFilter narrows ProjectMany.
type ListFilter struct {
	InitiativeID string
	Limit        int
}

// Projector computes ExecutionSummary views. It is read-only with respect to
// the entity store and recomputes every count on every call, so a write is
// visible on the very next projection.
type Projector struct {
	store  storage.Store
	logger Logger
}

func NewProjector(store storage.Store, logger Logger) *Projector {
	return &Projector{store: store, logger: logger}
}

// Project joins the ledger row with five concurrent count queries over the
// entity tables. Zero rows for any entity kind is a count of 0, not an error.
func (p *Projector) Project(ctx context.Context, executionID string) (models.ExecutionSummary, error) {
	exec, err := p.store.GetExecution(executionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.ExecutionSummary{}, &NotFoundError{ExecutionID: executionID}
		}
		return models.ExecutionSummary{}, errors.Wrapf(err, "failed to get execution %s", executionID)
	}
	counts, err := p.countEntities(ctx, executionID)
	if err != nil {
		return models.ExecutionSummary{}, err
	}
	return summarize(exec, counts, time.Now()), nil
}

// ProjectMany lists summaries ordered by started-at descending, optionally
// filtered by initiative. The page size defaults to DefaultPageSize and is
// capped at MaxPageSize.
func (p *Projector) ProjectMany(ctx context.Context, filter ListFilter) ([]models.ExecutionSummary, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	execs, err := p.store.ListExecutions(storage.ExecutionFilter{
		InitiativeID: filter.InitiativeID,
		Limit:        limit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list executions")
	}

	now := time.Now()
	summaries := make([]models.ExecutionSummary, len(execs))
	countErrs := make([]error, len(execs))
	var wg sync.WaitGroup
	for i, exec := range execs {
		wg.Add(1)
		go func(i int, exec models.Execution) {
			defer wg.Done()
			counts, err := p.countEntities(ctx, exec.ID)
			if err != nil {
				countErrs[i] = err
				return
			}
			summaries[i] = summarize(exec, counts, now)
		}(i, exec)
	}
	wg.Wait()
	for _, err := range countErrs {
		if err != nil {
			return nil, err
		}
	}
	return summaries, nil
}

type entityCounts struct {
	campaigns  int
	adSets     int
	posts      int
	research   int
	mediaFiles int
}

// countEntities issues the five count queries concurrently and waits for all
// of them (join-all, not a race).
func (p *Projector) countEntities(ctx context.Context, executionID string) (entityCounts, error) {
	if err := ctx.Err(); err != nil {
		return entityCounts{}, err
	}

	var counts entityCounts
	queries := []struct {
		name  string
		dst   *int
		count func(string) (int, error)
	}{
		{"campaigns", &counts.campaigns, p.store.CountCampaigns},
		{"ad_sets", &counts.adSets, p.store.CountAdSets},
		{"posts", &counts.posts, p.store.CountPosts},
		{"research", &counts.research, p.store.CountResearchEntries},
		{"media_files", &counts.mediaFiles, p.store.CountMediaFiles},
	}

	errs := make([]error, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, name string, dst *int, count func(string) (int, error)) {
			defer wg.Done()
			n, err := count(executionID)
			if err != nil {
				errs[i] = errors.Wrapf(err, "failed to count %s for execution %s", name, executionID)
				return
			}
			*dst = n
		}(i, q.name, q.dst, q.count)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return entityCounts{}, err
		}
	}
	return counts, nil
}

func summarize(exec models.Execution, counts entityCounts, now time.Time) models.ExecutionSummary {
	return models.ExecutionSummary{
		ExecutionID:       exec.ID,
		InitiativeID:      exec.InitiativeID,
		WorkflowType:      exec.WorkflowType,
		Status:            exec.Status,
		StartedAt:         exec.StartedAt,
		CompletedAt:       exec.CompletedAt,
		DurationSeconds:   durationSeconds(exec, now),
		StepsCompleted:    append([]string{}, exec.StepsCompleted...),
		StepsFailed:       append([]string{}, exec.StepsFailed...),
		CampaignsCreated:  counts.campaigns,
		AdSetsCreated:     counts.adSets,
		PostsCreated:      counts.posts,
		ResearchEntries:   counts.research,
		MediaFilesCreated: counts.mediaFiles,
	}
}

// durationSeconds is now-minus-started while running, completed-minus-started
// once terminal.
func durationSeconds(exec models.Execution, now time.Time) float64 {
	end := now
	if exec.CompletedAt != nil {
		end = *exec.CompletedAt
	}
	d := end.Sub(exec.StartedAt).Seconds()
	if d < 0 {
		return 0
	}
	return d
}
