package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ethanrimes/campaign-management-platform/pkg/models"
	"github.com/ethanrimes/campaign-management-platform/pkg/storage"
)

// Assembler composes a full Trace for one execution: the summary plus every
// tagged entity collection, fetched in parallel. A missing ledger row fails
// the whole call; a broken collection fetch degrades that collection to empty
// and attaches a warning instead of hiding an otherwise-valid trace.
type Assembler struct {
	store     storage.Store
	projector *Projector
	logger    Logger
}

func NewAssembler(store storage.Store, projector *Projector, logger Logger) *Assembler {
	return &Assembler{store: store, projector: projector, logger: logger}
}

// Assemble fetches the summary, the five entity collections and the guardrail
// violations concurrently and waits for all of them to settle. Collections
// come back newest-created first.
func (a *Assembler) Assemble(ctx context.Context, executionID string) (*models.Trace, error) {
	trace := &models.Trace{
		Campaigns:  []models.Campaign{},
		AdSets:     []models.AdSet{},
		Posts:      []models.Post{},
		Research:   []models.ResearchEntry{},
		MediaFiles: []models.MediaFile{},
		Violations: []models.GuardrailViolation{},
	}

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		summaryErr error
	)

	warn := func(collection string, err error) {
		a.logger.Errorf("Failed to fetch %s for execution %s: %v", collection, executionID, err)
		mu.Lock()
		trace.Warnings = append(trace.Warnings, models.FetchWarning{
			Collection: collection,
			Message:    err.Error(),
		})
		mu.Unlock()
	}

	wg.Add(7)
	go func() {
		defer wg.Done()
		summary, err := a.projector.Project(ctx, executionID)
		if err != nil {
			summaryErr = err
			return
		}
		trace.Summary = summary
	}()
	go func() {
		defer wg.Done()
		if campaigns, err := a.store.ListCampaigns(executionID); err != nil {
			warn("campaigns", err)
		} else if campaigns != nil {
			trace.Campaigns = campaigns
		}
	}()
	go func() {
		defer wg.Done()
		if adSets, err := a.store.ListAdSets(executionID); err != nil {
			warn("ad_sets", err)
		} else if adSets != nil {
			trace.AdSets = adSets
		}
	}()
	go func() {
		defer wg.Done()
		if posts, err := a.store.ListPosts(executionID); err != nil {
			warn("posts", err)
		} else if posts != nil {
			trace.Posts = posts
		}
	}()
	go func() {
		defer wg.Done()
		if research, err := a.store.ListResearchEntries(executionID); err != nil {
			warn("research", err)
		} else if research != nil {
			trace.Research = research
		}
	}()
	go func() {
		defer wg.Done()
		if mediaFiles, err := a.store.ListMediaFiles(executionID); err != nil {
			warn("media_files", err)
		} else if mediaFiles != nil {
			trace.MediaFiles = mediaFiles
		}
	}()
	go func() {
		defer wg.Done()
		if violations, err := a.store.ListGuardrailViolations(executionID); err != nil {
			warn("guardrail_violations", err)
		} else if violations != nil {
			trace.Violations = violations
		}
	}()
	wg.Wait()

	if summaryErr != nil {
		// No trace without a recognized execution.
		return nil, summaryErr
	}

	sort.Slice(trace.Warnings, func(i, j int) bool {
		return trace.Warnings[i].Collection < trace.Warnings[j].Collection
	})
	trace.AssembledAt = time.Now()
	return trace, nil
}
