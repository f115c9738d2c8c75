package storage

import (
	"github.com/pkg/errors"

	"github.com/ethanrimes/campaign-management-platform/pkg/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ExecutionFilter narrows ListExecutions. A zero Limit falls back to the
// caller's default; implementations never return unbounded result sets.
type ExecutionFilter struct {
	InitiativeID string
	Limit        int
}

// Store defines the storage operations for the trace engine. The workflow
// engine is the only writer of ledger rows and the only tagger of entity rows;
// everything read-side goes through the filtered queries below.
type Store interface {
	Begin() (Store, error)
	Commit() error
	Rollback() error
	Close() error

	// Initiative operations
	SaveInitiative(in models.Initiative) error
	InitiativeExists(id string) (bool, error)

	// Execution ledger operations
	SaveExecution(e models.Execution) error
	GetExecution(id string) (models.Execution, error)
	UpdateExecution(e models.Execution) error
	ListExecutions(filter ExecutionFilter) ([]models.Execution, error)
	SaveGuardrailViolation(v models.GuardrailViolation) error
	ListGuardrailViolations(executionID string) ([]models.GuardrailViolation, error)

	// Entity writes (tagged by the upstream engine)
	SaveCampaign(c models.Campaign) error
	SaveAdSet(a models.AdSet) error
	SavePost(p models.Post) error
	SaveResearchEntry(r models.ResearchEntry) error
	SaveMediaFile(m models.MediaFile) error

	// Filtered counts by execution identifier
	CountCampaigns(executionID string) (int, error)
	CountAdSets(executionID string) (int, error)
	CountPosts(executionID string) (int, error)
	CountResearchEntries(executionID string) (int, error)
	CountMediaFiles(executionID string) (int, error)

	// Filtered lists by execution identifier, newest-created first
	ListCampaigns(executionID string) ([]models.Campaign, error)
	ListAdSets(executionID string) ([]models.AdSet, error)
	ListPosts(executionID string) ([]models.Post, error)
	ListResearchEntries(executionID string) ([]models.ResearchEntry, error)
	ListMediaFiles(executionID string) ([]models.MediaFile, error)
}
