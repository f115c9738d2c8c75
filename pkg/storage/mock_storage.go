package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/ethanrimes/campaign-management-platform/pkg/models"
)

// MockStore implements Store with in-memory slices. Safe for concurrent use
// so live-view tests can write while a watcher polls.
type MockStore struct {
	mu          sync.RWMutex
	initiatives []models.Initiative
	executions  []models.Execution
	violations  []models.GuardrailViolation
	campaigns   []models.Campaign
	adSets      []models.AdSet
	posts       []models.Post
	research    []models.ResearchEntry
	mediaFiles  []models.MediaFile
	nextViolID  int64

	// listErrs injects failures into List* calls, keyed by collection name.
	listErrs map[string]error
}

func NewMockStore() *MockStore {
	return &MockStore{listErrs: make(map[string]error)}
}

// FailListing makes the named collection's List call return err until cleared
// with a nil err. Recognized names: campaigns, ad_sets, posts, research,
// media_files, guardrail_violations.
func (m *MockStore) FailListing(collection string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.listErrs, collection)
		return
	}
	m.listErrs[collection] = err
}

func (m *MockStore) Begin() (Store, error) { return m, nil }
func (m *MockStore) Commit() error         { return nil }
func (m *MockStore) Rollback() error       { return nil }
func (m *MockStore) Close() error          { return nil }

func (m *MockStore) SaveInitiative(in models.Initiative) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initiatives = append(m.initiatives, in)
	return nil
}

func (m *MockStore) InitiativeExists(id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, in := range m.initiatives {
		if in.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockStore) SaveExecution(e models.Execution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.executions {
		if existing.ID == e.ID {
			return errors.New("execution already exists")
		}
	}
	m.executions = append(m.executions, e)
	return nil
}

func (m *MockStore) GetExecution(id string) (models.Execution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.executions {
		if e.ID == id {
			return e, nil
		}
	}
	return models.Execution{}, ErrNotFound
}

func (m *MockStore) UpdateExecution(e models.Execution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.executions {
		if existing.ID == e.ID {
			e.UpdatedAt = time.Now()
			m.executions[i] = e
			return nil
		}
	}
	return ErrNotFound
}

func (m *MockStore) ListExecutions(filter ExecutionFilter) ([]models.Execution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	execs := []models.Execution{}
	for _, e := range m.executions {
		if filter.InitiativeID != "" && e.InitiativeID != filter.InitiativeID {
			continue
		}
		execs = append(execs, e)
	}
	sort.Slice(execs, func(i, j int) bool {
		return execs[i].StartedAt.After(execs[j].StartedAt)
	})
	if filter.Limit > 0 && len(execs) > filter.Limit {
		execs = execs[:filter.Limit]
	}
	return execs, nil
}

func (m *MockStore) SaveGuardrailViolation(v models.GuardrailViolation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextViolID++
	v.ID = m.nextViolID
	m.violations = append(m.violations, v)
	return nil
}

func (m *MockStore) ListGuardrailViolations(executionID string) ([]models.GuardrailViolation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.listErrs["guardrail_violations"]; err != nil {
		return nil, err
	}
	var out []models.GuardrailViolation
	for _, v := range m.violations {
		if v.ExecutionID == executionID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *MockStore) SaveCampaign(c models.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns = append(m.campaigns, c)
	return nil
}

func (m *MockStore) SaveAdSet(a models.AdSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adSets = append(m.adSets, a)
	return nil
}

func (m *MockStore) SavePost(p models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts = append(m.posts, p)
	return nil
}

func (m *MockStore) SaveResearchEntry(r models.ResearchEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.research = append(m.research, r)
	return nil
}

func (m *MockStore) SaveMediaFile(f models.MediaFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mediaFiles = append(m.mediaFiles, f)
	return nil
}

func matchesExecution(executionID string, tag *string) bool {
	return tag != nil && *tag == executionID
}

func (m *MockStore) CountCampaigns(executionID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.campaigns {
		if matchesExecution(executionID, c.ExecutionID) {
			n++
		}
	}
	return n, nil
}

func (m *MockStore) CountAdSets(executionID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, a := range m.adSets {
		if matchesExecution(executionID, a.ExecutionID) {
			n++
		}
	}
	return n, nil
}

func (m *MockStore) CountPosts(executionID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, p := range m.posts {
		if matchesExecution(executionID, p.ExecutionID) {
			n++
		}
	}
	return n, nil
}

func (m *MockStore) CountResearchEntries(executionID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.research {
		if matchesExecution(executionID, r.ExecutionID) {
			n++
		}
	}
	return n, nil
}

func (m *MockStore) CountMediaFiles(executionID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, f := range m.mediaFiles {
		if matchesExecution(executionID, f.ExecutionID) {
			n++
		}
	}
	return n, nil
}

func (m *MockStore) ListCampaigns(executionID string) ([]models.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.listErrs["campaigns"]; err != nil {
		return nil, err
	}
	var out []models.Campaign
	for _, c := range m.campaigns {
		if matchesExecution(executionID, c.ExecutionID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockStore) ListAdSets(executionID string) ([]models.AdSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.listErrs["ad_sets"]; err != nil {
		return nil, err
	}
	var out []models.AdSet
	for _, a := range m.adSets {
		if matchesExecution(executionID, a.ExecutionID) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockStore) ListPosts(executionID string) ([]models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.listErrs["posts"]; err != nil {
		return nil, err
	}
	var out []models.Post
	for _, p := range m.posts {
		if matchesExecution(executionID, p.ExecutionID) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockStore) ListResearchEntries(executionID string) ([]models.ResearchEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.listErrs["research"]; err != nil {
		return nil, err
	}
	var out []models.ResearchEntry
	for _, r := range m.research {
		if matchesExecution(executionID, r.ExecutionID) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockStore) ListMediaFiles(executionID string) ([]models.MediaFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.listErrs["media_files"]; err != nil {
		return nil, err
	}
	var out []models.MediaFile
	for _, f := range m.mediaFiles {
		if matchesExecution(executionID, f.ExecutionID) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
