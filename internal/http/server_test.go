package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	internal_http "github.com/ethanrimes/campaign-management-platform/internal/http"
	"github.com/ethanrimes/campaign-management-platform/internal/log"
	"github.com/ethanrimes/campaign-management-platform/pkg/models"
	"github.com/ethanrimes/campaign-management-platform/pkg/service"
	"github.com/ethanrimes/campaign-management-platform/pkg/storage"
)

func TestServer(t *testing.T) {
	logger := log.GetLogger()

	newServer := func(store storage.Store) *httptest.Server {
		projector := service.NewProjector(store, logger)
		assembler := service.NewAssembler(store, projector, logger)
		watcher := service.NewWatcher(assembler, logger, service.WithPollInterval(10*time.Millisecond))
		return httptest.NewServer(internal_http.NewRouter(projector, assembler, watcher))
	}

	seedExecution := func(t *testing.T, store *storage.MockStore) (*service.LedgerService, string) {
		assert.NoError(t, store.SaveInitiative(models.Initiative{
			ID:        "init-1",
			Name:      "Acme Apparel",
			IsActive:  true,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}))
		ledger := service.NewLedgerService(store, logger)
		id, err := ledger.StartExecution("init-1", models.FullCycleWorkflow)
		assert.NoError(t, err)
		return ledger, id
	}

	t.Run("Health", func(t *testing.T) {
		server := newServer(storage.NewMockStore())
		defer server.Close()

		resp, err := http.Get(server.URL + "/health")
		assert.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("ListExecutions", func(t *testing.T) {
		store := storage.NewMockStore()
		_, id := seedExecution(t, store)
		server := newServer(store)
		defer server.Close()

		resp, err := http.Get(server.URL + "/executions?initiative_id=init-1")
		assert.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var summaries []models.ExecutionSummary
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&summaries))
		assert.Len(t, summaries, 1)
		assert.Equal(t, id, summaries[0].ExecutionID)
	})

	t.Run("ListExecutionsBadLimit", func(t *testing.T) {
		server := newServer(storage.NewMockStore())
		defer server.Close()

		resp, err := http.Get(server.URL + "/executions?limit=banana")
		assert.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("GetSummary", func(t *testing.T) {
		store := storage.NewMockStore()
		ledger, id := seedExecution(t, store)
		assert.NoError(t, ledger.RecordStepOutcome(id, "research", service.StepCompleted, ""))
		server := newServer(store)
		defer server.Close()

		resp, err := http.Get(server.URL + "/executions/" + id + "/summary")
		assert.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var summary models.ExecutionSummary
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
		assert.Equal(t, models.RunningExecutionStatus, summary.Status)
		assert.Equal(t, []string{"research"}, summary.StepsCompleted)
	})

	t.Run("GetTrace", func(t *testing.T) {
		store := storage.NewMockStore()
		ledger, id := seedExecution(t, store)
		assert.NoError(t, ledger.RecordGuardrailViolation(id, "content_creation", "post volume exceeded"))
		assert.NoError(t, store.SaveCampaign(models.Campaign{
			ID:           "c-1",
			InitiativeID: "init-1",
			Name:         "Spring Launch",
			Objective:    "awareness",
			ExecutionID:  &id,
			CreatedAt:    time.Now(),
		}))
		server := newServer(store)
		defer server.Close()

		resp, err := http.Get(server.URL + "/executions/" + id)
		assert.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var trace models.Trace
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&trace))
		assert.Equal(t, id, trace.Summary.ExecutionID)
		assert.Equal(t, 1, trace.Summary.CampaignsCreated)
		assert.Len(t, trace.Campaigns, 1)
		assert.Len(t, trace.Violations, 1)
		assert.Empty(t, trace.Warnings)
	})

	t.Run("GetTraceNotFound", func(t *testing.T) {
		server := newServer(storage.NewMockStore())
		defer server.Close()

		resp, err := http.Get(server.URL + "/executions/ghost")
		assert.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("WatchStreamsUntilTerminal", func(t *testing.T) {
		store := storage.NewMockStore()
		ledger, id := seedExecution(t, store)
		server := newServer(store)
		defer server.Close()

		wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/executions/" + id + "/watch"
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		assert.NoError(t, err)
		defer conn.Close()

		var first struct {
			Type  string       `json:"type"`
			Trace models.Trace `json:"trace"`
		}
		assert.NoError(t, conn.ReadJSON(&first))
		assert.Equal(t, "trace", first.Type)
		assert.Equal(t, models.RunningExecutionStatus, first.Trace.Summary.Status)

		assert.NoError(t, ledger.Finalize(id, models.CompletedExecutionStatus))

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var final struct {
			Type  string       `json:"type"`
			Trace models.Trace `json:"trace"`
		}
		assert.NoError(t, conn.ReadJSON(&final))
		assert.Equal(t, "terminal", final.Type)
		assert.Equal(t, models.CompletedExecutionStatus, final.Trace.Summary.Status)
	})

	t.Run("WatchUnknownExecution", func(t *testing.T) {
		server := newServer(storage.NewMockStore())
		defer server.Close()

		wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/executions/ghost/watch"
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		assert.NoError(t, err)
		defer conn.Close()

		var ev struct {
			Type  string `json:"type"`
			Error string `json:"error"`
		}
		assert.NoError(t, conn.ReadJSON(&ev))
		assert.Equal(t, "error", ev.Type)
		assert.Contains(t, ev.Error, "ghost")
	})
}
