package service_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ethanrimes/campaign-management-platform/pkg/models"
	"github.com/ethanrimes/campaign-management-platform/pkg/service"
	"github.com/ethanrimes/campaign-management-platform/pkg/storage"
)

type logger struct{}

func (l logger) Infof(format string, args ...interface{}) {
	// no-op
}

func (l logger) Errorf(format string, args ...interface{}) {
	// no-op
}

func newStoreWithInitiative(t *testing.T, initiativeID string) *storage.MockStore {
	t.Helper()
	store := storage.NewMockStore()
	err := store.SaveInitiative(models.Initiative{
		ID:        initiativeID,
		Name:      "Test Initiative",
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	assert.NoError(t, err)
	return store
}

func TestLedgerService(t *testing.T) {
	t.Run("StartExecution", func(t *testing.T) {
		store := newStoreWithInitiative(t, "init-1")
		svc := service.NewLedgerService(store, logger{})

		id, err := svc.StartExecution("init-1", models.FullCycleWorkflow)
		assert.NoError(t, err)
		assert.NotEmpty(t, id)

		exec, err := store.GetExecution(id)
		assert.NoError(t, err)
		assert.Equal(t, models.RunningExecutionStatus, exec.Status)
		assert.Equal(t, "init-1", exec.InitiativeID)
		assert.Nil(t, exec.CompletedAt)
		assert.Empty(t, exec.StepsCompleted)
		assert.Empty(t, exec.StepsFailed)
	})

	t.Run("StartExecutionMissingInitiative", func(t *testing.T) {
		store := newStoreWithInitiative(t, "init-1")
		svc := service.NewLedgerService(store, logger{})

		_, err := svc.StartExecution("", models.FullCycleWorkflow)
		assert.Error(t, err)
		assert.True(t, service.IsValidation(err))

		_, err = svc.StartExecution("init-unknown", models.FullCycleWorkflow)
		assert.Error(t, err)
		assert.True(t, service.IsValidation(err))
	})

	t.Run("StartExecutionUnknownWorkflowType", func(t *testing.T) {
		store := newStoreWithInitiative(t, "init-1")
		svc := service.NewLedgerService(store, logger{})

		_, err := svc.StartExecution("init-1", models.WorkflowType("publish_everything"))
		assert.Error(t, err)
		assert.True(t, service.IsValidation(err))
	})

	t.Run("RecordStepOutcome", func(t *testing.T) {
		store := newStoreWithInitiative(t, "init-1")
		svc := service.NewLedgerService(store, logger{})
		id, err := svc.StartExecution("init-1", models.ResearchOnlyWorkflow)
		assert.NoError(t, err)

		assert.NoError(t, svc.RecordStepOutcome(id, "Research", service.StepCompleted, ""))
		assert.NoError(t, svc.RecordStepOutcome(id, "Planning", service.StepFailed, "no budget left"))

		exec, err := store.GetExecution(id)
		assert.NoError(t, err)
		assert.Equal(t, []string{"Research"}, []string(exec.StepsCompleted))
		assert.Equal(t, []string{"Planning"}, []string(exec.StepsFailed))
		// Failure detail lands in the error payload keyed by step.
		var msgs map[string]string
		assert.NoError(t, json.Unmarshal(exec.ErrorMessages, &msgs))
		assert.Equal(t, "no budget left", msgs["Planning"])
		// Status is not touched by step outcomes; only Finalize is terminal.
		assert.Equal(t, models.RunningExecutionStatus, exec.Status)
	})

	t.Run("RecordStepOutcomeIdempotent", func(t *testing.T) {
		store := newStoreWithInitiative(t, "init-1")
		svc := service.NewLedgerService(store, logger{})
		id, err := svc.StartExecution("init-1", models.ResearchOnlyWorkflow)
		assert.NoError(t, err)

		assert.NoError(t, svc.RecordStepOutcome(id, "Research", service.StepCompleted, ""))
		assert.NoError(t, svc.RecordStepOutcome(id, "Research", service.StepCompleted, ""))

		exec, err := store.GetExecution(id)
		assert.NoError(t, err)
		assert.Equal(t, []string{"Research"}, []string(exec.StepsCompleted))
	})

	t.Run("RecordStepOutcomeAfterTerminal", func(t *testing.T) {
		store := newStoreWithInitiative(t, "init-1")
		svc := service.NewLedgerService(store, logger{})
		id, err := svc.StartExecution("init-1", models.FullCycleWorkflow)
		assert.NoError(t, err)
		assert.NoError(t, svc.Finalize(id, models.CompletedExecutionStatus))

		before, err := store.GetExecution(id)
		assert.NoError(t, err)

		// A late signal still appends to the logs but cannot resurrect status.
		assert.NoError(t, svc.RecordStepOutcome(id, "Content Creation", service.StepFailed, "late failure"))

		after, err := store.GetExecution(id)
		assert.NoError(t, err)
		assert.Equal(t, models.CompletedExecutionStatus, after.Status)
		assert.Equal(t, before.CompletedAt, after.CompletedAt)
		assert.Contains(t, []string(after.StepsFailed), "Content Creation")
	})

	t.Run("RecordStepOutcomeUnknownExecution", func(t *testing.T) {
		store := newStoreWithInitiative(t, "init-1")
		svc := service.NewLedgerService(store, logger{})

		err := svc.RecordStepOutcome("nope", "Research", service.StepCompleted, "")
		assert.Error(t, err)
		assert.True(t, service.IsNotFound(err))
	})

	t.Run("RecordGuardrailViolation", func(t *testing.T) {
		store := newStoreWithInitiative(t, "init-1")
		svc := service.NewLedgerService(store, logger{})
		id, err := svc.StartExecution("init-1", models.ContentOnlyWorkflow)
		assert.NoError(t, err)

		assert.NoError(t, svc.RecordGuardrailViolation(id, "Content Creation", "post volume limit exceeded"))

		violations, err := store.ListGuardrailViolations(id)
		assert.NoError(t, err)
		assert.Len(t, violations, 1)
		assert.Equal(t, "Content Creation", violations[0].Step)

		// Violations never change status.
		exec, err := store.GetExecution(id)
		assert.NoError(t, err)
		assert.Equal(t, models.RunningExecutionStatus, exec.Status)
	})

	t.Run("Finalize", func(t *testing.T) {
		store := newStoreWithInitiative(t, "init-1")
		svc := service.NewLedgerService(store, logger{})
		id, err := svc.StartExecution("init-1", models.FullCycleWorkflow)
		assert.NoError(t, err)

		assert.NoError(t, svc.Finalize(id, models.CompletedExecutionStatus))
		exec, err := store.GetExecution(id)
		assert.NoError(t, err)
		assert.Equal(t, models.CompletedExecutionStatus, exec.Status)
		assert.NotNil(t, exec.CompletedAt)
	})

	t.Run("FinalizeIdempotentSameStatus", func(t *testing.T) {
		store := newStoreWithInitiative(t, "init-1")
		svc := service.NewLedgerService(store, logger{})
		id, err := svc.StartExecution("init-1", models.FullCycleWorkflow)
		assert.NoError(t, err)

		assert.NoError(t, svc.Finalize(id, models.FailedExecutionStatus))
		assert.NoError(t, svc.Finalize(id, models.FailedExecutionStatus))
	})

	t.Run("FinalizeConflictingStatus", func(t *testing.T) {
		store := newStoreWithInitiative(t, "init-1")
		svc := service.NewLedgerService(store, logger{})
		id, err := svc.StartExecution("init-1", models.FullCycleWorkflow)
		assert.NoError(t, err)

		assert.NoError(t, svc.Finalize(id, models.CompletedExecutionStatus))
		err = svc.Finalize(id, models.FailedExecutionStatus)
		assert.Error(t, err)
		assert.True(t, service.IsInvalidState(err))

		// Status and completed-at survive the conflicting attempt.
		exec, err := store.GetExecution(id)
		assert.NoError(t, err)
		assert.Equal(t, models.CompletedExecutionStatus, exec.Status)
	})

	t.Run("FinalizeNonTerminalStatus", func(t *testing.T) {
		store := newStoreWithInitiative(t, "init-1")
		svc := service.NewLedgerService(store, logger{})
		id, err := svc.StartExecution("init-1", models.FullCycleWorkflow)
		assert.NoError(t, err)

		err = svc.Finalize(id, models.RunningExecutionStatus)
		assert.Error(t, err)
		assert.True(t, service.IsValidation(err))
	})
}
