package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ethanrimes/campaign-management-platform/pkg/models"
	"github.com/ethanrimes/campaign-management-platform/pkg/storage"
)

// Logger defines the logging interface the services accept.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type StepOutcome string

const (
	StepCompleted StepOutcome = "completed"
	StepFailed    StepOutcome = "failed"
)

// LedgerService owns the execution ledger: one row per workflow run, mutated
// incrementally as the upstream engine reports step outcomes. It never
// touches the entity tables.
type LedgerService struct {
	store  storage.Store
	logger Logger
}

func NewLedgerService(store storage.Store, logger Logger) *LedgerService {
	return &LedgerService{store: store, logger: logger}
}

// StartExecution creates a ledger row with status running and returns the new
// execution identifier.
func (s *LedgerService) StartExecution(initiativeID string, workflowType models.WorkflowType) (id string, err error) {
	if initiativeID == "" {
		return "", validationErrorf("initiative id is required")
	}
	switch workflowType {
	case models.ResearchOnlyWorkflow, models.ContentOnlyWorkflow, models.FullCycleWorkflow:
	default:
		return "", validationErrorf("unknown workflow type %q", workflowType)
	}

	txStore, err := s.store.Begin()
	if err != nil {
		return "", errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				s.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			s.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()

	exists, err := txStore.InitiativeExists(initiativeID)
	if err != nil {
		return "", errors.Wrap(err, "failed to look up initiative")
	}
	if !exists {
		return "", validationErrorf("initiative %q is unknown", initiativeID)
	}

	now := time.Now()
	exec := models.Execution{
		ID:             uuid.NewString(),
		InitiativeID:   initiativeID,
		WorkflowType:   workflowType,
		Status:         models.RunningExecutionStatus,
		StartedAt:      now,
		StepsCompleted: []string{},
		StepsFailed:    []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err = txStore.SaveExecution(exec); err != nil {
		return "", errors.Wrap(err, "failed to save execution")
	}
	s.logger.Infof("Started execution %s for initiative %s (%s)", exec.ID, initiativeID, workflowType)
	return exec.ID, nil
}

// RecordStepOutcome appends stepName to the completed or failed list. On a
// failure, detail lands in the per-step error payload. Repeating a step name
// is de-duplicated in the list. A terminal ledger row keeps its status and
// completed-at untouched; the logs still grow, so a late or duplicate signal
// cannot resurrect a finished run.
func (s *LedgerService) RecordStepOutcome(executionID, stepName string, outcome StepOutcome, detail string) (err error) {
	if stepName == "" {
		return validationErrorf("step name is required")
	}
	if outcome != StepCompleted && outcome != StepFailed {
		return validationErrorf("unknown step outcome %q", outcome)
	}

	txStore, err := s.store.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				s.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			s.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()

	exec, err := txStore.GetExecution(executionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &NotFoundError{ExecutionID: executionID}
		}
		return errors.Wrapf(err, "failed to get execution %s", executionID)
	}

	switch outcome {
	case StepCompleted:
		exec.StepsCompleted = appendStep(exec.StepsCompleted, stepName)
	case StepFailed:
		exec.StepsFailed = appendStep(exec.StepsFailed, stepName)
		if exec.ErrorMessages, err = setStepError(exec.ErrorMessages, stepName, detail); err != nil {
			return errors.Wrap(err, "failed to record step error")
		}
	}

	if err = txStore.UpdateExecution(exec); err != nil {
		return errors.Wrapf(err, "failed to update execution %s", executionID)
	}
	s.logger.Infof("Recorded step '%s' as %s for execution %s", stepName, outcome, executionID)
	return nil
}

// RecordGuardrailViolation appends a violation record. It never changes
// execution status.
func (s *LedgerService) RecordGuardrailViolation(executionID, step, message string) error {
	if _, err := s.store.GetExecution(executionID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &NotFoundError{ExecutionID: executionID}
		}
		return errors.Wrapf(err, "failed to get execution %s", executionID)
	}
	v := models.GuardrailViolation{
		ExecutionID: executionID,
		Step:        step,
		Message:     message,
		CreatedAt:   time.Now(),
	}
	if err := s.store.SaveGuardrailViolation(v); err != nil {
		return errors.Wrapf(err, "failed to save guardrail violation for execution %s", executionID)
	}
	s.logger.Infof("Recorded guardrail violation on step '%s' for execution %s", step, executionID)
	return nil
}

// Finalize stamps a terminal status and completed-at. Re-finalizing with the
// same status is a no-op; a conflicting status returns InvalidStateError.
func (s *LedgerService) Finalize(executionID string, finalStatus models.ExecutionStatus) (err error) {
	if !finalStatus.Terminal() {
		return validationErrorf("final status must be %q or %q, got %q",
			models.CompletedExecutionStatus, models.FailedExecutionStatus, finalStatus)
	}

	txStore, err := s.store.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				s.logger.Errorf("Failed to rollback after error: %v (original error: %v)", rollbackErr, err)
			}
			return
		}
		if commitErr := txStore.Commit(); commitErr != nil {
			s.logger.Errorf("Failed to commit: %v", commitErr)
			err = commitErr
		}
	}()

	exec, err := txStore.GetExecution(executionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &NotFoundError{ExecutionID: executionID}
		}
		return errors.Wrapf(err, "failed to get execution %s", executionID)
	}

	if exec.Status.Terminal() {
		if exec.Status == finalStatus {
			return nil
		}
		return &InvalidStateError{
			ExecutionID: executionID,
			Current:     string(exec.Status),
			Requested:   string(finalStatus),
		}
	}

	now := time.Now()
	exec.Status = finalStatus
	exec.CompletedAt = &now
	if err = txStore.UpdateExecution(exec); err != nil {
		return errors.Wrapf(err, "failed to finalize execution %s", executionID)
	}
	s.logger.Infof("Finalized execution %s as %s", executionID, finalStatus)
	return nil
}

func appendStep(steps []string, name string) []string {
	for _, s := range steps {
		if s == name {
			return steps
		}
	}
	return append(steps, name)
}

func setStepError(payload []byte, step, detail string) ([]byte, error) {
	msgs := map[string]string{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &msgs); err != nil {
			return nil, err
		}
	}
	msgs[step] = detail
	return json.Marshal(msgs)
}
