package service

import (
	"fmt"

	"github.com/pkg/errors"
)

// ValidationError marks a malformed or missing required identifier on a write.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError marks a missing ledger row for a requested execution.
type NotFoundError struct {
	ExecutionID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("execution %q not found", e.ExecutionID)
}

// InvalidStateError marks an attempt to re-finalize an already-terminal
// execution with a conflicting status. It signals a logic error upstream.
type InvalidStateError struct {
	ExecutionID string
	Current     string
	Requested   string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("execution %q already finalized as %q, cannot re-finalize as %q",
		e.ExecutionID, e.Current, e.Requested)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInvalidState reports whether err is (or wraps) an InvalidStateError.
func IsInvalidState(err error) bool {
	var ise *InvalidStateError
	return errors.As(err, &ise)
}
