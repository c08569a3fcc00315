// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")

	// ErrInvalidTransition is returned when a task cannot move from its
	// current status to the requested one.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrTaskApproved is returned for any mutation attempted on an approved task.
	ErrTaskApproved = fmt.Errorf("%w: task is already approved", ErrInvalidTransition)
)

// ValidationError describes a single invalid field. Message is written for
// end users and is safe to return in API responses.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap exposes ErrValidation and the specific cause, so errors.Is matches
// either of them.
func (e *ValidationError) Unwrap() []error {
	if e.Err == nil || e.Err == ErrValidation {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

// NewValidationError creates a ValidationError. The error always matches
// ErrValidation; err, when non-nil, is matched as well.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// TransitionError reports a status change the state machine does not allow.
type TransitionError struct {
	Action string
	From   TaskStatus
	Err    error
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a task with status %s", e.Action, e.From)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TransitionError) Unwrap() error {
	if e.Err == nil {
		return ErrInvalidTransition
	}
	return e.Err
}

func newTransitionError(action string, from TaskStatus) *TransitionError {
	err := ErrInvalidTransition
	if from == TaskStatusApproved {
		err = ErrTaskApproved
	}
	return &TransitionError{Action: action, From: from, Err: err}
}
