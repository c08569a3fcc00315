// Package service implements the use cases of the review desk: task
// lifecycle, settlements, the cafe and reviewer registry, and login.
package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in *ServiceError
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrTaskNotOwned indicates a reviewer acted on a task assigned to someone else.
	// API layer should map this to HTTP 403 Forbidden.
	ErrTaskNotOwned = errors.New("task is assigned to another reviewer")

	// ErrInvalidCredentials indicates a failed login.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ServiceError adds the failing service and operation to an error.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, operation, message string, err error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// isExpected reports whether err is an outcome the caller caused, as opposed
// to an infrastructure failure.
func isExpected(err error) bool {
	var validationErr *domain.ValidationError
	var transitionErr *domain.TransitionError
	switch {
	case errors.As(err, &validationErr), errors.As(err, &transitionErr):
		return true
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, ErrTaskNotOwned),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrDuplicate),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, store.ErrUpdateFailed):
		return true
	}
	return false
}

// logFailure logs expected failures at debug level and everything else as an error.
func logFailure(log *slog.Logger, msg string, err error, attrs ...any) {
	attrs = append(attrs, slog.String("error", err.Error()))
	if isExpected(err) {
		log.Debug(msg, attrs...)
		return
	}
	log.Error(msg, attrs...)
}
