package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored or violates a database constraint.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update matched no row because the
	// row changed underneath the caller.
	ErrUpdateFailed = errors.New("update failed")

	// Entity-specific "not found" errors

	ErrReviewerNotFound   = fmt.Errorf("%w: reviewer", ErrNotFound)
	ErrAdminNotFound      = fmt.Errorf("%w: admin", ErrNotFound)
	ErrCafeNotFound       = fmt.Errorf("%w: cafe", ErrNotFound)
	ErrTaskNotFound       = fmt.Errorf("%w: task", ErrNotFound)
	ErrSettlementNotFound = fmt.Errorf("%w: settlement", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrUsernameExists indicates that the username is already taken.
	ErrUsernameExists = fmt.Errorf("%w: username", ErrDuplicate)

	// ErrCafeExists indicates that a cafe with the same link is registered.
	ErrCafeExists = fmt.Errorf("%w: cafe link", ErrDuplicate)

	// ErrTaskStatusChanged is returned when a guarded task update finds the
	// task no longer in the status it was read in.
	ErrTaskStatusChanged = fmt.Errorf("%w: task status changed concurrently", ErrUpdateFailed)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "task", "cafe")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string
	Err       error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
