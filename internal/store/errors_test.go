package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"ErrNotFound", ErrNotFound, true},
		{"wrapped ErrNotFound", fmt.Errorf("lookup: %w", ErrNotFound), true},
		{"ErrTaskNotFound", ErrTaskNotFound, true},
		{"ErrReviewerNotFound", ErrReviewerNotFound, true},
		{"ErrAdminNotFound", ErrAdminNotFound, true},
		{"ErrCafeNotFound", fmt.Errorf("delete cafe: %w", ErrCafeNotFound), true},
		{"ErrSettlementNotFound", ErrSettlementNotFound, true},
		{"duplicate is not not-found", ErrCafeExists, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"ErrDuplicate", ErrDuplicate, true},
		{"ErrUsernameExists", fmt.Errorf("create reviewer: %w", ErrUsernameExists), true},
		{"ErrCafeExists", ErrCafeExists, true},
		{"status race is not duplicate", ErrTaskStatusChanged, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDuplicateError(tt.err))
		})
	}
}

func TestTaskStatusChangedIsUpdateFailure(t *testing.T) {
	assert.ErrorIs(t, ErrTaskStatusChanged, ErrUpdateFailed)
	assert.NotErrorIs(t, ErrTaskStatusChanged, ErrNotFound)
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection reset")

	t.Run("with wrapped error", func(t *testing.T) {
		err := NewStoreError("task", "approve", "database error", cause)
		assert.Equal(t, "approve operation on task failed: database error: connection reset", err.Error())
		assert.ErrorIs(t, err, cause)
		assert.Same(t, cause, err.Unwrap())

		var target *StoreError
		assert.True(t, errors.As(fmt.Errorf("outer: %w", err), &target))
		assert.Equal(t, "task", target.Entity)
	})

	t.Run("without wrapped error", func(t *testing.T) {
		err := &StoreError{Entity: "cafe", Operation: "import", Message: "no rows"}
		assert.Equal(t, "import operation on cafe failed: no rows", err.Error())
		assert.Nil(t, err.Unwrap())
	})
}
