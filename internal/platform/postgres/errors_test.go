package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/reviewdesk/internal/platform/postgres"
	"github.com/phrazzld/reviewdesk/internal/store"
	"github.com/stretchr/testify/assert"
)

func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "tasks",
		ColumnName:     "reviewer_id",
		ConstraintName: "tasks_reviewer_id_fkey",
	}
}

// mockResult implements sql.Result for testing
type mockResult struct {
	rowsAffected int64
	err          error
}

func (m mockResult) LastInsertId() (int64, error) { return 0, m.err }
func (m mockResult) RowsAffected() (int64, error) { return m.rowsAffected, m.err }

func TestMapError(t *testing.T) {
	t.Parallel()

	generic := errors.New("boom")
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "nil", err: nil, expected: nil},
		{name: "no rows", err: sql.ErrNoRows, expected: store.ErrNotFound},
		{name: "unique violation", err: newPgError("23505"), expected: store.ErrDuplicate},
		{name: "foreign key violation", err: newPgError("23503"), expected: store.ErrInvalidEntity},
		{name: "check violation", err: newPgError("23514"), expected: store.ErrInvalidEntity},
		{name: "not null violation", err: newPgError("23502"), expected: store.ErrInvalidEntity},
		{name: "wrapped unique violation", err: fmt.Errorf("exec: %w", newPgError("23505")), expected: store.ErrDuplicate},
		{name: "unmapped error", err: generic, expected: generic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mapped := postgres.MapError(tt.err)
			if tt.expected == nil {
				assert.NoError(t, mapped)
				return
			}
			assert.ErrorIs(t, mapped, tt.expected)
		})
	}
}

func TestViolationPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, postgres.IsUniqueViolation(newPgError("23505")))
	assert.False(t, postgres.IsUniqueViolation(newPgError("23503")))
	assert.False(t, postgres.IsUniqueViolation(nil))
	assert.True(t, postgres.IsForeignKeyViolation(newPgError("23503")))
	assert.False(t, postgres.IsForeignKeyViolation(errors.New("generic error")))
}

func TestMapUniqueViolation(t *testing.T) {
	t.Parallel()

	err := postgres.MapUniqueViolation(newPgError("23505"), store.ErrUsernameExists)
	assert.ErrorIs(t, err, store.ErrUsernameExists)
	assert.ErrorIs(t, err, store.ErrDuplicate)

	err = postgres.MapUniqueViolation(newPgError("23505"), nil)
	assert.ErrorIs(t, err, store.ErrDuplicate)

	err = postgres.MapUniqueViolation(newPgError("23503"), store.ErrUsernameExists)
	assert.NotErrorIs(t, err, store.ErrUsernameExists)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, postgres.CheckRowsAffected(mockResult{rowsAffected: 1}, store.ErrTaskNotFound))
	assert.ErrorIs(t, postgres.CheckRowsAffected(mockResult{}, store.ErrTaskNotFound), store.ErrTaskNotFound)
	assert.ErrorIs(t, postgres.CheckRowsAffected(mockResult{}, nil), store.ErrNotFound)
	assert.Error(t, postgres.CheckRowsAffected(mockResult{err: errors.New("driver")}, nil))
	assert.Error(t, postgres.CheckRowsAffected(nil, nil))
}
