package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/domain"
)

// TaskFilter narrows the admin task listing. Zero values mean "any".
type TaskFilter struct {
	Status     domain.TaskStatus
	ReviewerID uuid.UUID
}

// ApprovedTaskQuery selects approved tasks of one reviewer. Month is
// interpreted in Location.
type ApprovedTaskQuery struct {
	ReviewerID uuid.UUID
	Month      domain.Month
	Location   *time.Location
	Limit      uint64
}

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// Create saves a new task.
	// Returns store.ErrInvalidEntity if the reviewer or cafe does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// GetByIDForUpdate is GetByID with a row lock. It must be called inside a transaction.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update writes the task's mutable fields, guarded by the status the
	// task was read with. Returns ErrTaskStatusChanged if the guard fails.
	Update(ctx context.Context, task *domain.Task, expected domain.TaskStatus) error

	// Delete removes a task.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns tasks for the admin view, newest assignment first.
	List(ctx context.Context, filter TaskFilter) ([]*domain.TaskView, error)

	// ListForReviewer returns a reviewer's tasks by status priority, then
	// deadline with missing deadlines last.
	ListForReviewer(ctx context.Context, reviewerID uuid.UUID) ([]*domain.TaskView, error)

	// CountByStatus counts a reviewer's tasks per status. Every status is present.
	CountByStatus(ctx context.Context, reviewerID uuid.UUID) (domain.StatusCounts, error)

	// ListApproved returns a reviewer's approved tasks, most recent first.
	// An empty Month means all months; a zero Limit means no limit.
	ListApproved(ctx context.Context, q ApprovedTaskQuery) ([]*domain.ApprovedTask, error)

	// SumApproved returns the settlement amount approved for a reviewer in a month.
	SumApproved(ctx context.Context, reviewerID uuid.UUID, month domain.Month, loc *time.Location) (int64, error)

	// ListApprovals returns every approved task's settlement projection.
	ListApprovals(ctx context.Context) ([]domain.Approval, error)

	// WithTx returns a TaskStore that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
