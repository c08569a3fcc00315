package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/domain"
)

// ReviewerStore defines the interface for reviewer persistence.
type ReviewerStore interface {
	// Create saves a new reviewer.
	// Returns ErrUsernameExists if the username is taken.
	Create(ctx context.Context, reviewer *domain.Reviewer) error

	// GetByID retrieves a reviewer.
	// Returns ErrReviewerNotFound if the reviewer does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reviewer, error)

	// GetByUsername retrieves a reviewer by login name.
	// Returns ErrReviewerNotFound if no reviewer has that username.
	GetByUsername(ctx context.Context, username string) (*domain.Reviewer, error)

	// List returns all reviewers with their task counts, newest first.
	List(ctx context.Context) ([]*domain.ReviewerSummary, error)

	// Update applies a partial update and returns the updated reviewer.
	Update(ctx context.Context, id uuid.UUID, patch domain.ReviewerPatch) (*domain.Reviewer, error)

	// Delete removes a reviewer together with their tasks and settlements.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a ReviewerStore that uses the provided transaction.
	WithTx(tx *sql.Tx) ReviewerStore
}

// AdminStore defines the interface for admin account persistence.
type AdminStore interface {
	// Create saves a new admin.
	// Returns ErrUsernameExists if the username is taken.
	Create(ctx context.Context, admin *domain.Admin) error

	// GetByUsername retrieves an admin.
	// Returns ErrAdminNotFound if no admin has that username.
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
}

// CafeFilter narrows cafe listings. An empty Region means all regions.
type CafeFilter struct {
	Region string
}

// CafeStore defines the interface for cafe persistence.
type CafeStore interface {
	// Create saves a new cafe.
	Create(ctx context.Context, cafe *domain.Cafe) error

	// GetByID retrieves a cafe.
	// Returns ErrCafeNotFound if the cafe does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Cafe, error)

	// ExistsByLink reports whether a cafe with the link is registered. When
	// region is non-nil only cafes in that region are considered.
	ExistsByLink(ctx context.Context, link string, region *string) (bool, error)

	// List returns cafes ordered by region then name.
	List(ctx context.Context, filter CafeFilter) ([]*domain.Cafe, error)

	// Regions returns the distinct non-empty regions in use.
	Regions(ctx context.Context) ([]string, error)

	// DeleteByIDs removes the given cafes and returns how many were removed.
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)

	// DeleteAll removes every cafe and returns how many were removed.
	DeleteAll(ctx context.Context) (int64, error)

	// WithTx returns a CafeStore that uses the provided transaction.
	WithTx(tx *sql.Tx) CafeStore
}

// SettlementStore defines the interface for settlement persistence.
type SettlementStore interface {
	// Accumulate adds one approved task of the given amount to the
	// reviewer's settlement for month, creating the row if needed.
	// The read-modify-write happens in a single statement.
	Accumulate(ctx context.Context, reviewerID uuid.UUID, month domain.Month, amount int64) (*domain.Settlement, error)

	// Get retrieves one settlement row.
	// Returns ErrSettlementNotFound if the reviewer has none for month.
	Get(ctx context.Context, reviewerID uuid.UUID, month domain.Month) (*domain.Settlement, error)

	// ListByReviewer returns a reviewer's settlements, newest month first.
	ListByReviewer(ctx context.Context, reviewerID uuid.UUID) ([]*domain.Settlement, error)

	// List returns settlement rows joined with reviewers. An empty month
	// means all months.
	List(ctx context.Context, month domain.Month) ([]*domain.SettlementView, error)

	// WithTx returns a SettlementStore that uses the provided transaction.
	WithTx(tx *sql.Tx) SettlementStore
}
