package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/service/auth"
	"github.com/phrazzld/reviewdesk/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockTaskStore mocks the store.TaskStore interface
type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task, expected domain.TaskStatus) error {
	args := m.Called(ctx, task, expected)
	return args.Error(0)
}

func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.TaskView, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*domain.TaskView), args.Error(1)
}

func (m *MockTaskStore) ListForReviewer(ctx context.Context, reviewerID uuid.UUID) ([]*domain.TaskView, error) {
	args := m.Called(ctx, reviewerID)
	return args.Get(0).([]*domain.TaskView), args.Error(1)
}

func (m *MockTaskStore) CountByStatus(ctx context.Context, reviewerID uuid.UUID) (domain.StatusCounts, error) {
	args := m.Called(ctx, reviewerID)
	return args.Get(0).(domain.StatusCounts), args.Error(1)
}

func (m *MockTaskStore) ListApproved(ctx context.Context, q store.ApprovedTaskQuery) ([]*domain.ApprovedTask, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]*domain.ApprovedTask), args.Error(1)
}

func (m *MockTaskStore) SumApproved(
	ctx context.Context,
	reviewerID uuid.UUID,
	month domain.Month,
	loc *time.Location,
) (int64, error) {
	args := m.Called(ctx, reviewerID, month, loc)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskStore) ListApprovals(ctx context.Context) ([]domain.Approval, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Approval), args.Error(1)
}

func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

// MockReviewerStore mocks the store.ReviewerStore interface
type MockReviewerStore struct {
	mock.Mock
}

func (m *MockReviewerStore) Create(ctx context.Context, reviewer *domain.Reviewer) error {
	args := m.Called(ctx, reviewer)
	return args.Error(0)
}

func (m *MockReviewerStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reviewer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reviewer), args.Error(1)
}

func (m *MockReviewerStore) GetByUsername(ctx context.Context, username string) (*domain.Reviewer, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reviewer), args.Error(1)
}

func (m *MockReviewerStore) List(ctx context.Context) ([]*domain.ReviewerSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.ReviewerSummary), args.Error(1)
}

func (m *MockReviewerStore) Update(
	ctx context.Context,
	id uuid.UUID,
	patch domain.ReviewerPatch,
) (*domain.Reviewer, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reviewer), args.Error(1)
}

func (m *MockReviewerStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReviewerStore) WithTx(tx *sql.Tx) store.ReviewerStore {
	return m
}

// MockAdminStore mocks the store.AdminStore interface
type MockAdminStore struct {
	mock.Mock
}

func (m *MockAdminStore) Create(ctx context.Context, admin *domain.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockAdminStore) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

// MockCafeStore mocks the store.CafeStore interface
type MockCafeStore struct {
	mock.Mock
}

func (m *MockCafeStore) Create(ctx context.Context, cafe *domain.Cafe) error {
	args := m.Called(ctx, cafe)
	return args.Error(0)
}

func (m *MockCafeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Cafe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cafe), args.Error(1)
}

func (m *MockCafeStore) ExistsByLink(ctx context.Context, link string, region *string) (bool, error) {
	args := m.Called(ctx, link, region)
	return args.Bool(0), args.Error(1)
}

func (m *MockCafeStore) List(ctx context.Context, filter store.CafeFilter) ([]*domain.Cafe, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*domain.Cafe), args.Error(1)
}

func (m *MockCafeStore) Regions(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCafeStore) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCafeStore) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCafeStore) WithTx(tx *sql.Tx) store.CafeStore {
	return m
}

// MockSettlementStore mocks the store.SettlementStore interface
type MockSettlementStore struct {
	mock.Mock
}

func (m *MockSettlementStore) Accumulate(
	ctx context.Context,
	reviewerID uuid.UUID,
	month domain.Month,
	amount int64,
) (*domain.Settlement, error) {
	args := m.Called(ctx, reviewerID, month, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settlement), args.Error(1)
}

func (m *MockSettlementStore) Get(ctx context.Context, reviewerID uuid.UUID, month domain.Month) (*domain.Settlement, error) {
	args := m.Called(ctx, reviewerID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settlement), args.Error(1)
}

func (m *MockSettlementStore) ListByReviewer(ctx context.Context, reviewerID uuid.UUID) ([]*domain.Settlement, error) {
	args := m.Called(ctx, reviewerID)
	return args.Get(0).([]*domain.Settlement), args.Error(1)
}

func (m *MockSettlementStore) List(ctx context.Context, month domain.Month) ([]*domain.SettlementView, error) {
	args := m.Called(ctx, month)
	return args.Get(0).([]*domain.SettlementView), args.Error(1)
}

func (m *MockSettlementStore) WithTx(tx *sql.Tx) store.SettlementStore {
	return m
}

// MockPasswordHasher mocks auth.PasswordHasher
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

// MockPasswordVerifier mocks auth.PasswordVerifier
type MockPasswordVerifier struct {
	mock.Mock
}

func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	args := m.Called(hashedPassword, password)
	return args.Error(0)
}

// MockJWTService mocks auth.JWTService
type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateToken(ctx context.Context, principal domain.Principal) (string, error) {
	args := m.Called(ctx, principal)
	return args.String(0), args.Error(1)
}

func (m *MockJWTService) TokenLifetime() time.Duration {
	return 7 * 24 * time.Hour
}

func (m *MockJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

// noTx runs fn without a database so tests can exercise transactional code paths.
func noTx(ctx context.Context, _ *sql.DB, fn store.TxFn) error {
	return fn(ctx, nil)
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
