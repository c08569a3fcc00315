package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/cafeimport"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/service"
)

// MockReviewerService implements service.ReviewerService with function fields.
type MockReviewerService struct {
	CreateReviewerFn func(ctx context.Context, username, nickname string, unitPrice int64) (*domain.Reviewer, error)
	ListReviewersFn  func(ctx context.Context) ([]*domain.ReviewerSummary, error)
	UpdateReviewerFn func(ctx context.Context, id uuid.UUID, patch domain.ReviewerPatch) (*domain.Reviewer, error)
	DeleteReviewerFn func(ctx context.Context, id uuid.UUID) error
}

func (m *MockReviewerService) CreateReviewer(ctx context.Context, username, nickname string, unitPrice int64) (*domain.Reviewer, error) {
	return m.CreateReviewerFn(ctx, username, nickname, unitPrice)
}

func (m *MockReviewerService) ListReviewers(ctx context.Context) ([]*domain.ReviewerSummary, error) {
	return m.ListReviewersFn(ctx)
}

func (m *MockReviewerService) UpdateReviewer(ctx context.Context, id uuid.UUID, patch domain.ReviewerPatch) (*domain.Reviewer, error) {
	return m.UpdateReviewerFn(ctx, id, patch)
}

func (m *MockReviewerService) DeleteReviewer(ctx context.Context, id uuid.UUID) error {
	return m.DeleteReviewerFn(ctx, id)
}

// MockCafeService implements service.CafeService with function fields.
type MockCafeService struct {
	CreateCafeFn     func(ctx context.Context, input service.CafeInput) (*domain.Cafe, error)
	ListCafesFn      func(ctx context.Context, region string) (*service.CafeListing, error)
	DeleteCafesFn    func(ctx context.Context, ids []uuid.UUID) (int64, error)
	DeleteAllCafesFn func(ctx context.Context) (int64, error)
	ImportCafesFn    func(ctx context.Context, rows []cafeimport.Row) (*cafeimport.Result, error)
}

func (m *MockCafeService) CreateCafe(ctx context.Context, input service.CafeInput) (*domain.Cafe, error) {
	return m.CreateCafeFn(ctx, input)
}

func (m *MockCafeService) ListCafes(ctx context.Context, region string) (*service.CafeListing, error) {
	return m.ListCafesFn(ctx, region)
}

func (m *MockCafeService) DeleteCafes(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return m.DeleteCafesFn(ctx, ids)
}

func (m *MockCafeService) DeleteAllCafes(ctx context.Context) (int64, error) {
	return m.DeleteAllCafesFn(ctx)
}

func (m *MockCafeService) ImportCafes(ctx context.Context, rows []cafeimport.Row) (*cafeimport.Result, error) {
	return m.ImportCafesFn(ctx, rows)
}

// MockAuthService implements service.AuthService with function fields.
type MockAuthService struct {
	LoginFn       func(ctx context.Context, username, password string) (*service.LoginResult, error)
	EnsureAdminFn func(ctx context.Context, username, password string) error
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*service.LoginResult, error) {
	return m.LoginFn(ctx, username, password)
}

func (m *MockAuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	if m.EnsureAdminFn == nil {
		return nil
	}
	return m.EnsureAdminFn(ctx, username, password)
}
