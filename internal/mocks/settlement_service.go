package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/domain"
)

// MockSettlementService implements service.SettlementService with function fields.
type MockSettlementService struct {
	SummaryFn         func(ctx context.Context, reviewerID uuid.UUID) (*domain.SettlementSummary, error)
	MonthDetailFn     func(ctx context.Context, reviewerID uuid.UUID, month string) (*domain.SettlementDetail, error)
	ListSettlementsFn func(ctx context.Context, month string) ([]*domain.SettlementView, error)
	ReconcileFn       func(ctx context.Context) ([]domain.SettlementDrift, error)
}

func (m *MockSettlementService) Summary(ctx context.Context, reviewerID uuid.UUID) (*domain.SettlementSummary, error) {
	return m.SummaryFn(ctx, reviewerID)
}

func (m *MockSettlementService) MonthDetail(ctx context.Context, reviewerID uuid.UUID, month string) (*domain.SettlementDetail, error) {
	return m.MonthDetailFn(ctx, reviewerID, month)
}

func (m *MockSettlementService) ListSettlements(ctx context.Context, month string) ([]*domain.SettlementView, error) {
	return m.ListSettlementsFn(ctx, month)
}

func (m *MockSettlementService) Reconcile(ctx context.Context) ([]domain.SettlementDrift, error) {
	return m.ReconcileFn(ctx)
}
