package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/platform/logger"
	"github.com/phrazzld/reviewdesk/internal/store"
)

// recentApprovedLimit is how many approved tasks the summary shows.
const recentApprovedLimit = 10

// SettlementService reads settlement data. Settlements are written by
// TaskService.ApproveTask.
type SettlementService interface {
	// Summary returns the reviewer's my-page overview.
	Summary(ctx context.Context, reviewerID uuid.UUID) (*domain.SettlementSummary, error)

	// MonthDetail returns one month of the reviewer's settlement. The
	// settlement is nil when nothing was approved that month.
	MonthDetail(ctx context.Context, reviewerID uuid.UUID, month string) (*domain.SettlementDetail, error)

	// ListSettlements returns every reviewer's settlement rows for month, or
	// all months when month is empty.
	ListSettlements(ctx context.Context, month string) ([]*domain.SettlementView, error)

	// Reconcile recomputes settlements from approved tasks and reports the
	// rows that differ from what is stored.
	Reconcile(ctx context.Context) ([]domain.SettlementDrift, error)
}

type settlementServiceImpl struct {
	tasks       store.TaskStore
	settlements store.SettlementStore
	location    *time.Location
	logger      *slog.Logger
	timeFunc    func() time.Time
}

var _ SettlementService = (*settlementServiceImpl)(nil)

// NewSettlementService creates a new SettlementService.
func NewSettlementService(
	tasks store.TaskStore,
	settlements store.SettlementStore,
	settings SettlementSettings,
	logger *slog.Logger,
) (SettlementService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if settlements == nil {
		return nil, domain.NewValidationError("settlements", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &settlementServiceImpl{
		tasks:       tasks,
		settlements: settlements,
		location:    settings.location(),
		logger:      logger.With(slog.String("component", "settlement_service")),
		timeFunc:    time.Now,
	}, nil
}

func (s *settlementServiceImpl) fail(log *slog.Logger, op string, err error, attrs ...any) error {
	logFailure(log, "settlement "+op+" failed", err, attrs...)
	return NewServiceError("settlement", op, "could not load settlements", err)
}

// Summary implements SettlementService.
func (s *settlementServiceImpl) Summary(ctx context.Context, reviewerID uuid.UUID) (*domain.SettlementSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("reviewer_id", reviewerID.String()))

	counts, err := s.tasks.CountByStatus(ctx, reviewerID)
	if err != nil {
		return nil, s.fail(log, "summary", err)
	}

	settlements, err := s.settlements.ListByReviewer(ctx, reviewerID)
	if err != nil {
		return nil, s.fail(log, "summary", err)
	}

	current := domain.MonthOf(s.timeFunc(), s.location)
	currentTotal, err := s.tasks.SumApproved(ctx, reviewerID, current, s.location)
	if err != nil {
		return nil, s.fail(log, "summary", err)
	}

	recent, err := s.tasks.ListApproved(ctx, store.ApprovedTaskQuery{
		ReviewerID: reviewerID,
		Location:   s.location,
		Limit:      recentApprovedLimit,
	})
	if err != nil {
		return nil, s.fail(log, "summary", err)
	}

	return &domain.SettlementSummary{
		Counts:              counts,
		TotalTasks:          counts.Total(),
		Settlements:         settlements,
		CurrentMonth:        current,
		CurrentMonthTotal:   currentTotal,
		RecentApprovedTasks: recent,
	}, nil
}

// MonthDetail implements SettlementService.
func (s *settlementServiceImpl) MonthDetail(ctx context.Context, reviewerID uuid.UUID, month string) (*domain.SettlementDetail, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("reviewer_id", reviewerID.String()),
		slog.String("month", month))

	m, err := domain.ParseMonth(month)
	if err != nil {
		return nil, s.fail(log, "detail", err)
	}

	settlement, err := s.settlements.Get(ctx, reviewerID, m)
	if err != nil {
		if !errors.Is(err, store.ErrSettlementNotFound) {
			return nil, s.fail(log, "detail", err)
		}
		settlement = nil
	}

	tasks, err := s.tasks.ListApproved(ctx, store.ApprovedTaskQuery{
		ReviewerID: reviewerID,
		Month:      m,
		Location:   s.location,
	})
	if err != nil {
		return nil, s.fail(log, "detail", err)
	}

	return &domain.SettlementDetail{Month: m, Settlement: settlement, Tasks: tasks}, nil
}

// ListSettlements implements SettlementService.
func (s *settlementServiceImpl) ListSettlements(ctx context.Context, month string) ([]*domain.SettlementView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var m domain.Month
	if month != "" {
		parsed, err := domain.ParseMonth(month)
		if err != nil {
			return nil, s.fail(log, "list", err)
		}
		m = parsed
	}

	rows, err := s.settlements.List(ctx, m)
	if err != nil {
		return nil, s.fail(log, "list", err, slog.String("month", month))
	}
	return rows, nil
}

// Reconcile implements SettlementService.
func (s *settlementServiceImpl) Reconcile(ctx context.Context) ([]domain.SettlementDrift, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	approvals, err := s.tasks.ListApprovals(ctx)
	if err != nil {
		return nil, s.fail(log, "reconcile", err)
	}

	views, err := s.settlements.List(ctx, "")
	if err != nil {
		return nil, s.fail(log, "reconcile", err)
	}
	stored := make([]*domain.Settlement, 0, len(views))
	for _, v := range views {
		stored = append(stored, &v.Settlement)
	}

	drifts := domain.DiffSettlements(stored, domain.AggregateApprovals(approvals, s.location))
	if len(drifts) > 0 {
		log.Warn("settlement drift detected",
			slog.Int("drift_count", len(drifts)),
			slog.Int("approved_tasks", len(approvals)))
	} else {
		log.Info("settlements reconciled",
			slog.Int("approved_tasks", len(approvals)),
			slog.Int("settlement_rows", len(stored)))
	}
	if drifts == nil {
		drifts = []domain.SettlementDrift{}
	}
	return drifts, nil
}
