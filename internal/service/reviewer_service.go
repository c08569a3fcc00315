package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/platform/logger"
	"github.com/phrazzld/reviewdesk/internal/service/auth"
	"github.com/phrazzld/reviewdesk/internal/store"
)

// ReviewerService manages reviewer accounts.
type ReviewerService interface {
	// CreateReviewer registers a reviewer with the configured initial password.
	CreateReviewer(ctx context.Context, username, nickname string, unitPrice int64) (*domain.Reviewer, error)

	// ListReviewers returns all reviewers with their task counts.
	ListReviewers(ctx context.Context) ([]*domain.ReviewerSummary, error)

	// UpdateReviewer changes a reviewer's nickname and/or unit price.
	UpdateReviewer(ctx context.Context, id uuid.UUID, patch domain.ReviewerPatch) (*domain.Reviewer, error)

	// DeleteReviewer removes a reviewer with their tasks and settlements.
	DeleteReviewer(ctx context.Context, id uuid.UUID) error
}

type reviewerServiceImpl struct {
	reviewers       store.ReviewerStore
	hasher          auth.PasswordHasher
	initialPassword string
	logger          *slog.Logger
	timeFunc        func() time.Time
}

var _ ReviewerService = (*reviewerServiceImpl)(nil)

// NewReviewerService creates a new ReviewerService. New reviewers log in
// with initialPassword until an admin resets it.
func NewReviewerService(
	reviewers store.ReviewerStore,
	hasher auth.PasswordHasher,
	initialPassword string,
	logger *slog.Logger,
) (ReviewerService, error) {
	if reviewers == nil {
		return nil, domain.NewValidationError("reviewers", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if initialPassword == "" {
		return nil, domain.NewValidationError("initialPassword", "cannot be empty", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &reviewerServiceImpl{
		reviewers:       reviewers,
		hasher:          hasher,
		initialPassword: initialPassword,
		logger:          logger.With(slog.String("component", "reviewer_service")),
		timeFunc:        time.Now,
	}, nil
}

func (s *reviewerServiceImpl) fail(log *slog.Logger, op string, err error, attrs ...any) error {
	logFailure(log, "reviewer "+op+" failed", err, attrs...)
	return NewServiceError("reviewer", op, "could not "+op+" reviewer", err)
}

// CreateReviewer implements ReviewerService.
func (s *reviewerServiceImpl) CreateReviewer(ctx context.Context, username, nickname string, unitPrice int64) (*domain.Reviewer, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	hash, err := s.hasher.Hash(s.initialPassword)
	if err != nil {
		return nil, s.fail(log, "create", err)
	}

	reviewer, err := domain.NewReviewer(username, nickname, unitPrice, hash, s.timeFunc())
	if err != nil {
		return nil, s.fail(log, "create", err, slog.String("username", username))
	}

	if err := s.reviewers.Create(ctx, reviewer); err != nil {
		return nil, s.fail(log, "create", err, slog.String("username", username))
	}

	log.Info("reviewer created",
		slog.String("reviewer_id", reviewer.ID.String()),
		slog.String("username", reviewer.Username))
	return reviewer, nil
}

// ListReviewers implements ReviewerService.
func (s *reviewerServiceImpl) ListReviewers(ctx context.Context) ([]*domain.ReviewerSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	reviewers, err := s.reviewers.List(ctx)
	if err != nil {
		return nil, s.fail(log, "list", err)
	}
	return reviewers, nil
}

// UpdateReviewer implements ReviewerService.
func (s *reviewerServiceImpl) UpdateReviewer(ctx context.Context, id uuid.UUID, patch domain.ReviewerPatch) (*domain.Reviewer, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("reviewer_id", id.String()))

	if err := patch.Validate(); err != nil {
		return nil, s.fail(log, "update", err)
	}

	reviewer, err := s.reviewers.Update(ctx, id, patch)
	if err != nil {
		return nil, s.fail(log, "update", err)
	}

	log.Info("reviewer updated",
		slog.String("nickname", reviewer.Nickname),
		slog.Int64("unit_price", reviewer.UnitPrice))
	return reviewer, nil
}

// DeleteReviewer implements ReviewerService.
func (s *reviewerServiceImpl) DeleteReviewer(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("reviewer_id", id.String()))

	if err := s.reviewers.Delete(ctx, id); err != nil {
		return s.fail(log, "delete", err)
	}
	log.Info("reviewer deleted")
	return nil
}
