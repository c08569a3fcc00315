package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/platform/logger"
	"github.com/phrazzld/reviewdesk/internal/store"
)

// TaskService manages the task lifecycle.
type TaskService interface {
	// CreateTask assigns a new pending task to a reviewer. Cafe targets are
	// checked against the cafe's posting permissions.
	CreateTask(ctx context.Context, params domain.NewTaskParams) (*domain.Task, error)

	// ListTasks returns tasks for the admin view.
	ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.TaskView, error)

	// ListReviewerTasks returns the reviewer's own tasks in work order.
	ListReviewerTasks(ctx context.Context, reviewerID uuid.UUID) ([]*domain.TaskView, error)

	// StartTask moves the reviewer's pending task to ongoing.
	StartTask(ctx context.Context, reviewerID, taskID uuid.UUID) (*domain.Task, error)

	// SubmitTask records the reviewer's completion link.
	SubmitTask(ctx context.Context, reviewerID, taskID uuid.UUID, link string) (*domain.Task, error)

	// DeclineTask gives the task back to the admin.
	DeclineTask(ctx context.Context, reviewerID, taskID uuid.UUID, reason string) (*domain.Task, error)

	// ApproveTask approves a submitted task and adds it to the reviewer's
	// monthly settlement in the same transaction.
	ApproveTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)

	// RejectTask sends the task back with a reason.
	RejectTask(ctx context.Context, taskID uuid.UUID, reason string) (*domain.Task, error)

	// ReassignTask hands the task to another reviewer.
	ReassignTask(ctx context.Context, taskID, reviewerID uuid.UUID) (*domain.Task, error)

	// UpdateGuide changes the guide fields of a task that has not been submitted.
	UpdateGuide(ctx context.Context, taskID uuid.UUID, patch domain.GuidePatch) (*domain.Task, error)

	// DeleteTask removes a task that has not been approved.
	DeleteTask(ctx context.Context, taskID uuid.UUID) error
}

// SettlementSettings configures how approvals are paid and bucketed.
type SettlementSettings struct {
	Pricing  domain.PricingPolicy
	Location *time.Location
}

func (s SettlementSettings) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

type taskServiceImpl struct {
	db          *sql.DB
	tasks       store.TaskStore
	reviewers   store.ReviewerStore
	cafes       store.CafeStore
	settlements store.SettlementStore
	settings    SettlementSettings
	logger      *slog.Logger

	runTx    store.TxRunner
	timeFunc func() time.Time
}

var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	db *sql.DB,
	tasks store.TaskStore,
	reviewers store.ReviewerStore,
	cafes store.CafeStore,
	settlements store.SettlementStore,
	settings SettlementSettings,
	logger *slog.Logger,
) (TaskService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if reviewers == nil {
		return nil, domain.NewValidationError("reviewers", "cannot be nil", domain.ErrValidation)
	}
	if cafes == nil {
		return nil, domain.NewValidationError("cafes", "cannot be nil", domain.ErrValidation)
	}
	if settlements == nil {
		return nil, domain.NewValidationError("settlements", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		db:          db,
		tasks:       tasks,
		reviewers:   reviewers,
		cafes:       cafes,
		settlements: settlements,
		settings:    settings,
		logger:      logger.With(slog.String("component", "task_service")),
		runTx:       store.RunInTransaction,
		timeFunc:    time.Now,
	}, nil
}

func (s *taskServiceImpl) fail(log *slog.Logger, op string, err error, attrs ...any) error {
	logFailure(log, "task "+op+" failed", err, attrs...)
	return NewServiceError("task", op, "could not "+op+" task", err)
}

// CreateTask implements TaskService.
func (s *taskServiceImpl) CreateTask(ctx context.Context, params domain.NewTaskParams) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(params, s.timeFunc())
	if err != nil {
		return nil, s.fail(log, "create", err)
	}

	err = s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.reviewers.WithTx(tx).GetByID(ctx, task.ReviewerID); err != nil {
			return err
		}
		if target, ok := task.Target.(domain.CafeTarget); ok {
			cafe, err := s.cafes.WithTx(tx).GetByID(ctx, target.CafeID)
			if err != nil {
				return err
			}
			if err := cafe.Permits(task.Type, task.Guide.BusinessName); err != nil {
				return err
			}
		}
		return s.tasks.WithTx(tx).Create(ctx, task)
	})
	if err != nil {
		return nil, s.fail(log, "create", err,
			slog.String("reviewer_id", params.ReviewerID.String()),
			slog.String("task_type", string(params.Type)))
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("reviewer_id", task.ReviewerID.String()),
		slog.String("task_type", string(task.Type)),
		slog.String("target", string(task.Target.Kind())))
	return task, nil
}

// ListTasks implements TaskService.
func (s *taskServiceImpl) ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.TaskView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, s.fail(log, "list", domain.NewValidationError("status", "unknown task status "+string(filter.Status), domain.ErrInvalidFormat))
	}
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, s.fail(log, "list", err)
	}
	return tasks, nil
}

// ListReviewerTasks implements TaskService.
func (s *taskServiceImpl) ListReviewerTasks(ctx context.Context, reviewerID uuid.UUID) ([]*domain.TaskView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tasks, err := s.tasks.ListForReviewer(ctx, reviewerID)
	if err != nil {
		return nil, s.fail(log, "list", err, slog.String("reviewer_id", reviewerID.String()))
	}
	return tasks, nil
}

// txStores are the stores bound to the current transaction.
type txStores struct {
	reviewers   store.ReviewerStore
	settlements store.SettlementStore
}

// mutation changes a locked task in place and reports whether it needs saving.
type mutation func(ctx context.Context, task *domain.Task, stores txStores) (bool, error)

// mutate loads the task under a row lock, applies fn and writes the result
// guarded by the status the task was read with.
func (s *taskServiceImpl) mutate(ctx context.Context, op string, taskID uuid.UUID, fn mutation) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("task_id", taskID.String()))

	var result *domain.Task
	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		tasks := s.tasks.WithTx(tx)
		task, err := tasks.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return err
		}

		expected := task.Status
		changed, err := fn(ctx, task, txStores{
			reviewers:   s.reviewers.WithTx(tx),
			settlements: s.settlements.WithTx(tx),
		})
		if err != nil {
			return err
		}
		if changed {
			if err := tasks.Update(ctx, task, expected); err != nil {
				return err
			}
			log.Info("task updated",
				slog.String("operation", op),
				slog.String("from", string(expected)),
				slog.String("to", string(task.Status)))
		}
		result = task
		return nil
	})
	if err != nil {
		return nil, s.fail(log, op, err)
	}
	return result, nil
}

func requireOwner(task *domain.Task, reviewerID uuid.UUID) error {
	if task.ReviewerID != reviewerID {
		return ErrTaskNotOwned
	}
	return nil
}

// StartTask implements TaskService.
func (s *taskServiceImpl) StartTask(ctx context.Context, reviewerID, taskID uuid.UUID) (*domain.Task, error) {
	return s.mutate(ctx, "start", taskID, func(_ context.Context, task *domain.Task, _ txStores) (bool, error) {
		if err := requireOwner(task, reviewerID); err != nil {
			return false, err
		}
		return task.Start(), nil
	})
}

// SubmitTask implements TaskService.
func (s *taskServiceImpl) SubmitTask(ctx context.Context, reviewerID, taskID uuid.UUID, link string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	return s.mutate(ctx, "submit", taskID, func(_ context.Context, task *domain.Task, _ txStores) (bool, error) {
		if err := requireOwner(task, reviewerID); err != nil {
			return false, err
		}
		res, err := task.Submit(link)
		if err != nil {
			return false, err
		}
		if res.Overwrote {
			log.Info("submit link overwritten",
				slog.String("task_id", task.ID.String()),
				slog.String("previous_link", res.PreviousLink),
				slog.String("new_link", task.SubmitLink))
		}
		return res.Changed, nil
	})
}

// DeclineTask implements TaskService.
func (s *taskServiceImpl) DeclineTask(ctx context.Context, reviewerID, taskID uuid.UUID, reason string) (*domain.Task, error) {
	return s.mutate(ctx, "decline", taskID, func(_ context.Context, task *domain.Task, _ txStores) (bool, error) {
		if err := requireOwner(task, reviewerID); err != nil {
			return false, err
		}
		return true, task.Decline(reason)
	})
}

// ApproveTask implements TaskService.
func (s *taskServiceImpl) ApproveTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	return s.mutate(ctx, "approve", taskID, func(ctx context.Context, task *domain.Task, stores txStores) (bool, error) {
		if task.Status != domain.TaskStatusSubmitted {
			// Repeated approvals end here with a transition error.
			return false, task.Approve(0, s.timeFunc())
		}

		reviewer, err := stores.reviewers.GetByID(ctx, task.ReviewerID)
		if err != nil {
			return false, err
		}
		amount := s.settings.Pricing.AmountFor(task.Type, reviewer.UnitPrice)
		if err := task.Approve(amount, s.timeFunc()); err != nil {
			return false, err
		}

		month := domain.MonthOf(*task.ApprovedAt, s.settings.location())
		settlement, err := stores.settlements.Accumulate(ctx, task.ReviewerID, month, amount)
		if err != nil {
			return false, err
		}

		log.Info("settlement accumulated",
			slog.String("task_id", task.ID.String()),
			slog.String("reviewer_id", task.ReviewerID.String()),
			slog.String("month", month.String()),
			slog.Int64("amount", amount),
			slog.Int("task_count", settlement.TaskCount),
			slog.Int64("total_amount", settlement.TotalAmount))
		return true, nil
	})
}

// RejectTask implements TaskService.
func (s *taskServiceImpl) RejectTask(ctx context.Context, taskID uuid.UUID, reason string) (*domain.Task, error) {
	return s.mutate(ctx, "reject", taskID, func(_ context.Context, task *domain.Task, _ txStores) (bool, error) {
		return true, task.Reject(reason)
	})
}

// ReassignTask implements TaskService.
func (s *taskServiceImpl) ReassignTask(ctx context.Context, taskID, reviewerID uuid.UUID) (*domain.Task, error) {
	return s.mutate(ctx, "reassign", taskID, func(ctx context.Context, task *domain.Task, stores txStores) (bool, error) {
		if reviewerID == uuid.Nil {
			return false, domain.NewValidationError("reviewer_id", "is required", domain.ErrInvalidID)
		}
		if _, err := stores.reviewers.GetByID(ctx, reviewerID); err != nil {
			return false, err
		}
		return true, task.Reassign(reviewerID, s.timeFunc())
	})
}

// UpdateGuide implements TaskService.
func (s *taskServiceImpl) UpdateGuide(ctx context.Context, taskID uuid.UUID, patch domain.GuidePatch) (*domain.Task, error) {
	return s.mutate(ctx, "update", taskID, func(_ context.Context, task *domain.Task, _ txStores) (bool, error) {
		return true, task.ApplyGuide(patch)
	})
}

// DeleteTask implements TaskService.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		tasks := s.tasks.WithTx(tx)
		task, err := tasks.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if err := task.CheckDeletable(); err != nil {
			return err
		}
		return tasks.Delete(ctx, taskID)
	})
	if err != nil {
		return s.fail(log, "delete", err, slog.String("task_id", taskID.String()))
	}
	log.Info("task deleted", slog.String("task_id", taskID.String()))
	return nil
}
