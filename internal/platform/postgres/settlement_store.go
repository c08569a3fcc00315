package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/platform/logger"
	"github.com/phrazzld/reviewdesk/internal/store"
)

// PostgresSettlementStore implements store.SettlementStore on PostgreSQL.
type PostgresSettlementStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSettlementStore creates a settlement store.
func NewPostgresSettlementStore(db store.DBTX, logger *slog.Logger) *PostgresSettlementStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSettlementStore{
		db:     db,
		logger: logger.With(slog.String("component", "settlement_store")),
	}
}

var _ store.SettlementStore = (*PostgresSettlementStore)(nil)

// WithTx implements store.SettlementStore.WithTx.
func (s *PostgresSettlementStore) WithTx(tx *sql.Tx) store.SettlementStore {
	return &PostgresSettlementStore{db: tx, logger: s.logger}
}

const settlementColumns = "s.id, s.reviewer_id, s.month, s.task_count, s.total_amount, s.created_at, s.updated_at"

func scanSettlement(row interface{ Scan(...any) error }, st *domain.Settlement) error {
	return row.Scan(&st.ID, &st.ReviewerID, &st.Month, &st.TaskCount, &st.TotalAmount, &st.CreatedAt, &st.UpdatedAt)
}

// Accumulate implements store.SettlementStore.Accumulate.
func (s *PostgresSettlementStore) Accumulate(
	ctx context.Context,
	reviewerID uuid.UUID,
	month domain.Month,
	amount int64,
) (*domain.Settlement, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := domain.ParseMonth(string(month)); err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, domain.NewValidationError("amount", "cannot be negative", nil)
	}

	var st domain.Settlement
	err := scanSettlement(s.db.QueryRowContext(ctx, `
		INSERT INTO settlements AS s (id, reviewer_id, month, task_count, total_amount)
		VALUES ($1, $2, $3, 1, $4)
		ON CONFLICT (reviewer_id, month) DO UPDATE
		SET task_count = s.task_count + 1,
		    total_amount = s.total_amount + EXCLUDED.total_amount,
		    updated_at = NOW()
		RETURNING `+settlementColumns,
		uuid.New(), reviewerID, string(month), amount), &st)
	if err != nil {
		log.Error("failed to accumulate settlement",
			slog.String("error", err.Error()),
			slog.String("reviewer_id", reviewerID.String()),
			slog.String("month", string(month)))
		return nil, MapError(err)
	}

	log.Info("settlement accumulated",
		slog.String("reviewer_id", reviewerID.String()),
		slog.String("month", string(month)),
		slog.Int64("amount", amount),
		slog.Int("task_count", st.TaskCount),
		slog.Int64("total_amount", st.TotalAmount))
	return &st, nil
}

// Get implements store.SettlementStore.Get.
func (s *PostgresSettlementStore) Get(ctx context.Context, reviewerID uuid.UUID, month domain.Month) (*domain.Settlement, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var st domain.Settlement
	err := scanSettlement(s.db.QueryRowContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements s WHERE s.reviewer_id = $1 AND s.month = $2",
		reviewerID, string(month)), &st)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSettlementNotFound
		}
		log.Error("failed to get settlement",
			slog.String("error", err.Error()),
			slog.String("reviewer_id", reviewerID.String()))
		return nil, MapError(err)
	}
	return &st, nil
}

// ListByReviewer implements store.SettlementStore.ListByReviewer.
func (s *PostgresSettlementStore) ListByReviewer(ctx context.Context, reviewerID uuid.UUID) ([]*domain.Settlement, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements s WHERE s.reviewer_id = $1 ORDER BY s.month DESC",
		reviewerID)
	if err != nil {
		log.Error("failed to list settlements",
			slog.String("error", err.Error()),
			slog.String("reviewer_id", reviewerID.String()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	settlements := []*domain.Settlement{}
	for rows.Next() {
		var st domain.Settlement
		if err := scanSettlement(rows, &st); err != nil {
			return nil, err
		}
		settlements = append(settlements, &st)
	}
	return settlements, rows.Err()
}

// List implements store.SettlementStore.List.
func (s *PostgresSettlementStore) List(ctx context.Context, month domain.Month) ([]*domain.SettlementView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	b := psql.Select(settlementColumns, "r.username", "r.nickname").
		From("settlements s").
		Join("reviewers r ON r.id = s.reviewer_id").
		OrderBy("s.month DESC", "r.username")
	if month != "" {
		b = b.Where("s.month = ?", string(month))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list settlements", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	views := []*domain.SettlementView{}
	for rows.Next() {
		var v domain.SettlementView
		if err := rows.Scan(&v.ID, &v.ReviewerID, &v.Month, &v.TaskCount, &v.TotalAmount,
			&v.CreatedAt, &v.UpdatedAt, &v.ReviewerUsername, &v.ReviewerNickname); err != nil {
			log.Error("failed to scan settlement row", slog.String("error", err.Error()))
			return nil, err
		}
		views = append(views, &v)
	}
	return views, rows.Err()
}
