package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/platform/logger"
	"github.com/phrazzld/reviewdesk/internal/store"
)

// PostgresReviewerStore implements store.ReviewerStore on PostgreSQL.
type PostgresReviewerStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewerStore creates a reviewer store on db, which may be a
// pool or a transaction. A nil logger falls back to slog.Default().
func NewPostgresReviewerStore(db store.DBTX, logger *slog.Logger) *PostgresReviewerStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresReviewerStore{
		db:     db,
		logger: logger.With(slog.String("component", "reviewer_store")),
	}
}

var _ store.ReviewerStore = (*PostgresReviewerStore)(nil)

// WithTx implements store.ReviewerStore.WithTx.
func (s *PostgresReviewerStore) WithTx(tx *sql.Tx) store.ReviewerStore {
	return &PostgresReviewerStore{db: tx, logger: s.logger}
}

const reviewerColumns = "id, username, password_hash, nickname, unit_price, created_at"

func scanReviewer(row interface{ Scan(...any) error }, r *domain.Reviewer) error {
	return row.Scan(&r.ID, &r.Username, &r.PasswordHash, &r.Nickname, &r.UnitPrice, &r.CreatedAt)
}

// Create implements store.ReviewerStore.Create.
func (s *PostgresReviewerStore) Create(ctx context.Context, reviewer *domain.Reviewer) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := reviewer.Validate(); err != nil {
		log.Warn("reviewer validation failed during create",
			slog.String("error", err.Error()),
			slog.String("username", reviewer.Username))
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviewers (id, username, password_hash, nickname, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, reviewer.ID, reviewer.Username, reviewer.PasswordHash, reviewer.Nickname, reviewer.UnitPrice, reviewer.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("username already exists", slog.String("username", reviewer.Username))
			return MapUniqueViolation(err, store.ErrUsernameExists)
		}
		log.Error("failed to create reviewer",
			slog.String("error", err.Error()),
			slog.String("username", reviewer.Username))
		return MapError(err)
	}

	log.Info("reviewer created",
		slog.String("reviewer_id", reviewer.ID.String()),
		slog.String("username", reviewer.Username))
	return nil
}

// GetByID implements store.ReviewerStore.GetByID.
func (s *PostgresReviewerStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reviewer, error) {
	return s.getOne(ctx, "id", id)
}

// GetByUsername implements store.ReviewerStore.GetByUsername.
func (s *PostgresReviewerStore) GetByUsername(ctx context.Context, username string) (*domain.Reviewer, error) {
	return s.getOne(ctx, "username", strings.TrimSpace(username))
}

func (s *PostgresReviewerStore) getOne(ctx context.Context, column string, value any) (*domain.Reviewer, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Select(reviewerColumns).
		From("reviewers").
		Where(column+" = ?", value).
		ToSql()
	if err != nil {
		return nil, err
	}

	var r domain.Reviewer
	if err := scanReviewer(s.db.QueryRowContext(ctx, query, args...), &r); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("reviewer not found", slog.Any(column, value))
			return nil, store.ErrReviewerNotFound
		}
		log.Error("failed to get reviewer",
			slog.String("error", err.Error()),
			slog.String("by", column))
		return nil, MapError(err)
	}
	return &r, nil
}

// List implements store.ReviewerStore.List.
func (s *PostgresReviewerStore) List(ctx context.Context) ([]*domain.ReviewerSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.username, r.password_hash, r.nickname, r.unit_price, r.created_at,
		       COUNT(t.id) AS task_count
		FROM reviewers r
		LEFT JOIN tasks t ON t.reviewer_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC
	`)
	if err != nil {
		log.Error("failed to list reviewers", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	reviewers := []*domain.ReviewerSummary{}
	for rows.Next() {
		var r domain.ReviewerSummary
		if err := rows.Scan(&r.ID, &r.Username, &r.PasswordHash, &r.Nickname, &r.UnitPrice, &r.CreatedAt, &r.TaskCount); err != nil {
			log.Error("failed to scan reviewer row", slog.String("error", err.Error()))
			return nil, err
		}
		reviewers = append(reviewers, &r)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning reviewer rows", slog.String("error", err.Error()))
		return nil, err
	}
	return reviewers, nil
}

// Update implements store.ReviewerStore.Update.
func (s *PostgresReviewerStore) Update(ctx context.Context, id uuid.UUID, patch domain.ReviewerPatch) (*domain.Reviewer, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := patch.Validate(); err != nil {
		return nil, err
	}

	b := psql.Update("reviewers").Where("id = ?", id).Suffix("RETURNING " + reviewerColumns)
	if patch.Nickname != nil {
		b = b.Set("nickname", strings.TrimSpace(*patch.Nickname))
	}
	if patch.UnitPrice != nil {
		b = b.Set("unit_price", *patch.UnitPrice)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	var r domain.Reviewer
	if err := scanReviewer(s.db.QueryRowContext(ctx, query, args...), &r); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReviewerNotFound
		}
		log.Error("failed to update reviewer",
			slog.String("error", err.Error()),
			slog.String("reviewer_id", id.String()))
		return nil, MapError(err)
	}

	log.Info("reviewer updated", slog.String("reviewer_id", id.String()))
	return &r, nil
}

// Delete implements store.ReviewerStore.Delete. Tasks and settlements are
// removed by the foreign key cascade.
func (s *PostgresReviewerStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM reviewers WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete reviewer",
			slog.String("error", err.Error()),
			slog.String("reviewer_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrReviewerNotFound); err != nil {
		return err
	}

	log.Info("reviewer deleted", slog.String("reviewer_id", id.String()))
	return nil
}
