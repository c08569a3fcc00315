package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/platform/logger"
	"github.com/phrazzld/reviewdesk/internal/store"
)

// PostgresCafeStore implements store.CafeStore on PostgreSQL.
type PostgresCafeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCafeStore creates a cafe store.
func NewPostgresCafeStore(db store.DBTX, logger *slog.Logger) *PostgresCafeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCafeStore{
		db:     db,
		logger: logger.With(slog.String("component", "cafe_store")),
	}
}

var _ store.CafeStore = (*PostgresCafeStore)(nil)

// WithTx implements store.CafeStore.WithTx.
func (s *PostgresCafeStore) WithTx(tx *sql.Tx) store.CafeStore {
	return &PostgresCafeStore{db: tx, logger: s.logger}
}

const cafeColumns = "id, name, region, cafe_link, allow_review, allow_business_name, allow_after_post, require_approval, notes, created_at"

func scanCafe(row interface{ Scan(...any) error }) (*domain.Cafe, error) {
	var c domain.Cafe
	var region, notes sql.NullString
	err := row.Scan(
		&c.ID,
		&c.Name,
		&region,
		&c.Link,
		&c.Permissions.AllowReview,
		&c.Permissions.AllowBusinessName,
		&c.Permissions.AllowAfterPost,
		&c.Permissions.RequireApproval,
		&notes,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Region = region.String
	c.Notes = notes.String
	return &c, nil
}

// Create implements store.CafeStore.Create.
func (s *PostgresCafeStore) Create(ctx context.Context, cafe *domain.Cafe) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := cafe.Validate(); err != nil {
		log.Warn("cafe validation failed during create",
			slog.String("error", err.Error()),
			slog.String("cafe_link", cafe.Link))
		return err
	}

	query, args, err := psql.Insert("cafes").
		Columns("id", "name", "region", "cafe_link", "allow_review", "allow_business_name",
			"allow_after_post", "require_approval", "notes", "created_at").
		Values(cafe.ID, cafe.Name, nullString(cafe.Region), cafe.Link,
			cafe.Permissions.AllowReview, cafe.Permissions.AllowBusinessName,
			cafe.Permissions.AllowAfterPost, cafe.Permissions.RequireApproval,
			nullString(cafe.Notes), cafe.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to create cafe",
			slog.String("error", err.Error()),
			slog.String("cafe_link", cafe.Link))
		return MapUniqueViolation(err, store.ErrCafeExists)
	}

	log.Debug("cafe created",
		slog.String("cafe_id", cafe.ID.String()),
		slog.String("region", cafe.Region))
	return nil
}

// GetByID implements store.CafeStore.GetByID.
func (s *PostgresCafeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Cafe, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, "SELECT "+cafeColumns+" FROM cafes WHERE id = $1", id)
	cafe, err := scanCafe(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("cafe not found", slog.String("cafe_id", id.String()))
			return nil, store.ErrCafeNotFound
		}
		log.Error("failed to get cafe",
			slog.String("error", err.Error()),
			slog.String("cafe_id", id.String()))
		return nil, MapError(err)
	}
	return cafe, nil
}

// ExistsByLink implements store.CafeStore.ExistsByLink. A nil region checks
// the link across all regions; an empty one matches cafes without a region.
func (s *PostgresCafeStore) ExistsByLink(ctx context.Context, link string, region *string) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where := sq.And{sq.Eq{"cafe_link": link}}
	if region != nil {
		if *region == "" {
			where = append(where, sq.Expr("COALESCE(region, '') = ''"))
		} else {
			where = append(where, sq.Eq{"region": *region})
		}
	}

	inner, args, err := psql.Select("1").From("cafes").Where(where).ToSql()
	if err != nil {
		return false, err
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, "SELECT EXISTS ("+inner+")", args...).Scan(&exists); err != nil {
		log.Error("failed to check cafe link", slog.String("error", err.Error()))
		return false, MapError(err)
	}
	return exists, nil
}

// List implements store.CafeStore.List.
func (s *PostgresCafeStore) List(ctx context.Context, filter store.CafeFilter) ([]*domain.Cafe, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	b := psql.Select(cafeColumns).From("cafes").OrderBy("region NULLS LAST", "name", "created_at")
	if filter.Region != "" {
		b = b.Where(sq.Eq{"region": filter.Region})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list cafes", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	cafes := []*domain.Cafe{}
	for rows.Next() {
		cafe, err := scanCafe(rows)
		if err != nil {
			log.Error("failed to scan cafe row", slog.String("error", err.Error()))
			return nil, err
		}
		cafes = append(cafes, cafe)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cafes, nil
}

// Regions implements store.CafeStore.Regions.
func (s *PostgresCafeStore) Regions(ctx context.Context) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT region FROM cafes
		WHERE region IS NOT NULL AND region <> ''
		ORDER BY region
	`)
	if err != nil {
		log.Error("failed to list regions", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	regions := []string{}
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		regions = append(regions, r)
	}
	return regions, rows.Err()
}

// DeleteByIDs implements store.CafeStore.DeleteByIDs.
func (s *PostgresCafeStore) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := psql.Delete("cafes").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, err
	}
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to delete cafes", slog.String("error", err.Error()))
		return 0, MapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	log.Info("cafes deleted", slog.Int64("count", n))
	return n, nil
}

// DeleteAll implements store.CafeStore.DeleteAll.
func (s *PostgresCafeStore) DeleteAll(ctx context.Context) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, "DELETE FROM cafes")
	if err != nil {
		log.Error("failed to delete all cafes", slog.String("error", err.Error()))
		return 0, MapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	log.Warn("all cafes deleted", slog.Int64("count", n))
	return n, nil
}
