package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/platform/logger"
	"github.com/phrazzld/reviewdesk/internal/store"
)

// PostgresAdminStore implements store.AdminStore on PostgreSQL.
type PostgresAdminStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAdminStore creates an admin store.
func NewPostgresAdminStore(db store.DBTX, logger *slog.Logger) *PostgresAdminStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAdminStore{
		db:     db,
		logger: logger.With(slog.String("component", "admin_store")),
	}
}

var _ store.AdminStore = (*PostgresAdminStore)(nil)

// Create implements store.AdminStore.Create.
func (s *PostgresAdminStore) Create(ctx context.Context, admin *domain.Admin) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if strings.TrimSpace(admin.Username) == "" || admin.PasswordHash == "" {
		return domain.NewValidationError("username", "username and password are required", nil)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, admin.ID, admin.Username, admin.PasswordHash, admin.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return MapUniqueViolation(err, store.ErrUsernameExists)
		}
		log.Error("failed to create admin",
			slog.String("error", err.Error()),
			slog.String("username", admin.Username))
		return MapError(err)
	}

	log.Info("admin created", slog.String("username", admin.Username))
	return nil
}

// GetByUsername implements store.AdminStore.GetByUsername.
func (s *PostgresAdminStore) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var a domain.Admin
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at
		FROM admins
		WHERE username = $1
	`, strings.TrimSpace(username)).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAdminNotFound
		}
		log.Error("failed to get admin", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return &a, nil
}
