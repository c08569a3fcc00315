package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/reviewdesk/internal/config"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/platform/postgres"
	"github.com/phrazzld/reviewdesk/internal/service"
	"github.com/phrazzld/reviewdesk/internal/service/auth"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	db       *sql.DB
	location *time.Location

	jwtService        auth.JWTService
	authService       service.AuthService
	taskService       service.TaskService
	settlementService service.SettlementService
	reviewerService   service.ReviewerService
	cafeService       service.CafeService
}

// newApplication wires stores and services on top of an open database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	loc, err := cfg.Settlement.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load settlement timezone %q: %w", cfg.Settlement.Timezone, err)
	}

	app := &application{
		config:   cfg,
		logger:   logger,
		db:       db,
		location: loc,
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	tasks := postgres.NewPostgresTaskStore(db, logger)
	reviewers := postgres.NewPostgresReviewerStore(db, logger)
	admins := postgres.NewPostgresAdminStore(db, logger)
	cafes := postgres.NewPostgresCafeStore(db, logger)
	settlements := postgres.NewPostgresSettlementStore(db, logger)

	settings := service.SettlementSettings{
		Pricing: domain.PricingPolicy{
			CommentRate:      cfg.Settlement.CommentRate,
			DefaultUnitPrice: cfg.Settlement.DefaultUnitPrice,
		},
		Location: loc,
	}

	app.authService, err = service.NewAuthService(admins, reviewers, app.jwtService,
		auth.NewBcryptVerifier(), hasher, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	app.taskService, err = service.NewTaskService(db, tasks, reviewers, cafes, settlements, settings, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.settlementService, err = service.NewSettlementService(tasks, settlements, settings, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create settlement service: %w", err)
	}

	app.reviewerService, err = service.NewReviewerService(reviewers, hasher,
		cfg.Auth.InitialReviewerPassword, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create reviewer service: %w", err)
	}

	app.cafeService, err = service.NewCafeService(cafes, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cafe service: %w", err)
	}

	logger.Info("application initialized",
		"settlement_timezone", loc.String(),
		"comment_rate", settings.Pricing.CommentRate,
		"default_unit_price", settings.Pricing.DefaultUnitPrice)
	return app, nil
}

// bootstrapAdmin creates the configured admin account on first start.
func (app *application) bootstrapAdmin(ctx context.Context) error {
	username := app.config.Auth.BootstrapAdminUsername
	if username == "" {
		return nil
	}
	if err := app.authService.EnsureAdmin(ctx, username, app.config.Auth.BootstrapAdminPassword); err != nil {
		return fmt.Errorf("failed to bootstrap admin %q: %w", username, err)
	}
	return nil
}

// Run serves HTTP until ctx is cancelled, then releases resources.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		closeDB(app.db, app.logger)
	}
	app.logger.Info("application shutdown completed")
}
