// Package main runs the review desk API server: task assignment for
// reviewers, cafe and reviewer registries, and monthly settlements.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	_ "time/tzdata" // settlement timezones in minimal images

	"github.com/phrazzld/reviewdesk/internal/platform/logger"
	"github.com/phrazzld/reviewdesk/internal/platform/postgres"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command ("+strings.Join(postgres.MigrationCommands, ", ")+") and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *migrateCmd); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// run loads configuration, connects to the database and either executes a
// single migration command or serves HTTP until ctx is cancelled.
func run(ctx context.Context, migrateCmd string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer closeDB(db, log)
		return postgres.Migrate(db, migrateCmd, log)
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(db, "up", log); err != nil {
			closeDB(db, log)
			return err
		}
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		closeDB(db, log)
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	if err := app.bootstrapAdmin(ctx); err != nil {
		app.cleanup()
		return err
	}

	return app.Run(ctx)
}
