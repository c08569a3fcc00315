package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/reviewdesk/internal/config"
)

// loadAppConfig loads the application configuration from environment variables or config file.
// Returns the loaded config and any loading error.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"settlement_timezone", cfg.Settlement.Timezone)
	slog.Debug("auth configuration",
		"jwt_secret_present", cfg.Auth.JWTSecret != "",
		"bootstrap_admin", cfg.Auth.BootstrapAdminUsername != "")

	return cfg, nil
}
