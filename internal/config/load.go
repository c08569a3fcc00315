package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. REVIEWDESK_DATABASE_URL for database.url.
const EnvPrefix = "REVIEWDESK"

// keys lists every configuration key so that environment variables are
// honoured even when no config file mentions them.
var keys = []string{
	"server.port",
	"server.log_level",
	"server.request_timeout_seconds",
	"server.shutdown_timeout_seconds",
	"database.url",
	"database.max_open_conns",
	"database.max_idle_conns",
	"database.conn_max_lifetime_minutes",
	"database.auto_migrate",
	"auth.jwt_secret",
	"auth.token_lifetime_minutes",
	"auth.cookie_secure",
	"auth.bcrypt_cost",
	"auth.initial_reviewer_password",
	"auth.bootstrap_admin_username",
	"auth.bootstrap_admin_password",
	"settlement.comment_rate",
	"settlement.default_unit_price",
	"settlement.timezone",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.request_timeout_seconds", 30)
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("auth.token_lifetime_minutes", 7*24*60)
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.initial_reviewer_password", "1234")

	v.SetDefault("settlement.comment_rate", 1000)
	v.SetDefault("settlement.default_unit_price", 3000)
	v.SetDefault("settlement.timezone", "UTC")
}

// Load configuration from environment variables and optionally a config.yaml
// in the working directory. Environment variables take precedence over the
// file. Returns a populated Config or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
