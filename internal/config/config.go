package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth" validate:"required"`
	Settlement SettlementConfig `mapstructure:"settlement" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	RequestTimeoutSeconds  int    `mapstructure:"request_timeout_seconds" validate:"gt=0"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gt=0"`
	AutoMigrate            bool   `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret               string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes    int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	CookieSecure            bool   `mapstructure:"cookie_secure"`
	BcryptCost              int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
	InitialReviewerPassword string `mapstructure:"initial_reviewer_password" validate:"required"`
	BootstrapAdminUsername  string `mapstructure:"bootstrap_admin_username"`
	BootstrapAdminPassword  string `mapstructure:"bootstrap_admin_password" validate:"required_with=BootstrapAdminUsername"`
}

// SettlementConfig contains payout settings.
type SettlementConfig struct {
	// CommentRate is the flat payout for comment tasks.
	CommentRate int64 `mapstructure:"comment_rate" validate:"gte=0"`
	// DefaultUnitPrice applies to reviewers without a unit price.
	DefaultUnitPrice int64 `mapstructure:"default_unit_price" validate:"gte=0"`
	// Timezone decides which calendar month an approval falls into.
	Timezone string `mapstructure:"timezone" validate:"required,timezone"`
}

// Location loads the settlement time zone.
func (c SettlementConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// TokenLifetime returns the access token lifetime as a duration.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}
