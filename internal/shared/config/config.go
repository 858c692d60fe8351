package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the portal API.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	EventStore EventStoreConfig
	Auth       AuthConfig
	Assessment AssessmentConfig
	Sandbox    SandboxConfig
	RateLimit  RateLimitConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

// IsDev reports whether the server runs in development mode. Dev mode allows
// unauthenticated requests with an anonymous principal.
func (s ServerConfig) IsDev() bool {
	return s.Env != "production"
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// EventStoreConfig holds configuration for the EventStoreDB connection that
// backs the live activity feed and the audit trail.
type EventStoreConfig struct {
	Host     string
	Port     int
	Insecure bool
	Username string
	Password string
}

type AuthConfig struct {
	JWTSecret string
}

// AssessmentConfig configures the external clinical-assessment integration.
// When Enabled is false, or required fields are missing, the portal serves
// the locally stored risk profiles and the integration endpoints report the
// feature as unavailable. Nothing else degrades.
type AssessmentConfig struct {
	Enabled      bool
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string

	// LegacyDSN, when set, points the sync at a vendor SQL Server database
	// instead of the HTTP API.
	LegacyDSN string
}

// HTTPConfigured reports whether the HTTP integration has what it needs.
func (a AssessmentConfig) HTTPConfigured() bool {
	return a.Enabled && a.BaseURL != "" && a.TokenURL != "" && a.ClientID != "" && a.ClientSecret != ""
}

type SandboxConfig struct {
	// Enabled allows the load-sample-data and clear-sample-data actions.
	Enabled bool
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load reads configuration from the environment (and an optional .env file)
// with sensible development defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("ENV", "development")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "atlas")
	v.SetDefault("DB_PASSWORD", "atlas")
	v.SetDefault("DB_NAME", "atlas")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("EVENTSTORE_HOST", "localhost")
	v.SetDefault("EVENTSTORE_PORT", 2113)
	v.SetDefault("EVENTSTORE_INSECURE", true)
	v.SetDefault("EVENTSTORE_USERNAME", "")
	v.SetDefault("EVENTSTORE_PASSWORD", "")

	v.SetDefault("JWT_SECRET", "dev-secret-change-in-prod")

	v.SetDefault("ASSESSMENT_ENABLED", false)
	v.SetDefault("ASSESSMENT_BASE_URL", "")
	v.SetDefault("ASSESSMENT_TOKEN_URL", "")
	v.SetDefault("ASSESSMENT_CLIENT_ID", "")
	v.SetDefault("ASSESSMENT_CLIENT_SECRET", "")
	v.SetDefault("ASSESSMENT_LEGACY_DSN", "")

	v.SetDefault("SANDBOX_ENABLED", true)

	v.SetDefault("RATE_LIMIT_RPS", 50.0)
	v.SetDefault("RATE_LIMIT_BURST", 100)

	// The .env file is a development convenience; its absence is fine.
	_ = v.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetInt("SERVER_PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Database: v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		EventStore: EventStoreConfig{
			Host:     v.GetString("EVENTSTORE_HOST"),
			Port:     v.GetInt("EVENTSTORE_PORT"),
			Insecure: v.GetBool("EVENTSTORE_INSECURE"),
			Username: v.GetString("EVENTSTORE_USERNAME"),
			Password: v.GetString("EVENTSTORE_PASSWORD"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
		},
		Assessment: AssessmentConfig{
			Enabled:      v.GetBool("ASSESSMENT_ENABLED"),
			BaseURL:      v.GetString("ASSESSMENT_BASE_URL"),
			TokenURL:     v.GetString("ASSESSMENT_TOKEN_URL"),
			ClientID:     v.GetString("ASSESSMENT_CLIENT_ID"),
			ClientSecret: v.GetString("ASSESSMENT_CLIENT_SECRET"),
			LegacyDSN:    v.GetString("ASSESSMENT_LEGACY_DSN"),
		},
		Sandbox: SandboxConfig{
			Enabled: v.GetBool("SANDBOX_ENABLED"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             v.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if cfg.Server.Env == "production" && cfg.Auth.JWTSecret == "dev-secret-change-in-prod" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return cfg, nil
}
