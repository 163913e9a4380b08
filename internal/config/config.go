package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Telemetry backends.
const (
	BackendNone     = "none"
	BackendAppwrite = "appwrite"
	BackendPostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string `env:"ENV" envDefault:"development"` // "development", "production", etc.

	// Server
	ServerAddr string `env:"SERVER_ADDR" envDefault:":3000"`
	BaseURL    string `env:"BASE_URL" envDefault:"http://localhost:3000"`
	ViewsDir   string `env:"VIEWS_DIR" envDefault:"./views"`
	StaticDir  string `env:"STATIC_DIR" envDefault:"./static"`

	// TLS
	TLSEnabled  bool   `env:"TLS_ENABLED"`
	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`

	// CORS
	CORSOrigins string `env:"CORS_ORIGINS"` // Comma-separated allowed origins

	// Rate limiting; Redis-backed when REDIS_URL is set, in-memory otherwise
	RateLimit int    `env:"RATE_LIMIT" envDefault:"100"` // requests per minute per IP
	RedisURL  string `env:"REDIS_URL"`

	// Telemetry: Appwrite wins when fully configured, then Postgres
	AppwriteEndpoint     string        `env:"APPWRITE_ENDPOINT"`
	AppwriteProjectID    string        `env:"APPWRITE_PROJECT_ID"`
	AppwriteDatabaseID   string        `env:"APPWRITE_DATABASE_ID"`
	AppwriteCollectionID string        `env:"APPWRITE_COLLECTION_ID"`
	AppwriteAPIKey       string        `env:"APPWRITE_API_KEY"`
	DatabaseURL          string        `env:"DATABASE_URL"`
	TelemetryTimeout     time.Duration `env:"TELEMETRY_TIMEOUT" envDefault:"5s"`

	// Retention of Postgres telemetry documents; zero keeps them forever
	LogRetention      time.Duration `env:"LOG_RETENTION"`
	RetentionInterval time.Duration `env:"RETENTION_INTERVAL" envDefault:"1h"`

	// Content file with phrases, GIFs and share text
	ContentFile string `env:"CONTENT_FILE" envDefault:"config.yaml"`

	// Site Branding
	SiteTitle   string `env:"SITE_TITLE" envDefault:"Be My Valentine"`
	SiteTagline string `env:"SITE_TAGLINE" envDefault:"Ask the question. They can't say no."`
	SiteFooter  string `env:"SITE_FOOTER" envDefault:"Made with love"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.RateLimit <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT must be positive, got %d", cfg.RateLimit)
	}
	if cfg.LogRetention > 0 && cfg.RetentionInterval <= 0 {
		return nil, fmt.Errorf("RETENTION_INTERVAL must be positive when LOG_RETENTION is set, got %v", cfg.RetentionInterval)
	}
	return &cfg, nil
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// AppwriteConfigured returns true if every Appwrite setting except the
// optional API key is present.
func (c *Config) AppwriteConfigured() bool {
	return c.AppwriteEndpoint != "" && c.AppwriteProjectID != "" &&
		c.AppwriteDatabaseID != "" && c.AppwriteCollectionID != ""
}

// TelemetryBackend returns which store link telemetry is written to.
func (c *Config) TelemetryBackend() string {
	switch {
	case c.AppwriteConfigured():
		return BackendAppwrite
	case c.DatabaseURL != "":
		return BackendPostgres
	default:
		return BackendNone
	}
}
