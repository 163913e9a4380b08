package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerAddr != ":3000" {
		t.Errorf("ServerAddr = %q, want :3000", cfg.ServerAddr)
	}
	if cfg.RateLimit != 100 {
		t.Errorf("RateLimit = %d, want 100", cfg.RateLimit)
	}
	if cfg.TelemetryTimeout != 5*time.Second {
		t.Errorf("TelemetryTimeout = %v, want 5s", cfg.TelemetryTimeout)
	}
	if !cfg.IsDev() {
		t.Error("default environment should be development")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("RATE_LIMIT", "30")
	t.Setenv("LOG_RETENTION", "720h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.IsDev() {
		t.Error("production should not be dev")
	}
	if cfg.RateLimit != 30 {
		t.Errorf("RateLimit = %d, want 30", cfg.RateLimit)
	}
	if cfg.LogRetention != 720*time.Hour {
		t.Errorf("LogRetention = %v, want 720h", cfg.LogRetention)
	}
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT", "0")
	if _, err := Load(); err == nil {
		t.Error("expected error for zero rate limit")
	}
}

func TestLoad_RetentionInterval(t *testing.T) {
	tests := []struct {
		name      string
		retention string
		interval  string
		wantErr   bool
	}{
		{"zero interval with retention", "720h", "0", true},
		{"negative interval with retention", "720h", "-1m", true},
		{"zero interval without retention", "0s", "0", false},
		{"positive interval", "720h", "30m", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_RETENTION", tt.retention)
			t.Setenv("RETENTION_INTERVAL", tt.interval)
			_, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTelemetryBackend(t *testing.T) {
	appwrite := Config{
		AppwriteEndpoint:     "https://cloud.appwrite.io/v1",
		AppwriteProjectID:    "p",
		AppwriteDatabaseID:   "d",
		AppwriteCollectionID: "c",
	}

	tests := []struct {
		name     string
		cfg      Config
		expected string
	}{
		{"nothing configured", Config{}, BackendNone},
		{"postgres", Config{DatabaseURL: "postgres://localhost/valentine"}, BackendPostgres},
		{"appwrite", appwrite, BackendAppwrite},
		{"partial appwrite falls back", Config{AppwriteEndpoint: "x", DatabaseURL: "postgres://"}, BackendPostgres},
		{"appwrite wins over postgres", func() Config { c := appwrite; c.DatabaseURL = "postgres://"; return c }(), BackendAppwrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.TelemetryBackend(); got != tt.expected {
				t.Errorf("TelemetryBackend() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestLoadContent(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		c, err := LoadContent(filepath.Join(t.TempDir(), "absent.yaml"))
		if err != nil {
			t.Fatalf("LoadContent() error = %v", err)
		}
		if len(c.DeclinePhrases) != 5 {
			t.Errorf("len(DeclinePhrases) = %d, want 5", len(c.DeclinePhrases))
		}
	})

	t.Run("file overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		data := "decline_phrases:\n  - Nope\n  - Really?\nshare_message: \"Hi {to}\"\n"
		if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
			t.Fatal(err)
		}

		c, err := LoadContent(path)
		if err != nil {
			t.Fatalf("LoadContent() error = %v", err)
		}
		if len(c.DeclinePhrases) != 2 || c.DeclinePhrases[0] != "Nope" {
			t.Errorf("DeclinePhrases = %v", c.DeclinePhrases)
		}
		if c.ShareMessage != "Hi {to}" {
			t.Errorf("ShareMessage = %q", c.ShareMessage)
		}
		if c.MusicURL == "" {
			t.Error("MusicURL should keep its default")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("decline_phrases: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadContent(path); err == nil {
			t.Error("expected parse error")
		}
	})
}
