package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/noteboard")

	cfg := Load()

	if cfg.DatabaseURL != "postgres://localhost/noteboard" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port default = %q, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel default = %q, want info", cfg.LogLevel)
	}
	if cfg.QueryTimeout != 5*time.Second {
		t.Errorf("QueryTimeout default = %v, want 5s", cfg.QueryTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/noteboard")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("QUERY_TIMEOUT", "250ms")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.QueryTimeout != 250*time.Millisecond {
		t.Errorf("QueryTimeout = %v, want 250ms", cfg.QueryTimeout)
	}
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/noteboard")
	t.Setenv("QUERY_TIMEOUT", "not-a-duration")

	cfg := Load()

	if cfg.QueryTimeout != 5*time.Second {
		t.Errorf("QueryTimeout = %v, want 5s fallback", cfg.QueryTimeout)
	}
}

func TestLoadMissingRequiredPanics(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	defer func() {
		if recover() == nil {
			t.Error("expected panic for missing DATABASE_URL")
		}
	}()
	Load()
}
