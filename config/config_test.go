package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/practice")

	cfg := Load()

	if cfg.Service.Port != "8080" {
		t.Fatalf("default port = %q, want 8080", cfg.Service.Port)
	}
	if cfg.Auth.UserTokenTTL != 30*24*time.Hour {
		t.Fatalf("user token ttl = %v, want 720h", cfg.Auth.UserTokenTTL)
	}
	if cfg.Auth.AdminTokenTTL != 24*time.Hour {
		t.Fatalf("admin token ttl = %v, want 24h", cfg.Auth.AdminTokenTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateMissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg := Load()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for missing DATABASE_URL")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/practice")
	t.Setenv("AUTH_USER_TOKEN_TTL", "48h")
	t.Setenv("AUTH_ADMIN_TOKEN_TTL", "1h")
	t.Setenv("TRACING_SAMPLE_RATE", "0.25")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")

	cfg := Load()

	if cfg.Auth.UserTokenTTL != 48*time.Hour {
		t.Fatalf("user token ttl = %v, want 48h", cfg.Auth.UserTokenTTL)
	}
	if cfg.Auth.AdminTokenTTL != time.Hour {
		t.Fatalf("admin token ttl = %v, want 1h", cfg.Auth.AdminTokenTTL)
	}
	if cfg.Tracing.SampleRate != 0.25 {
		t.Fatalf("sample rate = %v, want 0.25", cfg.Tracing.SampleRate)
	}
	if cfg.GetShutdownTimeoutDuration() != 5*time.Second {
		t.Fatalf("shutdown timeout = %v, want 5s", cfg.GetShutdownTimeoutDuration())
	}
}

func TestLoadBadDurationFallsBack(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/practice")
	t.Setenv("AUTH_USER_TOKEN_TTL", "not-a-duration")

	cfg := Load()
	if cfg.Auth.UserTokenTTL != 30*24*time.Hour {
		t.Fatalf("bad duration should fall back to default, got %v", cfg.Auth.UserTokenTTL)
	}
}
