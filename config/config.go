// Package config loads service configuration from the environment.
// A .env file is honored in development; real deployments set the
// variables directly.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the practice service.
type Config struct {
	Service struct {
		Name    string
		Version string
		Env     string
		Port    string
	}

	Database struct {
		URL      string
		MaxConns int32
		MinConns int32
	}

	Auth struct {
		// UserTokenTTL is the lifetime of user session tokens (default 30 days).
		UserTokenTTL time.Duration
		// AdminTokenTTL is the lifetime of admin session tokens (default 24h).
		AdminTokenTTL time.Duration
		// AdminEmail / AdminPasswordHash authenticate the studio admin.
		// The hash is a bcrypt hash; there is no admins table.
		AdminEmail        string
		AdminPasswordHash string
	}

	Logging struct {
		Level string
	}

	Tracing struct {
		Enabled    bool
		Endpoint   string
		SampleRate float64
	}

	Profiling struct {
		Enabled  bool
		Endpoint string
	}

	Shutdown struct {
		Timeout             time.Duration
		ReadinessDrainDelay time.Duration
	}
}

// Load reads configuration from the environment, after loading a .env
// file when one is present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Service.Name = envString("SERVICE_NAME", "practice-service")
	cfg.Service.Version = envString("SERVICE_VERSION", "dev")
	cfg.Service.Env = envString("SERVICE_ENV", "development")
	cfg.Service.Port = envString("PORT", "8080")

	cfg.Database.URL = envString("DATABASE_URL", "")
	cfg.Database.MaxConns = envInt32("DB_MAX_CONNS", 10)
	cfg.Database.MinConns = envInt32("DB_MIN_CONNS", 0)

	cfg.Auth.UserTokenTTL = envDuration("AUTH_USER_TOKEN_TTL", 30*24*time.Hour)
	cfg.Auth.AdminTokenTTL = envDuration("AUTH_ADMIN_TOKEN_TTL", 24*time.Hour)
	cfg.Auth.AdminEmail = envString("ADMIN_EMAIL", "")
	cfg.Auth.AdminPasswordHash = envString("ADMIN_PASSWORD_HASH", "")

	cfg.Logging.Level = envString("LOG_LEVEL", "info")

	cfg.Tracing.Enabled = envBool("TRACING_ENABLED", false)
	cfg.Tracing.Endpoint = envString("TRACING_ENDPOINT", "localhost:4318")
	cfg.Tracing.SampleRate = envFloat("TRACING_SAMPLE_RATE", 1.0)

	cfg.Profiling.Enabled = envBool("PROFILING_ENABLED", false)
	cfg.Profiling.Endpoint = envString("PROFILING_ENDPOINT", "http://localhost:4040")

	cfg.Shutdown.Timeout = envDuration("SHUTDOWN_TIMEOUT", 15*time.Second)
	cfg.Shutdown.ReadinessDrainDelay = envDuration("READINESS_DRAIN_DELAY", 0)

	return cfg
}

// Validate checks that required configuration is present and sane.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth.UserTokenTTL <= 0 {
		return fmt.Errorf("AUTH_USER_TOKEN_TTL must be positive, got %v", c.Auth.UserTokenTTL)
	}
	if c.Auth.AdminTokenTTL <= 0 {
		return fmt.Errorf("AUTH_ADMIN_TOKEN_TTL must be positive, got %v", c.Auth.AdminTokenTTL)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be in [0,1], got %v", c.Tracing.SampleRate)
	}
	return nil
}

// GetShutdownTimeoutDuration returns the HTTP shutdown timeout.
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return c.Shutdown.Timeout
}

// GetReadinessDrainDelayDuration returns the delay between failing the
// readiness probe and starting HTTP shutdown.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	return c.Shutdown.ReadinessDrainDelay
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt32(key string, def int32) int32 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil || n < 0 {
		return def
	}
	return int32(n)
}

func envFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
