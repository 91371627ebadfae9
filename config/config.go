// Package config loads portal credentials and runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultWorkers = 6
	maxWorkers     = 16
	defaultTimeout = 30 * time.Second
)

// Config holds everything the CLI needs. Credentials are only required by
// commands that talk to the portal; see RequireCredentials.
type Config struct {
	Environment string
	LogLevel    string

	Username string
	Password string
	Server   string

	// CachePath is where the fetched event list is stored.
	CachePath string

	// FetchWorkers bounds concurrent schedule fetches.
	FetchWorkers int

	// HTTPTimeout applies to each portal request.
	HTTPTimeout time.Duration
}

// Load reads configuration from environment variables.
// Outside production a .env file in the working directory is loaded first;
// variables already set in the environment win.
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		// A missing .env is normal; everything can come from the environment.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Environment: env,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Username:    os.Getenv("WILMA_USERNAME"),
		Password:    os.Getenv("WILMA_PASSWORD"),
		Server:      os.Getenv("WILMA_SERVER"),
		CachePath:   os.Getenv("DUTY_CACHE_PATH"),
	}

	if cfg.CachePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.CachePath = filepath.Join(home, ".duty-report", "events.json")
	}

	workers, err := strconv.Atoi(getEnv("DUTY_FETCH_WORKERS", strconv.Itoa(defaultWorkers)))
	if err != nil {
		return nil, fmt.Errorf("DUTY_FETCH_WORKERS: %w", err)
	}
	cfg.FetchWorkers = min(max(workers, 1), maxWorkers)

	timeout, err := time.ParseDuration(getEnv("DUTY_HTTP_TIMEOUT", defaultTimeout.String()))
	if err != nil {
		return nil, fmt.Errorf("DUTY_HTTP_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("DUTY_HTTP_TIMEOUT must be positive, got %s", timeout)
	}
	cfg.HTTPTimeout = timeout

	return cfg, nil
}

// RequireCredentials reports every missing portal setting at once.
func (c *Config) RequireCredentials() error {
	var missing []string
	if c.Username == "" {
		missing = append(missing, "WILMA_USERNAME")
	}
	if c.Password == "" {
		missing = append(missing, "WILMA_PASSWORD")
	}
	if c.Server == "" {
		missing = append(missing, "WILMA_SERVER")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

// NewLogger returns a slog.Logger writing to stderr, leaving stdout for the
// report. Production uses the JSON handler; otherwise the text handler.
// level may be: debug, info, warn, error (default: info).
func NewLogger(env, level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
