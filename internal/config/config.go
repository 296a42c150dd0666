// Package config reads the formmodal command configuration from the
// environment, after loading any .env files.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables consulted by Load.
const (
	EnvDir         = "FORMMODAL_DIR"
	EnvBaseURL     = "FORMMODAL_BASE_URL"
	EnvOpenAPI     = "FORMMODAL_OPENAPI"
	EnvHookTimeout = "FORMMODAL_HOOK_TIMEOUT"
	EnvLogLevel    = "FORMMODAL_LOG_LEVEL"
	EnvAddr        = "FORMMODAL_ADDR"
	EnvTemplates   = "FORMMODAL_TEMPLATES"
)

const (
	DefaultDir         = "modals"
	DefaultAddr        = ":8080"
	DefaultHookTimeout = 30 * time.Second
)

// Config is the resolved command configuration.
type Config struct {
	// Dir holds <name>.json|yaml|yml modal modules.
	Dir string
	// BaseURL, when set, adds a remote source and catalog rooted there.
	BaseURL string
	// OpenAPI is a document path or URL whose operations become modals.
	OpenAPI     string
	HookTimeout time.Duration
	LogLevel    slog.Level
	Addr        string
	// Templates overrides the bundled HTML templates file by file.
	Templates string
}

// Load reads .env files (missing files are ignored) and then the
// environment. Variables already set in the process win over .env values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Dir:         valueOr(getenv(EnvDir), DefaultDir),
		BaseURL:     strings.TrimRight(strings.TrimSpace(getenv(EnvBaseURL)), "/"),
		OpenAPI:     strings.TrimSpace(getenv(EnvOpenAPI)),
		HookTimeout: DefaultHookTimeout,
		LogLevel:    slog.LevelInfo,
		Addr:        valueOr(getenv(EnvAddr), DefaultAddr),
		Templates:   strings.TrimSpace(getenv(EnvTemplates)),
	}

	if raw := strings.TrimSpace(getenv(EnvHookTimeout)); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvHookTimeout, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("config: %s must be positive, got %s", EnvHookTimeout, raw)
		}
		cfg.HookTimeout = d
	}

	if raw := strings.TrimSpace(getenv(EnvLogLevel)); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvLogLevel, err)
		}
	}
	return cfg, nil
}

// Logger returns a text logger writing to stderr at the configured level.
func (c Config) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel}))
}

func valueOr(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
