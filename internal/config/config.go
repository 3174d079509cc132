// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.plume/config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Main configuration categories:
//   - Backend: base URL and timeout for the retrieval service
//   - State: local directory for the persisted session
//   - Log: level and format
//   - Tracing: optional OTLP trace export (see observability.go)
//
// The backend address is always configuration, never a compiled-in constant.
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidBackendURL indicates the backend base URL is missing or malformed.
	ErrInvalidBackendURL = errors.New("invalid backend URL")

	// ErrInvalidTimeout indicates the request timeout is out of range.
	ErrInvalidTimeout = errors.New("invalid request timeout")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidStateDir indicates the state directory is empty.
	ErrInvalidStateDir = errors.New("invalid state directory")

	// ErrInvalidRateLimit indicates the backend rate limit is out of range.
	ErrInvalidRateLimit = errors.New("invalid rate limit")
)

const (
	// DefaultBackendURL matches the development backend of the original deployment.
	DefaultBackendURL = "http://127.0.0.1:5000"

	// DefaultRequestTimeoutSeconds bounds a single backend call.
	// Uploads of large archives are the slowest operation we issue.
	DefaultRequestTimeoutSeconds = 120

	// MaxRequestTimeoutSeconds is the absolute cap for request_timeout_seconds.
	MaxRequestTimeoutSeconds = 600

	// DefaultRequestsPerSecond throttles calls to the backend, which in the
	// reference deployment is a small single-process service.
	DefaultRequestsPerSecond = 10
)

// stateDirName is the per-user directory holding config and session state.
const stateDirName = ".plume"

// Config stores application configuration.
type Config struct {
	// Backend configuration
	BackendURL            string `mapstructure:"backend_url" json:"backend_url"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" json:"request_timeout_seconds"`
	RequestsPerSecond     int    `mapstructure:"requests_per_second" json:"requests_per_second"`

	// Local state (persisted session lives here)
	StateDir string `mapstructure:"state_dir" json:"state_dir"`

	// Logging
	LogLevel string `mapstructure:"log_level" json:"log_level"` // "debug", "info", "warn", "error"
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`

	// Tracing configuration (see observability.go for type definition)
	Tracing TracingConfig `mapstructure:"tracing" json:"tracing"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	// Configuration directory: ~/.plume/
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, stateDirName)

	// Ensure directory exists (0750: session state is per-user data)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	// Configure Viper
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".") // Also support current directory

	setDefaults(configDir)
	bindEnvVariables()

	// Read configuration file (if exists)
	if err := viper.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	// Use Unmarshal to automatically map to struct (type-safe)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// CRITICAL: Validate immediately (fail-fast)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(configDir string) {
	viper.SetDefault("backend_url", DefaultBackendURL)
	viper.SetDefault("request_timeout_seconds", DefaultRequestTimeoutSeconds)
	viper.SetDefault("requests_per_second", DefaultRequestsPerSecond)

	viper.SetDefault("state_dir", configDir)

	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_json", false)

	// Tracing defaults (disabled unless explicitly enabled)
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.endpoint", DefaultTraceEndpoint)
	viper.SetDefault("tracing.environment", "dev")
	viper.SetDefault("tracing.service_name", "plume")
}

// bindEnvVariables binds environment variable overrides explicitly.
// These are the knobs a deployment actually needs to vary per machine;
// everything else belongs in the config file.
func bindEnvVariables() {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail).
	// If this panics, it's a BUG in our code, not a runtime error.
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("backend_url", "PLUME_BACKEND_URL")
	mustBind("log_level", "PLUME_LOG_LEVEL")
	mustBind("log_json", "PLUME_LOG_JSON")
	mustBind("tracing.enabled", "PLUME_TRACING")
	mustBind("tracing.endpoint", "PLUME_TRACE_ENDPOINT")
}

// SlogLevel converts the configured log level string to a slog.Level.
// Validate() guarantees the value is one of the accepted strings.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
