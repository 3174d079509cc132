package config

import (
	"fmt"
	"net/url"
	"slices"
)

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	// 0. Check for nil config (defensive programming)
	if c == nil {
		return ErrConfigNil
	}

	// 1. Backend URL validation (required for every operation)
	if c.BackendURL == "" {
		return fmt.Errorf("%w: backend_url cannot be empty", ErrInvalidBackendURL)
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackendURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidBackendURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host in %q", ErrInvalidBackendURL, c.BackendURL)
	}

	// 2. Timeout validation
	if c.RequestTimeoutSeconds < 1 || c.RequestTimeoutSeconds > MaxRequestTimeoutSeconds {
		return fmt.Errorf("%w: must be between 1 and %d, got %d",
			ErrInvalidTimeout, MaxRequestTimeoutSeconds, c.RequestTimeoutSeconds)
	}

	// 3. Rate limit validation
	if c.RequestsPerSecond < 1 || c.RequestsPerSecond > 1000 {
		return fmt.Errorf("%w: must be between 1 and 1000, got %d",
			ErrInvalidRateLimit, c.RequestsPerSecond)
	}

	// 4. State directory validation
	if c.StateDir == "" {
		return fmt.Errorf("%w: state_dir cannot be empty", ErrInvalidStateDir)
	}

	// 5. Log level validation
	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, c.LogLevel) {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v",
			ErrInvalidLogLevel, c.LogLevel, validLevels)
	}

	return nil
}
