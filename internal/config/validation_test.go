package config

import (
	"errors"
	"testing"
)

// validConfig returns a configuration that passes Validate().
func validConfig() *Config {
	return &Config{
		BackendURL:            "http://127.0.0.1:5000",
		RequestTimeoutSeconds: 120,
		RequestsPerSecond:     10,
		StateDir:              "/tmp/plume-test",
		LogLevel:              "info",
	}
}

func TestValidate_AcceptsValidConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate_NilConfig(t *testing.T) {
	var c *Config
	if err := c.Validate(); !errors.Is(err, ErrConfigNil) {
		t.Errorf("expected ErrConfigNil, got %v", err)
	}
}

func TestValidate_BackendURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"no scheme", "127.0.0.1:5000"},
		{"bad scheme", "ftp://127.0.0.1:5000"},
		{"missing host", "http://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.BackendURL = tt.url
			if err := c.Validate(); !errors.Is(err, ErrInvalidBackendURL) {
				t.Errorf("expected ErrInvalidBackendURL for %q, got %v", tt.url, err)
			}
		})
	}

	t.Run("https accepted", func(t *testing.T) {
		c := validConfig()
		c.BackendURL = "https://rag.example.com"
		if err := c.Validate(); err != nil {
			t.Errorf("expected https URL accepted, got %v", err)
		}
	})
}

func TestValidate_Timeout(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		wantErr bool
	}{
		{"zero", 0, true},
		{"negative", -5, true},
		{"above cap", MaxRequestTimeoutSeconds + 1, true},
		{"minimum", 1, false},
		{"maximum", MaxRequestTimeoutSeconds, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.RequestTimeoutSeconds = tt.seconds
			err := c.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidTimeout) {
				t.Errorf("expected ErrInvalidTimeout, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
		})
	}
}

func TestValidate_RateLimit(t *testing.T) {
	c := validConfig()
	c.RequestsPerSecond = 0
	if err := c.Validate(); !errors.Is(err, ErrInvalidRateLimit) {
		t.Errorf("expected ErrInvalidRateLimit, got %v", err)
	}
}

func TestValidate_StateDir(t *testing.T) {
	c := validConfig()
	c.StateDir = ""
	if err := c.Validate(); !errors.Is(err, ErrInvalidStateDir) {
		t.Errorf("expected ErrInvalidStateDir, got %v", err)
	}
}

func TestValidate_LogLevel(t *testing.T) {
	c := validConfig()
	c.LogLevel = "verbose"
	if err := c.Validate(); !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("expected ErrInvalidLogLevel, got %v", err)
	}

	for _, level := range []string{"debug", "info", "warn", "error"} {
		c := validConfig()
		c.LogLevel = level
		if err := c.Validate(); err != nil {
			t.Errorf("expected level %q accepted, got %v", level, err)
		}
	}
}
