package app

import (
	"context"
	"errors"
	"testing"

	"github.com/plumehq/plume/internal/config"
	"github.com/plumehq/plume/internal/log"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		BackendURL:            "http://127.0.0.1:5000",
		RequestTimeoutSeconds: 5,
		RequestsPerSecond:     10,
		StateDir:              t.TempDir(),
		LogLevel:              "info",
	}
}

func TestNewRuntime(t *testing.T) {
	cfg := testConfig(t)

	runtime, err := NewRuntime(context.Background(), cfg, log.NewNop())
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}

	if runtime.Backend == nil || runtime.Sessions == nil || runtime.Store == nil {
		t.Error("runtime has unwired components")
	}
	if runtime.Backend.BaseURL() != "http://127.0.0.1:5000" {
		t.Errorf("BaseURL = %q", runtime.Backend.BaseURL())
	}
	if err := runtime.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNewRuntime_NilConfig(t *testing.T) {
	_, err := NewRuntime(context.Background(), nil, log.NewNop())
	if !errors.Is(err, config.ErrConfigNil) {
		t.Errorf("error = %v, want ErrConfigNil", err)
	}
}

func TestNewRuntime_BadBackendURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.BackendURL = "not-a-url"

	if _, err := NewRuntime(context.Background(), cfg, log.NewNop()); err == nil {
		t.Error("expected error for malformed backend URL")
	}
}

func TestNewRuntime_NilLoggerDefaults(t *testing.T) {
	runtime, err := NewRuntime(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	if runtime.Logger == nil {
		t.Error("logger not defaulted")
	}
}
