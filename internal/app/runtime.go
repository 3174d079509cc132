// Package app assembles the application runtime shared by every entry
// point: configuration, logging, the backend client, the persisted session,
// and optional tracing.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/plumehq/plume/internal/api"
	"github.com/plumehq/plume/internal/config"
	"github.com/plumehq/plume/internal/log"
	"github.com/plumehq/plume/internal/observability"
	"github.com/plumehq/plume/internal/session"
)

// Runtime provides a fully initialized application runtime.
//
// Usage:
//
//	runtime, err := app.NewRuntime(ctx, cfg, logger)
//	if err != nil { ... }
//	defer runtime.Shutdown(ctx)
type Runtime struct {
	Config   *config.Config
	Logger   log.Logger
	Backend  *api.Client
	Store    *session.FileStore
	Sessions *session.Manager

	shutdownTracing func(context.Context) error
}

// NewRuntime wires all components. The configuration must already be
// validated; Load does that.
func NewRuntime(ctx context.Context, cfg *config.Config, logger log.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, config.ErrConfigNil
	}
	if logger == nil {
		logger = log.NewNop()
	}

	backend, err := api.New(api.Config{
		BaseURL:           cfg.BackendURL,
		Timeout:           time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating backend client: %w", err)
	}

	store, err := session.NewFileStore(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("creating session store: %w", err)
	}

	sessions := session.NewManager(backend, store, logger)

	shutdownTracing, err := observability.Setup(ctx, cfg.Tracing, logger)
	if err != nil {
		return nil, fmt.Errorf("setting up tracing: %w", err)
	}

	return &Runtime{
		Config:          cfg,
		Logger:          logger,
		Backend:         backend,
		Store:           store,
		Sessions:        sessions,
		shutdownTracing: shutdownTracing,
	}, nil
}

// Shutdown flushes pending telemetry. Safe to call once on exit.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r.shutdownTracing == nil {
		return nil
	}
	return r.shutdownTracing(ctx)
}
