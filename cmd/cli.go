package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	tea "charm.land/bubbletea/v2"

	"github.com/plumehq/plume/internal/app"
	"github.com/plumehq/plume/internal/config"
	"github.com/plumehq/plume/internal/log"
	"github.com/plumehq/plume/internal/tui"
)

// runTUI initializes the runtime and starts the Bubble Tea interface.
func runTUI(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := log.New(log.Config{Level: cfg.SlogLevel(), JSON: cfg.LogJSON})

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runtime, err := app.NewRuntime(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize runtime: %w", err)
	}
	defer func() {
		if shutdownErr := runtime.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			logger.Warn("runtime shutdown error", "error", shutdownErr)
		}
	}()

	model, err := tui.New(ctx, runtime.Sessions, runtime.Backend, logger)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	program := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err = program.Run(); err != nil {
		return fmt.Errorf("TUI exited: %w", err)
	}
	return nil
}
