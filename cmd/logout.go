package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plumehq/plume/internal/app"
	"github.com/plumehq/plume/internal/config"
	"github.com/plumehq/plume/internal/log"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard the persisted session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runLogout(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := log.New(log.Config{Level: cfg.SlogLevel(), JSON: cfg.LogJSON})

	runtime, err := app.NewRuntime(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize runtime: %w", err)
	}
	defer func() {
		_ = runtime.Shutdown(context.WithoutCancel(ctx))
	}()

	runtime.Sessions.Logout()
	fmt.Println("Signed out.")
	return nil
}
