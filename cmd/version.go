package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plumehq/plume/internal/config"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and configuration information",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runVersion()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion() error {
	fmt.Printf("Plume %s\n", AppVersion)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)

	cfg, err := config.Load()
	if err != nil {
		// Version output must work even with a broken config file.
		fmt.Printf("\nConfiguration: unavailable (%v)\n", err)
		return nil
	}

	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("  Backend: %s\n", cfg.BackendURL)
	fmt.Printf("  State directory: %s\n", cfg.StateDir)
	fmt.Printf("  Request timeout: %ds\n", cfg.RequestTimeoutSeconds)
	fmt.Printf("  Tracing: %v\n", cfg.Tracing.Enabled)
	return nil
}
