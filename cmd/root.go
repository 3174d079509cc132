// Package cmd defines the plume command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "plume",
	Short: "Plume - terminal client for your document assistant",
	Long: `Plume is a terminal client for a document-grounded assistant.

Ask questions about your indexed documents, manage collections (admins),
tune retrieval settings, and browse past queries - all against a remote
backend configured in ~/.plume/config.yaml.

Running plume with no arguments opens the interactive interface.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTUI(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
