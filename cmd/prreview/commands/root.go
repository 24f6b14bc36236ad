// Package commands implements the CLI commands for prreview.
package commands

import (
	"fmt"
	"os"

	"github.com/irahardianto/prreview/internal/platform/logger"
	"github.com/spf13/cobra"
)

// Global flag values accessible to all commands.
var (
	flagConfig  string
	flagJSON    bool
	flagVerbose bool
	flagNoColor bool
)

// rootCmd is the base command for the prreview CLI.
var rootCmd = &cobra.Command{
	Use:   "prreview",
	Short: "LLM-backed pull request review service",
	Long: `prreview sends a unified diff to a completion model with a fixed review prompt,
validates the JSON answer against the review schema, and returns a structured
pull request review: summary, risk, findings, suggestions, and a checklist.

Run it as an HTTP service with "prreview serve", or review a single diff from
a file, git, or stdin with "prreview review".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		l := logger.New(flagVerbose, flagJSON)
		ctx := logger.WithContext(cmd.Context(), l)
		cmd.SetContext(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file (default ~/.config/prreview/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
}

// Execute runs the root command. Returns an error if the command fails.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
