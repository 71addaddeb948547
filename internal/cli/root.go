// Package cli implements the Pulse command-line interface using Cobra.
// Each subcommand maps to one engine capability (serve, evaluate, usage).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Pulse — proactive habit nudge engine",
	Long: `Pulse decides, per user and moment, whether a behavioral nudge should
go out, which kind, and with what text — honoring quiet hours, daily and
weekly frequency budgets, minimum spacing, and a 0-100 value-score gate.
Delivery is external: Pulse emits decisions, the app sends them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
