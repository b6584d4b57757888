// Package cli implements the stressray command line interface.
package cli

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "stressray",
	Short:   "Concurrent HTTP stress testing for evaluation services",
	Version: version,
	Long: `Stressray generates concurrent HTTP load against an evaluation service,
measures per-request latency and outcome, and reduces the measurements into
a statistical report with operator-facing recommendations.`,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print help
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(historyCmd)
}
