// Package commands implements the rangerd field agent CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/gatewatch/gatewatch/internal/cli/buildinfo"
)

// Build is the binary's build metadata, set by main before Execute.
var Build = buildinfo.Info{Binary: "rangerd", Version: "dev", Commit: "none", Date: "unknown"}

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "rangerd",
	Short: "Rangerd - Checkpost field agent",
	Long: `Rangerd is the gatewatch field agent running on a checkpost device.

Passages are recorded into a local store first and synced to the server
whenever connectivity allows, so recording keeps working through outages.
While offline, freshly recorded passages are paired against a local cache
of the opposite checkpost's traffic for an immediate travel-time verdict,
and the SMS fallback carries the backlog when the outage drags on.

One rangerd process owns the device's data directory at a time: stop the
background agent before running one-shot commands against the same store.

Use "rangerd [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/gatewatch/rangerd.yaml)")

	rootCmd.AddCommand(
		initCmd, startCmd,
		recordCmd, syncCmd, queueCmd, statusCmd,
		versionCmd, completionCmd,
	)

	// The completion command below replaces cobra's generated one.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the value of the global --config flag.
func GetConfigFile() string {
	return cfgFile
}
