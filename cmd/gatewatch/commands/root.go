// Package commands implements the gatewatch server CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/gatewatch/gatewatch/cmd/gatewatch/commands/config"
	"github.com/gatewatch/gatewatch/internal/cli/buildinfo"
)

// Build is the binary's build metadata, set by main before Execute.
var Build = buildinfo.Info{Binary: "gatewatch", Version: "dev", Commit: "none", Date: "unknown"}

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "gatewatch",
	Short: "Gatewatch - Vehicle passage tracking server",
	Long: `Gatewatch is the central server for two-sided vehicle passage tracking.

It ingests passages from field agents over HTTPS and from the SMS gateway
webhook, pairs entry and exit records per segment, generates speeding and
overstay violations, and exposes the management API used by gatewatchctl
and rangerd.

Use "gatewatch [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/gatewatch/config.yaml)")

	rootCmd.AddCommand(
		startCmd, stopCmd, statusCmd, logsCmd,
		initCmd, migrateCmd, scanCmd,
		config.Cmd,
		versionCmd, completionCmd,
	)

	// The completion command below replaces cobra's generated one.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the value of the global --config flag.
func GetConfigFile() string {
	return cfgFile
}
