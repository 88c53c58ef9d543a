// Package config implements the 'gatewatch config' subcommands for
// inspecting and maintaining the server configuration file.
package config

import (
	"github.com/spf13/cobra"

	"github.com/gatewatch/gatewatch/pkg/config"
)

// Cmd groups the configuration maintenance subcommands.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and maintain the configuration file",
	Long: `Inspect and maintain the gatewatch server configuration.

The configuration file itself is created by 'gatewatch init'; these
subcommands work on an existing file.`,
}

func init() {
	Cmd.AddCommand(showCmd, editCmd, validateCmd, schemaCmd)
}

// resolvePath returns the configuration file path for the command,
// falling back to the default location when --config was left empty.
func resolvePath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.GetDefaultConfigPath()
	}
	return path
}
