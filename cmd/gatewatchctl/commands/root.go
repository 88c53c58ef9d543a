// Package commands implements the gatewatchctl client CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	alertcmd "github.com/gatewatch/gatewatch/cmd/gatewatchctl/commands/alert"
	ctxcmd "github.com/gatewatch/gatewatch/cmd/gatewatchctl/commands/context"
	passagecmd "github.com/gatewatch/gatewatch/cmd/gatewatchctl/commands/passage"
	segmentcmd "github.com/gatewatch/gatewatch/cmd/gatewatchctl/commands/segment"
	usercmd "github.com/gatewatch/gatewatch/cmd/gatewatchctl/commands/user"
	violationcmd "github.com/gatewatch/gatewatch/cmd/gatewatchctl/commands/violation"
	"github.com/gatewatch/gatewatch/internal/cli/buildinfo"
	"github.com/gatewatch/gatewatch/internal/cli/credentials"
)

// Build is the binary's build metadata, set by main before Execute.
var Build = buildinfo.Info{Binary: "gatewatchctl", Version: "dev", Commit: "none", Date: "unknown"}

var rootCmd = &cobra.Command{
	Use:   "gatewatchctl",
	Short: "Gatewatch Control - Remote management client",
	Long: `gatewatchctl is the command-line client for managing gatewatch servers remotely.

Use this tool to manage users, segments, and checkposts, and to inspect
passages, violations, and overstay alerts through the gatewatch REST API.

Use "gatewatchctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Subcommands read cmdutil.Flags rather than walking the flag set.
		cmdutil.Flags.ServerURL, _ = cmd.Flags().GetString("server")
		cmdutil.Flags.Token, _ = cmd.Flags().GetString("token")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
		cmdutil.Flags.NoColor, _ = cmd.Flags().GetBool("no-color")
		cmdutil.Flags.Verbose, _ = cmd.Flags().GetBool("verbose")

		// An explicit --output always wins; otherwise honor the stored preference.
		if !cmd.Flags().Changed("output") {
			if store, err := credentials.NewStore(); err == nil {
				if pref := store.GetPreferences().DefaultOutput; pref != "" {
					cmdutil.Flags.Output = pref
				}
			}
		}
	},
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("server", "", "Server URL (overrides stored credential)")
	rootCmd.PersistentFlags().String("token", "", "Bearer token (overrides stored credential)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(
		loginCmd, logoutCmd, whoamiCmd, ctxcmd.Cmd,
		usercmd.Cmd, segmentcmd.Cmd,
		passagecmd.Cmd, violationcmd.Cmd, alertcmd.Cmd,
		versionCmd, completionCmd,
	)

	// The completion command below replaces cobra's generated one.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
