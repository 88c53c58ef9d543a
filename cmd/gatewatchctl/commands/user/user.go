// Package user implements the 'gatewatchctl user' subcommands for
// managing ranger and admin accounts.
package user

import (
	"github.com/gatewatch/gatewatch/internal/cli/prompt"
	"github.com/gatewatch/gatewatch/internal/cli/timeutil"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
	"github.com/spf13/cobra"
)

// minPasswordLength mirrors the server-side rule; prompting enforces it
// locally so a too-short password fails before the API round trip.
const minPasswordLength = 8

// Cmd groups the user management subcommands.
var Cmd = &cobra.Command{
	Use:   "user",
	Short: "User management",
	Long: `Manage ranger and admin accounts on the gatewatch server.

Every subcommand needs admin privileges except 'change-password', which
works on the calling account. Rangers are tied to a checkpost;
reassigning the checkpost takes effect on their next login.

Examples:
  # List all users
  gatewatchctl user list

  # Create a ranger assigned to a checkpost
  gatewatchctl user create --username asha --role ranger --checkpost <id>

  # Walk through an interactive edit
  gatewatchctl user edit asha

  # Delete a user
  gatewatchctl user delete asha`,
}

func init() {
	Cmd.AddCommand(
		listCmd, getCmd,
		createCmd, editCmd, deleteCmd,
		passwordCmd, changePasswordCmd,
	)
}

// promptNewPassword asks for a new password twice.
func promptNewPassword() (string, error) {
	return prompt.PasswordWithConfirmation("New password", "Confirm new password", minPasswordLength)
}

// lastLogin formats a user's last login for display.
func lastLogin(u apiclient.User) string {
	if u.LastLogin == nil {
		return "-"
	}
	return timeutil.FormatLocal(*u.LastLogin)
}
