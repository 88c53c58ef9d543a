package user

import (
	"fmt"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/internal/cli/prompt"
	"github.com/spf13/cobra"
)

var (
	currentPassword string
	newPassword     string
)

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change your own password",
	Long: `Change the password of the logged-in account.

The current password is always required, even with a valid session.
Stored tokens remain valid until they expire, so no re-login is needed.

Examples:
  # Interactively
  gatewatchctl user change-password

  # Non-interactive; both passwords land in shell history
  gatewatchctl user change-password --current oldpass --new newpass`,
	RunE: runChangePassword,
}

func init() {
	changePasswordCmd.Flags().StringVarP(&currentPassword, "current", "c", "", "Current password (prompts if not provided)")
	changePasswordCmd.Flags().StringVarP(&newPassword, "new", "n", "", "New password (prompts if not provided)")
}

func runChangePassword(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	current := currentPassword
	if current == "" {
		if current, err = prompt.Password("Current password"); err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	next := newPassword
	if next == "" {
		if next, err = promptNewPassword(); err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	if err := client.ChangeOwnPassword(current, next); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	cmdutil.PrintSuccess("Password changed successfully")
	return nil
}
