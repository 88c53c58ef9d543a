package user

import (
	"fmt"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
	"github.com/spf13/cobra"
)

var resetPassword string

var passwordCmd = &cobra.Command{
	Use:   "password <username>",
	Short: "Reset a user's password",
	Long: `Set a new password on another user's account (admin operation).

Tokens the user already holds stay valid until they expire. To lock an
account out right now, also deactivate it: 'user edit <username>
--active false'.

Examples:
  # Reset interactively
  gatewatchctl user password asha

  # Non-interactive; the password lands in shell history
  gatewatchctl user password asha --password newsecret`,
	Args: cobra.ExactArgs(1),
	RunE: runPassword,
}

func init() {
	passwordCmd.Flags().StringVarP(&resetPassword, "password", "p", "", "New password (prompts if not provided)")
}

func runPassword(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	password := resetPassword
	if password == "" {
		if password, err = promptNewPassword(); err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	username := args[0]
	req := &apiclient.UpdateUserRequest{Password: &password}
	if _, err := client.UpdateUser(username, req); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Password reset for user '%s'", username))
	return nil
}
