package commands

import (
	"fmt"
	"os"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/internal/cli/output"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated user",
	Long: `Display the user the current access token belongs to.

Useful for checking which account and checkpost assignment a stored
credential resolves to.

Examples:
  # Show the current user
  gatewatchctl whoami

  # Show as JSON
  gatewatchctl whoami -o json`,
	RunE: runWhoami,
}

func runWhoami(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	user, err := client.GetCurrentUser()
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, user)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, user)
	default:
		fmt.Printf("Username:   %s\n", user.Username)
		fmt.Printf("Role:       %s\n", user.Role)
		if user.DisplayName != "" {
			fmt.Printf("Name:       %s\n", user.DisplayName)
		}
		if user.CheckpostID != "" {
			fmt.Printf("Checkpost:  %s\n", user.CheckpostID)
		}
	}

	return nil
}
