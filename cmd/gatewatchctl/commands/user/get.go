package user

import (
	"fmt"
	"os"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <username>",
	Short: "Get user details",
	Long: `Show one user in full.

Examples:
  # As a field/value table
  gatewatchctl user get asha

  # As JSON
  gatewatchctl user get asha -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// UserDetails renders a single user as a FIELD/VALUE table.
type UserDetails struct {
	User apiclient.User
}

// Headers implements TableRenderer.
func (d UserDetails) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (d UserDetails) Rows() [][]string {
	u := d.User
	return [][]string{
		{"ID", u.ID},
		{"Username", u.Username},
		{"Display Name", cmdutil.EmptyOr(u.DisplayName, "-")},
		{"Phone", cmdutil.EmptyOr(u.Phone, "-")},
		{"Role", u.Role},
		{"Checkpost", cmdutil.EmptyOr(u.CheckpostID, "-")},
		{"Active", cmdutil.BoolToYesNo(u.Active)},
		{"Last Login", lastLogin(u)},
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	user, err := client.GetUser(args[0])
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, user, UserDetails{User: *user})
}
