package user

import (
	"fmt"
	"os"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
	"github.com/spf13/cobra"
)

var listRole string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Long: `List the accounts known to the gatewatch server.

Examples:
  # All users as a table
  gatewatchctl user list

  # Only rangers
  gatewatchctl user list --role ranger

  # As JSON
  gatewatchctl user list -o json`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listRole, "role", "", "Only show users with this role (admin|ranger)")
}

// UserList renders users as a table.
type UserList []apiclient.User

// Headers implements TableRenderer.
func (ul UserList) Headers() []string {
	return []string{"USERNAME", "ROLE", "CHECKPOST", "PHONE", "ACTIVE", "LAST LOGIN"}
}

// Rows implements TableRenderer.
func (ul UserList) Rows() [][]string {
	rows := make([][]string, 0, len(ul))
	for _, u := range ul {
		rows = append(rows, []string{
			u.Username,
			u.Role,
			cmdutil.EmptyOr(u.CheckpostID, "-"),
			cmdutil.EmptyOr(u.Phone, "-"),
			cmdutil.BoolToYesNo(u.Active),
			lastLogin(u),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	users, err := client.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if listRole != "" {
		kept := users[:0]
		for _, u := range users {
			if u.Role == listRole {
				kept = append(kept, u)
			}
		}
		users = kept
	}

	emptyMsg := "No users found."
	if listRole != "" {
		emptyMsg = fmt.Sprintf("No users with role '%s'.", listRole)
	}
	return cmdutil.PrintOutput(os.Stdout, users, len(users) == 0, emptyMsg, UserList(users))
}
