package context

import (
	"fmt"
	"os"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/internal/cli/credentials"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured contexts",
	Long: `List every saved server context. The active one is marked
with an asterisk.

Examples:
  # List contexts as table
  gatewatchctl context list

  # List as JSON
  gatewatchctl context list -o json`,
	RunE: runContextList,
}

// InfoList renders saved contexts as a table.
type InfoList []Info

func (l InfoList) Headers() []string {
	return []string{"", "NAME", "SERVER", "USER", "LOGGED IN", "EXPIRES"}
}

func (l InfoList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, c := range l {
		marker := ""
		if c.Current {
			marker = "*"
		}
		rows = append(rows, []string{
			marker,
			c.Name,
			c.ServerURL,
			cmdutil.EmptyOr(c.Username, "-"),
			cmdutil.BoolToYesNo(c.LoggedIn),
			cmdutil.EmptyOr(c.ExpiresAt, "-"),
		})
	}
	return rows
}

func runContextList(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	current := store.GetCurrentContextName()
	contexts := make(InfoList, 0)
	for _, name := range store.ListContexts() {
		ctx, err := store.GetContext(name)
		if err != nil {
			continue
		}
		contexts = append(contexts, describe(name, name == current, ctx))
	}

	return cmdutil.PrintOutput(os.Stdout, contexts, len(contexts) == 0,
		"No contexts configured. Use 'gatewatchctl login --server <url>' to create one.", contexts)
}
