package checkpost

import (
	"fmt"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/spf13/cobra"
)

var removeForce bool

var removeCmd = &cobra.Command{
	Use:   "remove <checkpost-id>",
	Short: "Remove a checkpost",
	Long: `Remove a checkpost from its segment.

Refused while passages still reference the checkpost. You will be
prompted for confirmation unless --force is specified.

Examples:
  # Remove a checkpost
  gatewatchctl segment checkpost remove 9c2b...

  # Remove without confirmation
  gatewatchctl segment checkpost remove 9c2b... --force`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "Skip confirmation prompt")
}

func runRemove(cmd *cobra.Command, args []string) error {
	id := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	return cmdutil.RunDeleteWithConfirmation("Checkpost", id, removeForce, func() error {
		if err := client.DeleteCheckpost(id); err != nil {
			return fmt.Errorf("failed to remove checkpost: %w", err)
		}
		return nil
	})
}
