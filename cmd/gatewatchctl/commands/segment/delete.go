package segment

import (
	"fmt"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <segment-id>",
	Short: "Delete a segment",
	Long: `Delete a segment and its checkposts from the gatewatch server.

This action is irreversible and is refused while passages are still
recorded against the segment. You will be prompted for confirmation
unless --force is specified.

Examples:
  # Delete segment with confirmation
  gatewatchctl segment delete 1f3a...

  # Delete segment without confirmation
  gatewatchctl segment delete 1f3a... --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	return cmdutil.RunDeleteWithConfirmation("Segment", id, deleteForce, func() error {
		if err := client.DeleteSegment(id); err != nil {
			return fmt.Errorf("failed to delete segment: %w", err)
		}
		return nil
	})
}
