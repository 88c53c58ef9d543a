package checkpost

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
	"github.com/spf13/cobra"
)

var listSegmentID string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List checkposts",
	Long: `List checkposts, optionally filtered to one segment.

Examples:
  # List all checkposts
  gatewatchctl segment checkpost list

  # List checkposts of one segment
  gatewatchctl segment checkpost list --segment 1f3a...`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listSegmentID, "segment", "", "Filter by segment ID")
}

// CheckpostList is a list of checkposts for table rendering.
type CheckpostList []apiclient.Checkpost

// Headers implements TableRenderer.
func (cl CheckpostList) Headers() []string {
	return []string{"ID", "CODE", "NAME", "SEGMENT", "POSITION"}
}

// Rows implements TableRenderer.
func (cl CheckpostList) Rows() [][]string {
	rows := make([][]string, 0, len(cl))
	for _, cp := range cl {
		rows = append(rows, []string{
			cp.ID,
			cp.Code,
			cmdutil.EmptyOr(cp.Name, "-"),
			cp.SegmentID,
			strconv.Itoa(cp.PositionIndex),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	checkposts, err := client.ListCheckposts(listSegmentID)
	if err != nil {
		return fmt.Errorf("failed to list checkposts: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, checkposts, len(checkposts) == 0, "No checkposts found.", CheckpostList(checkposts))
}
