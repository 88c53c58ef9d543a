package passage

import (
	"fmt"
	"os"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/internal/cli/timeutil"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <passage-id>",
	Short: "Get passage details",
	Long: `Get detailed information about a passage.

Examples:
  # Get passage details as table
  gatewatchctl passage get 7d4e...

  # Get as JSON
  gatewatchctl passage get 7d4e... -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// SinglePassageList wraps a single passage for table rendering.
type SinglePassageList []apiclient.Passage

// Headers implements TableRenderer.
func (pl SinglePassageList) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (pl SinglePassageList) Rows() [][]string {
	if len(pl) == 0 {
		return nil
	}
	p := pl[0]

	direction := "-"
	if p.IsEntry != nil {
		if *p.IsEntry {
			direction = "entry"
		} else {
			direction = "exit"
		}
	}
	matchedID := "-"
	if p.MatchedPassageID != nil {
		matchedID = *p.MatchedPassageID
	}

	return [][]string{
		{"ID", p.ID},
		{"Client ID", p.ClientID},
		{"Plate", p.PlateNumber},
		{"Plate (raw)", cmdutil.EmptyOr(p.PlateNumberRaw, "-")},
		{"Vehicle", p.VehicleType},
		{"Checkpost", p.CheckpostID},
		{"Segment", p.SegmentID},
		{"Recorded", timeutil.FormatLocal(p.RecordedAt)},
		{"Received", timeutil.FormatLocal(p.ServerReceivedAt)},
		{"Ranger", p.RangerID},
		{"Source", p.Source},
		{"Direction", direction},
		{"Matched with", matchedID},
		{"Photo", cmdutil.EmptyOr(p.PhotoRef, "-")},
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	passage, err := client.GetPassage(args[0])
	if err != nil {
		return fmt.Errorf("failed to get passage: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, passage, SinglePassageList{*passage})
}
