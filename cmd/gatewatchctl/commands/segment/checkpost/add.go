package checkpost

import (
	"fmt"
	"os"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	addSegmentID string
	addCode      string
	addName      string
	addPosition  int
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a checkpost to a segment",
	Long: `Add a checkpost at one end of a segment.

The position index (0 or 1) determines which end of the segment the
checkpost sits at. A segment accepts at most one checkpost per position,
and the short code must be unique across all segments.

Examples:
  # Add the two ends of a segment
  gatewatchctl segment checkpost add --segment 1f3a... --code AMLT --name "Amaltari Gate" --position 0
  gatewatchctl segment checkpost add --segment 1f3a... --code GHAT --name "Ghatgain Gate" --position 1`,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addSegmentID, "segment", "", "Segment ID (required)")
	addCmd.Flags().StringVar(&addCode, "code", "", "Short checkpost code, e.g. AMLT (required)")
	addCmd.Flags().StringVar(&addName, "name", "", "Human-readable name")
	addCmd.Flags().IntVar(&addPosition, "position", 0, "Position index on the segment (0 or 1)")
	_ = addCmd.MarkFlagRequired("segment")
	_ = addCmd.MarkFlagRequired("code")
}

func runAdd(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	if addPosition != 0 && addPosition != 1 {
		return fmt.Errorf("position must be 0 or 1")
	}

	req := &apiclient.CreateCheckpostRequest{
		Code:          addCode,
		Name:          addName,
		SegmentID:     addSegmentID,
		PositionIndex: addPosition,
	}

	checkpost, err := client.CreateCheckpost(req)
	if err != nil {
		return fmt.Errorf("failed to create checkpost: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, checkpost,
		fmt.Sprintf("Checkpost '%s' added at position %d", checkpost.Code, checkpost.PositionIndex))
}
