package segment

import (
	"fmt"
	"os"
	"strings"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all segments",
	Long: `List all segments with their checkposts and derived travel time bounds.

Examples:
  # List segments as table
  gatewatchctl segment list

  # List as JSON
  gatewatchctl segment list -o json`,
	RunE: runList,
}

// SegmentList is a list of segments for table rendering.
type SegmentList []apiclient.Segment

// Headers implements TableRenderer.
func (sl SegmentList) Headers() []string {
	return []string{"ID", "NAME", "CHECKPOSTS", "DISTANCE", "SPEED", "TRAVEL TIME"}
}

// Rows implements TableRenderer.
func (sl SegmentList) Rows() [][]string {
	rows := make([][]string, 0, len(sl))
	for _, s := range sl {
		codes := make([]string, 0, len(s.Checkposts))
		for _, cp := range s.Checkposts {
			codes = append(codes, cp.Code)
		}
		rows = append(rows, []string{
			s.ID,
			s.Name,
			cmdutil.EmptyOr(strings.Join(codes, " - "), "-"),
			fmt.Sprintf("%.1f km", s.DistanceKm),
			fmt.Sprintf("%.0f-%.0f km/h", s.MinSpeedKmh, s.MaxSpeedKmh),
			fmt.Sprintf("%.0f-%.0f min", s.MinTravelTimeMinutes, s.MaxTravelTimeMinutes),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	segments, err := client.ListSegments()
	if err != nil {
		return fmt.Errorf("failed to list segments: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, segments, len(segments) == 0, "No segments found.", SegmentList(segments))
}
