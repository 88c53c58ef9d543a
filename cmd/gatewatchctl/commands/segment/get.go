package segment

import (
	"fmt"
	"os"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/internal/cli/timeutil"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <segment-id>",
	Short: "Get segment details",
	Long: `Get detailed information about a segment, including its checkposts.

Examples:
  # Get segment details as table
  gatewatchctl segment get 1f3a...

  # Get as JSON
  gatewatchctl segment get 1f3a... -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// SingleSegmentList wraps a single segment for table rendering.
type SingleSegmentList []apiclient.Segment

// Headers implements TableRenderer.
func (sl SingleSegmentList) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (sl SingleSegmentList) Rows() [][]string {
	if len(sl) == 0 {
		return nil
	}
	s := sl[0]

	rows := [][]string{
		{"ID", s.ID},
		{"Name", s.Name},
		{"Distance", fmt.Sprintf("%.2f km", s.DistanceKm)},
		{"Speed limit", fmt.Sprintf("%.0f km/h", s.MaxSpeedKmh)},
		{"Minimum speed", fmt.Sprintf("%.0f km/h", s.MinSpeedKmh)},
		{"Min travel time", fmt.Sprintf("%.1f min", s.MinTravelTimeMinutes)},
		{"Max travel time", fmt.Sprintf("%.1f min", s.MaxTravelTimeMinutes)},
		{"Created", timeutil.FormatLocal(s.CreatedAt)},
	}
	for _, cp := range s.Checkposts {
		label := fmt.Sprintf("Checkpost %d", cp.PositionIndex)
		value := cp.Code
		if cp.Name != "" {
			value = fmt.Sprintf("%s (%s)", cp.Code, cp.Name)
		}
		rows = append(rows, []string{label, fmt.Sprintf("%s  %s", value, cp.ID)})
	}
	return rows
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	segment, err := client.GetSegment(args[0])
	if err != nil {
		return fmt.Errorf("failed to get segment: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, segment, SingleSegmentList{*segment})
}
