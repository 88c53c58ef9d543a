package violation

import (
	"fmt"
	"os"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/internal/cli/timeutil"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <violation-id>",
	Short: "Get violation details",
	Long: `Get detailed information about a violation, including the passage
pair it was derived from.

Examples:
  # Get violation details as table
  gatewatchctl violation get 5a1c...

  # Get as JSON
  gatewatchctl violation get 5a1c... -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// SingleViolationList wraps a single violation for table rendering.
type SingleViolationList []apiclient.Violation

// Headers implements TableRenderer.
func (vl SingleViolationList) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (vl SingleViolationList) Rows() [][]string {
	if len(vl) == 0 {
		return nil
	}
	v := vl[0]

	rows := [][]string{
		{"ID", v.ID},
		{"Kind", v.Kind},
		{"Plate", v.PlateNumber},
		{"Vehicle", v.VehicleType},
		{"Segment", v.SegmentID},
		{"Entry passage", v.EntryPassageID},
		{"Exit passage", v.ExitPassageID},
		{"Entry time", timeutil.FormatLocal(v.EntryTime)},
		{"Exit time", timeutil.FormatLocal(v.ExitTime)},
		{"Travel time", fmt.Sprintf("%.1f min (threshold %.1f)", v.TravelTimeMinutes, v.ThresholdMinutes)},
		{"Distance", fmt.Sprintf("%.2f km", v.DistanceKm)},
	}
	if v.CalculatedSpeedKmh > 0 {
		rows = append(rows, []string{"Speed", fmt.Sprintf("%.1f km/h (limit %.0f)", v.CalculatedSpeedKmh, v.SpeedLimitKmh)})
	}
	rows = append(rows, []string{"Created", timeutil.FormatLocal(v.CreatedAt)})
	return rows
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	violation, err := client.GetViolation(args[0])
	if err != nil {
		return fmt.Errorf("failed to get violation: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, violation, SingleViolationList{*violation})
}
