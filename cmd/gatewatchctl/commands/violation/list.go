package violation

import (
	"fmt"
	"os"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/internal/cli/timeutil"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	listSegmentID string
	listPlate     string
	listKind      string
	listSince     string
	listUntil     string
	listLimit     int
	listOffset    int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List violations",
	Long: `List violations recorded on the server, newest first.

Time filters accept a relative duration ("24h") or an RFC3339 timestamp.

Examples:
  # Recent violations
  gatewatchctl violation list

  # Speeding over the last week
  gatewatchctl violation list --kind speeding --since 168h

  # All violations by one plate
  gatewatchctl violation list --plate "BA 2 PA 1234"`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listSegmentID, "segment", "", "Filter by segment ID")
	listCmd.Flags().StringVar(&listPlate, "plate", "", "Filter by plate number")
	listCmd.Flags().StringVar(&listKind, "kind", "", "Filter by kind (speeding|overstay)")
	listCmd.Flags().StringVar(&listSince, "since", "", "Only violations created after this time")
	listCmd.Flags().StringVar(&listUntil, "until", "", "Only violations created before this time")
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "Maximum number of violations")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Number of violations to skip")
}

// ViolationList is a list of violations for table rendering.
type ViolationList []apiclient.Violation

// Headers implements TableRenderer.
func (vl ViolationList) Headers() []string {
	return []string{"ID", "KIND", "PLATE", "VEHICLE", "ENTRY", "TRAVEL TIME", "SPEED"}
}

// Rows implements TableRenderer.
func (vl ViolationList) Rows() [][]string {
	rows := make([][]string, 0, len(vl))
	for _, v := range vl {
		speed := "-"
		if v.CalculatedSpeedKmh > 0 {
			speed = fmt.Sprintf("%.0f km/h (limit %.0f)", v.CalculatedSpeedKmh, v.SpeedLimitKmh)
		}
		rows = append(rows, []string{
			v.ID,
			v.Kind,
			v.PlateNumber,
			v.VehicleType,
			timeutil.FormatLocal(v.EntryTime),
			fmt.Sprintf("%.1f min", v.TravelTimeMinutes),
			speed,
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	since, err := cmdutil.ParseTimeFlag(listSince)
	if err != nil {
		return err
	}
	until, err := cmdutil.ParseTimeFlag(listUntil)
	if err != nil {
		return err
	}

	opts := &apiclient.ViolationListOptions{
		SegmentID: listSegmentID,
		Plate:     listPlate,
		Kind:      listKind,
		Since:     since,
		Until:     until,
		Limit:     listLimit,
		Offset:    listOffset,
	}

	violations, err := client.ListViolations(opts)
	if err != nil {
		return fmt.Errorf("failed to list violations: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, violations, len(violations) == 0, "No violations found.", ViolationList(violations))
}
