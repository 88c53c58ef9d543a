package alert

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
	listResolved  string // "true", "false", or "" for all
	listLimit     int
	listOffset    int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List overstay alerts",
	Long: `List overstay alerts, newest first.

Examples:
  # Open alerts
  gatewatchctl alert list --resolved=false

  # All alerts for one segment
  gatewatchctl alert list --segment 1f3a...

  # Alerts for one plate
  gatewatchctl alert list --plate "BA 2 PA 1234"`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listSegmentID, "segment", "", "Filter by segment ID")
	listCmd.Flags().StringVar(&listPlate, "plate", "", "Filter by plate number")
	listCmd.Flags().StringVar(&listResolved, "resolved", "", "Filter by resolution state (true|false)")
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "Maximum number of alerts")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Number of alerts to skip")
}

// AlertList is a list of overstay alerts for table rendering.
type AlertList []apiclient.OverstayAlert

// Headers implements TableRenderer.
func (al AlertList) Headers() []string {
	return []string{"ID", "PLATE", "VEHICLE", "ENTERED", "EXPECTED EXIT", "RESOLVED"}
}

// Rows implements TableRenderer.
func (al AlertList) Rows() [][]string {
	rows := make([][]string, 0, len(al))
	for _, a := range al {
		rows = append(rows, []string{
			a.ID,
			a.PlateNumber,
			a.VehicleType,
			timeutil.FormatLocal(a.EntryTime),
			timeutil.FormatLocal(a.ExpectedExitBy),
			cmdutil.BoolToYesNo(a.Resolved),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	opts := &apiclient.AlertListOptions{
		SegmentID: listSegmentID,
		Plate:     listPlate,
		Limit:     listLimit,
		Offset:    listOffset,
	}
	switch listResolved {
	case "":
	case "true":
		resolved := true
		opts.Resolved = &resolved
	case "false":
		resolved := false
		opts.Resolved = &resolved
	default:
		return fmt.Errorf("--resolved must be true or false")
	}

	alerts, err := client.ListAlerts(opts)
	if err != nil {
		return fmt.Errorf("failed to list alerts: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, alerts, len(alerts) == 0, "No alerts found.", AlertList(alerts))
}
