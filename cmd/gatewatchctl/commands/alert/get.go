package alert

import (
	"fmt"
	"os"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/internal/cli/timeutil"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <alert-id>",
	Short: "Get alert details",
	Long: `Get detailed information about an overstay alert.

Examples:
  # Get alert details as table
  gatewatchctl alert get 8b6d...

  # Get as JSON
  gatewatchctl alert get 8b6d... -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// SingleAlertList wraps a single alert for table rendering.
type SingleAlertList []apiclient.OverstayAlert

// Headers implements TableRenderer.
func (al SingleAlertList) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (al SingleAlertList) Rows() [][]string {
	if len(al) == 0 {
		return nil
	}
	a := al[0]

	resolvedAt := "-"
	if a.ResolvedAt != nil {
		resolvedAt = timeutil.FormatLocal(*a.ResolvedAt)
	}
	resolvedBy := "-"
	if a.ResolvedByPassageID != nil {
		resolvedBy = *a.ResolvedByPassageID
	}

	return [][]string{
		{"ID", a.ID},
		{"Plate", a.PlateNumber},
		{"Vehicle", a.VehicleType},
		{"Segment", a.SegmentID},
		{"Entry passage", a.EntryPassageID},
		{"Entered", timeutil.FormatLocal(a.EntryTime)},
		{"Expected exit by", timeutil.FormatLocal(a.ExpectedExitBy)},
		{"Resolved", cmdutil.BoolToYesNo(a.Resolved)},
		{"Resolved at", resolvedAt},
		{"Resolved by passage", resolvedBy},
		{"Created", timeutil.FormatLocal(a.CreatedAt)},
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	alert, err := client.GetAlert(args[0])
	if err != nil {
		return fmt.Errorf("failed to get alert: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, alert, SingleAlertList{*alert})
}
