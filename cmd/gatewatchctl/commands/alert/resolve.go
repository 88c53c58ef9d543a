package alert

import (
	"fmt"
	"os"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <alert-id>",
	Short: "Resolve an overstay alert",
	Long: `Manually resolve an overstay alert (admin only).

Use this after the situation has been checked in the field, e.g. the
vehicle turned back or was escorted out. Resolving an already-resolved
alert is a no-op.

Examples:
  # Resolve an alert
  gatewatchctl alert resolve 8b6d...`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	id := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	alert, err := client.ResolveAlert(id)
	if err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, alert,
		fmt.Sprintf("Alert for plate '%s' resolved", alert.PlateNumber))
}
