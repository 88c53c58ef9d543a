// Package alert implements overstay alert commands for gatewatchctl.
package alert

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for overstay alerts.
var Cmd = &cobra.Command{
	Use:   "alert",
	Short: "Inspect and resolve overstay alerts",
	Long: `Inspect overstay alerts and resolve them manually.

An alert is raised when a vehicle entered a segment but no exit was
seen within the maximum travel time. Alerts resolve automatically when
the exit passage finally arrives; resolve manually only after the
situation has been dealt with in the field.

Examples:
  # Open alerts
  gatewatchctl alert list --resolved=false

  # Resolve after a field check
  gatewatchctl alert resolve <id>`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(resolveCmd)
}
