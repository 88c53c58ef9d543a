// Package violation implements violation inspection commands for gatewatchctl.
package violation

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for violation inspection.
var Cmd = &cobra.Command{
	Use:   "violation",
	Short: "Inspect violations",
	Long: `Inspect speed and overstay violations.

Violations are generated automatically when an entry and exit passage
for the same vehicle are matched and the travel time falls outside the
segment's allowed window.

Examples:
  # Recent violations
  gatewatchctl violation list

  # Speeding on one segment over the last week
  gatewatchctl violation list --segment <id> --kind speeding --since 168h

  # Repeat offender lookup
  gatewatchctl violation list --plate "BA 2 PA 1234"`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
}
