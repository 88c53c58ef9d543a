// Package checkpost implements checkpost subcommands for gatewatchctl.
package checkpost

import (
	"github.com/spf13/cobra"
)

// Cmd is the checkpost subcommand of segment.
var Cmd = &cobra.Command{
	Use:   "checkpost",
	Short: "Manage segment checkposts",
	Long: `Manage the checkposts at the ends of a segment.

Every segment has exactly two checkposts, at position 0 and position 1.
The short code (e.g. AMLT) is what rangers reference in SMS reports.

Subcommands:
  list    List checkposts
  add     Add a checkpost to a segment
  remove  Remove a checkpost`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(removeCmd)
}
