// Package passage implements passage inspection commands for gatewatchctl.
package passage

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for passage inspection.
var Cmd = &cobra.Command{
	Use:   "passage",
	Short: "Inspect recorded passages",
	Long: `Inspect vehicle passages recorded at checkposts.

Passages are created by rangers in the field and replicated to the
server; this command reads what the server has. Rangers see only their
own segment, admins see everything.

Examples:
  # Most recent passages
  gatewatchctl passage list

  # Passages of one plate over the last day
  gatewatchctl passage list --plate "BA 2 PA 1234" --since 24h

  # Unmatched passages on a segment
  gatewatchctl passage list --segment <id> --matched=false`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
}
