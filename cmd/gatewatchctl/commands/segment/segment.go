// Package segment implements segment management commands for gatewatchctl.
package segment

import (
	checkpostcmd "github.com/gatewatch/gatewatch/cmd/gatewatchctl/commands/segment/checkpost"
	"github.com/spf13/cobra"
)

// Cmd is the parent command for segment management.
var Cmd = &cobra.Command{
	Use:   "segment",
	Short: "Segment management",
	Long: `Manage monitored road segments on the gatewatch server.

A segment is a stretch of road between two checkposts with a known
distance and speed limits. The server derives the minimum and maximum
allowed travel times from these parameters. These operations require
admin privileges.

Examples:
  # List all segments
  gatewatchctl segment list

  # Create a segment
  gatewatchctl segment create --name "Amaltari-Ghatgain" --distance 18.5 --max-speed 40 --min-speed 15

  # Add its two checkposts
  gatewatchctl segment checkpost add --segment <id> --code AMLT --position 0
  gatewatchctl segment checkpost add --segment <id> --code GHAT --position 1

  # Tighten the speed limit
  gatewatchctl segment edit <id> --max-speed 30`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(editCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(checkpostcmd.Cmd)
}
