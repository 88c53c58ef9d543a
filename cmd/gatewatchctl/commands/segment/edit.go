package segment

import (
	"fmt"
	"os"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	editName     string
	editDistance float64
	editMaxSpeed float64
	editMinSpeed float64
)

var editCmd = &cobra.Command{
	Use:   "edit <segment-id>",
	Short: "Edit a segment",
	Long: `Update a segment's parameters.

Only the specified fields are changed. The server recomputes the travel
time bounds from the new values. Changed bounds apply to pairs matched
after the change; existing violations and alerts are not revisited.

Examples:
  # Tighten the speed limit
  gatewatchctl segment edit 1f3a... --max-speed 30

  # Correct the measured distance
  gatewatchctl segment edit 1f3a... --distance 19.2

  # Rename
  gatewatchctl segment edit 1f3a... --name "Amaltari-Ghatgain (north)"`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editName, "name", "", "Segment name")
	editCmd.Flags().Float64Var(&editDistance, "distance", 0, "Distance in kilometers")
	editCmd.Flags().Float64Var(&editMaxSpeed, "max-speed", 0, "Speed limit in km/h")
	editCmd.Flags().Float64Var(&editMinSpeed, "min-speed", 0, "Minimum expected speed in km/h")
}

func runEdit(cmd *cobra.Command, args []string) error {
	id := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	req := &apiclient.UpdateSegmentRequest{}
	hasUpdate := false

	if cmd.Flags().Changed("name") {
		req.Name = &editName
		hasUpdate = true
	}
	if cmd.Flags().Changed("distance") {
		req.DistanceKm = &editDistance
		hasUpdate = true
	}
	if cmd.Flags().Changed("max-speed") {
		req.MaxSpeedKmh = &editMaxSpeed
		hasUpdate = true
	}
	if cmd.Flags().Changed("min-speed") {
		req.MinSpeedKmh = &editMinSpeed
		hasUpdate = true
	}

	if !hasUpdate {
		return fmt.Errorf("no fields specified. Use --name, --distance, --max-speed, or --min-speed")
	}

	segment, err := client.UpdateSegment(id, req)
	if err != nil {
		return fmt.Errorf("failed to update segment: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, segment,
		fmt.Sprintf("Segment '%s' updated (travel time %.1f-%.1f min)",
			segment.Name, segment.MinTravelTimeMinutes, segment.MaxTravelTimeMinutes))
}
