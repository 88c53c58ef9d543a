package segment

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/internal/cli/prompt"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	createName     string
	createDistance float64
	createMaxSpeed float64
	createMinSpeed float64
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new segment",
	Long: `Create a new monitored segment on the gatewatch server.

The distance and speed limits determine the allowed travel time window:
vehicles crossing faster than the speed limit allows are speeding, and
vehicles slower than the minimum speed are flagged as overstaying.

After creating the segment, add its two checkposts with
'gatewatchctl segment checkpost add'.

Examples:
  # Create segment interactively
  gatewatchctl segment create

  # Create segment with flags
  gatewatchctl segment create --name "Amaltari-Ghatgain" --distance 18.5 --max-speed 40 --min-speed 15`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createName, "name", "", "Segment name (required)")
	createCmd.Flags().Float64Var(&createDistance, "distance", 0, "Distance in kilometers (required)")
	createCmd.Flags().Float64Var(&createMaxSpeed, "max-speed", 0, "Speed limit in km/h (required)")
	createCmd.Flags().Float64Var(&createMinSpeed, "min-speed", 0, "Minimum expected speed in km/h (required)")
}

// promptFloat asks for a positive decimal value.
func promptFloat(label string) (float64, error) {
	s, err := prompt.InputWithValidation(label, func(input string) error {
		v, err := strconv.ParseFloat(input, 64)
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		if v <= 0 {
			return fmt.Errorf("must be greater than zero")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}

func runCreate(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	name := createName
	if name == "" {
		name, err = prompt.InputRequired("Segment name")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	distance := createDistance
	if !cmd.Flags().Changed("distance") {
		distance, err = promptFloat("Distance (km)")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	maxSpeed := createMaxSpeed
	if !cmd.Flags().Changed("max-speed") {
		maxSpeed, err = promptFloat("Speed limit (km/h)")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	minSpeed := createMinSpeed
	if !cmd.Flags().Changed("min-speed") {
		minSpeed, err = promptFloat("Minimum expected speed (km/h)")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	req := &apiclient.CreateSegmentRequest{
		Name:        name,
		DistanceKm:  distance,
		MaxSpeedKmh: maxSpeed,
		MinSpeedKmh: minSpeed,
	}

	segment, err := client.CreateSegment(req)
	if err != nil {
		return fmt.Errorf("failed to create segment: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, segment,
		fmt.Sprintf("Segment '%s' created (travel time %.1f-%.1f min)",
			segment.Name, segment.MinTravelTimeMinutes, segment.MaxTravelTimeMinutes))
}
