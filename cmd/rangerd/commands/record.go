package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gatewatch/gatewatch/internal/cli/prompt"
	"github.com/gatewatch/gatewatch/internal/cli/timeutil"
	"github.com/gatewatch/gatewatch/internal/logger"
	"github.com/gatewatch/gatewatch/internal/plate"
	"github.com/gatewatch/gatewatch/pkg/agent/matcher"
	"github.com/gatewatch/gatewatch/pkg/agent/store"
	"github.com/gatewatch/gatewatch/pkg/agent/syncer"
	"github.com/gatewatch/gatewatch/pkg/config"
	"github.com/gatewatch/gatewatch/pkg/server/models"
)

var (
	recordPlate   string
	recordVehicle string
	recordAt      string
	recordPhoto   string
	recordNoSync  bool
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a vehicle passage",
	Long: `Record a vehicle passage at this device's checkpost.

The passage is committed to the local store before anything touches the
network, so recording succeeds with no connectivity. If the local cache
holds a matching passage from the opposite checkpost, the travel-time
verdict is printed immediately; the server confirms it once both passages
sync.

After recording, one sync pass runs so the passage reaches the server
right away when it is reachable. Use --no-sync to skip that and leave
delivery to the background agent.

Examples:
  # Record interactively
  rangerd record

  # Record from flags
  rangerd record --plate "BA 1 PA 1234" --vehicle car

  # Backdate a passage from the paper logbook
  rangerd record -p "NA 5 KHA 201" --vehicle bus --at "2026-08-25 14:30" --no-sync`,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVarP(&recordPlate, "plate", "p", "", "Plate number as written on the vehicle")
	recordCmd.Flags().StringVar(&recordVehicle, "vehicle", "", "Vehicle type (car, jeep, pickup, van, minibus, bus, truck, tanker, motorcycle, other)")
	recordCmd.Flags().StringVar(&recordAt, "at", "", "Recording time (default: now)")
	recordCmd.Flags().StringVar(&recordPhoto, "photo", "", "Reference to an evidence photo")
	recordCmd.Flags().BoolVar(&recordNoSync, "no-sync", false, "Skip the immediate sync pass")
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoadAgent(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}
	if !cfg.Assignment.Complete() {
		return fmt.Errorf("no checkpost assignment cached; run 'rangerd init' while the server is reachable")
	}

	plateRaw := recordPlate
	if plateRaw == "" {
		plateRaw, err = prompt.InputRequired("Plate number")
		if err != nil {
			return handleAbort(err)
		}
	}
	normalized := plate.Normalize(plateRaw)
	if normalized == "" {
		return fmt.Errorf("plate number %q has no usable characters", plateRaw)
	}

	vehicle := recordVehicle
	if vehicle == "" {
		vehicle, err = prompt.SelectString("Vehicle type", vehicleTypeNames())
		if err != nil {
			return handleAbort(err)
		}
	}
	if !models.VehicleType(vehicle).IsValid() {
		return fmt.Errorf("unknown vehicle type %q (valid: %v)", vehicle, vehicleTypeNames())
	}

	recordedAt, err := parseRecordedAt(recordAt)
	if err != nil {
		return err
	}
	// Mirrors the intake's default clock-skew tolerance so a bad --at fails
	// here instead of poisoning the sync queue.
	if recordedAt.After(time.Now().UTC().Add(5 * time.Minute)) {
		return fmt.Errorf("recorded time %s is in the future", recordedAt.Format(time.RFC3339))
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	passage := &store.LocalPassage{
		ClientID:       uuid.NewString(),
		PlateNumber:    normalized,
		PlateNumberRaw: plateRaw,
		VehicleType:    vehicle,
		CheckpostID:    cfg.Assignment.CheckpostID,
		SegmentID:      cfg.Assignment.SegmentID,
		RecordedAt:     recordedAt,
		PhotoRef:       recordPhoto,
	}
	if err := st.RecordPassage(ctx, passage); err != nil {
		return fmt.Errorf("failed to record passage: %w", err)
	}

	fmt.Printf("Passage recorded: %s (%s) at %s, %s\n",
		normalized, vehicle, cfg.Assignment.CheckpostCode,
		recordedAt.Local().Format(timeutil.CompactTimeFormat))

	reportLocalMatch(ctx, st, cfg, passage)

	if recordNoSync {
		fmt.Println("Queued for the next sync pass.")
		return nil
	}
	return syncAfterRecord(ctx, st, cfg)
}

// reportLocalMatch pairs the fresh passage against the cached opposite
// checkpost and prints the verdict. A match failure only costs the verdict;
// the passage is already committed.
func reportLocalMatch(ctx context.Context, st *store.Store, cfg *config.AgentConfig, passage *store.LocalPassage) {
	m := matcher.New(st, matcher.SegmentParams{
		SegmentID:   cfg.Assignment.SegmentID,
		CheckpostID: cfg.Assignment.CheckpostID,
		DistanceKm:  cfg.Assignment.DistanceKm,
		MaxSpeedKmh: cfg.Assignment.MaxSpeedKmh,
		MinSpeedKmh: cfg.Assignment.MinSpeedKmh,
	}, nil)

	match, err := m.Match(ctx, passage)
	if err != nil {
		logger.Warn("Local match check failed", logger.Err(err))
		return
	}
	if match == nil {
		return
	}

	fmt.Printf("Paired with the opposite checkpost: travel time %.1f minutes\n", match.TravelTimeMinutes)
	switch match.Kind {
	case models.ViolationSpeeding:
		fmt.Printf("LIKELY SPEEDING: under the %.1f minute floor (%.0f km/h calculated, limit %.0f km/h)\n",
			match.ThresholdMinutes, match.CalculatedSpeedKmh, match.SpeedLimitKmh)
	case models.ViolationOverstay:
		fmt.Printf("LIKELY OVERSTAY: over the %.1f minute ceiling\n", match.ThresholdMinutes)
	default:
		fmt.Println("Travel time is within the segment's limits.")
		return
	}
	fmt.Println("The server confirms the violation once both passages arrive.")
}

// syncAfterRecord runs one best-effort sync pass. Being offline is not an
// error; the passage stays queued for the background agent.
func syncAfterRecord(ctx context.Context, st *store.Store, cfg *config.AgentConfig) error {
	client := newClient(cfg)
	if !login(client, cfg) {
		fmt.Println("Server unreachable - passage queued for the next sync.")
		return nil
	}

	engine := syncer.New(st, client, nil, nil, engineConfig(cfg))
	result, err := engine.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("sync pass failed: %w", err)
	}
	if !result.Online {
		fmt.Println("Server unreachable - passage queued for the next sync.")
		return nil
	}
	fmt.Printf("Synced: %d pushed, %d pulled into the local cache.\n", result.Pushed, result.Pulled)
	return nil
}

// vehicleTypeNames returns the valid vehicle types as plain strings.
func vehicleTypeNames() []string {
	types := models.AllVehicleTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}
