package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatewatch/gatewatch/internal/cli/health"
	"github.com/gatewatch/gatewatch/internal/cli/output"
	"github.com/gatewatch/gatewatch/internal/cli/timeutil"
	"github.com/gatewatch/gatewatch/pkg/agent/store"
	"github.com/gatewatch/gatewatch/pkg/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show device status",
	Long: `Show this device's assignment, connectivity, and sync backlog.

Examples:
  # Check the device
  rangerd status`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoadAgent(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	counts, err := st.QueueCounts(ctx)
	if err != nil {
		return err
	}
	total, err := st.CountPassages(ctx)
	if err != nil {
		return err
	}
	lastSync, err := st.LastSyncAt(ctx)
	if err != nil {
		return err
	}

	pairs := [][2]string{}

	a := &cfg.Assignment
	if a.Complete() {
		pairs = append(pairs,
			[2]string{"Checkpost", a.CheckpostCode},
			[2]string{"Segment", fmt.Sprintf("%s (%.1f km, %.0f-%.0f km/h)",
				a.SegmentName, a.DistanceKm, a.MinSpeedKmh, a.MaxSpeedKmh)},
			[2]string{"Assignment as of", timeutil.FormatLocal(a.UpdatedAt)},
		)
	} else {
		pairs = append(pairs, [2]string{"Checkpost", "not configured - run 'rangerd init'"})
	}

	pairs = append(pairs, [2]string{"Server", fmt.Sprintf("%s (%s)", cfg.Server.URL, probeServer(cfg))})

	syncTime := "never"
	if !lastSync.IsZero() {
		syncTime = timeutil.FormatLocal(lastSync)
	}
	pairs = append(pairs,
		[2]string{"Last sync", syncTime},
		[2]string{"Passages recorded", strconv.Itoa(total)},
		[2]string{"Queue", fmt.Sprintf("%d pending, %d in flight, %d failed, %d synced",
			counts[store.StatusPending], counts[store.StatusInFlight],
			counts[store.StatusFailed], counts[store.StatusSynced])},
	)

	if cfg.SMS.Enabled {
		pairs = append(pairs, [2]string{"SMS fallback", fmt.Sprintf("enabled via %s", cfg.SMS.GatewayNumber)})
	} else {
		pairs = append(pairs, [2]string{"SMS fallback", "disabled"})
	}

	return output.SimpleTable(os.Stdout, pairs)
}

// probeServer checks the server's health endpoint with a short timeout and
// describes the result. The health endpoint needs no auth, so this reports
// reachability even when the stored credentials have gone stale.
func probeServer(cfg *config.AgentConfig) string {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(cfg.Server.URL + "/health")
	if err != nil {
		return "unreachable"
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("unhealthy, HTTP %d", resp.StatusCode)
	}

	var hs health.Response
	if err := json.NewDecoder(resp.Body).Decode(&hs); err != nil {
		return "online"
	}
	if hs.Data.Uptime != "" {
		return fmt.Sprintf("online, up %s", hs.Data.Uptime)
	}
	return "online"
}
