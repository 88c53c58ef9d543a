package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatewatch/gatewatch/pkg/config"
	"github.com/gatewatch/gatewatch/pkg/server/store"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the overstay scan once",
	Long: `Run a single overstay scan pass against the passage database.

The running server scans on its own interval; this command is for running
the same pass by hand, for example from cron on a deployment that keeps the
server stopped overnight, or to check the effect of a segment change
immediately.

Examples:
  # Run one scan pass
  gatewatch scan`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	st, err := store.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer func() { _ = st.Close() }()

	started := time.Now()
	result, err := st.ScanOverstays(context.Background(), started)
	if err != nil {
		return fmt.Errorf("overstay scan failed: %w", err)
	}

	fmt.Printf("Scan complete in %s\n", time.Since(started).Round(time.Millisecond))
	fmt.Printf("  Passages examined: %d\n", result.Scanned)
	fmt.Printf("  Alerts created:    %d\n", result.Created)
	return nil
}
