package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gatewatch/gatewatch/pkg/agent/syncer"
	"github.com/gatewatch/gatewatch/pkg/config"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync pass now",
	Long: `Run a single sync pass and exit.

The pass pushes queued passages, pulls the opposite checkpost's unmatched
passages into the local cache, and, when the server cannot be reached,
hands the eligible backlog to the SMS fallback. It is the same pass the
background agent runs on its interval.

Examples:
  # Sync once
  rangerd sync`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
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

	client := newClient(cfg)
	login(client, cfg)

	fallback, err := newFallback(st, cfg)
	if err != nil {
		return err
	}

	engine := syncer.New(st, client, fallback, nil, engineConfig(cfg))
	result, err := engine.RunOnce(context.Background())
	if err != nil {
		return fmt.Errorf("sync pass failed: %w", err)
	}

	if result.Online {
		fmt.Printf("Sync finished: %d pushed, %d retried, %d failed, %d pulled.\n",
			result.Pushed, result.Retried, result.Failed, result.Pulled)
	} else {
		fmt.Println("Server unreachable - queued passages held for a later pass.")
		if result.SMSSent > 0 {
			fmt.Printf("%d passage(s) handed to the SMS fallback.\n", result.SMSSent)
		}
	}
	return nil
}
