package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gatewatch/gatewatch/internal/logger"
	"github.com/gatewatch/gatewatch/pkg/agent/syncer"
	"github.com/gatewatch/gatewatch/pkg/config"
	"github.com/gatewatch/gatewatch/pkg/metrics"
	"github.com/gatewatch/gatewatch/pkg/metrics/prometheus"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the background sync agent",
	Long: `Run the field agent's background sync loop.

The agent pushes locally recorded passages to the server, pulls the
opposite checkpost's unmatched passages into the local cache, and hands
long-unsynced passages to the SMS fallback when the server stays out of
reach. It runs in the foreground; use a process supervisor for unattended
operation.

The agent holds the device's data directory exclusively. Stop it before
running 'rangerd record' or other one-shot commands on the same store.

On Unix, SIGUSR1 triggers an immediate sync pass without waiting for the
next interval.

Examples:
  # Run the agent
  rangerd start

  # Run with a custom config file
  rangerd start --config /etc/gatewatch/rangerd.yaml

  # Force a sync pass on a running agent
  kill -USR1 $(pidof rangerd)`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoadAgent(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("Rangerd - Checkpost field agent")
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)

	// Initialize metrics before any component that records them; constructors
	// bind to the registry at creation time.
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}
	metricsServer := metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	logger.Info("Agent store opened", "data_dir", cfg.DataDir)

	// An unreachable server must not keep the agent down: recording has
	// already happened into the local store, and the engine re-authenticates
	// per pass. A reachable server additionally refreshes the cached
	// assignment so reassignments and speed-bound edits propagate.
	client := newClient(cfg)
	if login(client, cfg) {
		if err := refreshAssignment(client, cfg); err != nil {
			logger.Warn("Assignment refresh failed, keeping cached assignment", logger.Err(err))
		} else if path := configSource(); path != "" {
			if err := config.SaveAgentConfig(cfg, path); err != nil {
				logger.Warn("Failed to persist refreshed assignment", logger.Err(err))
			}
		}
	}
	if !cfg.Assignment.Complete() {
		logger.Warn("No checkpost assignment cached; run 'rangerd init' while the server is reachable")
	}

	fallback, err := newFallback(st, cfg)
	if err != nil {
		return err
	}
	if fallback != nil {
		logger.Info("SMS fallback enabled",
			"gateway", cfg.SMS.GatewayNumber,
			"spool_dir", cfg.SMS.SpoolDir)
	}

	engine := syncer.New(st, client, fallback, prometheus.NewSyncMetrics(), engineConfig(cfg))

	go func() {
		// No-op when metrics are disabled
		if err := metricsServer.Start(ctx); err != nil {
			logger.Error("Metrics server error", "error", err)
		}
	}()
	engine.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	kickChan := make(chan os.Signal, 1)
	notifyKick(kickChan)

	logger.Info("Agent is running. Press Ctrl+C to stop.")

	for {
		select {
		case <-kickChan:
			logger.Info("Sync pass requested by signal")
			engine.Kick()
		case <-sigChan:
			signal.Stop(sigChan)
			signal.Stop(kickChan)
			logger.Info("Shutdown signal received, initiating graceful shutdown")
			cancel()
			if err := engine.Close(); err != nil {
				return err
			}
			logger.Info("Agent stopped gracefully")
			return nil
		}
	}
}

// configSource returns the path of the config file in use, or empty when the
// agent is running on defaults only.
func configSource() string {
	if path := GetConfigFile(); path != "" {
		return path
	}
	if config.DefaultAgentConfigExists() {
		return config.GetDefaultAgentConfigPath()
	}
	return ""
}
