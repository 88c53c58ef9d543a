package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gatewatch/gatewatch/internal/logger"
	"github.com/gatewatch/gatewatch/internal/telemetry"
	"github.com/gatewatch/gatewatch/pkg/config"
	"github.com/gatewatch/gatewatch/pkg/metrics"
	"github.com/gatewatch/gatewatch/pkg/metrics/prometheus"
	"github.com/gatewatch/gatewatch/pkg/server/api"
	"github.com/gatewatch/gatewatch/pkg/server/models"
	"github.com/gatewatch/gatewatch/pkg/server/scanner"
	"github.com/gatewatch/gatewatch/pkg/server/store"
)

var (
	foreground bool
	pidFile    string
	logFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the gatewatch server",
	Long: `Start the gatewatch server with the specified configuration.

By default, the server runs in the background (daemon mode). Use --foreground
to run in the foreground for debugging or when managed by a process supervisor.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/gatewatch/config.yaml.

Examples:
  # Start in background (default)
  gatewatch start

  # Start in foreground
  gatewatch start --foreground

  # Start with custom config file
  gatewatch start --config /etc/gatewatch/config.yaml

  # Start with environment variable overrides
  GATEWATCH_LOGGING_LEVEL=DEBUG gatewatch start --foreground`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/gatewatch/gatewatch.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/gatewatch/gatewatch.log)")
}

func runStart(cmd *cobra.Command, args []string) error {
	// Handle daemon mode (background)
	if !foreground {
		return startDaemon()
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry (if enabled)
	telemetryCfg := telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "gatewatch",
		ServiceVersion: Build.Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	}
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	// Initialize Pyroscope profiling (if enabled)
	profilingCfg := telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "gatewatch",
		ServiceVersion: Build.Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	}
	profilingShutdown, err := telemetry.InitProfiling(profilingCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	fmt.Println("Gatewatch - Vehicle passage tracking server")
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	} else {
		logger.Info("Profiling disabled")
	}

	// Initialize metrics before any component that records them; constructors
	// bind to the registry at creation time.
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}
	metricsServer := metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port)

	// Open the passage database (runs migrations)
	st, err := store.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer func() { _ = st.Close() }()
	logger.Info("Store initialized", "type", cfg.Database.Type)

	// Ensure the admin user exists
	adminPassword, err := bootstrapAdmin(ctx, st, &cfg.Admin)
	if err != nil {
		return fmt.Errorf("failed to ensure admin user: %w", err)
	}
	if adminPassword != "" {
		logger.Info("Admin user created", "username", cfg.Admin.Username)
		fmt.Printf("\n*** IMPORTANT: Admin user created with password: %s ***\n", adminPassword)
		fmt.Println("Please save this password. It will not be shown again.")
		fmt.Println()
	}

	// Overstay scanner
	scanWorker := scanner.New(st, cfg.Scanner.Interval, prometheus.NewScannerMetrics())

	// REST API server (passage intake, sync, management)
	apiServer, err := api.NewServer(cfg.API, st, prometheus.NewIntakeMetrics())
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}
	logger.Info("API server configured", "port", apiServer.Port())
	if cfg.API.SMSWebhookEnabled() {
		logger.Info("SMS intake webhook enabled")
	} else {
		logger.Info("SMS intake webhook disabled")
	}

	// Pick up logging.level edits without a restart
	config.WatchLogLevel(GetConfigFile())

	// Write PID file if specified
	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	// Start everything
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- apiServer.Start(ctx)
	}()
	go func() {
		// No-op when metrics are disabled
		if err := metricsServer.Start(ctx); err != nil {
			logger.Error("Metrics server error", "error", err)
		}
	}()
	scanWorker.Start(ctx)

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()
		scanWorker.Stop(cfg.ShutdownTimeout)

		// Wait for server to shut down gracefully
		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error", "error", err)
			return err
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		scanWorker.Stop(cfg.ShutdownTimeout)
		if err != nil {
			logger.Error("Server error", "error", err)
			return err
		}
		logger.Info("Server stopped")
	}

	return nil
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}

// bootstrapAdmin makes sure an admin account exists before the API opens.
//
// When 'gatewatch init' placed a password hash in the config, the admin is
// created from it and no password needs reporting. Otherwise a random
// password is generated and returned exactly once, on first run.
func bootstrapAdmin(ctx context.Context, st store.Store, admin *config.AdminConfig) (string, error) {
	if admin.PasswordHash != "" {
		_, err := st.GetUser(ctx, admin.Username)
		if err == nil {
			return "", nil
		}
		if !errors.Is(err, models.ErrUserNotFound) {
			return "", err
		}
		user := models.DefaultAdminUser(admin.PasswordHash)
		user.Username = admin.Username
		user.Phone = admin.Phone
		if _, err := st.CreateUser(ctx, user); err != nil {
			return "", err
		}
		return "", nil
	}

	return st.EnsureAdminUser(ctx)
}
