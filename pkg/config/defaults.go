package config

import (
	"strings"
	"time"

	"github.com/gatewatch/gatewatch/pkg/server/api"
	"github.com/gatewatch/gatewatch/pkg/server/store"
)

// Default configuration values.
const (
	// DefaultLogLevel is the default logging level
	DefaultLogLevel = "INFO"

	// DefaultLogFormat is the default log output format
	DefaultLogFormat = "text"

	// DefaultLogOutput is the default log destination
	DefaultLogOutput = "stdout"

	// DefaultShutdownTimeout is the default graceful shutdown timeout
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultTelemetryEndpoint is the default OTLP collector endpoint
	DefaultTelemetryEndpoint = "localhost:4317"

	// DefaultProfilingEndpoint is the default Pyroscope server endpoint
	DefaultProfilingEndpoint = "http://localhost:4040"

	// DefaultMetricsPort is the default Prometheus metrics port
	DefaultMetricsPort = 9090

	// DefaultScanInterval is how often the overstay scanner runs
	DefaultScanInterval = 15 * time.Minute

	// DefaultAdminUsername is the default initial admin username
	DefaultAdminUsername = "admin"
)

// ApplyDefaults fills in default values for all unset configuration fields.
// This is called after loading config from file/env to ensure all fields
// have sensible values.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	cfg.Database.ApplyDefaults()

	if cfg.ClockSkewTolerance == 0 {
		cfg.ClockSkewTolerance = store.DefaultClockSkewTolerance
	}
	// The skew gate is enforced in the store and in the SMS webhook; both
	// read the single top-level knob.
	cfg.Database.ClockSkewTolerance = cfg.ClockSkewTolerance
	if cfg.API.SMS.ClockSkewTolerance == 0 {
		cfg.API.SMS.ClockSkewTolerance = cfg.ClockSkewTolerance
	}

	applyAPIDefaults(&cfg.API)
	applyMetricsDefaults(&cfg.Metrics)
	applyScannerDefaults(&cfg.Scanner)
	// The batching itself happens in the store, so the bound lives there too.
	cfg.Database.ScanBatchSize = cfg.Scanner.BatchSize
	applyAdminDefaults(&cfg.Admin)
}

// applyLoggingDefaults sets default logging configuration.
func applyLoggingDefaults(logging *LoggingConfig) {
	if logging.Level == "" {
		logging.Level = DefaultLogLevel
	}
	// Normalize level to uppercase
	logging.Level = strings.ToUpper(logging.Level)

	if logging.Format == "" {
		logging.Format = DefaultLogFormat
	}

	if logging.Output == "" {
		logging.Output = DefaultLogOutput
	}
}

// applyTelemetryDefaults sets default telemetry configuration.
func applyTelemetryDefaults(telemetry *TelemetryConfig) {
	if telemetry.Endpoint == "" {
		telemetry.Endpoint = DefaultTelemetryEndpoint
	}

	if telemetry.SampleRate == 0 {
		telemetry.SampleRate = 1.0
	}

	applyProfilingDefaults(&telemetry.Profiling)
}

// applyProfilingDefaults sets default profiling configuration.
func applyProfilingDefaults(profiling *ProfilingConfig) {
	if profiling.Endpoint == "" {
		profiling.Endpoint = DefaultProfilingEndpoint
	}

	if len(profiling.ProfileTypes) == 0 {
		profiling.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

// applyAPIDefaults sets REST API server defaults.
// The API is always enabled; it is the only write path besides SMS.
func applyAPIDefaults(cfg *api.APIConfig) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.JWT.AccessTokenDuration == 0 {
		cfg.JWT.AccessTokenDuration = 15 * time.Minute
	}
	if cfg.JWT.RefreshTokenDuration == 0 {
		cfg.JWT.RefreshTokenDuration = 7 * 24 * time.Hour
	}
}

// applyMetricsDefaults sets default metrics configuration.
func applyMetricsDefaults(metrics *MetricsConfig) {
	if metrics.Port == 0 {
		metrics.Port = DefaultMetricsPort
	}
}

// applyScannerDefaults sets default overstay scanner configuration.
func applyScannerDefaults(scanner *ScannerConfig) {
	if scanner.Interval == 0 {
		scanner.Interval = DefaultScanInterval
	}

	if scanner.BatchSize == 0 {
		scanner.BatchSize = store.DefaultScanBatchSize
	}
}

// applyAdminDefaults sets default admin bootstrap configuration.
func applyAdminDefaults(admin *AdminConfig) {
	if admin.Username == "" {
		admin.Username = DefaultAdminUsername
	}
}

// GetDefaultConfig returns a configuration with all default values applied.
// This is used when no configuration file exists.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
