package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/gatewatch/gatewatch/internal/bytesize"
)

// Default agent configuration values.
const (
	// DefaultAgentTimeout is the default HTTP client timeout for server calls
	DefaultAgentTimeout = 15 * time.Second

	// DefaultSyncInterval is how often the sync worker pushes and pulls
	DefaultSyncInterval = 30 * time.Second

	// DefaultMaxSyncAttempts is the retry cap before a queue entry is failed
	DefaultMaxSyncAttempts = 5

	// DefaultPullLimit is the maximum passages fetched per pull
	DefaultPullLimit = 500

	// DefaultPullBuffer widens the pull lookback beyond the segment's
	// maximum travel time, absorbing device clock drift and sync lag
	DefaultPullBuffer = 1 * time.Hour

	// DefaultSMSFallbackAge is how long a passage must sit unsynced before
	// the SMS fallback kicks in
	DefaultSMSFallbackAge = 5 * time.Minute

	// DefaultAgentCacheSize is the default Badger block cache size
	DefaultAgentCacheSize = 64 * bytesize.MiB

	// DefaultAgentMetricsPort is the default agent metrics port.
	// Distinct from the server's 9090 so both can share a host.
	DefaultAgentMetricsPort = 9091
)

// AgentConfig represents the rangerd field agent configuration.
//
// The agent records passages offline-first into a local Badger store and
// syncs them to the server when connectivity allows. Everything it needs to
// operate without the server lives here, including a cached copy of the
// ranger's checkpost assignment.
type AgentConfig struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Server contains connection settings for the gatewatch server
	Server AgentServerConfig `mapstructure:"server" yaml:"server"`

	// DataDir is the directory for the local passage store and queue
	// Default: $XDG_DATA_HOME/gatewatch (or ~/.local/share/gatewatch)
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`

	// Assignment caches the ranger's checkpost and segment so recording and
	// local matching work with no connectivity. Refreshed after each
	// successful login.
	Assignment AssignmentConfig `mapstructure:"assignment" yaml:"assignment"`

	// Sync configures the background sync worker
	Sync SyncConfig `mapstructure:"sync" yaml:"sync"`

	// SMS configures the SMS fallback channel
	SMS SMSConfig `mapstructure:"sms" yaml:"sms"`

	// Store configures the local Badger store
	Store AgentStoreConfig `mapstructure:"store" yaml:"store"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// AgentServerConfig contains connection settings for the gatewatch server.
type AgentServerConfig struct {
	// URL is the base URL of the gatewatch server (e.g. "https://gw.example.org")
	URL string `mapstructure:"url" yaml:"url"`

	// Username is the ranger's login name
	Username string `mapstructure:"username" yaml:"username"`

	// Password is the ranger's password.
	// Stored in the config file; the file is written with mode 0600.
	Password string `mapstructure:"password" yaml:"password,omitempty"`

	// Timeout bounds each HTTP call to the server.
	// A timed-out call counts as a transient sync failure.
	// Default: 15s
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// AssignmentConfig caches the ranger's checkpost assignment and the segment
// parameters the local matcher needs. All fields mirror server state; the
// server remains authoritative.
type AssignmentConfig struct {
	// RangerID is the ranger's user ID on the server
	RangerID string `mapstructure:"ranger_id" yaml:"ranger_id,omitempty"`

	// Phone is the ranger's phone number, used as the SMS sender identity
	Phone string `mapstructure:"phone" yaml:"phone,omitempty"`

	// CheckpostID is the assigned checkpost's ID
	CheckpostID string `mapstructure:"checkpost_id" yaml:"checkpost_id,omitempty"`

	// CheckpostCode is the checkpost's short code, used in the SMS wire format
	CheckpostCode string `mapstructure:"checkpost_code" yaml:"checkpost_code,omitempty"`

	// SegmentID is the segment the checkpost belongs to
	SegmentID string `mapstructure:"segment_id" yaml:"segment_id,omitempty"`

	// SegmentName is the segment's display name
	SegmentName string `mapstructure:"segment_name" yaml:"segment_name,omitempty"`

	// DistanceKm is the segment length in kilometers
	DistanceKm float64 `mapstructure:"distance_km" yaml:"distance_km,omitempty"`

	// MaxSpeedKmh is the segment's speed limit in km/h
	MaxSpeedKmh float64 `mapstructure:"max_speed_kmh" yaml:"max_speed_kmh,omitempty"`

	// MinSpeedKmh is the slowest expected speed in km/h
	MinSpeedKmh float64 `mapstructure:"min_speed_kmh" yaml:"min_speed_kmh,omitempty"`

	// UpdatedAt records when the assignment was last refreshed from the server
	UpdatedAt time.Time `mapstructure:"updated_at" yaml:"updated_at,omitempty"`
}

// Complete reports whether the cached assignment has everything recording
// and local matching need.
func (a *AssignmentConfig) Complete() bool {
	return a.CheckpostID != "" && a.SegmentID != "" &&
		a.DistanceKm > 0 && a.MaxSpeedKmh > 0 && a.MinSpeedKmh > 0
}

// MaxTravelTime is the slowest expected traversal of the cached segment.
// Zero when the assignment is incomplete.
func (a *AssignmentConfig) MaxTravelTime() time.Duration {
	if a.DistanceKm <= 0 || a.MinSpeedKmh <= 0 {
		return 0
	}
	hours := a.DistanceKm / a.MinSpeedKmh
	return time.Duration(hours * float64(time.Hour))
}

// SyncConfig configures the background sync worker.
type SyncConfig struct {
	// Interval is how often the sync worker pushes queued passages and
	// pulls opposite-checkpost passages.
	// Default: 30s
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`

	// MaxAttempts is how many transient failures a queue entry survives
	// before it is marked failed.
	// Default: 5
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`

	// PullLimit is the maximum passages fetched per pull.
	// Default: 500
	PullLimit int `mapstructure:"pull_limit" yaml:"pull_limit"`

	// PullBuffer widens the pull lookback beyond the segment's maximum
	// travel time.
	// Default: 1h
	PullBuffer time.Duration `mapstructure:"pull_buffer" yaml:"pull_buffer"`
}

// PullLookback is the pull window: the cached segment's maximum travel time
// plus the buffer. Passages older than this can no longer pair with anything
// the agent records.
func (s *SyncConfig) PullLookback(assignment *AssignmentConfig) time.Duration {
	return assignment.MaxTravelTime() + s.PullBuffer
}

// SMSConfig configures the SMS fallback channel.
type SMSConfig struct {
	// Enabled controls whether the SMS fallback is active
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// GatewayNumber is the phone number the server-side SMS gateway listens on
	GatewayNumber string `mapstructure:"gateway_number" yaml:"gateway_number,omitempty"`

	// SpoolDir is where outbox files are written for the device SMS daemon
	SpoolDir string `mapstructure:"spool_dir" yaml:"spool_dir,omitempty"`

	// FallbackAge is how long a passage must sit unsynced before it is
	// eligible for SMS fallback.
	// Default: 5m
	FallbackAge time.Duration `mapstructure:"fallback_age" yaml:"fallback_age"`
}

// AgentStoreConfig configures the local Badger store.
type AgentStoreConfig struct {
	// CacheSize is the Badger block cache size.
	// Accepts human-readable sizes like "64Mi" or "128MB".
	// Default: 64Mi
	CacheSize bytesize.ByteSize `mapstructure:"cache_size" yaml:"cache_size"`
}

// LoadAgent loads the agent configuration from file, environment, and defaults.
//
// Same precedence as Load: environment (GATEWATCH_*), then file, then defaults.
func LoadAgent(configPath string) (*AgentConfig, error) {
	v := viper.New()

	setupViper(v, configPath, "rangerd")

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		cfg := GetDefaultAgentConfig()
		return cfg, nil
	}

	var cfg AgentConfig
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyAgentDefaults(&cfg)

	if err := ValidateAgent(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoadAgent loads the agent configuration with helpful error messages.
func MustLoadAgent(configPath string) (*AgentConfig, error) {
	if configPath == "" {
		if !DefaultAgentConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  rangerd init\n\n"+
				"Or specify a custom config file:\n"+
				"  rangerd <command> --config /path/to/rangerd.yaml",
				GetDefaultAgentConfigPath())
		}
		configPath = GetDefaultAgentConfigPath()
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  rangerd init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := LoadAgent(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveAgentConfig saves the agent configuration to the specified file path.
// The file carries the ranger's password and is written with mode 0600.
func SaveAgentConfig(cfg *AgentConfig, path string) error {
	return saveYAML(cfg, path)
}

// ApplyAgentDefaults fills in default values for all unset agent
// configuration fields.
func ApplyAgentDefaults(cfg *AgentConfig) {
	applyLoggingDefaults(&cfg.Logging)

	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = DefaultAgentTimeout
	}

	if cfg.DataDir == "" {
		cfg.DataDir = getDataDir()
	}

	if cfg.Sync.Interval == 0 {
		cfg.Sync.Interval = DefaultSyncInterval
	}
	if cfg.Sync.MaxAttempts == 0 {
		cfg.Sync.MaxAttempts = DefaultMaxSyncAttempts
	}
	if cfg.Sync.PullLimit == 0 {
		cfg.Sync.PullLimit = DefaultPullLimit
	}
	if cfg.Sync.PullBuffer == 0 {
		cfg.Sync.PullBuffer = DefaultPullBuffer
	}

	if cfg.SMS.FallbackAge == 0 {
		cfg.SMS.FallbackAge = DefaultSMSFallbackAge
	}
	if cfg.SMS.SpoolDir == "" {
		// gammu-smsd's conventional outbox location
		cfg.SMS.SpoolDir = "/var/spool/gammu/outbox"
	}

	if cfg.Store.CacheSize == 0 {
		cfg.Store.CacheSize = DefaultAgentCacheSize
	}

	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = DefaultAgentMetricsPort
	}
}

// GetDefaultAgentConfig returns an agent configuration with all default
// values applied.
func GetDefaultAgentConfig() *AgentConfig {
	cfg := &AgentConfig{}
	ApplyAgentDefaults(cfg)
	return cfg
}

// getDataDir returns the agent data directory path.
//
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share, or falls back to
// current directory (.) if home directory cannot be determined.
func getDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "gatewatch")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".local", "share", "gatewatch")
}

// GetDefaultAgentConfigPath returns the default agent configuration file path.
func GetDefaultAgentConfigPath() string {
	return filepath.Join(getConfigDir(), "rangerd.yaml")
}

// DefaultAgentConfigExists checks if an agent config file exists at the
// default location.
func DefaultAgentConfigExists() bool {
	path := GetDefaultAgentConfigPath()
	_, err := os.Stat(path)
	return err == nil
}
