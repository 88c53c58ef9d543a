package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance for struct tag validation.
var validate = validator.New()

// Validate checks the configuration for errors.
//
// Struct tag validation (required fields, value ranges, enums) runs first,
// followed by cross-field checks that tags cannot express. Validation never
// mutates the configuration; normalization happens in ApplyDefaults.
func Validate(cfg *Config) error {
	// Struct tag validation (oneof, min, max, gte, lte, ...)
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Database configuration has backend-specific requirements
	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("invalid database configuration: %w", err)
	}

	// Telemetry requires an endpoint when enabled
	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry endpoint is required when telemetry is enabled")
	}

	// Profiling requires an endpoint when enabled
	if cfg.Telemetry.Profiling.Enabled && cfg.Telemetry.Profiling.Endpoint == "" {
		return fmt.Errorf("profiling endpoint is required when profiling is enabled")
	}

	// Negative durations are always configuration mistakes
	if cfg.ClockSkewTolerance < 0 {
		return fmt.Errorf("clock_skew_tolerance must not be negative")
	}
	if cfg.Scanner.Interval < 0 {
		return fmt.Errorf("scanner interval must not be negative")
	}
	if cfg.Scanner.BatchSize < 0 {
		return fmt.Errorf("scanner batch_size must not be negative")
	}

	return nil
}

// ValidateAgent checks the agent configuration for errors.
func ValidateAgent(cfg *AgentConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Server.URL == "" {
		return fmt.Errorf("server url is required; run 'rangerd init' to configure")
	}

	if cfg.Sync.Interval < 0 {
		return fmt.Errorf("sync interval must not be negative")
	}
	if cfg.Sync.MaxAttempts < 0 {
		return fmt.Errorf("sync max_attempts must not be negative")
	}

	// SMS fallback needs somewhere to write outbox files
	if cfg.SMS.Enabled {
		if cfg.SMS.GatewayNumber == "" {
			return fmt.Errorf("sms gateway_number is required when sms fallback is enabled")
		}
		if cfg.SMS.SpoolDir == "" {
			return fmt.Errorf("sms spool_dir is required when sms fallback is enabled")
		}
	}

	return nil
}
