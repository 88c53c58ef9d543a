package api

import (
	"os"
	"time"

	"github.com/gatewatch/gatewatch/internal/logger"
	"github.com/gatewatch/gatewatch/pkg/server/store"
)

// EnvServerSecret is the name of the environment variable for the server's
// JWT authentication signing secret.
const EnvServerSecret = "GATEWATCH_SERVER_SECRET"

// EnvSMSWebhookSecret is the name of the environment variable for the SMS
// gateway webhook signing secret.
const EnvSMSWebhookSecret = "GATEWATCH_SMS_WEBHOOK_SECRET"

// APIConfig configures the REST API HTTP server.
//
// The API server provides health check endpoints, authentication endpoints,
// passage intake and management APIs. The API is always enabled as it is
// required for agent sync and for managing segments, checkposts and users.
type APIConfig struct {
	// Host is the listen address for the API endpoints.
	// Empty means all interfaces.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the HTTP port for the API endpoints.
	// Default: 8080
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means there is no timeout.
	// Default: 10s
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// A zero or negative value means there is no timeout.
	// Default: 10s
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled. If zero, the value of ReadTimeout is used.
	// Default: 60s
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// JWT configures JWT authentication for API endpoints.
	JWT JWTConfig `mapstructure:"jwt" yaml:"jwt"`

	// SMS configures the SMS gateway webhook. The webhook route is only
	// mounted when both the URL and the secret are set.
	SMS SMSWebhookConfig `mapstructure:"sms" yaml:"sms"`
}

// JWTConfig configures JWT token generation and validation.
type JWTConfig struct {
	// Secret is the HMAC signing key for JWT tokens.
	// Must be at least 32 characters long.
	// Can also be set via GATEWATCH_SERVER_SECRET environment variable.
	// Environment variable takes precedence over config file.
	Secret string `mapstructure:"secret" yaml:"secret"`

	// AccessTokenDuration is the lifetime of access tokens.
	// Default: 15m
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration" yaml:"access_token_duration"`

	// RefreshTokenDuration is the lifetime of refresh tokens.
	// Default: 168h (7 days)
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration" yaml:"refresh_token_duration"`
}

// SMSWebhookConfig configures signature verification for the SMS gateway
// webhook.
type SMSWebhookConfig struct {
	// WebhookURL is the full public URL the gateway delivers to. It is part
	// of the signed payload, so it must match what the gateway was
	// configured with, scheme and path included.
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url"`

	// Secret is the shared signing secret agreed with the SMS gateway.
	// Can also be set via GATEWATCH_SMS_WEBHOOK_SECRET environment variable.
	// Environment variable takes precedence over config file.
	Secret string `mapstructure:"secret" yaml:"secret"`

	// ClockSkewTolerance is how far ahead of server time an SMS-carried
	// capture timestamp may be before the message is rejected.
	// Default: 2m
	ClockSkewTolerance time.Duration `mapstructure:"clock_skew_tolerance" yaml:"clock_skew_tolerance"`
}

// applyDefaults fills in zero values with sensible defaults.
func (c *APIConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	// JWT defaults
	if c.JWT.AccessTokenDuration == 0 {
		c.JWT.AccessTokenDuration = 15 * time.Minute
	}
	if c.JWT.RefreshTokenDuration == 0 {
		c.JWT.RefreshTokenDuration = 7 * 24 * time.Hour
	}
	// The webhook applies the same future-timestamp gate as the store.
	if c.SMS.ClockSkewTolerance == 0 {
		c.SMS.ClockSkewTolerance = store.DefaultClockSkewTolerance
	}
}

// GetJWTSecret returns the JWT secret, preferring the environment variable.
// Returns empty string if neither env var nor config secret is set.
// Logs a warning if the environment variable overrides a config file value.
func (c *APIConfig) GetJWTSecret() string {
	envSecret := os.Getenv(EnvServerSecret)
	if envSecret != "" {
		if c.JWT.Secret != "" && c.JWT.Secret != envSecret {
			logger.Warn("JWT secret from environment variable overrides config file value",
				"env_var", EnvServerSecret)
		}
		return envSecret
	}
	return c.JWT.Secret
}

// HasJWTSecret returns whether a JWT secret is configured.
func (c *APIConfig) HasJWTSecret() bool {
	return c.GetJWTSecret() != ""
}

// GetSMSWebhookSecret returns the webhook signing secret, preferring the
// environment variable.
func (c *APIConfig) GetSMSWebhookSecret() string {
	envSecret := os.Getenv(EnvSMSWebhookSecret)
	if envSecret != "" {
		if c.SMS.Secret != "" && c.SMS.Secret != envSecret {
			logger.Warn("SMS webhook secret from environment variable overrides config file value",
				"env_var", EnvSMSWebhookSecret)
		}
		return envSecret
	}
	return c.SMS.Secret
}

// SMSWebhookEnabled returns whether the SMS intake webhook should be mounted.
// Both the public URL and the signing secret are required: without the URL
// signatures cannot be verified, and an unsigned intake path is never served.
func (c *APIConfig) SMSWebhookEnabled() bool {
	return c.SMS.WebhookURL != "" && c.GetSMSWebhookSecret() != ""
}
