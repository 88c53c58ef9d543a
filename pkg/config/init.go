package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gatewatch/gatewatch/pkg/server/store"
)

// InitConfig creates a server configuration file at the default location.
// Returns the path of the created file.
//
// Fails if the file already exists unless force is true.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath creates a server configuration file at the given path.
//
// The generated file is a commented template with all defaults spelled out
// and a freshly generated JWT secret. Fails if the file already exists
// unless force is true.
func InitConfigToPath(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s\n"+
			"Use --force to overwrite", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	secret, err := generateJWTSecret()
	if err != nil {
		return fmt.Errorf("failed to generate JWT secret: %w", err)
	}

	content := generateConfigTemplate(secret)

	// 0600: the file carries the JWT secret
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// generateJWTSecret returns a random URL-safe secret of 64 characters.
func generateJWTSecret() (string, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// generateConfigTemplate renders the commented YAML template for a new
// server configuration file.
func generateConfigTemplate(jwtSecret string) string {
	dbPath := filepath.Join(getConfigDir(), "server.db")

	tmpl := `# Gatewatch Configuration File
#
# Vehicle passage tracking server. Every value shown here is the default
# except the generated JWT secret. Environment variables with the GATEWATCH_
# prefix override file values (e.g. GATEWATCH_LOGGING_LEVEL=DEBUG).

logging:
  # Log level: DEBUG, INFO, WARN, ERROR
  level: "INFO"
  # Log format: text, json
  format: "text"
  # Log output: stdout, stderr, or a file path
  output: "stdout"

# Passage database. SQLite for single-node, PostgreSQL for HA.
database:
  type: sqlite
  sqlite:
    path: "%s"
  # postgres:
  #   host: "localhost"
  #   port: 5432
  #   database: "gatewatch"
  #   user: "gatewatch"
  #   password: ""
  #   sslmode: "disable"

# How far ahead of server time a passage timestamp may be before intake
# rejects it. Field device clocks drift.
clock_skew_tolerance: %s

api:
  host: ""
  port: 8080
  jwt:
    # Generated during init. Override with GATEWATCH_SERVER_SECRET.
    secret: "%s"
    access_token_duration: 15m
    refresh_token_duration: 168h
  # SMS intake webhook. Disabled until both url and secret are set.
  # Override the secret with GATEWATCH_SMS_WEBHOOK_SECRET.
  sms:
    webhook_url: ""
    secret: ""

# Overstay scanner: flags vehicles past their segment's maximum travel time.
scanner:
  interval: %s
  batch_size: %d

# Initial admin user, created on first start if missing. Leave password_hash
# empty to have a password generated and printed once at startup, or set
# GATEWATCH_ADMIN_INITIAL_PASSWORD.
admin:
  username: "admin"
  phone: ""
  password_hash: ""

# Prometheus metrics endpoint (disabled by default).
metrics:
  enabled: false
  port: %d

# OpenTelemetry tracing (disabled by default).
telemetry:
  enabled: false
  endpoint: "localhost:4317"
  insecure: true
  sample_rate: 1.0
`

	return fmt.Sprintf(tmpl,
		yamlPath(dbPath),
		store.DefaultClockSkewTolerance,
		jwtSecret,
		DefaultScanInterval,
		store.DefaultScanBatchSize,
		DefaultMetricsPort,
	)
}

// yamlPath converts a filesystem path to a YAML-safe representation.
// Backslashes in double-quoted YAML strings are escape sequences.
func yamlPath(p string) string {
	return filepath.ToSlash(p)
}
