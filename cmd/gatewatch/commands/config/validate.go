package config

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatewatch/gatewatch/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file and report anything wrong with it.

Structural problems (bad YAML, out-of-range values) fail the command.
Settings that load fine but will bite at runtime, such as a missing
JWT secret, are printed as warnings.

Examples:
  # Validate the default config
  gatewatch config validate

  # Validate a specific file
  gatewatch config validate --config /etc/gatewatch/config.yaml`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	fmt.Printf("Configuration file: %s\n", resolvePath(cmd))
	fmt.Println("Validation: OK")

	if warnings := runtimeWarnings(cfg); len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	webhook := "disabled"
	if cfg.API.SMSWebhookEnabled() {
		webhook = "enabled"
	}

	fmt.Println("\nSummary:")
	fmt.Printf("  Database:       %s\n", cfg.Database.Type)
	fmt.Printf("  API port:       %d\n", cfg.API.Port)
	fmt.Printf("  SMS webhook:    %s\n", webhook)
	fmt.Printf("  Scan interval:  %s\n", cfg.Scanner.Interval)
	fmt.Printf("  Log level:      %s\n", cfg.Logging.Level)

	return nil
}

// runtimeWarnings flags settings that pass validation but will cause
// trouble once the server is running.
func runtimeWarnings(cfg *config.Config) []string {
	var warnings []string

	if !cfg.API.HasJWTSecret() {
		warnings = append(warnings,
			"no JWT secret configured; every authenticated API call will fail")
	}

	if (cfg.API.SMS.WebhookURL == "") != (cfg.API.GetSMSWebhookSecret() == "") {
		warnings = append(warnings,
			"SMS webhook needs both webhook_url and secret; intake stays disabled until both are set")
	}

	if cfg.Scanner.Interval > 0 && cfg.Scanner.Interval < time.Minute {
		warnings = append(warnings,
			fmt.Sprintf("scanner interval %s is very aggressive; each pass queries every open passage", cfg.Scanner.Interval))
	}

	return warnings
}
