package commands

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/gatewatch/gatewatch/internal/cli/prompt"
	"github.com/gatewatch/gatewatch/pkg/config"
)

var (
	initServer   string
	initUsername string
	initPassword string
	initDataDir  string
	initSMSGw    string
	initSMSSpool string
	initForce    bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Configure this device",
	Long: `Configure this device as a checkpost field agent.

Init logs in to the gatewatch server with the ranger's account, fetches the
ranger's checkpost assignment and the segment's matching parameters, and
writes everything to the agent configuration file. The cached assignment is
what lets 'rangerd record' work with no connectivity afterwards, so init
itself needs the server reachable.

Run init again after the ranger is reassigned or the segment's speed
bounds change; 'rangerd start' also refreshes the assignment whenever it
reaches the server.

Examples:
  # Interactive setup
  rangerd init

  # Non-interactive setup
  rangerd init --server http://gw.example.org:8080 --username mugling-gate --password secret

  # Enable the SMS fallback for extended outages
  rangerd init --sms-gateway +9779800000000`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initServer, "server", "", "Server URL")
	initCmd.Flags().StringVarP(&initUsername, "username", "u", "", "Ranger username")
	initCmd.Flags().StringVarP(&initPassword, "password", "p", "", "Ranger password")
	initCmd.Flags().StringVar(&initDataDir, "data-dir", "", "Data directory for the local store (default: $XDG_DATA_HOME/gatewatch)")
	initCmd.Flags().StringVar(&initSMSGw, "sms-gateway", "", "SMS gateway number (enables the SMS fallback)")
	initCmd.Flags().StringVar(&initSMSSpool, "sms-spool-dir", "", "Outbox directory for the device SMS daemon (default: /var/spool/gammu/outbox)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()
	if configPath == "" {
		configPath = config.GetDefaultAgentConfigPath()
	}
	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", configPath)
	}

	serverURL := initServer
	if serverURL == "" {
		var err error
		serverURL, err = prompt.InputRequired("Server URL")
		if err != nil {
			return handleAbort(err)
		}
	}
	parsedURL, err := url.Parse(serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	if parsedURL.Scheme == "" {
		parsedURL.Scheme = "http"
		serverURL = parsedURL.String()
	}

	username := initUsername
	if username == "" {
		username, err = prompt.InputRequired("Ranger username")
		if err != nil {
			return handleAbort(err)
		}
	}
	password := initPassword
	if password == "" {
		password, err = prompt.Password("Password")
		if err != nil {
			return handleAbort(err)
		}
	}

	cfg := config.GetDefaultAgentConfig()
	cfg.Server.URL = serverURL
	cfg.Server.Username = username
	cfg.Server.Password = password
	if initDataDir != "" {
		cfg.DataDir = initDataDir
	}

	// The assignment cache is the point of init, so the server must answer.
	client := newClient(cfg)
	fmt.Printf("Logging in to %s as %s...\n", serverURL, username)
	tokens, err := client.Login(username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	client.SetToken(tokens.AccessToken)

	if err := refreshAssignment(client, cfg); err != nil {
		return err
	}

	if err := configureSMS(cfg); err != nil {
		return handleAbort(err)
	}

	if err := config.SaveAgentConfig(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	a := &cfg.Assignment
	fmt.Printf("\nDevice configured for checkpost %s on segment '%s'\n", a.CheckpostCode, a.SegmentName)
	fmt.Printf("  Segment: %.1f km, %.0f-%.0f km/h (expected travel %.1f-%.1f min)\n",
		a.DistanceKm, a.MinSpeedKmh, a.MaxSpeedKmh,
		a.DistanceKm/a.MaxSpeedKmh*60, a.DistanceKm/a.MinSpeedKmh*60)
	if cfg.SMS.Enabled {
		fmt.Printf("  SMS fallback: enabled via %s\n", cfg.SMS.GatewayNumber)
	}
	fmt.Printf("  Config: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  rangerd record --plate \"BA 1 PA 1234\" --vehicle car")
	fmt.Println("  rangerd start")
	return nil
}

// configureSMS fills the SMS section from flags, or interactively when no
// flag was given.
func configureSMS(cfg *config.AgentConfig) error {
	if initSMSGw != "" {
		cfg.SMS.Enabled = true
		cfg.SMS.GatewayNumber = initSMSGw
		if initSMSSpool != "" {
			cfg.SMS.SpoolDir = initSMSSpool
		}
		return nil
	}

	enabled, err := prompt.Confirm("Enable SMS fallback for extended outages?", false)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}

	gateway, err := prompt.InputRequired("SMS gateway number")
	if err != nil {
		return err
	}
	spoolDir, err := prompt.Input("SMS spool directory", cfg.SMS.SpoolDir)
	if err != nil {
		return err
	}

	cfg.SMS.Enabled = true
	cfg.SMS.GatewayNumber = gateway
	cfg.SMS.SpoolDir = spoolDir
	return nil
}
