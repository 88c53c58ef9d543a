package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatewatch/gatewatch/internal/cli/health"
	"github.com/gatewatch/gatewatch/internal/cli/output"
	"github.com/gatewatch/gatewatch/internal/cli/timeutil"
	"github.com/gatewatch/gatewatch/pkg/config"
)

var (
	statusOutput  string
	statusPidFile string
	statusAPIPort int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Report whether the local gatewatch server is running and healthy.

The PID file identifies the daemon process; the health endpoints say
whether the server answers requests and can reach its database. A
foreground server without a PID file is still found through the health
probe.

Examples:
  # Check status (uses the configured API port)
  gatewatch status

  # Check a server on a non-default port
  gatewatch status --api-port 9080

  # Output as JSON
  gatewatch status --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/gatewatch/gatewatch.pid)")
	statusCmd.Flags().IntVar(&statusAPIPort, "api-port", 8080, "API server port (default: from config)")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// ServerStatus represents the server status information.
type ServerStatus struct {
	Running      bool   `json:"running" yaml:"running"`
	Healthy      bool   `json:"healthy" yaml:"healthy"`
	Ready        bool   `json:"ready" yaml:"ready"`
	PID          int    `json:"pid,omitempty" yaml:"pid,omitempty"`
	Message      string `json:"message" yaml:"message"`
	StartedAt    string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime       string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	StoreLatency string `json:"store_latency,omitempty" yaml:"store_latency,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	port := statusAPIPort
	if !cmd.Flags().Changed("api-port") {
		if cfg, err := config.Load(cfgFile); err == nil && cfg.API.Port != 0 {
			port = cfg.API.Port
		}
	}

	status := ServerStatus{Message: "Server is not running"}

	pidPath := resolvePidFile(statusPidFile)
	if pid, err := readPidFile(pidPath); err == nil && processAlive(pid) {
		status.Running = true
		status.PID = pid
		status.Message = "Server process exists but health check failed"
	}

	base := fmt.Sprintf("http://localhost:%d", port)
	client := &http.Client{Timeout: 2 * time.Second}

	if live, err := fetchHealth(client, base+"/health"); err == nil {
		status.Running = true
		status.Healthy = live.Status == "healthy"
		status.StartedAt = live.Data.StartedAt
		status.Uptime = live.Data.Uptime
		if status.Healthy {
			status.Message = "Server is running and healthy"
		} else {
			status.Message = fmt.Sprintf("Server is running but unhealthy: %s", live.Error)
		}

		if ready, err := fetchHealth(client, base+"/health/ready"); err == nil {
			status.Ready = ready.Status == "healthy"
			status.StoreLatency = ready.Data.StoreLatency
			if !status.Ready && ready.Error != "" {
				status.Message = fmt.Sprintf("Server is running but the store is unavailable: %s", ready.Error)
			}
		}
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, status)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, status)
	}
	printStatusPanel(status)
	return nil
}

func fetchHealth(client *http.Client, url string) (health.Response, error) {
	var parsed health.Response
	resp, err := client.Get(url)
	if err != nil {
		return parsed, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return parsed, fmt.Errorf("unexpected health response: %w", err)
	}
	return parsed, nil
}

func printStatusPanel(status ServerStatus) {
	fmt.Println()
	fmt.Println("Gatewatch Server Status")
	fmt.Println("=======================")
	fmt.Println()

	switch {
	case status.Running && status.Healthy:
		fmt.Printf("  Status:     \033[32m● Running\033[0m\n")
	case status.Running:
		fmt.Printf("  Status:     \033[33m● Running (unhealthy)\033[0m\n")
	default:
		fmt.Printf("  Status:     \033[31m○ Stopped\033[0m\n")
	}

	if status.PID > 0 {
		fmt.Printf("  PID:        %d\n", status.PID)
	}
	if status.StartedAt != "" {
		fmt.Printf("  Started:    %s\n", timeutil.FormatTime(status.StartedAt))
	}
	if status.Uptime != "" {
		fmt.Printf("  Uptime:     %s\n", timeutil.FormatUptime(status.Uptime))
	}
	if status.Ready {
		fmt.Printf("  Store:      reachable (%s)\n", status.StoreLatency)
	} else if status.Healthy {
		fmt.Println("  Store:      unreachable")
	}

	fmt.Println()
	fmt.Printf("  %s\n", status.Message)
	fmt.Println()
}
