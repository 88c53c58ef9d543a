package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/internal/cli/credentials"
	"github.com/gatewatch/gatewatch/internal/cli/health"
	"github.com/gatewatch/gatewatch/internal/cli/output"
	"github.com/gatewatch/gatewatch/internal/cli/timeutil"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Probe the connected gatewatch server and report its health.

Both the liveness and readiness endpoints are checked, so the output
distinguishes a dead server from one that is up but has lost its
database.

Examples:
  # Check status of the current context's server
  gatewatchctl status

  # Output as JSON
  gatewatchctl status -o json`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// ServerStatus is the probe result for display.
type ServerStatus struct {
	Context      string `json:"context" yaml:"context"`
	Server       string `json:"server" yaml:"server"`
	Status       string `json:"status" yaml:"status"`
	Healthy      bool   `json:"healthy" yaml:"healthy"`
	Ready        bool   `json:"ready" yaml:"ready"`
	StoreLatency string `json:"store_latency,omitempty" yaml:"store_latency,omitempty"`
	Service      string `json:"service,omitempty" yaml:"service,omitempty"`
	StartedAt    string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime       string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}
	ctx, err := store.GetCurrentContext()
	if err != nil {
		return fmt.Errorf("not logged in. Run 'gatewatchctl login' first")
	}
	if ctx.ServerURL == "" {
		return fmt.Errorf("no server configured. Run 'gatewatchctl login' first")
	}

	status := probeServer(ctx.ServerURL)
	status.Context = store.GetCurrentContextName()

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
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

// probeServer checks liveness first, then readiness. A server that
// answers /health but fails /health/ready is up with a broken store.
func probeServer(serverURL string) ServerStatus {
	status := ServerStatus{Server: serverURL, Status: "unreachable"}
	client := &http.Client{Timeout: 5 * time.Second}

	live, err := fetchHealth(client, serverURL+"/health")
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Status = live.Status
	status.Healthy = live.Status == "healthy"
	status.Service = live.Data.Service
	status.StartedAt = live.Data.StartedAt
	status.Uptime = live.Data.Uptime
	if live.Error != "" {
		status.Error = live.Error
	}

	ready, err := fetchHealth(client, serverURL+"/health/ready")
	if err == nil {
		status.Ready = ready.Status == "healthy"
		status.StoreLatency = ready.Data.StoreLatency
		if ready.Error != "" && status.Error == "" {
			status.Error = ready.Error
		}
	}
	return status
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
	fmt.Printf("  Context:    %s\n", status.Context)
	fmt.Printf("  Server:     %s\n", status.Server)
	fmt.Printf("  Status:     %s\n", statusMarker(status))

	switch {
	case status.Ready:
		fmt.Printf("  Store:      reachable (%s)\n", status.StoreLatency)
	case status.Healthy:
		fmt.Println("  Store:      unreachable")
	}

	if status.Service != "" {
		fmt.Printf("  Service:    %s\n", status.Service)
	}
	if status.StartedAt != "" {
		fmt.Printf("  Started:    %s\n", timeutil.FormatTime(status.StartedAt))
	}
	if status.Uptime != "" {
		fmt.Printf("  Uptime:     %s\n", timeutil.FormatUptime(status.Uptime))
	}
	if status.Error != "" {
		fmt.Printf("  Error:      %s\n", status.Error)
	}
	fmt.Println()
}

// statusMarker renders the status with a colored glyph unless --no-color
// is in effect.
func statusMarker(status ServerStatus) string {
	glyph, color := "●", "\033[33m" // degraded
	switch {
	case status.Healthy && status.Ready:
		color = "\033[32m"
	case status.Status == "unreachable":
		glyph, color = "○", "\033[31m"
	}

	if cmdutil.Flags.NoColor {
		return glyph + " " + status.Status
	}
	return color + glyph + " " + status.Status + "\033[0m"
}
