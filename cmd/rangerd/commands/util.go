package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gatewatch/gatewatch/internal/cli/prompt"
	"github.com/gatewatch/gatewatch/internal/logger"
	"github.com/gatewatch/gatewatch/pkg/agent/sms"
	"github.com/gatewatch/gatewatch/pkg/agent/store"
	"github.com/gatewatch/gatewatch/pkg/agent/syncer"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
	"github.com/gatewatch/gatewatch/pkg/config"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.AgentConfig) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// openStore opens the agent's local store. Badger gets its own subdirectory
// so the data dir can hold other agent state alongside it.
func openStore(cfg *config.AgentConfig) (*store.Store, error) {
	return store.Open(store.Config{
		Dir:       filepath.Join(cfg.DataDir, "store"),
		CacheSize: cfg.Store.CacheSize.Int64(),
	})
}

// newClient creates an API client for the configured server.
func newClient(cfg *config.AgentConfig) *apiclient.Client {
	client := apiclient.New(cfg.Server.URL)
	client.SetTimeout(cfg.Server.Timeout)
	return client
}

// login authenticates the client with the configured credentials and reports
// whether it succeeded. Failure is the normal offline case, not fatal: the
// sync engine re-authenticates on its own once the server answers again.
func login(client *apiclient.Client, cfg *config.AgentConfig) bool {
	tok, err := client.Login(cfg.Server.Username, cfg.Server.Password)
	if err != nil {
		logger.Warn("Login failed, continuing offline",
			logger.Username(cfg.Server.Username),
			logger.Err(err))
		return false
	}
	client.SetToken(tok.AccessToken)
	return true
}

// refreshAssignment fetches the ranger's checkpost assignment and the
// segment's matching parameters into the config. The cached copy is what
// lets recording and local matching run with no connectivity.
func refreshAssignment(client *apiclient.Client, cfg *config.AgentConfig) error {
	user, err := client.GetCurrentUser()
	if err != nil {
		return fmt.Errorf("failed to fetch account: %w", err)
	}
	if user.CheckpostID == "" {
		return fmt.Errorf("user '%s' has no checkpost assignment; ask an administrator to assign one", user.Username)
	}

	checkpost, err := client.GetCheckpost(user.CheckpostID)
	if err != nil {
		return fmt.Errorf("failed to fetch checkpost: %w", err)
	}
	segment, err := client.GetSegment(checkpost.SegmentID)
	if err != nil {
		return fmt.Errorf("failed to fetch segment: %w", err)
	}

	cfg.Assignment = config.AssignmentConfig{
		RangerID:      user.ID,
		Phone:         user.Phone,
		CheckpostID:   checkpost.ID,
		CheckpostCode: checkpost.Code,
		SegmentID:     segment.ID,
		SegmentName:   segment.Name,
		DistanceKm:    segment.DistanceKm,
		MaxSpeedKmh:   segment.MaxSpeedKmh,
		MinSpeedKmh:   segment.MinSpeedKmh,
		UpdatedAt:     time.Now().UTC(),
	}
	return nil
}

// newFallback builds the SMS fallback from configuration, or nil when the
// fallback is disabled.
func newFallback(st *store.Store, cfg *config.AgentConfig) (syncer.Fallback, error) {
	if !cfg.SMS.Enabled {
		return nil, nil
	}
	if cfg.Assignment.CheckpostCode == "" {
		return nil, fmt.Errorf("sms fallback needs a cached checkpost assignment; run 'rangerd init' while the server is reachable")
	}

	sender, err := sms.NewSpoolSender(cfg.SMS.SpoolDir)
	if err != nil {
		return nil, err
	}

	return sms.New(st, sender, sms.Config{
		Gateway:       cfg.SMS.GatewayNumber,
		CheckpostCode: cfg.Assignment.CheckpostCode,
		PhoneSuffix:   phoneSuffix(cfg.Assignment.Phone),
		MinAge:        cfg.SMS.FallbackAge,
	}), nil
}

// engineConfig maps the agent configuration onto the sync engine's knobs.
// RetainSynced stays at the engine default.
func engineConfig(cfg *config.AgentConfig) syncer.Config {
	return syncer.Config{
		Interval:     cfg.Sync.Interval,
		MaxAttempts:  cfg.Sync.MaxAttempts,
		PullLimit:    cfg.Sync.PullLimit,
		PullLookback: cfg.Sync.PullLookback(&cfg.Assignment),
		Username:     cfg.Server.Username,
		Password:     cfg.Server.Password,
	}
}

// phoneSuffix returns the last four digits of a phone number, ignoring
// separators. The server attributes SMS messages by this suffix because
// sender numbers arrive masked or reformatted by carriers.
func phoneSuffix(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// handleAbort turns a Ctrl+C during an interactive prompt into a clean
// exit instead of an error.
func handleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}

// parseRecordedAt parses the --at flag. Empty means now. Accepts RFC3339
// ("2026-08-25T14:30:00Z") or a local wall-clock time ("2026-08-25 14:30").
func parseRecordedAt(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use RFC3339 or \"2006-01-02 15:04\"", value)
}
