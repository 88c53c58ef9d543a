// Package syncer moves passages between the device and the server. Locally
// recorded passages go out through the sync queue; unmatched passages from
// the opposite checkpost come back into the local cache. One engine runs
// per device, and every pass is a push phase, a pull phase, and store
// hygiene.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/gatewatch/gatewatch/internal/logger"
	"github.com/gatewatch/gatewatch/pkg/agent/store"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
)

// Defaults for Config fields left at zero.
const (
	DefaultInterval     = 30 * time.Second
	DefaultMaxAttempts  = 5
	DefaultPullLimit    = 500
	DefaultPullLookback = 5 * time.Hour
	DefaultRetainSynced = 24 * time.Hour
)

// Config holds the engine's knobs.
type Config struct {
	// Interval is the pause between sync passes.
	// Default: 30s
	Interval time.Duration

	// MaxAttempts is how many delivery failures a queue entry absorbs
	// before it is parked as failed.
	// Default: 5
	MaxAttempts int

	// PullLimit caps how many remote passages one pull fetches.
	// Default: 500
	PullLimit int

	// PullLookback bounds the pull window. Passages recorded earlier than
	// now minus the lookback can no longer pair, so they are neither
	// fetched nor kept in the cache. Set it to the segment's maximum
	// travel time plus a buffer.
	// Default: 5h
	PullLookback time.Duration

	// RetainSynced is how long synced queue entries and their passage
	// bodies stay on the device before pruning.
	// Default: 24h
	RetainSynced time.Duration

	// Username and Password re-authenticate the engine when the server
	// stops accepting its token mid-pass.
	Username string
	Password string
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Interval:     DefaultInterval,
		MaxAttempts:  DefaultMaxAttempts,
		PullLimit:    DefaultPullLimit,
		PullLookback: DefaultPullLookback,
		RetainSynced: DefaultRetainSynced,
	}
}

// Fallback is offered the backlog when a pass runs without connectivity.
// A nil Fallback disables the fallback channel.
type Fallback interface {
	// Flush sends whatever part of the backlog qualifies for the fallback
	// channel and returns how many messages were handed off.
	Flush(ctx context.Context, now time.Time) (int, error)
}

// Metrics records sync outcomes. A nil Metrics is valid and records
// nothing.
type Metrics interface {
	ObserveCycle(result CycleResult, duration time.Duration)
	SetQueueDepth(status string, depth int)
}

// CycleResult summarizes one sync pass.
type CycleResult struct {
	Pushed  int  // entries delivered and marked synced
	Retried int  // entries returned to pending for a later pass
	Failed  int  // entries parked as failed
	Pulled  int  // remote passages upserted into the cache
	SMSSent int  // messages handed to the fallback channel
	Online  bool // whether the server answered at all
}

// Engine is the device's sync worker. It is single-threaded by design:
// each queue entry is picked, delivered, and resolved before the next, so
// the in-flight invariant holds without locking in the store.
type Engine struct {
	store    *store.Store
	client   *apiclient.Client
	fallback Fallback
	metrics  Metrics
	cfg      Config

	kickCh chan struct{}

	mu        sync.Mutex
	started   bool
	closed    bool
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// New creates an engine. fallback and metrics may be nil.
func New(st *store.Store, client *apiclient.Client, fallback Fallback, metrics Metrics, cfg Config) *Engine {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.PullLimit <= 0 {
		cfg.PullLimit = DefaultPullLimit
	}
	if cfg.PullLookback <= 0 {
		cfg.PullLookback = DefaultPullLookback
	}
	if cfg.RetainSynced <= 0 {
		cfg.RetainSynced = DefaultRetainSynced
	}

	return &Engine{
		store:     st,
		client:    client,
		fallback:  fallback,
		metrics:   metrics,
		cfg:       cfg,
		kickCh:    make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Start begins the sync loop in a goroutine. The first pass runs
// immediately so a backlog from the previous run does not wait out a full
// interval.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.started || e.closed {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.mu.Unlock()

	logger.Info("Starting sync engine",
		"interval", e.cfg.Interval,
		logger.MaxAttempts(e.cfg.MaxAttempts))

	go func() {
		defer close(e.stoppedCh)

		e.runPass(ctx)

		ticker := time.NewTicker(e.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				e.runPass(ctx)
			case <-e.kickCh:
				e.runPass(ctx)
			case <-e.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Kick requests an immediate pass without waiting for the ticker. Callers
// use it after recording a passage or when connectivity returns. Safe from
// any goroutine; never blocks.
func (e *Engine) Kick() {
	select {
	case e.kickCh <- struct{}{}:
	default:
	}
}

// Close stops the loop and reverts any in-flight entry to pending so the
// next run picks it straight up. Waits up to 30 seconds for an in-flight
// pass to finish.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	started := e.started
	e.mu.Unlock()

	if started {
		close(e.stopCh)
		select {
		case <-e.stoppedCh:
		case <-time.After(30 * time.Second):
			logger.Warn("Sync engine stop timed out")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := e.store.ResetInFlight(ctx)
	if err != nil {
		logger.Error("Failed to release in-flight entries", logger.Err(err))
		return err
	}
	if n > 0 {
		logger.Info("Released in-flight entries for the next run", logger.Count(n))
	}

	logger.Info("Sync engine stopped")
	return nil
}

func (e *Engine) runPass(ctx context.Context) {
	if _, err := e.RunOnce(ctx); err != nil {
		logger.Error("Sync pass failed", logger.Err(err))
	}
}

// RunOnce performs one full sync pass: crash recovery, outbound push,
// inbound pull, fallback, hygiene. Start runs it on the engine's schedule;
// rangerd's sync command calls it directly.
func (e *Engine) RunOnce(ctx context.Context) (*CycleResult, error) {
	started := time.Now()
	now := started.UTC()

	// In-flight entries at this point were stranded by a crash.
	n, err := e.store.ResetInFlight(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		logger.Info("Reverted stranded in-flight entries", logger.Count(n))
	}

	result := &CycleResult{Online: true}
	reauthed := false

	e.push(ctx, result, &reauthed)
	if err := ctx.Err(); err != nil {
		return result, err
	}

	if result.Online {
		e.pull(ctx, now, result, &reauthed)
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	if result.Online {
		if err := e.store.SetLastSyncAt(ctx, now); err != nil {
			logger.Warn("Failed to record sync time", logger.Err(err))
		}
	} else if e.fallback != nil {
		sent, err := e.fallback.Flush(ctx, now)
		if err != nil {
			logger.Error("Fallback flush failed", logger.Err(err))
		}
		result.SMSSent = sent
	}

	e.housekeep(ctx, now)
	e.report(ctx, result, time.Since(started))

	return result, nil
}

// relogin refreshes the engine's token with the configured credentials.
func (e *Engine) relogin() bool {
	if e.cfg.Username == "" {
		logger.Warn("Token rejected and no credentials configured")
		return false
	}

	tok, err := e.client.Login(e.cfg.Username, e.cfg.Password)
	if err != nil {
		logger.Error("Re-authentication failed",
			logger.Username(e.cfg.Username),
			logger.Err(err))
		return false
	}

	e.client.SetToken(tok.AccessToken)
	logger.Info("Re-authenticated", logger.Username(e.cfg.Username))
	return true
}

// housekeep prunes device state that no longer earns its disk space.
func (e *Engine) housekeep(ctx context.Context, now time.Time) {
	pruned := 0

	if n, err := e.store.PruneSynced(ctx, now.Add(-e.cfg.RetainSynced)); err != nil {
		logger.Warn("Failed to prune synced entries", logger.Err(err))
	} else {
		pruned += n
	}

	// Cache rows older than the pull window can no longer pair.
	if n, err := e.store.PruneCache(ctx, now.Add(-e.cfg.PullLookback)); err != nil {
		logger.Warn("Failed to prune passage cache", logger.Err(err))
	} else {
		pruned += n
	}

	if pruned > 0 {
		logger.Debug("Pruned device store", logger.Count(pruned))
		if err := e.store.GC(); err != nil {
			logger.Debug("Value log GC skipped", logger.Err(err))
		}
	}
}

func (e *Engine) report(ctx context.Context, result *CycleResult, elapsed time.Duration) {
	if e.metrics != nil {
		e.metrics.ObserveCycle(*result, elapsed)
		if counts, err := e.store.QueueCounts(ctx); err == nil {
			for _, st := range []store.SyncStatus{
				store.StatusPending,
				store.StatusInFlight,
				store.StatusSynced,
				store.StatusFailed,
			} {
				e.metrics.SetQueueDepth(string(st), counts[st])
			}
		}
	}

	if result.Pushed+result.Failed+result.Pulled+result.SMSSent > 0 || !result.Online {
		logger.Info("Sync pass finished",
			"pushed", result.Pushed,
			"retried", result.Retried,
			"failed", result.Failed,
			"pulled", result.Pulled,
			"sms", result.SMSSent,
			"online", result.Online,
			"elapsed", elapsed)
	} else {
		logger.Debug("Sync pass idle", "elapsed", elapsed)
	}
}
