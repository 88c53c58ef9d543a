// Package scanner drives the periodic overstay scan. Matching at intake
// catches vehicles that reached the far checkpost; the scanner catches the
// ones that never did.
package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/gatewatch/gatewatch/internal/logger"
	"github.com/gatewatch/gatewatch/internal/telemetry"
	"github.com/gatewatch/gatewatch/pkg/server/store"
)

// DefaultInterval is how often the scan runs unless configured otherwise.
// A vehicle is flagged at most one interval after its travel deadline.
const DefaultInterval = 15 * time.Minute

// OverstayStore is the slice of the server store the worker drives.
type OverstayStore interface {
	ScanOverstays(ctx context.Context, now time.Time) (*store.ScanResult, error)
}

// Metrics records scan outcomes. A nil Metrics is valid and records nothing.
type Metrics interface {
	ObserveScan(scanned, created int, duration time.Duration)
}

// Worker runs the overstay scan on a wall-clock interval.
//
// One logical instance per deployment is enough. Running more is safe (alert
// uniqueness absorbs the overlap) but wasteful.
type Worker struct {
	store    OverstayStore
	metrics  Metrics
	interval time.Duration

	mu        sync.Mutex
	started   bool
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// New creates a worker. An interval of zero or less falls back to
// DefaultInterval.
func New(s OverstayStore, interval time.Duration, m Metrics) *Worker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Worker{
		store:     s,
		metrics:   m,
		interval:  interval,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Start begins the scan loop in a goroutine. The first pass runs one full
// interval after start; anything younger is still inside its travel window.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	logger.Info("Starting overstay scanner", "interval", w.interval)

	go func() {
		defer close(w.stoppedCh)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := w.RunOnce(ctx); err != nil {
					logger.Error("Overstay scan failed", "error", err)
				}
			case <-w.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the loop, waiting up to timeout for an in-flight pass to finish.
func (w *Worker) Stop(timeout time.Duration) {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.stoppedCh:
		logger.Info("Overstay scanner stopped")
	case <-time.After(timeout):
		logger.Warn("Overstay scanner stop timed out")
	}
}

// RunOnce performs a single scan pass against the current wall clock.
func (w *Worker) RunOnce(ctx context.Context) error {
	started := time.Now()

	ctx, span := telemetry.StartScanSpan(ctx)
	defer span.End()

	result, err := w.store.ScanOverstays(ctx, started)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return err
	}
	span.SetAttributes(
		telemetry.ScanOpenPassages(result.Scanned),
		telemetry.ScanAlerts(result.Created),
	)

	elapsed := time.Since(started)
	if w.metrics != nil {
		w.metrics.ObserveScan(result.Scanned, result.Created, elapsed)
	}

	if result.Created > 0 {
		logger.Info("Overstay scan flagged vehicles",
			"scanned", result.Scanned,
			"alerts", result.Created,
			"elapsed", elapsed)
	} else {
		logger.Debug("Overstay scan clean",
			"scanned", result.Scanned,
			"elapsed", elapsed)
	}
	return nil
}
