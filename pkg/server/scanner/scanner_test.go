package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gatewatch/gatewatch/pkg/server/store"
)

// fakeStore counts scan calls and returns a canned result.
type fakeStore struct {
	mu     sync.Mutex
	calls  int
	result *store.ScanResult
	err    error
	notify chan struct{}
}

func (f *fakeStore) ScanOverstays(ctx context.Context, now time.Time) (*store.ScanResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.notify != nil {
		select {
		case f.notify <- struct{}{}:
		default:
		}
	}

	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &store.ScanResult{}, nil
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeMetrics struct {
	mu      sync.Mutex
	scanned int
	created int
	calls   int
}

func (m *fakeMetrics) ObserveScan(scanned, created int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanned += scanned
	m.created += created
	m.calls++
}

func TestRunOnce(t *testing.T) {
	fake := &fakeStore{result: &store.ScanResult{Scanned: 3, Created: 2}}
	w := New(fake, time.Minute, nil)

	if err := w.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if fake.callCount() != 1 {
		t.Errorf("expected 1 scan, got %d", fake.callCount())
	}
}

func TestRunOnce_Error(t *testing.T) {
	scanErr := errors.New("store offline")
	fake := &fakeStore{err: scanErr}
	w := New(fake, time.Minute, nil)

	if err := w.RunOnce(context.Background()); !errors.Is(err, scanErr) {
		t.Errorf("expected store error, got %v", err)
	}
}

func TestRunOnce_Metrics(t *testing.T) {
	fake := &fakeStore{result: &store.ScanResult{Scanned: 5, Created: 1}}
	m := &fakeMetrics{}
	w := New(fake, time.Minute, m)

	if err := w.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls != 1 || m.scanned != 5 || m.created != 1 {
		t.Errorf("metrics not recorded: calls=%d scanned=%d created=%d", m.calls, m.scanned, m.created)
	}
}

func TestRunOnce_MetricsSkippedOnError(t *testing.T) {
	fake := &fakeStore{err: errors.New("store offline")}
	m := &fakeMetrics{}
	w := New(fake, time.Minute, m)

	_ = w.RunOnce(context.Background())

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls != 0 {
		t.Errorf("failed scan recorded metrics: %d calls", m.calls)
	}
}

func TestWorker_StartStop(t *testing.T) {
	fake := &fakeStore{notify: make(chan struct{}, 4)}
	w := New(fake, 10*time.Millisecond, nil)

	w.Start(context.Background())

	// Wait for at least two ticks.
	for i := 0; i < 2; i++ {
		select {
		case <-fake.notify:
		case <-time.After(2 * time.Second):
			t.Fatal("scan did not run within deadline")
		}
	}

	w.Stop(time.Second)

	// Loop is down: the call count must settle.
	settled := fake.callCount()
	time.Sleep(50 * time.Millisecond)
	if fake.callCount() != settled {
		t.Error("scans continued after Stop")
	}
}

func TestWorker_StopNotStarted(t *testing.T) {
	w := New(&fakeStore{}, time.Minute, nil)

	// Stop without starting - should not panic
	w.Stop(time.Second)
}

func TestWorker_DoubleStart(t *testing.T) {
	fake := &fakeStore{notify: make(chan struct{}, 4)}
	w := New(fake, 10*time.Millisecond, nil)

	ctx := context.Background()
	w.Start(ctx)
	w.Start(ctx) // second call must be a no-op

	select {
	case <-fake.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("scan did not run within deadline")
	}

	w.Stop(time.Second)
}

func TestWorker_ContextCancel(t *testing.T) {
	fake := &fakeStore{}
	w := New(fake, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()

	// The loop exits on its own; Stop must return promptly either way.
	done := make(chan struct{})
	go func() {
		w.Stop(time.Second)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after context cancellation")
	}
}

func TestNew_IntervalFallback(t *testing.T) {
	w := New(&fakeStore{}, 0, nil)
	if w.interval != DefaultInterval {
		t.Errorf("expected default interval, got %s", w.interval)
	}

	w = New(&fakeStore{}, -time.Minute, nil)
	if w.interval != DefaultInterval {
		t.Errorf("expected default interval for negative, got %s", w.interval)
	}
}
