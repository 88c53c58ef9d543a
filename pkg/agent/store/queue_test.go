//go:build integration

package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestUpdateQueueEntry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().UTC()
	if err := s.RecordPassage(ctx, testPassage(1, now)); err != nil {
		t.Fatalf("RecordPassage failed: %v", err)
	}

	attemptAt := now.Add(30 * time.Second)
	updated, err := s.UpdateQueueEntry(ctx, "client-001", func(e *SyncQueueEntry) {
		e.Status = StatusPending
		e.Attempts++
		e.LastAttemptAt = &attemptAt
		e.LastError = "connection refused"
	})
	if err != nil {
		t.Fatalf("UpdateQueueEntry failed: %v", err)
	}
	if updated.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", updated.Attempts)
	}

	entry, err := s.GetQueueEntry(ctx, "client-001")
	if err != nil {
		t.Fatalf("GetQueueEntry failed: %v", err)
	}
	if entry.Attempts != 1 {
		t.Errorf("expected persisted attempts 1, got %d", entry.Attempts)
	}
	if entry.LastError != "connection refused" {
		t.Errorf("expected last error persisted, got %q", entry.LastError)
	}
	if entry.LastAttemptAt == nil || !entry.LastAttemptAt.Equal(attemptAt) {
		t.Errorf("expected last attempt at %v, got %v", attemptAt, entry.LastAttemptAt)
	}
}

func TestUpdateQueueEntry_NotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.UpdateQueueEntry(ctx, "missing", func(e *SyncQueueEntry) {})
	if !errors.Is(err, ErrQueueEntryNotFound) {
		t.Errorf("expected ErrQueueEntryNotFound, got %v", err)
	}
}

func TestListQueueEntries_FIFO(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	// Insert out of chronological order; listing must come back FIFO.
	for _, n := range []int{2, 0, 1} {
		if err := s.RecordPassage(ctx, testPassage(n, base.Add(time.Duration(n)*time.Minute))); err != nil {
			t.Fatalf("RecordPassage failed: %v", err)
		}
	}

	entries, err := s.ListQueueEntries(ctx, StatusPending)
	if err != nil {
		t.Fatalf("ListQueueEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"client-000", "client-001", "client-002"} {
		if entries[i].PassageClientID != want {
			t.Errorf("entry %d: expected %s, got %s", i, want, entries[i].PassageClientID)
		}
	}
}

func TestListQueueEntries_StatusFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		if err := s.RecordPassage(ctx, testPassage(i, now)); err != nil {
			t.Fatalf("RecordPassage failed: %v", err)
		}
	}
	if _, err := s.UpdateQueueEntry(ctx, "client-001", func(e *SyncQueueEntry) {
		e.Status = StatusSynced
	}); err != nil {
		t.Fatalf("UpdateQueueEntry failed: %v", err)
	}
	if _, err := s.UpdateQueueEntry(ctx, "client-002", func(e *SyncQueueEntry) {
		e.Status = StatusFailed
	}); err != nil {
		t.Fatalf("UpdateQueueEntry failed: %v", err)
	}

	pending, err := s.ListQueueEntries(ctx, StatusPending)
	if err != nil {
		t.Fatalf("ListQueueEntries failed: %v", err)
	}
	if len(pending) != 1 || pending[0].PassageClientID != "client-000" {
		t.Errorf("expected only client-000 pending, got %v", pending)
	}

	// pending+failed is the SMS fallback selection.
	eligible, err := s.ListQueueEntries(ctx, StatusPending, StatusFailed)
	if err != nil {
		t.Fatalf("ListQueueEntries failed: %v", err)
	}
	if len(eligible) != 2 {
		t.Errorf("expected 2 pending+failed entries, got %d", len(eligible))
	}

	all, err := s.ListQueueEntries(ctx)
	if err != nil {
		t.Fatalf("ListQueueEntries failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 entries without filter, got %d", len(all))
	}
}

func TestQueueCounts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().UTC()
	for i := 0; i < 4; i++ {
		if err := s.RecordPassage(ctx, testPassage(i, now)); err != nil {
			t.Fatalf("RecordPassage failed: %v", err)
		}
	}
	for id, status := range map[string]SyncStatus{
		"client-001": StatusInFlight,
		"client-002": StatusSynced,
		"client-003": StatusFailed,
	} {
		if _, err := s.UpdateQueueEntry(ctx, id, func(e *SyncQueueEntry) {
			e.Status = status
		}); err != nil {
			t.Fatalf("UpdateQueueEntry failed: %v", err)
		}
	}

	counts, err := s.QueueCounts(ctx)
	if err != nil {
		t.Fatalf("QueueCounts failed: %v", err)
	}
	for status, want := range map[SyncStatus]int{
		StatusPending:  1,
		StatusInFlight: 1,
		StatusSynced:   1,
		StatusFailed:   1,
	} {
		if counts[status] != want {
			t.Errorf("expected %d %s entries, got %d", want, status, counts[status])
		}
	}
}

func TestResetInFlight(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		if err := s.RecordPassage(ctx, testPassage(i, now)); err != nil {
			t.Fatalf("RecordPassage failed: %v", err)
		}
	}
	for _, id := range []string{"client-000", "client-001"} {
		if _, err := s.UpdateQueueEntry(ctx, id, func(e *SyncQueueEntry) {
			e.Status = StatusInFlight
		}); err != nil {
			t.Fatalf("UpdateQueueEntry failed: %v", err)
		}
	}

	reverted, err := s.ResetInFlight(ctx)
	if err != nil {
		t.Fatalf("ResetInFlight failed: %v", err)
	}
	if reverted != 2 {
		t.Errorf("expected 2 reverted entries, got %d", reverted)
	}

	counts, err := s.QueueCounts(ctx)
	if err != nil {
		t.Fatalf("QueueCounts failed: %v", err)
	}
	if counts[StatusPending] != 3 {
		t.Errorf("expected all 3 entries pending, got %d", counts[StatusPending])
	}
	if counts[StatusInFlight] != 0 {
		t.Errorf("expected no in_flight entries, got %d", counts[StatusInFlight])
	}
}

func TestPruneSynced(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	cutoff := base.Add(24 * time.Hour)

	// Old synced: pruned. Old pending: kept. Fresh synced: kept.
	for n, at := range map[int]time.Time{
		0: base,
		1: base,
		2: cutoff.Add(time.Hour),
	} {
		if err := s.RecordPassage(ctx, testPassage(n, at)); err != nil {
			t.Fatalf("RecordPassage failed: %v", err)
		}
	}
	for _, id := range []string{"client-000", "client-002"} {
		if _, err := s.UpdateQueueEntry(ctx, id, func(e *SyncQueueEntry) {
			e.Status = StatusSynced
		}); err != nil {
			t.Fatalf("UpdateQueueEntry failed: %v", err)
		}
	}

	pruned, err := s.PruneSynced(ctx, cutoff)
	if err != nil {
		t.Fatalf("PruneSynced failed: %v", err)
	}
	if pruned != 1 {
		t.Errorf("expected 1 pruned entry, got %d", pruned)
	}

	if _, err := s.GetQueueEntry(ctx, "client-000"); !errors.Is(err, ErrQueueEntryNotFound) {
		t.Errorf("expected pruned queue entry gone, got %v", err)
	}
	if _, err := s.GetPassage(ctx, "client-000"); err == nil {
		t.Error("expected pruned passage gone")
	}
	if _, err := s.GetQueueEntry(ctx, "client-001"); err != nil {
		t.Errorf("expected old pending entry kept: %v", err)
	}
	if _, err := s.GetQueueEntry(ctx, "client-002"); err != nil {
		t.Errorf("expected fresh synced entry kept: %v", err)
	}
}
