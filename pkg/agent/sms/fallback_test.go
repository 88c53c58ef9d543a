//go:build integration

package sms

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gatewatch/gatewatch/internal/protocol/smsv1"
	"github.com/gatewatch/gatewatch/pkg/agent/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.Open(store.Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return st
}

func seedEntry(t *testing.T, st *store.Store, n int, createdAt time.Time, status store.SyncStatus) *store.LocalPassage {
	t.Helper()

	p := &store.LocalPassage{
		ClientID:    fmt.Sprintf("client-%03d", n),
		PlateNumber: "BA12PA3456",
		VehicleType: "bus",
		CheckpostID: "cp-mugling",
		SegmentID:   "seg-1",
		RecordedAt:  createdAt,
		CreatedAt:   createdAt,
	}
	if err := st.RecordPassage(context.Background(), p); err != nil {
		t.Fatalf("RecordPassage failed: %v", err)
	}
	if status != store.StatusPending {
		if _, err := st.UpdateQueueEntry(context.Background(), p.ClientID, func(q *store.SyncQueueEntry) {
			q.Status = status
		}); err != nil {
			t.Fatalf("UpdateQueueEntry failed: %v", err)
		}
	}
	return p
}

type recordingSender struct {
	to     []string
	bodies []string
	err    error
}

func (s *recordingSender) Send(ctx context.Context, to, body string) error {
	if s.err != nil {
		return s.err
	}
	s.to = append(s.to, to)
	s.bodies = append(s.bodies, body)
	return nil
}

func testConfig() Config {
	return Config{
		Gateway:       "+9779800000099",
		CheckpostCode: "MUG",
		PhoneSuffix:   "4567",
	}
}

func TestFlush_SendsEligibleEntries(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()

	p1 := seedEntry(t, st, 0, now.Add(-10*time.Minute), store.StatusPending)
	p2 := seedEntry(t, st, 1, now.Add(-8*time.Minute), store.StatusFailed)

	sender := &recordingSender{}
	f := New(st, sender, testConfig())

	sent, err := f.Flush(context.Background(), now)
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if sent != 2 {
		t.Fatalf("expected 2 sent, got %d", sent)
	}
	for _, to := range sender.to {
		if to != "+9779800000099" {
			t.Errorf("expected gateway recipient, got %s", to)
		}
	}

	// The wire body must decode back to the recorded passage.
	msg, err := smsv1.Decode(sender.bodies[0], now, 5*time.Minute)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if msg.CheckpostCode != "MUG" || msg.PlateNumber != "BA12PA3456" {
		t.Errorf("unexpected decoded message: %+v", msg)
	}
	if msg.RangerPhoneSuffix != "4567" {
		t.Errorf("expected phone suffix 4567, got %s", msg.RangerPhoneSuffix)
	}
	if !msg.RecordedAt.Equal(p1.RecordedAt.Truncate(time.Second)) {
		t.Errorf("expected recorded-at %s, got %s", p1.RecordedAt, msg.RecordedAt)
	}

	for _, id := range []string{p1.ClientID, p2.ClientID} {
		entry, err := st.GetQueueEntry(context.Background(), id)
		if err != nil {
			t.Fatalf("GetQueueEntry failed: %v", err)
		}
		if !entry.SMSSent {
			t.Errorf("entry %s: expected sms_sent", id)
		}
	}
}

func TestFlush_SkipsFreshEntries(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()

	// Still inside the HTTP grace period.
	p := seedEntry(t, st, 0, now.Add(-time.Minute), store.StatusPending)

	sender := &recordingSender{}
	f := New(st, sender, testConfig())

	sent, err := f.Flush(context.Background(), now)
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if sent != 0 || len(sender.bodies) != 0 {
		t.Errorf("expected no sends, got %d", sent)
	}

	entry, err := st.GetQueueEntry(context.Background(), p.ClientID)
	if err != nil {
		t.Fatalf("GetQueueEntry failed: %v", err)
	}
	if entry.SMSSent {
		t.Error("fresh entry must not be marked sent")
	}
}

func TestFlush_SkipsAlreadySent(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()

	p := seedEntry(t, st, 0, now.Add(-10*time.Minute), store.StatusPending)
	if _, err := st.UpdateQueueEntry(context.Background(), p.ClientID, func(q *store.SyncQueueEntry) {
		q.SMSSent = true
	}); err != nil {
		t.Fatalf("UpdateQueueEntry failed: %v", err)
	}

	sender := &recordingSender{}
	f := New(st, sender, testConfig())

	sent, err := f.Flush(context.Background(), now)
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if sent != 0 {
		t.Errorf("expected no sends, got %d", sent)
	}
}

func TestFlush_SkipsSyncedEntries(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()

	seedEntry(t, st, 0, now.Add(-10*time.Minute), store.StatusSynced)

	sender := &recordingSender{}
	f := New(st, sender, testConfig())

	sent, err := f.Flush(context.Background(), now)
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if sent != 0 {
		t.Errorf("expected no sends, got %d", sent)
	}
}

func TestFlush_EncodeFailureSkipsEntry(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()

	// No vehicle code exists for an empty type; this entry cannot encode.
	bad := &store.LocalPassage{
		ClientID:    "client-bad",
		PlateNumber: "BA12PA3456",
		VehicleType: "",
		CheckpostID: "cp-mugling",
		SegmentID:   "seg-1",
		RecordedAt:  now.Add(-10 * time.Minute),
		CreatedAt:   now.Add(-10 * time.Minute),
	}
	if err := st.RecordPassage(context.Background(), bad); err != nil {
		t.Fatalf("RecordPassage failed: %v", err)
	}
	good := seedEntry(t, st, 1, now.Add(-9*time.Minute), store.StatusPending)

	sender := &recordingSender{}
	f := New(st, sender, testConfig())

	sent, err := f.Flush(context.Background(), now)
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if sent != 1 {
		t.Fatalf("expected 1 sent, got %d", sent)
	}

	badEntry, err := st.GetQueueEntry(context.Background(), bad.ClientID)
	if err != nil {
		t.Fatalf("GetQueueEntry failed: %v", err)
	}
	if badEntry.SMSSent {
		t.Error("unencodable entry must not be marked sent")
	}
	goodEntry, err := st.GetQueueEntry(context.Background(), good.ClientID)
	if err != nil {
		t.Fatalf("GetQueueEntry failed: %v", err)
	}
	if !goodEntry.SMSSent {
		t.Error("expected the valid entry to be sent")
	}
}

func TestFlush_SenderFailureKeepsEntry(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()

	p := seedEntry(t, st, 0, now.Add(-10*time.Minute), store.StatusPending)

	sender := &recordingSender{err: errors.New("modem busy")}
	f := New(st, sender, testConfig())

	sent, err := f.Flush(context.Background(), now)
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if sent != 0 {
		t.Errorf("expected no sends, got %d", sent)
	}

	entry, err := st.GetQueueEntry(context.Background(), p.ClientID)
	if err != nil {
		t.Fatalf("GetQueueEntry failed: %v", err)
	}
	if entry.SMSSent {
		t.Error("entry must stay unsent after a sender failure")
	}
}
