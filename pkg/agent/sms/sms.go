// Package sms carries passages over the device SMS channel when HTTP sync
// cannot reach the server. Delivery is at-least-once: a message may go out
// twice across a crash, and the server's deterministic intake id absorbs
// the repeat.
package sms

import (
	"context"
	"time"

	"github.com/gatewatch/gatewatch/internal/logger"
	"github.com/gatewatch/gatewatch/internal/protocol/smsv1"
	"github.com/gatewatch/gatewatch/pkg/agent/store"
	"github.com/gatewatch/gatewatch/pkg/server/models"
)

// DefaultMinAge is how long an entry waits for HTTP delivery before the
// fallback picks it up.
const DefaultMinAge = 5 * time.Minute

// Sender hands an encoded message to the device SMS channel.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// Config identifies this device to the SMS channel.
type Config struct {
	// Gateway is the server-side inbound SMS number.
	Gateway string

	// CheckpostCode is this checkpost's short code, e.g. "MUG".
	CheckpostCode string

	// PhoneSuffix is the trailing digits of the ranger's SIM. The server
	// uses it to attribute the message when the sender number arrives
	// masked or reformatted.
	PhoneSuffix string

	// MinAge overrides DefaultMinAge when positive.
	MinAge time.Duration
}

// Fallback selects queue entries that have waited long enough and sends
// them as V1 messages. The sync engine consults it only when a pass ran
// without connectivity.
type Fallback struct {
	store  *store.Store
	sender Sender
	cfg    Config
}

// New creates a fallback over the given store and sender.
func New(st *store.Store, sender Sender, cfg Config) *Fallback {
	if cfg.MinAge <= 0 {
		cfg.MinAge = DefaultMinAge
	}
	return &Fallback{
		store:  st,
		sender: sender,
		cfg:    cfg,
	}
}

// Flush sends every eligible entry and returns how many were handed off.
// Eligible means pending or failed, older than the configured age, and not
// already sent. A send failure skips the entry; the next offline pass
// tries it again.
func (f *Fallback) Flush(ctx context.Context, now time.Time) (int, error) {
	entries, err := f.store.ListQueueEntries(ctx, store.StatusPending, store.StatusFailed)
	if err != nil {
		return 0, err
	}

	cutoff := now.Add(-f.cfg.MinAge)
	sent := 0
	for _, entry := range entries {
		if entry.SMSSent || !entry.CreatedAt.Before(cutoff) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		if err := f.sendOne(ctx, entry); err != nil {
			logger.Error("SMS fallback send failed",
				logger.ClientID(entry.PassageClientID),
				logger.Err(err))
			continue
		}
		sent++
	}
	return sent, nil
}

func (f *Fallback) sendOne(ctx context.Context, entry *store.SyncQueueEntry) error {
	passage, err := f.store.GetPassage(ctx, entry.PassageClientID)
	if err != nil {
		return err
	}

	body, err := smsv1.Encode(&smsv1.Message{
		CheckpostCode:     f.cfg.CheckpostCode,
		PlateNumber:       passage.PlateNumber,
		VehicleType:       models.VehicleType(passage.VehicleType),
		RecordedAt:        passage.RecordedAt,
		RangerPhoneSuffix: f.cfg.PhoneSuffix,
	})
	if err != nil {
		return err
	}

	if err := f.sender.Send(ctx, f.cfg.Gateway, body); err != nil {
		return err
	}

	// sms_sent flips only after the handoff. A crash in between means a
	// duplicate message, never a silently dropped one.
	if _, err := f.store.UpdateQueueEntry(ctx, entry.PassageClientID, func(q *store.SyncQueueEntry) {
		q.SMSSent = true
	}); err != nil {
		return err
	}

	logger.Info("Passage handed to SMS channel",
		logger.ClientID(entry.PassageClientID),
		logger.Plate(passage.PlateNumber))
	return nil
}
