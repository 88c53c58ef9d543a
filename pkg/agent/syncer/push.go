package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/gatewatch/gatewatch/internal/logger"
	"github.com/gatewatch/gatewatch/pkg/agent/store"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
)

// pushOutcome classifies how one delivery attempt resolved its entry.
type pushOutcome int

const (
	pushSynced  pushOutcome = iota // on the server, entry synced
	pushRetried                    // transient failure, entry back to pending
	pushFailed                     // terminal failure, entry parked
	pushSkipped                    // local store trouble, entry untouched
)

// push drains the pending queue oldest-first. A transport-level failure
// ends the phase: the device is offline, and entries never attempted keep
// their full budget for a pass that can actually reach the server.
func (e *Engine) push(ctx context.Context, result *CycleResult, reauthed *bool) {
	entries, err := e.store.ListQueueEntries(ctx, store.StatusPending)
	if err != nil {
		logger.Error("Failed to list pending entries", logger.Err(err))
		return
	}
	if len(entries) == 0 {
		return
	}

	logger.Debug("Pushing queued passages", logger.QueueDepth(len(entries)))

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return
		}

		outcome, offline := e.pushOne(ctx, entry, reauthed)
		switch outcome {
		case pushSynced:
			result.Pushed++
		case pushRetried:
			result.Retried++
		case pushFailed:
			result.Failed++
		}

		if offline {
			result.Online = false
			logger.Warn("Server unreachable, holding remaining entries",
				logger.QueueDepth(len(entries)-i-1))
			return
		}
	}
}

// pushOne delivers a single queue entry. The second return value reports
// whether the attempt failed below HTTP, meaning the device is offline.
func (e *Engine) pushOne(ctx context.Context, entry *store.SyncQueueEntry, reauthed *bool) (pushOutcome, bool) {
	clientID := entry.PassageClientID

	passage, err := e.store.GetPassage(ctx, clientID)
	if err != nil {
		// A queue entry without its passage body can never be delivered.
		e.markFailed(ctx, clientID, errors.New("local passage body missing"))
		return pushFailed, false
	}

	if _, err := e.store.UpdateQueueEntry(ctx, clientID, func(q *store.SyncQueueEntry) {
		q.Status = store.StatusInFlight
	}); err != nil {
		logger.Error("Failed to mark entry in flight",
			logger.ClientID(clientID), logger.Err(err))
		return pushSkipped, false
	}

	// The server derives the canonical plate itself, so send what the
	// ranger typed when we still have it.
	plate := passage.PlateNumber
	if passage.PlateNumberRaw != "" {
		plate = passage.PlateNumberRaw
	}

	resp, err := e.client.CreatePassage(&apiclient.CreatePassageRequest{
		ClientID:    passage.ClientID,
		PlateNumber: plate,
		VehicleType: passage.VehicleType,
		CheckpostID: passage.CheckpostID,
		RecordedAt:  passage.RecordedAt,
		PhotoRef:    passage.PhotoRef,
	})
	if err == nil {
		e.markSynced(ctx, clientID)
		if resp.Duplicate {
			logger.Debug("Passage was already on the server", logger.ClientID(clientID))
		} else {
			logger.Debug("Passage delivered", logger.ClientID(clientID))
		}
		return pushSynced, false
	}

	apiErr, ok := apiclient.AsAPIError(err)
	if !ok {
		// No HTTP answer at all.
		return e.recordTransient(ctx, clientID, err), true
	}

	switch {
	case apiErr.IsDuplicate():
		// A duplicate conflict means an earlier attempt landed.
		e.markSynced(ctx, clientID)
		return pushSynced, false

	case apiErr.IsUnauthorized():
		// Re-login once per pass so the rest of the queue goes out with a
		// fresh token. The rejected delivery still counts as an attempt.
		if !*reauthed {
			*reauthed = true
			e.relogin()
		}
		return e.recordTransient(ctx, clientID, apiErr), false

	case apiErr.IsValidationError() || apiErr.IsForbidden():
		// The server will never accept this entry as-is.
		e.markFailed(ctx, clientID, apiErr)
		return pushFailed, false

	case apiErr.IsRetryable():
		return e.recordTransient(ctx, clientID, apiErr), false

	default:
		// Remaining 4xx: retrying will not change the answer.
		e.markFailed(ctx, clientID, apiErr)
		return pushFailed, false
	}
}

// markSynced resolves an entry after the server confirmed the passage.
func (e *Engine) markSynced(ctx context.Context, clientID string) {
	at := time.Now().UTC()
	if _, err := e.store.UpdateQueueEntry(ctx, clientID, func(q *store.SyncQueueEntry) {
		q.Status = store.StatusSynced
		q.LastAttemptAt = &at
		q.LastError = ""
	}); err != nil {
		logger.Error("Failed to mark entry synced",
			logger.ClientID(clientID), logger.Err(err))
	}
}

// recordTransient books a failed attempt and requeues the entry, or parks
// it once the attempt budget is spent.
func (e *Engine) recordTransient(ctx context.Context, clientID string, cause error) pushOutcome {
	at := time.Now().UTC()
	entry, err := e.store.UpdateQueueEntry(ctx, clientID, func(q *store.SyncQueueEntry) {
		q.Attempts++
		q.LastAttemptAt = &at
		q.LastError = cause.Error()
		if q.Attempts >= e.cfg.MaxAttempts {
			q.Status = store.StatusFailed
		} else {
			q.Status = store.StatusPending
		}
	})
	if err != nil {
		logger.Error("Failed to record attempt",
			logger.ClientID(clientID), logger.Err(err))
		return pushSkipped
	}

	if entry.Status == store.StatusFailed {
		logger.Warn("Queue entry exhausted its attempts",
			logger.ClientID(clientID),
			logger.Attempt(entry.Attempts),
			logger.MaxAttempts(e.cfg.MaxAttempts),
			logger.Err(cause))
		return pushFailed
	}

	logger.Debug("Delivery failed, will retry",
		logger.ClientID(clientID),
		logger.Attempt(entry.Attempts),
		logger.Err(cause))
	return pushRetried
}

// markFailed parks an entry the server will never accept.
func (e *Engine) markFailed(ctx context.Context, clientID string, cause error) {
	at := time.Now().UTC()
	if _, err := e.store.UpdateQueueEntry(ctx, clientID, func(q *store.SyncQueueEntry) {
		q.Status = store.StatusFailed
		q.Attempts++
		q.LastAttemptAt = &at
		q.LastError = cause.Error()
	}); err != nil {
		logger.Error("Failed to park entry",
			logger.ClientID(clientID), logger.Err(err))
		return
	}

	logger.Warn("Server refused passage, giving up",
		logger.ClientID(clientID), logger.Err(cause))
}
