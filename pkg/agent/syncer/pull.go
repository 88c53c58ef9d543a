package syncer

import (
	"context"
	"time"

	"github.com/gatewatch/gatewatch/internal/logger"
	"github.com/gatewatch/gatewatch/pkg/agent/store"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
)

// pull refreshes the cache of unmatched opposite-checkpost passages. The
// server scopes the result to the caller's segment from the token.
func (e *Engine) pull(ctx context.Context, now time.Time, result *CycleResult, reauthed *bool) {
	cutoff := now.Add(-e.cfg.PullLookback)

	passages, err := e.client.PullPassages(cutoff, e.cfg.PullLimit)
	if err != nil {
		if apiErr, ok := apiclient.AsAPIError(err); ok && apiErr.IsUnauthorized() && !*reauthed {
			*reauthed = true
			if e.relogin() {
				passages, err = e.client.PullPassages(cutoff, e.cfg.PullLimit)
			}
		}
	}
	if err != nil {
		if _, ok := apiclient.AsAPIError(err); !ok {
			result.Online = false
		}
		logger.Warn("Pull failed", logger.Err(err))
		return
	}
	if len(passages) == 0 {
		return
	}

	cached := make([]*store.CachedRemotePassage, 0, len(passages))
	for i := range passages {
		cached = append(cached, remoteFromAPI(&passages[i]))
	}

	n, err := e.store.UpsertRemotePassages(ctx, cached)
	if err != nil {
		logger.Error("Failed to cache pulled passages", logger.Err(err))
		return
	}
	result.Pulled = n
	logger.Debug("Pulled opposite-checkpost passages", logger.Count(n))

	e.absorbPulled(ctx, passages)
}

// absorbPulled marks local queue entries synced when their passage shows
// up in a pull. Pulled rows are normally other devices' work, but one that
// carries a local client_id proves the server already has that passage,
// however it got there.
func (e *Engine) absorbPulled(ctx context.Context, passages []apiclient.Passage) {
	for i := range passages {
		clientID := passages[i].ClientID
		if clientID == "" {
			continue
		}

		entry, err := e.store.GetQueueEntry(ctx, clientID)
		if err != nil || entry.Status == store.StatusSynced {
			continue
		}

		at := time.Now().UTC()
		if _, err := e.store.UpdateQueueEntry(ctx, clientID, func(q *store.SyncQueueEntry) {
			q.Status = store.StatusSynced
			q.LastAttemptAt = &at
			q.LastError = ""
		}); err != nil {
			continue
		}
		logger.Info("Local passage confirmed via pull", logger.ClientID(clientID))
	}
}

// remoteFromAPI converts a wire passage into its cached form. CachedAt is
// stamped by the store on upsert.
func remoteFromAPI(p *apiclient.Passage) *store.CachedRemotePassage {
	return &store.CachedRemotePassage{
		ID:               p.ID,
		ClientID:         p.ClientID,
		PlateNumber:      p.PlateNumber,
		VehicleType:      p.VehicleType,
		CheckpostID:      p.CheckpostID,
		SegmentID:        p.SegmentID,
		RecordedAt:       p.RecordedAt,
		MatchedPassageID: p.MatchedPassageID,
	}
}
