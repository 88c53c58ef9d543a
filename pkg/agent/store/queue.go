package store

import (
	"context"
	"errors"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// ErrQueueEntryNotFound is returned when no queue entry exists for a
// client_id.
var ErrQueueEntryNotFound = errors.New("sync queue entry not found")

// SyncStatus is the lifecycle state of a queue entry.
type SyncStatus string

const (
	// StatusPending means the passage is waiting to be pushed.
	StatusPending SyncStatus = "pending"
	// StatusInFlight means a push attempt is underway. Entries found in
	// this state at startup belong to a crashed run and revert to pending.
	StatusInFlight SyncStatus = "in_flight"
	// StatusSynced means the server has acknowledged the passage, either
	// by creating it or by reporting it as an already-known client_id.
	StatusSynced SyncStatus = "synced"
	// StatusFailed is terminal: the attempt budget is exhausted or the
	// server refused the passage in a way retrying cannot fix.
	StatusFailed SyncStatus = "failed"
)

// SyncQueueEntry tracks one passage through the push state machine. The
// passage body lives under its own key; the entry carries only sync state.
type SyncQueueEntry struct {
	PassageClientID string     `json:"passage_client_id"`
	Status          SyncStatus `json:"status"`
	Attempts        int        `json:"attempts"`
	LastAttemptAt   *time.Time `json:"last_attempt_at,omitempty"`
	LastError       string     `json:"last_error,omitempty"`
	SMSSent         bool       `json:"sms_sent"`
	CreatedAt       time.Time  `json:"created_at"`
}

// GetQueueEntry returns the queue entry for a client_id.
func (s *Store) GetQueueEntry(ctx context.Context, clientID string) (*SyncQueueEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry *SyncQueueEntry
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		entry, err = getQueueEntryTx(txn, clientID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// getQueueEntryTx retrieves a queue entry within an existing transaction.
func getQueueEntryTx(txn *badger.Txn, clientID string) (*SyncQueueEntry, error) {
	item, err := txn.Get(keyQueue(clientID))
	if err == badger.ErrKeyNotFound {
		return nil, ErrQueueEntryNotFound
	}
	if err != nil {
		return nil, err
	}

	var entry *SyncQueueEntry
	err = item.Value(func(val []byte) error {
		var decErr error
		entry, decErr = decodeQueueEntry(val)
		return decErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateQueueEntry applies mutate to the entry in a single transaction and
// returns the stored result. The sync engine drives every status transition
// through here so a crash can never leave a half-written entry.
func (s *Store) UpdateQueueEntry(ctx context.Context, clientID string, mutate func(*SyncQueueEntry)) (*SyncQueueEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var updated *SyncQueueEntry
	err := s.db.Update(func(txn *badger.Txn) error {
		entry, err := getQueueEntryTx(txn, clientID)
		if err != nil {
			return err
		}

		mutate(entry)

		bytes, err := encodeQueueEntry(entry)
		if err != nil {
			return err
		}
		if err := txn.Set(keyQueue(clientID), bytes); err != nil {
			return err
		}
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListQueueEntries returns queue entries in FIFO order (created_at, then
// client_id for a stable order on equal instants). With no statuses given it
// returns every entry.
func (s *Store) ListQueueEntries(ctx context.Context, statuses ...SyncStatus) ([]*SyncQueueEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wanted := make(map[SyncStatus]bool, len(statuses))
	for _, st := range statuses {
		wanted[st] = true
	}

	var entries []*SyncQueueEntry
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(prefixQueue)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				entry, err := decodeQueueEntry(val)
				if err != nil {
					return err
				}
				if len(wanted) == 0 || wanted[entry.Status] {
					entries = append(entries, entry)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].PassageClientID < entries[j].PassageClientID
	})
	return entries, nil
}

// QueueCounts returns the number of entries per status.
func (s *Store) QueueCounts(ctx context.Context) (map[SyncStatus]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make(map[SyncStatus]int)
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(prefixQueue)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				entry, err := decodeQueueEntry(val)
				if err != nil {
					return err
				}
				counts[entry.Status]++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// ResetInFlight reverts every in_flight entry to pending and returns how
// many were reverted. Runs at engine start (crash recovery) and at shutdown
// (so the next run retries anything that was mid-push).
func (s *Store) ResetInFlight(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		prefix := []byte(prefixQueue)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		var stale []*SyncQueueEntry
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				entry, err := decodeQueueEntry(val)
				if err != nil {
					return err
				}
				if entry.Status == StatusInFlight {
					stale = append(stale, entry)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}

		for _, entry := range stale {
			entry.Status = StatusPending
			bytes, err := encodeQueueEntry(entry)
			if err != nil {
				return err
			}
			if err := txn.Set(keyQueue(entry.PassageClientID), bytes); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// PruneSynced deletes synced queue entries created before the cutoff,
// together with their passage bodies. Synced rows are safe on the server;
// keeping them forever would eventually fill the device.
func (s *Store) PruneSynced(ctx context.Context, olderThan time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		prefix := []byte(prefixQueue)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		var prune []string
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				entry, err := decodeQueueEntry(val)
				if err != nil {
					return err
				}
				if entry.Status == StatusSynced && entry.CreatedAt.Before(olderThan) {
					prune = append(prune, entry.PassageClientID)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}

		for _, clientID := range prune {
			if err := txn.Delete(keyQueue(clientID)); err != nil {
				return err
			}
			if err := txn.Delete(keyPassage(clientID)); err != nil && err != badger.ErrKeyNotFound {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
