package store

import (
	"context"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/gatewatch/gatewatch/pkg/server/models"
)

// CachedRemotePassage is a passage pulled from the opposite checkpost of the
// assigned segment. The cache exists so the local matcher can pair a fresh
// recording against the other end without connectivity.
//
// LocalMatchClientID marks a row the local matcher has already paired with
// one of this device's passages; a claimed row is never offered as a
// candidate again. It is advisory device-local state, the server's matcher
// remains the source of truth.
type CachedRemotePassage struct {
	ID                 string    `json:"id"`
	ClientID           string    `json:"client_id"`
	PlateNumber        string    `json:"plate_number"`
	VehicleType        string    `json:"vehicle_type"`
	CheckpostID        string    `json:"checkpost_id"`
	SegmentID          string    `json:"segment_id"`
	RecordedAt         time.Time `json:"recorded_at"`
	MatchedPassageID   *string   `json:"matched_passage_id,omitempty"`
	LocalMatchClientID *string   `json:"local_match_client_id,omitempty"`
	CachedAt           time.Time `json:"cached_at"`
}

// UpsertRemotePassages stores a pulled batch in one transaction, refreshing
// cached_at on rows the cache already holds. A re-pulled row overwrites the
// stored copy except for the local-match claim, which survives refreshes.
func (s *Store) UpsertRemotePassages(ctx context.Context, passages []*CachedRemotePassage) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(passages) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	count := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, p := range passages {
			if p.CachedAt.IsZero() {
				p.CachedAt = now
			}

			item, err := txn.Get(keyRemote(p.ClientID))
			if err == nil {
				err = item.Value(func(val []byte) error {
					existing, decErr := decodeRemotePassage(val)
					if decErr != nil {
						return decErr
					}
					if existing.LocalMatchClientID != nil {
						p.LocalMatchClientID = existing.LocalMatchClientID
					}
					return nil
				})
				if err != nil {
					return err
				}
			} else if err != badger.ErrKeyNotFound {
				return err
			}

			bytes, err := encodeRemotePassage(p)
			if err != nil {
				return err
			}
			if err := txn.Set(keyRemote(p.ClientID), bytes); err != nil {
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

// GetRemotePassage returns a cached remote passage by client_id.
func (s *Store) GetRemotePassage(ctx context.Context, clientID string) (*CachedRemotePassage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var p *CachedRemotePassage
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyRemote(clientID))
		if err == badger.ErrKeyNotFound {
			return models.ErrPassageNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var decErr error
			p, decErr = decodeRemotePassage(val)
			return decErr
		})
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FindMatchCandidate returns the best cached pairing candidate for a local
// passage: same plate and segment, a different checkpost, not matched
// server-side, not already claimed locally. Most recent recorded_at wins,
// equal instants tie-break on id. Returns (nil, nil) when no row qualifies;
// an empty cache is the normal offline state, not an error.
func (s *Store) FindMatchCandidate(ctx context.Context, plateNumber, segmentID, excludeCheckpostID string) (*CachedRemotePassage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var best *CachedRemotePassage
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(prefixRemote)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				p, err := decodeRemotePassage(val)
				if err != nil {
					return err
				}
				if p.PlateNumber != plateNumber || p.SegmentID != segmentID {
					return nil
				}
				if p.CheckpostID == excludeCheckpostID {
					return nil
				}
				if p.MatchedPassageID != nil || p.LocalMatchClientID != nil {
					return nil
				}
				if best == nil ||
					p.RecordedAt.After(best.RecordedAt) ||
					(p.RecordedAt.Equal(best.RecordedAt) && p.ID > best.ID) {
					best = p
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
	return best, nil
}

// MarkRemoteMatched records that the local matcher paired a cached row with
// the given local passage.
func (s *Store) MarkRemoteMatched(ctx context.Context, remoteClientID, localClientID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(keyRemote(remoteClientID))
		if err == badger.ErrKeyNotFound {
			return models.ErrPassageNotFound
		}
		if err != nil {
			return err
		}

		var p *CachedRemotePassage
		err = item.Value(func(val []byte) error {
			var decErr error
			p, decErr = decodeRemotePassage(val)
			return decErr
		})
		if err != nil {
			return err
		}

		p.LocalMatchClientID = &localClientID
		bytes, err := encodeRemotePassage(p)
		if err != nil {
			return err
		}
		return txn.Set(keyRemote(remoteClientID), bytes)
	})
}

// PruneCache deletes cached rows recorded before the cutoff and returns how
// many were removed. Rows older than the pull lookback can no longer pair
// with anything the device will record, so keeping them only costs space.
func (s *Store) PruneCache(ctx context.Context, recordedBefore time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		prefix := []byte(prefixRemote)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		var prune []string
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				p, err := decodeRemotePassage(val)
				if err != nil {
					return err
				}
				if p.RecordedAt.Before(recordedBefore) {
					prune = append(prune, p.ClientID)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}

		for _, clientID := range prune {
			if err := txn.Delete(keyRemote(clientID)); err != nil {
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
