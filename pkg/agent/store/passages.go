package store

import (
	"context"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/gatewatch/gatewatch/pkg/server/models"
)

// LocalPassage is a passage recorded at this checkpost, written before any
// server round-trip. The client_id is minted at record time and is the
// identity the server deduplicates on, so replaying the same record over
// HTTP and SMS can never double-count.
type LocalPassage struct {
	ClientID       string    `json:"client_id"`
	PlateNumber    string    `json:"plate_number"`
	PlateNumberRaw string    `json:"plate_number_raw,omitempty"`
	VehicleType    string    `json:"vehicle_type"`
	CheckpostID    string    `json:"checkpost_id"`
	SegmentID      string    `json:"segment_id"`
	RecordedAt     time.Time `json:"recorded_at"`
	PhotoRef       string    `json:"photo_ref,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// RecordPassage stores a passage and enqueues it for sync in one
// transaction. Recording never waits on the network: the queue entry starts
// pending and the sync engine takes it from there.
func (s *Store) RecordPassage(ctx context.Context, p *LocalPassage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	passageBytes, err := encodePassage(p)
	if err != nil {
		return err
	}
	entryBytes, err := encodeQueueEntry(&SyncQueueEntry{
		PassageClientID: p.ClientID,
		Status:          StatusPending,
		CreatedAt:       p.CreatedAt,
	})
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(keyPassage(p.ClientID))
		if err == nil {
			return models.ErrDuplicatePassage
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		if err := txn.Set(keyPassage(p.ClientID), passageBytes); err != nil {
			return err
		}
		return txn.Set(keyQueue(p.ClientID), entryBytes)
	})
}

// GetPassage returns a locally recorded passage by client_id.
func (s *Store) GetPassage(ctx context.Context, clientID string) (*LocalPassage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var p *LocalPassage
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		p, err = getPassageTx(txn, clientID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// getPassageTx retrieves a passage within an existing transaction.
func getPassageTx(txn *badger.Txn, clientID string) (*LocalPassage, error) {
	item, err := txn.Get(keyPassage(clientID))
	if err == badger.ErrKeyNotFound {
		return nil, models.ErrPassageNotFound
	}
	if err != nil {
		return nil, err
	}

	var p *LocalPassage
	err = item.Value(func(val []byte) error {
		var decErr error
		p, decErr = decodePassage(val)
		return decErr
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CountPassages returns the number of locally recorded passages.
func (s *Store) CountPassages(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(prefixPassage)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
