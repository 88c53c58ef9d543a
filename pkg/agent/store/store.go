// Package store is rangerd's local database: every passage recorded at this
// checkpost, the outbound sync queue, and a cache of passages pulled from the
// opposite end of the segment. It is a Badger key-value store under the
// agent's data directory, sized for a field device, and all state survives
// power loss.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/gatewatch/gatewatch/internal/logger"
)

// Config holds the Badger tuning knobs the agent exposes.
type Config struct {
	// Dir is the directory holding the Badger database files.
	Dir string

	// CacheSize is the Badger block cache size in bytes. Zero keeps the
	// Badger default, which is oversized for a field device.
	CacheSize int64
}

// Store is the agent's local database. All methods are safe for concurrent
// use; Badger serializes conflicting writes internally.
type Store struct {
	db *badger.DB
}

// Open opens the agent database, creating it on first run.
func Open(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("store directory is required")
	}

	opts := badger.DefaultOptions(cfg.Dir).WithLogger(badgerLogger{})
	if cfg.CacheSize > 0 {
		opts = opts.WithBlockCacheSize(cfg.CacheSize)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open agent store at %s: %w", cfg.Dir, err)
	}

	return &Store{db: db}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// GC runs one value-log garbage collection round. Badger reports ErrNoRewrite
// when there is nothing worth rewriting; that is not a failure.
func (s *Store) GC() error {
	err := s.db.RunValueLogGC(0.5)
	if err == badger.ErrNoRewrite {
		return nil
	}
	return err
}

// LastSyncAt returns the instant of the last successful sync cycle, or the
// zero time if the agent has never completed one.
func (s *Store) LastSyncAt(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	var last time.Time
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyLastSync())
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			t, err := time.Parse(time.RFC3339Nano, string(val))
			if err != nil {
				return fmt.Errorf("failed to decode last sync time: %w", err)
			}
			last = t
			return nil
		})
	})
	if err != nil {
		return time.Time{}, err
	}
	return last, nil
}

// SetLastSyncAt records the completion of a sync cycle.
func (s *Store) SetLastSyncAt(ctx context.Context, t time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyLastSync(), []byte(t.UTC().Format(time.RFC3339Nano)))
	})
}

// badgerLogger adapts Badger's printf-style logger onto the package logger.
// Badger reports compaction chatter at INFO; that lands at DEBUG here so
// rangerd's own output stays readable on a terminal.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...any) {
	logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (badgerLogger) Warningf(format string, args ...any) {
	logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (badgerLogger) Infof(format string, args ...any) {
	logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (badgerLogger) Debugf(format string, args ...any) {
	logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}
