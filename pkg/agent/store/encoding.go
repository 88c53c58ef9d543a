package store

import (
	"encoding/json"
	"fmt"
)

// ============================================================================
// Database Key Namespace Design
// ============================================================================
//
// Badger is a flat key-value store, so each record type gets a prefixed
// namespace. Every passage-related key is keyed by the passage client_id,
// which is the one identifier that exists before the server has seen the
// row and never changes afterwards.
//
// Data Type              Prefix   Key Format            Value Type
// ==========================================================================
// Local Passage          "p:"     p:<client_id>         LocalPassage (JSON)
// Sync Queue Entry       "q:"     q:<client_id>         SyncQueueEntry (JSON)
// Cached Remote Passage  "r:"     r:<client_id>         CachedRemotePassage (JSON)
// Last Sync Instant      "meta:"  meta:last_sync        RFC 3339 (bytes)

const (
	prefixPassage = "p:"
	prefixQueue   = "q:"
	prefixRemote  = "r:"
	prefixMeta    = "meta:"
)

// keyPassage generates a key for a locally recorded passage: "p:<client_id>"
func keyPassage(clientID string) []byte {
	return []byte(prefixPassage + clientID)
}

// keyQueue generates a key for a sync queue entry: "q:<client_id>"
func keyQueue(clientID string) []byte {
	return []byte(prefixQueue + clientID)
}

// keyRemote generates a key for a cached remote passage: "r:<client_id>"
func keyRemote(clientID string) []byte {
	return []byte(prefixRemote + clientID)
}

// keyLastSync generates the key for the last sync instant: "meta:last_sync"
func keyLastSync() []byte {
	return []byte(prefixMeta + "last_sync")
}

// ============================================================================
// JSON Encoding/Decoding
// ============================================================================

func encodePassage(p *LocalPassage) ([]byte, error) {
	bytes, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode passage: %w", err)
	}
	return bytes, nil
}

func decodePassage(bytes []byte) (*LocalPassage, error) {
	var p LocalPassage
	if err := json.Unmarshal(bytes, &p); err != nil {
		return nil, fmt.Errorf("failed to decode passage: %w", err)
	}
	return &p, nil
}

func encodeQueueEntry(e *SyncQueueEntry) ([]byte, error) {
	bytes, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode queue entry: %w", err)
	}
	return bytes, nil
}

func decodeQueueEntry(bytes []byte) (*SyncQueueEntry, error) {
	var e SyncQueueEntry
	if err := json.Unmarshal(bytes, &e); err != nil {
		return nil, fmt.Errorf("failed to decode queue entry: %w", err)
	}
	return &e, nil
}

func encodeRemotePassage(p *CachedRemotePassage) ([]byte, error) {
	bytes, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode remote passage: %w", err)
	}
	return bytes, nil
}

func decodeRemotePassage(bytes []byte) (*CachedRemotePassage, error) {
	var p CachedRemotePassage
	if err := json.Unmarshal(bytes, &p); err != nil {
		return nil, fmt.Errorf("failed to decode remote passage: %w", err)
	}
	return &p, nil
}
