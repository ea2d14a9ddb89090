// Package slot manages the fixed set of local save slots and the
// save/load pipeline that runs over them.
package slot

import (
	"context"
	"errors"
)

// Common store errors.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrStoreClosed    = errors.New("slot store closed")
)

// Store is the persistence backend for save records.
//
// This abstraction allows the slot manager to run over different
// backends (Badger, SQLite, in-memory) without code changes.
//
// Implementation requirements:
//   - Thread-safe: concurrent reads/writes must be safe
//   - Atomic per key: a Put either fully replaces the value or leaves
//     the previous one intact
type Store interface {
	// Put stores a value under a key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Get retrieves a value by key.
	// Returns ErrRecordNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Scan iterates over keys with a given prefix.
	// Callback returns false to stop iteration.
	Scan(ctx context.Context, prefix string, fn func(key string, value []byte) bool) error

	// Close gracefully shuts down the store.
	Close() error
}
