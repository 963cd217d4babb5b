// Package storage provides the partitioned key-value store backing the
// todo service. Partitions are key prefixes ("users/", "todos/<owner>/");
// records are opaque byte slices to the engine.
package storage

import (
	"context"
	"errors"
)

// Common errors.
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("storage engine closed")
)

// Engine is the key-value store contract. Implementations must provide
// atomic single-key operations; nothing in the service layer spans more
// than one key per call.
type Engine interface {
	// Get retrieves a value by key. Returns ErrKeyNotFound if the key
	// does not exist.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set stores a full record under key, replacing any existing value.
	Set(ctx context.Context, key, value []byte) error

	// Update performs an atomic read-modify-write of a single key. fn
	// receives the current value and returns the replacement. If the key
	// does not exist, Update fails with ErrKeyNotFound and fn is not
	// called.
	Update(ctx context.Context, key []byte, fn func(old []byte) ([]byte, error)) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key []byte) error

	// Scan iterates over keys with the given prefix in key order. The
	// callback returns false to stop iteration.
	Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error

	// GC reclaims space held by stale data. Engines without garbage to
	// collect return (0, nil).
	GC(ctx context.Context) (uint64, error)

	// Stats returns engine statistics.
	Stats(ctx context.Context) (Stats, error)

	// Close shuts the engine down.
	Close() error
}

// Stats contains storage engine statistics.
type Stats struct {
	// Keys is the number of live keys, or 0 if the engine cannot count
	// them cheaply.
	Keys uint64 `json:"keys"`

	// SizeBytes is the on-disk (or in-memory) footprint.
	SizeBytes uint64 `json:"size_bytes"`
}

// Key joins a partition prefix and key parts with "/" separators.
func Key(parts ...string) []byte {
	n := len(parts) - 1
	for _, p := range parts {
		n += len(p)
	}
	key := make([]byte, 0, n)
	for i, p := range parts {
		if i > 0 {
			key = append(key, '/')
		}
		key = append(key, p...)
	}
	return key
}
