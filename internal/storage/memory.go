package storage

import (
	"bytes"
	"context"
	"sort"
	"sync"
)

// MemoryEngine implements Engine with an in-process map. It is used by the
// tests and by local development runs that don't need durability.
type MemoryEngine struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemoryEngine creates an empty in-memory engine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{data: make(map[string][]byte)}
}

// Get retrieves a value by key.
func (e *MemoryEngine) Get(ctx context.Context, key []byte) ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, ErrClosed
	}
	value, ok := e.data[string(key)]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set stores a key-value pair.
func (e *MemoryEngine) Set(ctx context.Context, key, value []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.data[string(key)] = append([]byte(nil), value...)
	return nil
}

// Update performs an atomic read-modify-write of a single key.
func (e *MemoryEngine) Update(ctx context.Context, key []byte, fn func(old []byte) ([]byte, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	old, ok := e.data[string(key)]
	if !ok {
		return ErrKeyNotFound
	}
	next, err := fn(append([]byte(nil), old...))
	if err != nil {
		return err
	}
	e.data[string(key)] = next
	return nil
}

// Delete removes a key. Deleting an absent key is a no-op.
func (e *MemoryEngine) Delete(ctx context.Context, key []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	delete(e.data, string(key))
	return nil
}

// Scan iterates over keys with the given prefix in key order.
func (e *MemoryEngine) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrClosed
	}

	keys := make([]string, 0, len(e.data))
	for k := range e.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !fn([]byte(k), e.data[k]) {
			break
		}
	}
	return nil
}

// GC is a no-op for the in-memory engine.
func (e *MemoryEngine) GC(ctx context.Context) (uint64, error) {
	return 0, nil
}

// Stats returns storage statistics.
func (e *MemoryEngine) Stats(ctx context.Context) (Stats, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var size uint64
	for k, v := range e.data {
		size += uint64(len(k) + len(v))
	}
	return Stats{Keys: uint64(len(e.data)), SizeBytes: size}, nil
}

// Close marks the engine closed; further operations fail with ErrClosed.
func (e *MemoryEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
