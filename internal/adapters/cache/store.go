// Package cache provides process-local caching of derived records with a
// freshness window and a schema-version guard.
package cache

import (
	"context"
	"sync"
	"time"
)

// Entry is a cached value stamped with its write time and schema version.
type Entry[T any] struct {
	Value         T
	CachedAt      time.Time
	SchemaVersion int
}

// Store holds entries by key. Entries are replaced whole, never mutated.
type Store[T any] interface {
	// Get returns the entry stored under key.
	Get(ctx context.Context, key string) (Entry[T], bool)
	// Set stores e under key, overwriting any prior entry.
	Set(ctx context.Context, key string, e Entry[T])
	// Invalidate removes the entry stored under key.
	Invalidate(ctx context.Context, key string)
	// Len returns the number of stored entries.
	Len(ctx context.Context) int
}

// Memory is a map-backed Store safe for concurrent use.
type Memory[T any] struct {
	mu    sync.RWMutex
	items map[string]Entry[T]
}

// NewMemory creates an empty in-memory store.
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{items: make(map[string]Entry[T])}
}

// Get implements Store.Get.
func (m *Memory[T]) Get(_ context.Context, key string) (Entry[T], bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.items[key]
	return e, ok
}

// Set implements Store.Set.
func (m *Memory[T]) Set(_ context.Context, key string, e Entry[T]) {
	m.mu.Lock()
	m.items[key] = e
	m.mu.Unlock()
}

// Invalidate implements Store.Invalidate.
func (m *Memory[T]) Invalidate(_ context.Context, key string) {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
}

// Len implements Store.Len.
func (m *Memory[T]) Len(_ context.Context) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Noop is a Store that keeps nothing.
type Noop[T any] struct{}

// Get implements Store.Get.
func (Noop[T]) Get(context.Context, string) (Entry[T], bool) { return Entry[T]{}, false }

// Set implements Store.Set.
func (Noop[T]) Set(context.Context, string, Entry[T]) {}

// Invalidate implements Store.Invalidate.
func (Noop[T]) Invalidate(context.Context, string) {}

// Len implements Store.Len.
func (Noop[T]) Len(context.Context) int { return 0 }
