package cache

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/okian/cpstats/pkg/metrics"
)

// Status classifies a lookup.
type Status string

// Lookup outcomes. Only StatusHit returns a value.
const (
	StatusHit             Status = "hit"
	StatusMiss            Status = "miss"
	StatusExpired         Status = "expired"
	StatusVersionMismatch Status = "version_mismatch"
	StatusShapeMismatch   Status = "shape_mismatch"
)

// Cache applies a freshness policy on top of a Store.
type Cache[T any] struct {
	name     string
	store    Store[T]
	settings settings
	validate func(T) bool
}

// New wraps store. validate reports whether a cached value has the
// expected shape; nil accepts every value.
func New[T any](name string, store Store[T], validate func(T) bool, opts ...Option) *Cache[T] {
	s := settings{
		ttl:   defaultTTL,
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if store == nil {
		store = Noop[T]{}
	}
	return &Cache[T]{name: name, store: store, settings: s, validate: validate}
}

// Name returns the cache label used in metrics and logs.
func (c *Cache[T]) Name() string {
	return c.name
}

// Lookup returns the value under key when it is fresh, current and well formed.
func (c *Cache[T]) Lookup(ctx context.Context, key string) (T, Status) {
	e, ok := c.store.Get(ctx, key)
	status := c.check(e, ok, true)
	metrics.RecordCacheLookup(c.name, string(status))
	if status != StatusHit {
		var zero T
		return zero, status
	}
	return e.Value, status
}

// LookupStale returns the value under key ignoring its age. Version and
// shape checks still apply.
func (c *Cache[T]) LookupStale(ctx context.Context, key string) (T, bool) {
	e, ok := c.store.Get(ctx, key)
	if c.check(e, ok, false) != StatusHit {
		var zero T
		return zero, false
	}
	return e.Value, true
}

// Save stores v under key stamped with now and the current schema version.
func (c *Cache[T]) Save(ctx context.Context, key string, v T) {
	c.store.Set(ctx, key, Entry[T]{
		Value:         v,
		CachedAt:      c.settings.clock.Now(),
		SchemaVersion: c.settings.schemaVersion,
	})
	metrics.RecordCacheWrite(c.name)
	metrics.UpdateCacheEntries(c.name, c.store.Len(ctx))
}

// Invalidate drops the entry under key.
func (c *Cache[T]) Invalidate(ctx context.Context, key string) {
	c.store.Invalidate(ctx, key)
	metrics.UpdateCacheEntries(c.name, c.store.Len(ctx))
}

// Len returns the number of stored entries, fresh or not.
func (c *Cache[T]) Len(ctx context.Context) int {
	return c.store.Len(ctx)
}

func (c *Cache[T]) check(e Entry[T], ok, checkAge bool) Status {
	switch {
	case !ok:
		return StatusMiss
	case e.SchemaVersion != c.settings.schemaVersion:
		return StatusVersionMismatch
	case c.validate != nil && !c.validate(e.Value):
		return StatusShapeMismatch
	case checkAge && c.settings.clock.Since(e.CachedAt) > c.settings.ttl:
		return StatusExpired
	}
	return StatusHit
}
