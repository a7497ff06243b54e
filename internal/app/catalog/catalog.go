// Package catalog keeps the judge's global problem list behind a long-lived cache.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/cpstats/internal/adapters/cache"
	"github.com/okian/cpstats/internal/domain/model"
	"github.com/okian/cpstats/pkg/logger"
)

const (
	cacheName     = "problemset"
	cacheKey      = "problemset"
	schemaVersion = 1
	defaultTTL    = 24 * time.Hour
)

// ErrUnavailable is returned when no catalog could be fetched or served stale.
var ErrUnavailable = errors.New("problemset unavailable")

// Source fetches the full problem list.
type Source interface {
	Problemset(ctx context.Context) ([]model.Problem, error)
}

// Catalog serves the problem list, refreshing it once the TTL elapses.
type Catalog struct {
	source Source
	ttl    time.Duration
	clock  clockwork.Clock
	logger logger.Logger
	cache  *cache.Cache[[]model.Problem]
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithTTL sets how long a fetched catalog is served before a refresh.
func WithTTL(d time.Duration) Option {
	return func(c *Catalog) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithClock sets the clock used for freshness checks.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Catalog) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Catalog over src.
func New(src Source, opts ...Option) *Catalog {
	c := &Catalog{
		source: src,
		ttl:    defaultTTL,
		clock:  clockwork.NewRealClock(),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cache = cache.New(cacheName, cache.NewMemory[[]model.Problem](), nonEmpty,
		cache.WithTTL(c.ttl),
		cache.WithSchemaVersion(schemaVersion),
		cache.WithClock(c.clock),
	)
	return c
}

func nonEmpty(p []model.Problem) bool {
	return len(p) > 0
}

// Problems returns the catalog. A failed refresh falls back to the last
// fetched catalog regardless of age.
func (c *Catalog) Problems(ctx context.Context) ([]model.Problem, error) {
	if problems, status := c.cache.Lookup(ctx, cacheKey); status == cache.StatusHit {
		return problems, nil
	}

	problems, err := c.source.Problemset(ctx)
	if err == nil && len(problems) == 0 {
		err = errors.New("empty problemset")
	}
	if err != nil {
		if stale, ok := c.cache.LookupStale(ctx, cacheKey); ok {
			c.logger.Warn(ctx, "problemset refresh failed, serving stale catalog",
				logger.Int("problems", len(stale)),
				logger.Error(err),
			)
			return stale, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	c.cache.Save(ctx, cacheKey, problems)
	c.logger.Info(ctx, "problemset refreshed", logger.Int("problems", len(problems)))
	return problems, nil
}

// Size returns the number of problems currently held, fresh or stale.
func (c *Catalog) Size(ctx context.Context) int {
	problems, _ := c.cache.LookupStale(ctx, cacheKey)
	return len(problems)
}
