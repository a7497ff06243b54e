package pipeline

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/cpstats/internal/adapters/cache"
	"github.com/okian/cpstats/pkg/logger"
)

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithStore sets the backing store of the profile cache.
func WithStore(store cache.Store[Profile]) Option {
	return func(p *Pipeline) {
		if store != nil {
			p.store = store
		}
	}
}

// WithTTL sets the profile freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(p *Pipeline) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// WithClock replaces the wall clock used for cache stamps.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithLogger sets a custom logger for the pipeline.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}
