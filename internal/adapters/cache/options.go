package cache

import (
	"time"

	"github.com/jonboulle/clockwork"
)

const defaultTTL = 20 * time.Minute

type settings struct {
	ttl           time.Duration
	schemaVersion int
	clock         clockwork.Clock
}

// Option applies a configuration option to a Cache.
type Option func(*settings)

// WithTTL sets the freshness window. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(s *settings) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSchemaVersion sets the version stamped on writes and required on reads.
func WithSchemaVersion(v int) Option {
	return func(s *settings) {
		s.schemaVersion = v
	}
}

// WithClock replaces the wall clock, e.g. with a fake clock in tests.
func WithClock(c clockwork.Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}
