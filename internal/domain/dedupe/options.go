package dedupe

type config struct {
	capacity  int
	keepOrder bool
}

// Option applies a configuration option to a Set.
type Option func(*config)

// WithCapacity pre-sizes the set for n keys. Values <= 0 are ignored.
func WithCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithOrder keeps keys in first-seen order for Keys.
func WithOrder() Option {
	return func(c *config) {
		c.keepOrder = true
	}
}
