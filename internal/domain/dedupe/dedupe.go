// Package dedupe tracks first-seen membership of comparable keys.
package dedupe

// Set records keys and reports whether each key was seen before.
// A Set is a per-call accumulator and is not safe for concurrent use.
type Set[K comparable] struct {
	seen  map[K]struct{}
	order []K
}

// NewSet creates an empty set configured by opts.
func NewSet[K comparable](opts ...Option) *Set[K] {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Set[K]{
		seen: make(map[K]struct{}, cfg.capacity),
	}
	if cfg.keepOrder {
		s.order = make([]K, 0, cfg.capacity)
	}
	return s
}

// SeenAndRecord checks if key was seen and records it if not.
// Returns true if key was already seen, false if it was newly recorded.
func (s *Set[K]) SeenAndRecord(key K) bool {
	if _, exists := s.seen[key]; exists {
		return true
	}
	s.seen[key] = struct{}{}
	if s.order != nil {
		s.order = append(s.order, key)
	}
	return false
}

// Contains reports whether key was recorded.
func (s *Set[K]) Contains(key K) bool {
	if s == nil {
		return false
	}
	_, ok := s.seen[key]
	return ok
}

// Size returns the number of distinct keys recorded.
func (s *Set[K]) Size() int {
	if s == nil {
		return 0
	}
	return len(s.seen)
}

// Keys returns the recorded keys. With WithOrder they come in first-seen
// order; otherwise the order is unspecified.
func (s *Set[K]) Keys() []K {
	if s == nil {
		return nil
	}
	if s.order != nil {
		out := make([]K, len(s.order))
		copy(out, s.order)
		return out
	}
	out := make([]K, 0, len(s.seen))
	for k := range s.seen {
		out = append(out, k)
	}
	return out
}
