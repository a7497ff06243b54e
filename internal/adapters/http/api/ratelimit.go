package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/okian/cpstats/pkg/metrics"
)

const (
	defaultStatsLimit  = 12
	defaultStatsWindow = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPLimiter allows n requests per window for each client IP.
type IPLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	every    rate.Limit
	burst    int
	clock    clockwork.Clock
}

// LimiterOption configures an IPLimiter.
type LimiterOption func(*IPLimiter)

// WithLimiterClock sets the clock used for refills and idle tracking.
func WithLimiterClock(c clockwork.Clock) LimiterOption {
	return func(l *IPLimiter) {
		if c != nil {
			l.clock = c
		}
	}
}

// NewIPLimiter creates a limiter allowing n requests per window per IP.
func NewIPLimiter(n int, window time.Duration, opts ...LimiterOption) *IPLimiter {
	if n <= 0 {
		n = defaultStatsLimit
	}
	if window <= 0 {
		window = defaultStatsWindow
	}
	l := &IPLimiter{
		visitors: make(map[string]*visitor),
		every:    rate.Every(window / time.Duration(n)),
		burst:    n,
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow reports whether ip may make one more request now.
func (l *IPLimiter) Allow(ip string) bool {
	now := l.clock.Now()

	l.mu.Lock()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// Sweep forgets visitors idle for longer than idle and returns how many
// were removed.
func (l *IPLimiter) Sweep(idle time.Duration) int {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > idle {
			delete(l.visitors, ip)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked visitors.
func (l *IPLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// Limit rejects requests over the per-IP budget with 429.
func (l *IPLimiter) Limit(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			metrics.RecordRateLimited(endpoint)
			writeError(w, http.StatusTooManyRequests, "rate_limited", ErrRateLimited)
			return
		}
		next(w, r)
	}
}

// clientIP returns the host part of RemoteAddr, which RealIP has already
// replaced with the forwarded address when present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr == "" {
		return "unknown"
	}
	return r.RemoteAddr
}
