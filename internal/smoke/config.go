package smoke

import (
	"errors"
	"time"
)

// Sentinel errors returned by Run.
var (
	ErrConfig    = errors.New("invalid smoke config")
	ErrUnhealthy = errors.New("service unhealthy")
	ErrMismatch  = errors.New("cached response differs")
	ErrRequest   = errors.New("compare request failed")
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL string        // Base URL of the service
	Handles []string      // Codeforces handles, compared pairwise
	Timeout time.Duration // HTTP request timeout
	Workers int           // Pairs checked concurrently
	Verbose bool          // Log every call
}

// Pair is two handles compared side by side.
type Pair struct {
	A string
	B string
}

// Call is one compare request.
type Call struct {
	Status  int
	Latency time.Duration
	Body    []byte
}

// Result is the outcome of calling compare twice for one pair.
type Result struct {
	Pair   Pair
	First  Call
	Second Call
	Err    error
}

// Consistent reports whether both calls succeeded with identical bodies.
func (r Result) Consistent() bool {
	return r.Err == nil && string(r.First.Body) == string(r.Second.Body)
}

// Speedup is the first latency divided by the second.
func (r Result) Speedup() float64 {
	if r.Second.Latency <= 0 {
		return 0
	}
	return float64(r.First.Latency) / float64(r.Second.Latency)
}

// Summary holds run statistics.
type Summary struct {
	Pairs      int
	Passed     int
	Mismatched int
	Failed     int
	Results    []Result
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
