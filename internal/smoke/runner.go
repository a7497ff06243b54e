// Package smoke exercises a running cpstats service and checks that cached
// compare responses match fresh ones.
package smoke

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/okian/cpstats/pkg/logger"
)

const (
	defaultWorkers       = 2
	percentageMultiplier = 100
)

type runner struct {
	clock clockwork.Clock
	log   logger.Logger
}

// Option customizes a run.
type Option func(*runner)

// WithClock sets the clock used for latency and run timing.
func WithClock(c clockwork.Clock) Option {
	return func(r *runner) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *runner) {
		if l != nil {
			r.log = l
		}
	}
}

// Run executes the smoke test and returns its summary. The error wraps
// ErrMismatch or ErrRequest when any pair failed.
func Run(ctx context.Context, cfg *Config, opts ...Option) (Summary, error) {
	r := &runner{clock: clockwork.NewRealClock(), log: logger.Get().Named("smoke")}
	for _, opt := range opts {
		opt(r)
	}

	if cfg == nil || strings.TrimSpace(cfg.BaseURL) == "" {
		return Summary{}, fmt.Errorf("%w: base url is required", ErrConfig)
	}
	pairs := Pairs(cfg.Handles)
	if len(pairs) == 0 {
		return Summary{}, fmt.Errorf("%w: at least two handles are required", ErrConfig)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	base := strings.TrimRight(cfg.BaseURL, "/")

	summary := Summary{Pairs: len(pairs), StartTime: r.clock.Now()}
	r.log.Info(ctx, "starting cpstats smoke test",
		logger.String("baseURL", base),
		logger.Int("pairs", len(pairs)),
		logger.Int("workers", workers),
		logger.Duration("timeout", cfg.Timeout))

	client := newHTTPClient(cfg.Timeout, r.clock)
	if err := r.checkHealth(ctx, client, base); err != nil {
		return summary, err
	}

	results := make([]Result, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range pairs {
		g.Go(func() error {
			res := r.checkPair(gctx, client, base, p)
			if cfg.Verbose {
				r.logResult(gctx, res)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	summary.Results = results
	for _, res := range results {
		switch {
		case res.Err != nil:
			summary.Failed++
		case !res.Consistent():
			summary.Mismatched++
		default:
			summary.Passed++
		}
	}
	summary.EndTime = r.clock.Now()
	summary.Duration = summary.EndTime.Sub(summary.StartTime)
	r.displaySummary(ctx, summary)

	switch {
	case summary.Mismatched > 0:
		return summary, fmt.Errorf("%w: %d of %d pairs", ErrMismatch, summary.Mismatched, summary.Pairs)
	case summary.Failed > 0:
		return summary, fmt.Errorf("%w: %d of %d pairs", ErrRequest, summary.Failed, summary.Pairs)
	}
	return summary, nil
}

// checkHealth verifies the service is running.
func (r *runner) checkHealth(ctx context.Context, client *httpClient, base string) error {
	call, err := client.get(ctx, base+"/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if call.Status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, call.Status)
	}
	r.log.Info(ctx, "service is healthy", logger.Duration("latency", call.Latency))
	return nil
}

// checkPair calls compare twice; the second call should be served from cache.
func (r *runner) checkPair(ctx context.Context, client *httpClient, base string, p Pair) Result {
	res := Result{Pair: p}
	target := compareURL(base, p)

	for i, dst := range []*Call{&res.First, &res.Second} {
		call, err := client.get(ctx, target)
		if err != nil {
			res.Err = fmt.Errorf("call %d: %w", i+1, err)
			return res
		}
		*dst = call
		if call.Status != http.StatusOK {
			res.Err = fmt.Errorf("call %d: status %d: %s", i+1, call.Status, strings.TrimSpace(string(call.Body)))
			return res
		}
	}
	return res
}

func (r *runner) logResult(ctx context.Context, res Result) {
	fields := []logger.Field{
		logger.String("a", res.Pair.A),
		logger.String("b", res.Pair.B),
		logger.Duration("first", res.First.Latency),
		logger.Duration("second", res.Second.Latency),
	}
	switch {
	case res.Err != nil:
		r.log.Warn(ctx, "compare failed", append(fields, logger.Error(res.Err))...)
	case !res.Consistent():
		r.log.Warn(ctx, "cached compare differs", fields...)
	default:
		r.log.Info(ctx, "compare consistent", append(fields, logger.Float64("speedup", res.Speedup()))...)
	}
}

// displaySummary logs the final statistics.
func (r *runner) displaySummary(ctx context.Context, s Summary) {
	var passRate float64
	if s.Pairs > 0 {
		passRate = float64(s.Passed) / float64(s.Pairs) * percentageMultiplier
	}
	r.log.Info(ctx, "final statistics",
		logger.Int("pairs", s.Pairs),
		logger.Int("passed", s.Passed),
		logger.Int("mismatched", s.Mismatched),
		logger.Int("failed", s.Failed),
		logger.Float64("passRate", passRate),
		logger.Duration("duration", s.Duration))
}
