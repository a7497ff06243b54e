// Package pipeline turns a judge submission history into a cached profile.
//
// A lookup goes through four steps: normalize the handle, consult the
// cache, fetch user info, rating history and submissions concurrently,
// then aggregate and store the result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/okian/cpstats/internal/adapters/cache"
	"github.com/okian/cpstats/internal/adapters/judge"
	"github.com/okian/cpstats/internal/domain/aggregate"
	"github.com/okian/cpstats/internal/domain/model"
	"github.com/okian/cpstats/pkg/logger"
	"github.com/okian/cpstats/pkg/metrics"
)

// SchemaVersion stamps cached profiles. Bump it whenever Profile changes shape.
const SchemaVersion = 2

const (
	cacheName  = "profile"
	defaultTTL = 20 * time.Minute
)

// Policy selects how a submission fetch failure is handled.
type Policy int

const (
	// PolicyStrict fails the whole call when submissions cannot be fetched.
	PolicyStrict Policy = iota
	// PolicyBestEffort treats failed submissions as zero known submissions.
	PolicyBestEffort
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	if p == PolicyBestEffort {
		return "best_effort"
	}
	return "strict"
}

// Fetcher reads the three judge resources a profile is built from.
type Fetcher interface {
	UserInfo(ctx context.Context, handle string) (model.UserInfo, error)
	RatingHistory(ctx context.Context, handle string) ([]model.RatingChange, error)
	Submissions(ctx context.Context, handle string) ([]model.Submission, error)
}

// Profile is the derived, cacheable record for one handle.
type Profile struct {
	Info          model.UserInfo       `json:"info"`
	RatingHistory []model.RatingChange `json:"ratingHistory"`
	ContestCount  int                  `json:"contestCount"`
	aggregate.Result

	// Partial is set when a tolerated fetch failed. Partial profiles are never cached.
	Partial bool `json:"partial,omitempty"`
}

// wellFormed is the structural check applied to cached profiles.
func wellFormed(p Profile) bool {
	return p.TagCounts != nil &&
		p.TagProblems != nil &&
		len(p.RatingBuckets) == len(aggregate.Buckets())
}

// Pipeline aggregates judge data for handles behind a TTL cache.
type Pipeline struct {
	fetcher Fetcher
	store   cache.Store[Profile]
	ttl     time.Duration
	clock   clockwork.Clock
	logger  logger.Logger
	cache   *cache.Cache[Profile]
}

// New constructs a Pipeline reading from f.
func New(f Fetcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher: f,
		ttl:     defaultTTL,
		clock:   clockwork.NewRealClock(),
		logger:  logger.Nop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.store == nil {
		p.store = cache.NewMemory[Profile]()
	}
	p.cache = cache.New(cacheName, p.store, wellFormed,
		cache.WithTTL(p.ttl),
		cache.WithSchemaVersion(SchemaVersion),
		cache.WithClock(p.clock),
	)
	return p
}

// CachedProfiles returns the number of stored profiles, fresh or not.
func (p *Pipeline) CachedProfiles(ctx context.Context) int {
	return p.cache.Len(ctx)
}

// AggregateStrict is Aggregate with PolicyStrict.
func (p *Pipeline) AggregateStrict(ctx context.Context, handle string) (Profile, error) {
	return p.Aggregate(ctx, handle, PolicyStrict)
}

// AggregateBestEffort is Aggregate with PolicyBestEffort.
func (p *Pipeline) AggregateBestEffort(ctx context.Context, handle string) (Profile, error) {
	return p.Aggregate(ctx, handle, PolicyBestEffort)
}

// Aggregate returns the profile of handle, from cache when fresh.
//
// Rating history failures are always absorbed. Submission failures are
// absorbed under PolicyBestEffort and fatal under PolicyStrict.
func (p *Pipeline) Aggregate(ctx context.Context, handle string, policy Policy) (Profile, error) {
	start := p.clock.Now()
	prof, outcome, err := p.aggregate(ctx, handle, policy)
	metrics.RecordAggregation(policy.String(), outcome)
	metrics.RecordAggregationDuration(float64(p.clock.Since(start).Milliseconds()))
	return prof, err
}

func (p *Pipeline) aggregate(ctx context.Context, handle string, policy Policy) (Profile, string, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return Profile{}, "invalid", fmt.Errorf("%w: handle is required", ErrValidation)
	}

	cached, status := p.cache.Lookup(ctx, handle)
	if status == cache.StatusHit {
		return cached, "cache_hit", nil
	}
	p.logger.Debug(ctx, "profile cache bypassed",
		logger.String("handle", handle),
		logger.String("status", string(status)),
	)

	prof, err := p.fetch(ctx, handle, policy)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return Profile{}, "not_found", err
		default:
			p.logger.Warn(ctx, "profile fetch failed",
				logger.String("handle", handle),
				logger.String("policy", policy.String()),
				logger.Error(err),
			)
			return Profile{}, "upstream_error", err
		}
	}

	if prof.Partial {
		return prof, "partial", nil
	}
	p.cache.Save(ctx, handle, prof)
	return prof, "fetched", nil
}

// fetch issues the three reads concurrently. A user-info failure cancels
// the others; nothing is aggregated in that case.
func (p *Pipeline) fetch(ctx context.Context, handle string, policy Policy) (Profile, error) {
	var (
		info       model.UserInfo
		history    []model.RatingChange
		subs       []model.Submission
		historyErr error
		subsErr    error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		info, err = p.fetcher.UserInfo(gctx, handle)
		if err != nil {
			return classify(handle, err)
		}
		return nil
	})
	g.Go(func() error {
		history, historyErr = p.fetcher.RatingHistory(gctx, handle)
		return nil
	})
	g.Go(func() error {
		subs, subsErr = p.fetcher.Submissions(gctx, handle)
		return nil
	})
	// Only user-info fails the group, so NotFound wins over any submissions error.
	if err := g.Wait(); err != nil {
		return Profile{}, err
	}
	if subsErr != nil && policy == PolicyStrict {
		return Profile{}, fmt.Errorf("%w: submissions of %s: %w", ErrUpstream, handle, subsErr)
	}

	prof := Profile{Info: info}
	if historyErr != nil {
		p.logger.Warn(ctx, "rating history unavailable",
			logger.String("handle", handle),
			logger.Error(historyErr),
		)
		prof.Partial = true
		history = nil
	}
	if subsErr != nil {
		p.logger.Warn(ctx, "submissions unavailable, assuming none",
			logger.String("handle", handle),
			logger.Error(subsErr),
		)
		prof.Partial = true
		subs = nil
	}
	if history == nil {
		history = []model.RatingChange{}
	}
	prof.RatingHistory = history
	prof.ContestCount = len(history)

	prof.Result = aggregate.Aggregate(subs, aggregate.WithTagProblems())
	metrics.RecordScan(prof.Scanned, prof.Duplicates, prof.TotalSolved)
	return prof, nil
}

func classify(handle string, err error) error {
	if errors.Is(err, judge.ErrNotFound) {
		return fmt.Errorf("%w: %s: %w", ErrNotFound, handle, err)
	}
	return fmt.Errorf("%w: user info of %s: %w", ErrUpstream, handle, err)
}
