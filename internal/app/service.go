// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/cpstats/internal/adapters/cache"
	"github.com/okian/cpstats/internal/adapters/judge"
	"github.com/okian/cpstats/internal/app/catalog"
	"github.com/okian/cpstats/internal/app/pipeline"
	"github.com/okian/cpstats/internal/domain/coach"
	"github.com/okian/cpstats/internal/domain/model"
	"github.com/okian/cpstats/internal/domain/scoring"
	"github.com/okian/cpstats/pkg/logger"
	"github.com/okian/cpstats/pkg/metrics"
)

// CodeforcesJudge reads everything the Codeforces routes need.
type CodeforcesJudge interface {
	pipeline.Fetcher
	catalog.Source
}

// LeetCodeJudge reads LeetCode profiles.
type LeetCodeJudge interface {
	Profile(ctx context.Context, username string) (model.LeetCodeProfile, error)
	SolvedCount(ctx context.Context, username string) (int, error)
}

// SolvedCounter reports the number of problems a handle has solved.
type SolvedCounter interface {
	SolvedCount(ctx context.Context, handle string) (int, error)
}

// Judges bundles the upstream clients. Nil clients make their routes
// report upstream failures.
type Judges struct {
	Codeforces CodeforcesJudge
	LeetCode   LeetCodeJudge
	AtCoder    SolvedCounter
	CodeChef   SolvedCounter
}

// Service implements the API dependencies for the stats service.
type Service struct {
	judges Judges

	pipeline *pipeline.Pipeline
	catalog  *catalog.Catalog
	scorer   *scoring.Scorer
	coach    *coach.Coach

	leetcode *cache.Cache[model.LeetCodeProfile]
	stats    *cache.Cache[StatsReport]

	// Configuration
	profileTTL    time.Duration
	statsTTL      time.Duration
	leetcodeTTL   time.Duration
	problemsetTTL time.Duration
	advisor       coach.Advisor
	clock         clockwork.Clock

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithProfileTTL sets the freshness window of Codeforces profiles.
func WithProfileTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.profileTTL = d
		}
	}
}

// WithStatsTTL sets the freshness window of multi-platform stats.
func WithStatsTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.statsTTL = d
		}
	}
}

// WithLeetCodeTTL sets the freshness window of LeetCode profiles.
func WithLeetCodeTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.leetcodeTTL = d
		}
	}
}

// WithProblemsetTTL sets the freshness window of the problem catalog.
func WithProblemsetTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.problemsetTTL = d
		}
	}
}

// WithAdvisor enables LLM coaching advice.
func WithAdvisor(a coach.Advisor) Option {
	return func(s *Service) {
		s.advisor = a
	}
}

// WithClock sets the clock shared by every cache.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service over the given judges.
func New(j Judges, opts ...Option) *Service {
	s := &Service{
		judges:        j,
		profileTTL:    20 * time.Minute,
		statsTTL:      time.Hour,
		leetcodeTTL:   30 * time.Minute,
		problemsetTTL: 24 * time.Hour,
		clock:         clockwork.NewRealClock(),
		logger:        logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	var cf CodeforcesJudge = unavailableCodeforces{}
	if j.Codeforces != nil {
		cf = j.Codeforces
	}
	s.pipeline = pipeline.New(cf,
		pipeline.WithTTL(s.profileTTL),
		pipeline.WithClock(s.clock),
		pipeline.WithLogger(s.logger.Named("pipeline")),
	)
	s.catalog = catalog.New(cf,
		catalog.WithTTL(s.problemsetTTL),
		catalog.WithClock(s.clock),
		catalog.WithLogger(s.logger.Named("catalog")),
	)
	s.scorer = scoring.NewScorer()
	s.coach = coach.New(coach.WithAdvisor(s.advisor))
	s.leetcode = cache.New("leetcode", cache.NewMemory[model.LeetCodeProfile](),
		func(p model.LeetCodeProfile) bool { return p.MatchedUser != nil },
		cache.WithTTL(s.leetcodeTTL),
		cache.WithSchemaVersion(1),
		cache.WithClock(s.clock),
	)
	s.stats = cache.New[StatsReport]("stats", cache.NewMemory[StatsReport](), nil,
		cache.WithTTL(s.statsTTL),
		cache.WithSchemaVersion(1),
		cache.WithClock(s.clock),
	)

	s.logger.Info(context.Background(), "stats service ready",
		logger.Duration("profileTTL", s.profileTTL),
		logger.Duration("statsTTL", s.statsTTL),
		logger.Bool("llm", s.coach.Online()),
	)
	return s
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	ctx := context.Background()
	profiles := s.pipeline.CachedProfiles(ctx)
	problems := s.catalog.Size(ctx)
	leetcode := s.leetcode.Len(ctx)
	stats := s.stats.Len(ctx)

	metrics.UpdateCacheEntries("profile", profiles)
	metrics.UpdateCacheEntries("leetcode", leetcode)
	metrics.UpdateCacheEntries("stats", stats)

	return map[string]interface{}{
		"cachedProfiles":   profiles,
		"cachedLeetCode":   leetcode,
		"cachedStats":      stats,
		"problemsetSize":   problems,
		"profileSchema":    pipeline.SchemaVersion,
		"profileTTL":       s.profileTTL.String(),
		"statsTTL":         s.statsTTL.String(),
		"leetcodeTTL":      s.leetcodeTTL.String(),
		"problemsetTTL":    s.problemsetTTL.String(),
		"llmAdviceEnabled": s.coach.Online(),
	}
}

// classify maps judge errors onto the service sentinels. Rejections keep
// their judge.ErrRejected identity.
func classify(what string, err error) error {
	switch {
	case errors.Is(err, pipeline.ErrNotFound), errors.Is(err, pipeline.ErrUpstream), errors.Is(err, pipeline.ErrValidation):
		return err
	case errors.Is(err, judge.ErrNotFound):
		return fmt.Errorf("%w: %s: %w", pipeline.ErrNotFound, what, err)
	case errors.Is(err, judge.ErrRejected):
		return fmt.Errorf("%s: %w", what, err)
	default:
		return fmt.Errorf("%w: %s: %w", pipeline.ErrUpstream, what, err)
	}
}

var errNotConfigured = errors.New("judge not configured")

type unavailableCodeforces struct{}

func (unavailableCodeforces) UserInfo(context.Context, string) (model.UserInfo, error) {
	return model.UserInfo{}, errNotConfigured
}

func (unavailableCodeforces) RatingHistory(context.Context, string) ([]model.RatingChange, error) {
	return nil, errNotConfigured
}

func (unavailableCodeforces) Submissions(context.Context, string) ([]model.Submission, error) {
	return nil, errNotConfigured
}

func (unavailableCodeforces) Problemset(context.Context) ([]model.Problem, error) {
	return nil, errNotConfigured
}
