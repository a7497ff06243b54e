package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/okian/cpstats/internal/adapters/cache"
	"github.com/okian/cpstats/internal/adapters/judge"
	"github.com/okian/cpstats/internal/app/pipeline"
	"github.com/okian/cpstats/pkg/logger"
)

// Per-platform failure messages.
const (
	ErrMsgHandleNotFound = "Handle not found"
	ErrMsgFetchFailed    = "Fetch failed"
)

// StatsQuery names one handle per platform. Empty handles are skipped.
type StatsQuery struct {
	Codeforces string
	LeetCode   string
	AtCoder    string
	CodeChef   string
}

func (q StatsQuery) normalize() StatsQuery {
	return StatsQuery{
		Codeforces: strings.TrimSpace(q.Codeforces),
		LeetCode:   strings.TrimSpace(q.LeetCode),
		AtCoder:    strings.TrimSpace(q.AtCoder),
		CodeChef:   strings.TrimSpace(q.CodeChef),
	}
}

func (q StatsQuery) empty() bool {
	return q.Codeforces == "" && q.LeetCode == "" && q.AtCoder == "" && q.CodeChef == ""
}

// key is the ordered handle tuple.
func (q StatsQuery) key() string {
	return strings.Join([]string{q.Codeforces, q.LeetCode, q.AtCoder, q.CodeChef}, "|")
}

// PlatformResult is the solved count of one handle on one platform.
// Exactly one of Solved and Error is set for a queried handle.
type PlatformResult struct {
	Handle string  `json:"handle"`
	Solved *int    `json:"solved"`
	Error  *string `json:"error"`
}

// StatsReport sums solved counts across platforms.
type StatsReport struct {
	Codeforces PlatformResult `json:"codeforces"`
	LeetCode   PlatformResult `json:"leetcode"`
	AtCoder    PlatformResult `json:"atcoder"`
	CodeChef   PlatformResult `json:"codechef"`
	Total      int            `json:"total"`
	FetchedAt  int64          `json:"fetchedAt"`
}

// Stats fetches solved counts for every named handle concurrently.
// Per-platform failures are reported inline; only an empty query fails.
func (s *Service) Stats(ctx context.Context, q StatsQuery) (StatsReport, error) {
	q = q.normalize()
	if q.empty() {
		return StatsReport{}, fmt.Errorf("%w: provide at least one handle", pipeline.ErrValidation)
	}

	key := q.key()
	if r, status := s.stats.Lookup(ctx, key); status == cache.StatusHit {
		return r, nil
	}

	r := StatsReport{
		Codeforces: PlatformResult{Handle: q.Codeforces},
		LeetCode:   PlatformResult{Handle: q.LeetCode},
		AtCoder:    PlatformResult{Handle: q.AtCoder},
		CodeChef:   PlatformResult{Handle: q.CodeChef},
	}

	var g errgroup.Group
	s.collect(ctx, &g, "codeforces", &r.Codeforces, s.codeforcesSolved)
	s.collect(ctx, &g, "leetcode", &r.LeetCode, counterOf(s.judges.LeetCode))
	s.collect(ctx, &g, "atcoder", &r.AtCoder, counterOf(s.judges.AtCoder))
	s.collect(ctx, &g, "codechef", &r.CodeChef, counterOf(s.judges.CodeChef))
	_ = g.Wait()

	for _, p := range []PlatformResult{r.Codeforces, r.LeetCode, r.AtCoder, r.CodeChef} {
		if p.Solved != nil {
			r.Total += *p.Solved
		}
	}
	r.FetchedAt = s.clock.Now().UnixMilli()

	if r.anySolved() {
		s.stats.Save(ctx, key, r)
	}
	return r, nil
}

// anySolved reports whether at least one queried platform returned a count.
func (r StatsReport) anySolved() bool {
	for _, p := range []PlatformResult{r.Codeforces, r.LeetCode, r.AtCoder, r.CodeChef} {
		if p.Solved != nil {
			return true
		}
	}
	return false
}

type countFunc func(ctx context.Context, handle string) (int, error)

func counterOf(c SolvedCounter) countFunc {
	if c == nil {
		return func(context.Context, string) (int, error) { return 0, errNotConfigured }
	}
	return c.SolvedCount
}

func (s *Service) codeforcesSolved(ctx context.Context, handle string) (int, error) {
	prof, err := s.pipeline.AggregateStrict(ctx, handle)
	if err != nil {
		return 0, err
	}
	return prof.TotalSolved, nil
}

func (s *Service) collect(ctx context.Context, g *errgroup.Group, platform string, out *PlatformResult, count countFunc) {
	if out.Handle == "" {
		return
	}
	g.Go(func() error {
		n, err := count(ctx, out.Handle)
		if err != nil {
			msg := ErrMsgFetchFailed
			if errors.Is(err, judge.ErrNotFound) || errors.Is(err, pipeline.ErrNotFound) {
				msg = ErrMsgHandleNotFound
			}
			s.logger.Debug(ctx, "solved count unavailable",
				logger.String("platform", platform),
				logger.String("handle", out.Handle),
				logger.Error(err),
			)
			out.Error = &msg
			return nil
		}
		out.Solved = &n
		return nil
	})
}
