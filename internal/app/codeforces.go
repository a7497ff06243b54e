package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/okian/cpstats/internal/app/pipeline"
	"github.com/okian/cpstats/internal/domain/coach"
	"github.com/okian/cpstats/internal/domain/ladder"
	"github.com/okian/cpstats/internal/domain/model"
	"github.com/okian/cpstats/internal/domain/scoring"
	"github.com/okian/cpstats/pkg/logger"
	"github.com/okian/cpstats/pkg/metrics"
)

// Comparison holds two profiles side by side.
type Comparison struct {
	A pipeline.Profile `json:"a"`
	B pipeline.Profile `json:"b"`
}

// CoachReport is the Codeforces coaching analysis for one handle.
type CoachReport struct {
	Handle          string                   `json:"handle"`
	CurrentRating   int                      `json:"currentRating"`
	TargetRating    int                      `json:"targetRating"`
	TagCounts       map[string]int           `json:"tagCounts"`
	WeakTags        []string                 `json:"weakTags"`
	Recommendations []scoring.Recommendation `json:"recommendations"`
	AIAdvice        string                   `json:"aiAdvice"`
	AdviceSource    string                   `json:"adviceSource"`
}

// Sheet is a practice ladder with solved marks.
type Sheet struct {
	Ladder   ladder.Ladder  `json:"ladder"`
	Handle   string         `json:"handle,omitempty"`
	Solved   int            `json:"solved"`
	Problems []ladder.Entry `json:"problems"`
}

// Profile returns the best-effort profile of handle.
func (s *Service) Profile(ctx context.Context, handle string) (pipeline.Profile, error) {
	return s.pipeline.AggregateBestEffort(ctx, handle)
}

// Compare aggregates both handles concurrently with the strict policy.
func (s *Service) Compare(ctx context.Context, h1, h2 string) (Comparison, error) {
	h1, h2 = strings.TrimSpace(h1), strings.TrimSpace(h2)
	if h1 == "" || h2 == "" {
		return Comparison{}, fmt.Errorf("%w: both handles are required", pipeline.ErrValidation)
	}

	var out Comparison
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.A, err = s.pipeline.AggregateStrict(gctx, h1)
		return err
	})
	g.Go(func() error {
		var err error
		out.B, err = s.pipeline.AggregateStrict(gctx, h2)
		return err
	})
	if err := g.Wait(); err != nil {
		return Comparison{}, err
	}
	return out, nil
}

// CodeforcesCoach recommends unsolved catalog problems between the
// handle's rating and goal, and asks the coach for advice.
func (s *Service) CodeforcesCoach(ctx context.Context, handle string, goal int) (CoachReport, error) {
	prof, err := s.pipeline.AggregateStrict(ctx, handle)
	if err != nil {
		return CoachReport{}, err
	}
	problems, err := s.catalog.Problems(ctx)
	if err != nil {
		return CoachReport{}, fmt.Errorf("%w: %w", pipeline.ErrUpstream, err)
	}

	current, target := coach.Targets(prof.Info.Rating, goal)
	weak := s.scorer.WeakTags(prof.TagCounts)
	recs := s.scorer.Recommend(problems, prof.IsSolved, weak, current, target)

	advice, source, err := s.coach.CodeforcesAdvice(ctx, coach.CodeforcesInput{
		Handle:          prof.Info.Handle,
		Current:         current,
		Target:          target,
		WeakTags:        weak,
		Recommendations: recs,
	})
	if err != nil {
		s.logger.Warn(ctx, "coach advice unavailable",
			logger.String("handle", prof.Info.Handle),
			logger.Error(err),
		)
		metrics.RecordErrorByComponent("coach", "advisor")
	}
	metrics.RecordAdvice(source)

	return CoachReport{
		Handle:          prof.Info.Handle,
		CurrentRating:   current,
		TargetRating:    target,
		TagCounts:       prof.TagCounts,
		WeakTags:        weak,
		Recommendations: recs,
		AIAdvice:        advice,
		AdviceSource:    source,
	}, nil
}

// Sheet builds the named ladder. handle is optional; when its profile
// cannot be read the ladder is returned without solved marks.
func (s *Service) Sheet(ctx context.Context, handle, ladderID string) (Sheet, error) {
	l, ok := ladder.Lookup(strings.TrimSpace(ladderID))
	if !ok {
		return Sheet{}, fmt.Errorf("%w: unknown ladder %q", pipeline.ErrValidation, ladderID)
	}

	var solved func(model.ProblemKey) bool
	handle = strings.TrimSpace(handle)
	if handle != "" {
		prof, err := s.pipeline.AggregateBestEffort(ctx, handle)
		if err != nil {
			s.logger.Warn(ctx, "sheet without solved marks",
				logger.String("handle", handle),
				logger.Error(err),
			)
		} else {
			solved = prof.IsSolved
		}
	}

	problems, err := s.catalog.Problems(ctx)
	if err != nil {
		return Sheet{}, fmt.Errorf("%w: %w", pipeline.ErrUpstream, err)
	}

	entries := ladder.Build(l, problems, solved, ladder.DefaultSize)
	sheet := Sheet{Ladder: l, Handle: handle, Problems: entries}
	for _, e := range entries {
		if e.Solved {
			sheet.Solved++
		}
	}
	return sheet, nil
}
