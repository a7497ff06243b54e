package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/cpstats/internal/adapters/cache"
	"github.com/okian/cpstats/internal/app/pipeline"
	"github.com/okian/cpstats/internal/domain/coach"
	"github.com/okian/cpstats/internal/domain/model"
	"github.com/okian/cpstats/pkg/logger"
	"github.com/okian/cpstats/pkg/metrics"
)

// LeetCode returns the LeetCode profile of username, cached.
func (s *Service) LeetCode(ctx context.Context, username string) (model.LeetCodeProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.LeetCodeProfile{}, fmt.Errorf("%w: username is required", pipeline.ErrValidation)
	}
	if s.judges.LeetCode == nil {
		return model.LeetCodeProfile{}, fmt.Errorf("%w: leetcode: %w", pipeline.ErrUpstream, errNotConfigured)
	}

	if p, status := s.leetcode.Lookup(ctx, username); status == cache.StatusHit {
		return p, nil
	}

	p, err := s.judges.LeetCode.Profile(ctx, username)
	if err != nil {
		return model.LeetCodeProfile{}, classify("leetcode "+username, err)
	}
	s.leetcode.Save(ctx, username, p)
	return p, nil
}

// LeetCodeCoach analyzes the LeetCode profile of username against the
// medium and hard goals and attaches coaching advice.
func (s *Service) LeetCodeCoach(ctx context.Context, username string, goalMedium, goalHard int) (coach.LeetCodeReport, error) {
	p, err := s.LeetCode(ctx, username)
	if err != nil {
		return coach.LeetCodeReport{}, err
	}

	report := coach.AnalyzeLeetCode(strings.TrimSpace(username), p, goalMedium, goalHard)
	if err := s.coach.LeetCodeAdvice(ctx, &report); err != nil {
		s.logger.Warn(ctx, "coach advice unavailable",
			logger.String("username", username),
			logger.Error(err),
		)
		metrics.RecordErrorByComponent("coach", "advisor")
	}
	metrics.RecordAdvice(report.AdviceSource)
	return report, nil
}
