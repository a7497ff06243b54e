// Package scoring ranks practice problems for a user from their solved-tag profile.
package scoring

import (
	"cmp"
	"slices"

	"github.com/okian/cpstats/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultWeakTagBonus   = 10
	defaultWeakTagCount   = 5
	defaultRecommendLimit = 5
	defaultRatingSlack    = 100
)

// DefaultCommonTags are the tags considered when looking for weaknesses.
// Rare tags are excluded so they are not reported as weak just for being rare.
var DefaultCommonTags = []string{ //nolint:gochecknoglobals // read-only defaults
	"dp", "greedy", "graphs", "math", "constructive algorithms", "implementation",
	"brute force", "sortings", "data structures", "binary search", "dfs and similar",
	"trees", "number theory", "strings",
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeakTagBonus sets the score added to problems carrying a weak tag.
func WithWeakTagBonus(bonus int) Option {
	return func(s *Scorer) {
		if bonus > 0 {
			s.weakTagBonus = bonus
		}
	}
}

// WithWeakTagCount sets how many of the least-solved common tags are weak.
func WithWeakTagCount(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.weakTagCount = n
		}
	}
}

// WithLimit caps the number of recommendations returned.
func WithLimit(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithCommonTags replaces the tag universe used for weakness analysis.
func WithCommonTags(tags []string) Option {
	return func(s *Scorer) {
		if len(tags) > 0 {
			s.commonTags = slices.Clone(tags)
		}
	}
}

// Recommendation is a catalog problem with its priority score.
type Recommendation struct {
	model.Problem
	Score int `json:"score"`
}

// Scorer picks weak tags and recommends problems.
type Scorer struct {
	weakTagBonus int
	weakTagCount int
	limit        int
	ratingSlack  int
	commonTags   []string
}

// NewScorer creates a new scorer with configuration options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		weakTagBonus: defaultWeakTagBonus,
		weakTagCount: defaultWeakTagCount,
		limit:        defaultRecommendLimit,
		ratingSlack:  defaultRatingSlack,
		commonTags:   DefaultCommonTags,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WeakTags returns the common tags with the fewest solved problems.
// Ties keep the common-tag order.
func (s *Scorer) WeakTags(tagCounts map[string]int) []string {
	type tagCount struct {
		tag   string
		count int
	}
	counts := make([]tagCount, len(s.commonTags))
	for i, tag := range s.commonTags {
		counts[i] = tagCount{tag: tag, count: tagCounts[tag]}
	}
	slices.SortStableFunc(counts, func(a, b tagCount) int {
		return cmp.Compare(a.count, b.count)
	})

	n := min(s.weakTagCount, len(counts))
	out := make([]string, n)
	for i := range out {
		out[i] = counts[i].tag
	}
	return out
}

// Recommend selects unsolved rated problems in [current, target+slack].
// Problems with a weak tag score higher; ties prefer the easier rating.
func (s *Scorer) Recommend(
	catalog []model.Problem,
	solved func(model.ProblemKey) bool,
	weakTags []string,
	current, target int,
) []Recommendation {
	weak := make(map[string]struct{}, len(weakTags))
	for _, t := range weakTags {
		weak[t] = struct{}{}
	}

	upper := target + s.ratingSlack
	out := make([]Recommendation, 0)
	for _, p := range catalog {
		if p.Rating == nil || *p.Rating < current || *p.Rating > upper {
			continue
		}
		if solved != nil && solved(p.Key()) {
			continue
		}
		score := 0
		if p.HasTag(weak) {
			score += s.weakTagBonus
		}
		out = append(out, Recommendation{Problem: p, Score: score})
	}

	slices.SortStableFunc(out, func(a, b Recommendation) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(*a.Rating, *b.Rating)
	})

	if len(out) > s.limit {
		out = out[:s.limit]
	}
	return out
}
