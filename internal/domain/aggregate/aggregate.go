// Package aggregate derives solved-problem statistics from a submission history.
//
// Aggregate is a pure function: the solved set is a local accumulator and
// nothing outlives the call except the returned Result.
package aggregate

import (
	"slices"

	"github.com/okian/cpstats/internal/domain/dedupe"
	"github.com/okian/cpstats/internal/domain/model"
)

// SolvedProblem is one entry of a per-tag problem list.
type SolvedProblem struct {
	Name      string `json:"name"`
	ContestID int    `json:"contestId"`
	Index     string `json:"index"`
	Rating    *int   `json:"rating"`
	URL       string `json:"url"`
}

// Result is the derived summary of a submission history.
type Result struct {
	TotalSolved   int                        `json:"totalSolved"`
	RatedSolved   int                        `json:"ratedSolved"`
	TagCounts     map[string]int             `json:"tagCounts"`
	RatingBuckets []BucketCount              `json:"ratingBuckets"`
	TagProblems   map[string][]SolvedProblem `json:"tagProblems,omitempty"`

	// Scan statistics.
	Scanned    int `json:"-"`
	Duplicates int `json:"-"`

	solved *dedupe.Set[model.ProblemKey]
}

// IsSolved reports whether the problem identified by key was solved.
func (r Result) IsSolved(key model.ProblemKey) bool {
	return r.solved.Contains(key)
}

// SolvedKeys returns solved problem keys in first-accepted order.
func (r Result) SolvedKeys() []model.ProblemKey {
	return r.solved.Keys()
}

// BucketCount returns the count for label, or 0 for an unknown label.
func (r Result) BucketCount(label string) int {
	for _, b := range r.RatingBuckets {
		if b.Label == label {
			return b.Count
		}
	}
	return 0
}

// Option configures Aggregate.
type Option func(*options)

type options struct {
	tagProblems bool
}

// WithTagProblems also builds per-tag lists of solved problems.
func WithTagProblems() Option {
	return func(o *options) {
		o.tagProblems = true
	}
}

// Aggregate scans subs once. Only the first accepted submission per
// ProblemKey is counted; later ones are skipped as duplicates.
func Aggregate(subs []model.Submission, opts ...Option) Result {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	res := Result{
		TagCounts:     make(map[string]int),
		RatingBuckets: emptyBucketCounts(),
		Scanned:       len(subs),
		solved:        dedupe.NewSet[model.ProblemKey](dedupe.WithOrder()),
	}
	if o.tagProblems {
		res.TagProblems = make(map[string][]SolvedProblem)
	}

	for _, sub := range subs {
		if !sub.Accepted() {
			continue
		}
		p := sub.Problem
		if res.solved.SeenAndRecord(p.Key()) {
			res.Duplicates++
			continue
		}

		if p.Rating != nil {
			res.RatingBuckets[BucketIndex(*p.Rating)].Count++
			res.RatedSolved++
		}

		entry := SolvedProblem{
			Name:      p.Name,
			ContestID: p.ContestID,
			Index:     p.Index,
			Rating:    p.Rating,
			URL:       p.URL(),
		}
		for i, tag := range p.Tags {
			// A tag listed twice on one problem still counts once.
			if slices.Contains(p.Tags[:i], tag) {
				continue
			}
			res.TagCounts[tag]++
			if res.TagProblems != nil {
				res.TagProblems[tag] = append(res.TagProblems[tag], entry)
			}
		}
	}

	res.TotalSolved = res.solved.Size()
	for tag := range res.TagProblems {
		slices.SortStableFunc(res.TagProblems[tag], compareByRating)
	}
	return res
}

// compareByRating orders rated problems ascending and unrated ones last.
func compareByRating(a, b SolvedProblem) int {
	switch {
	case a.Rating == nil && b.Rating == nil:
		return 0
	case a.Rating == nil:
		return 1
	case b.Rating == nil:
		return -1
	default:
		return *a.Rating - *b.Rating
	}
}
