// Package ladder builds rating-banded practice ladders from the problem catalog.
package ladder

import (
	"cmp"
	"slices"

	"github.com/okian/cpstats/internal/domain/model"
)

// DefaultSize is the number of problems in a ladder.
const DefaultSize = 100

// Ladder is a named inclusive rating band.
type Ladder struct {
	ID        string `json:"id"`
	MinRating int    `json:"minRating"`
	MaxRating int    `json:"maxRating"`
}

var ladders = []Ladder{ //nolint:gochecknoglobals // fixed ladder table
	{ID: "div2a", MinRating: 800, MaxRating: 1100},
	{ID: "div2b", MinRating: 1100, MaxRating: 1300},
	{ID: "div2c", MinRating: 1300, MaxRating: 1500},
	{ID: "div2d", MinRating: 1500, MaxRating: 1800},
	{ID: "div2e", MinRating: 1800, MaxRating: 2100},
}

// All returns every known ladder.
func All() []Ladder {
	return slices.Clone(ladders)
}

// Lookup finds a ladder by id.
func Lookup(id string) (Ladder, bool) {
	for _, l := range ladders {
		if l.ID == id {
			return l, true
		}
	}
	return Ladder{}, false
}

// Entry is a ladder problem with the user's solved mark.
type Entry struct {
	model.Problem
	URL    string `json:"url"`
	Solved bool   `json:"solved"`
}

// Build selects the catalog problems in l's band, oldest contests first,
// and marks those solved reports as solved. size <= 0 selects DefaultSize.
func Build(l Ladder, catalog []model.Problem, solved func(model.ProblemKey) bool, size int) []Entry {
	if size <= 0 {
		size = DefaultSize
	}

	picked := make([]model.Problem, 0, size)
	for _, p := range catalog {
		if p.Rating != nil && *p.Rating >= l.MinRating && *p.Rating <= l.MaxRating {
			picked = append(picked, p)
		}
	}
	slices.SortStableFunc(picked, func(a, b model.Problem) int {
		return cmp.Compare(a.ContestID, b.ContestID)
	})
	if len(picked) > size {
		picked = picked[:size]
	}

	out := make([]Entry, len(picked))
	for i, p := range picked {
		out[i] = Entry{
			Problem: p,
			URL:     p.URL(),
			Solved:  solved != nil && solved(p.Key()),
		}
	}
	return out
}
