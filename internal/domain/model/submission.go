// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strconv"
)

// VerdictAccepted is the only verdict that counts as solved.
const VerdictAccepted = "OK"

const problemURLFormat = "https://codeforces.com/problemset/problem/%d/%s"

// Submission is a single judged attempt as reported by the judge.
type Submission struct {
	Verdict string   `json:"verdict"`
	Problem *Problem `json:"problem,omitempty"` // nil when the judge omits it
}

// Accepted reports whether the submission solved its problem.
func (s Submission) Accepted() bool {
	return s.Verdict == VerdictAccepted && s.Problem != nil
}

// Problem is a judge problem. Rating is nil for unrated problems.
type Problem struct {
	ContestID int      `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Rating    *int     `json:"rating,omitempty"`
	Tags      []string `json:"tags"`
}

// Key returns the identity of the problem.
func (p Problem) Key() ProblemKey {
	return ProblemKey{ContestID: p.ContestID, Index: p.Index}
}

// URL returns the public problem statement link.
func (p Problem) URL() string {
	return fmt.Sprintf(problemURLFormat, p.ContestID, p.Index)
}

// HasTag reports whether the problem carries any of the given tags.
func (p Problem) HasTag(tags map[string]struct{}) bool {
	for _, t := range p.Tags {
		if _, ok := tags[t]; ok {
			return true
		}
	}
	return false
}

// ProblemKey uniquely identifies a problem across submissions.
type ProblemKey struct {
	ContestID int
	Index     string
}

// String renders the key as "<contest>-<index>".
func (k ProblemKey) String() string {
	return strconv.Itoa(k.ContestID) + "-" + k.Index
}

// Rated returns a pointer to r, for building rated problems.
func Rated(r int) *int {
	return &r
}
