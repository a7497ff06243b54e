package coach

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/okian/cpstats/internal/domain/model"
)

// Level is a coarse LeetCode experience level.
type Level string

// Levels.
const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Tag tiers.
const (
	TierFundamental  = "fundamental"
	TierIntermediate = "intermediate"
	TierAdvanced     = "advanced"
)

const (
	leetCodeWeakTags       = 6
	leetCodeTopicCount     = 5
	leetCodeDistribution   = 15
	defaultMediumGoalStep  = 25
	defaultHardGoalStep    = 10
	leetCodeTagURLTemplate = "https://leetcode.com/tag/%s/"
)

var importantTags = map[string][]string{ //nolint:gochecknoglobals // fixed tier table
	TierFundamental:  {"array", "string", "hash-table", "math", "sorting", "greedy", "binary-search", "two-pointers"},
	TierIntermediate: {"dynamic-programming", "depth-first-search", "breadth-first-search", "backtracking", "stack", "queue", "linked-list", "tree", "graph", "sliding-window", "prefix-sum"},
	TierAdvanced:     {"segment-tree", "trie", "union-find", "topological-sort", "bit-manipulation", "monotonic-stack", "divide-and-conquer"},
}

// LevelFor classifies a user by medium and hard solved counts.
func LevelFor(medium, hard int) Level {
	switch {
	case medium > 150 || hard > 50:
		return LevelAdvanced
	case medium > 50 || hard > 10:
		return LevelIntermediate
	default:
		return LevelBeginner
	}
}

// RelevantTags returns the important tags worth checking at level.
func RelevantTags(level Level) []string {
	switch level {
	case LevelIntermediate:
		return slices.Concat(importantTags[TierFundamental], importantTags[TierIntermediate])
	case LevelAdvanced:
		return slices.Concat(importantTags[TierIntermediate], importantTags[TierAdvanced])
	default:
		return slices.Clone(importantTags[TierFundamental])
	}
}

// TagStat is a solved count for one tag with its tier.
type TagStat struct {
	model.LeetCodeTagCount
	Tier string `json:"tier"`
}

// TopicRecommendation suggests practice on one topic.
type TopicRecommendation struct {
	Topic          string `json:"topic"`
	Difficulty     string `json:"difficulty"`
	URL            string `json:"url"`
	SolvedCount    int    `json:"solvedCount"`
	SuggestedCount int    `json:"suggestedCount"`
}

// LeetCodeReport is the coaching analysis for a LeetCode user.
type LeetCodeReport struct {
	ACStats          map[string]int        `json:"acStats"`
	TotalStats       map[string]int        `json:"totalStats"`
	WeakTags         []string              `json:"weakTags"`
	Recommendations  []TopicRecommendation `json:"recommendations"`
	TagDistribution  []TagStat             `json:"tagDistribution"`
	AIAdvice         string                `json:"aiAdvice"`
	AdviceSource     string                `json:"adviceSource"`
	UserLevel        Level                 `json:"userLevel"`
	ContestRating    *int                  `json:"contestRating"`
	AttendedContests int                   `json:"attendedContests"`

	username     string
	targetMedium int
	targetHard   int
}

// AnalyzeLeetCode builds the report without advice. Non-positive goals
// default to the current count plus a fixed step.
func AnalyzeLeetCode(username string, p model.LeetCodeProfile, goalMedium, goalHard int) LeetCodeReport {
	r := LeetCodeReport{username: username}
	user := p.MatchedUser
	if user == nil {
		user = &model.LeetCodeUser{}
	}

	r.ACStats = model.Counts(user.SubmitStats.ACSubmissionNum)
	r.TotalStats = model.Counts(user.SubmitStats.TotalSubmissionNum)

	all := make([]TagStat, 0)
	for _, t := range user.TagProblemCounts.Fundamental {
		all = append(all, TagStat{LeetCodeTagCount: t, Tier: TierFundamental})
	}
	for _, t := range user.TagProblemCounts.Intermediate {
		all = append(all, TagStat{LeetCodeTagCount: t, Tier: TierIntermediate})
	}
	for _, t := range user.TagProblemCounts.Advanced {
		all = append(all, TagStat{LeetCodeTagCount: t, Tier: TierAdvanced})
	}
	solvedBySlug := make(map[string]int, len(all))
	for _, t := range all {
		solvedBySlug[t.TagSlug] = t.ProblemsSolved
	}

	medium, hard := r.ACStats["Medium"], r.ACStats["Hard"]
	r.UserLevel = LevelFor(medium, hard)

	relevant := RelevantTags(r.UserLevel)
	slices.SortStableFunc(relevant, func(a, b string) int {
		return cmp.Compare(solvedBySlug[a], solvedBySlug[b])
	})
	r.WeakTags = relevant[:min(leetCodeWeakTags, len(relevant))]

	r.Recommendations = make([]TopicRecommendation, 0, leetCodeTopicCount)
	for _, slug := range r.WeakTags[:min(leetCodeTopicCount, len(r.WeakTags))] {
		difficulty, suggested := topicBand(slug)
		r.Recommendations = append(r.Recommendations, TopicRecommendation{
			Topic:          humanize(slug),
			Difficulty:     difficulty,
			URL:            fmt.Sprintf(leetCodeTagURLTemplate, slug),
			SolvedCount:    solvedBySlug[slug],
			SuggestedCount: suggested,
		})
	}

	slices.SortStableFunc(all, func(a, b TagStat) int {
		return cmp.Compare(b.ProblemsSolved, a.ProblemsSolved)
	})
	r.TagDistribution = all[:min(leetCodeDistribution, len(all))]

	if c := p.ContestRanking; c != nil {
		r.AttendedContests = c.AttendedContestsCount
		if c.Rating > 0 {
			rating := int(math.Round(c.Rating))
			r.ContestRating = &rating
		}
	}

	r.targetMedium = goalMedium
	if r.targetMedium <= 0 {
		r.targetMedium = medium + defaultMediumGoalStep
	}
	r.targetHard = goalHard
	if r.targetHard <= 0 {
		r.targetHard = hard + defaultHardGoalStep
	}
	return r
}

func topicBand(slug string) (string, int) {
	switch {
	case slices.Contains(importantTags[TierFundamental], slug):
		return "Easy/Medium", 20
	case slices.Contains(importantTags[TierIntermediate], slug):
		return "Medium", 15
	default:
		return "Medium/Hard", 10
	}
}

// LeetCodePrompt builds the LLM prompt for a 30-day LeetCode plan.
func LeetCodePrompt(r LeetCodeReport) Prompt {
	rating := "N/A"
	if r.ContestRating != nil {
		rating = fmt.Sprint(*r.ContestRating)
	}
	user := fmt.Sprintf(`You are a LeetCode coach for user %s.
Solved: Easy: %d, Medium: %d, Hard: %d.
Contest Rating: %s.
Weak Topics (by tag slug): %s.
Goal: Medium %d, Hard %d.

Write a concise, actionable 30-day improvement plan:
1. Which 3 topics to focus on first and why
2. Daily study routine (problems per day, difficulty mix)
3. Contest preparation tip
Keep it under 200 words, motivating, and specific.`,
		r.username, r.ACStats["Easy"], r.ACStats["Medium"], r.ACStats["Hard"],
		rating, strings.Join(r.WeakTags, ", "), r.targetMedium, r.targetHard)

	return Prompt{
		System: "You are a concise, motivating LeetCode and interview prep coach.",
		User:   user,
	}
}

// FallbackLeetCodeAdvice is the offline 30-day plan.
func FallbackLeetCodeAdvice(r LeetCodeReport) string {
	top := r.WeakTags[:min(3, len(r.WeakTags))]
	topics := make([]string, len(top))
	for i, t := range top {
		topics[i] = humanize(t)
	}
	easy, medium, hard := r.ACStats["Easy"], r.ACStats["Medium"], r.ACStats["Hard"]

	var b strings.Builder
	fmt.Fprintf(&b, "Analysis for %s: You've solved %d Easy / %d Medium / %d Hard problems.\n\n", r.username, easy, medium, hard)
	fmt.Fprintf(&b, "Priority Topics: Your weakest areas are %s. Dedicate the first 2 weeks specifically to these and solve 3-5 problems per topic before moving on.\n\n", strings.Join(topics, ", "))
	fmt.Fprintf(&b, "Daily Plan: Solve 2-3 Mediums daily. On weekends, tackle 1 Hard problem. To hit your goal, you need %d more Mediums and %d more Hards.\n\n",
		max(0, r.targetMedium-medium), max(0, r.targetHard-hard))
	b.WriteString("Contest Tip: Participate in weekly LeetCode contests every Sunday. Even if you don't finish all 4 problems, the timed pressure builds instincts that solo practice can't replicate.")
	return b.String()
}

// LeetCodeAdvice fills the report's advice. The returned error is the
// advisor failure, if any; the report always carries usable advice.
func (c *Coach) LeetCodeAdvice(ctx context.Context, r *LeetCodeReport) error {
	fallback := func() (string, string) { return FallbackLeetCodeAdvice(*r), SourceFallback }
	text, src, err := c.advise(ctx, LeetCodePrompt(*r), fallback, fallback)
	r.AIAdvice = text
	r.AdviceSource = src
	return err
}
