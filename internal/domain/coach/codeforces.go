package coach

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/cpstats/internal/domain/scoring"
)

// DefaultRating is assumed for users without a rating.
const DefaultRating = 800

// DefaultGoalStep is added to the current rating when no goal is given.
const DefaultGoalStep = 200

const unavailableAdvice = "AI service unavailable. Focus on the recommended problems leveraging the weak tags identified above."

// CodeforcesInput is the analysis the Codeforces advice is based on.
type CodeforcesInput struct {
	Handle          string
	Current         int
	Target          int
	WeakTags        []string
	Recommendations []scoring.Recommendation
}

// Targets resolves the current and target rating from a user rating and goal.
func Targets(rating, goal int) (current, target int) {
	current = rating
	if current <= 0 {
		current = DefaultRating
	}
	target = goal
	if target <= 0 {
		target = current + DefaultGoalStep
	}
	return current, target
}

// CodeforcesPrompt builds the LLM prompt for a Codeforces training plan.
func CodeforcesPrompt(in CodeforcesInput) Prompt {
	var recs strings.Builder
	for _, r := range in.Recommendations {
		rating := 0
		if r.Rating != nil {
			rating = *r.Rating
		}
		fmt.Fprintf(&recs, "- %s (%d) [%s]\n", r.Name, rating, strings.Join(r.Tags, ", "))
	}

	user := fmt.Sprintf(`You are a competitive programming coach for user %s.
Current Rating: %d. Target: %d.

Solved Tag Distribution (Top 5 Weakest Common Tags):
%s

Recommended Problems to Solve:
%s
Provide a short, structured training plan. Explain WHY these tags strictly (2 sentences). Then give 3 validation tips for the recommended problems.`,
		in.Handle, in.Current, in.Target, strings.Join(in.WeakTags, ", "), recs.String())

	return Prompt{
		System: "You are a concise, motivating CP coach.",
		User:   user,
	}
}

// SimulatedCodeforcesAdvice is the offline advice for a Codeforces user.
func SimulatedCodeforcesAdvice(in CodeforcesInput) string {
	return fmt.Sprintf("(Simulated AI) Your analysis indicates potential gaps in: %s. "+
		"To reach %d, focus on solving problems in the %d-%d range specifically targeting these topics. "+
		"The recommended set above prioritizes these tags to balance your skill set.",
		strings.Join(in.WeakTags, ", "), in.Target, in.Current, in.Target)
}

// CodeforcesAdvice returns advice text and its source. The error is the
// advisor failure, if any; the text is always usable.
func (c *Coach) CodeforcesAdvice(ctx context.Context, in CodeforcesInput) (string, string, error) {
	return c.advise(ctx, CodeforcesPrompt(in),
		func() (string, string) { return SimulatedCodeforcesAdvice(in), SourceSimulated },
		func() (string, string) { return unavailableAdvice, SourceUnavailable },
	)
}
