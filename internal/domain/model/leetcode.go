package model

// LeetCodeProfile mirrors the data object of the LeetCode profile query.
type LeetCodeProfile struct {
	MatchedUser    *LeetCodeUser            `json:"matchedUser"`
	ContestRanking *LeetCodeContestRanking  `json:"userContestRanking"`
	RecentAC       []LeetCodeRecentAccepted `json:"recentAcSubmissionList"`
}

// LeetCodeUser is the matchedUser object.
type LeetCodeUser struct {
	Username         string            `json:"username"`
	Profile          LeetCodeUserCard  `json:"profile"`
	SubmitStats      LeetCodeStats     `json:"submitStats"`
	TagProblemCounts LeetCodeTagCounts `json:"tagProblemCounts"`
}

// LeetCodeUserCard holds public profile fields.
type LeetCodeUserCard struct {
	Ranking     int     `json:"ranking"`
	Reputation  int     `json:"reputation"`
	StarRating  float64 `json:"starRating"`
	UserAvatar  string  `json:"userAvatar"`
	CountryName string  `json:"countryName"`
}

// LeetCodeStats holds accepted and total counts per difficulty.
type LeetCodeStats struct {
	ACSubmissionNum    []DifficultyCount `json:"acSubmissionNum"`
	TotalSubmissionNum []DifficultyCount `json:"totalSubmissionNum"`
}

// DifficultyCount is a count for one difficulty ("All", "Easy", "Medium", "Hard").
type DifficultyCount struct {
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

// LeetCodeTagCounts groups solved counts by tag tier.
type LeetCodeTagCounts struct {
	Advanced     []LeetCodeTagCount `json:"advanced"`
	Intermediate []LeetCodeTagCount `json:"intermediate"`
	Fundamental  []LeetCodeTagCount `json:"fundamental"`
}

// LeetCodeTagCount is the solved count for a single tag.
type LeetCodeTagCount struct {
	TagName        string `json:"tagName"`
	TagSlug        string `json:"tagSlug"`
	ProblemsSolved int    `json:"problemsSolved"`
}

// LeetCodeContestRanking is the userContestRanking object.
type LeetCodeContestRanking struct {
	AttendedContestsCount int     `json:"attendedContestsCount"`
	Rating                float64 `json:"rating"`
	GlobalRanking         int     `json:"globalRanking"`
	TopPercentage         float64 `json:"topPercentage"`
}

// LeetCodeRecentAccepted is one entry of the recent accepted list.
type LeetCodeRecentAccepted struct {
	Title     string `json:"title"`
	TitleSlug string `json:"titleSlug"`
	Timestamp string `json:"timestamp"`
	Lang      string `json:"lang"`
}

// Counts returns the per-difficulty map of c.
func Counts(c []DifficultyCount) map[string]int {
	out := make(map[string]int, len(c))
	for _, d := range c {
		out[d.Difficulty] = d.Count
	}
	return out
}

// SolvedCount returns the accepted count across all difficulties.
func (u *LeetCodeUser) SolvedCount() int {
	if u == nil {
		return 0
	}
	return Counts(u.SubmitStats.ACSubmissionNum)["All"]
}
