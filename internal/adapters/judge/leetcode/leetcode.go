// Package leetcode is a client for the LeetCode GraphQL endpoint.
package leetcode

import (
	"context"
	"fmt"

	"github.com/okian/cpstats/internal/adapters/judge"
	"github.com/okian/cpstats/internal/domain/model"
)

// Name labels this judge in metrics and logs.
const Name = "leetcode"

// DefaultGraphQLURL is the public GraphQL endpoint.
const DefaultGraphQLURL = "https://leetcode.com/graphql"

const profileQuery = `
query userProfile($username: String!) {
  matchedUser(username: $username) {
    username
    profile { ranking reputation starRating userAvatar countryName }
    submitStats {
      acSubmissionNum { difficulty count }
      totalSubmissionNum { difficulty count }
    }
    tagProblemCounts {
      advanced { tagName tagSlug problemsSolved }
      intermediate { tagName tagSlug problemsSolved }
      fundamental { tagName tagSlug problemsSolved }
    }
  }
  userContestRanking(username: $username) {
    attendedContestsCount rating globalRanking topPercentage
  }
  recentAcSubmissionList(username: $username, limit: 15) {
    title titleSlug timestamp lang
  }
}`

const solvedQuery = `
query userSolved($username: String!) {
  matchedUser(username: $username) {
    submitStats { acSubmissionNum { difficulty count } }
  }
}`

type request struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type response struct {
	Data   model.LeetCodeProfile `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Client queries LeetCode user profiles.
type Client struct {
	http *judge.Client
}

// NewClient creates a LeetCode client posting to graphqlURL.
func NewClient(graphqlURL string, opts ...judge.Option) *Client {
	if graphqlURL == "" {
		graphqlURL = DefaultGraphQLURL
	}
	opts = append([]judge.Option{
		judge.WithHeader("Referer", "https://leetcode.com"),
		judge.WithHeader("Origin", "https://leetcode.com"),
	}, opts...)
	return &Client{http: judge.NewClient(Name, graphqlURL, opts...)}
}

// Profile returns the full profile of username.
func (c *Client) Profile(ctx context.Context, username string) (model.LeetCodeProfile, error) {
	return c.query(ctx, "profile", profileQuery, username)
}

// SolvedCount returns the number of accepted problems across difficulties.
func (c *Client) SolvedCount(ctx context.Context, username string) (int, error) {
	p, err := c.query(ctx, "solved", solvedQuery, username)
	if err != nil {
		return 0, err
	}
	return p.MatchedUser.SolvedCount(), nil
}

func (c *Client) query(ctx context.Context, endpoint, q, username string) (model.LeetCodeProfile, error) {
	resp, err := c.http.PostJSON(ctx, endpoint, "", request{
		Query:     q,
		Variables: map[string]string{"username": username},
	})
	if err != nil {
		return model.LeetCodeProfile{}, err
	}
	if err := resp.StatusError(); err != nil {
		return model.LeetCodeProfile{}, err
	}

	var out response
	if err := resp.Decode(&out); err != nil {
		return model.LeetCodeProfile{}, err
	}
	if len(out.Errors) > 0 {
		msg := out.Errors[0].Message
		if msg == "" {
			msg = "GraphQL error"
		}
		return model.LeetCodeProfile{}, fmt.Errorf("%w: %s", judge.ErrRejected, msg)
	}
	if out.Data.MatchedUser == nil {
		return model.LeetCodeProfile{}, fmt.Errorf("%w: %s", judge.ErrNotFound, username)
	}
	return out.Data, nil
}
