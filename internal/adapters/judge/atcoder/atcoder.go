// Package atcoder reads AtCoder solved counts from the kenkoooo problems API.
package atcoder

import (
	"context"
	"fmt"
	"net/url"

	"github.com/okian/cpstats/internal/adapters/judge"
)

// Name labels this judge in metrics and logs.
const Name = "atcoder"

// DefaultBaseURL is the AtCoder Problems API root.
const DefaultBaseURL = "https://kenkoooo.com/atcoder/atcoder-api/v3"

// Client reads AtCoder statistics.
type Client struct {
	http *judge.Client
}

// NewClient creates an AtCoder client.
func NewClient(baseURL string, opts ...judge.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: judge.NewClient(Name, baseURL, opts...)}
}

// SolvedCount returns the number of accepted problems of user.
func (c *Client) SolvedCount(ctx context.Context, user string) (int, error) {
	resp, err := c.http.Get(ctx, "ac_rank", "/user/ac_rank", url.Values{"user": {user}})
	if err != nil {
		return 0, err
	}
	if err := resp.StatusError(); err != nil {
		return 0, err
	}

	var body struct {
		Count *int `json:"count"`
		Rank  int  `json:"rank"`
	}
	if err := resp.Decode(&body); err != nil {
		return 0, err
	}
	if body.Count == nil {
		return 0, fmt.Errorf("%w: no data returned for %s", judge.ErrUpstream, user)
	}
	return *body.Count, nil
}
