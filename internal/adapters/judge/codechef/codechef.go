// Package codechef reads CodeChef solved counts.
package codechef

import (
	"context"
	"fmt"
	"net/url"

	"github.com/okian/cpstats/internal/adapters/judge"
)

// Name labels this judge in metrics and logs.
const Name = "codechef"

// DefaultBaseURL is the CodeChef API root.
const DefaultBaseURL = "https://www.codechef.com/api"

const browserUserAgent = "Mozilla/5.0 (compatible; cpstats/1.0)"

// Client reads CodeChef statistics.
type Client struct {
	http *judge.Client
}

// NewClient creates a CodeChef client.
func NewClient(baseURL string, opts ...judge.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	opts = append([]judge.Option{judge.WithUserAgent(browserUserAgent)}, opts...)
	return &Client{http: judge.NewClient(Name, baseURL, opts...)}
}

// SolvedCount returns the number of fully solved problems of handle.
// The count is read from fully_solved.count, then content.programSolvedCount.
func (c *Client) SolvedCount(ctx context.Context, handle string) (int, error) {
	resp, err := c.http.Get(ctx, "users", "/users/"+url.PathEscape(handle), nil)
	if err != nil {
		return 0, err
	}
	if resp.Transient() {
		return 0, resp.StatusError()
	}
	if !resp.OK() {
		return 0, fmt.Errorf("%w: %s: http %d", judge.ErrNotFound, handle, resp.StatusCode)
	}

	var body struct {
		Status      string `json:"status"`
		FullySolved *struct {
			Count *int `json:"count"`
		} `json:"fully_solved"`
		Content *struct {
			ProgramSolvedCount *int `json:"programSolvedCount"`
		} `json:"content"`
	}
	if err := resp.Decode(&body); err != nil {
		return 0, err
	}
	if body.Status != "OK" {
		return 0, fmt.Errorf("%w: %s", judge.ErrNotFound, handle)
	}

	switch {
	case body.FullySolved != nil && body.FullySolved.Count != nil:
		return *body.FullySolved.Count, nil
	case body.Content != nil && body.Content.ProgramSolvedCount != nil:
		return *body.Content.ProgramSolvedCount, nil
	}
	return 0, fmt.Errorf("%w: solved count unavailable for %s", judge.ErrUpstream, handle)
}
