// Package codeforces is a client for the Codeforces public API.
package codeforces

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/okian/cpstats/internal/adapters/judge"
	"github.com/okian/cpstats/internal/domain/model"
)

// Name labels this judge in metrics and logs.
const Name = "codeforces"

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://codeforces.com/api"

const (
	statusOK           = "OK"
	defaultSubmissions = 10_000
	unratedRank        = "Unrated"
	endpointUserInfo   = "user.info"
	endpointUserRating = "user.rating"
	endpointUserStatus = "user.status"
	endpointProblemset = "problemset.problems"
)

// envelope is the wrapper around every API response.
type envelope[T any] struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Result  T      `json:"result"`
}

type user struct {
	Handle     string `json:"handle"`
	Rating     int    `json:"rating"`
	MaxRating  int    `json:"maxRating"`
	Rank       string `json:"rank"`
	TitlePhoto string `json:"titlePhoto"`
}

type problemset struct {
	Problems []model.Problem `json:"problems"`
}

// Client reads users, submissions and problems from Codeforces.
type Client struct {
	http            *judge.Client
	submissionCount int
}

// NewClient creates a Codeforces client. count caps user.status and
// defaults to 10000 when non-positive.
func NewClient(baseURL string, count int, opts ...judge.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if count <= 0 {
		count = defaultSubmissions
	}
	return &Client{
		http:            judge.NewClient(Name, baseURL, opts...),
		submissionCount: count,
	}
}

// UserInfo returns the profile of handle. A non-OK status is ErrNotFound
// even when Codeforces answers with HTTP 400.
func (c *Client) UserInfo(ctx context.Context, handle string) (model.UserInfo, error) {
	var env envelope[[]user]
	if err := c.get(ctx, endpointUserInfo, url.Values{"handles": {handle}}, &env); err != nil {
		return model.UserInfo{}, err
	}
	if env.Status != statusOK || len(env.Result) == 0 {
		return model.UserInfo{}, fmt.Errorf("%w: %s: %s", judge.ErrNotFound, handle, env.Comment)
	}

	u := env.Result[0]
	return model.UserInfo{
		Handle:    u.Handle,
		Rating:    u.Rating,
		MaxRating: u.MaxRating,
		Rank:      capitalizeRank(u.Rank),
		Avatar:    u.TitlePhoto,
	}, nil
}

// RatingHistory returns the rated contests of handle, oldest first.
func (c *Client) RatingHistory(ctx context.Context, handle string) ([]model.RatingChange, error) {
	var env envelope[[]model.RatingChange]
	if err := c.get(ctx, endpointUserRating, url.Values{"handle": {handle}}, &env); err != nil {
		return nil, err
	}
	if env.Status != statusOK {
		return nil, fmt.Errorf("%w: %s: %s", judge.ErrUpstream, endpointUserRating, env.Comment)
	}
	return env.Result, nil
}

// Submissions returns up to the configured count of handle's submissions.
func (c *Client) Submissions(ctx context.Context, handle string) ([]model.Submission, error) {
	q := url.Values{
		"handle": {handle},
		"from":   {"1"},
		"count":  {strconv.Itoa(c.submissionCount)},
	}
	var env envelope[[]model.Submission]
	if err := c.get(ctx, endpointUserStatus, q, &env); err != nil {
		return nil, err
	}
	if env.Status != statusOK {
		return nil, fmt.Errorf("%w: %s: %s", judge.ErrUpstream, endpointUserStatus, env.Comment)
	}
	return env.Result, nil
}

// Problemset returns the global problem catalog.
func (c *Client) Problemset(ctx context.Context) ([]model.Problem, error) {
	var env envelope[problemset]
	if err := c.get(ctx, endpointProblemset, nil, &env); err != nil {
		return nil, err
	}
	if env.Status != statusOK {
		return nil, fmt.Errorf("%w: %s: %s", judge.ErrUpstream, endpointProblemset, env.Comment)
	}
	return env.Result.Problems, nil
}

// get fetches a method and decodes its envelope. Codeforces reports
// failures in the body, so 4xx bodies are decoded too.
func (c *Client) get(ctx context.Context, method string, q url.Values, out any) error {
	resp, err := c.http.Get(ctx, method, "/"+method, q)
	if err != nil {
		return err
	}
	if resp.Transient() {
		return resp.StatusError()
	}
	if err := resp.Decode(out); err != nil {
		if !resp.OK() {
			return resp.StatusError()
		}
		return err
	}
	return nil
}

func capitalizeRank(rank string) string {
	if rank == "" {
		return unratedRank
	}
	r := []rune(rank)
	r[0] = unicode.ToUpper(r[0])
	return strings.TrimSpace(string(r))
}
