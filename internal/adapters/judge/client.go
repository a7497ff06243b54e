// Package judge holds the HTTP plumbing shared by the judge API clients.
package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/cpstats/pkg/metrics"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultRPS          = 4
	defaultBurst        = 2
	defaultUserAgent    = "cpstats/1.0"
	defaultMaxBodyBytes = 64 << 20
)

// Upstream outcomes recorded in metrics.
const (
	outcomeOK          = "ok"
	outcomeClientError = "http_4xx"
	outcomeServerError = "http_5xx"
	outcomeThrottled   = "rate_limited"
	outcomeTimeout     = "timeout"
	outcomeError       = "error"
)

// Response is a fully read upstream response.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status.
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the body into v. Malformed bodies wrap ErrUpstream.
func (r Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrUpstream, err)
	}
	return nil
}

// StatusError maps a non-2xx status to an error kind. 404 is ErrNotFound;
// everything else, including 429, is ErrUpstream.
func (r Response) StatusError() error {
	switch {
	case r.OK():
		return nil
	case r.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: http %d", ErrNotFound, r.StatusCode)
	case r.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: rate limited by judge (http 429)", ErrUpstream)
	default:
		return fmt.Errorf("%w: http %d", ErrUpstream, r.StatusCode)
	}
}

// Transient reports statuses that never carry a usable judge verdict.
func (r Response) Transient() bool {
	return r.StatusCode == http.StatusTooManyRequests || r.StatusCode >= http.StatusInternalServerError
}

// Client performs throttled, time-bounded requests against one judge.
type Client struct {
	name         string
	baseURL      string
	httpClient   *http.Client
	limiter      *rate.Limiter
	timeout      time.Duration
	userAgent    string
	headers      http.Header
	maxBodyBytes int64
}

// NewClient creates a client for the judge called name rooted at baseURL.
func NewClient(name, baseURL string, opts ...Option) *Client {
	c := &Client{
		name:         name,
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{},
		limiter:      rate.NewLimiter(rate.Limit(defaultRPS), defaultBurst),
		timeout:      defaultTimeout,
		userAgent:    defaultUserAgent,
		headers:      make(http.Header),
		maxBodyBytes: defaultMaxBodyBytes,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the judge name.
func (c *Client) Name() string {
	return c.name
}

// Get issues a GET for path with query. endpoint labels metrics.
func (c *Client) Get(ctx context.Context, endpoint, path string, query url.Values) (Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.do(ctx, endpoint, http.MethodGet, u, nil)
}

// PostJSON issues a POST of body encoded as JSON.
func (c *Client) PostJSON(ctx context.Context, endpoint, path string, body any) (Response, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, endpoint, http.MethodPost, c.baseURL+path, buf)
}

func (c *Client) do(ctx context.Context, endpoint, method, rawURL string, body []byte) (Response, error) {
	start := time.Now()
	outcome := outcomeError
	defer func() {
		metrics.RecordUpstreamRequest(c.name, endpoint, outcome, float64(time.Since(start).Milliseconds()))
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		outcome = outcomeTimeout
		return Response{}, fmt.Errorf("%w: %s %s: wait for rate limiter: %w", ErrUpstream, c.name, endpoint, err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %s %s: build request: %w", ErrUpstream, c.name, endpoint, err)
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = outcomeTimeout
		}
		return Response{}, fmt.Errorf("%w: %s %s: %w", ErrUpstream, c.name, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = outcomeTimeout
		}
		return Response{}, fmt.Errorf("%w: %s %s: read body: %w", ErrUpstream, c.name, endpoint, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		outcome = outcomeThrottled
	case resp.StatusCode >= http.StatusInternalServerError:
		outcome = outcomeServerError
	case resp.StatusCode >= http.StatusBadRequest:
		outcome = outcomeClientError
	default:
		outcome = outcomeOK
	}
	return Response{StatusCode: resp.StatusCode, Body: data}, nil
}
