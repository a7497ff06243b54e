package smoke

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"
)

// httpClient wraps http.Client with latency measurement.
type httpClient struct {
	client *http.Client
	clock  clockwork.Clock
}

func newHTTPClient(timeout time.Duration, clock clockwork.Clock) *httpClient {
	return &httpClient{
		client: &http.Client{Timeout: timeout},
		clock:  clock,
	}
}

// get performs a GET request and reads the whole body.
func (c *httpClient) get(ctx context.Context, target string) (Call, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Call{}, fmt.Errorf("failed to create request: %w", err)
	}

	start := c.clock.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return Call{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Call{}, fmt.Errorf("failed to read response body: %w", err)
	}
	return Call{Status: resp.StatusCode, Latency: c.clock.Since(start), Body: body}, nil
}

func compareURL(base string, p Pair) string {
	q := url.Values{}
	q.Set("h1", p.A)
	q.Set("h2", p.B)
	return base + "/api/codeforces/compare?" + q.Encode()
}
