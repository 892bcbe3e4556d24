// Package fetch provides the shared HTTP client used by the source
// packages. Feeds and listing APIs are flaky; a couple of automatic
// retries smooth over transient failures without the sources having to
// care.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// userAgent identifies us to upstream servers.
const userAgent = "newsdesk/1.0 (+https://github.com/abelbrown/newsdesk)"

// Client wraps retryablehttp with a timeout and User-Agent.
type Client struct {
	inner *http.Client
}

// NewClient creates a Client with the given per-request timeout.
func NewClient(timeout time.Duration) *Client {
	r := retryablehttp.NewClient()
	r.RetryMax = 2
	r.HTTPClient.Timeout = timeout
	r.Logger = nil
	return &Client{inner: r.StandardClient()}
}

// Get fetches url and returns the response body. Non-2xx statuses are
// errors. The context bounds the whole request including retries.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.inner.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: HTTP %d %s", url, resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body from %s: %w", url, err)
	}
	return body, nil
}
