// ABOUTME: HTTP client used to fetch OPDS feeds and cover images
// ABOUTME: Retries busy or failing catalog servers with backoff and negotiates Atom content

package standard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"bookshelf-api/core/interfaces"
)

const (
	maxAttempts = 3
	userAgent   = "BookshelfAPI/1.0"

	baseBackoff = 100 * time.Millisecond

	// maxRetryAfter caps how long a Retry-After header can stall a fetch
	maxRetryAfter = 5 * time.Second

	// AcceptFeed prefers Atom but accepts any XML flavor a catalog server may answer with
	AcceptFeed = "application/atom+xml, application/xml, text/xml, */*;q=0.1"
)

// StandardHTTPClient implements interfaces.HTTPClient on net/http
type StandardHTTPClient struct {
	client *http.Client
}

// NewStandardHTTPClient creates a new HTTP client with the specified timeout
func NewStandardHTTPClient(timeout time.Duration) *StandardHTTPClient {
	return NewStandardHTTPClientWithTransport(timeout, nil)
}

// NewStandardHTTPClientWithTransport creates a client that sends requests
// through transport, e.g. a logging round tripper. Nil uses the default.
func NewStandardHTTPClientWithTransport(timeout time.Duration, transport http.RoundTripper) *StandardHTTPClient {
	return &StandardHTTPClient{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Get fetches url, retrying transport errors, 429 and 5xx responses. The
// last response is returned as is once attempts run out.
func (c *StandardHTTPClient) Get(ctx context.Context, url string) (interfaces.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", AcceptFeed)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if waitErr := sleep(ctx, backoff(attempt)); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		if !retryable(resp.StatusCode) || attempt == maxAttempts-1 {
			return wrap(resp), nil
		}

		delay := retryAfter(resp.Header.Get("Retry-After"), backoff(attempt))
		resp.Body.Close()
		lastErr = fmt.Errorf("server returned %d", resp.StatusCode)

		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// Post sends body as JSON. It is not retried.
func (c *StandardHTTPClient) Post(ctx context.Context, url string, body io.Reader) (interfaces.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	return wrap(resp), nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// backoff doubles from baseBackoff: 100ms, 200ms, 400ms
func backoff(attempt int) time.Duration {
	return baseBackoff << attempt
}

// retryAfter reads a delay in seconds, falling back to def
func retryAfter(header string, def time.Duration) time.Duration {
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return def
	}
	return min(time.Duration(secs)*time.Second, maxRetryAfter)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func wrap(resp *http.Response) *httpResponse {
	return &httpResponse{
		statusCode: resp.StatusCode,
		body:       resp.Body,
		headers:    resp.Header,
	}
}

// httpResponse implements interfaces.Response
type httpResponse struct {
	statusCode int
	body       io.ReadCloser
	headers    http.Header
}

func (r *httpResponse) StatusCode() int {
	return r.statusCode
}

func (r *httpResponse) Body() io.ReadCloser {
	return r.body
}

// Header looks up key case-insensitively
func (r *httpResponse) Header(key string) string {
	return r.headers.Get(key)
}
