package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"naturenarrated/pkg/tracker"
	"naturenarrated/pkg/version"
)

var (
	defaultUserAgent = fmt.Sprintf("NatureNarrated/%s (trail story service)", version.Version)
)

// maxErrorBody caps how much of a failed response is kept on StatusError.
const maxErrorBody = 4096

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
}

// Client performs outbound HTTP calls with tracking and optional retries.
// Calls run concurrently; there is no per-provider queue.
type Client struct {
	httpClient *http.Client
	tracker    *tracker.Tracker
	retries    int
	baseDelay  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRetries sets how many extra attempts follow a 429, 5xx or network failure.
// Zero means a single attempt.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithBaseDelay sets the first backoff delay; later ones double.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		c.baseDelay = d
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a new Client. The tracker may be nil.
func New(t *tracker.Tracker, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 300 * time.Second},
		tracker:    t,
		baseDelay:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, u string, headers map[string]string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, u, nil, headers)
}

// Post performs a POST request with the given content type.
func (c *Client) Post(ctx context.Context, u string, body []byte, contentType string) ([]byte, error) {
	return c.PostWithHeaders(ctx, u, body, map[string]string{"Content-Type": contentType})
}

// PostWithHeaders performs a POST request with custom headers.
func (c *Client) PostWithHeaders(ctx context.Context, u string, body []byte, headers map[string]string) ([]byte, error) {
	return c.do(ctx, http.MethodPost, u, body, headers)
}

func (c *Client) do(ctx context.Context, method, u string, body []byte, headers map[string]string) ([]byte, error) {
	parsedURL, err := url.Parse(u)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	provider := normalizeProvider(parsedURL.Host)

	out, err := c.executeWithBackoff(ctx, method, u, body, headers)
	if c.tracker != nil {
		if err == nil {
			c.tracker.TrackAPISuccess(provider)
		} else {
			c.tracker.TrackAPIFailure(provider)
		}
	}
	return out, err
}

func normalizeProvider(host string) string {
	host = strings.ToLower(host)
	if i := strings.LastIndex(host, ":"); i != -1 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	switch {
	case strings.HasSuffix(host, "anthropic.com"):
		return "anthropic"
	case strings.HasSuffix(host, "googleapis.com"):
		return "gemini"
	case strings.HasSuffix(host, "elevenlabs.io"):
		return "elevenlabs"
	}
	return host
}

func newRequest(ctx context.Context, method, u string, body []byte, headers map[string]string) (*http.Request, error) {
	var rdr io.Reader = http.NoBody
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Apply User-Agent (Default if not provided)
	uaMatch := false
	for k, v := range headers {
		req.Header.Set(k, v)
		if http.CanonicalHeaderKey(k) == "User-Agent" {
			uaMatch = true
		}
	}
	if !uaMatch {
		req.Header.Set("User-Agent", defaultUserAgent)
	}
	return req, nil
}

// executeWithBackoff attempts the request, retrying with exponential backoff on retryable errors.
// A fresh request is built for each attempt so the body can be replayed.
func (c *Client) executeWithBackoff(ctx context.Context, method, u string, body []byte, headers map[string]string) ([]byte, error) {
	maxAttempts := c.retries + 1
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			sleepDur := time.Duration(math.Pow(2, float64(attempt-1))) * c.baseDelay
			select {
			case <-time.After(sleepDur):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		// Verify context is still alive before dialing
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := newRequest(ctx, method, u, body, headers)
		if err != nil {
			return nil, err
		}

		slog.Debug("Network Request", "host", req.URL.Host, "path", req.URL.Path, "attempt", attempt+1)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Context cancellation from our side is final
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("Request failed", "host", req.URL.Host, "attempt", attempt+1, "error", err)
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 400 {
			lastErr = &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), maxErrorBody)}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				slog.Warn("API Backoff", "status", resp.StatusCode, "host", req.URL.Host, "attempt", attempt+1)
				continue
			}
			return nil, lastErr
		}

		if readErr != nil {
			return nil, fmt.Errorf("read error: %w", readErr)
		}
		return data, nil
	}

	return nil, lastErr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
