package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/flowgen/pkg/buildinfo"
	ferrors "github.com/matzehuels/flowgen/pkg/errors"
	"github.com/matzehuels/flowgen/pkg/observability"
)

// DefaultTimeout bounds a single HTTP exchange.
const DefaultTimeout = 60 * time.Second

// maxErrorBody caps how much of an error response is kept for messages.
const maxErrorBody = 2048

// Client performs JSON requests with retry.
// It handles retry logic and common request headers.
type Client struct {
	http     *http.Client
	headers  map[string]string
	attempts int
	delay    time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each HTTP exchange. It applies to a copy of the
// underlying *http.Client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithRetry sets the number of attempts and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(c *Client) { c.attempts, c.delay = attempts, delay }
}

// NewClient creates a Client with the given default headers.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed.
func NewClient(headers map[string]string, opts ...ClientOption) *Client {
	c := &Client{
		http:     &http.Client{Timeout: DefaultTimeout},
		headers:  headers,
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostJSON encodes body, POSTs it to url and decodes the response into v.
// Network failures and 5xx responses are retried with exponential backoff;
// other failures return immediately as *errors.Error values carrying the
// matching code.
func (c *Client) PostJSON(ctx context.Context, url string, body, v any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	err = Retry(ctx, c.attempts, c.delay, func() error {
		return c.do(ctx, url, payload, v)
	})
	var re *RetryableError
	if errors.As(err, &re) {
		return re.Err
	}
	return err
}

func (c *Client) do(ctx context.Context, url string, payload []byte, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	for k, val := range c.headers {
		req.Header.Set(k, val)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return ferrors.Wrap(ferrors.ErrCodeTimeout, ctx.Err(), "request cancelled")
		}
		return &RetryableError{Err: ferrors.Wrap(ferrors.ErrCodeNetwork, err, "request failed")}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return ferrors.Wrap(ferrors.ErrCodeNetwork, err, "decode response")
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	switch {
	case code == http.StatusTooManyRequests:
		return ferrors.Wrap(ferrors.ErrCodeRateLimited, &ferrors.RateLimitedError{RetryAfter: retryAfter(resp.Header)}, "rate limited")
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ferrors.New(ferrors.ErrCodeUnauthorized, "status %d: %s", code, bytes.TrimSpace(msg))
	case code == http.StatusNotFound:
		return ferrors.New(ferrors.ErrCodeNotFound, "status %d: %s", code, bytes.TrimSpace(msg))
	case code >= 500:
		return &RetryableError{
			Err:   ferrors.New(ferrors.ErrCodeNetwork, "status %d: %s", code, bytes.TrimSpace(msg)),
			After: retryAfter(resp.Header),
		}
	default:
		return ferrors.New(ferrors.ErrCodeInvalidInput, "status %d: %s", code, bytes.TrimSpace(msg))
	}
}
