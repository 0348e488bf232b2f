// Package forge provides the GitHub API access layer for starlens: an
// authenticated HTTP client with retry and backoff, a token bucket
// limiter kept in sync with server-reported quota headers, and a
// paginator that walks unbounded collections page by page.
package forge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL   = "https://api.github.com"
	defaultUserAgent = "starlens"

	headerRateLimit     = "x-ratelimit-limit"
	headerRateRemaining = "x-ratelimit-remaining"
	headerRateReset     = "x-ratelimit-reset"

	// rateLimitBuffer pads server reset waits so the clock skew between
	// us and the API does not trigger a second 403.
	rateLimitBuffer = time.Second
)

// RetryConfig controls the client retry loop.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// DefaultRetryConfig returns the default retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
	}
}

// Request describes one API call relative to the client base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Accept string
	Body   any
}

// Response is the raw outcome of a successful call.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client executes authenticated requests against one API host,
// throttling through its Limiter and classifying every failure.
type Client struct {
	BaseURL    string
	Token      string
	UserAgent  string
	HTTPClient *http.Client
	Limiter    *Limiter
	Retry      RetryConfig
	Logger     *zap.Logger

	// Observer, when set, receives every rate budget the server
	// reports. Used to persist the last seen budget.
	Observer func(remaining, capacity int, resetAt time.Time)

	clock func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient builds a client with defaults filled in. The token is held
// verbatim and only ever attached to outgoing Authorization headers.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Token:      token,
		UserAgent:  defaultUserAgent,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Limiter:    DefaultLimiter(),
		Retry:      DefaultRetryConfig(),
		Logger:     zap.NewNop(),
		clock:      func() time.Time { return time.Now().UTC() },
		sleep:      sleepContext,
	}
}

// Do executes the request, retrying transient failures. It returns on
// success, on a non-retriable classified error, or once retries are
// exhausted (propagating the last classified error).
//
// Rate limit headers are forwarded to the limiter after every response,
// including failures: the 403 sent when the quota runs out carries the
// most accurate accounting of all.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c == nil {
		return nil, fmt.Errorf("client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	retry := c.Retry
	if retry.MaxRetries < 0 {
		retry.MaxRetries = 0
	}
	if retry.InitialBackoff <= 0 {
		retry.InitialBackoff = time.Second
	}
	if retry.Multiplier <= 1 {
		retry.Multiplier = 2.0
	}

	var lastErr *APIError
	for attempt := 0; attempt <= retry.MaxRetries; attempt++ {
		if err := c.Limiter.Acquire(ctx, 1); err != nil {
			return nil, err
		}

		resp, apiErr := c.attempt(ctx, req)
		if apiErr == nil {
			return resp, nil
		}
		lastErr = apiErr

		if !Retryable(apiErr) {
			return nil, apiErr
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if attempt == retry.MaxRetries {
			break
		}

		wait := c.retryWait(apiErr, retry, attempt)
		c.logger().Warn("retrying github request",
			zap.String("path", req.Path),
			zap.String("kind", string(apiErr.Kind)),
			zap.Duration("wait", wait),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", retry.MaxRetries))

		if err := c.sleepFn()(ctx, wait); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// attempt performs exactly one network call.
func (c *Client) attempt(ctx context.Context, req Request) (*Response, *APIError) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, &APIError{Kind: KindUnknown, Message: err.Error(), Err: err}
	}

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return nil, Classify(nil, nil, err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	c.observeRateHeaders(resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Classify(nil, nil, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
	}

	return nil, Classify(resp, body, nil)
}

func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := base + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	accept := req.Accept
	if accept == "" {
		accept = "application/vnd.github.v3+json"
	}
	httpReq.Header.Set("Accept", accept)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if agent := strings.TrimSpace(c.UserAgent); agent != "" {
		httpReq.Header.Set("User-Agent", agent)
	}
	if token := strings.TrimSpace(c.Token); token != "" {
		httpReq.Header.Set("Authorization", "token "+token)
	}

	return httpReq, nil
}

// observeRateHeaders feeds server-reported quota into the limiter so
// local accounting tracks the authoritative view. Missing headers mean
// no update, never an error.
func (c *Client) observeRateHeaders(header http.Header) {
	remaining, capacity, resetAt, ok := parseRateHeaders(header)
	if !ok {
		return
	}

	c.Limiter.Observe(remaining, capacity, resetAt)
	if c.Observer != nil {
		c.Observer(remaining, capacity, resetAt)
	}
}

func parseRateHeaders(header http.Header) (remaining, capacity int, resetAt time.Time, ok bool) {
	if header == nil {
		return 0, 0, time.Time{}, false
	}

	capValue := strings.TrimSpace(header.Get(headerRateLimit))
	remValue := strings.TrimSpace(header.Get(headerRateRemaining))
	if capValue == "" || remValue == "" {
		return 0, 0, time.Time{}, false
	}

	capacity, err := strconv.Atoi(capValue)
	if err != nil || capacity <= 0 {
		return 0, 0, time.Time{}, false
	}
	remaining, err = strconv.Atoi(remValue)
	if err != nil {
		return 0, 0, time.Time{}, false
	}

	if reset, found := resetHeader(header); found {
		resetAt = reset
	}
	return remaining, capacity, resetAt, true
}

// retryWait picks the pause before the next attempt. Rate limit errors
// wait for the server reset when known; everything else backs off
// exponentially with jitter.
func (c *Client) retryWait(apiErr *APIError, retry RetryConfig, attempt int) time.Duration {
	if apiErr.Kind == KindRateLimited {
		if !apiErr.ResetAt.IsZero() {
			if wait := apiErr.ResetAt.Sub(c.now()) + rateLimitBuffer; wait > 0 {
				return clampWait(wait, retry.MaxBackoff)
			}
		}
		if apiErr.RetryAfter > 0 {
			return clampWait(apiErr.RetryAfter+rateLimitBuffer, retry.MaxBackoff)
		}
	}

	backoff := float64(retry.InitialBackoff) * math.Pow(retry.Multiplier, float64(attempt))
	if retry.MaxBackoff > 0 && backoff > float64(retry.MaxBackoff) {
		backoff = float64(retry.MaxBackoff)
	}

	// ±10% jitter to avoid thundering herd
	jitter := backoff * 0.1 * (2*float64(c.now().UnixNano()%100)/100 - 1)
	return time.Duration(backoff + jitter)
}

func clampWait(wait, ceiling time.Duration) time.Duration {
	if ceiling > 0 && wait > ceiling {
		return ceiling
	}
	return wait
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (c *Client) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

func (c *Client) now() time.Time {
	if c.clock != nil {
		return c.clock()
	}
	return time.Now().UTC()
}

func (c *Client) sleepFn() func(ctx context.Context, d time.Duration) error {
	if c.sleep != nil {
		return c.sleep
	}
	return sleepContext
}
