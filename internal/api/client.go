package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/agorahq/agora-go/internal/apierrors"
)

const defaultUserAgent = "agora-go"

// Client is the low-level HTTP client for the Agora API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	retry      *RetryConfig
	limiter    *rate.Limiter

	mu    sync.RWMutex
	token string
}

// Option configures the API client.
type Option func(*Client)

// WithToken sets the bearer token attached to every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout sets the per-request timeout on the underlying HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithRetry sets the retry policy.
func WithRetry(retry *RetryConfig) Option {
	return func(c *Client) {
		c.retry = retry
	}
}

// WithRateLimiter sets a client-side rate limiter that gates every request.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a new API client. The base URL is normalized by stripping
// any trailing slash.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken replaces the bearer token used for subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken removes the bearer token; subsequent requests are sent
// without an Authorization header.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// CloseIdleConnections releases the transport's idle connections.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// Do performs an HTTP exchange against path, encoding body as JSON when
// present and decoding the response into result when non-nil. Non-2xx
// responses are returned as *apierrors.APIError; transport failures as
// *apierrors.NetworkError or *apierrors.TimeoutError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		payload = data
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	resp, err := c.send(ctx, method, reqURL, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apierrors.NetworkError{Err: err, URL: reqURL}
	}

	if resp.StatusCode >= 400 {
		return apierrors.FromResponse(resp.StatusCode, raw)
	}

	if result != nil {
		if err := json.Unmarshal(raw, result); err != nil {
			return &apierrors.DecodeError{Err: err, Body: raw}
		}
	}

	return nil
}

// send issues the request, retrying per the configured policy. The body is
// kept as bytes so each attempt gets a fresh reader.
func (c *Client) send(ctx context.Context, method, reqURL string, payload []byte) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		req, err := c.newRequest(ctx, method, reqURL, payload)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				// Caller cancellation or deadline; the transport has
				// already released the connection.
				return nil, classifyContextError(ctx.Err(), reqURL)
			}
			if isTimeout(err) {
				return nil, &apierrors.TimeoutError{Err: err, URL: reqURL}
			}
			if c.retry.RetryOnNetworkError(attempt) {
				if werr := c.retry.Wait(ctx, attempt); werr != nil {
					return nil, classifyContextError(werr, reqURL)
				}
				continue
			}
			return nil, &apierrors.NetworkError{Err: err, URL: reqURL}
		}

		if c.retry.ShouldRetry(attempt, resp.StatusCode) {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if werr := c.retry.Wait(ctx, attempt); werr != nil {
				return nil, classifyContextError(werr, reqURL)
			}
			continue
		}

		return resp, nil
	}
}

func (c *Client) newRequest(ctx context.Context, method, reqURL string, payload []byte) (*http.Request, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

func classifyContextError(err error, reqURL string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &apierrors.TimeoutError{Err: err, URL: reqURL}
	}
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values, result any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, result)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, query url.Values, body, result any) error {
	return c.Do(ctx, http.MethodPost, path, query, body, result)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, query url.Values, body, result any) error {
	return c.Do(ctx, http.MethodPut, path, query, body, result)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) error {
	return c.Do(ctx, http.MethodDelete, path, query, nil, nil)
}
