package agora

import (
	"net/http"
	"time"
)

// clientConfig holds configuration for the client, resolved once in New.
type clientConfig struct {
	baseURL     string
	token       string
	environment Environment
	envSet      bool

	httpClient *http.Client
	timeout    time.Duration
	retries    int
	retryOn    []int

	rateLimit float64
	rateBurst int

	userAgent string
}

// Option configures the client.
type Option func(*clientConfig)

// WithBaseURL sets the API base URL, taking precedence over AGORA_BASE_URL
// and the per-environment defaults. A trailing slash is stripped.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithToken sets the bearer token, taking precedence over AGORA_API_KEY.
// The token may be a JWT or an API key created via Auth.CreateAPIKey; both
// are sent as Authorization: Bearer <token>.
func WithToken(token string) Option {
	return func(c *clientConfig) {
		c.token = token
	}
}

// WithEnvironment sets the environment tag, taking precedence over AGORA_ENV.
func WithEnvironment(env Environment) Option {
	return func(c *clientConfig) {
		c.environment = env
		c.envSet = true
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets a per-request timeout. Without it no timeout applies;
// exceeding it surfaces as *TimeoutError.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithRetries sets the number of retries for requests that fail with a
// retryable status code. Default: 0 (no retries).
func WithRetries(count int) Option {
	return func(c *clientConfig) {
		c.retries = count
	}
}

// WithRetryOn sets the HTTP status codes that trigger a retry.
// Default: [408, 429, 500, 502, 503, 504]
func WithRetryOn(statusCodes []int) Option {
	return func(c *clientConfig) {
		c.retryOn = statusCodes
	}
}

// WithRateLimit throttles outgoing requests to at most rps requests per
// second with the given burst. Waiting respects the request context.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *clientConfig) {
		c.rateLimit = rps
		c.rateBurst = burst
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}
