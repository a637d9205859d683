package agora

import (
	"context"
	"net/url"
	"os"
	"sync"

	"golang.org/x/time/rate"

	"github.com/agorahq/agora-go/internal/api"
)

// Client is the main entry point for talking to the Agora backend. It owns
// its HTTP transport; clients are safe for concurrent use but transports
// are not shared between instances.
type Client struct {
	apiClient   *api.Client
	environment Environment

	mu     sync.RWMutex
	closed bool

	// Resource namespaces.
	Market     *MarketService
	Library    *LibraryService
	Management *ManagementService
	Auth       *AuthService
}

// New creates a new Agora client. Configuration precedence is explicit
// option > environment variable > built-in default; see the Env* constants
// for the recognized variables. The environment is read once here, never
// during requests.
//
// A token is optional: unauthenticated clients can still call public
// routes such as health checks and registration, and authenticated routes
// fail with ErrUnauthorized.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if !cfg.envSet {
		cfg.environment = ParseEnvironment(os.Getenv(EnvEnvironment))
	}

	baseURL, err := resolveBaseURL(cfg.baseURL, cfg.environment)
	if err != nil {
		return nil, err
	}

	token := cfg.token
	if token == "" {
		token = os.Getenv(EnvAPIKey)
	}

	apiClient, err := buildAPIClient(baseURL, token, cfg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		apiClient:   apiClient,
		environment: cfg.environment,
	}

	svc := &service{client: c}
	c.Market = &MarketService{service: svc}
	c.Library = &LibraryService{service: svc}
	c.Management = &ManagementService{service: svc}
	c.Auth = &AuthService{service: svc}

	return c, nil
}

// buildAPIClient creates and configures the transport from the resolved config.
func buildAPIClient(baseURL, token string, cfg *clientConfig) (*api.Client, error) {
	apiOpts := []api.Option{}
	if token != "" {
		apiOpts = append(apiOpts, api.WithToken(token))
	}
	if cfg.httpClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(cfg.httpClient))
	}
	if cfg.timeout > 0 {
		apiOpts = append(apiOpts, api.WithTimeout(cfg.timeout))
	}
	if cfg.retries > 0 {
		retry := api.NewRetryConfig(cfg.retries)
		if len(cfg.retryOn) > 0 {
			retry.RetryableStatuses = cfg.retryOn
		}
		apiOpts = append(apiOpts, api.WithRetry(retry))
	}
	if cfg.rateLimit > 0 {
		burst := cfg.rateBurst
		if burst < 1 {
			burst = 1
		}
		limiter := rate.NewLimiter(rate.Limit(cfg.rateLimit), burst)
		apiOpts = append(apiOpts, api.WithRateLimiter(limiter))
	}
	if cfg.userAgent != "" {
		apiOpts = append(apiOpts, api.WithUserAgent(cfg.userAgent))
	}

	return api.New(baseURL, apiOpts...)
}

// BaseURL returns the resolved, normalized base URL.
func (c *Client) BaseURL() string {
	return c.apiClient.BaseURL()
}

// Environment returns the resolved environment tag.
func (c *Client) Environment() Environment {
	return c.environment
}

// SetToken replaces the bearer token used for subsequent requests, e.g.
// after registration returns an access token or Auth.CreateAPIKey returns
// a fresh key.
func (c *Client) SetToken(token string) {
	c.apiClient.SetToken(token)
}

// ClearToken removes the bearer token; subsequent requests are unauthenticated.
func (c *Client) ClearToken() {
	c.apiClient.ClearToken()
}

// checkClosed returns ErrClientClosed if the client has been closed.
func (c *Client) checkClosed() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}

// Close marks the client closed and releases the transport's idle
// connections. In-flight requests are not interrupted; cancel their
// contexts to abort them.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.apiClient.CloseIdleConnections()
	return nil
}

// service carries the shared request helpers used by the resource
// namespaces: closed-state checking and public error wrapping around the
// low-level transport.
type service struct {
	client *Client
}

func (s *service) get(ctx context.Context, path string, query url.Values, result any) error {
	if err := s.client.checkClosed(); err != nil {
		return err
	}
	return wrapError(s.client.apiClient.Get(ctx, path, query, result))
}

func (s *service) post(ctx context.Context, path string, query url.Values, body, result any) error {
	if err := s.client.checkClosed(); err != nil {
		return err
	}
	return wrapError(s.client.apiClient.Post(ctx, path, query, body, result))
}

func (s *service) put(ctx context.Context, path string, query url.Values, body, result any) error {
	if err := s.client.checkClosed(); err != nil {
		return err
	}
	return wrapError(s.client.apiClient.Put(ctx, path, query, body, result))
}

func (s *service) delete(ctx context.Context, path string, query url.Values) error {
	if err := s.client.checkClosed(); err != nil {
		return err
	}
	return wrapError(s.client.apiClient.Delete(ctx, path, query))
}

func (s *service) do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	if err := s.client.checkClosed(); err != nil {
		return err
	}
	return wrapError(s.client.apiClient.Do(ctx, method, path, query, body, result))
}
