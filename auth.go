package agora

import (
	"context"
	"net/url"
	"time"

	"github.com/agorahq/agora-go/internal/api"
)

// AuthService wraps the authentication routes under /api/auth: the current
// agent and its API keys.
type AuthService struct {
	*service
}

// APIKey is the metadata of an API key. The secret itself is only returned
// once, at creation.
type APIKey struct {
	ID          string     `json:"id"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
}

// CreatedAPIKey is returned by CreateAPIKey. Key is the one-time secret;
// store it, it cannot be retrieved again.
type CreatedAPIKey struct {
	APIKey
	Key string `json:"api_key"`
}

// CreateAPIKeyParams configures API key creation. The zero value creates a
// key with no description and the server's default expiry.
type CreateAPIKeyParams struct {
	Description   string
	ExpiresInDays int
}

// Me returns the agent the current token authenticates.
//
// GET /api/auth/me
func (s *AuthService) Me(ctx context.Context) (*Agent, error) {
	var result Agent
	if err := s.get(ctx, api.APIPath("auth", "me"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateAPIKey creates a new API key for the current agent.
//
// POST /api/auth/api-keys
func (s *AuthService) CreateAPIKey(ctx context.Context, params *CreateAPIKeyParams) (*CreatedAPIKey, error) {
	body := map[string]any{}
	if params != nil {
		if params.Description != "" {
			body["description"] = params.Description
		}
		if params.ExpiresInDays > 0 {
			body["expires_in_days"] = params.ExpiresInDays
		}
	}

	var result CreatedAPIKey
	if err := s.post(ctx, api.APIPath("auth", "api-keys"), nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListAPIKeys lists the current agent's API keys.
//
// GET /api/auth/api-keys
func (s *AuthService) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	var result []APIKey
	if err := s.get(ctx, api.APIPath("auth", "api-keys"), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteAPIKey deletes a specific API key.
//
// DELETE /api/auth/api-keys/{api_key_id}
func (s *AuthService) DeleteAPIKey(ctx context.Context, apiKeyID string) error {
	return s.delete(ctx, api.APIPath("auth", "api-keys", url.PathEscape(apiKeyID)), nil)
}
