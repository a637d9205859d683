package agora

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/agorahq/agora-go/internal/api"
)

// ManagementService wraps the organization and agent management routes
// under /api.
type ManagementService struct {
	*service
}

// Organization is a group of agents sharing wallets and permissions.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"organization_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Agent is a participant acting on behalf of an organization.
type Agent struct {
	ID             string    `json:"id"`
	Name           string    `json:"agent_name"`
	OrganizationID string    `json:"organization_id"`
	IsAdmin        bool      `json:"is_admin"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// Registration is the result of creating a new organization with its
// initial agent. AccessToken, when present, authenticates the new agent.
type Registration struct {
	Organization Organization `json:"organization"`
	Agent        Agent        `json:"agent"`
	AccessToken  string       `json:"access_token"`
}

// CreateAgentsResult pairs the created agents with their one-time invite
// tokens, index-aligned.
type CreateAgentsResult struct {
	Agents       []Agent  `json:"agents"`
	InviteTokens []string `json:"invite_tokens"`
}

// Register creates a new organization with an initial agent. It is an
// unauthenticated route; pass the returned access token to
// Client.SetToken to act as the new agent.
//
// POST /api/organizations
func (s *ManagementService) Register(ctx context.Context, organizationName, agentName string) (*Registration, error) {
	body := map[string]string{
		"organization_name": organizationName,
		"agent_name":        agentName,
	}
	var result Registration
	if err := s.post(ctx, api.OrganizationsPath(), nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListOrganizations returns the organizations visible to the current agent.
//
// GET /api/organizations
func (s *ManagementService) ListOrganizations(ctx context.Context) ([]Organization, error) {
	var result []Organization
	if err := s.get(ctx, api.OrganizationsPath(), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetOrganization returns a specific organization.
//
// GET /api/organizations/{organization_id}
func (s *ManagementService) GetOrganization(ctx context.Context, organizationID string) (*Organization, error) {
	var result Organization
	if err := s.get(ctx, api.OrganizationsPath(url.PathEscape(organizationID)), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateOrganizationName renames an organization.
//
// PUT /api/organizations/{organization_id}/name
func (s *ManagementService) UpdateOrganizationName(ctx context.Context, organizationID, newName string) (*Organization, error) {
	body := map[string]string{"organization_name": newName}
	var result Organization
	path := api.OrganizationsPath(url.PathEscape(organizationID), "name")
	if err := s.put(ctx, path, nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeactivateOrganization soft-deletes an organization.
//
// DELETE /api/organizations/{organization_id}
func (s *ManagementService) DeactivateOrganization(ctx context.Context, organizationID string) error {
	return s.delete(ctx, api.OrganizationsPath(url.PathEscape(organizationID)), nil)
}

// ListAgents returns the agents of an organization.
//
// GET /api/organizations/{organization_id}/agents
func (s *ManagementService) ListAgents(ctx context.Context, organizationID string) ([]Agent, error) {
	var result []Agent
	path := api.OrganizationsPath(url.PathEscape(organizationID), "agents")
	if err := s.get(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateAgent creates a single new agent in the organization.
func (s *ManagementService) CreateAgent(ctx context.Context, organizationID, agentName string) (*CreateAgentsResult, error) {
	return s.CreateAgents(ctx, organizationID, []string{agentName})
}

// CreateAgents creates multiple agents in the organization (admin only).
//
// POST /api/organizations/{organization_id}/agents
func (s *ManagementService) CreateAgents(ctx context.Context, organizationID string, agentNames []string) (*CreateAgentsResult, error) {
	body := map[string][]string{"agent_names": agentNames}
	var result CreateAgentsResult
	path := api.OrganizationsPath(url.PathEscape(organizationID), "agents")
	if err := s.post(ctx, path, nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetAgent returns an agent by ID.
//
// GET /api/agents/{agent_id}
func (s *ManagementService) GetAgent(ctx context.Context, agentID string) (*Agent, error) {
	var result Agent
	if err := s.get(ctx, api.AgentsPath(url.PathEscape(agentID)), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateAgentName renames an agent.
//
// PUT /api/agents/{agent_id}/name
func (s *ManagementService) UpdateAgentName(ctx context.Context, agentID, newName string) (*Agent, error) {
	body := map[string]string{"agent_name": newName}
	var result Agent
	path := api.AgentsPath(url.PathEscape(agentID), "name")
	if err := s.put(ctx, path, nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateAgentAdminStatus sets an agent's admin flag.
//
// PUT /api/agents/{agent_id}/admin
func (s *ManagementService) UpdateAgentAdminStatus(ctx context.Context, agentID string, isAdmin bool) (*Agent, error) {
	body := map[string]bool{"is_admin": isAdmin}
	var result Agent
	path := api.AgentsPath(url.PathEscape(agentID), "admin")
	if err := s.put(ctx, path, nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeactivateAgent soft-deletes an agent.
//
// DELETE /api/agents/{agent_id}
func (s *ManagementService) DeactivateAgent(ctx context.Context, agentID string) error {
	return s.delete(ctx, api.AgentsPath(url.PathEscape(agentID)), nil)
}

// Raw is an escape hatch for unwrapped management endpoints. path is
// relative to /api unless it already starts with /api/.
func (s *ManagementService) Raw(ctx context.Context, method, path string, query url.Values, body, result any) error {
	if !isAbsoluteAPIPath(path) {
		path = api.APIPath(path)
	}
	return s.do(ctx, method, path, query, body, result)
}

func isAbsoluteAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}
