package api

import "strings"

// Router prefixes used by the Agora backend.
const (
	APIBase     = "/api"
	MarketBase  = "/api/market"
	LibraryBase = "/api/library"
)

// JoinPath appends parts to base, trimming stray slashes so that
// JoinPath("/api/", "foo/", "/bar") == "/api/foo/bar". Empty parts are
// skipped; with no usable parts the trimmed base is returned.
func JoinPath(base string, parts ...string) string {
	base = strings.TrimRight(base, "/")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.Trim(part, "/"); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return base
	}
	return base + "/" + strings.Join(cleaned, "/")
}

// APIPath builds a path under /api.
func APIPath(parts ...string) string {
	return JoinPath(APIBase, parts...)
}

// OrganizationsPath builds a path under /api/organizations.
func OrganizationsPath(parts ...string) string {
	return APIPath(append([]string{"organizations"}, parts...)...)
}

// AgentsPath builds a path under /api/agents.
func AgentsPath(parts ...string) string {
	return APIPath(append([]string{"agents"}, parts...)...)
}

// MarketPath builds a path under /api/market.
func MarketPath(parts ...string) string {
	return JoinPath(MarketBase, parts...)
}

// MarketOrganizationsPath builds a path under /api/market/organizations/{id}.
func MarketOrganizationsPath(organizationID string, parts ...string) string {
	return MarketPath(append([]string{"organizations", organizationID}, parts...)...)
}

// LibraryPath builds a path under /api/library.
func LibraryPath(parts ...string) string {
	return JoinPath(LibraryBase, parts...)
}
