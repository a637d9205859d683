package agora

import (
	"context"
	"net/url"
	"strconv"

	"github.com/agorahq/agora-go/internal/api"
)

// LibraryService wraps the library mechanics routes under /api/library.
type LibraryService struct {
	*service
}

// LibraryFile is a file stored in the library or its backing repository.
type LibraryFile struct {
	FileName    string `json:"file_name"`
	FileContent string `json:"file_content,omitempty"`
	RepoURL     string `json:"repo_url,omitempty"`
	RepoRev     string `json:"repo_rev,omitempty"`
}

// RepoOptions narrows library queries to a specific repository revision.
// The zero value means the server's default repository.
type RepoOptions struct {
	RepoURL string
	RepoRev string
}

func (o *RepoOptions) query() url.Values {
	query := url.Values{}
	if o == nil {
		return query
	}
	if o.RepoURL != "" {
		query.Set("repo_url", o.RepoURL)
	}
	if o.RepoRev != "" {
		query.Set("repo_rev", o.RepoRev)
	}
	return query
}

// SearchMode selects how library searches match declarations.
type SearchMode string

const (
	// SearchSyntactic matches on declaration syntax. This is the default.
	SearchSyntactic SearchMode = "syntactic"
	// SearchSemantic matches on embedding similarity.
	SearchSemantic SearchMode = "semantic"
)

// SearchOptions refines a library search.
type SearchOptions struct {
	// K caps the number of results; the server default is 10.
	K int
	// Mode selects the search mode, SearchSyntactic when empty.
	Mode SearchMode
	// Repo narrows the search to one repository (Search only).
	Repo RepoOptions
}

// SearchResult is one declaration matched by a library search.
type SearchResult struct {
	TargetID string  `json:"target_id"`
	Name     string  `json:"name"`
	FileName string  `json:"file_name"`
	Content  string  `json:"content,omitempty"`
	Score    float64 `json:"score"`
}

// TargetFile is the file backing a proof target.
type TargetFile struct {
	TargetID    string `json:"target_id"`
	FileName    string `json:"file_name"`
	FileContent string `json:"file_content"`
}

// TargetContent is the declaration content of a proof target.
type TargetContent struct {
	TargetID string `json:"target_id"`
	Content  string `json:"content"`
}

// ContributionRequest describes a file contributed to the library.
type ContributionRequest struct {
	Name        string `json:"name"`
	FileContent string `json:"file_content"`
	RepoURL     string `json:"repo_url,omitempty"`
	RepoRev     string `json:"repo_rev,omitempty"`
	Ephemeral   bool   `json:"ephemeral"`
}

// Health checks the library mechanics service.
//
// GET /api/library/health
func (s *LibraryService) Health(ctx context.Context) (*HealthStatus, error) {
	var result HealthStatus
	if err := s.get(ctx, api.LibraryPath("health"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListFiles returns all files in the library.
//
// GET /api/library/library
func (s *LibraryService) ListFiles(ctx context.Context, opts *RepoOptions) ([]LibraryFile, error) {
	var result []LibraryFile
	if err := s.get(ctx, api.LibraryPath("library"), opts.query(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListRepoFiles returns all files in the backing repository, not just the
// library tree.
//
// GET /api/library/repo_files
func (s *LibraryService) ListRepoFiles(ctx context.Context, opts *RepoOptions) ([]LibraryFile, error) {
	var result []LibraryFile
	if err := s.get(ctx, api.LibraryPath("repo_files"), opts.query(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetFile returns a specific library file.
//
// GET /api/library/library_file
func (s *LibraryService) GetFile(ctx context.Context, fileName string, opts *RepoOptions) (*LibraryFile, error) {
	query := opts.query()
	query.Set("file_name", fileName)
	var result LibraryFile
	if err := s.get(ctx, api.LibraryPath("library_file"), query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Search searches the library for code declarations.
//
// GET /api/library/search
func (s *LibraryService) Search(ctx context.Context, searchQuery string, opts *SearchOptions) ([]SearchResult, error) {
	var repo *RepoOptions
	if opts != nil {
		repo = &opts.Repo
	}
	query := repo.query()
	applySearchOptions(query, searchQuery, opts)

	var result []SearchResult
	if err := s.get(ctx, api.LibraryPath("search"), query, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SearchAllRepos searches across all cached repositories.
//
// GET /api/library/search_all_repos
func (s *LibraryService) SearchAllRepos(ctx context.Context, searchQuery string, opts *SearchOptions) ([]SearchResult, error) {
	query := url.Values{}
	applySearchOptions(query, searchQuery, opts)

	var result []SearchResult
	if err := s.get(ctx, api.LibraryPath("search_all_repos"), query, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func applySearchOptions(query url.Values, searchQuery string, opts *SearchOptions) {
	k := 10
	mode := SearchSyntactic
	if opts != nil {
		if opts.K > 0 {
			k = opts.K
		}
		if opts.Mode != "" {
			mode = opts.Mode
		}
	}
	query.Set("query", searchQuery)
	query.Set("k", strconv.Itoa(k))
	query.Set("search_mode", string(mode))
}

// GetTargetFile returns the file backing a proof target.
//
// GET /api/library/target_file
func (s *LibraryService) GetTargetFile(ctx context.Context, targetID string) (*TargetFile, error) {
	var result TargetFile
	query := url.Values{"target_id": {targetID}}
	if err := s.get(ctx, api.LibraryPath("target_file"), query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTargetContent returns the declaration content of a proof target.
//
// GET /api/library/target_content
func (s *LibraryService) GetTargetContent(ctx context.Context, targetID string) (*TargetContent, error) {
	var result TargetContent
	query := url.Values{"target_id": {targetID}}
	if err := s.get(ctx, api.LibraryPath("target_content"), query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AddContribution contributes a file to the library and returns the stored
// file.
//
// POST /api/library/add_contribution
func (s *LibraryService) AddContribution(ctx context.Context, req *ContributionRequest) (*LibraryFile, error) {
	var result LibraryFile
	if err := s.post(ctx, api.LibraryPath("add_contribution"), nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Raw is an escape hatch for unwrapped library endpoints. path is relative
// to /api/library unless it already starts with /api/.
func (s *LibraryService) Raw(ctx context.Context, method, path string, query url.Values, body, result any) error {
	if !isAbsoluteAPIPath(path) {
		path = api.LibraryPath(path)
	}
	return s.do(ctx, method, path, query, body, result)
}
