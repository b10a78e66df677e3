// Package bitbucket adapts Bitbucket Data Center repository, pull request,
// and code search operations to the flat result/error envelope the tool
// layer expects.
package bitbucket

import (
	"net/url"

	"github.com/google/go-querystring/query"

	"github.com/danielolaszy/atlas/internal/atlassian"
	"github.com/danielolaszy/atlas/internal/config"
)

// apiBase is the core REST prefix for Bitbucket Data Center.
const apiBase = "/rest/api/1.0"

// defaultPageSize bounds list responses when the caller does not set one.
const defaultPageSize = 25

// Client handles interactions with the Bitbucket API.
type Client struct {
	rest *atlassian.Client
}

// NewClient creates a Bitbucket client from a validated configuration
// bundle. No network I/O happens here.
func NewClient(cfg config.ServiceConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rest, err := atlassian.NewClient(cfg.ClientOptions())
	if err != nil {
		return nil, err
	}
	return &Client{rest: rest}, nil
}

// PageOptions is Bitbucket's native start/limit pagination.
type PageOptions struct {
	Start int `url:"start"`
	Limit int `url:"limit"`
}

func (p PageOptions) params() (url.Values, error) {
	if p.Start < 0 || p.Limit < 0 {
		return nil, atlassian.Validationf("limit and start must not be negative")
	}
	if p.Limit == 0 {
		p.Limit = defaultPageSize
	}
	params, err := query.Values(p)
	if err != nil {
		return nil, atlassian.Validationf("Invalid pagination: %v", err)
	}
	return params, nil
}

// pageMeta carries the pagination trailer every Bitbucket list response
// includes.
type pageMeta struct {
	Size          int  `json:"size"`
	Limit         int  `json:"limit"`
	IsLastPage    bool `json:"isLastPage"`
	Start         int  `json:"start"`
	NextPageStart int  `json:"nextPageStart"`
}

// apply copies the pagination trailer into an envelope.
func (m pageMeta) apply(result atlassian.Result) atlassian.Result {
	result["size"] = m.Size
	result["is_last_page"] = m.IsLastPage
	if !m.IsLastPage {
		result["next_page_start"] = m.NextPageStart
	}
	return result
}

// repoPath builds the repository-scoped API path.
func repoPath(projectKey, repoSlug, suffix string) string {
	return apiBase + "/projects/" + projectKey + "/repos/" + repoSlug + suffix
}

func requireRepo(projectKey, repoSlug string) error {
	if projectKey == "" {
		return atlassian.Validationf("project_key is required")
	}
	if repoSlug == "" {
		return atlassian.Validationf("repo_slug is required")
	}
	return nil
}
