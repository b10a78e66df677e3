package bitbucket

import (
	"context"
	"net/url"
	"strings"

	"github.com/danielolaszy/atlas/internal/atlassian"
)

// GetFileContent fetches a file's content at a ref (branch, tag, or commit
// hash; empty means the default branch). Bitbucket serves files line by
// line, so the lines are joined back together here.
func (c *Client) GetFileContent(ctx context.Context, projectKey, repoSlug, filePath, ref string) (atlassian.Result, error) {
	if err := requireRepo(projectKey, repoSlug); err != nil {
		return nil, err
	}
	if filePath == "" {
		return nil, atlassian.Validationf("file_path is required")
	}

	var params url.Values
	if ref != "" {
		params = url.Values{"at": {ref}}
	}

	var browse struct {
		Lines []struct {
			Text string `json:"text"`
		} `json:"lines"`
		Size       int  `json:"size"`
		IsLastPage bool `json:"isLastPage"`
		Binary     bool `json:"binary"`
	}
	err := c.rest.Get(ctx, repoPath(projectKey, repoSlug, "/browse/"+filePath), params, &browse)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(err, "File not found: %s", filePath)
	}

	if browse.Binary {
		return atlassian.Result{
			"path":      filePath,
			"ref":       ref,
			"is_binary": true,
		}, nil
	}

	lines := make([]string, 0, len(browse.Lines))
	for _, l := range browse.Lines {
		lines = append(lines, l.Text)
	}

	return atlassian.Result{
		"path":       filePath,
		"ref":        ref,
		"content":    strings.Join(lines, "\n"),
		"line_count": len(lines),
		"is_binary":  false,
		"truncated":  !browse.IsLastPage,
	}, nil
}

// Search runs a code search query. projectKey and repoSlug narrow the scope
// via Bitbucket's inline project:/repo: filter terms; either may be empty.
func (c *Client) Search(ctx context.Context, query, projectKey, repoSlug string, limit int) (atlassian.Result, error) {
	if query == "" {
		return nil, atlassian.Validationf("query is required")
	}
	if limit < 0 {
		return nil, atlassian.Validationf("limit must not be negative")
	}
	if limit == 0 {
		limit = defaultPageSize
	}

	if projectKey != "" {
		query += " project:" + projectKey
	}
	if repoSlug != "" {
		query += " repo:" + repoSlug
	}

	body := map[string]any{
		"query": query,
		"entities": map[string]any{
			"code": map[string]any{
				"start": 0,
				"limit": limit,
			},
		},
	}

	var out struct {
		Code struct {
			Count      int  `json:"count"`
			IsLastPage bool `json:"isLastPage"`
			Values     []struct {
				Repository struct {
					Slug    string `json:"slug"`
					Project struct {
						Key string `json:"key"`
					} `json:"project"`
				} `json:"repository"`
				File        string `json:"file"`
				HitContexts [][]struct {
					Line int    `json:"line"`
					Text string `json:"text"`
				} `json:"hitContexts"`
			} `json:"values"`
		} `json:"code"`
		Query struct {
			Substituted bool `json:"substituted"`
		} `json:"query"`
	}
	if err := c.rest.Post(ctx, "/rest/search/latest/search", body, &out); err != nil {
		return nil, err
	}

	results := make([]atlassian.Result, 0, len(out.Code.Values))
	for _, v := range out.Code.Values {
		matches := make([]atlassian.Result, 0)
		for _, ctxGroup := range v.HitContexts {
			for _, hit := range ctxGroup {
				matches = append(matches, atlassian.Result{
					"line": hit.Line,
					"text": hit.Text,
				})
			}
		}
		results = append(results, atlassian.Result{
			"project_key": v.Repository.Project.Key,
			"repo_slug":   v.Repository.Slug,
			"file":        v.File,
			"matches":     matches,
		})
	}

	return atlassian.Result{
		"results":      results,
		"total":        out.Code.Count,
		"is_last_page": out.Code.IsLastPage,
		"query":        query,
	}, nil
}
