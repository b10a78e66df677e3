package bitbucket

import (
	"context"

	"github.com/danielolaszy/atlas/internal/atlassian"
)

type commit struct {
	ID        string `json:"id"`
	DisplayID string `json:"displayId"`
	Message   string `json:"message"`
	Author    struct {
		Name         string `json:"name"`
		EmailAddress string `json:"emailAddress"`
	} `json:"author"`
	AuthorTimestamp int64 `json:"authorTimestamp"`
	Parents         []struct {
		ID        string `json:"id"`
		DisplayID string `json:"displayId"`
	} `json:"parents"`
}

func simplifyCommit(c *commit) atlassian.Result {
	parents := make([]string, 0, len(c.Parents))
	for _, p := range c.Parents {
		parents = append(parents, p.DisplayID)
	}
	return atlassian.Result{
		"id":               c.ID,
		"display_id":       c.DisplayID,
		"message":          c.Message,
		"author":           c.Author.Name,
		"author_email":     c.Author.EmailAddress,
		"author_timestamp": c.AuthorTimestamp,
		"parents":          parents,
	}
}

// GetCommits lists commits on a repository. ref narrows history to a branch
// or tag, path to commits touching a file.
func (c *Client) GetCommits(ctx context.Context, projectKey, repoSlug, ref, path string, opts PageOptions) (atlassian.Result, error) {
	if err := requireRepo(projectKey, repoSlug); err != nil {
		return nil, err
	}
	params, err := opts.params()
	if err != nil {
		return nil, err
	}
	if ref != "" {
		params.Set("until", ref)
	}
	if path != "" {
		params.Set("path", path)
	}

	var page struct {
		pageMeta
		Values []commit `json:"values"`
	}
	err = c.rest.Get(ctx, repoPath(projectKey, repoSlug, "/commits"), params, &page)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(err, "Repository not found: %s/%s", projectKey, repoSlug)
	}

	commits := make([]atlassian.Result, 0, len(page.Values))
	for i := range page.Values {
		commits = append(commits, simplifyCommit(&page.Values[i]))
	}

	return page.apply(atlassian.Result{"commits": commits}), nil
}

// GetCommit fetches a single commit by hash.
func (c *Client) GetCommit(ctx context.Context, projectKey, repoSlug, commitID string) (atlassian.Result, error) {
	if err := requireRepo(projectKey, repoSlug); err != nil {
		return nil, err
	}
	if commitID == "" {
		return nil, atlassian.Validationf("commit_id is required")
	}

	var cm commit
	err := c.rest.Get(ctx, repoPath(projectKey, repoSlug, "/commits/"+commitID), nil, &cm)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(err, "Commit not found: %s", commitID)
	}
	return simplifyCommit(&cm), nil
}
