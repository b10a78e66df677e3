package bitbucket

import (
	"context"

	"github.com/danielolaszy/atlas/internal/atlassian"
)

type project struct {
	Key         string `json:"key"`
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
	Type        string `json:"type"`
}

type repository struct {
	Slug    string `json:"slug"`
	ID      int    `json:"id"`
	Name    string `json:"name"`
	ScmID   string `json:"scmId"`
	State   string `json:"state"`
	Public  bool   `json:"public"`
	Project struct {
		Key string `json:"key"`
	} `json:"project"`
	Links struct {
		Clone []struct {
			Href string `json:"href"`
			Name string `json:"name"`
		} `json:"clone"`
	} `json:"links"`
}

// ListProjects lists the projects visible to the authenticated user.
func (c *Client) ListProjects(ctx context.Context, opts PageOptions) (atlassian.Result, error) {
	params, err := opts.params()
	if err != nil {
		return nil, err
	}

	var page struct {
		pageMeta
		Values []project `json:"values"`
	}
	if err := c.rest.Get(ctx, apiBase+"/projects", params, &page); err != nil {
		return nil, err
	}

	projects := make([]atlassian.Result, 0, len(page.Values))
	for _, p := range page.Values {
		projects = append(projects, atlassian.Result{
			"key":         p.Key,
			"id":          p.ID,
			"name":        p.Name,
			"description": p.Description,
			"public":      p.Public,
		})
	}

	return page.apply(atlassian.Result{"projects": projects}), nil
}

// ListRepositories lists the repositories in a project.
func (c *Client) ListRepositories(ctx context.Context, projectKey string, opts PageOptions) (atlassian.Result, error) {
	if projectKey == "" {
		return nil, atlassian.Validationf("project_key is required")
	}
	params, err := opts.params()
	if err != nil {
		return nil, err
	}

	var page struct {
		pageMeta
		Values []repository `json:"values"`
	}
	err = c.rest.Get(ctx, apiBase+"/projects/"+projectKey+"/repos", params, &page)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(err, "Project not found: %s", projectKey)
	}

	repos := make([]atlassian.Result, 0, len(page.Values))
	for _, r := range page.Values {
		cloneURLs := atlassian.Result{}
		for _, link := range r.Links.Clone {
			cloneURLs[link.Name] = link.Href
		}
		repos = append(repos, atlassian.Result{
			"slug":        r.Slug,
			"id":          r.ID,
			"name":        r.Name,
			"state":       r.State,
			"project_key": r.Project.Key,
			"clone_urls":  cloneURLs,
		})
	}

	result := atlassian.Result{
		"repositories": repos,
		"project_key":  projectKey,
	}
	return page.apply(result), nil
}
