package jira

import (
	"context"
	"fmt"
	"net/http"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/atlas/internal/atlassian"
	"github.com/danielolaszy/atlas/internal/logging"
)

// CreateVersionOptions carries the optional fields for a new fix version.
type CreateVersionOptions struct {
	Description string
	StartDate   string
	ReleaseDate string
}

// GetAllProjects lists the projects visible to the authenticated user.
func (c *Client) GetAllProjects(ctx context.Context, includeArchived bool) (atlassian.Result, error) {
	var (
		list *jira.ProjectList
		resp *jira.Response
		err  error
	)
	if includeArchived {
		req, reqErr := c.jira.NewRequestWithContext(ctx, http.MethodGet, "rest/api/2/project?includeArchived=true", nil)
		if reqErr != nil {
			return nil, atlassian.Validationf("Invalid request: %v", reqErr)
		}
		list = new(jira.ProjectList)
		resp, err = c.jira.Do(req, list)
	} else {
		list, resp, err = c.jira.Project.GetListWithContext(ctx)
	}
	if err != nil {
		return nil, classify(resp, err)
	}

	projects := make([]atlassian.Result, 0, len(*list))
	for _, p := range *list {
		projects = append(projects, atlassian.Result{
			"id":           p.ID,
			"key":          p.Key,
			"name":         p.Name,
			"project_type": p.ProjectTypeKey,
		})
	}

	return atlassian.Result{
		"projects": projects,
		"count":    len(projects),
	}, nil
}

// GetProjectIssues lists a project's issues, newest first.
func (c *Client) GetProjectIssues(ctx context.Context, projectKey string, opts SearchOptions) (atlassian.Result, error) {
	if projectKey == "" {
		return nil, atlassian.Validationf("project_key is required")
	}

	jql := fmt.Sprintf("project = %s ORDER BY created DESC", projectKey)
	result, err := c.Search(ctx, jql, opts)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(err, "Project not found: %s", projectKey)
	}

	result["project_key"] = projectKey
	return result, nil
}

// GetProjectVersions lists a project's fix versions.
func (c *Client) GetProjectVersions(ctx context.Context, projectKey string) (atlassian.Result, error) {
	if projectKey == "" {
		return nil, atlassian.Validationf("project_key is required")
	}

	endpoint := fmt.Sprintf("rest/api/2/project/%s/versions", projectKey)
	req, err := c.jira.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, atlassian.Validationf("Invalid request: %v", err)
	}

	var versions []jira.Version
	resp, err := c.jira.Do(req, &versions)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(classify(resp, err), "Project not found: %s", projectKey)
	}

	simplified := make([]atlassian.Result, 0, len(versions))
	for _, v := range versions {
		simplified = append(simplified, simplifyVersion(&v))
	}

	return atlassian.Result{
		"versions":    simplified,
		"count":       len(simplified),
		"project_key": projectKey,
	}, nil
}

// CreateVersion creates a fix version in a project.
func (c *Client) CreateVersion(ctx context.Context, projectKey, name string, opts CreateVersionOptions) (atlassian.Result, error) {
	if projectKey == "" {
		return nil, atlassian.Validationf("project_key is required")
	}
	if name == "" {
		return nil, atlassian.Validationf("name is required")
	}

	body := map[string]any{
		"name":    name,
		"project": projectKey,
	}
	if opts.Description != "" {
		body["description"] = opts.Description
	}
	if opts.StartDate != "" {
		body["startDate"] = opts.StartDate
	}
	if opts.ReleaseDate != "" {
		body["releaseDate"] = opts.ReleaseDate
	}

	req, err := c.jira.NewRequestWithContext(ctx, http.MethodPost, "rest/api/2/version", body)
	if err != nil {
		return nil, atlassian.Validationf("Invalid request: %v", err)
	}

	version := new(jira.Version)
	resp, err := c.jira.Do(req, version)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(classify(resp, err), "Project not found: %s", projectKey)
	}

	logging.Info("jira version created", "project", projectKey, "name", name)
	result := simplifyVersion(version)
	result["project_key"] = projectKey
	return result, nil
}

func simplifyVersion(v *jira.Version) atlassian.Result {
	released := false
	if v.Released != nil {
		released = *v.Released
	}
	archived := false
	if v.Archived != nil {
		archived = *v.Archived
	}
	return atlassian.Result{
		"id":           v.ID,
		"name":         v.Name,
		"description":  v.Description,
		"released":     released,
		"archived":     archived,
		"start_date":   v.StartDate,
		"release_date": v.ReleaseDate,
	}
}
