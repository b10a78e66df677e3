package jira

import (
	"context"
	"fmt"
	"net/http"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/atlas/internal/atlassian"
	"github.com/danielolaszy/atlas/internal/logging"
)

// CreateIssueOptions carries the optional fields accepted when creating an
// issue.
type CreateIssueOptions struct {
	Description string
	Assignee    string
	Priority    string
	Labels      []string
}

// GetIssue fetches a single issue by key and returns it in simplified form.
// fields optionally restricts the fields Jira returns, comma separated.
func (c *Client) GetIssue(ctx context.Context, issueKey, fields string) (atlassian.Result, error) {
	if issueKey == "" {
		return nil, atlassian.Validationf("issue_key is required")
	}

	var opts *jira.GetQueryOptions
	if fields != "" {
		opts = &jira.GetQueryOptions{Fields: fields}
	}

	issue, resp, err := c.jira.Issue.GetWithContext(ctx, issueKey, opts)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(classify(resp, err), "Issue not found: %s", issueKey)
	}

	return simplifyIssue(issue), nil
}

// CreateIssue creates an issue and returns it freshly fetched, so the
// result carries server-assigned fields like status and reporter.
func (c *Client) CreateIssue(ctx context.Context, projectKey, summary, issueType string, opts CreateIssueOptions) (atlassian.Result, error) {
	if projectKey == "" {
		return nil, atlassian.Validationf("project_key is required")
	}
	if summary == "" {
		return nil, atlassian.Validationf("summary is required")
	}
	if issueType == "" {
		issueType = "Task"
	}

	fields := &jira.IssueFields{
		Project:     jira.Project{Key: projectKey},
		Summary:     summary,
		Type:        jira.IssueType{Name: issueType},
		Description: opts.Description,
		Labels:      opts.Labels,
	}
	if opts.Priority != "" {
		fields.Priority = &jira.Priority{Name: opts.Priority}
	}
	if opts.Assignee != "" {
		fields.Assignee = c.userReference(opts.Assignee)
	}

	created, resp, err := c.jira.Issue.CreateWithContext(ctx, &jira.Issue{Fields: fields})
	if err != nil {
		return nil, classify(resp, err)
	}

	logging.Info("jira issue created", "key", created.Key, "project", projectKey)
	return c.GetIssue(ctx, created.Key, "")
}

// UpdateIssue applies a partial update. fields maps field names to new
// values; summary, description, labels, priority, and assignee are
// normalized, customfield_* entries pass through verbatim.
func (c *Client) UpdateIssue(ctx context.Context, issueKey string, fields map[string]any) (atlassian.Result, error) {
	if issueKey == "" {
		return nil, atlassian.Validationf("issue_key is required")
	}
	if len(fields) == 0 {
		return nil, atlassian.Validationf("at least one field to update is required")
	}

	payload := make(map[string]any, len(fields))
	for _, name := range sortedKeys(fields) {
		value := fields[name]
		switch name {
		case "priority":
			payload[name] = map[string]any{"name": value}
		case "assignee":
			if s, ok := value.(string); ok {
				payload[name] = c.userReferenceMap(s)
			} else {
				payload[name] = value
			}
		default:
			payload[name] = value
		}
	}

	resp, err := c.jira.Issue.UpdateIssueWithContext(ctx, issueKey, map[string]any{"fields": payload})
	if err != nil {
		return nil, atlassian.ReplaceNotFound(classify(resp, err), "Issue not found: %s", issueKey)
	}

	logging.Info("jira issue updated", "key", issueKey, "fields", sortedKeys(fields))
	return c.GetIssue(ctx, issueKey, "")
}

// DeleteIssue deletes an issue. deleteSubtasks controls whether subtasks go
// with it; Jira rejects the delete otherwise when subtasks exist.
func (c *Client) DeleteIssue(ctx context.Context, issueKey string, deleteSubtasks bool) (atlassian.Result, error) {
	if issueKey == "" {
		return nil, atlassian.Validationf("issue_key is required")
	}

	endpoint := fmt.Sprintf("rest/api/2/issue/%s?deleteSubtasks=%t", issueKey, deleteSubtasks)
	req, err := c.jira.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return nil, atlassian.Validationf("Invalid request: %v", err)
	}

	resp, err := c.jira.Do(req, nil)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(classify(resp, err), "Issue not found: %s", issueKey)
	}

	logging.Info("jira issue deleted", "key", issueKey, "delete_subtasks", deleteSubtasks)
	return atlassian.Result{
		"success":   true,
		"message":   fmt.Sprintf("Issue %s deleted", issueKey),
		"issue_key": issueKey,
	}, nil
}

// AddComment posts a comment on an issue.
func (c *Client) AddComment(ctx context.Context, issueKey, body string) (atlassian.Result, error) {
	if issueKey == "" {
		return nil, atlassian.Validationf("issue_key is required")
	}
	if body == "" {
		return nil, atlassian.Validationf("comment body is required")
	}

	comment, resp, err := c.jira.Issue.AddCommentWithContext(ctx, issueKey, &jira.Comment{Body: body})
	if err != nil {
		return nil, atlassian.ReplaceNotFound(classify(resp, err), "Issue not found: %s", issueKey)
	}

	author := comment.Author.EmailAddress
	if author == "" {
		author = comment.Author.DisplayName
	}

	return atlassian.Result{
		"id":        comment.ID,
		"issue_key": issueKey,
		"body":      comment.Body,
		"author":    author,
		"created":   comment.Created,
		"updated":   comment.Updated,
	}, nil
}

// userReference builds the assignee reference for the instance type: Cloud
// identifies users by account ID, Data Center by username.
func (c *Client) userReference(identifier string) *jira.User {
	if c.cloud {
		return &jira.User{AccountID: identifier}
	}
	return &jira.User{Name: identifier}
}

func (c *Client) userReferenceMap(identifier string) map[string]any {
	if c.cloud {
		return map[string]any{"accountId": identifier}
	}
	return map[string]any{"name": identifier}
}
