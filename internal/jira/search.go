package jira

import (
	"context"
	"strings"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/atlas/internal/atlassian"
)

// defaultPageSize bounds list responses when the caller does not set one.
const defaultPageSize = 50

// SearchOptions controls a JQL search.
type SearchOptions struct {
	// Fields restricts the fields returned per issue, comma separated.
	Fields string
	// StartAt is the zero-based index of the first result.
	StartAt int
	// Limit caps the page size; defaults to defaultPageSize.
	Limit int
}

// Search runs a JQL query and returns a simplified, paginated issue list.
func (c *Client) Search(ctx context.Context, jql string, opts SearchOptions) (atlassian.Result, error) {
	if jql == "" {
		return nil, atlassian.Validationf("jql is required")
	}
	if opts.Limit < 0 || opts.StartAt < 0 {
		return nil, atlassian.Validationf("limit and start_at must not be negative")
	}
	if opts.Limit == 0 {
		opts.Limit = defaultPageSize
	}

	searchOpts := &jira.SearchOptions{
		StartAt:    opts.StartAt,
		MaxResults: opts.Limit,
	}
	if opts.Fields != "" {
		searchOpts.Fields = strings.Split(opts.Fields, ",")
	}

	issues, resp, err := c.jira.Issue.SearchWithContext(ctx, jql, searchOpts)
	if err != nil {
		return nil, classify(resp, err)
	}

	return atlassian.Result{
		"issues":      simplifyIssues(issues),
		"total":       resp.Total,
		"start_at":    resp.StartAt,
		"max_results": resp.MaxResults,
		"is_last":     resp.StartAt+len(issues) >= resp.Total,
	}, nil
}

// SearchFields lists field definitions, optionally filtered by a keyword
// matched case-insensitively against field names and IDs. total reports the
// match count before the limit is applied.
func (c *Client) SearchFields(ctx context.Context, keyword string, limit int) (atlassian.Result, error) {
	if limit < 0 {
		return nil, atlassian.Validationf("limit must not be negative")
	}
	if limit == 0 {
		limit = defaultPageSize
	}

	fields, resp, err := c.jira.Field.GetListWithContext(ctx)
	if err != nil {
		return nil, classify(resp, err)
	}

	keyword = strings.ToLower(keyword)
	matched := make([]atlassian.Result, 0, len(fields))
	for _, f := range fields {
		if keyword != "" &&
			!strings.Contains(strings.ToLower(f.Name), keyword) &&
			!strings.Contains(strings.ToLower(f.ID), keyword) {
			continue
		}
		matched = append(matched, atlassian.Result{
			"id":     f.ID,
			"key":    f.Key,
			"name":   f.Name,
			"custom": f.Custom,
			"type":   f.Schema.Type,
		})
	}

	total := len(matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}

	return atlassian.Result{
		"fields": matched,
		"total":  total,
	}, nil
}
