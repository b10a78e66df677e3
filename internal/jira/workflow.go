package jira

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/danielolaszy/atlas/internal/atlassian"
	"github.com/danielolaszy/atlas/internal/logging"
)

// GetTransitions lists the workflow transitions currently available on an
// issue, including the fields each transition requires.
func (c *Client) GetTransitions(ctx context.Context, issueKey string) (atlassian.Result, error) {
	if issueKey == "" {
		return nil, atlassian.Validationf("issue_key is required")
	}

	transitions, resp, err := c.jira.Issue.GetTransitionsWithContext(ctx, issueKey)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(classify(resp, err), "Issue not found: %s", issueKey)
	}

	simplified := make([]atlassian.Result, 0, len(transitions))
	for _, t := range transitions {
		required := make([]string, 0)
		for name, field := range t.Fields {
			if field.Required {
				required = append(required, name)
			}
		}
		sort.Strings(required)

		simplified = append(simplified, atlassian.Result{
			"id":              t.ID,
			"name":            t.Name,
			"to_status":       t.To.Name,
			"required_fields": required,
		})
	}

	return atlassian.Result{
		"transitions": simplified,
		"count":       len(simplified),
		"issue_key":   issueKey,
	}, nil
}

// TransitionIssue moves an issue through a workflow transition, optionally
// setting fields and adding a comment in the same request. The updated
// issue is fetched afterwards so the result reflects the new status.
func (c *Client) TransitionIssue(ctx context.Context, issueKey, transitionID, comment string, fields map[string]any) (atlassian.Result, error) {
	if issueKey == "" {
		return nil, atlassian.Validationf("issue_key is required")
	}
	if transitionID == "" {
		return nil, atlassian.Validationf("transition_id is required")
	}

	payload := map[string]any{
		"transition": map[string]any{"id": transitionID},
	}
	if len(fields) > 0 {
		payload["fields"] = fields
	}
	if comment != "" {
		payload["update"] = map[string]any{
			"comment": []map[string]any{
				{"add": map[string]any{"body": comment}},
			},
		}
	}

	endpoint := fmt.Sprintf("rest/api/2/issue/%s/transitions", issueKey)
	req, err := c.jira.NewRequestWithContext(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, atlassian.Validationf("Invalid request: %v", err)
	}

	resp, err := c.jira.Do(req, nil)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(classify(resp, err), "Issue not found: %s", issueKey)
	}

	logging.Info("jira issue transitioned", "key", issueKey, "transition_id", transitionID)
	return c.GetIssue(ctx, issueKey, "")
}
