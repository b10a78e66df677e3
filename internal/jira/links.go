package jira

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/atlas/internal/atlassian"
	"github.com/danielolaszy/atlas/internal/logging"
)

// GetLinkTypes lists the issue link types configured on the instance.
func (c *Client) GetLinkTypes(ctx context.Context) (atlassian.Result, error) {
	linkTypes, resp, err := c.jira.IssueLinkType.GetListWithContext(ctx)
	if err != nil {
		return nil, classify(resp, err)
	}

	simplified := make([]atlassian.Result, 0, len(linkTypes))
	for _, lt := range linkTypes {
		simplified = append(simplified, atlassian.Result{
			"id":      lt.ID,
			"name":    lt.Name,
			"inward":  lt.Inward,
			"outward": lt.Outward,
		})
	}

	return atlassian.Result{
		"link_types": simplified,
		"count":      len(simplified),
	}, nil
}

// CreateIssueLink links two issues with the named link type. The inward
// issue is the one the inward description applies to ("is blocked by").
func (c *Client) CreateIssueLink(ctx context.Context, linkType, inwardKey, outwardKey, comment string) (atlassian.Result, error) {
	if linkType == "" {
		return nil, atlassian.Validationf("link_type is required")
	}
	if inwardKey == "" || outwardKey == "" {
		return nil, atlassian.Validationf("inward_issue_key and outward_issue_key are required")
	}

	link := &jira.IssueLink{
		Type:         jira.IssueLinkType{Name: linkType},
		InwardIssue:  &jira.Issue{Key: inwardKey},
		OutwardIssue: &jira.Issue{Key: outwardKey},
	}
	if comment != "" {
		link.Comment = &jira.Comment{Body: comment}
	}

	resp, err := c.jira.Issue.AddLinkWithContext(ctx, link)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(classify(resp, err), "Issue not found: %s or %s", inwardKey, outwardKey)
	}

	logging.Info("jira issue link created", "type", linkType, "inward", inwardKey, "outward", outwardKey)
	return atlassian.Result{
		"success":     true,
		"message":     fmt.Sprintf("Link created: %s %s %s", inwardKey, strings.ToLower(linkType), outwardKey),
		"link_type":   linkType,
		"inward_key":  inwardKey,
		"outward_key": outwardKey,
	}, nil
}

// LinkToEpic attaches an issue to an epic. It sets the Epic Link custom
// field when the instance defines one, otherwise it falls back to the
// agile epic endpoint.
func (c *Client) LinkToEpic(ctx context.Context, issueKey, epicKey string) (atlassian.Result, error) {
	if issueKey == "" || epicKey == "" {
		return nil, atlassian.Validationf("issue_key and epic_key are required")
	}

	fieldID, err := c.epicLinkFieldID(ctx)
	if err != nil {
		return nil, err
	}

	if fieldID != "" {
		payload := map[string]any{"fields": map[string]any{fieldID: epicKey}}
		resp, updErr := c.jira.Issue.UpdateIssueWithContext(ctx, issueKey, payload)
		if updErr != nil {
			return nil, atlassian.ReplaceNotFound(classify(resp, updErr), "Issue not found: %s", issueKey)
		}
	} else {
		endpoint := fmt.Sprintf("rest/agile/1.0/epic/%s/issue", epicKey)
		body := map[string]any{"issues": []string{issueKey}}
		req, reqErr := c.jira.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
		if reqErr != nil {
			return nil, atlassian.Validationf("Invalid request: %v", reqErr)
		}
		resp, doErr := c.jira.Do(req, nil)
		if doErr != nil {
			return nil, atlassian.ReplaceNotFound(classify(resp, doErr), "Epic not found: %s", epicKey)
		}
	}

	logging.Info("jira issue linked to epic", "issue", issueKey, "epic", epicKey)
	return atlassian.Result{
		"success":   true,
		"message":   fmt.Sprintf("Issue %s linked to epic %s", issueKey, epicKey),
		"issue_key": issueKey,
		"epic_key":  epicKey,
	}, nil
}

// RemoveIssueLink deletes an issue link by its ID.
func (c *Client) RemoveIssueLink(ctx context.Context, linkID string) (atlassian.Result, error) {
	if linkID == "" {
		return nil, atlassian.Validationf("link_id is required")
	}

	endpoint := fmt.Sprintf("rest/api/2/issueLink/%s", linkID)
	req, err := c.jira.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return nil, atlassian.Validationf("Invalid request: %v", err)
	}

	resp, err := c.jira.Do(req, nil)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(classify(resp, err), "Issue link not found: %s", linkID)
	}

	logging.Info("jira issue link removed", "link_id", linkID)
	return atlassian.Result{
		"success": true,
		"message": "Issue link removed",
		"link_id": linkID,
	}, nil
}

// epicLinkFieldID finds the Epic Link custom field; empty when the instance
// has none (Cloud team-managed projects).
func (c *Client) epicLinkFieldID(ctx context.Context) (string, error) {
	fields, resp, err := c.jira.Field.GetListWithContext(ctx)
	if err != nil {
		return "", classify(resp, err)
	}
	for _, f := range fields {
		if f.Name == "Epic Link" {
			return f.ID, nil
		}
	}
	return "", nil
}
