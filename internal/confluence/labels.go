package confluence

import (
	"context"
	"fmt"
	"net/url"

	"github.com/danielolaszy/atlas/internal/atlassian"
	"github.com/danielolaszy/atlas/internal/logging"
)

type labelList struct {
	Results []struct {
		Prefix string `json:"prefix"`
		Name   string `json:"name"`
		ID     string `json:"id"`
	} `json:"results"`
	Size int `json:"size"`
}

// GetLabels lists the labels on a page.
func (c *Client) GetLabels(ctx context.Context, pageID string) (atlassian.Result, error) {
	if pageID == "" {
		return nil, atlassian.Validationf("page_id is required")
	}

	var list labelList
	err := c.rest.Get(ctx, "/rest/api/content/"+pageID+"/label", nil, &list)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(err, "Page not found: %s", pageID)
	}

	labels := make([]atlassian.Result, 0, len(list.Results))
	for _, l := range list.Results {
		labels = append(labels, atlassian.Result{
			"id":     l.ID,
			"name":   l.Name,
			"prefix": l.Prefix,
		})
	}

	return atlassian.Result{
		"labels":  labels,
		"count":   len(labels),
		"page_id": pageID,
	}, nil
}

// AddLabel adds a global label to a page.
func (c *Client) AddLabel(ctx context.Context, pageID, name string) (atlassian.Result, error) {
	if pageID == "" {
		return nil, atlassian.Validationf("page_id is required")
	}
	if name == "" {
		return nil, atlassian.Validationf("label name is required")
	}

	body := []map[string]any{{"prefix": "global", "name": name}}
	var list labelList
	if err := c.rest.Post(ctx, "/rest/api/content/"+pageID+"/label", body, &list); err != nil {
		return nil, atlassian.ReplaceNotFound(err, "Page not found: %s", pageID)
	}

	logging.Info("confluence label added", "page_id", pageID, "label", name)
	return atlassian.Result{
		"success": true,
		"message": fmt.Sprintf("Label %q added", name),
		"page_id": pageID,
		"label":   name,
	}, nil
}

// RemoveLabel removes a label from a page.
func (c *Client) RemoveLabel(ctx context.Context, pageID, name string) (atlassian.Result, error) {
	if pageID == "" {
		return nil, atlassian.Validationf("page_id is required")
	}
	if name == "" {
		return nil, atlassian.Validationf("label name is required")
	}

	path := "/rest/api/content/" + pageID + "/label?name=" + url.QueryEscape(name)
	if err := c.rest.Delete(ctx, path); err != nil {
		return nil, atlassian.ReplaceNotFound(err, "Page not found: %s", pageID)
	}

	logging.Info("confluence label removed", "page_id", pageID, "label", name)
	return atlassian.Result{
		"success": true,
		"message": fmt.Sprintf("Label %q removed", name),
		"page_id": pageID,
		"label":   name,
	}, nil
}
