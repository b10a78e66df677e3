package confluence

import (
	"context"
	"fmt"
	"net/url"

	"github.com/danielolaszy/atlas/internal/atlassian"
	"github.com/danielolaszy/atlas/internal/logging"
)

// pageExpand lists the content expansions every page fetch requests.
const pageExpand = "body.storage,version,space"

// GetPage fetches a page either by ID or by title within a space.
func (c *Client) GetPage(ctx context.Context, pageID, title, spaceKey string) (atlassian.Result, error) {
	switch {
	case pageID != "":
		return c.getPageByID(ctx, pageID)
	case title != "" && spaceKey != "":
		return c.getPageByTitle(ctx, title, spaceKey)
	default:
		return nil, atlassian.Validationf("either page_id or both title and space_key are required")
	}
}

func (c *Client) getPageByID(ctx context.Context, pageID string) (atlassian.Result, error) {
	params := url.Values{"expand": {pageExpand}}

	var p page
	err := c.rest.Get(ctx, "/rest/api/content/"+pageID, params, &p)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(err, "Page not found: %s", pageID)
	}
	return c.simplifyPage(&p), nil
}

func (c *Client) getPageByTitle(ctx context.Context, title, spaceKey string) (atlassian.Result, error) {
	params := url.Values{
		"title":    {title},
		"spaceKey": {spaceKey},
		"expand":   {pageExpand},
	}

	var list contentList
	err := c.rest.Get(ctx, "/rest/api/content", params, &list)
	if err != nil {
		return nil, err
	}
	if len(list.Results) == 0 {
		return nil, atlassian.NotFoundf("Page not found: %q in space %s", title, spaceKey)
	}
	return c.simplifyPage(&list.Results[0]), nil
}

// CreatePage creates a page in a space. content is storage-format XHTML;
// parentID optionally places the page under an existing one.
func (c *Client) CreatePage(ctx context.Context, spaceKey, title, content, parentID string) (atlassian.Result, error) {
	if spaceKey == "" {
		return nil, atlassian.Validationf("space_key is required")
	}
	if title == "" {
		return nil, atlassian.Validationf("title is required")
	}
	if content == "" {
		return nil, atlassian.Validationf("content is required")
	}

	body := map[string]any{
		"type":  "page",
		"title": title,
		"space": map[string]any{"key": spaceKey},
		"body": map[string]any{
			"storage": map[string]any{
				"value":          content,
				"representation": "storage",
			},
		},
	}
	if parentID != "" {
		body["ancestors"] = []map[string]any{{"id": parentID}}
	}

	var p page
	err := c.rest.Post(ctx, "/rest/api/content", body, &p)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(err, "Space not found: %s", spaceKey)
	}

	logging.Info("confluence page created", "id", p.ID, "space", spaceKey, "title", title)
	return c.simplifyPage(&p), nil
}

// UpdatePage replaces a page's title and content. The current version is
// fetched first so the update carries version+1, then the page is fetched
// back with full expansions.
func (c *Client) UpdatePage(ctx context.Context, pageID, title, content, versionComment string) (atlassian.Result, error) {
	if pageID == "" {
		return nil, atlassian.Validationf("page_id is required")
	}
	if title == "" {
		return nil, atlassian.Validationf("title is required")
	}

	var current page
	err := c.rest.Get(ctx, "/rest/api/content/"+pageID, url.Values{"expand": {"version"}}, &current)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(err, "Page not found: %s", pageID)
	}
	if current.Version == nil {
		return nil, atlassian.APIf("Invalid response from server: page %s has no version", pageID)
	}

	version := map[string]any{"number": current.Version.Number + 1}
	if versionComment != "" {
		version["message"] = versionComment
	}
	body := map[string]any{
		"type":    "page",
		"title":   title,
		"version": version,
		"body": map[string]any{
			"storage": map[string]any{
				"value":          content,
				"representation": "storage",
			},
		},
	}

	if err := c.rest.Put(ctx, "/rest/api/content/"+pageID, body, nil); err != nil {
		return nil, atlassian.ReplaceNotFound(err, "Page not found: %s", pageID)
	}

	logging.Info("confluence page updated", "id", pageID, "version", current.Version.Number+1)
	return c.getPageByID(ctx, pageID)
}

// DeletePage deletes a page by ID.
func (c *Client) DeletePage(ctx context.Context, pageID string) (atlassian.Result, error) {
	if pageID == "" {
		return nil, atlassian.Validationf("page_id is required")
	}

	if err := c.rest.Delete(ctx, "/rest/api/content/"+pageID); err != nil {
		return nil, atlassian.ReplaceNotFound(err, "Page not found: %s", pageID)
	}

	logging.Info("confluence page deleted", "id", pageID)
	return atlassian.Result{
		"success": true,
		"message": fmt.Sprintf("Page %s deleted", pageID),
		"page_id": pageID,
	}, nil
}
