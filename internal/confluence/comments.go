package confluence

import (
	"context"
	"net/url"

	"github.com/danielolaszy/atlas/internal/atlassian"
	"github.com/danielolaszy/atlas/internal/logging"
)

// GetComments lists the comments on a page.
func (c *Client) GetComments(ctx context.Context, pageID string) (atlassian.Result, error) {
	if pageID == "" {
		return nil, atlassian.Validationf("page_id is required")
	}

	params := url.Values{"expand": {"body.storage,version"}}

	var list contentList
	err := c.rest.Get(ctx, "/rest/api/content/"+pageID+"/child/comment", params, &list)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(err, "Page not found: %s", pageID)
	}

	comments := make([]atlassian.Result, 0, len(list.Results))
	for i := range list.Results {
		comments = append(comments, simplifyComment(&list.Results[i]))
	}

	return atlassian.Result{
		"comments": comments,
		"count":    len(comments),
		"page_id":  pageID,
	}, nil
}

// AddComment posts a comment on a page. content is storage-format XHTML; a
// non-empty parentCommentID makes the comment a threaded reply.
func (c *Client) AddComment(ctx context.Context, pageID, content, parentCommentID string) (atlassian.Result, error) {
	if pageID == "" {
		return nil, atlassian.Validationf("page_id is required")
	}
	if content == "" {
		return nil, atlassian.Validationf("comment content is required")
	}

	body := map[string]any{
		"type":      "comment",
		"container": map[string]any{"id": pageID, "type": "page"},
		"body": map[string]any{
			"storage": map[string]any{
				"value":          content,
				"representation": "storage",
			},
		},
	}
	if parentCommentID != "" {
		body["ancestors"] = []map[string]any{{"id": parentCommentID}}
	}

	var created page
	if err := c.rest.Post(ctx, "/rest/api/content", body, &created); err != nil {
		return nil, atlassian.ReplaceNotFound(err, "Page not found: %s", pageID)
	}

	logging.Info("confluence comment added", "page_id", pageID, "comment_id", created.ID)
	result := simplifyComment(&created)
	result["page_id"] = pageID
	return result, nil
}

func simplifyComment(p *page) atlassian.Result {
	result := atlassian.Result{
		"id":      p.ID,
		"content": "",
	}
	if p.Body != nil {
		result["content"] = p.Body.Storage.Value
	}
	if p.Version != nil {
		result["created"] = p.Version.When
		if p.Version.By != nil {
			result["author"] = p.Version.By.DisplayName
		}
	}
	return result
}
