package tools

import (
	"context"
	"encoding/json"

	"github.com/danielolaszy/atlas/internal/atlassian"
	"github.com/danielolaszy/atlas/internal/config"
	"github.com/danielolaszy/atlas/internal/confluence"
	"github.com/danielolaszy/atlas/internal/registry"
)

func registerConfluence(reg *registry.Registry, cfg config.ServiceConfig) {
	client := newLazy(func() (*confluence.Client, error) { return confluence.NewClient(cfg) })

	handle := func(fn func(ctx context.Context, c *confluence.Client, params json.RawMessage) (atlassian.Result, error)) registry.HandlerFunc {
		return func(ctx context.Context, params json.RawMessage) (atlassian.Result, error) {
			c, err := client.get()
			if err != nil {
				return nil, err
			}
			return fn(ctx, c, params)
		}
	}

	reg.MustRegister(registry.Operation{
		Name: "confluence_get_page", Service: "confluence", Kind: registry.Read,
		Description: "Get a page by ID or by title within a space",
		Handler: handle(func(ctx context.Context, c *confluence.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				PageID   string `json:"page_id"`
				Title    string `json:"title"`
				SpaceKey string `json:"space_key"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.GetPage(ctx, p.PageID, p.Title, p.SpaceKey)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "confluence_create_page", Service: "confluence", Kind: registry.Write,
		Description: "Create a page in a space",
		Handler: handle(func(ctx context.Context, c *confluence.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				SpaceKey string `json:"space_key"`
				Title    string `json:"title"`
				Content  string `json:"content"`
				ParentID string `json:"parent_id"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.CreatePage(ctx, p.SpaceKey, p.Title, p.Content, p.ParentID)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "confluence_update_page", Service: "confluence", Kind: registry.Write,
		Description: "Replace a page's title and content",
		Handler: handle(func(ctx context.Context, c *confluence.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				PageID         string `json:"page_id"`
				Title          string `json:"title"`
				Content        string `json:"content"`
				VersionComment string `json:"version_comment"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.UpdatePage(ctx, p.PageID, p.Title, p.Content, p.VersionComment)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "confluence_delete_page", Service: "confluence", Kind: registry.Write,
		Description: "Delete a page",
		Handler: handle(func(ctx context.Context, c *confluence.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				PageID string `json:"page_id"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.DeletePage(ctx, p.PageID)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "confluence_get_comments", Service: "confluence", Kind: registry.Read,
		Description: "List the comments on a page",
		Handler: handle(func(ctx context.Context, c *confluence.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				PageID string `json:"page_id"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.GetComments(ctx, p.PageID)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "confluence_add_comment", Service: "confluence", Kind: registry.Write,
		Description: "Add a comment to a page",
		Handler: handle(func(ctx context.Context, c *confluence.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				PageID          string `json:"page_id"`
				Content         string `json:"content"`
				ParentCommentID string `json:"parent_comment_id"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.AddComment(ctx, p.PageID, p.Content, p.ParentCommentID)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "confluence_get_labels", Service: "confluence", Kind: registry.Read,
		Description: "List the labels on a page",
		Handler: handle(func(ctx context.Context, c *confluence.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				PageID string `json:"page_id"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.GetLabels(ctx, p.PageID)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "confluence_add_label", Service: "confluence", Kind: registry.Write,
		Description: "Add a label to a page",
		Handler: handle(func(ctx context.Context, c *confluence.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				PageID string `json:"page_id"`
				Name   string `json:"name"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.AddLabel(ctx, p.PageID, p.Name)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "confluence_remove_label", Service: "confluence", Kind: registry.Write,
		Description: "Remove a label from a page",
		Handler: handle(func(ctx context.Context, c *confluence.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				PageID string `json:"page_id"`
				Name   string `json:"name"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.RemoveLabel(ctx, p.PageID, p.Name)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "confluence_search", Service: "confluence", Kind: registry.Read,
		Description: "Search content with CQL",
		Handler: handle(func(ctx context.Context, c *confluence.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				CQL   string `json:"cql"`
				Start int    `json:"start"`
				Limit int    `json:"limit"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.Search(ctx, p.CQL, p.Start, p.Limit)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "confluence_search_user", Service: "confluence", Kind: registry.Read,
		Description: "Search users by full name",
		Handler: handle(func(ctx context.Context, c *confluence.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				Query string `json:"query"`
				Limit int    `json:"limit"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.SearchUsers(ctx, p.Query, p.Limit)
		}),
	})
}
