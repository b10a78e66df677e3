package tools

import (
	"context"
	"encoding/json"

	"github.com/danielolaszy/atlas/internal/atlassian"
	"github.com/danielolaszy/atlas/internal/bitbucket"
	"github.com/danielolaszy/atlas/internal/config"
	"github.com/danielolaszy/atlas/internal/registry"
)

func registerBitbucket(reg *registry.Registry, cfg config.ServiceConfig) {
	client := newLazy(func() (*bitbucket.Client, error) { return bitbucket.NewClient(cfg) })

	handle := func(fn func(ctx context.Context, c *bitbucket.Client, params json.RawMessage) (atlassian.Result, error)) registry.HandlerFunc {
		return func(ctx context.Context, params json.RawMessage) (atlassian.Result, error) {
			c, err := client.get()
			if err != nil {
				return nil, err
			}
			return fn(ctx, c, params)
		}
	}

	reg.MustRegister(registry.Operation{
		Name: "bitbucket_list_projects", Service: "bitbucket", Kind: registry.Read,
		Description: "List visible Bitbucket projects",
		Handler: handle(func(ctx context.Context, c *bitbucket.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				Start int `json:"start"`
				Limit int `json:"limit"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.ListProjects(ctx, bitbucket.PageOptions{Start: p.Start, Limit: p.Limit})
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "bitbucket_list_repositories", Service: "bitbucket", Kind: registry.Read,
		Description: "List the repositories in a project",
		Handler: handle(func(ctx context.Context, c *bitbucket.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				ProjectKey string `json:"project_key"`
				Start      int    `json:"start"`
				Limit      int    `json:"limit"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.ListRepositories(ctx, p.ProjectKey, bitbucket.PageOptions{Start: p.Start, Limit: p.Limit})
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "bitbucket_create_pull_request", Service: "bitbucket", Kind: registry.Write,
		Description: "Open a pull request",
		Handler: handle(func(ctx context.Context, c *bitbucket.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				ProjectKey   string   `json:"project_key"`
				RepoSlug     string   `json:"repo_slug"`
				Title        string   `json:"title"`
				SourceBranch string   `json:"source_branch"`
				TargetBranch string   `json:"target_branch"`
				Description  string   `json:"description"`
				Reviewers    []string `json:"reviewers"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.CreatePullRequest(ctx, p.ProjectKey, p.RepoSlug, p.Title,
				p.SourceBranch, p.TargetBranch, p.Description, p.Reviewers)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "bitbucket_get_pull_request", Service: "bitbucket", Kind: registry.Read,
		Description: "Get a pull request by ID",
		Handler: handle(func(ctx context.Context, c *bitbucket.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				ProjectKey    string `json:"project_key"`
				RepoSlug      string `json:"repo_slug"`
				PullRequestID int    `json:"pull_request_id"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.GetPullRequest(ctx, p.ProjectKey, p.RepoSlug, p.PullRequestID)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "bitbucket_merge_pull_request", Service: "bitbucket", Kind: registry.Write,
		Description: "Merge a pull request",
		Handler: handle(func(ctx context.Context, c *bitbucket.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				ProjectKey    string `json:"project_key"`
				RepoSlug      string `json:"repo_slug"`
				PullRequestID int    `json:"pull_request_id"`
				Version       int    `json:"version"`
				Message       string `json:"message"`
				Strategy      string `json:"strategy"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.MergePullRequest(ctx, p.ProjectKey, p.RepoSlug, p.PullRequestID, p.Version, p.Message, p.Strategy)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "bitbucket_decline_pull_request", Service: "bitbucket", Kind: registry.Write,
		Description: "Decline a pull request",
		Handler: handle(func(ctx context.Context, c *bitbucket.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				ProjectKey    string `json:"project_key"`
				RepoSlug      string `json:"repo_slug"`
				PullRequestID int    `json:"pull_request_id"`
				Version       int    `json:"version"`
				Comment       string `json:"comment"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.DeclinePullRequest(ctx, p.ProjectKey, p.RepoSlug, p.PullRequestID, p.Version, p.Comment)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "bitbucket_add_pr_comment", Service: "bitbucket", Kind: registry.Write,
		Description: "Comment on a pull request",
		Handler: handle(func(ctx context.Context, c *bitbucket.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				ProjectKey    string `json:"project_key"`
				RepoSlug      string `json:"repo_slug"`
				PullRequestID int    `json:"pull_request_id"`
				Text          string `json:"text"`
				ParentID      int    `json:"parent_id"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.AddPRComment(ctx, p.ProjectKey, p.RepoSlug, p.PullRequestID, p.Text, p.ParentID)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "bitbucket_get_pr_diff", Service: "bitbucket", Kind: registry.Read,
		Description: "Get a pull request's unified diff",
		Handler: handle(func(ctx context.Context, c *bitbucket.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				ProjectKey    string `json:"project_key"`
				RepoSlug      string `json:"repo_slug"`
				PullRequestID int    `json:"pull_request_id"`
				ContextLines  int    `json:"context_lines"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.GetPRDiff(ctx, p.ProjectKey, p.RepoSlug, p.PullRequestID, p.ContextLines)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "bitbucket_get_commits", Service: "bitbucket", Kind: registry.Read,
		Description: "List commits on a repository",
		Handler: handle(func(ctx context.Context, c *bitbucket.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				ProjectKey string `json:"project_key"`
				RepoSlug   string `json:"repo_slug"`
				Ref        string `json:"ref"`
				Path       string `json:"path"`
				Start      int    `json:"start"`
				Limit      int    `json:"limit"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.GetCommits(ctx, p.ProjectKey, p.RepoSlug, p.Ref, p.Path,
				bitbucket.PageOptions{Start: p.Start, Limit: p.Limit})
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "bitbucket_get_commit", Service: "bitbucket", Kind: registry.Read,
		Description: "Get a single commit by hash",
		Handler: handle(func(ctx context.Context, c *bitbucket.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				ProjectKey string `json:"project_key"`
				RepoSlug   string `json:"repo_slug"`
				CommitID   string `json:"commit_id"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.GetCommit(ctx, p.ProjectKey, p.RepoSlug, p.CommitID)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "bitbucket_get_file_content", Service: "bitbucket", Kind: registry.Read,
		Description: "Get a file's content at a ref",
		Handler: handle(func(ctx context.Context, c *bitbucket.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				ProjectKey string `json:"project_key"`
				RepoSlug   string `json:"repo_slug"`
				FilePath   string `json:"file_path"`
				Ref        string `json:"ref"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.GetFileContent(ctx, p.ProjectKey, p.RepoSlug, p.FilePath, p.Ref)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "bitbucket_search", Service: "bitbucket", Kind: registry.Read,
		Description: "Search code across repositories",
		Handler: handle(func(ctx context.Context, c *bitbucket.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				Query      string `json:"query"`
				ProjectKey string `json:"project_key"`
				RepoSlug   string `json:"repo_slug"`
				Limit      int    `json:"limit"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.Search(ctx, p.Query, p.ProjectKey, p.RepoSlug, p.Limit)
		}),
	})
}
