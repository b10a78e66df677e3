package tools

import (
	"context"
	"encoding/json"

	"github.com/danielolaszy/atlas/internal/atlassian"
	"github.com/danielolaszy/atlas/internal/config"
	"github.com/danielolaszy/atlas/internal/jira"
	"github.com/danielolaszy/atlas/internal/registry"
)

func registerJira(reg *registry.Registry, cfg config.ServiceConfig) {
	client := newLazy(func() (*jira.Client, error) { return jira.NewClient(cfg) })

	// handle wraps a handler body with client construction and parameter
	// decoding.
	handle := func(fn func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error)) registry.HandlerFunc {
		return func(ctx context.Context, params json.RawMessage) (atlassian.Result, error) {
			c, err := client.get()
			if err != nil {
				return nil, err
			}
			return fn(ctx, c, params)
		}
	}

	reg.MustRegister(registry.Operation{
		Name: "jira_get_issue", Service: "jira", Kind: registry.Read,
		Description: "Get a Jira issue by key",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				IssueKey string `json:"issue_key"`
				Fields   string `json:"fields"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.GetIssue(ctx, p.IssueKey, p.Fields)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_create_issue", Service: "jira", Kind: registry.Write,
		Description: "Create a Jira issue",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				ProjectKey  string   `json:"project_key"`
				Summary     string   `json:"summary"`
				IssueType   string   `json:"issue_type"`
				Description string   `json:"description"`
				Assignee    string   `json:"assignee"`
				Priority    string   `json:"priority"`
				Labels      []string `json:"labels"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.CreateIssue(ctx, p.ProjectKey, p.Summary, p.IssueType, jira.CreateIssueOptions{
				Description: p.Description,
				Assignee:    p.Assignee,
				Priority:    p.Priority,
				Labels:      p.Labels,
			})
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_update_issue", Service: "jira", Kind: registry.Write,
		Description: "Update fields on a Jira issue",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				IssueKey string         `json:"issue_key"`
				Fields   map[string]any `json:"fields"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.UpdateIssue(ctx, p.IssueKey, p.Fields)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_delete_issue", Service: "jira", Kind: registry.Write,
		Description: "Delete a Jira issue",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				IssueKey       string `json:"issue_key"`
				DeleteSubtasks bool   `json:"delete_subtasks"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.DeleteIssue(ctx, p.IssueKey, p.DeleteSubtasks)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_add_comment", Service: "jira", Kind: registry.Write,
		Description: "Add a comment to a Jira issue",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				IssueKey string `json:"issue_key"`
				Comment  string `json:"comment"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.AddComment(ctx, p.IssueKey, p.Comment)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_search", Service: "jira", Kind: registry.Read,
		Description: "Search issues with JQL",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				JQL     string `json:"jql"`
				Fields  string `json:"fields"`
				StartAt int    `json:"start_at"`
				Limit   int    `json:"limit"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.Search(ctx, p.JQL, jira.SearchOptions{
				Fields:  p.Fields,
				StartAt: p.StartAt,
				Limit:   p.Limit,
			})
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_search_fields", Service: "jira", Kind: registry.Read,
		Description: "Search Jira field definitions by keyword",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				Keyword string `json:"keyword"`
				Limit   int    `json:"limit"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.SearchFields(ctx, p.Keyword, p.Limit)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_get_all_projects", Service: "jira", Kind: registry.Read,
		Description: "List visible Jira projects",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				IncludeArchived bool `json:"include_archived"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.GetAllProjects(ctx, p.IncludeArchived)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_get_project_issues", Service: "jira", Kind: registry.Read,
		Description: "List a project's issues, newest first",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				ProjectKey string `json:"project_key"`
				StartAt    int    `json:"start_at"`
				Limit      int    `json:"limit"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.GetProjectIssues(ctx, p.ProjectKey, jira.SearchOptions{
				StartAt: p.StartAt,
				Limit:   p.Limit,
			})
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_get_project_versions", Service: "jira", Kind: registry.Read,
		Description: "List a project's fix versions",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				ProjectKey string `json:"project_key"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.GetProjectVersions(ctx, p.ProjectKey)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_create_version", Service: "jira", Kind: registry.Write,
		Description: "Create a fix version in a project",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				ProjectKey  string `json:"project_key"`
				Name        string `json:"name"`
				Description string `json:"description"`
				StartDate   string `json:"start_date"`
				ReleaseDate string `json:"release_date"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.CreateVersion(ctx, p.ProjectKey, p.Name, jira.CreateVersionOptions{
				Description: p.Description,
				StartDate:   p.StartDate,
				ReleaseDate: p.ReleaseDate,
			})
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_get_user_profile", Service: "jira", Kind: registry.Read,
		Description: "Look up a user by email, username, or account ID",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				UserIdentifier string `json:"user_identifier"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.GetUserProfile(ctx, p.UserIdentifier)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_get_link_types", Service: "jira", Kind: registry.Read,
		Description: "List issue link types",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			return c.GetLinkTypes(ctx)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_create_issue_link", Service: "jira", Kind: registry.Write,
		Description: "Link two issues",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				LinkType        string `json:"link_type"`
				InwardIssueKey  string `json:"inward_issue_key"`
				OutwardIssueKey string `json:"outward_issue_key"`
				Comment         string `json:"comment"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.CreateIssueLink(ctx, p.LinkType, p.InwardIssueKey, p.OutwardIssueKey, p.Comment)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_link_to_epic", Service: "jira", Kind: registry.Write,
		Description: "Attach an issue to an epic",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				IssueKey string `json:"issue_key"`
				EpicKey  string `json:"epic_key"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.LinkToEpic(ctx, p.IssueKey, p.EpicKey)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_remove_issue_link", Service: "jira", Kind: registry.Write,
		Description: "Remove an issue link by ID",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				LinkID string `json:"link_id"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.RemoveIssueLink(ctx, p.LinkID)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_get_worklog", Service: "jira", Kind: registry.Read,
		Description: "List worklog entries on an issue",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				IssueKey string `json:"issue_key"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.GetWorklog(ctx, p.IssueKey)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_add_worklog", Service: "jira", Kind: registry.Write,
		Description: "Log time on an issue",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				IssueKey          string `json:"issue_key"`
				TimeSpent         string `json:"time_spent"`
				Comment           string `json:"comment"`
				Started           string `json:"started"`
				RemainingEstimate string `json:"remaining_estimate"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.AddWorklog(ctx, p.IssueKey, p.TimeSpent, jira.AddWorklogOptions{
				Comment:           p.Comment,
				Started:           p.Started,
				RemainingEstimate: p.RemainingEstimate,
			})
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_get_agile_boards", Service: "jira", Kind: registry.Read,
		Description: "List agile boards",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				BoardName  string `json:"board_name"`
				ProjectKey string `json:"project_key"`
				BoardType  string `json:"board_type"`
				StartAt    int    `json:"start_at"`
				Limit      int    `json:"limit"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.GetAgileBoards(ctx, jira.BoardOptions{
				Name:       p.BoardName,
				ProjectKey: p.ProjectKey,
				BoardType:  p.BoardType,
				StartAt:    p.StartAt,
				Limit:      p.Limit,
			})
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_get_board_issues", Service: "jira", Kind: registry.Read,
		Description: "List the issues on a board",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				BoardID string `json:"board_id"`
				JQL     string `json:"jql"`
				StartAt int    `json:"start_at"`
				Limit   int    `json:"limit"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.GetBoardIssues(ctx, p.BoardID, p.JQL, jira.PageOptions{
				StartAt: p.StartAt,
				Limit:   p.Limit,
			})
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_get_sprints_from_board", Service: "jira", Kind: registry.Read,
		Description: "List a board's sprints",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				BoardID string `json:"board_id"`
				State   string `json:"state"`
				StartAt int    `json:"start_at"`
				Limit   int    `json:"limit"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.GetSprintsFromBoard(ctx, p.BoardID, p.State, jira.PageOptions{
				StartAt: p.StartAt,
				Limit:   p.Limit,
			})
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_get_sprint_issues", Service: "jira", Kind: registry.Read,
		Description: "List the issues in a sprint",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				SprintID string `json:"sprint_id"`
				StartAt  int    `json:"start_at"`
				Limit    int    `json:"limit"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.GetSprintIssues(ctx, p.SprintID, jira.PageOptions{
				StartAt: p.StartAt,
				Limit:   p.Limit,
			})
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_create_sprint", Service: "jira", Kind: registry.Write,
		Description: "Create a sprint on a scrum board",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				BoardID    string `json:"board_id"`
				SprintName string `json:"sprint_name"`
				StartDate  string `json:"start_date"`
				EndDate    string `json:"end_date"`
				Goal       string `json:"goal"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.CreateSprint(ctx, p.BoardID, p.SprintName, jira.SprintOptions{
				StartDate: p.StartDate,
				EndDate:   p.EndDate,
				Goal:      p.Goal,
			})
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_update_sprint", Service: "jira", Kind: registry.Write,
		Description: "Update a sprint's fields or state",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				SprintID   string `json:"sprint_id"`
				SprintName string `json:"sprint_name"`
				State      string `json:"state"`
				StartDate  string `json:"start_date"`
				EndDate    string `json:"end_date"`
				Goal       string `json:"goal"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.UpdateSprint(ctx, p.SprintID, jira.UpdateSprintOptions{
				Name:      p.SprintName,
				State:     p.State,
				StartDate: p.StartDate,
				EndDate:   p.EndDate,
				Goal:      p.Goal,
			})
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_get_transitions", Service: "jira", Kind: registry.Read,
		Description: "List available workflow transitions for an issue",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				IssueKey string `json:"issue_key"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.GetTransitions(ctx, p.IssueKey)
		}),
	})

	reg.MustRegister(registry.Operation{
		Name: "jira_transition_issue", Service: "jira", Kind: registry.Write,
		Description: "Move an issue through a workflow transition",
		Handler: handle(func(ctx context.Context, c *jira.Client, params json.RawMessage) (atlassian.Result, error) {
			var p struct {
				IssueKey     string         `json:"issue_key"`
				TransitionID string         `json:"transition_id"`
				Comment      string         `json:"comment"`
				Fields       map[string]any `json:"fields"`
			}
			if err := decode(params, &p); err != nil {
				return nil, err
			}
			return c.TransitionIssue(ctx, p.IssueKey, p.TransitionID, p.Comment, p.Fields)
		}),
	})
}
