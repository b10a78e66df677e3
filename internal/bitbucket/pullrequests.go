package bitbucket

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/danielolaszy/atlas/internal/atlassian"
	"github.com/danielolaszy/atlas/internal/logging"
)

// mergeStrategies maps the accepted strategy names to Bitbucket's strategy
// IDs.
var mergeStrategies = map[string]string{
	"merge-commit": "no-ff",
	"squash":       "squash",
	"fast-forward": "ff-only",
}

type prRef struct {
	ID         string `json:"id"`
	DisplayID  string `json:"displayId"`
	Repository struct {
		Slug    string `json:"slug"`
		Project struct {
			Key string `json:"key"`
		} `json:"project"`
	} `json:"repository"`
}

type pullRequest struct {
	ID          int    `json:"id"`
	Version     int    `json:"version"`
	Title       string `json:"title"`
	Description string `json:"description"`
	State       string `json:"state"`
	Open        bool   `json:"open"`
	CreatedDate int64  `json:"createdDate"`
	UpdatedDate int64  `json:"updatedDate"`
	FromRef     prRef  `json:"fromRef"`
	ToRef       prRef  `json:"toRef"`
	Author      struct {
		User struct {
			Name         string `json:"name"`
			DisplayName  string `json:"displayName"`
			EmailAddress string `json:"emailAddress"`
		} `json:"user"`
	} `json:"author"`
	Reviewers []struct {
		User struct {
			Name        string `json:"name"`
			DisplayName string `json:"displayName"`
		} `json:"user"`
		Approved bool `json:"approved"`
	} `json:"reviewers"`
	Links struct {
		Self []struct {
			Href string `json:"href"`
		} `json:"self"`
	} `json:"links"`
}

func simplifyPullRequest(pr *pullRequest) atlassian.Result {
	reviewers := make([]atlassian.Result, 0, len(pr.Reviewers))
	for _, r := range pr.Reviewers {
		reviewers = append(reviewers, atlassian.Result{
			"name":         r.User.Name,
			"display_name": r.User.DisplayName,
			"approved":     r.Approved,
		})
	}

	result := atlassian.Result{
		"id":            pr.ID,
		"version":       pr.Version,
		"title":         pr.Title,
		"description":   pr.Description,
		"state":         pr.State,
		"open":          pr.Open,
		"source_branch": pr.FromRef.DisplayID,
		"target_branch": pr.ToRef.DisplayID,
		"author":        pr.Author.User.DisplayName,
		"created_date":  pr.CreatedDate,
		"updated_date":  pr.UpdatedDate,
		"reviewers":     reviewers,
	}
	if len(pr.Links.Self) > 0 {
		result["url"] = pr.Links.Self[0].Href
	}
	return result
}

// CreatePullRequest opens a pull request from sourceBranch to targetBranch.
// reviewers are Bitbucket usernames.
func (c *Client) CreatePullRequest(ctx context.Context, projectKey, repoSlug, title, sourceBranch, targetBranch, description string, reviewers []string) (atlassian.Result, error) {
	if err := requireRepo(projectKey, repoSlug); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, atlassian.Validationf("title is required")
	}
	if sourceBranch == "" || targetBranch == "" {
		return nil, atlassian.Validationf("source_branch and target_branch are required")
	}

	ref := func(branch string) map[string]any {
		return map[string]any{
			"id": "refs/heads/" + branch,
			"repository": map[string]any{
				"slug":    repoSlug,
				"project": map[string]any{"key": projectKey},
			},
		}
	}

	body := map[string]any{
		"title":       title,
		"description": description,
		"fromRef":     ref(sourceBranch),
		"toRef":       ref(targetBranch),
	}
	if len(reviewers) > 0 {
		users := make([]map[string]any, 0, len(reviewers))
		for _, name := range reviewers {
			users = append(users, map[string]any{"user": map[string]any{"name": name}})
		}
		body["reviewers"] = users
	}

	var pr pullRequest
	err := c.rest.Post(ctx, repoPath(projectKey, repoSlug, "/pull-requests"), body, &pr)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(err, "Repository not found: %s/%s", projectKey, repoSlug)
	}

	logging.Info("bitbucket pull request created",
		"project", projectKey, "repo", repoSlug, "id", pr.ID,
		"source", sourceBranch, "target", targetBranch)
	return simplifyPullRequest(&pr), nil
}

// GetPullRequest fetches a pull request by ID.
func (c *Client) GetPullRequest(ctx context.Context, projectKey, repoSlug string, prID int) (atlassian.Result, error) {
	pr, err := c.fetchPullRequest(ctx, projectKey, repoSlug, prID)
	if err != nil {
		return nil, err
	}
	return simplifyPullRequest(pr), nil
}

func (c *Client) fetchPullRequest(ctx context.Context, projectKey, repoSlug string, prID int) (*pullRequest, error) {
	if err := requireRepo(projectKey, repoSlug); err != nil {
		return nil, err
	}
	if prID <= 0 {
		return nil, atlassian.Validationf("pull_request_id is required")
	}

	var pr pullRequest
	path := repoPath(projectKey, repoSlug, "/pull-requests/"+strconv.Itoa(prID))
	if err := c.rest.Get(ctx, path, nil, &pr); err != nil {
		return nil, atlassian.ReplaceNotFound(err, "Pull request not found: %d", prID)
	}
	return &pr, nil
}

// currentVersion resolves the PR version Bitbucket requires for optimistic
// locking on state changes. A caller-supplied version wins; otherwise the
// pull request is fetched to obtain it.
func (c *Client) currentVersion(ctx context.Context, projectKey, repoSlug string, prID, version int) (int, error) {
	if version > 0 {
		if err := requireRepo(projectKey, repoSlug); err != nil {
			return 0, err
		}
		if prID <= 0 {
			return 0, atlassian.Validationf("pull_request_id is required")
		}
		return version, nil
	}
	pr, err := c.fetchPullRequest(ctx, projectKey, repoSlug, prID)
	if err != nil {
		return 0, err
	}
	return pr.Version, nil
}

// MergePullRequest merges a pull request. strategy is one of merge-commit,
// squash, or fast-forward; empty uses the repository default. version is the
// PR version for Bitbucket's optimistic locking; zero means fetch the
// current one first.
func (c *Client) MergePullRequest(ctx context.Context, projectKey, repoSlug string, prID, version int, message, strategy string) (atlassian.Result, error) {
	strategyID := ""
	if strategy != "" {
		id, ok := mergeStrategies[strategy]
		if !ok {
			return nil, atlassian.Validationf(
				"Invalid merge strategy: %s (expected merge-commit, squash, or fast-forward)", strategy)
		}
		strategyID = id
	}

	version, err := c.currentVersion(ctx, projectKey, repoSlug, prID, version)
	if err != nil {
		return nil, err
	}

	body := map[string]any{"version": version}
	if message != "" {
		body["message"] = message
	}
	if strategyID != "" {
		body["strategyId"] = strategyID
	}

	var merged pullRequest
	path := repoPath(projectKey, repoSlug, fmt.Sprintf("/pull-requests/%d/merge?version=%d", prID, version))
	if err := c.rest.Post(ctx, path, body, &merged); err != nil {
		return nil, err
	}

	logging.Info("bitbucket pull request merged", "project", projectKey, "repo", repoSlug, "id", prID, "strategy", strategy)
	return simplifyPullRequest(&merged), nil
}

// DeclinePullRequest declines an open pull request. version zero means
// fetch the current one first.
func (c *Client) DeclinePullRequest(ctx context.Context, projectKey, repoSlug string, prID, version int, comment string) (atlassian.Result, error) {
	version, err := c.currentVersion(ctx, projectKey, repoSlug, prID, version)
	if err != nil {
		return nil, err
	}

	body := map[string]any{"version": version}
	if comment != "" {
		body["comment"] = comment
	}

	var declined pullRequest
	path := repoPath(projectKey, repoSlug, fmt.Sprintf("/pull-requests/%d/decline?version=%d", prID, version))
	if err := c.rest.Post(ctx, path, body, &declined); err != nil {
		return nil, err
	}

	logging.Info("bitbucket pull request declined", "project", projectKey, "repo", repoSlug, "id", prID)
	return simplifyPullRequest(&declined), nil
}

// AddPRComment posts a general comment on a pull request. A non-zero
// parentID makes the comment a threaded reply.
func (c *Client) AddPRComment(ctx context.Context, projectKey, repoSlug string, prID int, text string, parentID int) (atlassian.Result, error) {
	if err := requireRepo(projectKey, repoSlug); err != nil {
		return nil, err
	}
	if prID <= 0 {
		return nil, atlassian.Validationf("pull_request_id is required")
	}
	if text == "" {
		return nil, atlassian.Validationf("comment text is required")
	}

	body := map[string]any{"text": text}
	if parentID > 0 {
		body["parent"] = map[string]any{"id": parentID}
	}

	var comment struct {
		ID     int    `json:"id"`
		Text   string `json:"text"`
		Author struct {
			DisplayName string `json:"displayName"`
		} `json:"author"`
		CreatedDate int64 `json:"createdDate"`
	}
	path := repoPath(projectKey, repoSlug, fmt.Sprintf("/pull-requests/%d/comments", prID))
	err := c.rest.Post(ctx, path, body, &comment)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(err, "Pull request not found: %d", prID)
	}

	return atlassian.Result{
		"id":              comment.ID,
		"text":            comment.Text,
		"author":          comment.Author.DisplayName,
		"created_date":    comment.CreatedDate,
		"pull_request_id": prID,
	}, nil
}

// GetPRDiff fetches a pull request's unified diff. Two calls: the pull
// request object for branch context, then the raw diff text.
func (c *Client) GetPRDiff(ctx context.Context, projectKey, repoSlug string, prID int, contextLines int) (atlassian.Result, error) {
	pr, err := c.fetchPullRequest(ctx, projectKey, repoSlug, prID)
	if err != nil {
		return nil, err
	}

	var params url.Values
	if contextLines > 0 {
		params = url.Values{"contextLines": {strconv.Itoa(contextLines)}}
	}

	path := repoPath(projectKey, repoSlug, fmt.Sprintf("/pull-requests/%d.diff", prID))
	diff, err := c.rest.GetText(ctx, path, params)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(err, "Pull request not found: %d", prID)
	}

	return atlassian.Result{
		"pull_request_id": prID,
		"title":           pr.Title,
		"source_branch":   pr.FromRef.DisplayID,
		"target_branch":   pr.ToRef.DisplayID,
		"diff":            diff,
	}, nil
}
