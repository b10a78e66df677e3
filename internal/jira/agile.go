package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/atlas/internal/atlassian"
	"github.com/danielolaszy/atlas/internal/logging"
)

// BoardOptions filters the board listing.
type BoardOptions struct {
	// Name filters boards whose name contains the value.
	Name string
	// ProjectKey restricts boards to one project.
	ProjectKey string
	// BoardType is "scrum" or "kanban"; empty means both.
	BoardType string
	StartAt   int
	Limit     int
}

// PageOptions is plain offset pagination for agile listings.
type PageOptions struct {
	StartAt int
	Limit   int
}

// SprintOptions carries the optional fields for creating a sprint.
type SprintOptions struct {
	StartDate string
	EndDate   string
	Goal      string
}

// UpdateSprintOptions carries the sprint fields a partial update may set.
type UpdateSprintOptions struct {
	Name      string
	State     string
	StartDate string
	EndDate   string
	Goal      string
}

// agileSprint mirrors the agile API sprint payload. The modeled Sprint type
// predates the goal field, so the raw shape is decoded here.
type agileSprint struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	State         string `json:"state"`
	StartDate     string `json:"startDate,omitempty"`
	EndDate       string `json:"endDate,omitempty"`
	Goal          string `json:"goal,omitempty"`
	OriginBoardID int    `json:"originBoardId,omitempty"`
}

type sprintPage struct {
	Values     []agileSprint `json:"values"`
	StartAt    int           `json:"startAt"`
	MaxResults int           `json:"maxResults"`
	IsLast     bool          `json:"isLast"`
}

type issuePage struct {
	Issues     []jira.Issue `json:"issues"`
	StartAt    int          `json:"startAt"`
	MaxResults int          `json:"maxResults"`
	Total      int          `json:"total"`
}

// GetAgileBoards lists agile boards, optionally filtered by name, project,
// and type.
func (c *Client) GetAgileBoards(ctx context.Context, opts BoardOptions) (atlassian.Result, error) {
	if opts.Limit == 0 {
		opts.Limit = defaultPageSize
	}

	boards, resp, err := c.jira.Board.GetAllBoardsWithContext(ctx, &jira.BoardListOptions{
		BoardType:      opts.BoardType,
		Name:           opts.Name,
		ProjectKeyOrID: opts.ProjectKey,
		SearchOptions: jira.SearchOptions{
			StartAt:    opts.StartAt,
			MaxResults: opts.Limit,
		},
	})
	if err != nil {
		return nil, classify(resp, err)
	}

	simplified := make([]atlassian.Result, 0, len(boards.Values))
	for _, b := range boards.Values {
		simplified = append(simplified, atlassian.Result{
			"id":   b.ID,
			"name": b.Name,
			"type": b.Type,
		})
	}

	return atlassian.Result{
		"boards":      simplified,
		"total":       boards.Total,
		"start_at":    boards.StartAt,
		"max_results": boards.MaxResults,
		"is_last":     boards.IsLast,
	}, nil
}

// GetBoardIssues lists the issues on a board, optionally narrowed by JQL.
func (c *Client) GetBoardIssues(ctx context.Context, boardID, jql string, opts PageOptions) (atlassian.Result, error) {
	if boardID == "" {
		return nil, atlassian.Validationf("board_id is required")
	}

	params := pageParams(opts)
	if jql != "" {
		params.Set("jql", jql)
	}

	endpoint := fmt.Sprintf("rest/agile/1.0/board/%s/issue?%s", boardID, params.Encode())
	page, err := c.getIssuePage(ctx, endpoint, "Board not found: %s", boardID)
	if err != nil {
		return nil, err
	}

	return atlassian.Result{
		"issues":      simplifyIssues(page.Issues),
		"board_id":    boardID,
		"total":       page.Total,
		"start_at":    page.StartAt,
		"max_results": page.MaxResults,
		"is_last":     page.StartAt+len(page.Issues) >= page.Total,
	}, nil
}

// GetSprintsFromBoard lists a board's sprints, optionally filtered by state
// ("active", "future", "closed").
func (c *Client) GetSprintsFromBoard(ctx context.Context, boardID, state string, opts PageOptions) (atlassian.Result, error) {
	if boardID == "" {
		return nil, atlassian.Validationf("board_id is required")
	}

	params := pageParams(opts)
	if state != "" {
		params.Set("state", state)
	}

	endpoint := fmt.Sprintf("rest/agile/1.0/board/%s/sprint?%s", boardID, params.Encode())
	req, err := c.jira.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, atlassian.Validationf("Invalid request: %v", err)
	}

	page := new(sprintPage)
	resp, err := c.jira.Do(req, page)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(classify(resp, err), "Board not found: %s", boardID)
	}

	sprints := make([]atlassian.Result, 0, len(page.Values))
	for _, s := range page.Values {
		sprints = append(sprints, simplifySprint(&s))
	}

	return atlassian.Result{
		"sprints":     sprints,
		"board_id":    boardID,
		"start_at":    page.StartAt,
		"max_results": page.MaxResults,
		"is_last":     page.IsLast,
	}, nil
}

// GetSprintIssues lists the issues assigned to a sprint.
func (c *Client) GetSprintIssues(ctx context.Context, sprintID string, opts PageOptions) (atlassian.Result, error) {
	if sprintID == "" {
		return nil, atlassian.Validationf("sprint_id is required")
	}

	endpoint := fmt.Sprintf("rest/agile/1.0/sprint/%s/issue?%s", sprintID, pageParams(opts).Encode())
	page, err := c.getIssuePage(ctx, endpoint, "Sprint not found: %s", sprintID)
	if err != nil {
		return nil, err
	}

	return atlassian.Result{
		"issues":      simplifyIssues(page.Issues),
		"sprint_id":   sprintID,
		"total":       page.Total,
		"start_at":    page.StartAt,
		"max_results": page.MaxResults,
		"is_last":     page.StartAt+len(page.Issues) >= page.Total,
	}, nil
}

// CreateSprint creates a sprint on a scrum board. New sprints always start
// in the future state.
func (c *Client) CreateSprint(ctx context.Context, boardID, name string, opts SprintOptions) (atlassian.Result, error) {
	if boardID == "" {
		return nil, atlassian.Validationf("board_id is required")
	}
	if name == "" {
		return nil, atlassian.Validationf("sprint_name is required")
	}
	originBoardID, err := strconv.Atoi(boardID)
	if err != nil {
		return nil, atlassian.Validationf("Invalid board_id: %s", boardID)
	}

	body := map[string]any{
		"name":          name,
		"originBoardId": originBoardID,
	}
	if opts.StartDate != "" {
		body["startDate"] = opts.StartDate
	}
	if opts.EndDate != "" {
		body["endDate"] = opts.EndDate
	}
	if opts.Goal != "" {
		body["goal"] = opts.Goal
	}

	req, err := c.jira.NewRequestWithContext(ctx, http.MethodPost, "rest/agile/1.0/sprint", body)
	if err != nil {
		return nil, atlassian.Validationf("Invalid request: %v", err)
	}

	sprint := new(agileSprint)
	resp, err := c.jira.Do(req, sprint)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(classify(resp, err), "Board not found: %s", boardID)
	}

	logging.Info("jira sprint created", "board_id", boardID, "name", name)
	result := simplifySprint(sprint)
	result["board_id"] = boardID
	return result, nil
}

// UpdateSprint applies a partial update to a sprint. State transitions
// follow the agile lifecycle: future -> active -> closed.
func (c *Client) UpdateSprint(ctx context.Context, sprintID string, opts UpdateSprintOptions) (atlassian.Result, error) {
	if sprintID == "" {
		return nil, atlassian.Validationf("sprint_id is required")
	}

	body := map[string]any{}
	if opts.Name != "" {
		body["name"] = opts.Name
	}
	if opts.State != "" {
		body["state"] = opts.State
	}
	if opts.StartDate != "" {
		body["startDate"] = opts.StartDate
	}
	if opts.EndDate != "" {
		body["endDate"] = opts.EndDate
	}
	if opts.Goal != "" {
		body["goal"] = opts.Goal
	}
	if len(body) == 0 {
		return nil, atlassian.Validationf("at least one field to update is required")
	}

	endpoint := fmt.Sprintf("rest/agile/1.0/sprint/%s", sprintID)
	req, err := c.jira.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, atlassian.Validationf("Invalid request: %v", err)
	}

	sprint := new(agileSprint)
	resp, err := c.jira.Do(req, sprint)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(classify(resp, err), "Sprint not found: %s", sprintID)
	}

	logging.Info("jira sprint updated", "sprint_id", sprintID)
	return simplifySprint(sprint), nil
}

func (c *Client) getIssuePage(ctx context.Context, endpoint, notFoundFormat string, identifier string) (*issuePage, error) {
	req, err := c.jira.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, atlassian.Validationf("Invalid request: %v", err)
	}

	page := new(issuePage)
	resp, err := c.jira.Do(req, page)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(classify(resp, err), notFoundFormat, identifier)
	}
	return page, nil
}

func pageParams(opts PageOptions) url.Values {
	if opts.Limit == 0 {
		opts.Limit = defaultPageSize
	}
	params := url.Values{}
	params.Set("startAt", strconv.Itoa(opts.StartAt))
	params.Set("maxResults", strconv.Itoa(opts.Limit))
	return params
}

func simplifySprint(s *agileSprint) atlassian.Result {
	return atlassian.Result{
		"id":         s.ID,
		"name":       s.Name,
		"state":      s.State,
		"start_date": s.StartDate,
		"end_date":   s.EndDate,
		"goal":       s.Goal,
	}
}
