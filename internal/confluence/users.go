package confluence

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/danielolaszy/atlas/internal/atlassian"
)

type userSearchResult struct {
	Results []struct {
		User struct {
			AccountID   string `json:"accountId"`
			AccountType string `json:"accountType"`
			Email       string `json:"email"`
			DisplayName string `json:"displayName"`
		} `json:"user"`
	} `json:"results"`
	Start     int `json:"start"`
	Limit     int `json:"limit"`
	Size      int `json:"size"`
	TotalSize int `json:"totalSize"`
}

// SearchUsers finds users whose full name matches the query. The query is
// wrapped into a CQL fullname clause; quotes are escaped so user input
// cannot break out of the clause.
func (c *Client) SearchUsers(ctx context.Context, query string, limit int) (atlassian.Result, error) {
	if query == "" {
		return nil, atlassian.Validationf("query is required")
	}
	if limit < 0 {
		return nil, atlassian.Validationf("limit must not be negative")
	}
	if limit == 0 {
		limit = defaultPageSize
	}

	escaped := strings.ReplaceAll(query, `"`, `\"`)
	params := url.Values{
		"cql":   {fmt.Sprintf(`user.fullname ~ "%s"`, escaped)},
		"limit": {strconv.Itoa(limit)},
	}

	var sr userSearchResult
	if err := c.rest.Get(ctx, "/rest/api/search/user", params, &sr); err != nil {
		return nil, err
	}

	users := make([]atlassian.Result, 0, len(sr.Results))
	for _, r := range sr.Results {
		users = append(users, atlassian.Result{
			"account_id":   r.User.AccountID,
			"account_type": r.User.AccountType,
			"display_name": r.User.DisplayName,
			"email":        r.User.Email,
		})
	}

	return atlassian.Result{
		"users": users,
		"total": sr.TotalSize,
		"count": len(users),
		"query": query,
	}, nil
}
