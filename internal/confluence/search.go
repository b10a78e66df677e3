package confluence

import (
	"context"
	"net/url"
	"strconv"

	"github.com/danielolaszy/atlas/internal/atlassian"
)

// defaultPageSize bounds list responses when the caller does not set one.
const defaultPageSize = 25

type searchResult struct {
	Results   []page `json:"results"`
	Start     int    `json:"start"`
	Limit     int    `json:"limit"`
	Size      int    `json:"size"`
	TotalSize int    `json:"totalSize"`
}

// Search runs a CQL query over content.
func (c *Client) Search(ctx context.Context, cql string, start, limit int) (atlassian.Result, error) {
	if cql == "" {
		return nil, atlassian.Validationf("cql is required")
	}
	if start < 0 || limit < 0 {
		return nil, atlassian.Validationf("limit and start must not be negative")
	}
	if limit == 0 {
		limit = defaultPageSize
	}

	params := url.Values{
		"cql":    {cql},
		"start":  {strconv.Itoa(start)},
		"limit":  {strconv.Itoa(limit)},
		"expand": {"space,version"},
	}

	var sr searchResult
	if err := c.rest.Get(ctx, "/rest/api/content/search", params, &sr); err != nil {
		return nil, err
	}

	results := make([]atlassian.Result, 0, len(sr.Results))
	for i := range sr.Results {
		results = append(results, c.simplifyPage(&sr.Results[i]))
	}

	return atlassian.Result{
		"results":     results,
		"total":       sr.TotalSize,
		"start_at":    sr.Start,
		"max_results": sr.Limit,
		"is_last":     sr.Start+sr.Size >= sr.TotalSize,
	}, nil
}
