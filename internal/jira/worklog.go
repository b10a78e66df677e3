package jira

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/atlas/internal/atlassian"
	"github.com/danielolaszy/atlas/internal/logging"
)

// AddWorklogOptions carries the optional fields for a new worklog entry.
type AddWorklogOptions struct {
	Comment string
	// Started is when the work began, Jira wire format or RFC 3339.
	// Defaults to now on the server.
	Started string
	// RemainingEstimate sets a new remaining estimate, e.g. "2d".
	RemainingEstimate string
}

var timeSpentPattern = regexp.MustCompile(`(\d+)([wdhm])`)

// unit durations in seconds, using Jira's defaults of an 8 hour day and a
// 5 day week.
var timeSpentUnits = map[string]int{
	"w": 5 * 8 * 60 * 60,
	"d": 8 * 60 * 60,
	"h": 60 * 60,
	"m": 60,
}

// ParseTimeSpent converts a Jira duration string like "1h 30m" or "2d" to
// seconds. Bare numbers and an "s" suffix are taken as seconds.
func ParseTimeSpent(timeSpent string) (int, error) {
	normalized := strings.ToLower(strings.TrimSpace(timeSpent))
	if normalized == "" {
		return 0, atlassian.Validationf("time_spent is required")
	}

	if n, err := strconv.Atoi(strings.TrimSuffix(normalized, "s")); err == nil {
		if n <= 0 {
			return 0, atlassian.Validationf("time_spent must be positive: %s", timeSpent)
		}
		return n, nil
	}

	matches := timeSpentPattern.FindAllStringSubmatch(normalized, -1)
	if len(matches) == 0 {
		return 0, atlassian.Validationf("Invalid time_spent format: %s (expected e.g. '1h 30m', '2d', '90m')", timeSpent)
	}

	total := 0
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, atlassian.Validationf("Invalid time_spent format: %s", timeSpent)
		}
		total += n * timeSpentUnits[m[2]]
	}
	if total <= 0 {
		return 0, atlassian.Validationf("time_spent must be positive: %s", timeSpent)
	}
	return total, nil
}

// GetWorklog lists the worklog entries on an issue.
func (c *Client) GetWorklog(ctx context.Context, issueKey string) (atlassian.Result, error) {
	if issueKey == "" {
		return nil, atlassian.Validationf("issue_key is required")
	}

	worklog, resp, err := c.jira.Issue.GetWorklogsWithContext(ctx, issueKey)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(classify(resp, err), "Issue not found: %s", issueKey)
	}

	records := make([]atlassian.Result, 0, len(worklog.Worklogs))
	for _, w := range worklog.Worklogs {
		record := atlassian.Result{
			"id":                 w.ID,
			"comment":            w.Comment,
			"created":            formatTimePtr(w.Created),
			"updated":            formatTimePtr(w.Updated),
			"started":            formatTimePtr(w.Started),
			"time_spent":         w.TimeSpent,
			"time_spent_seconds": w.TimeSpentSeconds,
		}
		if w.Author != nil {
			record["author"] = atlassian.Result{
				"display_name": w.Author.DisplayName,
				"email":        w.Author.EmailAddress,
			}
		}
		records = append(records, record)
	}

	return atlassian.Result{
		"worklogs":  records,
		"count":     len(records),
		"issue_key": issueKey,
	}, nil
}

// AddWorklog logs time on an issue. timeSpent uses Jira duration syntax;
// the remaining estimate is adjusted only when opts.RemainingEstimate is
// set.
func (c *Client) AddWorklog(ctx context.Context, issueKey, timeSpent string, opts AddWorklogOptions) (atlassian.Result, error) {
	if issueKey == "" {
		return nil, atlassian.Validationf("issue_key is required")
	}

	seconds, err := ParseTimeSpent(timeSpent)
	if err != nil {
		return nil, err
	}

	record := &jira.WorklogRecord{
		TimeSpentSeconds: seconds,
		Comment:          opts.Comment,
	}
	if opts.Started != "" {
		started, parseErr := parseTimestamp(opts.Started)
		if parseErr != nil {
			return nil, atlassian.Validationf("Invalid started timestamp: %s", opts.Started)
		}
		jt := jira.Time(started)
		record.Started = &jt
	}

	var tweaks []func(*http.Request) error
	if opts.RemainingEstimate != "" {
		tweaks = append(tweaks, jira.WithQueryOptions(struct {
			AdjustEstimate string `url:"adjustEstimate"`
			NewEstimate    string `url:"newEstimate"`
		}{
			AdjustEstimate: "new",
			NewEstimate:    opts.RemainingEstimate,
		}))
	}

	created, resp, err := c.jira.Issue.AddWorklogRecordWithContext(ctx, issueKey, record, tweaks...)
	if err != nil {
		return nil, atlassian.ReplaceNotFound(classify(resp, err), "Issue not found: %s", issueKey)
	}

	logging.Info("jira worklog added", "issue", issueKey, "seconds", seconds)
	return atlassian.Result{
		"id":                         created.ID,
		"issue_key":                  issueKey,
		"time_spent":                 created.TimeSpent,
		"time_spent_seconds":         created.TimeSpentSeconds,
		"comment":                    created.Comment,
		"started":                    formatTimePtr(created.Started),
		"remaining_estimate_updated": opts.RemainingEstimate != "",
	}, nil
}
