// Package jira adapts Jira Cloud and Data Center REST operations to the
// flat result/error envelope the tool layer expects.
package jira

import (
	"net/http"
	"sort"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/atlas/internal/atlassian"
	"github.com/danielolaszy/atlas/internal/config"
	"github.com/danielolaszy/atlas/internal/logging"
)

// timeFormat is the timestamp layout Jira uses on the wire.
const timeFormat = "2006-01-02T15:04:05.000-0700"

// Client handles interactions with the Jira API.
type Client struct {
	jira  *jira.Client
	cloud bool
}

// NewClient creates a Jira client from a validated configuration bundle.
// Cloud instances authenticate with basic auth (email + API token), Data
// Center instances with a bearer personal access token. No network I/O
// happens here.
func NewClient(cfg config.ServiceConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mode, err := cfg.AuthMode()
	if err != nil {
		return nil, err
	}

	var httpClient *http.Client
	switch mode {
	case atlassian.AuthBearerPAT:
		tp := jira.PATAuthTransport{Token: cfg.PATToken}
		httpClient = tp.Client()
	default:
		tp := jira.BasicAuthTransport{Username: cfg.Username, Password: cfg.APIToken}
		httpClient = tp.Client()
	}

	client, err := jira.NewClient(httpClient, cfg.BaseURL)
	if err != nil {
		return nil, atlassian.Configurationf("Invalid Jira URL %q: %v", cfg.BaseURL, err)
	}

	logging.Debug("jira client configured",
		"base_url", cfg.BaseURL,
		"auth_mode", string(mode),
		"credentials", logging.MaskSensitive(cfg.APIToken+cfg.PATToken))

	return &Client{jira: client, cloud: cfg.IsCloud()}, nil
}

// classify maps a go-jira call outcome onto the error taxonomy. A nil
// response means no HTTP exchange completed, which is a transport failure.
func classify(resp *jira.Response, err error) error {
	if err == nil {
		return nil
	}
	if resp == nil {
		if strings.Contains(err.Error(), "context deadline exceeded") {
			return atlassian.Networkf("Request timed out")
		}
		return atlassian.Networkf("Connection failed: %v", err)
	}
	return atlassian.ClassifyStatus(resp.StatusCode, strings.TrimSpace(err.Error()))
}

// formatTime renders a Jira timestamp, empty when unset.
func formatTime(t jira.Time) string {
	tt := time.Time(t)
	if tt.IsZero() {
		return ""
	}
	return tt.Format(timeFormat)
}

func formatTimePtr(t *jira.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

// parseTimestamp accepts the Jira wire layout or RFC 3339.
func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(timeFormat, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// simplifyUser flattens a Jira user record.
func simplifyUser(user *jira.User) atlassian.Result {
	return atlassian.Result{
		"account_id":   user.AccountID,
		"display_name": user.DisplayName,
		"email":        user.EmailAddress,
		"active":       user.Active,
		"account_type": user.AccountType,
		"timezone":     user.TimeZone,
		"locale":       user.Locale,
	}
}

// simplifyIssue flattens an issue to its essential fields. Custom fields
// ride along under custom_fields as an open mapping callers probe by key.
func simplifyIssue(issue *jira.Issue) atlassian.Result {
	fields := issue.Fields
	if fields == nil {
		fields = &jira.IssueFields{}
	}

	var assignee, reporter any
	if fields.Assignee != nil {
		assignee = fields.Assignee.EmailAddress
	}
	if fields.Reporter != nil {
		reporter = fields.Reporter.EmailAddress
	}

	status := ""
	if fields.Status != nil {
		status = fields.Status.Name
	}
	priority := ""
	if fields.Priority != nil {
		priority = fields.Priority.Name
	}

	labels := fields.Labels
	if labels == nil {
		labels = []string{}
	}
	components := make([]string, 0, len(fields.Components))
	for _, c := range fields.Components {
		components = append(components, c.Name)
	}

	result := atlassian.Result{
		"key":         issue.Key,
		"id":          issue.ID,
		"summary":     fields.Summary,
		"description": fields.Description,
		"status":      status,
		"issue_type":  fields.Type.Name,
		"priority":    priority,
		"assignee":    assignee,
		"reporter":    reporter,
		"created":     formatTime(fields.Created),
		"updated":     formatTime(fields.Updated),
		"labels":      labels,
		"components":  components,
	}

	custom := atlassian.Result{}
	for key, value := range fields.Unknowns {
		if strings.HasPrefix(key, "customfield_") {
			custom[key] = value
		}
	}
	if len(custom) > 0 {
		result["custom_fields"] = custom
	}

	return result
}

// simplifyIssues flattens a search result page.
func simplifyIssues(issues []jira.Issue) []atlassian.Result {
	simplified := make([]atlassian.Result, 0, len(issues))
	for i := range issues {
		simplified = append(simplified, simplifyIssue(&issues[i]))
	}
	return simplified
}

// sortedKeys returns map keys in stable order for deterministic envelopes.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
