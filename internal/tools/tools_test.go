package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danielolaszy/atlas/internal/config"
	"github.com/danielolaszy/atlas/internal/registry"
)

func newRegistry(t *testing.T, cfg *config.Config, readOnly bool) *registry.Registry {
	t.Helper()
	reg := registry.New(readOnly)
	Register(reg, cfg)
	return reg
}

func TestRegisterBindsAllServices(t *testing.T) {
	reg := newRegistry(t, &config.Config{}, false)
	ops := reg.Operations()

	counts := map[string]int{}
	for _, op := range ops {
		counts[op.Service]++
		assert.True(t, strings.HasPrefix(op.Name, op.Service+"_"),
			"operation %s should be prefixed with its service", op.Name)
		assert.NotEmpty(t, op.Description, "operation %s needs a description", op.Name)
	}

	assert.Equal(t, 26, counts["jira"])
	assert.Equal(t, 11, counts["confluence"])
	assert.Equal(t, 12, counts["bitbucket"])
}

func TestWriteOperationsAreTagged(t *testing.T) {
	reg := newRegistry(t, &config.Config{}, false)

	writes := map[string]bool{}
	for _, op := range reg.Operations() {
		if op.Kind == registry.Write {
			writes[op.Name] = true
		}
	}

	// Spot-check both directions of the tagging.
	for _, name := range []string{
		"jira_create_issue", "jira_delete_issue", "jira_transition_issue",
		"confluence_update_page", "confluence_remove_label",
		"bitbucket_merge_pull_request", "bitbucket_decline_pull_request",
	} {
		assert.True(t, writes[name], "%s should be a write operation", name)
	}
	for _, name := range []string{
		"jira_get_issue", "jira_search", "confluence_get_page",
		"bitbucket_get_pr_diff", "bitbucket_search",
	} {
		assert.False(t, writes[name], "%s should be a read operation", name)
	}
}

func TestReadOnlyRegistryHidesWrites(t *testing.T) {
	full := newRegistry(t, &config.Config{}, false)
	readonly := newRegistry(t, &config.Config{}, true)

	fullOps := full.Operations()
	roOps := readonly.Operations()
	assert.Less(t, len(roOps), len(fullOps))

	for _, op := range roOps {
		assert.Equal(t, registry.Read, op.Kind)
	}
}

func TestUnconfiguredServiceFailsWithoutNetwork(t *testing.T) {
	reg := newRegistry(t, &config.Config{
		Jira:       config.ServiceConfig{Service: "jira"},
		Confluence: config.ServiceConfig{Service: "confluence"},
		Bitbucket:  config.ServiceConfig{Service: "bitbucket"},
	}, false)

	result := reg.Call(context.Background(), "jira_get_issue",
		json.RawMessage(`{"issue_key": "PROJ-1"}`))
	assert.Equal(t, false, result["success"])
	assert.Equal(t, "ConfigurationError", result["error_type"])
	assert.Contains(t, result["error"], "JIRA_URL")
}

func TestInvalidParametersBecomeValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	t.Cleanup(srv.Close)

	reg := newRegistry(t, &config.Config{
		Jira: config.ServiceConfig{
			Service: "jira", BaseURL: srv.URL,
			Username: "bot@example.com", APIToken: "token",
		},
	}, false)

	result := reg.Call(context.Background(), "jira_get_issue",
		json.RawMessage(`{"issue_key": 42}`))
	assert.Equal(t, false, result["success"])
	assert.Equal(t, "ValidationError", result["error_type"])
}

func TestCallReachesBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/issue/PROJ-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "10001", "key": "PROJ-1", "fields": {"summary": "Wired through"}}`)
	}))
	t.Cleanup(srv.Close)

	reg := newRegistry(t, &config.Config{
		Jira: config.ServiceConfig{
			Service: "jira", BaseURL: srv.URL,
			Username: "bot@example.com", APIToken: "token",
		},
	}, false)

	result := reg.Call(context.Background(), "jira_get_issue",
		json.RawMessage(`{"issue_key": "PROJ-1"}`))
	assert.Equal(t, "PROJ-1", result["key"])
	assert.Equal(t, "Wired through", result["summary"])
}

func TestReadOnlyCallRejectsWrite(t *testing.T) {
	reg := newRegistry(t, &config.Config{}, true)

	result := reg.Call(context.Background(), "jira_delete_issue",
		json.RawMessage(`{"issue_key": "PROJ-1"}`))
	assert.Equal(t, false, result["success"])
	assert.Equal(t, "ValidationError", result["error_type"])
	assert.Contains(t, result["error"], "read-only")
}
