package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/atlas/internal/atlassian"
)

func TestGetIssueRequiresKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.GetIssue(context.Background(), "", "")
	require.Error(t, err)
	assert.Equal(t, atlassian.ErrValidation, atlassian.AsError(err).Kind)
}

func TestGetIssueFieldsParam(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "summary,status", r.URL.Query().Get("fields"))
		writeJSON(w, http.StatusOK, sampleIssueJSON)
	})

	_, err := client.GetIssue(context.Background(), "PROJ-123", "summary,status")
	require.NoError(t, err)
}

func TestCreateIssue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/rest/api/2/issue":
			var payload struct {
				Fields struct {
					Project   struct{ Key string }
					Summary   string
					IssueType struct{ Name string } `json:"issuetype"`
					Priority  *struct{ Name string }
					Labels    []string
				}
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "PROJ", payload.Fields.Project.Key)
			assert.Equal(t, "New issue", payload.Fields.Summary)
			assert.Equal(t, "Bug", payload.Fields.IssueType.Name)
			require.NotNil(t, payload.Fields.Priority)
			assert.Equal(t, "High", payload.Fields.Priority.Name)
			assert.Equal(t, []string{"auth"}, payload.Fields.Labels)
			writeJSON(w, http.StatusCreated, `{"id":"10001","key":"PROJ-123"}`)
		case r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, sampleIssueJSON)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})

	result, err := client.CreateIssue(context.Background(), "PROJ", "New issue", "Bug", CreateIssueOptions{
		Description: "details",
		Priority:    "High",
		Labels:      []string{"auth"},
	})
	require.NoError(t, err)
	assert.Equal(t, "PROJ-123", result["key"])
	assert.Equal(t, "In Progress", result["status"])
}

func TestCreateIssueValidation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	tests := []struct {
		name       string
		projectKey string
		summary    string
	}{
		{name: "Missing project key", projectKey: "", summary: "s"},
		{name: "Missing summary", projectKey: "PROJ", summary: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateIssue(context.Background(), tt.projectKey, tt.summary, "Task", CreateIssueOptions{})
			require.Error(t, err)
			assert.Equal(t, atlassian.ErrValidation, atlassian.AsError(err).Kind)
		})
	}
}

func TestUpdateIssue(t *testing.T) {
	var updatePayload map[string]map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&updatePayload))
			writeJSON(w, http.StatusNoContent, "")
		case http.MethodGet:
			writeJSON(w, http.StatusOK, sampleIssueJSON)
		}
	})

	result, err := client.UpdateIssue(context.Background(), "PROJ-123", map[string]any{
		"summary":  "Updated summary",
		"priority": "Low",
	})
	require.NoError(t, err)
	assert.Equal(t, "PROJ-123", result["key"])

	fields := updatePayload["fields"]
	assert.Equal(t, "Updated summary", fields["summary"])
	assert.Equal(t, map[string]any{"name": "Low"}, fields["priority"])
}

func TestUpdateIssueRequiresFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.UpdateIssue(context.Background(), "PROJ-123", nil)
	require.Error(t, err)
	assert.Equal(t, atlassian.ErrValidation, atlassian.AsError(err).Kind)
}

func TestDeleteIssue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/rest/api/2/issue/PROJ-123", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("deleteSubtasks"))
		w.WriteHeader(http.StatusNoContent)
	})

	result, err := client.DeleteIssue(context.Background(), "PROJ-123", true)
	require.NoError(t, err)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "PROJ-123", result["issue_key"])
	assert.Contains(t, result["message"], "PROJ-123")
}

func TestAddComment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/api/2/issue/PROJ-123/comment", r.URL.Path)
		writeJSON(w, http.StatusCreated, `{
			"id": "20001",
			"body": "Looks good",
			"author": {"emailAddress": "dev@example.com"},
			"created": "2024-01-15T10:30:00.000+0000",
			"updated": "2024-01-15T10:30:00.000+0000"
		}`)
	})

	result, err := client.AddComment(context.Background(), "PROJ-123", "Looks good")
	require.NoError(t, err)
	assert.Equal(t, "20001", result["id"])
	assert.Equal(t, "Looks good", result["body"])
	assert.Equal(t, "dev@example.com", result["author"])
}

func TestAddCommentRequiresBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.AddComment(context.Background(), "PROJ-123", "")
	require.Error(t, err)
	assert.Equal(t, atlassian.ErrValidation, atlassian.AsError(err).Kind)
}
