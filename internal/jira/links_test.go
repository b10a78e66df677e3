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

func TestGetLinkTypes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/issueLinkType", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"issueLinkTypes": [
			{"id": "10000", "name": "Blocks", "inward": "is blocked by", "outward": "blocks"},
			{"id": "10001", "name": "Duplicate", "inward": "is duplicated by", "outward": "duplicates"}
		]}`)
	})

	result, err := client.GetLinkTypes(context.Background())
	require.NoError(t, err)

	linkTypes, ok := result["link_types"].([]atlassian.Result)
	require.True(t, ok)
	require.Len(t, linkTypes, 2)
	assert.Equal(t, "Blocks", linkTypes[0]["name"])
	assert.Equal(t, "is blocked by", linkTypes[0]["inward"])
	assert.Equal(t, 2, result["count"])
}

func TestCreateIssueLink(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/api/2/issueLink", r.URL.Path)

		var payload struct {
			Type         struct{ Name string }
			InwardIssue  struct{ Key string }
			OutwardIssue struct{ Key string }
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Blocks", payload.Type.Name)
		assert.Equal(t, "PROJ-1", payload.InwardIssue.Key)
		assert.Equal(t, "PROJ-2", payload.OutwardIssue.Key)

		w.WriteHeader(http.StatusCreated)
	})

	result, err := client.CreateIssueLink(context.Background(), "Blocks", "PROJ-1", "PROJ-2", "")
	require.NoError(t, err)
	assert.Equal(t, true, result["success"])
	assert.Contains(t, result["message"], "PROJ-1")
	assert.Contains(t, result["message"], "PROJ-2")
}

func TestCreateIssueLinkValidation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	tests := []struct {
		name     string
		linkType string
		inward   string
		outward  string
	}{
		{name: "Missing link type", linkType: "", inward: "PROJ-1", outward: "PROJ-2"},
		{name: "Missing inward key", linkType: "Blocks", inward: "", outward: "PROJ-2"},
		{name: "Missing outward key", linkType: "Blocks", inward: "PROJ-1", outward: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateIssueLink(context.Background(), tt.linkType, tt.inward, tt.outward, "")
			require.Error(t, err)
			assert.Equal(t, atlassian.ErrValidation, atlassian.AsError(err).Kind)
		})
	}
}

func TestLinkToEpicViaCustomField(t *testing.T) {
	var updatePayload map[string]map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/rest/api/2/field":
			writeJSON(w, http.StatusOK, fieldListJSON)
		case r.Method == http.MethodPut && r.URL.Path == "/rest/api/2/issue/PROJ-5":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&updatePayload))
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})

	result, err := client.LinkToEpic(context.Background(), "PROJ-5", "PROJ-100")
	require.NoError(t, err)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "PROJ-100", updatePayload["fields"]["customfield_10014"])
}

func TestLinkToEpicFallsBackToAgileEndpoint(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/rest/api/2/field":
			writeJSON(w, http.StatusOK, `[]`)
		case r.Method == http.MethodPost && r.URL.Path == "/rest/agile/1.0/epic/PROJ-100/issue":
			var payload struct {
				Issues []string `json:"issues"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, []string{"PROJ-5"}, payload.Issues)
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})

	result, err := client.LinkToEpic(context.Background(), "PROJ-5", "PROJ-100")
	require.NoError(t, err)
	assert.Equal(t, true, result["success"])
}

func TestRemoveIssueLink(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/rest/api/2/issueLink/50001", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	result, err := client.RemoveIssueLink(context.Background(), "50001")
	require.NoError(t, err)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "50001", result["link_id"])
}
