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

func TestGetAllProjects(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/project", r.URL.Path)
		assert.Empty(t, r.URL.Query().Get("includeArchived"))
		writeJSON(w, http.StatusOK, `[
			{"id": "10000", "key": "PROJ", "name": "Main Project", "projectTypeKey": "software"},
			{"id": "10001", "key": "OPS", "name": "Operations", "projectTypeKey": "business"}
		]`)
	})

	result, err := client.GetAllProjects(context.Background(), false)
	require.NoError(t, err)

	projects, ok := result["projects"].([]atlassian.Result)
	require.True(t, ok)
	require.Len(t, projects, 2)
	assert.Equal(t, "PROJ", projects[0]["key"])
	assert.Equal(t, "software", projects[0]["project_type"])
	assert.Equal(t, 2, result["count"])
}

func TestGetAllProjectsIncludeArchived(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("includeArchived"))
		writeJSON(w, http.StatusOK, `[]`)
	})

	result, err := client.GetAllProjects(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 0, result["count"])
}

func TestGetProjectIssues(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "project = PROJ ORDER BY created DESC", r.URL.Query().Get("jql"))
		writeJSON(w, http.StatusOK, `{
			"issues": [`+sampleIssueJSON+`],
			"startAt": 0,
			"maxResults": 50,
			"total": 1
		}`)
	})

	result, err := client.GetProjectIssues(context.Background(), "PROJ", SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, "PROJ", result["project_key"])
	assert.Equal(t, 1, result["total"])
}

func TestGetProjectVersions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/project/PROJ/versions", r.URL.Path)
		writeJSON(w, http.StatusOK, `[
			{"id": "30001", "name": "1.0.0", "description": "First release", "released": true, "archived": false, "releaseDate": "2024-01-01"},
			{"id": "30002", "name": "1.1.0", "released": false, "archived": false, "startDate": "2024-02-01"}
		]`)
	})

	result, err := client.GetProjectVersions(context.Background(), "PROJ")
	require.NoError(t, err)

	versions, ok := result["versions"].([]atlassian.Result)
	require.True(t, ok)
	require.Len(t, versions, 2)
	assert.Equal(t, "1.0.0", versions[0]["name"])
	assert.Equal(t, true, versions[0]["released"])
	assert.Equal(t, false, versions[1]["released"])
	assert.Equal(t, 2, result["count"])
}

func TestCreateVersion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/api/2/version", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "2.0.0", payload["name"])
		assert.Equal(t, "PROJ", payload["project"])
		assert.Equal(t, "Major release", payload["description"])

		writeJSON(w, http.StatusCreated, `{"id": "30003", "name": "2.0.0", "description": "Major release", "released": false, "archived": false}`)
	})

	result, err := client.CreateVersion(context.Background(), "PROJ", "2.0.0", CreateVersionOptions{
		Description: "Major release",
	})
	require.NoError(t, err)
	assert.Equal(t, "30003", result["id"])
	assert.Equal(t, "2.0.0", result["name"])
	assert.Equal(t, "PROJ", result["project_key"])
}

func TestCreateVersionValidation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.CreateVersion(context.Background(), "PROJ", "", CreateVersionOptions{})
	require.Error(t, err)
	assert.Equal(t, atlassian.ErrValidation, atlassian.AsError(err).Kind)
}
