package bitbucket

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/atlas/internal/atlassian"
)

func TestListProjects(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/1.0/projects", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, `{
			"size": 2,
			"limit": 25,
			"isLastPage": true,
			"start": 0,
			"values": [
				{"key": "PROJ", "id": 1, "name": "Main Project", "description": "Core services", "public": false},
				{"key": "OPS", "id": 2, "name": "Operations", "public": true}
			]
		}`)
	})

	result, err := client.ListProjects(context.Background(), PageOptions{})
	require.NoError(t, err)

	projects, ok := result["projects"].([]atlassian.Result)
	require.True(t, ok)
	require.Len(t, projects, 2)
	assert.Equal(t, "PROJ", projects[0]["key"])
	assert.Equal(t, "Core services", projects[0]["description"])
	assert.Equal(t, 2, result["size"])
	assert.Equal(t, true, result["is_last_page"])
	assert.NotContains(t, result, "next_page_start")
}

func TestListProjectsPagination(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("start"))
		writeJSON(w, http.StatusOK, `{
			"size": 5, "limit": 5, "isLastPage": false, "start": 5, "nextPageStart": 10,
			"values": []
		}`)
	})

	result, err := client.ListProjects(context.Background(), PageOptions{Start: 5, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, false, result["is_last_page"])
	assert.Equal(t, 10, result["next_page_start"])
}

func TestListRepositories(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/1.0/projects/PROJ/repos", r.URL.Path)
		writeJSON(w, http.StatusOK, `{
			"size": 1,
			"isLastPage": true,
			"values": [{
				"slug": "service",
				"id": 42,
				"name": "service",
				"scmId": "git",
				"state": "AVAILABLE",
				"project": {"key": "PROJ"},
				"links": {"clone": [
					{"href": "ssh://git@bitbucket.example.com/proj/service.git", "name": "ssh"},
					{"href": "https://bitbucket.example.com/scm/proj/service.git", "name": "http"}
				]}
			}]
		}`)
	})

	result, err := client.ListRepositories(context.Background(), "PROJ", PageOptions{})
	require.NoError(t, err)

	repos, ok := result["repositories"].([]atlassian.Result)
	require.True(t, ok)
	require.Len(t, repos, 1)
	assert.Equal(t, "service", repos[0]["slug"])
	assert.Equal(t, "AVAILABLE", repos[0]["state"])

	cloneURLs, ok := repos[0]["clone_urls"].(atlassian.Result)
	require.True(t, ok)
	assert.Contains(t, cloneURLs["ssh"], "ssh://")
	assert.Equal(t, "PROJ", result["project_key"])
}

func TestListRepositoriesProjectNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"errors": [{"message": "Project GHOST does not exist"}]}`)
	})

	_, err := client.ListRepositories(context.Background(), "GHOST", PageOptions{})
	require.Error(t, err)
	assert.Equal(t, atlassian.ErrNotFound, atlassian.AsError(err).Kind)
	assert.Contains(t, err.Error(), "GHOST")
}

func TestListRepositoriesRequiresProjectKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.ListRepositories(context.Background(), "", PageOptions{})
	require.Error(t, err)
	assert.Equal(t, atlassian.ErrValidation, atlassian.AsError(err).Kind)
}
