package confluence

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/atlas/internal/atlassian"
)

func TestSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/content/search", r.URL.Path)
		assert.Equal(t, `type = page AND text ~ "architecture"`, r.URL.Query().Get("cql"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, `{
			"results": [`+samplePageJSON+`],
			"start": 0,
			"limit": 10,
			"size": 1,
			"totalSize": 7
		}`)
	})

	result, err := client.Search(context.Background(), `type = page AND text ~ "architecture"`, 0, 10)
	require.NoError(t, err)

	results, ok := result["results"].([]atlassian.Result)
	require.True(t, ok)
	require.Len(t, results, 1)
	assert.Equal(t, "Architecture Overview", results[0]["title"])
	assert.Equal(t, 7, result["total"])
	assert.Equal(t, false, result["is_last"])
}

func TestSearchLastPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"results": [`+samplePageJSON+`], "start": 6, "limit": 10, "size": 1, "totalSize": 7}`)
	})

	result, err := client.Search(context.Background(), "type = page", 6, 10)
	require.NoError(t, err)
	assert.Equal(t, true, result["is_last"])
}

func TestSearchValidation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.Search(context.Background(), "", 0, 10)
	require.Error(t, err)
	assert.Equal(t, atlassian.ErrValidation, atlassian.AsError(err).Kind)

	_, err = client.Search(context.Background(), "type = page", -1, 10)
	require.Error(t, err)
	assert.Equal(t, atlassian.ErrValidation, atlassian.AsError(err).Kind)
}

func TestSearchInvalidCQLIsValidationError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"message": "Could not parse cql"}`)
	})

	_, err := client.Search(context.Background(), "not valid cql ~~~", 0, 10)
	require.Error(t, err)
	assert.Equal(t, atlassian.ErrValidation, atlassian.AsError(err).Kind)
	assert.Contains(t, err.Error(), "Could not parse cql")
}

func TestSearchUsers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/search/user", r.URL.Path)
		assert.Equal(t, `user.fullname ~ "Jane"`, r.URL.Query().Get("cql"))
		writeJSON(w, http.StatusOK, `{
			"results": [{"user": {
				"accountId": "5b10a2844c20165700ede21g",
				"accountType": "atlassian",
				"email": "jane@example.com",
				"displayName": "Jane Developer"
			}}],
			"start": 0,
			"limit": 25,
			"size": 1,
			"totalSize": 1
		}`)
	})

	result, err := client.SearchUsers(context.Background(), "Jane", 0)
	require.NoError(t, err)

	users, ok := result["users"].([]atlassian.Result)
	require.True(t, ok)
	require.Len(t, users, 1)
	assert.Equal(t, "Jane Developer", users[0]["display_name"])
	assert.Equal(t, 1, result["total"])
}

func TestSearchUsersEscapesQuotes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `user.fullname ~ "Jane \" OR x"`, r.URL.Query().Get("cql"))
		writeJSON(w, http.StatusOK, `{"results": [], "totalSize": 0}`)
	})

	result, err := client.SearchUsers(context.Background(), `Jane " OR x`, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, result["count"])
}
