package bitbucket

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/atlas/internal/atlassian"
	"github.com/danielolaszy/atlas/internal/config"
)

// newTestClient spins up a stub Bitbucket server and a client pointed at
// it. Bitbucket Data Center authenticates with a PAT.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.ServiceConfig{
		Service:  "bitbucket",
		BaseURL:  srv.URL,
		PATToken: "pat456",
	})
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

const samplePRJSON = `{
	"id": 101,
	"version": 2,
	"title": "Add retry logic",
	"description": "Retries transient failures",
	"state": "OPEN",
	"open": true,
	"createdDate": 1705312200000,
	"updatedDate": 1705315800000,
	"fromRef": {"id": "refs/heads/feature/retry", "displayId": "feature/retry",
		"repository": {"slug": "service", "project": {"key": "PROJ"}}},
	"toRef": {"id": "refs/heads/main", "displayId": "main",
		"repository": {"slug": "service", "project": {"key": "PROJ"}}},
	"author": {"user": {"name": "jdev", "displayName": "Jane Developer", "emailAddress": "jane@example.com"}},
	"reviewers": [{"user": {"name": "sam", "displayName": "Sam Reviewer"}, "approved": false}],
	"links": {"self": [{"href": "https://bitbucket.example.com/projects/PROJ/repos/service/pull-requests/101"}]}
}`

func TestNewClientValidation(t *testing.T) {
	client, err := NewClient(config.ServiceConfig{Service: "bitbucket"})
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Equal(t, atlassian.ErrConfiguration, atlassian.AsError(err).Kind)
	assert.Contains(t, err.Error(), "BITBUCKET_URL")
}

func TestClientSendsBearerToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer pat456", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"values": [], "size": 0, "isLastPage": true}`)
	})

	_, err := client.ListProjects(context.Background(), PageOptions{})
	require.NoError(t, err)
}

func TestPageOptionsValidation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.ListProjects(context.Background(), PageOptions{Start: -1})
	require.Error(t, err)
	assert.Equal(t, atlassian.ErrValidation, atlassian.AsError(err).Kind)
}
