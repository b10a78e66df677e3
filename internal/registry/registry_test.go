package registry

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/atlas/internal/atlassian"
)

func okHandler(ctx context.Context, params json.RawMessage) (atlassian.Result, error) {
	return atlassian.Result{"ok": true}, nil
}

func newTestRegistry(t *testing.T, readOnly bool) *Registry {
	t.Helper()
	r := New(readOnly)
	require.NoError(t, r.Register(Operation{
		Name: "jira_get_issue", Service: "jira", Kind: Read,
		Description: "Fetch an issue", Handler: okHandler,
	}))
	require.NoError(t, r.Register(Operation{
		Name: "jira_delete_issue", Service: "jira", Kind: Write,
		Description: "Delete an issue", Handler: okHandler,
	}))
	return r
}

func TestRegisterValidation(t *testing.T) {
	r := New(false)

	tests := []struct {
		name string
		op   Operation
	}{
		{name: "Missing name", op: Operation{Kind: Read, Handler: okHandler}},
		{name: "Missing handler", op: Operation{Name: "x", Kind: Read}},
		{name: "Invalid kind", op: Operation{Name: "x", Kind: Kind("admin"), Handler: okHandler}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, r.Register(tt.op))
		})
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := New(false)
	op := Operation{Name: "jira_get_issue", Kind: Read, Handler: okHandler}
	require.NoError(t, r.Register(op))
	assert.Error(t, r.Register(op))
}

func TestCallSuccess(t *testing.T) {
	r := newTestRegistry(t, false)

	result := r.Call(context.Background(), "jira_get_issue", nil)
	assert.Equal(t, true, result["ok"])
}

func TestCallUnknownOperation(t *testing.T) {
	r := newTestRegistry(t, false)

	result := r.Call(context.Background(), "jira_explode", nil)
	assert.Equal(t, false, result["success"])
	assert.Equal(t, string(atlassian.ErrValidation), result["error_type"])
	assert.Contains(t, result["error"], "jira_explode")
}

func TestCallErrorBecomesEnvelope(t *testing.T) {
	r := New(false)
	require.NoError(t, r.Register(Operation{
		Name: "jira_get_issue", Kind: Read,
		Handler: func(ctx context.Context, params json.RawMessage) (atlassian.Result, error) {
			return nil, atlassian.NotFoundf("Issue not found: PROJ-999")
		},
	}))

	result := r.Call(context.Background(), "jira_get_issue", nil)
	assert.Equal(t, false, result["success"])
	assert.Equal(t, "Issue not found: PROJ-999", result["error"])
	assert.Equal(t, "NotFoundError", result["error_type"])
}

func TestCallRecoversPanics(t *testing.T) {
	r := New(false)
	require.NoError(t, r.Register(Operation{
		Name: "jira_get_issue", Kind: Read,
		Handler: func(ctx context.Context, params json.RawMessage) (atlassian.Result, error) {
			panic("boom")
		},
	}))

	result := r.Call(context.Background(), "jira_get_issue", nil)
	assert.Equal(t, false, result["success"])
	assert.Equal(t, "APIError", result["error_type"])
	assert.Contains(t, result["error"], "boom")
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	r := newTestRegistry(t, true)

	result := r.Call(context.Background(), "jira_delete_issue", nil)
	assert.Equal(t, false, result["success"])
	assert.Equal(t, string(atlassian.ErrValidation), result["error_type"])
	assert.Contains(t, result["error"], "read-only")

	read := r.Call(context.Background(), "jira_get_issue", nil)
	assert.Equal(t, true, read["ok"])
}

func TestOperationsListingRespectsMode(t *testing.T) {
	full := newTestRegistry(t, false)
	readonly := newTestRegistry(t, true)

	fullOps := full.Operations()
	require.Len(t, fullOps, 2)
	assert.Equal(t, "jira_delete_issue", fullOps[0].Name)
	assert.Equal(t, "jira_get_issue", fullOps[1].Name)

	roOps := readonly.Operations()
	require.Len(t, roOps, 1)
	assert.Equal(t, "jira_get_issue", roOps[0].Name)
}

func TestGetHidesWritesInReadOnlyMode(t *testing.T) {
	r := newTestRegistry(t, true)

	_, ok := r.Get("jira_get_issue")
	assert.True(t, ok)

	_, ok = r.Get("jira_delete_issue")
	assert.False(t, ok)
}
