// Package registry holds the operation table: every tool operation is
// registered once with a name, an access kind, and a handler. Read-only
// mode is derived from the table, not hand-maintained: WRITE operations
// are rejected and hidden when the registry is read-only.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/danielolaszy/atlas/internal/atlassian"
	"github.com/danielolaszy/atlas/internal/logging"
)

// Kind classifies an operation's effect on the backend.
type Kind string

const (
	// Read operations never modify backend state.
	Read Kind = "read"
	// Write operations create, update, or delete backend state.
	Write Kind = "write"
)

// HandlerFunc executes one operation. params is the raw JSON argument
// object; the handler decodes its own parameter struct from it.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (atlassian.Result, error)

// Operation is one entry in the table.
type Operation struct {
	// Name is the tool-facing identifier, e.g. "jira_get_issue".
	Name string
	// Service is the backend the operation talks to.
	Service string
	// Kind tags the operation read or write.
	Kind Kind
	// Description is a one-line summary for listings.
	Description string
	// Handler executes the operation.
	Handler HandlerFunc
}

// Registry is the operation table. Register everything at startup, then
// only Call and Operations are used; the table is immutable afterwards.
type Registry struct {
	readOnly bool
	ops      map[string]Operation
}

// New creates an empty registry. In read-only mode WRITE operations are
// rejected by Call and omitted from Operations.
func New(readOnly bool) *Registry {
	return &Registry{
		readOnly: readOnly,
		ops:      make(map[string]Operation),
	}
}

// ReadOnly reports whether the registry is in read-only mode.
func (r *Registry) ReadOnly() bool {
	return r.readOnly
}

// Register adds an operation to the table.
func (r *Registry) Register(op Operation) error {
	if op.Name == "" {
		return fmt.Errorf("operation name is required")
	}
	if op.Handler == nil {
		return fmt.Errorf("operation %s has no handler", op.Name)
	}
	if op.Kind != Read && op.Kind != Write {
		return fmt.Errorf("operation %s has invalid kind %q", op.Name, op.Kind)
	}
	if _, exists := r.ops[op.Name]; exists {
		return fmt.Errorf("operation %s registered twice", op.Name)
	}
	r.ops[op.Name] = op
	return nil
}

// MustRegister is Register for startup wiring, where a bad table is a
// programming error.
func (r *Registry) MustRegister(op Operation) {
	if err := r.Register(op); err != nil {
		panic(err)
	}
}

// Get looks up an operation by name. Write operations are invisible in
// read-only mode.
func (r *Registry) Get(name string) (Operation, bool) {
	op, ok := r.ops[name]
	if !ok {
		return Operation{}, false
	}
	if r.readOnly && op.Kind == Write {
		return Operation{}, false
	}
	return op, true
}

// Operations lists the operations visible under the current mode, sorted
// by name.
func (r *Registry) Operations() []Operation {
	ops := make([]Operation, 0, len(r.ops))
	for _, op := range r.ops {
		if r.readOnly && op.Kind == Write {
			continue
		}
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })
	return ops
}

// Call executes the named operation and always returns an envelope:
// handler errors, unknown names, rejected writes, and handler panics all
// come back as error envelopes, never as Go errors.
func (r *Registry) Call(ctx context.Context, name string, params json.RawMessage) (result atlassian.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.Error("operation panicked", "operation", name, "panic", rec)
			result = atlassian.ErrorEnvelope(atlassian.APIf("Unexpected error: %v", rec))
		}
	}()

	op, exists := r.ops[name]
	if !exists {
		return atlassian.ErrorEnvelope(atlassian.Validationf("Unknown operation: %s", name))
	}
	if r.readOnly && op.Kind == Write {
		return atlassian.ErrorEnvelope(atlassian.Validationf(
			"Operation %s is not available in read-only mode", name))
	}

	logging.Debug("operation invoked", "operation", name, "service", op.Service, "kind", string(op.Kind))

	res, err := op.Handler(ctx, params)
	if err != nil {
		logging.Debug("operation failed", "operation", name, "error", err)
		return atlassian.ErrorEnvelope(err)
	}
	return res
}
