// Package tools binds every backend operation into the registry. Each
// binding decodes its JSON parameter struct, lazily constructs the backend
// client on first use, and delegates to the adapter. A backend that is not
// configured fails with a ConfigurationError before any network call.
package tools

import (
	"encoding/json"
	"sync"

	"github.com/danielolaszy/atlas/internal/atlassian"
	"github.com/danielolaszy/atlas/internal/config"
	"github.com/danielolaszy/atlas/internal/registry"
)

// Register wires all operations for all three backends into reg.
func Register(reg *registry.Registry, cfg *config.Config) {
	registerJira(reg, cfg.Jira)
	registerConfluence(reg, cfg.Confluence)
	registerBitbucket(reg, cfg.Bitbucket)
}

// lazy constructs a backend client once, on first use. Construction
// failures (missing configuration) are sticky and returned on every call.
type lazy[T any] struct {
	build func() (T, error)
	once  sync.Once
	v     T
	err   error
}

func newLazy[T any](build func() (T, error)) *lazy[T] {
	return &lazy[T]{build: build}
}

func (l *lazy[T]) get() (T, error) {
	l.once.Do(func() { l.v, l.err = l.build() })
	return l.v, l.err
}

// decode unmarshals the raw parameter object into out. Absent or empty
// parameters leave out at its zero value.
func decode(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return atlassian.Validationf("Invalid parameters: %v", err)
	}
	return nil
}
