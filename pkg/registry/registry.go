// Package registry dispatches component binding by component kind, so the
// directive layer of every kind of component can be registered separately.
package registry

import (
	"strings"
	"sync"

	"github.com/Jembe/jembe-sub000/pkg/component"
	"github.com/Jembe/jembe-sub000/pkg/domain"
)

// Registry manages the binders of each component kind. It implements
// component.Binder.
type Registry struct {
	mu       sync.RWMutex
	binders  map[string]component.Binder
	fallback component.Binder
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		binders: make(map[string]component.Binder),
	}
}

// Kind returns the component kind of execName: its last segment without the
// instance key ("/page/tasks/task.3" is "task").
func Kind(execName string) string {
	name := execName
	if idx := strings.LastIndex(name, domain.ExecNameSeparator); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.Index(name, "."); idx >= 0 {
		name = name[:idx]
	}
	return name
}

// Register adds the binder of kind.
// If a binder for the same kind exists, it is overwritten.
func (r *Registry) Register(kind string, b component.Binder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.binders[kind] = b
}

// Fallback sets the binder used for kinds without their own.
func (r *Registry) Fallback(b component.Binder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = b
}

// Bind looks up the binder of c's kind and binds c.
// Components of an unknown kind get no directive layer.
func (r *Registry) Bind(c *component.Component) (component.Binding, error) {
	r.mu.RLock()
	b, ok := r.binders[Kind(c.ExecName)]
	if !ok {
		b = r.fallback
	}
	r.mu.RUnlock()

	if b == nil {
		return nil, nil
	}
	return b.Bind(c)
}

var _ component.Binder = (*Registry)(nil)
