package component

import (
	"sort"

	"github.com/Jembe/jembe-sub000/pkg/domain"
)

// Registry maps execNames to component instances.
type Registry map[string]*Component

// Names returns the registered execNames sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a shallow copy of the map.
func (r Registry) Clone() Registry {
	out := make(Registry, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Snapshot returns {execName, state} for every mounted component, sorted by name.
func (r Registry) Snapshot() []domain.ComponentSnapshot {
	out := make([]domain.ComponentSnapshot, 0, len(r))
	for _, name := range r.Names() {
		if c := r[name]; c.Mounted {
			out = append(out, c.CommandPayload())
		}
	}
	return out
}

// Root returns the root component, if any.
func (r Registry) Root() *Component {
	for _, name := range r.Names() {
		if c := r[name]; c.IsRoot {
			return c
		}
	}
	return nil
}
