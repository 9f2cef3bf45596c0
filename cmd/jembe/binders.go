package main

import (
	"log/slog"

	"github.com/Jembe/jembe-sub000/pkg/component"
	"github.com/Jembe/jembe-sub000/pkg/registry"
)

// newBinders returns the binder registry shared by the commands. The headless
// driver has no directive layer of its own, so every kind falls back to a
// binder tracing mount and release.
func newBinders(logger *slog.Logger) *registry.Registry {
	binders := registry.NewRegistry()
	binders.Fallback(component.BinderFunc(func(c *component.Component) (component.Binding, error) {
		kind := registry.Kind(c.ExecName)
		logger.Debug("component bound", "exec_name", c.ExecName, "kind", kind)
		return component.ReleaseFunc(func() {
			logger.Debug("component released", "exec_name", c.ExecName, "kind", kind)
		}), nil
	}))
	return binders
}
