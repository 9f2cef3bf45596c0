package registry_test

import (
	"errors"
	"testing"

	"github.com/Jembe/jembe-sub000/pkg/component"
	"github.com/Jembe/jembe-sub000/pkg/dom"
	"github.com/Jembe/jembe-sub000/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newComponent(t *testing.T, execName string) *component.Component {
	t.Helper()
	c, err := component.New(dom.New(), component.Config{ExecName: execName, Markup: "<div></div>"})
	require.NoError(t, err)
	return c
}

func TestKind(t *testing.T) {
	assert.Equal(t, "page", registry.Kind("/page"))
	assert.Equal(t, "task", registry.Kind("/page/tasks/task.3"))
	assert.Equal(t, "tasks", registry.Kind("/page/tasks"))
}

func TestRegistry_Bind(t *testing.T) {
	r := registry.NewRegistry()

	var bound []string
	r.Register("task", component.BinderFunc(func(c *component.Component) (component.Binding, error) {
		bound = append(bound, c.ExecName)
		return component.ReleaseFunc(func() {}), nil
	}))

	binding, err := r.Bind(newComponent(t, "/page/tasks/task.1"))
	require.NoError(t, err)
	assert.NotNil(t, binding)
	assert.Equal(t, []string{"/page/tasks/task.1"}, bound)

	binding, err = r.Bind(newComponent(t, "/page/tasks"))
	require.NoError(t, err)
	assert.Nil(t, binding, "unknown kinds are not bound")

	r.Fallback(component.BinderFunc(func(c *component.Component) (component.Binding, error) {
		return nil, errors.New("boom")
	}))
	_, err = r.Bind(newComponent(t, "/page/tasks"))
	assert.EqualError(t, err, "boom")
}
