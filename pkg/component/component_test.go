package component_test

import (
	"testing"

	"github.com/Jembe/jembe-sub000/pkg/component"
	"github.com/Jembe/jembe-sub000/pkg/dom"
	"github.com/Jembe/jembe-sub000/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

type countingBinder struct {
	binds    int
	releases int
}

func (b *countingBinder) Bind(c *component.Component) (component.Binding, error) {
	b.binds++
	return component.ReleaseFunc(func() { b.releases++ }), nil
}

func body(doc *dom.Document) *html.Node {
	var found *html.Node
	dom.Walk(doc.Element(), func(n *html.Node) bool {
		if found == nil && n.Type == html.ElementNode && n.Data == "body" {
			found = n
		}
		return found == nil
	})
	return found
}

func attach(t *testing.T, doc *dom.Document, c *component.Component) {
	t.Helper()
	el := c.Element()
	require.NotNil(t, el)
	body(doc).AppendChild(el)
	c.OnDocument = true
}

func TestNew_Identity(t *testing.T) {
	doc := dom.New()
	tests := []struct {
		name      string
		execName  string
		wantLevel int
		wantRoot  bool
	}{
		{"root", "/page", 2, true},
		{"child", "/page/tasks", 3, false},
		{"grandchild", "/page/tasks/edit", 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := component.New(doc, component.Config{ExecName: tt.execName, Markup: "<div></div>"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, c.HierarchyLevel)
			assert.Equal(t, tt.wantRoot, c.IsRoot)
			assert.False(t, c.OnDocument)
			assert.NotEqual(t, dom.NoID, c.Handle)
			assert.NotNil(t, c.State)
		})
	}
}

func TestNew_InvalidName(t *testing.T) {
	_, err := component.New(dom.New(), component.Config{ExecName: "page"})
	assert.ErrorIs(t, err, domain.ErrInvalidExecName)
}

func TestMount_Idempotent(t *testing.T) {
	doc := dom.New()
	binder := &countingBinder{}
	c, err := component.New(doc, component.Config{
		ExecName: "/page/list",
		Markup:   `<ul><li jmb-placeholder="/page/list/item"></li></ul>`,
		Binder:   binder,
	})
	require.NoError(t, err)
	attach(t, doc, c)

	require.NoError(t, c.Mount())
	require.NoError(t, c.Mount())

	assert.True(t, c.Mounted)
	assert.Equal(t, 1, binder.binds)
	assert.Contains(t, c.Placeholders, "/page/list/item")
}

func TestUnmount_ReleasesBindingAndTimers(t *testing.T) {
	doc := dom.New()
	binder := &countingBinder{}
	c, err := component.New(doc, component.Config{ExecName: "/page/a", Markup: `<p>a</p>`, Binder: binder})
	require.NoError(t, err)
	attach(t, doc, c)
	require.NoError(t, c.Mount())

	c.Timers().Defer("save", timeout, func(*component.Component) {})
	require.Equal(t, 1, c.Timers().Pending())

	c.Unmount(nil)

	assert.Equal(t, 1, binder.releases)
	assert.Equal(t, 0, c.Timers().Pending())
	assert.False(t, c.Mounted)
	assert.False(t, c.OnDocument)
	assert.Equal(t, dom.NoID, c.Handle)
}

func TestRemove_Cascades(t *testing.T) {
	doc := dom.New()
	parent, err := component.New(doc, component.Config{
		ExecName: "/page/a",
		Markup:   `<div><div jmb-name="/page/a/b"><span jmb-name="/page/a/b/c">c</span></div></div>`,
	})
	require.NoError(t, err)
	attach(t, doc, parent)
	require.NoError(t, parent.Mount())

	b, err := component.New(doc, component.Config{
		ExecName:   "/page/a/b",
		Element:    doc.Lookup(parent.Placeholders["/page/a/b"]),
		OnDocument: true,
	})
	require.NoError(t, err)
	require.NoError(t, b.Mount())

	cc, err := component.New(doc, component.Config{
		ExecName:   "/page/a/b/c",
		Element:    doc.Lookup(b.Placeholders["/page/a/b/c"]),
		OnDocument: true,
	})
	require.NoError(t, err)
	require.NoError(t, cc.Mount())

	reg := component.Registry{"/page/a": parent, "/page/a/b": b, "/page/a/b/c": cc}
	bEl := b.Element()

	removed := b.Remove(reg)

	assert.Equal(t, []string{"/page/a/b", "/page/a/b/c"}, removed)
	assert.False(t, b.Mounted)
	assert.False(t, cc.Mounted)
	assert.False(t, doc.Contains(bEl))
	assert.True(t, parent.Mounted)
}

func TestCommandPayload(t *testing.T) {
	c, err := component.New(dom.New(), component.Config{
		ExecName: "/page/view",
		State:    map[string]any{"id": 1},
		URL:      "/view/1",
		Actions:  []string{"refresh"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ComponentSnapshot{ExecName: "/page/view", State: map[string]any{"id": 1}}, c.CommandPayload())
	assert.True(t, c.HasAction("refresh"))
	assert.Equal(t, []string{"refresh"}, c.ActionNames())
}

func TestRegistry_Snapshot(t *testing.T) {
	doc := dom.New()
	a, _ := component.New(doc, component.Config{ExecName: "/page/a", State: map[string]any{"x": 1}})
	b, _ := component.New(doc, component.Config{ExecName: "/page/b"})
	a.Mounted = true

	reg := component.Registry{"/page/b": b, "/page/a": a}
	assert.Equal(t, []string{"/page/a", "/page/b"}, reg.Names())
	assert.Equal(t, []domain.ComponentSnapshot{{ExecName: "/page/a", State: map[string]any{"x": 1}}}, reg.Snapshot())
}
