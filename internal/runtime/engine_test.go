package runtime_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Jembe/jembe-sub000/internal/runtime"
	"github.com/Jembe/jembe-sub000/pkg/component"
	"github.com/Jembe/jembe-sub000/pkg/dom"
	"github.com/Jembe/jembe-sub000/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nested = `<html jmb-name="/page"><body>` +
	`<div jmb-name="/page/a"><h1>A</h1><div jmb-name="/page/a/b"><p>B</p></div></div>` +
	`</body></html>`

type fixture struct {
	t      *testing.T
	doc    *dom.Document
	engine *runtime.Engine
	binder component.Binder
	reg    component.Registry
}

func load(t *testing.T, markup string, binder component.Binder) *fixture {
	t.Helper()
	doc, err := dom.ParseString(markup)
	require.NoError(t, err)

	scanned, err := runtime.Scan(doc, binder, nil)
	require.NoError(t, err)

	f := &fixture{
		t:      t,
		doc:    doc,
		engine: runtime.NewEngine(runtime.NewMerger(doc, nil)),
		binder: binder,
	}
	f.reg, _, err = f.engine.Reconcile(scanned, nil, nil)
	require.NoError(t, err)
	return f
}

func (f *fixture) apply(body string) (component.Registry, *runtime.Report, error) {
	f.t.Helper()
	resp, err := runtime.DecodeResponse([]byte(body))
	require.NoError(f.t, err)
	incoming, err := runtime.Incoming(f.doc, f.reg, resp.Components, f.binder)
	require.NoError(f.t, err)
	return f.engine.Reconcile(f.reg, incoming, resp.Remove)
}

func (f *fixture) mustApply(body string) *runtime.Report {
	f.t.Helper()
	next, report, err := f.apply(body)
	require.NoError(f.t, err)
	f.reg = next
	return report
}

type countingBinder struct {
	binds    map[string]int
	releases map[string]int
	fail     string
}

func newCountingBinder() *countingBinder {
	return &countingBinder{binds: map[string]int{}, releases: map[string]int{}}
}

func (b *countingBinder) Bind(c *component.Component) (component.Binding, error) {
	if c.ExecName == b.fail {
		return nil, errors.New("bind refused")
	}
	name := c.ExecName
	b.binds[name]++
	return component.ReleaseFunc(func() { b.releases[name]++ }), nil
}

func TestReconcile_InitialLoadMountsScannedTree(t *testing.T) {
	binder := newCountingBinder()
	f := load(t, nested, binder)

	assert.Equal(t, []string{"/page", "/page/a", "/page/a/b"}, f.reg.Names())
	for _, name := range f.reg.Names() {
		c := f.reg[name]
		assert.True(t, c.Mounted, name)
		assert.True(t, c.OnDocument, name)
		assert.Equal(t, 1, binder.binds[name], name)
	}
	assert.Equal(t, []string{"/page/a"}, f.reg["/page"].ChildNames())
	assert.Equal(t, []string{"/page/a/b"}, f.reg["/page/a"].ChildNames())
}

func TestReconcile_ChildrenOfFreshRoot(t *testing.T) {
	f := load(t, `<html jmb-name="/page"><body></body></html>`, nil)

	report := f.mustApply(`[
		{"execName": "/page", "state": {}, "dom": "<html><body><div jmb-placeholder=\"/page/title\"></div><div jmb-placeholder=\"/page/view\"></div></body></html>"},
		{"execName": "/page/title", "state": {"title": "Task"}},
		{"execName": "/page/view", "state": {"id": 1}}
	]`)

	assert.Equal(t, []string{"/page", "/page/title", "/page/view"}, f.reg.Names())
	assert.Equal(t, []string{"/page", "/page/title", "/page/view"}, report.Order)
	for _, name := range f.reg.Names() {
		el := f.reg[name].Element()
		require.NotNil(t, el, name)
		got, _ := dom.GetAttr(el, dom.AttrName)
		assert.Equal(t, name, got)
		assert.True(t, f.doc.Contains(el), name)
	}
	assert.Equal(t, "Task", f.reg["/page/title"].State["title"])
	assert.NotContains(t, f.doc.String(), dom.AttrPlaceholder)
}

func TestReconcile_KeepsUntouchedSubtree(t *testing.T) {
	binder := newCountingBinder()
	f := load(t, nested, binder)
	b := f.reg["/page/a/b"]
	bElement := b.Element()

	report := f.mustApply(`[{"execName": "/page/a", "dom": "<div><h1>A2</h1><div jmb-placeholder=\"/page/a/b\"></div></div>"}]`)

	assert.Same(t, b, f.reg["/page/a/b"])
	assert.Same(t, bElement, f.reg["/page/a/b"].Element())
	assert.Equal(t, runtime.OutcomeKept, report.Outcomes["/page/a/b"])
	assert.Equal(t, runtime.OutcomeRendered, report.Outcomes["/page/a"])
	assert.Equal(t, 1, binder.binds["/page/a/b"])
	assert.Equal(t, 0, binder.releases["/page/a/b"])

	rendered := dom.RenderNode(f.reg["/page/a"].Element())
	assert.Contains(t, rendered, "<h1>A2</h1>")
	assert.Contains(t, rendered, "<p>B</p>")
}

func TestReconcile_UnmountsDroppedChild(t *testing.T) {
	binder := newCountingBinder()
	f := load(t, nested, binder)
	b := f.reg["/page/a/b"]

	report := f.mustApply(`[{"execName": "/page/a", "dom": "<div><h1>A2</h1></div>"}]`)

	assert.NotContains(t, f.reg, "/page/a/b")
	assert.Equal(t, []string{"/page/a/b"}, report.Dropped)
	assert.False(t, b.Mounted)
	assert.Equal(t, 1, binder.releases["/page/a/b"])
	assert.NotContains(t, f.doc.String(), "<p>B</p>")
}

func TestReconcile_RemovalDirectiveCascades(t *testing.T) {
	f := load(t, nested, nil)
	root := f.reg["/page"]

	report := f.mustApply(`[{"removeComponents": ["/page/a"]}]`)

	assert.Equal(t, []string{"/page"}, f.reg.Names())
	assert.ElementsMatch(t, []string{"/page/a", "/page/a/b"}, report.Removed)
	assert.NotContains(t, root.Placeholders, "/page/a")
	assert.NotContains(t, f.doc.String(), `jmb-name="/page/a"`)
}

func TestReconcile_OrphanIsSkipped(t *testing.T) {
	f := load(t, `<html jmb-name="/page"><body></body></html>`, nil)

	report := f.mustApply(`[{"execName": "/page", "dom": "<html><body><div jmb-placeholder=\"/page/ghost\"></div></body></html>"}]`)

	assert.Equal(t, []string{"/page"}, f.reg.Names())
	assert.Equal(t, []string{"/page/ghost"}, report.Orphans)
}

func TestReconcile_PermanentAnchorInsertsAfterAnchor(t *testing.T) {
	f := load(t, `<html jmb-name="/page"><body><span jmb-placeholder-permanent="/page/toast"></span><footer>end</footer></body></html>`, nil)

	f.mustApply(`[{"execName": "/page/toast", "dom": "<p>saved</p>"}]`)

	toast := f.reg["/page/toast"]
	require.NotNil(t, toast)
	el := toast.Element()
	assert.Equal(t, "p", el.Data)
	require.NotNil(t, el.PrevSibling)
	kind, name := dom.Classify(el.PrevSibling)
	assert.Equal(t, dom.PermanentAnchor, kind)
	assert.Equal(t, "/page/toast", name)

	f.mustApply(`[{"execName": "/page/toast", "dom": "<p>saved again</p>"}]`)
	assert.Same(t, el, f.reg["/page/toast"].Element())
	assert.Contains(t, dom.RenderNode(el), "saved again")
	assert.Equal(t, 1, strings.Count(f.doc.String(), `jmb-name="/page/toast"`))
}

func TestReconcile_StateOnlyRecordKeepsSubtree(t *testing.T) {
	binder := newCountingBinder()
	f := load(t, nested, binder)
	old := f.reg["/page/a"]
	el := old.Element()

	report := f.mustApply(`[{"execName": "/page/a", "state": {"open": true}, "actions": ["toggle"]}]`)

	fresh := f.reg["/page/a"]
	assert.NotSame(t, old, fresh)
	assert.Same(t, el, fresh.Element())
	assert.Equal(t, true, fresh.State["open"])
	assert.True(t, fresh.HasAction("toggle"))
	assert.Equal(t, runtime.OutcomeKept, report.Outcomes["/page/a"])
	assert.False(t, old.Mounted)
	assert.Equal(t, 1, binder.releases["/page/a"])
	assert.Equal(t, 2, binder.binds["/page/a"])
}

func TestReconcile_TimersFollowReRender(t *testing.T) {
	f := load(t, nested, nil)
	old := f.reg["/page/a"]
	old.Timers().Debounce("search", time.Hour, func(*component.Component) {})

	f.mustApply(`[{"execName": "/page/a", "dom": "<div>A2</div>"}]`)

	assert.Equal(t, 0, old.Timers().Pending())
	assert.Equal(t, 1, f.reg["/page/a"].Timers().Pending())
	f.reg["/page/a"].Timers().Stop()
}

func TestReconcile_OldRegistryUntouched(t *testing.T) {
	f := load(t, nested, nil)
	before := f.reg.Names()

	next, _, err := f.apply(`[{"removeComponents": ["/page/a"]}]`)
	require.NoError(t, err)

	assert.Equal(t, before, f.reg.Names())
	assert.Equal(t, []string{"/page"}, next.Names())
}

func TestReconcile_MergeFailureAbortsPass(t *testing.T) {
	binder := newCountingBinder()
	f := load(t, nested, binder)
	binder.fail = "/page/a"

	next, _, err := f.apply(`[{"execName": "/page/a", "dom": "<div>A2</div>"}]`)

	require.Error(t, err)
	var mergeErr *domain.MergeError
	require.ErrorAs(t, err, &mergeErr)
	assert.Equal(t, "/page/a", mergeErr.ExecName)

	require.NotNil(t, next)
	assert.Equal(t, f.reg.Names(), next.Names())
	assert.Same(t, f.reg["/page/a"], next["/page/a"])
	assert.True(t, next["/page/a"].Mounted)
	assert.Zero(t, binder.releases["/page/a"])
}

func TestReconcile_PassAfterFailedMergeSucceeds(t *testing.T) {
	binder := newCountingBinder()
	f := load(t, nested, binder)
	previous := f.reg["/page/a/b"]
	binder.fail = "/page/a/b"

	next, _, err := f.apply(`[{"execName": "/page/a/b", "dom": "<div><p>B2</p></div>"}]`)
	require.Error(t, err)
	f.reg = next
	binder.fail = ""

	report := f.mustApply(`[{"execName": "/page", "state": {"q": "x"}}]`)

	assert.Equal(t, []string{"/page", "/page/a", "/page/a/b"}, report.Order)
	assert.Equal(t, runtime.OutcomeKept, report.Outcomes["/page/a/b"])
	assert.Same(t, previous, f.reg["/page/a/b"])
	assert.True(t, previous.Mounted)
	assert.True(t, previous.OnDocument)
	assert.NotNil(t, previous.Element())
	assert.Zero(t, binder.releases["/page/a/b"])
}

func TestReconcile_FreshRootWinsOverStateOnlyRoot(t *testing.T) {
	binder := newCountingBinder()
	f := load(t, `<html jmb-name="/page"><body>old</body></html>`, binder)
	previous := f.reg["/page"]

	report := f.mustApply(`[
		{"execName": "/page", "state": {"q": "x"}},
		{"execName": "/other", "dom": "<html><body>new</body></html>"}
	]`)

	assert.Equal(t, "/other", report.Root)
	assert.Equal(t, []string{"/other"}, f.reg.Names())
	assert.Equal(t, []string{"/page"}, report.Dropped)
	assert.False(t, previous.Mounted)
	assert.Equal(t, 1, binder.releases["/page"])
	got, _ := dom.GetAttr(f.doc.Element(), dom.AttrName)
	assert.Equal(t, "/other", got)
}

func TestReconcile_NoRoot(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><p>static</p></body></html>`)
	require.NoError(t, err)
	engine := runtime.NewEngine(runtime.NewMerger(doc, nil))

	_, _, err = engine.Reconcile(component.Registry{}, nil, nil)
	assert.ErrorIs(t, err, domain.ErrNoRoot)
}

func TestReconcile_IncomingRootWins(t *testing.T) {
	f := load(t, `<html jmb-name="/page"><body>old</body></html>`, nil)

	report := f.mustApply(`[{"execName": "/other", "dom": "<html><body>new</body></html>"}]`)

	assert.Equal(t, "/other", report.Root)
	assert.Equal(t, []string{"/other"}, f.reg.Names())
	got, _ := dom.GetAttr(f.doc.Element(), dom.AttrName)
	assert.Equal(t, "/other", got)
	assert.Contains(t, f.doc.String(), "new")
}
