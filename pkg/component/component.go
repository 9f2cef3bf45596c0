package component

import (
	"fmt"
	"sort"

	"github.com/Jembe/jembe-sub000/pkg/dom"
	"github.com/Jembe/jembe-sub000/pkg/domain"
	"golang.org/x/net/html"
)

// Config describes a component to create. Exactly one of Markup or Element is used;
// Element wins when both are set.
type Config struct {
	ExecName   string
	State      map[string]any
	URL        string
	ChangesURL bool
	Actions    []string

	// Markup is raw producer markup.
	Markup string
	// Element is a subtree already parsed, typically found on the document.
	Element *html.Node
	// OnDocument marks Element as attached to the live document.
	OnDocument bool

	Binder Binder
}

// Component is one component instance.
type Component struct {
	ExecName       string
	HierarchyLevel int
	IsRoot         bool
	State          map[string]any
	URL            string
	ChangesURL     bool
	Actions        map[string]struct{}

	// Handle is the subtree root owned by this instance.
	Handle dom.ID
	// Placeholders maps child execNames to the element filling their slot.
	Placeholders map[string]dom.ID
	// PermanentPlaceholders maps names to stable anchors.
	PermanentPlaceholders map[string]dom.ID

	OnDocument bool
	Mounted    bool

	doc     *dom.Document
	binder  Binder
	binding Binding
	timers  *Timers
}

// New creates a component bound to doc.
func New(doc *dom.Document, cfg Config) (*Component, error) {
	if err := domain.ValidateExecName(cfg.ExecName); err != nil {
		return nil, err
	}
	level := domain.HierarchyLevel(cfg.ExecName)
	c := &Component{
		ExecName:              cfg.ExecName,
		HierarchyLevel:        level,
		IsRoot:                level == domain.RootLevel,
		State:                 cfg.State,
		URL:                   cfg.URL,
		ChangesURL:            cfg.ChangesURL,
		Actions:               make(map[string]struct{}, len(cfg.Actions)),
		Placeholders:          make(map[string]dom.ID),
		PermanentPlaceholders: make(map[string]dom.ID),
		doc:                   doc,
		binder:                cfg.Binder,
	}
	if c.State == nil {
		c.State = make(map[string]any)
	}
	for _, a := range cfg.Actions {
		c.Actions[a] = struct{}{}
	}
	c.timers = newTimers(c)

	el := cfg.Element
	if el == nil {
		parsed, err := dom.ParseComponent(cfg.Markup, cfg.ExecName, c.IsRoot)
		if err != nil {
			return nil, err
		}
		el = parsed
	} else {
		dom.SetAttr(el, dom.AttrName, cfg.ExecName)
		c.OnDocument = cfg.OnDocument
	}
	c.Handle = doc.Handle(el)
	return c, nil
}

// Element resolves the handle of the component's subtree root.
func (c *Component) Element() *html.Node {
	return c.doc.Lookup(c.Handle)
}

// Document returns the document the component belongs to.
func (c *Component) Document() *dom.Document {
	return c.doc
}

// Timers returns the timers owned by the component's interaction layer.
func (c *Component) Timers() *Timers {
	return c.timers
}

// HasAction reports whether name may be called on the component.
func (c *Component) HasAction(name string) bool {
	_, ok := c.Actions[name]
	return ok
}

// ActionNames returns the callable actions sorted by name.
func (c *Component) ActionNames() []string {
	out := make([]string, 0, len(c.Actions))
	for a := range c.Actions {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Mount indexes placeholders and activates the directive layer. It is a no-op
// when already mounted.
func (c *Component) Mount() error {
	if c.Mounted {
		return nil
	}
	if err := c.Reindex(); err != nil {
		return err
	}
	if c.binder != nil {
		binding, err := c.binder.Bind(c)
		if err != nil {
			return fmt.Errorf("bind %s: %w", c.ExecName, err)
		}
		c.binding = binding
	}
	c.Mounted = true
	return nil
}

// Reindex rebuilds the placeholder maps from the current subtree.
func (c *Component) Reindex() error {
	el := c.Element()
	if el == nil {
		return fmt.Errorf("index %s: handle %d is not resolvable", c.ExecName, c.Handle)
	}
	c.Placeholders, c.PermanentPlaceholders = IndexPlaceholders(c.doc, el, c.ExecName)
	return nil
}

// Unmount releases the directive layer and severs the handle. The timers go to
// successor when one is given, otherwise they are cancelled.
func (c *Component) Unmount(successor *Component) {
	if c.binding != nil {
		c.binding.Release()
		c.binding = nil
	}
	if successor != nil && successor != c {
		c.timers.handOver(successor.timers)
	} else {
		c.timers.Stop()
	}
	c.Mounted = false
	c.OnDocument = false
	c.Handle = dom.NoID
}

// Remove unmounts and detaches this component and every component reachable
// through its placeholder maps, as resolved in reg. It returns the removed names,
// this component first.
func (c *Component) Remove(reg Registry) []string {
	removed := []string{c.ExecName}
	for _, name := range c.ChildNames() {
		child, ok := reg[name]
		if !ok || child == c {
			continue
		}
		removed = append(removed, child.Remove(reg)...)
	}
	if el := c.Element(); el != nil && el.Parent != nil {
		el.Parent.RemoveChild(el)
	}
	c.Unmount(nil)
	return removed
}

// ChildNames returns the names found in both placeholder maps, once each, sorted.
func (c *Component) ChildNames() []string {
	seen := make(map[string]struct{}, len(c.Placeholders)+len(c.PermanentPlaceholders))
	names := make([]string, 0, len(seen))
	for _, m := range []map[string]dom.ID{c.Placeholders, c.PermanentPlaceholders} {
		for name := range m {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Holds reports whether name appears in one of the placeholder maps.
func (c *Component) Holds(name string) bool {
	if _, ok := c.Placeholders[name]; ok {
		return true
	}
	_, ok := c.PermanentPlaceholders[name]
	return ok
}

// CommandPayload returns the snapshot sent upstream with every request.
func (c *Component) CommandPayload() domain.ComponentSnapshot {
	return domain.ComponentSnapshot{ExecName: c.ExecName, State: c.State}
}

func (c *Component) String() string {
	return fmt.Sprintf("%s(level=%d, handle=%d, mounted=%t)", c.ExecName, c.HierarchyLevel, c.Handle, c.Mounted)
}
