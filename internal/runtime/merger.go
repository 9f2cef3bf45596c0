package runtime

import (
	"fmt"
	"log/slog"

	"github.com/Jembe/jembe-sub000/internal/logging"
	"github.com/Jembe/jembe-sub000/pkg/component"
	"github.com/Jembe/jembe-sub000/pkg/dom"
	"github.com/Jembe/jembe-sub000/pkg/domain"
	"golang.org/x/net/html"
)

// Outcome tells what a merge did to a component.
type Outcome string

const (
	// OutcomeCurrent: root already on the document, nothing to do.
	OutcomeCurrent Outcome = "current"
	// OutcomeKept: unchanged subtree kept (and re-linked into its parent when needed).
	OutcomeKept Outcome = "kept"
	// OutcomeRendered: new markup diffed into the document.
	OutcomeRendered Outcome = "rendered"
)

// Merger attaches one component's markup to the document.
type Merger struct {
	doc    *dom.Document
	logger *slog.Logger
}

// NewMerger creates a merger working on doc.
func NewMerger(doc *dom.Document, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Merger{doc: doc, logger: logger}
}

// Merge brings node onto the document. parent is nil for the root; previous is
// the instance registered under the same name before this pass, if any.
//
// previous is unmounted only once node is mounted. When mounting fails, an
// element that replaced previous's is swapped back, so previous stays usable.
func (m *Merger) Merge(node, parent, previous *component.Component) (Outcome, error) {
	if node.IsRoot && node.OnDocument {
		if err := node.Mount(); err != nil {
			return "", err
		}
		supersede(previous, node)
		return OutcomeCurrent, nil
	}

	if node.OnDocument && previous != nil && node.Handle == previous.Handle {
		if parent != nil {
			if err := m.relink(node, parent); err != nil {
				return "", err
			}
		}
		if err := node.Mount(); err != nil {
			return "", err
		}
		supersede(previous, node)
		return OutcomeKept, nil
	}

	attach, err := m.attachPoint(node, parent)
	if err != nil {
		return "", err
	}

	target := node.Element()
	if target == nil {
		return "", fmt.Errorf("markup of %s is not resolvable", node.ExecName)
	}
	targetID := node.Handle

	result := target
	if attach != target {
		result = dom.Morph(attach, target, dom.MorphOptions{
			Opaque: opaqueFor(node.ExecName),
			Key:    dom.Key,
		})
	}
	if node.IsRoot {
		m.doc.SetElement(result)
	}

	dom.SetAttr(result, dom.AttrName, node.ExecName)
	node.Handle = m.doc.Handle(result)
	if node.Handle != targetID {
		m.doc.Release(targetID)
	}
	node.OnDocument = true
	if node.Mounted {
		err = node.Reindex()
	} else {
		err = node.Mount()
	}
	if err != nil {
		if result != attach {
			restore(attach, result)
		}
		node.OnDocument = false
		return "", err
	}
	supersede(previous, node)
	if parent != nil {
		parent.Placeholders[node.ExecName] = node.Handle
	}
	m.logger.Debug("component merged", "exec_name", node.ExecName, "handle", node.Handle)
	return OutcomeRendered, nil
}

// supersede unmounts previous in favour of node, handing its timers over.
func supersede(previous, node *component.Component) {
	if previous != nil && previous != node {
		previous.Unmount(node)
	}
}

// restore puts attach back where result took its place.
func restore(attach, result *html.Node) {
	if result.Parent == nil {
		return
	}
	if attach.Parent != nil {
		attach.Parent.RemoveChild(attach)
	}
	result.Parent.InsertBefore(attach, result)
	result.Parent.RemoveChild(result)
}

// attachPoint resolves where node's markup goes in the document.
func (m *Merger) attachPoint(node, parent *component.Component) (*html.Node, error) {
	if node.IsRoot {
		el := m.doc.Element()
		if el == nil {
			return nil, fmt.Errorf("%w: document has no root element", domain.ErrNoAttachPoint)
		}
		return el, nil
	}
	if parent == nil {
		return nil, fmt.Errorf("%w: %s has no parent", domain.ErrNoAttachPoint, node.ExecName)
	}
	if id, ok := parent.Placeholders[node.ExecName]; ok {
		if el := m.doc.Lookup(id); el != nil {
			return el, nil
		}
	}
	if id, ok := parent.PermanentPlaceholders[node.ExecName]; ok {
		anchor := m.doc.Lookup(id)
		if anchor != nil && anchor.Parent != nil {
			slot := dom.NewElement(dom.WrapperTag, html.Attribute{Key: dom.AttrPlaceholder, Val: node.ExecName})
			anchor.Parent.InsertBefore(slot, anchor.NextSibling)
			parent.Placeholders[node.ExecName] = m.doc.Handle(slot)
			return slot, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", domain.ErrNoAttachPoint, node.ExecName, parent.ExecName)
}

// relink puts the unchanged subtree of node back into the slot its parent
// currently reserves for it, when that slot is held by another element.
func (m *Merger) relink(node, parent *component.Component) error {
	el := node.Element()
	if el == nil {
		return fmt.Errorf("handle of %s is not resolvable", node.ExecName)
	}

	if id, ok := parent.Placeholders[node.ExecName]; ok {
		if id == node.Handle {
			return nil
		}
		slot := m.doc.Lookup(id)
		if slot == nil || slot.Parent == nil {
			return fmt.Errorf("%w: stale slot for %s in %s", domain.ErrNoAttachPoint, node.ExecName, parent.ExecName)
		}
		if el.Parent != nil {
			el.Parent.RemoveChild(el)
		}
		slot.Parent.InsertBefore(el, slot)
		slot.Parent.RemoveChild(slot)
		m.doc.Release(id)
	} else if id, ok := parent.PermanentPlaceholders[node.ExecName]; ok {
		anchor := m.doc.Lookup(id)
		if anchor == nil || anchor.Parent == nil {
			return fmt.Errorf("%w: stale anchor for %s in %s", domain.ErrNoAttachPoint, node.ExecName, parent.ExecName)
		}
		if el.Parent != nil {
			el.Parent.RemoveChild(el)
		}
		anchor.Parent.InsertBefore(el, anchor.NextSibling)
	} else {
		return fmt.Errorf("%w: %s in %s", domain.ErrNoAttachPoint, node.ExecName, parent.ExecName)
	}

	parent.Placeholders[node.ExecName] = node.Handle
	m.logger.Debug("component re-linked", "exec_name", node.ExecName, "parent", parent.ExecName)
	return nil
}

// opaqueFor keeps the diff out of other components' subtrees and inert elements.
func opaqueFor(self string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if dom.IsInert(n) {
			return true
		}
		kind, name := dom.Classify(n)
		return kind == dom.ComponentRoot && name != self
	}
}
