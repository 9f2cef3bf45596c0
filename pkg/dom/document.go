package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ID is an opaque, stable handle of a node. The zero value names no node.
type ID uint64

// NoID is the zero handle.
const NoID ID = 0

const emptyDocument = "<!DOCTYPE html><html><head></head><body></body></html>"

// Document is a parsed HTML document plus the handle table of its nodes.
// Not safe for concurrent use.
type Document struct {
	root  *html.Node
	ids   map[*html.Node]ID
	nodes map[ID]*html.Node
	next  ID
}

// New returns an empty document.
func New() *Document {
	d, _ := ParseString(emptyDocument)
	return d
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{
		root:  root,
		ids:   make(map[*html.Node]ID),
		nodes: make(map[ID]*html.Node),
	}, nil
}

// ParseString reads a full HTML document from s.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Element returns the document element (<html>).
func (d *Document) Element() *html.Node {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// SetElement installs n as the document element, replacing the current one.
func (d *Document) SetElement(n *html.Node) {
	old := d.Element()
	if old == n {
		return
	}
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	if old != nil {
		d.root.InsertBefore(n, old)
		d.root.RemoveChild(old)
		return
	}
	d.root.AppendChild(n)
}

// Handle returns the handle of n, assigning one on first use.
func (d *Document) Handle(n *html.Node) ID {
	if n == nil {
		return NoID
	}
	if id, ok := d.ids[n]; ok {
		return id
	}
	d.next++
	d.ids[n] = d.next
	d.nodes[d.next] = n
	return d.next
}

// Lookup resolves a handle; it returns nil for unknown or released handles.
func (d *Document) Lookup(id ID) *html.Node {
	return d.nodes[id]
}

// Release forgets a handle.
func (d *Document) Release(id ID) {
	if n, ok := d.nodes[id]; ok {
		delete(d.ids, n)
		delete(d.nodes, id)
	}
}

// Contains reports whether n is attached to this document.
func (d *Document) Contains(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

// Prune releases the handles of every node no longer attached to the document
// and returns how many were dropped.
func (d *Document) Prune() int {
	dropped := 0
	for id, n := range d.nodes {
		if !d.Contains(n) {
			delete(d.ids, n)
			delete(d.nodes, id)
			dropped++
		}
	}
	return dropped
}

// Handles returns the number of live handles.
func (d *Document) Handles() int {
	return len(d.nodes)
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, or returns "" on error.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// RenderNode renders a single subtree.
func RenderNode(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// NewElement builds a detached element.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// Walk calls fn for n and every descendant in document order until fn returns false
// for a node, in which case that node's children are skipped.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}
