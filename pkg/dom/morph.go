package dom

import "golang.org/x/net/html"

// MorphOptions are the policies of Morph.
type MorphOptions struct {
	// Opaque marks elements the morph keeps as they are once matched.
	// It is never consulted for the morph root.
	Opaque func(*html.Node) bool
	// Key returns the matching key of a node; "" falls back to positional matching.
	// Defaults to Key.
	Key func(*html.Node) string
}

// Morph transforms from so that it matches to, reusing the nodes of from wherever
// they can be matched. Nodes of to are consumed. It returns the node standing in
// from's place afterwards: from itself, or to when the two could not be matched
// (different node type or tag), in which case to has replaced from in its parent.
func Morph(from, to *html.Node, opts MorphOptions) *html.Node {
	m := morpher{opaque: opts.Opaque, key: opts.Key}
	if m.opaque == nil {
		m.opaque = func(*html.Node) bool { return false }
	}
	if m.key == nil {
		m.key = Key
	}
	if to.Parent != nil {
		to.Parent.RemoveChild(to)
	}
	result := m.node(from, to)
	if result != from && from.Parent != nil {
		from.Parent.InsertBefore(result, from)
		from.Parent.RemoveChild(from)
	}
	return result
}

type morpher struct {
	opaque func(*html.Node) bool
	key    func(*html.Node) string
}

func (m morpher) node(from, to *html.Node) *html.Node {
	if !sameKind(from, to) {
		return to
	}
	switch from.Type {
	case html.ElementNode:
		if Equal(from, to) {
			return from
		}
		if !equalAttrs(from.Attr, to.Attr) {
			from.Attr = append([]html.Attribute(nil), to.Attr...)
		}
		m.children(from, to)
	case html.TextNode, html.CommentNode:
		if from.Data != to.Data {
			from.Data = to.Data
		}
	case html.DoctypeNode:
		from.Data = to.Data
		from.Attr = append([]html.Attribute(nil), to.Attr...)
	}
	return from
}

func (m morpher) children(from, to *html.Node) {
	var old []*html.Node
	keyed := make(map[string]*html.Node)
	for c := from.FirstChild; c != nil; c = c.NextSibling {
		old = append(old, c)
		if k := m.key(c); k != "" {
			if _, dup := keyed[k]; !dup {
				keyed[k] = c
			}
		}
	}

	var incoming []*html.Node
	for c := to.FirstChild; c != nil; c = c.NextSibling {
		incoming = append(incoming, c)
	}

	used := make(map[*html.Node]bool, len(old))
	result := make([]*html.Node, 0, len(incoming))
	cursor := 0
	for _, nc := range incoming {
		to.RemoveChild(nc)

		var match *html.Node
		if k := m.key(nc); k != "" {
			if c, ok := keyed[k]; ok && !used[c] {
				match = c
			}
		} else {
			for i := cursor; i < len(old); i++ {
				c := old[i]
				if used[c] || m.key(c) != "" {
					continue
				}
				if sameKind(c, nc) {
					match = c
					cursor = i + 1
					break
				}
			}
		}

		if match == nil {
			result = append(result, nc)
			continue
		}
		used[match] = true
		if m.opaque(match) {
			result = append(result, match)
			continue
		}
		result = append(result, m.node(match, nc))
	}

	if sameSequence(old, result) {
		return
	}
	for _, c := range old {
		from.RemoveChild(c)
	}
	for _, c := range result {
		if c.Parent != nil {
			c.Parent.RemoveChild(c)
		}
		from.AppendChild(c)
	}
}

func sameSequence(a, b []*html.Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
