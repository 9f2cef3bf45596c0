package dom

import "golang.org/x/net/html"

// Kind classifies an element for placeholder indexing.
type Kind int

const (
	PlainNode Kind = iota
	ComponentRoot
	PlaceholderSlot
	PermanentAnchor
)

func (k Kind) String() string {
	switch k {
	case ComponentRoot:
		return "component-root"
	case PlaceholderSlot:
		return "placeholder-slot"
	case PermanentAnchor:
		return "permanent-anchor"
	default:
		return "plain"
	}
}

// Classify returns the kind of n and the component name it refers to.
// Identity wins over anchors, anchors over slots.
func Classify(n *html.Node) (Kind, string) {
	if n == nil || n.Type != html.ElementNode {
		return PlainNode, ""
	}
	if name, ok := GetAttr(n, AttrName); ok && name != "" {
		return ComponentRoot, name
	}
	if name, ok := GetAttr(n, AttrPermanent); ok && name != "" {
		return PermanentAnchor, name
	}
	if name, ok := GetAttr(n, AttrPlaceholder); ok && name != "" {
		return PlaceholderSlot, name
	}
	return PlainNode, ""
}

// IsInert reports whether n is marked as never to be diffed.
func IsInert(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && HasAttr(n, AttrIgnore)
}

// Key returns the matching key of n: its component identity, the component a
// slot stands for, the anchor name, or its id attribute. "" means positional.
func Key(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	kind, name := Classify(n)
	switch kind {
	case ComponentRoot, PlaceholderSlot:
		return name
	case PermanentAnchor:
		return "anchor:" + name
	}
	if id, ok := GetAttr(n, "id"); ok && id != "" {
		return "#" + id
	}
	return ""
}
