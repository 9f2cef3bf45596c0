package dom

import "golang.org/x/net/html"

// Attribute contract between producer markup and the client.
const (
	// AttrName carries the execName of a component root element.
	AttrName = "jmb-name"
	// AttrData carries the serialized {state,url,changesUrl,actions} on initial markup.
	AttrData = "jmb-data"
	// AttrPlaceholder marks the slot where a child component is attached.
	AttrPlaceholder = "jmb-placeholder"
	// AttrPermanent marks a stable anchor next to which a not-yet-existing child is inserted.
	AttrPermanent = "jmb-placeholder-permanent"
	// AttrIgnore marks an element the morph never enters.
	AttrIgnore = "jmb-ignore"
)

// GetAttr returns the value of key on n.
func GetAttr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether n carries key.
func HasAttr(n *html.Node, key string) bool {
	_, ok := GetAttr(n, key)
	return ok
}

// SetAttr sets key on n, replacing any previous value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr drops key from n.
func RemoveAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}
