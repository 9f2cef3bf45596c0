package component

import (
	"github.com/Jembe/jembe-sub000/pkg/dom"
	"golang.org/x/net/html"
)

// IndexPlaceholders walks the subtree of root depth-first and records the
// attachment points of child components. The walk never descends into another
// component's root, a placeholder slot or a permanent anchor, so grandchildren
// are never attributed to self.
func IndexPlaceholders(doc *dom.Document, root *html.Node, self string) (placeholders, permanent map[string]dom.ID) {
	placeholders = make(map[string]dom.ID)
	permanent = make(map[string]dom.ID)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			kind, name := dom.Classify(c)
			switch kind {
			case dom.ComponentRoot:
				if name != self {
					placeholders[name] = doc.Handle(c)
					continue
				}
			case dom.PlaceholderSlot:
				placeholders[name] = doc.Handle(c)
				continue
			case dom.PermanentAnchor:
				permanent[name] = doc.Handle(c)
				continue
			}
			walk(c)
		}
	}
	walk(root)
	return placeholders, permanent
}
