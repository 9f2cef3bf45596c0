package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// WrapperTag is the synthetic container used when a fragment has no single root element.
const WrapperTag = "div"

// ParseComponent parses the markup of the component execName and returns its
// single root element, already tagged with the identity marker.
//
// Root components are parsed as whole documents and the identity goes on <html>.
// Other fragments are wrapped in a synthetic container unless they consist of
// exactly one element (surrounding whitespace and comments ignored).
func ParseComponent(markup, execName string, root bool) (*html.Node, error) {
	if root {
		return parseDocumentElement(markup, execName)
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("parse markup of %s: %w", execName, err)
	}
	el := singleElement(nodes)
	if el == nil {
		el = NewElement(WrapperTag)
		for _, n := range nodes {
			el.AppendChild(n)
		}
	}
	SetAttr(el, AttrName, execName)
	return el, nil
}

func parseDocumentElement(markup, execName string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup of %s: %w", execName, err)
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			doc.RemoveChild(c)
			SetAttr(c, AttrName, execName)
			return c, nil
		}
	}
	return nil, fmt.Errorf("parse markup of %s: no document element", execName)
}

func singleElement(nodes []*html.Node) *html.Node {
	var el *html.Node
	for _, n := range nodes {
		switch n.Type {
		case html.CommentNode:
			continue
		case html.TextNode:
			if strings.TrimSpace(n.Data) == "" {
				continue
			}
			return nil
		case html.ElementNode:
			if el != nil {
				return nil
			}
			el = n
		default:
			return nil
		}
	}
	return el
}
