package dom

import "golang.org/x/net/html"

// Equal reports whether a and b are structurally identical: same node types,
// tags, text, attribute sets (order-insensitive) and children.
func Equal(a, b *html.Node) bool {
	if !sameKind(a, b) || a.Data != b.Data {
		return false
	}
	if a.Type == html.ElementNode && !equalAttrs(a.Attr, b.Attr) {
		return false
	}
	ca, cb := a.FirstChild, b.FirstChild
	for ca != nil && cb != nil {
		if !Equal(ca, cb) {
			return false
		}
		ca, cb = ca.NextSibling, cb.NextSibling
	}
	return ca == nil && cb == nil
}

func sameKind(a, b *html.Node) bool {
	if a.Type != b.Type {
		return false
	}
	if a.Type == html.ElementNode {
		return a.Data == b.Data && a.Namespace == b.Namespace
	}
	return true
}

func equalAttrs(a, b []html.Attribute) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[html.Attribute]int, len(a))
	for _, attr := range a {
		seen[attr]++
	}
	for _, attr := range b {
		if seen[attr] == 0 {
			return false
		}
		seen[attr]--
	}
	return true
}
