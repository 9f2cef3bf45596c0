package runtime

import (
	"fmt"
	"log/slog"

	"github.com/Jembe/jembe-sub000/pkg/component"
	"github.com/Jembe/jembe-sub000/pkg/dom"
	"golang.org/x/net/html"
)

// Scan builds a component for every element of doc carrying a jmb-name. The
// components are already on the document and still need a reconciliation pass
// to be mounted. The jmb-data attribute is consumed.
func Scan(doc *dom.Document, binder component.Binder, logger *slog.Logger) (component.Registry, error) {
	reg := make(component.Registry)
	root := doc.Element()
	if root == nil {
		return reg, nil
	}

	var scanErr error
	dom.Walk(root, func(n *html.Node) bool {
		if scanErr != nil || n.Type != html.ElementNode {
			return scanErr == nil
		}
		if dom.IsInert(n) {
			return false
		}
		name, ok := dom.GetAttr(n, dom.AttrName)
		if !ok {
			return true
		}
		if _, dup := reg[name]; dup {
			if logger != nil {
				logger.Warn("duplicate component on document", "exec_name", name)
			}
			return true
		}

		raw, _ := dom.GetAttr(n, dom.AttrData)
		data, err := DecodeComponentData(raw)
		if err != nil {
			scanErr = fmt.Errorf("decode %s of %s: %w", dom.AttrData, name, err)
			return false
		}
		dom.RemoveAttr(n, dom.AttrData)

		c, err := component.New(doc, component.Config{
			ExecName:   name,
			State:      data.State,
			URL:        data.URL,
			ChangesURL: data.ChangesURL,
			Actions:    data.Actions,
			Element:    n,
			OnDocument: true,
			Binder:     binder,
		})
		if err != nil {
			scanErr = err
			return false
		}
		reg[name] = c
		return true
	})
	if scanErr != nil {
		return nil, scanErr
	}
	return reg, nil
}
