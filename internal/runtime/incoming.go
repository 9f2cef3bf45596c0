package runtime

import (
	"github.com/Jembe/jembe-sub000/pkg/component"
	"github.com/Jembe/jembe-sub000/pkg/dom"
	"github.com/Jembe/jembe-sub000/pkg/domain"
)

// Incoming builds fresh components from response records. A record without
// markup reuses the subtree its predecessor in old already has on the document,
// so only state, URL and actions change.
func Incoming(doc *dom.Document, old component.Registry, records []domain.ComponentRecord, binder component.Binder) (component.Registry, error) {
	out := make(component.Registry, len(records))
	for _, rec := range records {
		cfg := component.Config{
			ExecName:   rec.ExecName,
			State:      rec.State,
			URL:        rec.URL,
			ChangesURL: rec.ChangesURL,
			Actions:    rec.Actions,
			Binder:     binder,
		}
		if rec.DOM != nil {
			cfg.Markup = *rec.DOM
		} else if prev, ok := old[rec.ExecName]; ok && prev.OnDocument {
			if el := prev.Element(); el != nil {
				cfg.Element = el
				cfg.OnDocument = true
			}
		}

		c, err := component.New(doc, cfg)
		if err != nil {
			return nil, &domain.MergeError{ExecName: rec.ExecName, Cause: err}
		}
		out[rec.ExecName] = c
	}
	return out, nil
}
