// Package middleware wraps a ports.HistoryStore to change how entries are
// stored: encrypted at rest, or with sensitive state masked.
package middleware

import "github.com/Jembe/jembe-sub000/pkg/ports"

// Middleware allows wrapping a HistoryStore to add behavior.
type Middleware func(ports.HistoryStore) ports.HistoryStore

// Chain applies mws so that the first one is the outermost.
func Chain(store ports.HistoryStore, mws ...Middleware) ports.HistoryStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
