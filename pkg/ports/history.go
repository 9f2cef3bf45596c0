package ports

import (
	"context"

	"github.com/Jembe/jembe-sub000/pkg/domain"
)

// HistoryStore keeps a navigation stack per session with a cursor on the
// current entry, the way a browser history does.
type HistoryStore interface {
	// Push drops every entry after the cursor, appends entry and moves the cursor to it.
	Push(ctx context.Context, sessionID string, entry domain.HistoryEntry) error

	// Replace overwrites the entry under the cursor. On an empty stack it behaves as Push.
	Replace(ctx context.Context, sessionID string, entry domain.HistoryEntry) error

	// Current returns the entry under the cursor.
	// Returns domain.ErrHistoryEmpty when nothing was recorded.
	Current(ctx context.Context, sessionID string) (domain.HistoryEntry, error)

	// Back moves the cursor one entry back and returns that entry.
	// Returns domain.ErrHistoryEmpty when the cursor is already on the first entry.
	Back(ctx context.Context, sessionID string) (domain.HistoryEntry, error)

	// Delete forgets the session's history.
	Delete(ctx context.Context, sessionID string) error
}
