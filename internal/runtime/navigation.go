package runtime

import (
	"context"
	"log/slog"

	"github.com/Jembe/jembe-sub000/internal/logging"
	"github.com/Jembe/jembe-sub000/pkg/component"
	"github.com/Jembe/jembe-sub000/pkg/domain"
	"github.com/Jembe/jembe-sub000/pkg/ports"
)

// Navigator records a history entry after every successful pass.
type Navigator struct {
	history   ports.HistoryStore
	sessionID string
	logger    *slog.Logger
	loaded    bool
}

// NewNavigator creates a navigator writing the history of sessionID.
func NewNavigator(history ports.HistoryStore, sessionID string, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Navigator{history: history, sessionID: sessionID, logger: logger}
}

// URLOwner returns the deepest mounted component that drives the URL. Ties on
// depth go to the smallest execName.
func URLOwner(reg component.Registry) *component.Component {
	var owner *component.Component
	for _, name := range reg.Names() {
		c := reg[name]
		if !c.Mounted || !c.ChangesURL {
			continue
		}
		if owner == nil || c.HierarchyLevel > owner.HierarchyLevel {
			owner = c
		}
	}
	return owner
}

// Sync records the registry. The first entry of a session replaces the current
// one; every later entry is pushed.
func (n *Navigator) Sync(ctx context.Context, reg component.Registry) (domain.HistoryEntry, bool, error) {
	owner := URLOwner(reg)
	if owner == nil {
		return domain.HistoryEntry{}, false, nil
	}
	entry := domain.HistoryEntry{URL: owner.URL, Components: reg.Snapshot()}

	replace := !n.loaded
	var err error
	if replace {
		err = n.history.Replace(ctx, n.sessionID, entry)
	} else {
		err = n.history.Push(ctx, n.sessionID, entry)
	}
	if err != nil {
		return entry, false, err
	}
	n.loaded = true
	n.logger.Debug("history updated", "url", entry.URL, "owner", owner.ExecName, "replaced", replace)
	return entry, true, nil
}

// Back steps the history back and returns the entry to restore.
func (n *Navigator) Back(ctx context.Context) (domain.HistoryEntry, error) {
	return n.history.Back(ctx, n.sessionID)
}
