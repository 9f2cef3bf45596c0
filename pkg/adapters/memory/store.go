package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Jembe/jembe-sub000/pkg/domain"
	"github.com/mohae/deepcopy"
)

type stack struct {
	entries []domain.HistoryEntry
	cursor  int
}

// HistoryStore implements ports.HistoryStore in memory.
// Safe for concurrent use.
type HistoryStore struct {
	data map[string]*stack
	mu   sync.RWMutex
}

// NewHistoryStore creates an empty in-memory history.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		data: make(map[string]*stack),
	}
}

// Copy on the way in and out so callers never share state maps with the store.
func clone(e domain.HistoryEntry) domain.HistoryEntry {
	return deepcopy.Copy(e).(domain.HistoryEntry)
}

// Push appends entry after the cursor.
func (s *HistoryStore) Push(ctx context.Context, sessionID string, entry domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.data[sessionID]
	if !ok {
		s.data[sessionID] = &stack{entries: []domain.HistoryEntry{clone(entry)}}
		return nil
	}
	st.entries = append(st.entries[:st.cursor+1], clone(entry))
	st.cursor = len(st.entries) - 1
	return nil
}

// Replace overwrites the entry under the cursor.
func (s *HistoryStore) Replace(ctx context.Context, sessionID string, entry domain.HistoryEntry) error {
	s.mu.Lock()
	st, ok := s.data[sessionID]
	if ok {
		st.entries[st.cursor] = clone(entry)
	}
	s.mu.Unlock()

	if !ok {
		return s.Push(ctx, sessionID, entry)
	}
	return nil
}

// Current returns the entry under the cursor.
func (s *HistoryStore) Current(ctx context.Context, sessionID string) (domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.data[sessionID]
	if !ok {
		return domain.HistoryEntry{}, domain.ErrHistoryEmpty
	}
	return clone(st.entries[st.cursor]), nil
}

// Back moves the cursor to the previous entry.
func (s *HistoryStore) Back(ctx context.Context, sessionID string) (domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.data[sessionID]
	if !ok || st.cursor == 0 {
		return domain.HistoryEntry{}, domain.ErrHistoryEmpty
	}
	st.cursor--
	return clone(st.entries[st.cursor]), nil
}

// Delete forgets the session.
func (s *HistoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns the sessions with recorded history, sorted.
func (s *HistoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	return sessions, nil
}
