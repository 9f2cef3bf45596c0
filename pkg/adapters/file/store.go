// Package file keeps navigation history as one JSON file per session.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Jembe/jembe-sub000/pkg/domain"
)

// HistoryStore implements ports.HistoryStore on the local filesystem.
type HistoryStore struct {
	BasePath string

	mu sync.Mutex
}

type document struct {
	Cursor  int                   `json:"cursor"`
	Entries []domain.HistoryEntry `json:"entries"`
}

// New creates a store under basePath.
// If basePath is empty, it defaults to ".jembe/history".
func New(basePath string) *HistoryStore {
	if basePath == "" {
		basePath = filepath.Join(".jembe", "history")
	}
	return &HistoryStore{BasePath: basePath}
}

func (s *HistoryStore) path(sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("sessionID cannot be empty")
	}
	if strings.ContainsAny(sessionID, `/\`) || sessionID == "." || sessionID == ".." {
		return "", fmt.Errorf("invalid sessionID %q", sessionID)
	}
	return filepath.Join(s.BasePath, sessionID+".json"), nil
}

func (s *HistoryStore) read(sessionID string) (document, error) {
	var doc document
	path, err := s.path(sessionID)
	if err != nil {
		return doc, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return document{Cursor: -1}, nil
		}
		return doc, fmt.Errorf("failed to read history file: %w", err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return doc, nil
}

// write replaces the session file atomically: temp file, fsync, rename.
func (s *HistoryStore) write(sessionID string, doc document) error {
	path, err := s.path(sessionID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure history directory: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tmp, err := os.CreateTemp(s.BasePath, "tmp-"+sessionID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to replace history file: %w", err)
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (s *HistoryStore) Push(ctx context.Context, sessionID string, entry domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(sessionID)
	if err != nil {
		return err
	}
	doc.Entries = append(doc.Entries[:doc.Cursor+1], entry)
	doc.Cursor = len(doc.Entries) - 1
	return s.write(sessionID, doc)
}

func (s *HistoryStore) Replace(ctx context.Context, sessionID string, entry domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(sessionID)
	if err != nil {
		return err
	}
	if doc.Cursor < 0 {
		doc.Entries = []domain.HistoryEntry{entry}
		doc.Cursor = 0
	} else {
		doc.Entries[doc.Cursor] = entry
	}
	return s.write(sessionID, doc)
}

func (s *HistoryStore) Current(ctx context.Context, sessionID string) (domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(sessionID)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	if doc.Cursor < 0 || doc.Cursor >= len(doc.Entries) {
		return domain.HistoryEntry{}, domain.ErrHistoryEmpty
	}
	return doc.Entries[doc.Cursor], nil
}

func (s *HistoryStore) Back(ctx context.Context, sessionID string) (domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(sessionID)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	if doc.Cursor <= 0 {
		return domain.HistoryEntry{}, domain.ErrHistoryEmpty
	}
	doc.Cursor--
	if err := s.write(sessionID, doc); err != nil {
		return domain.HistoryEntry{}, err
	}
	return doc.Entries[doc.Cursor], nil
}

// Delete removes the session file.
func (s *HistoryStore) Delete(ctx context.Context, sessionID string) error {
	path, err := s.path(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete history file: %w", err)
	}
	return nil
}

// List returns the sessions with a history file.
func (s *HistoryStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var sessions []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		sessions = append(sessions, strings.TrimSuffix(name, ".json"))
	}
	return sessions, nil
}
