package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Jembe/jembe-sub000/pkg/domain"
	"github.com/Jembe/jembe-sub000/pkg/ports"
	"github.com/mohae/deepcopy"
)

// Mask replaces the value of every masked state key.
const Mask = "***"

type piiMiddleware struct {
	next     ports.HistoryStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks state values whose key
// matches one of patterns, at any depth, before entries are stored. Restoring
// such an entry sends the mask back to the producer.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.HistoryStore) ports.HistoryStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) mask(entry domain.HistoryEntry) domain.HistoryEntry {
	masked := deepcopy.Copy(entry).(domain.HistoryEntry)
	for _, c := range masked.Components {
		maskMap(c.State, m.patterns)
	}
	return masked
}

func (m *piiMiddleware) Push(ctx context.Context, sessionID string, entry domain.HistoryEntry) error {
	return m.next.Push(ctx, sessionID, m.mask(entry))
}

func (m *piiMiddleware) Replace(ctx context.Context, sessionID string, entry domain.HistoryEntry) error {
	return m.next.Replace(ctx, sessionID, m.mask(entry))
}

func (m *piiMiddleware) Current(ctx context.Context, sessionID string) (domain.HistoryEntry, error) {
	return m.next.Current(ctx, sessionID)
}

func (m *piiMiddleware) Back(ctx context.Context, sessionID string) (domain.HistoryEntry, error) {
	return m.next.Back(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		if matchAny(k, patterns) {
			m[k] = Mask
			continue
		}
		switch val := v.(type) {
		case map[string]any:
			maskMap(val, patterns)
		case []any:
			for _, item := range val {
				if sub, ok := item.(map[string]any); ok {
					maskMap(sub, patterns)
				}
			}
		}
	}
}

func matchAny(s string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
