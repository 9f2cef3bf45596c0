package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Jembe/jembe-sub000/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// HistoryStore implements ports.HistoryStore on Redis. Each session owns a list
// of JSON entries and a cursor key; an index ZSET tracks live sessions.
type HistoryStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*HistoryStore)

// WithTTL sets the expiration of a session's history, refreshed on every write.
func WithTTL(ttl time.Duration) Option {
	return func(s *HistoryStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *HistoryStore) {
		s.prefix = prefix
	}
}

// New connects to address and creates a history store.
func New(address, password string, db int, opts ...Option) *HistoryStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a history store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *HistoryStore {
	store := &HistoryStore{
		client: client,
		prefix: "jembe:history:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *HistoryStore) entriesKey(sessionID string) string {
	return s.prefix + sessionID + ":entries"
}

func (s *HistoryStore) cursorKey(sessionID string) string {
	return s.prefix + sessionID + ":cursor"
}

func (s *HistoryStore) indexKey() string {
	return s.prefix + "index"
}

// cursor returns -1 when the session has no history.
func (s *HistoryStore) cursor(ctx context.Context, sessionID string) (int64, error) {
	c, err := s.client.Get(ctx, s.cursorKey(sessionID)).Int64()
	if errors.Is(err, backend.Nil) {
		return -1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read history cursor: %w", err)
	}
	return c, nil
}

// touch refreshes expirations and the index entry inside pipe.
func (s *HistoryStore) touch(ctx context.Context, pipe backend.Pipeliner, sessionID string) {
	score := float64(4102444800) // 2100-01-01
	if s.ttl > 0 {
		pipe.Expire(ctx, s.entriesKey(sessionID), s.ttl)
		pipe.Expire(ctx, s.cursorKey(sessionID), s.ttl)
		score = float64(time.Now().Add(s.ttl).Unix())
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: sessionID})
}

// Push appends entry after the cursor.
func (s *HistoryStore) Push(ctx context.Context, sessionID string, entry domain.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}
	cur, err := s.cursor(ctx, sessionID)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		if cur < 0 {
			pipe.Del(ctx, s.entriesKey(sessionID))
		} else {
			pipe.LTrim(ctx, s.entriesKey(sessionID), 0, cur)
		}
		pipe.RPush(ctx, s.entriesKey(sessionID), data)
		pipe.Set(ctx, s.cursorKey(sessionID), cur+1, s.ttl)
		s.touch(ctx, pipe, sessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to push history entry: %w", err)
	}
	return nil
}

// Replace overwrites the entry under the cursor.
func (s *HistoryStore) Replace(ctx context.Context, sessionID string, entry domain.HistoryEntry) error {
	cur, err := s.cursor(ctx, sessionID)
	if err != nil {
		return err
	}
	if cur < 0 {
		return s.Push(ctx, sessionID, entry)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.LSet(ctx, s.entriesKey(sessionID), cur, data)
		s.touch(ctx, pipe, sessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace history entry: %w", err)
	}
	return nil
}

func (s *HistoryStore) at(ctx context.Context, sessionID string, index int64) (domain.HistoryEntry, error) {
	var entry domain.HistoryEntry
	val, err := s.client.LIndex(ctx, s.entriesKey(sessionID), index).Result()
	if errors.Is(err, backend.Nil) {
		return entry, domain.ErrHistoryEmpty
	}
	if err != nil {
		return entry, fmt.Errorf("failed to read history entry: %w", err)
	}
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return entry, fmt.Errorf("failed to unmarshal history entry: %w", err)
	}
	return entry, nil
}

// Current returns the entry under the cursor.
func (s *HistoryStore) Current(ctx context.Context, sessionID string) (domain.HistoryEntry, error) {
	cur, err := s.cursor(ctx, sessionID)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	if cur < 0 {
		return domain.HistoryEntry{}, domain.ErrHistoryEmpty
	}
	return s.at(ctx, sessionID, cur)
}

// Back moves the cursor to the previous entry.
func (s *HistoryStore) Back(ctx context.Context, sessionID string) (domain.HistoryEntry, error) {
	cur, err := s.cursor(ctx, sessionID)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	if cur <= 0 {
		return domain.HistoryEntry{}, domain.ErrHistoryEmpty
	}
	entry, err := s.at(ctx, sessionID, cur-1)
	if err != nil {
		return entry, err
	}
	if err := s.client.Set(ctx, s.cursorKey(sessionID), cur-1, s.ttl).Err(); err != nil {
		return entry, fmt.Errorf("failed to move history cursor: %w", err)
	}
	return entry, nil
}

// Delete removes the session's history.
func (s *HistoryStore) Delete(ctx context.Context, sessionID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.entriesKey(sessionID), s.cursorKey(sessionID))
	pipe.ZRem(ctx, s.indexKey(), sessionID)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns the sessions with live history, pruning expired index entries.
func (s *HistoryStore) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}
	sessions, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Close closes the redis client.
func (s *HistoryStore) Close() error {
	return s.client.Close()
}
