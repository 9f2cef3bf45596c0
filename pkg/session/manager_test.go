package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Jembe/jembe-sub000"
	"github.com/Jembe/jembe-sub000/pkg/domain"
	"github.com/Jembe/jembe-sub000/pkg/ports"
	"github.com/Jembe/jembe-sub000/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(opts ...session.Option) *session.Manager {
	return session.NewManager(func(string) (*jembe.Client, error) {
		return jembe.New(), nil
	}, opts...)
}

func TestManager_OpenGetClose(t *testing.T) {
	m := newManager()
	ctx := context.Background()

	_, err := m.Get("s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	c1, err := m.Open("s1")
	require.NoError(t, err)
	c2, err := m.Open("s1")
	require.NoError(t, err)
	assert.Same(t, c1, c2)

	got, err := m.Get("s1")
	require.NoError(t, err)
	assert.Same(t, c1, got)
	assert.Equal(t, []string{"s1"}, m.List())

	require.NoError(t, m.Close(ctx, "s1"))
	assert.Empty(t, m.List())
	assert.ErrorIs(t, m.Close(ctx, "s1"), domain.ErrSessionNotFound)
}

func TestManager_FactoryError(t *testing.T) {
	m := session.NewManager(func(string) (*jembe.Client, error) {
		return nil, errors.New("no backend")
	})
	_, err := m.Open("s1")
	assert.ErrorContains(t, err, "no backend")
}

func TestManager_Locking(t *testing.T) {
	m := newManager()
	ctx := context.Background()

	var active, maxActive atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.WithLock(ctx, "shared", func(context.Context) error {
				n := active.Add(1)
				for {
					cur := maxActive.Load()
					if n <= cur || maxActive.CompareAndSwap(cur, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				active.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxActive.Load())
}

type recordingLocker struct {
	locked, unlocked atomic.Int32
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.locked.Add(1)
	return func(context.Context) error {
		l.unlocked.Add(1)
		return nil
	}, nil
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &recordingLocker{}
	m := newManager(session.WithLocker(locker, time.Second))

	err := m.WithLock(context.Background(), "s1", func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, int32(1), locker.locked.Load())
	assert.Equal(t, int32(1), locker.unlocked.Load())
}
