package ports

import (
	"context"
	"testing"
	"time"

	"github.com/Jembe/jembe-sub000/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(url string, names ...string) domain.HistoryEntry {
	e := domain.HistoryEntry{URL: url}
	for _, n := range names {
		e.Components = append(e.Components, domain.ComponentSnapshot{
			ExecName: n,
			State:    map[string]any{"page": url},
		})
	}
	return e
}

// RunHistoryStoreContract verifies that a HistoryStore implementation follows
// the push/replace/back cursor rules.
func RunHistoryStoreContract(t *testing.T, store HistoryStore) {
	ctx := context.Background()
	sessionID := "contract-history-" + time.Now().Format("20060102150405")

	t.Run("Empty", func(t *testing.T) {
		_, err := store.Current(ctx, sessionID+"-empty")
		assert.ErrorIs(t, err, domain.ErrHistoryEmpty)

		_, err = store.Back(ctx, sessionID+"-empty")
		assert.ErrorIs(t, err, domain.ErrHistoryEmpty)
	})

	t.Run("Replace on empty pushes", func(t *testing.T) {
		id := sessionID + "-replace"
		defer func() { _ = store.Delete(ctx, id) }()

		require.NoError(t, store.Replace(ctx, id, entry("/a", "/page")))
		cur, err := store.Current(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "/a", cur.URL)
		require.Len(t, cur.Components, 1)
		assert.Equal(t, "/page", cur.Components[0].ExecName)
		assert.Equal(t, "/a", cur.Components[0].State["page"])
	})

	t.Run("Push and Back", func(t *testing.T) {
		id := sessionID + "-push"
		defer func() { _ = store.Delete(ctx, id) }()

		require.NoError(t, store.Push(ctx, id, entry("/a")))
		require.NoError(t, store.Push(ctx, id, entry("/b")))
		require.NoError(t, store.Replace(ctx, id, entry("/b2")))

		cur, err := store.Current(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "/b2", cur.URL)

		prev, err := store.Back(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "/a", prev.URL)

		_, err = store.Back(ctx, id)
		assert.ErrorIs(t, err, domain.ErrHistoryEmpty)

		cur, err = store.Current(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "/a", cur.URL, "failed Back must not move the cursor")
	})

	t.Run("Push after Back truncates", func(t *testing.T) {
		id := sessionID + "-truncate"
		defer func() { _ = store.Delete(ctx, id) }()

		require.NoError(t, store.Push(ctx, id, entry("/a")))
		require.NoError(t, store.Push(ctx, id, entry("/b")))
		_, err := store.Back(ctx, id)
		require.NoError(t, err)
		require.NoError(t, store.Push(ctx, id, entry("/c")))

		prev, err := store.Back(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "/a", prev.URL)
	})

	t.Run("Delete", func(t *testing.T) {
		id := sessionID + "-delete"
		require.NoError(t, store.Push(ctx, id, entry("/a")))
		require.NoError(t, store.Delete(ctx, id))

		_, err := store.Current(ctx, id)
		assert.ErrorIs(t, err, domain.ErrHistoryEmpty)
	})
}
