package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Jembe/jembe-sub000/pkg/adapters/file"
	"github.com/Jembe/jembe-sub000/pkg/domain"
	"github.com/Jembe/jembe-sub000/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryStore_Contract(t *testing.T) {
	ports.RunHistoryStoreContract(t, file.New(t.TempDir()))
}

func TestHistoryStore_Persists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := file.New(dir)
	require.NoError(t, first.Push(ctx, "s1", domain.HistoryEntry{URL: "/a"}))
	require.NoError(t, first.Push(ctx, "s1", domain.HistoryEntry{URL: "/b"}))

	second := file.New(dir)
	cur, err := second.Current(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "/b", cur.URL)

	back, err := second.Back(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "/a", back.URL)

	sessions, err := second.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, sessions)

	leftovers, err := filepath.Glob(filepath.Join(dir, "tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	require.NoError(t, second.Delete(ctx, "s1"))
	_, err = os.Stat(filepath.Join(dir, "s1.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestHistoryStore_InvalidSession(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.Push(ctx, "", domain.HistoryEntry{}))
	assert.Error(t, store.Push(ctx, "../escape", domain.HistoryEntry{}))
}

func TestHistoryStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "nope"))
	sessions, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
