package memory_test

import (
	"context"
	"testing"

	"github.com/Jembe/jembe-sub000/pkg/adapters/memory"
	"github.com/Jembe/jembe-sub000/pkg/domain"
	"github.com/Jembe/jembe-sub000/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryStore_Contract(t *testing.T) {
	store := memory.NewHistoryStore()
	ports.RunHistoryStoreContract(t, store)
}

func TestHistoryStore_Isolation(t *testing.T) {
	store := memory.NewHistoryStore()
	ctx := context.Background()

	state := map[string]any{"page": 1}
	require.NoError(t, store.Push(ctx, "s1", domain.HistoryEntry{
		URL:        "/list",
		Components: []domain.ComponentSnapshot{{ExecName: "/page", State: state}},
	}))
	state["page"] = 2

	cur, err := store.Current(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, cur.Components[0].State["page"])

	cur.Components[0].State["page"] = 3
	again, err := store.Current(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Components[0].State["page"])

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, sessions)
}
