package bolt_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository/bolt"
)

func openStore(t *testing.T) *bolt.Store {
	t.Helper()
	store, err := bolt.Open(filepath.Join(t.TempDir(), "data", "tracker.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	entities := []domain.Entity{
		domain.Task{Base: domain.Base{ID: 12, Name: "Later task", Description: "d", Status: domain.StatusNew}},
		domain.Task{Base: domain.Base{ID: 1, Name: "Task", Description: "d, with comma", Status: domain.StatusDone}},
		domain.Epic{Base: domain.Base{ID: 2, Name: "Epic", Description: "d", Status: domain.StatusInProgress}, SubtaskIDs: []int{4, 3}},
		domain.Subtask{Base: domain.Base{ID: 4, Name: "B", Description: "d", Status: domain.StatusInProgress}, EpicID: 2},
		domain.Subtask{Base: domain.Base{ID: 3, Name: "A", Description: "d", Status: domain.StatusNew}, EpicID: 2},
	}
	require.NoError(t, store.Save(ctx, entities))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Entity{entities[1], entities[0], entities[2], entities[4], entities[3]}, loaded)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 5, size)
}

func TestStore_SaveReplacesPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	require.NoError(t, store.Save(ctx, []domain.Entity{
		domain.Task{Base: domain.Base{ID: 1, Name: "a", Description: "b", Status: domain.StatusNew}},
		domain.Task{Base: domain.Base{ID: 2, Name: "a", Description: "b", Status: domain.StatusNew}},
	}))
	require.NoError(t, store.Save(ctx, nil))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestStore_FreshBucketLoadsEmpty(t *testing.T) {
	store := openStore(t)

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestStore_Closed(t *testing.T) {
	var store *bolt.Store
	_, err := store.Load(context.Background())
	assert.Error(t, err)
	assert.Error(t, store.Save(context.Background(), nil))
	assert.NoError(t, store.Close())
}
