package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/codec"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/repository/file"
)

func entities() []domain.Entity {
	return []domain.Entity{
		domain.Task{Base: domain.Base{ID: 1, Name: "Task", Description: "desc", Status: domain.StatusDone}},
		domain.Epic{Base: domain.Base{ID: 2, Name: "Epic", Description: "desc", Status: domain.StatusNew}, SubtaskIDs: []int{3}},
		domain.Subtask{Base: domain.Base{ID: 3, Name: "Sub", Description: "desc", Status: domain.StatusNew}, EpicID: 2},
	}
}

func TestSnapshotRepository(t *testing.T) {
	ctx := context.Background()

	variants := map[string][]file.Option{
		"atomic":   nil,
		"truncate": {file.WithTruncateWrites()},
	}
	for name, opts := range variants {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "tasks.csv")
			repo := file.NewSnapshotRepository(path, opts...)

			require.NoError(t, repo.Save(ctx, entities()))
			loaded, err := repo.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, entities(), loaded)

			require.NoError(t, repo.Save(ctx, entities()[:1]))
			loaded, err = repo.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, entities()[:1], loaded)
		})
	}
}

func TestSnapshotRepository_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file loads empty", func(t *testing.T) {
		repo := file.NewSnapshotRepository(filepath.Join(t.TempDir(), "absent.csv"))
		loaded, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})

	t.Run("wrong header fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasks.csv")
		require.NoError(t, os.WriteFile(path, []byte("wrong header"), 0o644))

		_, err := file.NewSnapshotRepository(path).Load(ctx)
		require.Error(t, err)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodePersistence))
	})

	t.Run("empty save writes only the header", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasks.csv")
		repo := file.NewSnapshotRepository(path)
		require.NoError(t, repo.Save(ctx, nil))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, codec.Header+"\n", string(raw))
	})
}

func TestSnapshotRepository_Ping(t *testing.T) {
	repo := file.NewSnapshotRepository(filepath.Join(t.TempDir(), "tasks.csv"))
	pinger, ok := repo.(repository.Pinger)
	require.True(t, ok)
	assert.NoError(t, pinger.Ping(context.Background()))
}
