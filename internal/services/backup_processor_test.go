package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
	boltRepo "github.com/fastygo/tracker/repository/bolt"
	"github.com/fastygo/tracker/usecase/tracker"
)

type failingTarget struct{}

func (failingTarget) Load(context.Context) ([]domain.Entity, error) { return nil, nil }
func (failingTarget) Save(context.Context, []domain.Entity) error  { return errors.New("disk full") }

type backendHealth map[string]bool

func (h backendHealth) BackendOnline(name string) bool {
	ok, probed := h[name]
	return !probed || ok
}

func seededManager(t *testing.T) *tracker.Manager {
	t.Helper()
	ctx := context.Background()
	m := tracker.New(nil)

	task, err := domain.NewTask("Buy milk", "2 litres", domain.StatusNew)
	require.NoError(t, err)
	_, err = m.AddTask(ctx, task)
	require.NoError(t, err)

	epic, err := domain.NewEpic("Move", "new flat")
	require.NoError(t, err)
	epic, err = m.AddEpic(ctx, epic)
	require.NoError(t, err)

	sub, err := domain.NewSubtask("Pack", "boxes", domain.StatusDone)
	require.NoError(t, err)
	_, err = m.AddSubtask(ctx, sub, epic.ID)
	require.NoError(t, err)
	return m
}

func TestBackupProcessor_RunOnceWritesSnapshot(t *testing.T) {
	store, err := boltRepo.Open(filepath.Join(t.TempDir(), "backup.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	m := seededManager(t)
	bp, err := NewBackupProcessor(m, store, backendHealth{"bolt": true}, nil, BackupConfig{Interval: time.Hour, Target: "bolt"})
	require.NoError(t, err)

	require.NoError(t, bp.RunOnce(context.Background()))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, m.Snapshot(), loaded)

	report := bp.LastReport()
	assert.Equal(t, 3, report.Entities)
	assert.Empty(t, report.Error)
}

func TestBackupProcessor_RunOnceReportsFailure(t *testing.T) {
	bp, err := NewBackupProcessor(seededManager(t), failingTarget{}, nil, nil, BackupConfig{Interval: time.Hour})
	require.NoError(t, err)

	err = bp.RunOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, "disk full", bp.LastReport().Error)
}

func TestBackupProcessor_SkipsWhileTargetOffline(t *testing.T) {
	health := backendHealth{"file": true, "redis": false}
	bp, err := NewBackupProcessor(seededManager(t), failingTarget{}, health, nil, BackupConfig{Interval: time.Hour, Target: "redis"})
	require.NoError(t, err)

	require.NoError(t, bp.RunOnce(context.Background()))
	assert.True(t, bp.LastReport().At.IsZero())
}

func TestBackupProcessor_RunsWhilePrimaryOffline(t *testing.T) {
	store, err := boltRepo.Open(filepath.Join(t.TempDir(), "backup.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	health := backendHealth{"file": false, "bolt": true}
	bp, err := NewBackupProcessor(seededManager(t), store, health, nil, BackupConfig{Interval: time.Hour, Target: "bolt"})
	require.NoError(t, err)

	require.NoError(t, bp.RunOnce(context.Background()))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 3, size)
	assert.Equal(t, 3, bp.LastReport().Entities)
}

func TestBackupProcessor_StartStop(t *testing.T) {
	bp, err := NewBackupProcessor(seededManager(t), failingTarget{}, nil, nil, BackupConfig{Interval: time.Hour})
	require.NoError(t, err)

	bp.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	bp.Stop(ctx)

	var nilProcessor *BackupProcessor
	nilProcessor.Start()
	nilProcessor.Stop(ctx)
	assert.NoError(t, nilProcessor.RunOnce(ctx))
}
