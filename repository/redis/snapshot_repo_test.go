package redis_test

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	redisRepo "github.com/fastygo/tracker/repository/redis"
)

// unreachableClient points at a port nothing listens on.
func unreachableClient(t *testing.T) *redislib.Client {
	t.Helper()
	client := redislib.NewClient(&redislib.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSnapshotRepository_BackendDown(t *testing.T) {
	ctx := context.Background()
	repo := redisRepo.NewSnapshotRepository(unreachableClient(t), "")

	err := repo.Save(ctx, []domain.Entity{
		domain.Task{Base: domain.Base{ID: 1, Name: "a", Description: "b", Status: domain.StatusNew}},
	})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodePersistence))

	_, err = repo.Load(ctx)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodePersistence))

	pinger, ok := repo.(repository.Pinger)
	require.True(t, ok)
	assert.Error(t, pinger.Ping(ctx))
}
