package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/tracker/internal/config"
	"github.com/fastygo/tracker/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/tracker/internal/infrastructure/redis"
	"github.com/fastygo/tracker/internal/services/lifecycle"
	"github.com/fastygo/tracker/repository"
	boltRepo "github.com/fastygo/tracker/repository/bolt"
	fileRepo "github.com/fastygo/tracker/repository/file"
	redisRepo "github.com/fastygo/tracker/repository/redis"
)

// openBackend builds the snapshot repository named by backend and registers
// its shutdown hook. The memory backend has no repository.
func openBackend(
	ctx context.Context,
	backend string,
	cfg *config.Config,
	lc *lifecycle.Manager,
	logger *zap.Logger,
) (repository.SnapshotRepository, error) {
	switch backend {
	case config.BackendMemory:
		return nil, nil

	case config.BackendFile:
		var opts []fileRepo.Option
		if !cfg.Storage.AtomicWrites {
			opts = append(opts, fileRepo.WithTruncateWrites())
		}
		logger.Info("using file snapshot", zap.String("path", cfg.Storage.FilePath))
		return fileRepo.NewSnapshotRepository(cfg.Storage.FilePath, opts...), nil

	case config.BackendBolt:
		store, err := boltRepo.Open(cfg.Bolt.Path, cfg.Bolt.Bucket)
		if err != nil {
			return nil, fmt.Errorf("open bolt %s: %w", cfg.Bolt.Path, err)
		}
		lc.RegisterCloser("bolt", store)
		logger.Info("using bolt snapshot", zap.String("path", cfg.Bolt.Path))
		return store, nil

	case config.BackendRedis:
		client, err := redisInfra.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		lc.RegisterCloser("redis", client)
		logger.Info("using redis snapshot", zap.String("key", cfg.Redis.SnapshotKey))
		return redisRepo.NewSnapshotRepository(client, cfg.Redis.SnapshotKey), nil

	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func probeFor(name string, repo repository.SnapshotRepository) []monitor.Probe {
	if p, ok := repo.(repository.Pinger); ok {
		return []monitor.Probe{{Name: name, Pinger: p}}
	}
	return nil
}
