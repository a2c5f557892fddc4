package redis

import (
	"bytes"
	"context"
	"errors"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/codec"
	"github.com/fastygo/tracker/repository"
)

type snapshotRepository struct {
	client *redislib.Client
	key    string
}

// NewSnapshotRepository stores the whole codec document under a single key.
func NewSnapshotRepository(client *redislib.Client, key string) repository.SnapshotRepository {
	if key == "" {
		key = "tracker:snapshot"
	}
	return &snapshotRepository{
		client: client,
		key:    key,
	}
}

func (r *snapshotRepository) Load(ctx context.Context) ([]domain.Entity, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, nil
		}
		return nil, domain.Persistence("read snapshot", err)
	}
	return codec.Decode(bytes.NewReader(raw))
}

func (r *snapshotRepository) Save(ctx context.Context, entities []domain.Entity) error {
	var buf bytes.Buffer
	if err := codec.Encode(&buf, entities); err != nil {
		return domain.Persistence("encode snapshot", err)
	}
	if err := r.client.Set(ctx, r.key, buf.Bytes(), 0).Err(); err != nil {
		return domain.Persistence("write snapshot", err)
	}
	return nil
}

func (r *snapshotRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

var _ repository.Pinger = (*snapshotRepository)(nil)
