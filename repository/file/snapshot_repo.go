package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/codec"
	"github.com/fastygo/tracker/repository"
)

type snapshotRepository struct {
	path   string
	atomic bool
}

// Option tweaks the file repository.
type Option func(*snapshotRepository)

// WithTruncateWrites rewrites the file in place instead of writing a temporary
// file and renaming it over the target.
func WithTruncateWrites() Option {
	return func(r *snapshotRepository) {
		r.atomic = false
	}
}

// NewSnapshotRepository stores the snapshot as a codec document at path.
func NewSnapshotRepository(path string, opts ...Option) repository.SnapshotRepository {
	r := &snapshotRepository{path: path, atomic: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *snapshotRepository) Load(ctx context.Context) ([]domain.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, domain.Persistence("open snapshot file", err)
	}
	defer f.Close()

	entities, err := codec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.path, err)
	}
	return entities, nil
}

func (r *snapshotRepository) Save(ctx context.Context, entities []domain.Entity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := codec.Encode(&buf, entities); err != nil {
		return domain.Persistence("encode snapshot", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return domain.Persistence("create snapshot directory", err)
	}

	if r.atomic {
		if err := atomic.WriteFile(r.path, &buf); err != nil {
			return domain.Persistence("write snapshot file", err)
		}
		return nil
	}
	if err := os.WriteFile(r.path, buf.Bytes(), 0o644); err != nil {
		return domain.Persistence("write snapshot file", err)
	}
	return nil
}

// Ping checks that the snapshot directory is reachable.
func (r *snapshotRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := os.Stat(filepath.Dir(r.path))
	return err
}

var _ repository.Pinger = (*snapshotRepository)(nil)
