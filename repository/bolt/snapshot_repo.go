package bolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/codec"
	"github.com/fastygo/tracker/repository"
)

var headerKey = []byte("!header")

// Store wraps BoltDB to persist the tracker snapshot, one key per entity.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "entities"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

// Load returns the stored entities ordered tasks, epics, subtasks and by id
// within each kind. A bucket that was never saved loads as empty.
func (s *Store) Load(ctx context.Context) ([]domain.Entity, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entities []domain.Entity
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		header := b.Get(headerKey)
		if header == nil {
			if b.Stats().KeyN > 0 {
				return domain.Persistence("snapshot bucket has records but no header", nil)
			}
			return nil
		}
		if string(header) != codec.Header {
			return domain.Persistence(fmt.Sprintf("unexpected header %q", header), nil)
		}

		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if string(k) == string(headerKey) {
				continue
			}
			entity, err := codec.UnmarshalLine(string(v))
			if err != nil {
				return fmt.Errorf("key %s: %w", k, err)
			}
			entities = append(entities, entity)
		}
		return nil
	})
	return entities, err
}

// Save replaces the bucket contents in a single transaction.
func (s *Store) Save(ctx context.Context, entities []domain.Entity) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(s.bucket); err != nil {
			return domain.Persistence("reset snapshot bucket", err)
		}
		b, err := tx.CreateBucket(s.bucket)
		if err != nil {
			return domain.Persistence("create snapshot bucket", err)
		}
		if err := b.Put(headerKey, []byte(codec.Header)); err != nil {
			return domain.Persistence("write header", err)
		}
		for _, e := range entities {
			line, err := codec.MarshalLine(e)
			if err != nil {
				return domain.Persistence("encode entity", err)
			}
			if err := b.Put(buildKey(e), []byte(line)); err != nil {
				return domain.Persistence("write entity", err)
			}
		}
		return nil
	})
}

// Size returns the number of stored entities.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		count = b.Stats().KeyN
		if b.Get(headerKey) != nil {
			count--
		}
		return nil
	})
	return count, err
}

// Ping verifies that the database can serve a read transaction.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(s.bucket) == nil {
			return fmt.Errorf("bucket %s missing", s.bucket)
		}
		return nil
	})
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// buildKey orders records the way the codec writes them: kind first, then id.
func buildKey(e domain.Entity) []byte {
	return []byte(fmt.Sprintf("%d_%020d", kindRank(e.Kind()), e.Identity()))
}

func kindRank(k domain.Kind) int {
	switch k {
	case domain.KindTask:
		return 0
	case domain.KindEpic:
		return 1
	default:
		return 2
	}
}

var (
	_ repository.SnapshotRepository = (*Store)(nil)
	_ repository.Pinger             = (*Store)(nil)
)
