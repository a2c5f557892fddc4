package repository

import (
	"context"

	"github.com/fastygo/tracker/domain"
)

// SnapshotRepository persists the full entity set of the tracker.
// Save replaces whatever was stored before; Load returns entities in the order
// they were saved. A backend that holds no snapshot yet loads as empty.
type SnapshotRepository interface {
	Load(ctx context.Context) ([]domain.Entity, error)
	Save(ctx context.Context, entities []domain.Entity) error
}

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
