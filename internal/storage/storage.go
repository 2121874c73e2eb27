package storage

import (
	"context"

	"github.com/stockpeek/edge-gateway/internal/models"
)

// CacheRepository is the edge cache: atomic per-key put/get, no
// transactional guarantees beyond that. Concurrent writes to the same
// key resolve last-write-wins. Get returns (nil, nil) on a miss.
type CacheRepository interface {
	Get(ctx context.Context, key string) (*models.CacheEntry, error)
	Set(ctx context.Context, key string, entry models.CacheEntry) error
}

// AttemptRepository stores per-caller login attempt records. Eventual
// consistency under concurrent read-modify-write is acceptable; the
// store is non-durable. Get returns (nil, nil) when no record exists.
type AttemptRepository interface {
	Get(ctx context.Context, identity string) (*models.LoginAttempt, error)
	Put(ctx context.Context, identity string, rec models.LoginAttempt) error
	Delete(ctx context.Context, identity string) error
}
