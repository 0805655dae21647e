package cache

import (
	"context"
	"time"
)

// Store persists cache entries. Implementations do not check expiry on
// reads; Service does.
type Store interface {
	Get(ctx context.Context, userID, key string) (Entry, error)
	Set(ctx context.Context, e Entry) error
	Delete(ctx context.Context, userID, key string) (bool, error)
	DeletePrefix(ctx context.Context, userID, prefix string) (int64, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
