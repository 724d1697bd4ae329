package cache

import (
	"context"
	"errors"
	"time"
)

// ErrQuotaExceeded is returned by a store that has reached its byte budget.
var ErrQuotaExceeded = errors.New("cache store quota exceeded")

// Store is the byte-level backend of a Cache. Freshness is decided by the
// Cache itself; ttl is only a hint a store may use to reclaim space.
type Store interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// SharedStore is implemented by stores visible to every node (e.g. Valkey).
// Invalidations on a shared store do not need to be fanned out.
type SharedStore interface {
	Shared() bool
}

// Sizer is implemented by stores that can report their footprint.
type Sizer interface {
	Size() int64
}
