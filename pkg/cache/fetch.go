package cache

import (
	"context"
	"time"
)

// Fetch is the read-through path: a fresh entry under key is returned as is;
// otherwise load is called, and its result is stored before being returned.
// A load error is returned unchanged and nothing is cached.
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(ctx context.Context) (T, error), ttl ...time.Duration) (T, error) {
	var cached T
	if c.GetInto(ctx, key, &cached) {
		return cached, nil
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	c.Set(ctx, key, v, ttl...)
	return v, nil
}
