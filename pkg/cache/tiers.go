package cache

import (
	"context"
	"time"
)

const (
	TierReference = "reference"
	TierVolatile  = "volatile"
)

type TierOptions struct {
	Namespace    string
	ReferenceTTL time.Duration
	VolatileTTL  time.Duration
	MemoryQuota  int64
}

// Tiers holds the two caches the application reads through.
// Reference caches catalog and settings reads (persistent store when one is
// configured). Volatile is always process-local and holds short lived UI
// snapshots.
type Tiers struct {
	Reference *Cache
	Volatile  *Cache
}

// NewTiers builds both tiers. A nil persistent store keeps the reference tier
// in memory as well.
func NewTiers(opts TierOptions, persistent Store) *Tiers {
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}
	if opts.ReferenceTTL <= 0 {
		opts.ReferenceTTL = 10 * time.Minute
	}
	if opts.VolatileTTL <= 0 {
		opts.VolatileTTL = 5 * time.Minute
	}
	if persistent == nil {
		persistent = NewMemoryStore(opts.MemoryQuota)
	}

	return &Tiers{
		Reference: New(persistent, opts.ReferenceTTL, WithName(TierReference), WithNamespace(opts.Namespace)),
		Volatile:  New(NewMemoryStore(opts.MemoryQuota), opts.VolatileTTL, WithName(TierVolatile), WithNamespace(opts.Namespace)),
	}
}

// Disabled returns tiers that never hold anything.
func Disabled() *Tiers {
	return &Tiers{}
}

func (t *Tiers) All() []*Cache {
	var out []*Cache
	for _, c := range []*Cache{t.Reference, t.Volatile} {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

func (t *Tiers) ByName(name string) *Cache {
	for _, c := range t.All() {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// Invalidate applies Cache.Invalidate on every tier.
func (t *Tiers) Invalidate(ctx context.Context, patterns ...string) int {
	n := 0
	for _, c := range t.All() {
		n += c.Invalidate(ctx, patterns...)
	}
	return n
}

// InvalidateFamily applies Cache.InvalidateFamily on every tier.
func (t *Tiers) InvalidateFamily(ctx context.Context, families ...Family) int {
	n := 0
	for _, c := range t.All() {
		n += c.InvalidateFamily(ctx, families...)
	}
	return n
}

func (t *Tiers) Stats(ctx context.Context) []Stats {
	var out []Stats
	for _, c := range t.All() {
		out = append(out, c.Stats(ctx))
	}
	return out
}
