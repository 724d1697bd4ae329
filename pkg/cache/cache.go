package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// DefaultNamespace prefixes every key a Cache writes to its store.
const DefaultNamespace = "jivit_cache_"

// entry is the stored form of a cached value.
type entry struct {
	Value    json.RawMessage `json:"value"`
	StoredAt int64           `json:"stored_at"` // unix ms
	TTL      int64           `json:"ttl_ms"`
}

// Notifier is told about every invalidation applied to a Cache so other
// nodes can apply it too.
type Notifier interface {
	Notify(ctx context.Context, cacheName string, rules []Rule)
}

// Cache is an expiring read-through cache over a Store.
//
// An entry is a hit while now-storedAt <= ttl. A stale entry is removed the
// first time it is read. Store failures never reach the caller: reads degrade
// to misses and writes are dropped with a warning. A nil *Cache is valid and
// behaves as an always-empty cache.
type Cache struct {
	name       string
	store      Store
	namespace  string
	defaultTTL time.Duration
	now        func() time.Time
	log        *logrus.Entry
	notifier   atomic.Pointer[notifierBox]

	hits      atomic.Int64
	misses    atomic.Int64
	writes    atomic.Int64
	failures  atomic.Int64
	evictions atomic.Int64
}

type notifierBox struct{ n Notifier }

type Option func(*Cache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithNamespace(ns string) Option {
	return func(c *Cache) { c.namespace = ns }
}

func WithName(name string) Option {
	return func(c *Cache) { c.name = name }
}

func New(store Store, defaultTTL time.Duration, opts ...Option) *Cache {
	c := &Cache{
		name:       "default",
		store:      store,
		namespace:  DefaultNamespace,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logrus.WithFields(logrus.Fields{"cache": c.name, "store": store.Name()})
	return c
}

func (c *Cache) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

func (c *Cache) DefaultTTL() time.Duration {
	if c == nil {
		return 0
	}
	return c.defaultTTL
}

// SetNotifier attaches n; every later invalidation is reported to it.
func (c *Cache) SetNotifier(n Notifier) {
	c.notifier.Store(&notifierBox{n: n})
}

func (c *Cache) storeKey(key string) string {
	return c.namespace + key
}

// Get returns the raw JSON value stored under key when it is still fresh.
func (c *Cache) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	if c == nil {
		return nil, false
	}

	sk := c.storeKey(key)
	raw, ok, err := c.store.Get(ctx, sk)
	if err != nil {
		c.failures.Add(1)
		c.log.WithError(err).Warnf("[CACHE] read failed for %s, treating as miss", key)
		c.misses.Add(1)
		return nil, false
	}
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.log.WithError(err).Warnf("[CACHE] dropping unreadable entry %s", key)
		c.drop(ctx, sk)
		c.misses.Add(1)
		return nil, false
	}

	age := c.now().UnixMilli() - e.StoredAt
	if age > e.TTL {
		c.drop(ctx, sk)
		c.evictions.Add(1)
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return e.Value, true
}

// GetInto decodes a fresh entry into dst. dst is left untouched on a miss.
func (c *Cache) GetInto(ctx context.Context, key string, dst any) bool {
	raw, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.WithError(err).Warnf("[CACHE] entry %s does not match the requested type", key)
		c.drop(ctx, c.storeKey(key))
		c.hits.Add(-1)
		c.misses.Add(1)
		return false
	}
	return true
}

// Set stores value under key for ttl (default TTL when omitted), replacing any
// previous entry. Failures are logged and swallowed.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl ...time.Duration) {
	if c == nil {
		return
	}

	d := c.defaultTTL
	if len(ttl) > 0 && ttl[0] > 0 {
		d = ttl[0]
	}

	payload, err := json.Marshal(value)
	if err != nil {
		c.failures.Add(1)
		c.log.WithError(err).Warnf("[CACHE] cannot serialize value for %s", key)
		return
	}
	raw, err := json.Marshal(entry{Value: payload, StoredAt: c.now().UnixMilli(), TTL: d.Milliseconds()})
	if err != nil {
		c.failures.Add(1)
		c.log.WithError(err).Warnf("[CACHE] cannot serialize entry for %s", key)
		return
	}

	if err := c.store.Set(ctx, c.storeKey(key), raw, d); err != nil {
		c.failures.Add(1)
		c.log.WithError(err).Warnf("[CACHE] write failed for %s", key)
		// A rejected write must not leave the previous value readable.
		c.drop(ctx, c.storeKey(key))
		return
	}
	c.writes.Add(1)
}

// Delete removes the entry stored under exactly key.
func (c *Cache) Delete(ctx context.Context, key string) {
	if c == nil {
		return
	}
	c.apply(ctx, []Rule{{Op: OpExact, Value: key}})
}

// Invalidate removes every entry whose key contains one of patterns. With no
// pattern (or an empty one) the whole namespace is cleared. It returns the
// number of entries removed.
func (c *Cache) Invalidate(ctx context.Context, patterns ...string) int {
	if c == nil {
		return 0
	}
	rules := make([]Rule, 0, len(patterns)+1)
	for _, p := range patterns {
		if p == "" {
			rules = []Rule{{Op: OpAll}}
			break
		}
		rules = append(rules, Rule{Op: OpContains, Value: p})
	}
	if len(rules) == 0 {
		rules = append(rules, Rule{Op: OpAll})
	}
	return c.apply(ctx, rules)
}

// InvalidateFamily removes every entry of the given families.
func (c *Cache) InvalidateFamily(ctx context.Context, families ...Family) int {
	if c == nil || len(families) == 0 {
		return 0
	}
	rules := make([]Rule, len(families))
	for i, f := range families {
		rules[i] = Rule{Op: OpPrefix, Value: FamilyPrefix(f)}
	}
	return c.apply(ctx, rules)
}

func (c *Cache) apply(ctx context.Context, rules []Rule) int {
	n := c.invalidateLocal(ctx, rules)
	c.notify(ctx, rules)
	return n
}

// invalidateLocal applies rules without notifying other nodes.
func (c *Cache) invalidateLocal(ctx context.Context, rules []Rule) int {
	keys, err := c.store.Keys(ctx, c.namespace)
	if err != nil {
		c.failures.Add(1)
		c.log.WithError(err).Warn("[CACHE] cannot list entries for invalidation")
		return 0
	}

	var doomed []string
	for _, sk := range keys {
		key := strings.TrimPrefix(sk, c.namespace)
		for _, r := range rules {
			if r.Match(key) {
				doomed = append(doomed, sk)
				break
			}
		}
	}
	if len(doomed) == 0 {
		return 0
	}

	if err := c.store.Delete(ctx, doomed...); err != nil {
		c.failures.Add(1)
		c.log.WithError(err).Warn("[CACHE] invalidation failed")
		return 0
	}
	c.log.Debugf("[CACHE] invalidated %d entries (%v)", len(doomed), rules)
	return len(doomed)
}

func (c *Cache) drop(ctx context.Context, storeKey string) {
	if err := c.store.Delete(ctx, storeKey); err != nil {
		c.failures.Add(1)
		c.log.WithError(err).Warnf("[CACHE] cannot delete %s", storeKey)
	}
}

func (c *Cache) notify(ctx context.Context, rules []Rule) {
	box := c.notifier.Load()
	if box == nil || box.n == nil {
		return
	}
	box.n.Notify(ctx, c.name, rules)
}

// Stats is a point-in-time view of a cache.
type Stats struct {
	Name       string  `json:"name"`
	Store      string  `json:"store"`
	Namespace  string  `json:"namespace"`
	DefaultTTL string  `json:"default_ttl"`
	Entries    int     `json:"entries"`
	Bytes      int64   `json:"bytes,omitempty"`
	HumanSize  string  `json:"human_size,omitempty"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	Writes     int64   `json:"writes"`
	Failures   int64   `json:"failures"`
	Evictions  int64   `json:"evictions"`
	HitRatio   float64 `json:"hit_ratio"`
}

func (c *Cache) Stats(ctx context.Context) Stats {
	if c == nil {
		return Stats{}
	}
	s := Stats{
		Name:       c.name,
		Store:      c.store.Name(),
		Namespace:  c.namespace,
		DefaultTTL: c.defaultTTL.String(),
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Writes:     c.writes.Load(),
		Failures:   c.failures.Load(),
		Evictions:  c.evictions.Load(),
	}
	if keys, err := c.store.Keys(ctx, c.namespace); err == nil {
		s.Entries = len(keys)
	}
	if sizer, ok := c.store.(Sizer); ok {
		s.Bytes = sizer.Size()
		s.HumanSize = humanize.Bytes(uint64(s.Bytes))
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRatio = float64(s.Hits) / float64(total)
	}
	return s
}

// Keys lists the live keys (without namespace) that start with prefix.
// Stale entries that were never read again are included.
func (c *Cache) Keys(ctx context.Context, prefix string) ([]string, error) {
	if c == nil {
		return nil, nil
	}
	keys, err := c.store.Keys(ctx, c.namespace+prefix)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, c.namespace)
	}
	return keys, nil
}
