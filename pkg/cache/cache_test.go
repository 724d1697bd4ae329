package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// flakyStore wraps a MemoryStore and fails the operations it is told to.
type flakyStore struct {
	*MemoryStore
	failGet bool
	failSet bool
}

func (s *flakyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.failGet {
		return nil, false, errors.New("storage unavailable")
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *flakyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.failSet {
		return ErrQuotaExceeded
	}
	return s.MemoryStore.Set(ctx, key, value, ttl)
}

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *MemoryStore, *fakeClock) {
	t.Helper()
	store := NewMemoryStore(0)
	clock := newFakeClock()
	return New(store, ttl, WithClock(clock.Now), WithName("test")), store, clock
}

func TestCache_FreshnessBound(t *testing.T) {
	ctx := context.Background()
	c, store, clock := newTestCache(t, time.Second)

	c.Set(ctx, "services_false", []string{"cloud"})

	clock.Advance(1500 * time.Millisecond)
	_, ok := c.Get(ctx, "services_false")
	assert.False(t, ok, "entry older than its ttl must be absent")

	keys, err := store.Keys(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys, "stale entry must be removed on read")
	assert.Equal(t, int64(1), c.Stats(ctx).Evictions)
}

func TestCache_HitAtTTLBoundary(t *testing.T) {
	ctx := context.Background()
	c, _, clock := newTestCache(t, time.Second)

	c.Set(ctx, "k", 1)
	clock.Advance(time.Second)

	var v int
	assert.True(t, c.GetInto(ctx, "k", &v))
	assert.Equal(t, 1, v)
}

func TestCache_PerEntryTTLOverride(t *testing.T) {
	ctx := context.Background()
	c, _, clock := newTestCache(t, 10*time.Minute)

	c.Set(ctx, "short", "x", 200*time.Millisecond)
	c.Set(ctx, "long", "y")
	clock.Advance(time.Second)

	_, ok := c.Get(ctx, "short")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "long")
	assert.True(t, ok)
}

func TestCache_HitReturnsLastWrittenValue(t *testing.T) {
	ctx := context.Background()
	c, _, clock := newTestCache(t, time.Minute)

	type job struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	c.Set(ctx, "job_42", job{ID: "42", Title: "Go Engineer"})
	clock.Advance(30 * time.Second)

	var got job
	require.True(t, c.GetInto(ctx, "job_42", &got))
	assert.Equal(t, job{ID: "42", Title: "Go Engineer"}, got)
}

func TestCache_SetReplaces(t *testing.T) {
	ctx := context.Background()
	c, store, _ := newTestCache(t, time.Minute)

	c.Set(ctx, "site_settings", map[string]string{"site_name": "A"})
	c.Set(ctx, "site_settings", map[string]string{"site_name": "B"})

	var got map[string]string
	require.True(t, c.GetInto(ctx, "site_settings", &got))
	assert.Equal(t, "B", got["site_name"])

	keys, _ := store.Keys(ctx, "")
	assert.Len(t, keys, 1)
}

func TestCache_EmptyKeyIsNormal(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache(t, time.Minute)

	c.Set(ctx, "", "root")
	var got string
	assert.True(t, c.GetInto(ctx, "", &got))
	assert.Equal(t, "root", got)
}

func TestCache_PatternInvalidation(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache(t, time.Minute)

	c.Set(ctx, "jobs_true", 1)
	c.Set(ctx, "job_42", 2)
	c.Set(ctx, "services_true", 3)

	assert.Equal(t, 2, c.Invalidate(ctx, "job"))

	_, ok := c.Get(ctx, "jobs_true")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "job_42")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "services_true")
	assert.True(t, ok)
}

func TestCache_PatternInvalidation_Narrow(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache(t, time.Minute)

	c.Set(ctx, "jobs_true", 1)
	c.Set(ctx, "job_42", 2)

	assert.Equal(t, 1, c.Invalidate(ctx, "jobs"))
	_, ok := c.Get(ctx, "job_42")
	assert.True(t, ok)
}

func TestCache_DeleteExact(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache(t, time.Minute)

	c.Set(ctx, "job", 1)
	c.Set(ctx, "job_42", 2)

	c.Delete(ctx, "job")
	_, ok := c.Get(ctx, "job")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "job_42")
	assert.True(t, ok)
}

func TestCache_ClearAll(t *testing.T) {
	ctx := context.Background()
	c, store, _ := newTestCache(t, time.Minute)

	for _, k := range []string{"a", "b", "c"} {
		c.Set(ctx, k, k)
	}
	// Foreign keys outside the namespace survive a clear.
	require.NoError(t, store.Set(ctx, "other_app_key", []byte("x"), 0))

	assert.Equal(t, 3, c.Invalidate(ctx))
	for _, k := range []string{"a", "b", "c"} {
		_, ok := c.Get(ctx, k)
		assert.False(t, ok)
	}
	_, ok, _ := store.Get(ctx, "other_app_key")
	assert.True(t, ok)
}

func TestCache_InvalidateFamily(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache(t, time.Minute)

	c.Set(ctx, NewKey(FamilyServices, KindList, true).String(), 1)
	c.Set(ctx, NewKey(FamilyServices, KindDetail, "7").String(), 2)
	c.Set(ctx, NewKey(FamilyJobs, KindList, false).String(), 3)

	assert.Equal(t, 2, c.InvalidateFamily(ctx, FamilyServices))
	_, ok := c.Get(ctx, NewKey(FamilyJobs, KindList, false).String())
	assert.True(t, ok)
}

func TestCache_WriteThenReadConsistency(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache(t, time.Minute)

	backend := map[string]string{"1": "Draft title"}
	loads := 0
	load := func(context.Context) (string, error) {
		loads++
		return backend["1"], nil
	}
	key := NewKey(FamilyServices, KindDetail, "1").String()

	v, err := Fetch(ctx, c, key, load)
	require.NoError(t, err)
	assert.Equal(t, "Draft title", v)

	v, _ = Fetch(ctx, c, key, load)
	assert.Equal(t, "Draft title", v)
	assert.Equal(t, 1, loads)

	// Mutation succeeds, then the family is invalidated.
	backend["1"] = "Published title"
	c.InvalidateFamily(ctx, FamilyServices)

	v, err = Fetch(ctx, c, key, load)
	require.NoError(t, err)
	assert.Equal(t, "Published title", v)
	assert.Equal(t, 2, loads)
}

func TestCache_StorageFailureOnSet(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{MemoryStore: NewMemoryStore(0), failSet: true}
	c := New(store, time.Minute)

	v, err := Fetch(ctx, c, "blogs_false", func(context.Context) ([]string, error) {
		return []string{"post"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"post"}, v)
	assert.Equal(t, int64(1), c.Stats(ctx).Failures)

	_, ok := c.Get(ctx, "blogs_false")
	assert.False(t, ok)
}

func TestCache_StorageFailureOnGetIsMiss(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{MemoryStore: NewMemoryStore(0)}
	c := New(store, time.Minute)

	c.Set(ctx, "k", "v")
	store.failGet = true

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestCache_QuotaExceededIsSwallowed(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(64), time.Minute)

	assert.NotPanics(t, func() {
		c.Set(ctx, "big", string(make([]byte, 1024)))
	})
	_, ok := c.Get(ctx, "big")
	assert.False(t, ok)
}

func TestCache_RejectedWriteDropsPreviousValue(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(512), time.Minute)

	c.Set(ctx, "k", "v1")
	_, ok := c.Get(ctx, "k")
	require.True(t, ok)

	c.Set(ctx, "k", string(make([]byte, 1024)))
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats(ctx).Failures)
}

func TestCache_UnserializableValue(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache(t, time.Minute)

	c.Set(ctx, "ch", make(chan int))
	_, ok := c.Get(ctx, "ch")
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats(ctx).Failures)
}

func TestCache_CorruptEntryIsDropped(t *testing.T) {
	ctx := context.Background()
	c, store, _ := newTestCache(t, time.Minute)

	require.NoError(t, store.Set(ctx, DefaultNamespace+"broken", []byte("{not json"), 0))
	_, ok := c.Get(ctx, "broken")
	assert.False(t, ok)

	_, ok, _ = store.Get(ctx, DefaultNamespace+"broken")
	assert.False(t, ok)
}

func TestCache_TypeMismatchIsMiss(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache(t, time.Minute)

	c.Set(ctx, "k", "text")
	var n int
	assert.False(t, c.GetInto(ctx, "k", &n))
}

func TestCache_NilIsEmpty(t *testing.T) {
	ctx := context.Background()
	var c *Cache

	c.Set(ctx, "k", 1)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Zero(t, c.Invalidate(ctx))

	v, err := Fetch(ctx, c, "k", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestFetch_LoadErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache(t, time.Minute)
	boom := errors.New("backend down")

	_, err := Fetch(ctx, c, "k", func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestCache_Stats(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache(t, time.Minute)

	c.Set(ctx, "a", 1)
	c.Get(ctx, "a")
	c.Get(ctx, "missing")

	s := c.Stats(ctx)
	assert.Equal(t, "test", s.Name)
	assert.Equal(t, "memory", s.Store)
	assert.Equal(t, 1, s.Entries)
	assert.Equal(t, int64(1), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.InDelta(t, 0.5, s.HitRatio, 0.001)
	assert.NotEmpty(t, s.HumanSize)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache(t, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Set(ctx, "shared", i)
			c.Get(ctx, "shared")
			if i%5 == 0 {
				c.Invalidate(ctx, "sha")
			}
		}(i)
	}
	wg.Wait()
}
