package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jivitsolutions/jivit-site/infrastructure/valkey"
	"github.com/sirupsen/logrus"
)

// Event describes one invalidation, local or received from another node.
type Event struct {
	Origin string `json:"origin"`
	Cache  string `json:"cache"`
	Rules  []Rule `json:"rules"`
}

// Bus fans invalidations of node-local caches out to every other node over
// Valkey pub/sub. Caches on a shared store are never attached.
type Bus struct {
	client  *valkey.Client
	channel string
	origin  string

	mu        sync.RWMutex
	caches    map[string]*Cache
	listeners []func(Event)
}

// NewBus creates a bus; client may be nil, in which case events stay local.
func NewBus(client *valkey.Client, channel, origin string) *Bus {
	return &Bus{
		client:  client,
		channel: channel,
		origin:  origin,
		caches:  make(map[string]*Cache),
	}
}

// Attach registers every cache of t that is not backed by a shared store.
func (b *Bus) Attach(t *Tiers) {
	for _, c := range t.All() {
		if shared, ok := c.store.(SharedStore); ok && shared.Shared() {
			c.SetNotifier(b)
			continue
		}
		b.mu.Lock()
		b.caches[c.Name()] = c
		b.mu.Unlock()
		c.SetNotifier(b)
	}
}

// Listen registers fn to be called for every event, local or remote.
func (b *Bus) Listen(fn func(Event)) {
	b.mu.Lock()
	b.listeners = append(b.listeners, fn)
	b.mu.Unlock()
}

func (b *Bus) Notify(ctx context.Context, cacheName string, rules []Rule) {
	ev := Event{Origin: b.origin, Cache: cacheName, Rules: rules}
	b.emit(ev)

	b.mu.RLock()
	_, local := b.caches[cacheName]
	b.mu.RUnlock()
	if b.client == nil || !local {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := b.client.Publish(pubCtx, b.channel, data); err != nil {
		logrus.WithError(err).Warn("[CACHE_BUS] failed to publish invalidation")
	}
}

// Run subscribes to remote invalidations until ctx is done.
func (b *Bus) Run(ctx context.Context) {
	if b.client == nil {
		return
	}
	logrus.Infof("[CACHE_BUS] subscribed to %s as %s", b.channel, b.origin)
	valkey.KeepSubscribed(ctx, time.Second, func(ctx context.Context) error {
		return b.client.Subscribe(ctx, b.channel, func(payload []byte) {
			b.handle(ctx, payload)
		})
	}, func(err error) {
		logrus.WithError(err).Warn("[CACHE_BUS] subscription dropped, retrying")
	})
}

func (b *Bus) handle(ctx context.Context, payload []byte) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		logrus.WithError(err).Warn("[CACHE_BUS] malformed event")
		return
	}
	if ev.Origin == b.origin {
		return
	}

	b.mu.RLock()
	c := b.caches[ev.Cache]
	b.mu.RUnlock()
	if c != nil {
		c.invalidateLocal(ctx, ev.Rules)
	}
	b.emit(ev)
}

func (b *Bus) emit(ev Event) {
	b.mu.RLock()
	listeners := append([]func(Event){}, b.listeners...)
	b.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}
