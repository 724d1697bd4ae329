package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jivitsolutions/jivit-site/infrastructure/valkey"
	valkeylib "github.com/valkey-io/valkey-go"
)

// ValkeyStore persists entries in Valkey so every node shares one cache and
// entries survive restarts.
type ValkeyStore struct {
	client *valkey.Client
	prefix string
}

func NewValkeyStore(client *valkey.Client) *ValkeyStore {
	return &ValkeyStore{
		client: client,
		prefix: client.Key("cache") + ":",
	}
}

func (s *ValkeyStore) inner() valkeylib.Client {
	return s.client.Inner()
}

func (s *ValkeyStore) Name() string {
	return "valkey"
}

func (s *ValkeyStore) Shared() bool {
	return true
}

func (s *ValkeyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	cmd := s.inner().B().Get().Key(s.prefix + key).Build()
	data, err := s.inner().Do(ctx, cmd).AsBytes()
	if err != nil {
		if valkey.IsNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cache entry: %w", err)
	}
	return data, true, nil
}

func (s *ValkeyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	builder := s.inner().B().Set().Key(s.prefix + key).Value(valkeylib.BinaryString(value))
	var cmd valkeylib.Completed
	if ttl > 0 {
		cmd = builder.Px(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	if err := s.inner().Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

func (s *ValkeyStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	if err := s.inner().Do(ctx, s.inner().B().Del().Key(full...).Build()).Error(); err != nil {
		return fmt.Errorf("failed to delete cache entries: %w", err)
	}
	return nil
}

func (s *ValkeyStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		cmd := s.inner().B().Scan().Cursor(cursor).Match(s.prefix + prefix + "*").Count(100).Build()
		result, err := s.inner().Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("failed to scan cache entries: %w", err)
		}
		for _, k := range result.Elements {
			keys = append(keys, strings.TrimPrefix(k, s.prefix))
		}
		cursor = result.Cursor
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}
