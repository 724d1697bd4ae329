package valkey

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	c := &Client{keyPrefix: "jivit:"}
	assert.Equal(t, "jivit:cache:services:list", c.Key("cache", "services:list"))
	assert.Equal(t, "jivit", c.Key())
}

func TestPublishSubscribe(t *testing.T) {
	vk, err := NewClient(Config{Address: "localhost:6379", KeyPrefix: "jivit_test", ConnectTimeout: 300 * time.Millisecond})
	if err != nil {
		t.Skip("No valkey")
	}
	defer vk.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	got := make(chan string, 1)
	go func() {
		_ = vk.Subscribe(ctx, "bus", func(payload []byte) {
			select {
			case got <- string(payload):
			default:
			}
		})
	}()

	// Subscription is asynchronous; publish until it lands.
	require.Eventually(t, func() bool {
		_ = vk.Publish(ctx, "bus", []byte("hello"))
		select {
		case msg := <-got:
			return msg == "hello"
		default:
			return false
		}
	}, 2*time.Second, 50*time.Millisecond)
}

func TestKeepSubscribed_RetriesUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls, drops int
	subscribed := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		KeepSubscribed(ctx, time.Millisecond, func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("connection reset")
			}
			close(subscribed)
			<-ctx.Done()
			return ctx.Err()
		}, func(err error) {
			drops++
			assert.EqualError(t, err, "connection reset")
		})
	}()

	select {
	case <-subscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not retried")
	}
	cancel()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("KeepSubscribed did not return after cancel")
	}
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, drops)
}
