package valkey

import (
	"context"
	"time"
)

const maxResubscribeDelay = 30 * time.Second

// KeepSubscribed runs subscribe until ctx is done. Whenever it returns early
// dropped is told why, and the call is retried after a delay that starts at
// backoff and doubles up to 30s. A subscription that stayed up for longer than
// the current delay resets it.
func KeepSubscribed(ctx context.Context, backoff time.Duration, subscribe func(context.Context) error, dropped func(error)) {
	if backoff <= 0 {
		backoff = time.Second
	}
	delay := backoff
	for {
		started := time.Now()
		err := subscribe(ctx)
		if ctx.Err() != nil {
			return
		}
		if time.Since(started) > delay {
			delay = backoff
		}
		if dropped != nil {
			dropped(err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = min(delay*2, maxResubscribeDelay)
	}
}
