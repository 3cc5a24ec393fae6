package ports

import (
	"context"
	"time"
)

// RateLimiter is a shared, concurrency-safe fixed-window counter store.
// Hit atomically increments the key's counter for the current window and
// returns the post-increment count; the caller compares it to the limit.
type RateLimiter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}
