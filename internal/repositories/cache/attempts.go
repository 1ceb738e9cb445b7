package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptLimiter is a keyed failure counter with expiry, used to throttle
// login and transaction-PIN attempts. Counters live entirely in Redis so
// the core services stay free of shared mutable state.
type AttemptLimiter struct {
	client      *redis.Client
	prefix      string
	maxAttempts int
	window      time.Duration
}

func NewAttemptLimiter(client *redis.Client, prefix string, maxAttempts int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{
		client:      client,
		prefix:      prefix,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

func (l *AttemptLimiter) key(id string) string {
	return fmt.Sprintf("%s:attempts:%s", l.prefix, id)
}

// TooMany reports whether the key has exhausted its attempt budget.
func (l *AttemptLimiter) TooMany(ctx context.Context, id string) (bool, error) {
	count, err := l.client.Get(ctx, l.key(id)).Int()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to read attempt counter: %w", err)
	}
	return count >= l.maxAttempts, nil
}

// Fail records one failed attempt. The expiry window restarts on each
// failure so a lockout lasts a full window after the last bad attempt.
func (l *AttemptLimiter) Fail(ctx context.Context, id string) error {
	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, l.key(id))
	pipe.Expire(ctx, l.key(id), l.window)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful attempt.
func (l *AttemptLimiter) Reset(ctx context.Context, id string) error {
	return l.client.Del(ctx, l.key(id)).Err()
}
