package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/perfilapp/perfil/internal/core/domain"
	"github.com/perfilapp/perfil/internal/core/ports"
)

const (
	defaultMaxAttempts   = 5
	defaultAttemptWindow = 15 * time.Minute
)

// AttemptLimiter counts failed sign-ins per email in Redis.
// Key format: signin:attempts:<email>
type AttemptLimiter struct {
	client *redis.Client
	max    int64
	window time.Duration
}

var _ ports.AttemptLimiter = (*AttemptLimiter)(nil)

// NewAttemptLimiter allows up to maxAttempts failures per window. Zero values
// fall back to the defaults.
func NewAttemptLimiter(client *redis.Client, maxAttempts int, window time.Duration) *AttemptLimiter {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if window <= 0 {
		window = defaultAttemptWindow
	}
	return &AttemptLimiter{client: client, max: int64(maxAttempts), window: window}
}

// Allow reports whether email is still under the failure limit.
func (l *AttemptLimiter) Allow(ctx context.Context, email string) (bool, error) {
	n, err := l.client.Get(ctx, l.key(email)).Int64()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("attempt check: %w", err)
	}
	return n < l.max, nil
}

// RecordFailure increments the counter; the window starts at the first failure.
func (l *AttemptLimiter) RecordFailure(ctx context.Context, email string) error {
	key := l.key(email)

	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("attempt record: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful sign-in.
func (l *AttemptLimiter) Reset(ctx context.Context, email string) error {
	if err := l.client.Del(ctx, l.key(email)).Err(); err != nil {
		return fmt.Errorf("attempt reset: %w", err)
	}
	return nil
}

func (l *AttemptLimiter) key(email string) string {
	return "signin:attempts:" + domain.NormalizeEmail(email)
}
