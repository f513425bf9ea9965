package ports

import "context"

// AttemptLimiter counts failed sign-ins per email.
type AttemptLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}
