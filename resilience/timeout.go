package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Bounded runs op with a context that expires after d and returns once the
// deadline passes even if op is still running. Expiry yields an error
// matching ErrTimeout; cancellation of ctx yields ctx.Err().
func Bounded(ctx context.Context, d time.Duration, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- op(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s", ErrTimeout, d)
		}
		return ctx.Err()
	}
}

// BoundedDetached is Bounded on a context that ignores the cancellation of
// ctx but keeps its values. Only d limits op.
func BoundedDetached(ctx context.Context, d time.Duration, op func(context.Context) error) error {
	return Bounded(context.WithoutCancel(ctx), d, op)
}
