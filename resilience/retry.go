package resilience

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// RetryConfig configures Retry.
type RetryConfig struct {
	// MaxAttempts counts the first call. Default: 3
	MaxAttempts int

	// InitialDelay is the wait before the second attempt. Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps every wait. Default: 10s
	MaxDelay time.Duration

	// Constant keeps every wait at InitialDelay instead of doubling it.
	Constant bool

	// Jitter adds up to 25% to each wait.
	Jitter bool

	// OnRetry is called before each wait with the attempt that just failed.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// AttemptsError carries the last failure once every attempt is used.
// It matches both ErrMaxRetriesExceeded and the last error.
type AttemptsError struct {
	Attempts int
	Err      error
}

func (e *AttemptsError) Error() string {
	return fmt.Sprintf("%v after %d attempts: %v", ErrMaxRetriesExceeded, e.Attempts, e.Err)
}

func (e *AttemptsError) Unwrap() []error { return []error{ErrMaxRetriesExceeded, e.Err} }

// Retry repeats a failing operation within one call.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a Retry, filling unset fields with defaults.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 10 * time.Second
	}
	return &Retry{config: config}
}

// Execute calls op until it succeeds or fails permanently, ctx ends, or the
// attempts run out. Permanent errors and context errors end the loop at once.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		if attempt > 1 {
			wait := r.delay(attempt - 1)
			if r.config.OnRetry != nil {
				r.config.OnRetry(attempt-1, err, wait)
			}
			if werr := sleep(ctx, wait); werr != nil {
				return werr
			}
		}

		if err = op(ctx); err == nil || final(err) {
			return err
		}
	}
	if r.config.MaxAttempts == 1 {
		return err
	}
	return &AttemptsError{Attempts: r.config.MaxAttempts, Err: err}
}

// Config returns the effective configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}

func final(err error) bool {
	return IsPermanent(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// delay is the wait after the given failed attempt.
func (r *Retry) delay(failed int) time.Duration {
	d := r.config.InitialDelay
	if !r.config.Constant {
		for i := 1; i < failed && d < r.config.MaxDelay; i++ {
			d *= 2
		}
	}
	d = min(d, r.config.MaxDelay)

	if r.config.Jitter && d >= 4 {
		// #nosec G404 -- timing variance only.
		d += time.Duration(rand.Int64N(int64(d / 4)))
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
