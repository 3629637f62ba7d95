package resilience

import (
	"context"
	"time"
)

// Policy describes how one logical call is executed.
type Policy struct {
	// Retry enables retries when MaxAttempts is above 1.
	Retry RetryConfig

	// AttemptTimeout bounds each attempt. Zero leaves attempts unbounded.
	AttemptTimeout time.Duration

	// Breaker, when set, wraps the whole call and counts one failure per
	// call rather than per attempt.
	Breaker *CircuitBreaker
}

// Executor runs operations under a Policy.
type Executor struct {
	policy Policy
	retry  *Retry
}

// NewExecutor creates an executor for p.
func NewExecutor(p Policy) *Executor {
	e := &Executor{policy: p}
	if p.Retry.MaxAttempts > 1 {
		e.retry = NewRetry(p.Retry)
	}
	return e
}

// Execute runs op under the policy.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	attempt := op
	if d := e.policy.AttemptTimeout; d > 0 {
		attempt = func(ctx context.Context) error { return Bounded(ctx, d, op) }
	}

	call := attempt
	if e.retry != nil {
		call = func(ctx context.Context) error { return e.retry.Execute(ctx, attempt) }
	}

	if e.policy.Breaker != nil {
		return e.policy.Breaker.Execute(ctx, call)
	}
	return call(ctx)
}
