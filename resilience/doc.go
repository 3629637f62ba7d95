// Package resilience provides the guards wrapped around notification sends
// and check runs.
//
// # Patterns
//
//   - Circuit Breaker: stops calling a backend that fails every cycle and
//     probes it again after a reset timeout. BreakerSet keeps one breaker
//     per backend alias.
//
//   - Retry: retries a single transport call with doubling or constant
//     waits. Errors wrapped with Permanent are returned immediately.
//
//   - Bounded: limits an operation to a duration. BoundedDetached lets an
//     operation that has already started finish after its caller is
//     cancelled.
//
// Executor combines the three under a Policy.
//
// # Usage
//
//	exec := resilience.NewExecutor(resilience.Policy{
//	    Retry:          resilience.RetryConfig{MaxAttempts: 3},
//	    AttemptTimeout: 10 * time.Second,
//	})
//
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    resp, err := client.Do(req.WithContext(ctx))
//	    if err != nil {
//	        return err
//	    }
//	    defer resp.Body.Close()
//	    if resp.StatusCode >= 400 && resp.StatusCode < 500 {
//	        return resilience.Permanent(fmt.Errorf("status %d", resp.StatusCode))
//	    }
//	    return nil
//	})
package resilience
