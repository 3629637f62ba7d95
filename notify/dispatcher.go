package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/healthnotify/health"
	"github.com/jonwraymond/healthnotify/observe"
	"github.com/jonwraymond/healthnotify/resilience"
)

// Skip reasons reported in Outcome.Reason.
const (
	ReasonFailureOnly = "failure-only: all checks successful"
	ReasonCancelled   = "cancelled"
	ReasonCircuitOpen = "circuit open"
)

// DispatcherConfig configures the notification dispatcher.
type DispatcherConfig struct {
	// SendTimeout bounds each send. Default: 30 seconds
	SendTimeout time.Duration

	// Parallel sends to all backends concurrently. Default: false
	Parallel bool

	// MaxConcurrent caps concurrent sends in parallel mode. Zero means no cap.
	MaxConcurrent int

	// BreakerFailures opens a backend's circuit after this many consecutive
	// failed cycles. Zero disables the circuit breaker.
	BreakerFailures int

	// BreakerReset is how long an open circuit skips the backend.
	// Default: 1 hour
	BreakerReset time.Duration
}

// Outcome is the result of dispatching one report to one backend.
type Outcome struct {
	Alias    string
	Sent     bool
	Skipped  bool
	Reason   string
	Err      error
	Duration time.Duration
}

// Dispatcher sends a report to each backend independently.
//
// Contract:
//   - A failing backend never prevents delivery to the others.
//   - Cancellation is checked before each send. A send that has started
//     runs to completion, bounded by SendTimeout.
//   - Outcomes are returned in backend order.
type Dispatcher struct {
	config   DispatcherConfig
	breakers *resilience.BreakerSet
	opts     options
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(config DispatcherConfig, opts ...Option) *Dispatcher {
	if config.SendTimeout <= 0 {
		config.SendTimeout = 30 * time.Second
	}
	if config.BreakerReset <= 0 {
		config.BreakerReset = time.Hour
	}

	d := &Dispatcher{
		config: config,
		opts:   applyOptions(opts),
	}
	if config.BreakerFailures > 0 {
		d.breakers = resilience.NewBreakerSet(resilience.CircuitBreakerConfig{
			MaxFailures:  config.BreakerFailures,
			ResetTimeout: config.BreakerReset,
			// A send abandoned at shutdown says nothing about the backend.
			IsFailure: func(err error) bool { return err != nil && !errors.Is(err, context.Canceled) },
			OnStateChange: func(name string, from, to resilience.State) {
				d.opts.logger.Warn(context.Background(), "notification backend circuit changed",
					observe.Field{Key: "backend", Value: name},
					observe.Field{Key: "from", Value: from.String()},
					observe.Field{Key: "to", Value: to.String()},
				)
			},
		})
	}
	return d
}

// Dispatch sends report to every backend and returns one outcome per backend.
func (d *Dispatcher) Dispatch(ctx context.Context, report health.Report, backends []Backend) []Outcome {
	outcomes := make([]Outcome, len(backends))

	if d.config.Parallel {
		var g errgroup.Group
		if d.config.MaxConcurrent > 0 {
			g.SetLimit(d.config.MaxConcurrent)
		}
		for i, b := range backends {
			g.Go(func() error {
				outcomes[i] = d.dispatchOne(ctx, report, b)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, b := range backends {
			outcomes[i] = d.dispatchOne(ctx, report, b)
		}
	}

	sent, skipped, failed := Tally(outcomes)
	d.opts.logger.Info(ctx, "health check notifications dispatched",
		observe.Field{Key: "report_id", Value: report.ID.String()},
		observe.Field{Key: "backends", Value: len(backends)},
		observe.Field{Key: "sent", Value: sent},
		observe.Field{Key: "skipped", Value: skipped},
		observe.Field{Key: "failed", Value: failed},
	)
	return outcomes
}

func (d *Dispatcher) dispatchOne(ctx context.Context, report health.Report, b Backend) Outcome {
	alias := b.Alias()
	out := Outcome{Alias: alias}
	logger := d.opts.logger.With(observe.Field{Key: "backend", Value: alias})

	if ctx.Err() != nil {
		out.Skipped, out.Reason = true, ReasonCancelled
		logger.Debug(ctx, "notification skipped", observe.Field{Key: "reason", Value: out.Reason})
		return out
	}
	if b.Options().FailureOnly && !report.HasFailures() {
		out.Skipped, out.Reason = true, ReasonFailureOnly
		logger.Debug(ctx, "notification skipped", observe.Field{Key: "reason", Value: out.Reason})
		return out
	}

	start := time.Now()
	err := d.guarded(ctx, alias, func(ctx context.Context) error {
		return d.opts.mw.Run(ctx, observe.Op{Kind: observe.KindSend, Name: alias, ID: report.ID.String()}, func(ctx context.Context) error {
			return safeSend(ctx, b, report)
		})
	})
	out.Duration = time.Since(start)

	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		out.Skipped, out.Reason = true, ReasonCircuitOpen
		logger.Warn(ctx, "notification skipped", observe.Field{Key: "reason", Value: out.Reason})
	case err != nil:
		out.Err = &SendError{Alias: alias, Err: err}
		logger.Error(ctx, "notification send failed",
			observe.Field{Key: "error", Value: err},
			observe.Field{Key: "duration_ms", Value: out.Duration.Milliseconds()},
		)
	default:
		out.Sent = true
		logger.Info(ctx, "notification sent", observe.Field{Key: "duration_ms", Value: out.Duration.Milliseconds()})
	}
	return out
}

// guarded runs send detached from ctx cancellation, bounded by SendTimeout,
// behind the backend's circuit breaker when one is configured.
func (d *Dispatcher) guarded(ctx context.Context, alias string, send func(context.Context) error) error {
	run := func(ctx context.Context) error {
		return resilience.BoundedDetached(ctx, d.config.SendTimeout, send)
	}
	if d.breakers == nil {
		return run(ctx)
	}
	return d.breakers.Get(alias).Execute(ctx, run)
}

// BreakerStates returns the circuit state per backend alias.
func (d *Dispatcher) BreakerStates() map[string]resilience.State {
	if d.breakers == nil {
		return nil
	}
	return d.breakers.States()
}

func safeSend(ctx context.Context, b Backend, report health.Report) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrBackendPanicked, r)
		}
	}()
	return b.Send(ctx, report)
}

// Tally counts sent, skipped and failed outcomes.
func Tally(outcomes []Outcome) (sent, skipped, failed int) {
	for _, o := range outcomes {
		switch {
		case o.Sent:
			sent++
		case o.Skipped:
			skipped++
		case o.Err != nil:
			failed++
		}
	}
	return sent, skipped, failed
}
