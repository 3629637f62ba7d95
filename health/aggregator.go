package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonwraymond/healthnotify/observe"
	"github.com/jonwraymond/healthnotify/resilience"
)

// AggregatorConfig configures the result aggregator.
type AggregatorConfig struct {
	// CheckTimeout bounds each check run. Zero means no per-check timeout.
	CheckTimeout time.Duration

	// Parallel runs checks concurrently. Entries keep registration order.
	// Default: false
	Parallel bool
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithLogger sets the logger used for the per-cycle summary.
func WithLogger(l observe.Logger) AggregatorOption {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMiddleware wraps every check run with tracing and metrics.
func WithMiddleware(mw *observe.Middleware) AggregatorOption {
	return func(a *Aggregator) {
		if mw != nil {
			a.mw = mw
		}
	}
}

// Aggregator runs checks and collects their results into a Report.
//
// Contract:
//   - A check that errors or panics becomes a single Error entry; the
//     remaining checks still run.
//   - Cancellation is observed between checks; a cancelled run returns
//     ctx.Err() and no report.
type Aggregator struct {
	config AggregatorConfig
	logger observe.Logger
	mw     *observe.Middleware
}

// NewAggregator creates a new result aggregator.
func NewAggregator(config AggregatorConfig, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		config: config,
		logger: observe.NopLogger(),
		mw:     observe.NopMiddleware(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes checks and returns the resulting Report.
func (a *Aggregator) Run(ctx context.Context, checks []Check) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	start := time.Now()
	entries := make([]Entry, len(checks))

	if a.config.Parallel {
		var wg sync.WaitGroup
		for i, c := range checks {
			wg.Add(1)
			go func(i int, c Check) {
				defer wg.Done()
				entries[i] = a.runCheck(ctx, c)
			}(i, c)
		}
		wg.Wait()
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
	} else {
		for i, c := range checks {
			if err := ctx.Err(); err != nil {
				a.logger.Info(ctx, "health check run cancelled",
					observe.Field{Key: "completed", Value: i},
					observe.Field{Key: "total", Value: len(checks)},
				)
				return Report{}, err
			}
			entries[i] = a.runCheck(ctx, c)
		}
	}

	report := NewReport(entries...)
	a.logSummary(ctx, report, time.Since(start))
	return report, nil
}

func (a *Aggregator) runCheck(ctx context.Context, c Check) Entry {
	op := observe.Op{Kind: observe.KindCheck, Name: c.Name(), ID: c.ID()}
	start := time.Now()

	var result Result
	_ = a.mw.Run(ctx, op, func(ctx context.Context) error {
		r, err := a.invoke(ctx, c)
		if err != nil {
			cerr := &CheckError{CheckID: c.ID(), CheckName: c.Name(), Err: err}
			result = Failure(err.Error(), cerr)
			return cerr
		}
		result = r
		return nil
	})

	if result.Duration == 0 {
		result.Duration = time.Since(start)
	}
	if result.Timestamp.IsZero() {
		result.Timestamp = start
	}

	a.mw.RecordCheckStatus(ctx, op, result.Status.String())
	a.logger.Debug(ctx, "health check finished",
		observe.Field{Key: "check_id", Value: c.ID()},
		observe.Field{Key: "check", Value: c.Name()},
		observe.Field{Key: "status", Value: result.Status.String()},
		observe.Field{Key: "duration_ms", Value: result.Duration.Milliseconds()},
	)

	return Entry{CheckID: c.ID(), CheckName: c.Name(), Result: result}
}

// invoke runs c under the optional timeout, converting a panic into an error.
func (a *Aggregator) invoke(ctx context.Context, c Check) (Result, error) {
	out := make(chan Result, 1)
	run := func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrCheckPanicked, r)
			}
		}()
		res, err := c.Run(ctx)
		if err != nil {
			return err
		}
		out <- res
		return nil
	}

	var err error
	if a.config.CheckTimeout > 0 {
		err = resilience.Bounded(ctx, a.config.CheckTimeout, run)
		if errors.Is(err, resilience.ErrTimeout) {
			err = fmt.Errorf("%w after %s", ErrCheckTimeout, a.config.CheckTimeout)
		}
	} else {
		err = run(ctx)
	}
	if err != nil {
		return Result{}, err
	}
	return <-out, nil
}

func (a *Aggregator) logSummary(ctx context.Context, report Report, elapsed time.Duration) {
	counts := report.Counts()
	a.logger.Info(ctx, "health checks complete",
		observe.Field{Key: "report_id", Value: report.ID.String()},
		observe.Field{Key: "total", Value: report.Len()},
		observe.Field{Key: "success", Value: counts[StatusSuccess]},
		observe.Field{Key: "warning", Value: counts[StatusWarning]},
		observe.Field{Key: "error", Value: counts[StatusError]},
		observe.Field{Key: "info", Value: counts[StatusInfo]},
		observe.Field{Key: "duration_ms", Value: elapsed.Milliseconds()},
	)
}
