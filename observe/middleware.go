package observe

import (
	"context"
	"time"
)

// OpFunc is a unit of instrumented work.
type OpFunc func(ctx context.Context) error

// Middleware wraps pipeline operations with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Run is safe for concurrent use.
//   - Context: the span context is passed to the wrapped function.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware with the given observability components.
// Nil components fall back to no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NewTracer(nil)
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{tracer: tracer, metrics: metrics, logger: logger}
}

// NopMiddleware returns a Middleware that only runs the wrapped function.
func NopMiddleware() *Middleware {
	return NewMiddleware(nil, nil, nil)
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Run executes fn inside a span, records its metrics and logs a debug line.
// Failures are logged by the caller, which knows whether they are fatal to
// the operation.
func (m *Middleware) Run(ctx context.Context, op Op, fn OpFunc) error {
	ctx, span := m.tracer.StartSpan(ctx, op)
	start := time.Now()

	err := fn(ctx)

	duration := time.Since(start)
	m.tracer.EndSpan(span, err)
	m.metrics.RecordOp(ctx, op, duration, err)

	fields := []Field{
		{Key: "op.kind", Value: op.Kind},
		{Key: "op.name", Value: op.Name},
		{Key: "duration_ms", Value: float64(duration.Milliseconds())},
	}
	if err != nil {
		fields = append(fields, Field{Key: "error", Value: err.Error()})
	}
	m.logger.Debug(ctx, "operation finished", fields...)

	return err
}

// RecordCheckStatus forwards a check outcome to the metrics backend.
func (m *Middleware) RecordCheckStatus(ctx context.Context, op Op, status string) {
	m.metrics.RecordCheckStatus(ctx, op, status)
}
