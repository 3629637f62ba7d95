package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricOpTotal     = "healthnotify.op.total"
	MetricOpErrors    = "healthnotify.op.errors"
	MetricOpDuration  = "healthnotify.op.duration_ms"
	MetricCheckStatus = "healthnotify.check.status"
)

// Metrics records pipeline metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordOp records one operation with its duration and error status.
	RecordOp(ctx context.Context, op Op, duration time.Duration, err error)

	// RecordCheckStatus counts a check outcome by status name.
	RecordCheckStatus(ctx context.Context, op Op, status string)
}

type metricsImpl struct {
	total    metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
	statuses metric.Int64Counter
}

// NewMetrics creates Metrics backed by the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	total, err := meter.Int64Counter(MetricOpTotal,
		metric.WithDescription("Total number of cycles, check runs and backend sends"),
		metric.WithUnit("{op}"),
	)
	if err != nil {
		return nil, err
	}

	errs, err := meter.Int64Counter(MetricOpErrors,
		metric.WithDescription("Operations that ended with an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(MetricOpDuration,
		metric.WithDescription("Operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	statuses, err := meter.Int64Counter(MetricCheckStatus,
		metric.WithDescription("Health check outcomes by status"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{total: total, errors: errs, duration: duration, statuses: statuses}, nil
}

func (m *metricsImpl) RecordOp(ctx context.Context, op Op, duration time.Duration, err error) {
	opt := metric.WithAttributes(
		attribute.String("op.kind", op.Kind),
		attribute.String("op.name", op.Name),
	)

	m.total.Add(ctx, 1, opt)
	if err != nil {
		m.errors.Add(ctx, 1, opt)
	}
	m.duration.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordCheckStatus(ctx context.Context, op Op, status string) {
	m.statuses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check.name", op.Name),
		attribute.String("check.status", status),
	))
}

type nopMetrics struct{}

func (nopMetrics) RecordOp(context.Context, Op, time.Duration, error) {}

func (nopMetrics) RecordCheckStatus(context.Context, Op, string) {}
