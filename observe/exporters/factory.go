// Package exporters builds the OpenTelemetry exporters named in
// configuration.
package exporters

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// requireEnv fails unless one of keys is set. The gRPC exporters would
// otherwise silently dial localhost.
func requireEnv(what string, keys ...string) error {
	for _, k := range keys {
		if os.Getenv(k) != "" {
			return nil
		}
	}
	return fmt.Errorf("%s endpoint not configured: set %s", what, strings.Join(keys, " or "))
}

var spanExporters = map[string]func(context.Context) (sdktrace.SpanExporter, error){
	"stdout": func(context.Context) (sdktrace.SpanExporter, error) {
		return stdouttrace.New(stdouttrace.WithWriter(os.Stdout))
	},
	"otlp": func(ctx context.Context) (sdktrace.SpanExporter, error) {
		if err := requireEnv("OTLP", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"); err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx)
	},
	// Jaeger ingests OTLP.
	"jaeger": func(ctx context.Context) (sdktrace.SpanExporter, error) {
		if err := requireEnv("Jaeger", "OTEL_EXPORTER_JAEGER_ENDPOINT"); err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx)
	},
	"none": func(context.Context) (sdktrace.SpanExporter, error) {
		return stdouttrace.New(stdouttrace.WithWriter(io.Discard))
	},
}

var metricExporters = map[string]func(context.Context) (sdkmetric.Exporter, error){
	"stdout": func(context.Context) (sdkmetric.Exporter, error) {
		return stdoutmetric.New(stdoutmetric.WithWriter(os.Stdout))
	},
	"otlp": func(ctx context.Context) (sdkmetric.Exporter, error) {
		if err := requireEnv("OTLP metrics", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"); err != nil {
			return nil, err
		}
		return otlpmetricgrpc.New(ctx)
	},
	"none": func(context.Context) (sdkmetric.Exporter, error) {
		return stdoutmetric.New(stdoutmetric.WithWriter(io.Discard))
	},
}

// NewTracingExporter creates the span exporter called name: stdout, otlp,
// jaeger or none. The empty name means none.
func NewTracingExporter(ctx context.Context, name string) (sdktrace.SpanExporter, error) {
	if name == "" {
		name = "none"
	}
	build, ok := spanExporters[name]
	if !ok {
		return nil, fmt.Errorf("unknown exporter: %q", name)
	}
	return build(ctx)
}

// NewMetricsReader creates the metrics reader called name: stdout, otlp,
// prometheus or none. Push exporters are wrapped in a periodic reader.
func NewMetricsReader(ctx context.Context, name string) (sdkmetric.Reader, error) {
	if name == "prometheus" {
		reader, err := prometheus.New()
		if err != nil {
			return nil, fmt.Errorf("prometheus exporter: %w", err)
		}
		return reader, nil
	}
	if name == "" {
		name = "none"
	}
	build, ok := metricExporters[name]
	if !ok {
		return nil, fmt.Errorf("unknown metrics exporter: %q", name)
	}
	exp, err := build(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s metrics exporter: %w", name, err)
	}
	return sdkmetric.NewPeriodicReader(exp), nil
}
