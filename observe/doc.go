// Package observe provides the logging, tracing and metrics primitives used by
// the health-check notification pipeline.
//
// It is a pure instrumentation library: no scheduling, no transport, no I/O
// beyond exporter setup. The notifier, aggregator and dispatcher accept a
// Logger and a Middleware; an Observer builds both from configuration.
package observe
