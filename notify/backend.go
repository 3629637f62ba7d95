package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonwraymond/healthnotify/health"
)

// Verbosity selects how much of a report a backend renders.
type Verbosity int

const (
	// VerbositySummary renders counts and the entries that need attention.
	VerbositySummary Verbosity = iota
	// VerbosityDetailed renders every entry.
	VerbosityDetailed
)

// String returns the string representation of the verbosity.
func (v Verbosity) String() string {
	if v == VerbosityDetailed {
		return "detailed"
	}
	return "summary"
}

// ParseVerbosity parses a verbosity name, ignoring case. Empty means summary.
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "summary":
		return VerbositySummary, nil
	case "detailed", "detail":
		return VerbosityDetailed, nil
	default:
		return VerbositySummary, fmt.Errorf("%w: %q", ErrInvalidVerbosity, s)
	}
}

// Descriptor is the configuration entry for one backend, located by alias.
type Descriptor struct {
	Alias       string
	Enabled     bool
	FailureOnly bool
	Verbosity   Verbosity
	Settings    map[string]string
}

// Options is the common configuration every backend constructor receives.
type Options struct {
	Enabled     bool
	FailureOnly bool
	Verbosity   Verbosity
}

// OptionsFrom extracts the common options from a descriptor.
func OptionsFrom(d Descriptor) Options {
	return Options{Enabled: d.Enabled, FailureOnly: d.FailureOnly, Verbosity: d.Verbosity}
}

// Backend delivers a report to one notification sink.
//
// Contract:
//   - Send must not modify the report.
//   - Send should honor ctx deadlines.
//   - A backend holding connections may implement io.Closer.
type Backend interface {
	// Alias returns the configuration key the backend responds to.
	Alias() string

	// Options returns the common options the backend was built with.
	Options() Options

	// Send delivers the report.
	Send(ctx context.Context, report health.Report) error
}

// Factory builds a backend from its common options and its own settings.
type Factory func(ctx context.Context, opts Options, settings map[string]string) (Backend, error)

// ConfigProvider locates backend configuration by alias.
type ConfigProvider interface {
	Lookup(alias string) (Descriptor, bool)
}

// SettingsResolver rewrites settings values before binding, e.g. to
// resolve secret references.
type SettingsResolver interface {
	ResolveMap(ctx context.Context, settings map[string]string) (map[string]string, error)
}

// StaticConfig is a ConfigProvider over a fixed set of descriptors.
type StaticConfig map[string]Descriptor

// Lookup returns the descriptor registered under alias.
func (c StaticConfig) Lookup(alias string) (Descriptor, bool) {
	d, ok := c[alias]
	if ok && d.Alias == "" {
		d.Alias = alias
	}
	return d, ok
}
