// Package notifier runs the health check notification cycle: it checks the
// cluster eligibility gates, runs the enabled checks and dispatches the
// resulting report to the enabled notification backends.
package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/healthnotify/cluster"
	"github.com/jonwraymond/healthnotify/health"
	"github.com/jonwraymond/healthnotify/notify"
	"github.com/jonwraymond/healthnotify/observe"
)

// TaskName is the name the notifier reports to the scheduler.
const TaskName = "HealthCheckNotifier"

// CheckSource supplies the checks to run.
type CheckSource interface {
	Enabled() []health.Check
	UnknownDisabled() []string
}

// Runner runs checks into a report.
type Runner interface {
	Run(ctx context.Context, checks []health.Check) (health.Report, error)
}

// BackendSource supplies the enabled notification backends.
type BackendSource interface {
	EnabledBackends(ctx context.Context) []notify.Backend
}

// BackendReloader is a BackendSource that can rebuild its backends, closing
// the previous ones.
type BackendReloader interface {
	BackendSource
	Reload(ctx context.Context) []notify.Backend
}

// Dispatcher sends a report to backends.
type Dispatcher interface {
	Dispatch(ctx context.Context, report health.Report, backends []notify.Backend) []notify.Outcome
}

// Deps are the collaborators of a HealthCheckNotifier.
type Deps struct {
	Checks     CheckSource
	Runner     Runner
	Backends   BackendSource
	Dispatcher Dispatcher

	// Role and Ownership are the cluster signals. While either is nil the
	// notifier does nothing and asks to be repeated.
	Role      cluster.RoleProvider
	Ownership cluster.Ownership
}

// Option configures a HealthCheckNotifier.
type Option func(*HealthCheckNotifier)

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(n *HealthCheckNotifier) {
		if l != nil {
			n.logger = l
		}
	}
}

// HealthCheckNotifier is a scheduler.Task that runs one notification cycle
// per call to PerformRun.
type HealthCheckNotifier struct {
	deps   Deps
	logger observe.Logger

	// cycleMu is held for a whole cycle and by ReloadBackends.
	cycleMu sync.Mutex

	mu           sync.RWMutex
	last         health.Report
	hasLast      bool
	lastOutcomes []notify.Outcome
}

// New creates a notifier.
func New(deps Deps, opts ...Option) *HealthCheckNotifier {
	n := &HealthCheckNotifier{deps: deps, logger: observe.NopLogger()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name implements scheduler.Task.
func (n *HealthCheckNotifier) Name() string { return TaskName }

// PerformRun runs one cycle and reports whether the cycle should be
// scheduled again.
//
// Gates, in order:
//   - cluster signals not wired: repeat without running.
//   - role is replica or unknown: repeat without running; the role may change.
//   - not the single active instance: do not repeat; this instance is retiring.
//     A failure to read ownership repeats instead.
func (n *HealthCheckNotifier) PerformRun(ctx context.Context) bool {
	if n.deps.Role == nil || n.deps.Ownership == nil {
		n.logger.Debug(ctx, "cluster signals unavailable, skipping health check notification")
		return true
	}

	if role := n.deps.Role.Role(ctx); role != cluster.RolePrimary {
		n.logger.Debug(ctx, "health check notification does not run on this role",
			observe.Field{Key: "role", Value: role.String()})
		return true
	}

	active, err := n.deps.Ownership.IsSingleActiveInstance(ctx)
	if err != nil {
		n.logger.Warn(ctx, "reading single active instance failed", observe.Field{Key: "error", Value: err})
		return true
	}
	if !active {
		n.logger.Debug(ctx, "not the single active instance, retiring health check notification")
		return false
	}

	n.cycle(ctx)
	return true
}

func (n *HealthCheckNotifier) cycle(ctx context.Context) {
	n.cycleMu.Lock()
	defer n.cycleMu.Unlock()

	if err := ctx.Err(); err != nil {
		return
	}

	start := time.Now()
	n.logger.Debug(ctx, "health checks executing")

	if unknown := n.deps.Checks.UnknownDisabled(); len(unknown) > 0 {
		n.logger.Warn(ctx, "disabled health checks not found", observe.Field{Key: "ids", Value: unknown})
	}

	report, err := n.deps.Runner.Run(ctx, n.deps.Checks.Enabled())
	if err != nil {
		n.logger.Info(ctx, "health check cycle interrupted", observe.Field{Key: "error", Value: err})
		return
	}
	n.setLast(report, nil)

	outcomes := n.deps.Dispatcher.Dispatch(ctx, report, n.deps.Backends.EnabledBackends(ctx))
	n.setLast(report, outcomes)

	n.logger.Debug(ctx, "health checks complete",
		observe.Field{Key: "report_id", Value: report.ID.String()},
		observe.Field{Key: "duration_ms", Value: time.Since(start).Milliseconds()},
	)
}

// ReloadBackends rebuilds the notification backends. It waits for a running
// cycle to finish, so backends are never closed while a dispatch uses them.
// It returns false when the backend source cannot reload.
func (n *HealthCheckNotifier) ReloadBackends(ctx context.Context) ([]notify.Backend, bool) {
	reloader, ok := n.deps.Backends.(BackendReloader)
	if !ok {
		return nil, false
	}

	n.cycleMu.Lock()
	defer n.cycleMu.Unlock()
	return reloader.Reload(ctx), true
}

// LastReport returns the report of the most recent completed cycle.
// It implements health.ReportSource.
func (n *HealthCheckNotifier) LastReport() (health.Report, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.last, n.hasLast
}

// LastOutcomes returns the dispatch outcomes of the most recent cycle.
func (n *HealthCheckNotifier) LastOutcomes() []notify.Outcome {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]notify.Outcome(nil), n.lastOutcomes...)
}

func (n *HealthCheckNotifier) setLast(report health.Report, outcomes []notify.Outcome) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.last, n.hasLast, n.lastOutcomes = report, true, outcomes
}
