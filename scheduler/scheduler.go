package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/healthnotify/observe"
)

// ErrAlreadyStarted indicates Run was called more than once.
var ErrAlreadyStarted = errors.New("scheduler: already started")

// Task is a unit of recurring work.
type Task interface {
	// Name identifies the task in logs and traces.
	Name() string

	// PerformRun runs the task once and reports whether it should run again.
	// ctx is cancelled when the runner is cancelled.
	PerformRun(ctx context.Context) bool
}

// TaskFunc adapts a function to a Task.
type TaskFunc struct {
	name string
	fn   func(context.Context) bool
}

// NewTaskFunc creates a Task from fn.
func NewTaskFunc(name string, fn func(context.Context) bool) *TaskFunc {
	return &TaskFunc{name: name, fn: fn}
}

func (t *TaskFunc) Name() string                        { return t.name }
func (t *TaskFunc) PerformRun(ctx context.Context) bool { return t.fn(ctx) }

// State is the lifecycle state of a Recurring runner.
type State int32

const (
	// StateIdle means the runner is waiting for the next tick.
	StateIdle State = iota
	// StateRunning means the task is running.
	StateRunning
	// StateCancelled is terminal: the runner was cancelled.
	StateCancelled
	// StateStopped is terminal: the task asked not to run again.
	StateStopped
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCancelled:
		return "cancelled"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Config configures a Recurring runner.
type Config struct {
	// Delay is the wait before the first run. Zero runs immediately.
	Delay time.Duration

	// Period is the wait between the end of one run and the start of the
	// next. Default: 24 hours
	Period time.Duration
}

// Option configures a Recurring runner.
type Option func(*Recurring)

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(r *Recurring) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMiddleware traces and measures every run.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(r *Recurring) {
		if mw != nil {
			r.mw = mw
		}
	}
}

// Recurring runs a Task on a fixed delay until the task declines to repeat
// or the runner is cancelled.
//
// Contract:
//   - Concurrency: State, Runs and Cancel are safe to call from any goroutine.
//   - Runs are serialized.
//   - A panic in the task is recovered, logged and treated as "repeat".
//   - Once Cancelled or Stopped, no further run starts.
type Recurring struct {
	task   Task
	config Config
	logger observe.Logger
	mw     *observe.Middleware

	state   atomic.Int32
	runs    atomic.Int64
	started atomic.Bool

	mu        sync.Mutex
	cancel    context.CancelFunc
	cancelled bool
}

// New creates a runner for task.
func New(task Task, config Config, opts ...Option) *Recurring {
	if config.Delay < 0 {
		config.Delay = 0
	}
	if config.Period <= 0 {
		config.Period = 24 * time.Hour
	}
	r := &Recurring{
		task:   task,
		config: config,
		logger: observe.NopLogger(),
		mw:     observe.NopMiddleware(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(observe.Field{Key: "task", Value: task.Name()})
	return r
}

// Run blocks until the task declines to repeat, Cancel is called, or ctx is
// done. It returns ctx.Err() when ctx ended the runner and nil otherwise.
func (r *Recurring) Run(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.mu.Lock()
	if r.cancelled {
		r.mu.Unlock()
		r.setState(StateCancelled)
		return nil
	}
	r.cancel = cancel
	r.mu.Unlock()

	r.logger.Info(ctx, "recurring task scheduled",
		observe.Field{Key: "delay", Value: r.config.Delay.String()},
		observe.Field{Key: "period", Value: r.config.Period.String()},
	)

	timer := time.NewTimer(r.config.Delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return r.finishCancelled(parent)
		case <-timer.C:
		}

		r.setState(StateRunning)
		repeat := r.runOnce(ctx)
		r.runs.Add(1)

		if ctx.Err() != nil {
			return r.finishCancelled(parent)
		}
		if !repeat {
			r.setState(StateStopped)
			r.logger.Info(ctx, "recurring task stopped", observe.Field{Key: "runs", Value: r.runs.Load()})
			return nil
		}

		r.setState(StateIdle)
		timer.Reset(r.config.Period)
	}
}

// Cancel stops the runner. A run in progress sees its context cancelled and
// no further run starts. Cancel before Run makes Run return immediately.
func (r *Recurring) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = true
	if r.cancel != nil {
		r.cancel()
	}
}

// State returns the current state.
func (r *Recurring) State() State { return State(r.state.Load()) }

// Runs returns the number of completed runs.
func (r *Recurring) Runs() int64 { return r.runs.Load() }

func (r *Recurring) runOnce(ctx context.Context) (repeat bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error(ctx, "recurring task panicked", observe.Field{Key: "panic", Value: fmt.Sprint(rec)})
			repeat = true
		}
	}()

	op := observe.Op{Kind: observe.KindCycle, Name: r.task.Name()}
	_ = r.mw.Run(ctx, op, func(ctx context.Context) error {
		repeat = r.task.PerformRun(ctx)
		return nil
	})
	return repeat
}

func (r *Recurring) finishCancelled(parent context.Context) error {
	r.setState(StateCancelled)
	r.logger.Info(context.Background(), "recurring task cancelled", observe.Field{Key: "runs", Value: r.runs.Load()})
	return parent.Err()
}

func (r *Recurring) setState(s State) { r.state.Store(int32(s)) }
