package health

import "context"

// Check is a unit of diagnostic logic producing one Result.
//
// Contract:
//   - ID is stable and unique within a Registry.
//   - Run should honor ctx cancellation. A returned error (or a panic) is
//     recorded by the Aggregator as an Error entry.
type Check interface {
	// ID returns the stable identifier used by disabled-check lists.
	ID() string

	// Name returns the display name.
	Name() string

	// Run performs the check.
	Run(ctx context.Context) (Result, error)
}

// CheckFunc is an adapter to allow ordinary functions to be used as Checks.
type CheckFunc struct {
	id   string
	name string
	fn   func(context.Context) (Result, error)
}

// NewCheck creates a Check from a function.
func NewCheck(id, name string, fn func(context.Context) (Result, error)) *CheckFunc {
	return &CheckFunc{id: id, name: name, fn: fn}
}

// ID returns the check identifier.
func (f *CheckFunc) ID() string { return f.id }

// Name returns the display name.
func (f *CheckFunc) Name() string { return f.name }

// Run performs the check.
func (f *CheckFunc) Run(ctx context.Context) (Result, error) {
	return f.fn(ctx)
}
