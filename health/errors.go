package health

import (
	"errors"
	"fmt"
)

var (
	// ErrCheckFailed indicates a health check failed.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout indicates a health check did not finish within its timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckPanicked indicates a health check panicked while running.
	ErrCheckPanicked = errors.New("health: check panicked")

	// ErrInvalidCheck indicates a nil check or a check with an empty ID.
	ErrInvalidCheck = errors.New("health: invalid check")

	// ErrDuplicateCheck indicates a check ID is already registered.
	ErrDuplicateCheck = errors.New("health: duplicate check")

	// ErrNoReport indicates no report has been produced yet.
	ErrNoReport = errors.New("health: no report available")
)

// CheckError records a check that raised an error instead of returning a
// result. It is stored on the Error entry the aggregator creates for it.
type CheckError struct {
	CheckID   string
	CheckName string
	Err       error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("health: check %q (%s) failed: %v", e.CheckName, e.CheckID, e.Err)
}

func (e *CheckError) Unwrap() error { return e.Err }

// Is reports ErrCheckFailed as a match so callers need not know the cause.
func (e *CheckError) Is(target error) bool { return target == ErrCheckFailed }
