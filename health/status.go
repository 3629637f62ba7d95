package health

import (
	"fmt"
	"strings"
	"time"
)

// Status is the outcome category of a single health check.
type Status int

const (
	// StatusSuccess indicates the check passed.
	StatusSuccess Status = iota
	// StatusWarning indicates the check passed with issues worth attention.
	StatusWarning
	// StatusError indicates the check failed.
	StatusError
	// StatusInfo indicates the check only reports information.
	StatusInfo
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	case StatusInfo:
		return "info"
	default:
		return "unknown"
	}
}

// ParseStatus parses a status name, ignoring case.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success":
		return StatusSuccess, nil
	case "warning":
		return StatusWarning, nil
	case "error":
		return StatusError, nil
	case "info":
		return StatusInfo, nil
	default:
		return 0, fmt.Errorf("health: unknown status %q", s)
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// severity orders statuses for Report.Overall: Error > Warning > Info > Success.
func (s Status) severity() int {
	switch s {
	case StatusError:
		return 3
	case StatusWarning:
		return 2
	case StatusInfo:
		return 1
	default:
		return 0
	}
}

// Result is the outcome of one health check run. It is a value type and is
// never mutated once placed in a Report.
type Result struct {
	// Status is the outcome category.
	Status Status

	// Message is a human-readable description of the outcome.
	Message string

	// Remediation is an optional hint on how to fix a non-success outcome.
	Remediation string

	// Details contains arbitrary metadata about the check.
	Details map[string]any

	// Duration is how long the check took.
	Duration time.Duration

	// Timestamp is when the check was performed.
	Timestamp time.Time

	// Error is set when the result was produced from a failing check.
	Error error
}

// Success creates a success result.
func Success(message string) Result {
	return Result{Status: StatusSuccess, Message: message, Timestamp: time.Now()}
}

// Warning creates a warning result.
func Warning(message string) Result {
	return Result{Status: StatusWarning, Message: message, Timestamp: time.Now()}
}

// Info creates an informational result.
func Info(message string) Result {
	return Result{Status: StatusInfo, Message: message, Timestamp: time.Now()}
}

// Failure creates an error result. When message is empty the error text is
// used instead.
func Failure(message string, err error) Result {
	if message == "" && err != nil {
		message = err.Error()
	}
	return Result{Status: StatusError, Message: message, Error: err, Timestamp: time.Now()}
}

// WithRemediation sets the remediation hint on a result.
func (r Result) WithRemediation(hint string) Result {
	r.Remediation = hint
	return r
}

// WithDetails adds details to a result.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// WithDuration sets the duration on a result.
func (r Result) WithDuration(d time.Duration) Result {
	r.Duration = d
	return r
}
