package notify

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidBackend indicates an empty alias or nil factory.
	ErrInvalidBackend = errors.New("notify: invalid backend registration")

	// ErrDuplicateBackend indicates an alias is already registered.
	ErrDuplicateBackend = errors.New("notify: backend already registered")

	// ErrBinding indicates backend settings could not be bound.
	ErrBinding = errors.New("notify: settings binding failed")

	// ErrSend indicates a backend failed to deliver a report.
	ErrSend = errors.New("notify: send failed")

	// ErrBackendPanicked indicates a backend panicked while sending.
	ErrBackendPanicked = errors.New("notify: backend panicked")

	// ErrInvalidVerbosity indicates an unknown verbosity name.
	ErrInvalidVerbosity = errors.New("notify: invalid verbosity")
)

// BindingError reports why a backend's settings could not be bound to its
// typed configuration. The backend is excluded; other backends are not affected.
type BindingError struct {
	Alias   string
	Missing []string
	Err     error
}

func (e *BindingError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "notify: backend %q settings", e.Alias)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, " missing %s", strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		if len(e.Missing) > 0 {
			b.WriteString(";")
		}
		fmt.Fprintf(&b, " %v", e.Err)
	}
	return b.String()
}

func (e *BindingError) Unwrap() error { return e.Err }

// Is matches ErrBinding.
func (e *BindingError) Is(target error) bool { return target == ErrBinding }

// SendError records a failed delivery to one backend.
type SendError struct {
	Alias string
	Err   error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("notify: send to %q failed: %v", e.Alias, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// Is matches ErrSend.
func (e *SendError) Is(target error) bool { return target == ErrSend }
