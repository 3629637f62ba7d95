package health

import (
	"fmt"
	"slices"
	"sync"
)

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithDisabled marks check IDs as disabled everywhere.
func WithDisabled(ids ...string) RegistryOption {
	return func(r *Registry) {
		for _, id := range ids {
			r.disabled[id] = struct{}{}
		}
	}
}

// WithNotificationDisabled marks check IDs as disabled for notification runs.
func WithNotificationDisabled(ids ...string) RegistryOption {
	return func(r *Registry) {
		for _, id := range ids {
			r.notifyDisabled[id] = struct{}{}
		}
	}
}

// Registry holds the available checks in registration order together with
// the administratively disabled check IDs.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - IDs are compared case-sensitively.
//   - Disabled IDs without a backing check are tolerated.
type Registry struct {
	mu             sync.RWMutex
	checks         []Check
	index          map[string]Check
	disabled       map[string]struct{}
	notifyDisabled map[string]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		index:          make(map[string]Check),
		disabled:       make(map[string]struct{}),
		notifyDisabled: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a check. It rejects nil checks, empty IDs and duplicates.
func (r *Registry) Register(c Check) error {
	if c == nil || c.ID() == "" {
		return ErrInvalidCheck
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[c.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCheck, c.ID())
	}
	r.index[c.ID()] = c
	r.checks = append(r.checks, c)
	return nil
}

// Enabled returns the checks in registration order, minus those disabled
// globally or for notification.
func (r *Registry) Enabled() []Check {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Check, 0, len(r.checks))
	for _, c := range r.checks {
		if r.isDisabledLocked(c.ID()) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// All returns every registered check in registration order.
func (r *Registry) All() []Check {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.checks)
}

// Lookup returns the check with the given ID.
func (r *Registry) Lookup(id string) (Check, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.index[id]
	return c, ok
}

// UnknownDisabled returns the sorted disabled IDs that have no registered check.
func (r *Registry) UnknownDisabled() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, set := range []map[string]struct{}{r.disabled, r.notifyDisabled} {
		for id := range set {
			if _, ok := r.index[id]; !ok {
				seen[id] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (r *Registry) isDisabledLocked(id string) bool {
	if _, ok := r.disabled[id]; ok {
		return true
	}
	_, ok := r.notifyDisabled[id]
	return ok
}
