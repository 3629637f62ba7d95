package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/jonwraymond/healthnotify/observe"
)

// Registry maps backend aliases to factories and builds the enabled set
// from injected configuration.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - A backend is enabled only if its alias has a configuration entry with
//     Enabled set and its factory succeeds. Every other outcome excludes that
//     backend alone.
//   - The enabled set is built once and cached until Reload.
type Registry struct {
	provider ConfigProvider
	opts     options

	mu        sync.Mutex
	factories map[string]Factory
	enabled   []Backend
	resolved  bool
}

// NewRegistry creates a registry reading configuration from provider.
func NewRegistry(provider ConfigProvider, opts ...Option) *Registry {
	return &Registry{
		provider:  provider,
		opts:      applyOptions(opts),
		factories: make(map[string]Factory),
	}
}

// Register adds a backend factory under alias.
func (r *Registry) Register(alias string, factory Factory) error {
	alias = strings.TrimSpace(alias)
	if alias == "" || factory == nil {
		return ErrInvalidBackend
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[alias]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateBackend, alias)
	}
	r.factories[alias] = factory
	return nil
}

// Aliases returns the registered aliases in sorted order.
func (r *Registry) Aliases() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aliasesLocked()
}

// EnabledBackends returns the enabled backends ordered by alias, building
// them on first use.
func (r *Registry) EnabledBackends(ctx context.Context) []Backend {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.resolved {
		r.enabled = r.build(ctx)
		r.resolved = true
	}
	return slices.Clone(r.enabled)
}

// Reload rebuilds the enabled set and closes the previous backends.
func (r *Registry) Reload(ctx context.Context) []Backend {
	r.mu.Lock()
	previous := r.enabled
	r.enabled = r.build(ctx)
	r.resolved = true
	current := slices.Clone(r.enabled)
	r.mu.Unlock()

	if err := closeAll(previous); err != nil {
		r.opts.logger.Warn(ctx, "closing previous notification backends failed", observe.Field{Key: "error", Value: err})
	}
	return current
}

// Close closes every enabled backend that implements io.Closer.
func (r *Registry) Close() error {
	r.mu.Lock()
	previous := r.enabled
	r.enabled = nil
	r.resolved = false
	r.mu.Unlock()

	return closeAll(previous)
}

func (r *Registry) build(ctx context.Context) []Backend {
	var out []Backend
	for _, alias := range r.aliasesLocked() {
		b, err := r.buildOne(ctx, alias)
		if err != nil {
			r.opts.logger.Warn(ctx, "notification backend excluded",
				observe.Field{Key: "backend", Value: alias},
				observe.Field{Key: "error", Value: err},
			)
			continue
		}
		if b != nil {
			out = append(out, b)
		}
	}

	r.opts.logger.Info(ctx, "notification backends resolved",
		observe.Field{Key: "registered", Value: len(r.factories)},
		observe.Field{Key: "enabled", Value: len(out)},
	)
	return out
}

// buildOne returns (nil, nil) for a backend that is not wanted.
func (r *Registry) buildOne(ctx context.Context, alias string) (b Backend, err error) {
	if r.provider == nil {
		return nil, nil
	}
	desc, ok := r.provider.Lookup(alias)
	if !ok {
		r.opts.logger.Debug(ctx, "notification backend not configured", observe.Field{Key: "backend", Value: alias})
		return nil, nil
	}
	if !desc.Enabled {
		r.opts.logger.Debug(ctx, "notification backend disabled", observe.Field{Key: "backend", Value: alias})
		return nil, nil
	}

	settings := desc.Settings
	if r.opts.resolver != nil {
		settings, err = r.opts.resolver.ResolveMap(ctx, settings)
		if err != nil {
			return nil, &BindingError{Alias: alias, Err: err}
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			b, err = nil, fmt.Errorf("notify: backend %q factory panicked: %v", alias, rec)
		}
	}()

	b, err = r.factories[alias](ctx, OptionsFrom(desc), settings)
	if err != nil {
		var be *BindingError
		if errors.As(err, &be) && be.Alias == "" {
			be.Alias = alias
		}
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("notify: backend %q factory returned nil", alias)
	}
	return b, nil
}

func (r *Registry) aliasesLocked() []string {
	aliases := make([]string, 0, len(r.factories))
	for alias := range r.factories {
		aliases = append(aliases, alias)
	}
	slices.Sort(aliases)
	return aliases
}

func closeAll(backends []Backend) error {
	var errs []error
	for _, b := range backends {
		if c, ok := b.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", b.Alias(), err))
			}
		}
	}
	return errors.Join(errs...)
}
