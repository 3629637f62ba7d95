package secret

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// refPattern matches secretref:<provider>:<ref>. The ref runs to the next
// whitespace and may itself contain colons.
var refPattern = regexp.MustCompile(`secretref:([^:\s]+):(\S+)`)

// HasRef reports whether v holds a secret reference or an ${ENV} reference,
// i.e. whether its literal text differs from its resolved value.
func HasRef(v string) bool {
	return refPattern.MatchString(v) || envVarPattern.MatchString(v)
}

// Resolver replaces references in backend settings with their values.
//
// Values are expanded with ExpandEnvStrict first. Every
// "secretref:<provider>:<ref>" in the result is then replaced by the
// provider's value, so a reference may stand alone or sit inside a longer
// string such as "Bearer secretref:env:TOKEN".
type Resolver struct {
	providers map[string]Provider
	strict    bool
}

// NewResolver creates a resolver over providers, keyed by Name. A strict
// resolver rejects empty secrets.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{providers: make(map[string]Provider, len(providers)), strict: strict}
	for _, p := range providers {
		if p != nil {
			r.providers[p.Name()] = p
		}
	}
	return r
}

// ResolveValue expands value. A nil Resolver expands environment
// references only.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	out, err := ExpandEnvStrict(value)
	if err != nil || r == nil || !strings.Contains(out, "secretref:") {
		return out, err
	}

	var firstErr error
	out = refPattern.ReplaceAllStringFunc(out, func(m string) string {
		if firstErr != nil {
			return m
		}
		sub := refPattern.FindStringSubmatch(m)
		v, err := r.lookup(ctx, sub[1], sub[2])
		if err != nil {
			firstErr = err
			return m
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// ResolveMap resolves every value in settings. Keys are copied unchanged.
func (r *Resolver) ResolveMap(ctx context.Context, settings map[string]string) (map[string]string, error) {
	if settings == nil {
		return nil, nil
	}
	out := make(map[string]string, len(settings))
	for k, v := range settings {
		resolved, err := r.ResolveValue(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", k, err)
		}
		out[k] = resolved
	}
	return out, nil
}

// Close closes every provider.
func (r *Resolver) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, p := range r.providers {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}

func (r *Resolver) lookup(ctx context.Context, provider, ref string) (string, error) {
	p, ok := r.providers[provider]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrProviderNotFound, provider)
	}
	v, err := p.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if r.strict && v == "" {
		return "", fmt.Errorf("%w: %s:%s", ErrEmptySecret, provider, ref)
	}
	return v, nil
}
