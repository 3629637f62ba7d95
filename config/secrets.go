package config

import (
	"errors"
	"fmt"

	"github.com/jonwraymond/healthnotify/secret"
)

// Resolver builds the secret resolver for backend settings from the
// configured providers.
func (s SecretsConfig) Resolver() (*secret.Resolver, error) {
	opts := secret.Options{Dir: s.FileDir, CacheTTL: s.CacheTTL}

	var providers []secret.Provider
	for _, name := range s.Providers {
		p, err := secret.Open(name, opts)
		if err != nil {
			var errs []error
			for _, created := range providers {
				errs = append(errs, created.Close())
			}
			return nil, errors.Join(fmt.Errorf("config: secret provider %q: %w", name, err), errors.Join(errs...))
		}
		providers = append(providers, p)
	}
	return secret.NewResolver(s.Strict, providers...), nil
}
