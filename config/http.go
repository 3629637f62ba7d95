package config

import (
	"context"
	"fmt"

	"github.com/jonwraymond/healthnotify/auth"
	"github.com/jonwraymond/healthnotify/secret"
)

// Authenticator builds the report route guard. It returns nil when no
// credentials are configured.
func (h HTTPConfig) Authenticator(ctx context.Context, resolver *secret.Resolver) (auth.Authenticator, error) {
	if !h.AuthEnabled() {
		return nil, nil
	}

	var chain auth.Composite
	if len(h.APIKeys) > 0 {
		keys := make([]string, len(h.APIKeys))
		for i, k := range h.APIKeys {
			v, err := resolver.ResolveValue(ctx, k)
			if err != nil {
				return nil, fmt.Errorf("config: http.api_keys[%d]: %w", i, err)
			}
			keys[i] = v
		}
		chain = append(chain, auth.NewAPIKeyAuthenticator(h.APIKeyHeader, keys...))
	}
	if h.JWTSigningKey != "" {
		key, err := resolver.ResolveValue(ctx, h.JWTSigningKey)
		if err != nil {
			return nil, fmt.Errorf("config: http.jwt_signing_key: %w", err)
		}
		chain = append(chain, auth.NewJWTAuthenticator(auth.JWTConfig{
			SigningKey: []byte(key),
			Issuer:     h.JWTIssuer,
			Audience:   h.JWTAudience,
		}))
	}
	return chain, nil
}
