package auth

import (
	"context"
	"net/http"
)

// Method indicates how a caller authenticated.
type Method string

const (
	MethodJWT    Method = "jwt"
	MethodAPIKey Method = "api_key"
)

// Identity is an authenticated caller.
type Identity struct {
	Principal string
	Method    Method
}

// Authenticator validates the credentials carried by request headers.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Errors: Authenticate returns one of the package sentinels (possibly
//     wrapped) when the credentials are missing or wrong.
type Authenticator interface {
	// Supports reports whether the headers carry this authenticator's credential.
	Supports(h http.Header) bool

	// Authenticate validates the credential.
	Authenticate(ctx context.Context, h http.Header) (*Identity, error)
}

// Composite tries each authenticator that supports the request in order and
// returns the first success, or the last failure.
type Composite []Authenticator

// Supports reports whether any authenticator supports the headers.
func (c Composite) Supports(h http.Header) bool {
	for _, a := range c {
		if a.Supports(h) {
			return true
		}
	}
	return false
}

// Authenticate implements Authenticator.
func (c Composite) Authenticate(ctx context.Context, h http.Header) (*Identity, error) {
	err := ErrMissingCredentials
	for _, a := range c {
		if !a.Supports(h) {
			continue
		}
		id, aerr := a.Authenticate(ctx, h)
		if aerr == nil {
			return id, nil
		}
		err = aerr
	}
	return nil, err
}

type contextKey struct{}

// WithIdentity returns a new context carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFromContext returns the identity stored by Middleware, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(contextKey{}).(*Identity)
	return id
}
