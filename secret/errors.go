package secret

import "errors"

var (
	// ErrInvalidProvider indicates a provider is missing required options.
	ErrInvalidProvider = errors.New("secret: invalid provider options")

	// ErrProviderNotFound indicates a reference names an unknown provider.
	ErrProviderNotFound = errors.New("secret: unknown provider")

	// ErrSecretNotFound indicates a provider has no value for a reference.
	ErrSecretNotFound = errors.New("secret: not found")

	// ErrEmptySecret indicates a strict resolver received an empty value.
	ErrEmptySecret = errors.New("secret: empty value")

	// ErrMissingEnv indicates ${VAR} references an unset variable.
	ErrMissingEnv = errors.New("secret: missing environment variables")
)
