package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
)

// DefaultAPIKeyHeader is the header APIKeyAuthenticator reads by default.
const DefaultAPIKeyHeader = "X-API-Key"

// APIKeyAuthenticator accepts a fixed set of API keys. Only SHA-256 hashes of
// the keys are held in memory.
type APIKeyAuthenticator struct {
	header string
	hashes map[string]string // hash -> principal
}

// NewAPIKeyAuthenticator creates an authenticator for keys. An empty header
// means DefaultAPIKeyHeader. Each key's principal is "key-<n>" in key order.
func NewAPIKeyAuthenticator(header string, keys ...string) *APIKeyAuthenticator {
	if header == "" {
		header = DefaultAPIKeyHeader
	}
	a := &APIKeyAuthenticator{header: header, hashes: make(map[string]string, len(keys))}
	for i, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			a.hashes[HashAPIKey(k)] = "key-" + strconv.Itoa(i+1)
		}
	}
	return a
}

// Supports reports whether the API key header is present.
func (a *APIKeyAuthenticator) Supports(h http.Header) bool {
	return h.Get(a.header) != ""
}

// Authenticate validates the API key.
func (a *APIKeyAuthenticator) Authenticate(_ context.Context, h http.Header) (*Identity, error) {
	key := strings.TrimSpace(h.Get(a.header))
	if key == "" {
		return nil, ErrMissingCredentials
	}

	want := HashAPIKey(key)
	for hash, principal := range a.hashes {
		if subtle.ConstantTimeCompare([]byte(hash), []byte(want)) == 1 {
			return &Identity{Principal: principal, Method: MethodAPIKey}, nil
		}
	}
	return nil, ErrInvalidCredentials
}

// HashAPIKey hashes an API key using SHA-256.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
