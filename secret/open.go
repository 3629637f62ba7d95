package secret

import (
	"fmt"
	"strings"
	"time"
)

// Builtin lists the provider names Open accepts.
var Builtin = []string{"env", "file"}

// Options configures the providers created by Open.
type Options struct {
	// Dir is the base directory of the file provider. Required for "file".
	Dir string

	// CacheTTL, when positive, wraps the provider in a CachedProvider.
	CacheTTL time.Duration
}

// Open creates the built-in provider called name.
func Open(name string, o Options) (Provider, error) {
	var p Provider
	switch strings.TrimSpace(name) {
	case "env":
		p = NewEnvProvider()
	case "file":
		if o.Dir == "" {
			return nil, fmt.Errorf("%w: file provider requires a directory", ErrInvalidProvider)
		}
		p = NewFileProvider(o.Dir)
	default:
		return nil, fmt.Errorf("%w: %q", ErrProviderNotFound, name)
	}
	if o.CacheTTL > 0 {
		p = NewCachedProvider(p, o.CacheTTL)
	}
	return p, nil
}
