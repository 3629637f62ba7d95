package cluster

import "errors"

var (
	// ErrInvalidRole indicates an unknown role name.
	ErrInvalidRole = errors.New("cluster: invalid role")

	// ErrMissingInstanceID indicates RedisSignals has no instance ID to
	// compare against.
	ErrMissingInstanceID = errors.New("cluster: instance id is required")
)
