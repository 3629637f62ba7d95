// Package cluster exposes the read-only coordination signals a recurring
// duty consults before it runs: the process role and whether this process
// is the single active instance of the fleet.
//
// Arbitration itself is external. Nothing here acquires or releases a role.
package cluster

import (
	"context"
	"fmt"
	"strings"
)

// Role is the replication role of the current process.
type Role int

const (
	// RoleUnknown means the role could not be determined.
	RoleUnknown Role = iota
	// RolePrimary is the role allowed to run recurring duties.
	RolePrimary
	// RoleReplica is a non-primary replica.
	RoleReplica
)

// String returns the string representation of the role.
func (r Role) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	case RoleReplica:
		return "replica"
	default:
		return "unknown"
	}
}

// ParseRole parses a role name, ignoring case.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary":
		return RolePrimary, nil
	case "replica":
		return RoleReplica, nil
	case "", "unknown":
		return RoleUnknown, nil
	default:
		return RoleUnknown, fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// RoleProvider reports the current role of this process.
type RoleProvider interface {
	Role(ctx context.Context) Role
}

// Ownership reports whether this process currently holds the
// single-active-instance designation.
type Ownership interface {
	IsSingleActiveInstance(ctx context.Context) (bool, error)
}

// StaticRole is a RoleProvider with a fixed role.
type StaticRole Role

// Role returns the fixed role.
func (s StaticRole) Role(context.Context) Role { return Role(s) }

// StaticOwnership is an Ownership with a fixed answer.
type StaticOwnership bool

// IsSingleActiveInstance returns the fixed answer.
func (s StaticOwnership) IsSingleActiveInstance(context.Context) (bool, error) {
	return bool(s), nil
}
