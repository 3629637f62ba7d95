package cluster

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/healthnotify/observe"
)

// Default keys read by RedisSignals.
const (
	DefaultPrimaryKey = "healthnotify:primary"
	DefaultOwnerKey   = "healthnotify:owner"
)

// Getter is the subset of the go-redis client RedisSignals reads with.
type Getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisSignalsConfig configures RedisSignals.
type RedisSignalsConfig struct {
	// InstanceID identifies this process. Required.
	InstanceID string

	// PrimaryKey holds the instance ID of the primary.
	// Default: DefaultPrimaryKey
	PrimaryKey string

	// OwnerKey holds the instance ID of the single active instance.
	// Default: DefaultOwnerKey
	OwnerKey string

	// Logger receives read failures.
	Logger observe.Logger
}

// RedisSignals reads role and ownership from keys written by an external
// coordinator. It never writes.
type RedisSignals struct {
	client Getter
	config RedisSignalsConfig
}

// NewRedisSignals creates signals backed by client.
func NewRedisSignals(client Getter, config RedisSignalsConfig) (*RedisSignals, error) {
	if config.InstanceID == "" {
		return nil, ErrMissingInstanceID
	}
	if config.PrimaryKey == "" {
		config.PrimaryKey = DefaultPrimaryKey
	}
	if config.OwnerKey == "" {
		config.OwnerKey = DefaultOwnerKey
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	return &RedisSignals{client: client, config: config}, nil
}

// Role returns RolePrimary when the primary key names this instance and
// RoleReplica when it names another. A missing key or a read error yields
// RoleUnknown.
func (s *RedisSignals) Role(ctx context.Context) Role {
	holder, err := s.client.Get(ctx, s.config.PrimaryKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return RoleUnknown
	case err != nil:
		s.config.Logger.Warn(ctx, "reading cluster role failed",
			observe.Field{Key: "key", Value: s.config.PrimaryKey},
			observe.Field{Key: "error", Value: err},
		)
		return RoleUnknown
	case holder == s.config.InstanceID:
		return RolePrimary
	default:
		return RoleReplica
	}
}

// IsSingleActiveInstance reports whether the owner key names this instance.
// A missing key means no instance is designated.
func (s *RedisSignals) IsSingleActiveInstance(ctx context.Context) (bool, error) {
	holder, err := s.client.Get(ctx, s.config.OwnerKey).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cluster: read %s: %w", s.config.OwnerKey, err)
	}
	return holder == s.config.InstanceID, nil
}
