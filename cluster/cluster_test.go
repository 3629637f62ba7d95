package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
)

type fakeRedis struct {
	values map[string]string
	err    error
}

func (f fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func TestParseRole(t *testing.T) {
	tests := map[string]Role{
		"primary": RolePrimary,
		"Replica": RoleReplica,
		"":        RoleUnknown,
		"unknown": RoleUnknown,
	}
	for in, want := range tests {
		got, err := ParseRole(in)
		if err != nil || got != want {
			t.Errorf("ParseRole(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseRole("leader"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("ParseRole(leader) error = %v, want ErrInvalidRole", err)
	}
}

func TestStatic(t *testing.T) {
	ctx := context.Background()
	if got := StaticRole(RoleReplica).Role(ctx); got != RoleReplica {
		t.Errorf("Role() = %v, want replica", got)
	}
	if ok, err := StaticOwnership(true).IsSingleActiveInstance(ctx); !ok || err != nil {
		t.Errorf("IsSingleActiveInstance() = %v, %v", ok, err)
	}
}

func TestRedisSignals_Role(t *testing.T) {
	tests := []struct {
		name   string
		client fakeRedis
		want   Role
	}{
		{name: "this instance", client: fakeRedis{values: map[string]string{DefaultPrimaryKey: "node-1"}}, want: RolePrimary},
		{name: "other instance", client: fakeRedis{values: map[string]string{DefaultPrimaryKey: "node-2"}}, want: RoleReplica},
		{name: "missing key", client: fakeRedis{}, want: RoleUnknown},
		{name: "read error", client: fakeRedis{err: errors.New("i/o timeout")}, want: RoleUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewRedisSignals(tt.client, RedisSignalsConfig{InstanceID: "node-1"})
			if err != nil {
				t.Fatalf("NewRedisSignals() error = %v", err)
			}
			if got := s.Role(context.Background()); got != tt.want {
				t.Errorf("Role() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRedisSignals_IsSingleActiveInstance(t *testing.T) {
	readErr := errors.New("connection refused")
	tests := []struct {
		name    string
		client  fakeRedis
		want    bool
		wantErr error
	}{
		{name: "owner", client: fakeRedis{values: map[string]string{"owner": "node-1"}}, want: true},
		{name: "not owner", client: fakeRedis{values: map[string]string{"owner": "node-9"}}},
		{name: "unassigned", client: fakeRedis{}},
		{name: "read error", client: fakeRedis{err: readErr}, wantErr: readErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := NewRedisSignals(tt.client, RedisSignalsConfig{InstanceID: "node-1", OwnerKey: "owner"})
			got, err := s.IsSingleActiveInstance(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("IsSingleActiveInstance() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("IsSingleActiveInstance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewRedisSignals_RequiresInstanceID(t *testing.T) {
	if _, err := NewRedisSignals(fakeRedis{}, RedisSignalsConfig{}); !errors.Is(err, ErrMissingInstanceID) {
		t.Errorf("NewRedisSignals() error = %v, want ErrMissingInstanceID", err)
	}
}
