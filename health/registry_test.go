package health

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func okCheck(id string) Check {
	return NewCheck(id, "check "+id, func(context.Context) (Result, error) {
		return Success(id), nil
	})
}

func ids(checks []Check) []string {
	out := make([]string, len(checks))
	for i, c := range checks {
		out[i] = c.ID()
	}
	return out
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(okCheck("a")); err != nil {
		t.Fatalf("Register(a) error = %v", err)
	}
	if err := r.Register(okCheck("a")); !errors.Is(err, ErrDuplicateCheck) {
		t.Errorf("Register(a) again error = %v, want ErrDuplicateCheck", err)
	}
	if err := r.Register(nil); !errors.Is(err, ErrInvalidCheck) {
		t.Errorf("Register(nil) error = %v, want ErrInvalidCheck", err)
	}
	if err := r.Register(okCheck("")); !errors.Is(err, ErrInvalidCheck) {
		t.Errorf("Register(empty id) error = %v, want ErrInvalidCheck", err)
	}

	if c, ok := r.Lookup("a"); !ok || c.ID() != "a" {
		t.Errorf("Lookup(a) = %v, %v", c, ok)
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Error("Lookup(missing) should fail")
	}
}

func TestRegistry_Enabled(t *testing.T) {
	tests := []struct {
		name   string
		global []string
		notify []string
		want   []string
	}{
		{name: "nothing disabled", want: []string{"a", "b", "c", "d"}},
		{name: "global only", global: []string{"b"}, want: []string{"a", "c", "d"}},
		{name: "notification only", notify: []string{"d"}, want: []string{"a", "b", "c"}},
		{name: "union", global: []string{"a"}, notify: []string{"c"}, want: []string{"b", "d"}},
		{name: "overlap collapses", global: []string{"b", "b"}, notify: []string{"b"}, want: []string{"a", "c", "d"}},
		{name: "case sensitive", global: []string{"A"}, want: []string{"a", "b", "c", "d"}},
		{name: "unknown ids tolerated", global: []string{"zzz"}, notify: []string{"yyy"}, want: []string{"a", "b", "c", "d"}},
		{name: "all disabled", global: []string{"a", "b"}, notify: []string{"c", "d"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(WithDisabled(tt.global...), WithNotificationDisabled(tt.notify...))
			for _, id := range []string{"a", "b", "c", "d"} {
				if err := r.Register(okCheck(id)); err != nil {
					t.Fatalf("Register(%s) error = %v", id, err)
				}
			}

			if got := ids(r.Enabled()); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
			if got := len(r.All()); got != 4 {
				t.Errorf("len(All()) = %d, want 4", got)
			}
		})
	}
}

func TestRegistry_UnknownDisabled(t *testing.T) {
	r := NewRegistry(WithDisabled("a", "zeta"), WithNotificationDisabled("alpha", "zeta"))
	_ = r.Register(okCheck("a"))

	want := []string{"alpha", "zeta"}
	if got := r.UnknownDisabled(); !reflect.DeepEqual(got, want) {
		t.Errorf("UnknownDisabled() = %v, want %v", got, want)
	}
}
