package secret

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type stubProvider struct {
	name    string
	values  map[string]string
	resolve func(ref string) (string, error)
	calls   int
	closed  bool
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Resolve(_ context.Context, ref string) (string, error) {
	s.calls++
	if s.resolve != nil {
		return s.resolve(ref)
	}
	return s.values[ref], nil
}

func (s *stubProvider) Close() error {
	s.closed = true
	return nil
}

func TestHasRef(t *testing.T) {
	tests := map[string]bool{
		"secretref:stub:alpha":            true,
		"Bearer secretref:env:TOKEN":      true,
		"secretref:file:slack/webhook:v2": true,
		"${SMTP_PASSWORD}":                true,
		"secretref:stub:":                 false,
		"$HOME":                           false,
		"plain-value":                     false,
	}
	for in, want := range tests {
		if got := HasRef(in); got != want {
			t.Errorf("HasRef(%q) = %v, want %v", in, got, want)
		}
	}
}

func typeName(v any) string { return fmt.Sprintf("%T", v) }

func TestResolver_ResolveValue(t *testing.T) {
	t.Setenv("HN_TEST_HOST", "smtp.example.com")
	r := NewResolver(true, &stubProvider{name: "stub", values: map[string]string{"alpha": "one", "beta": "two", "alpha:v2": "three", "empty": ""}})

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "plain", in: "plain", want: "plain"},
		{name: "full ref", in: "secretref:stub:alpha", want: "one"},
		{name: "inline ref", in: "Bearer secretref:stub:beta", want: "Bearer two"},
		{name: "two inline refs", in: "secretref:stub:alpha secretref:stub:beta", want: "one two"},
		{name: "ref with colon", in: "secretref:stub:alpha:v2", want: "three"},
		{name: "env", in: "${HN_TEST_HOST}:587", want: "smtp.example.com:587"},
		{name: "missing env", in: "${HN_TEST_MISSING}", wantErr: ErrMissingEnv},
		{name: "unknown provider", in: "secretref:vault:x", wantErr: ErrProviderNotFound},
		{name: "strict empty", in: "secretref:stub:empty", wantErr: ErrEmptySecret},
		{name: "literal dollar", in: "pa$sword1", want: "pa$sword1"},
		{name: "bare env name kept", in: "https://x/$HOME", want: "https://x/$HOME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveValue(context.Background(), tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ResolveValue(%q) error = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ResolveValue(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestResolver_ResolveMap(t *testing.T) {
	r := NewResolver(true, &stubProvider{name: "stub", values: map[string]string{"alpha": "one"}})

	m, err := r.ResolveMap(context.Background(), map[string]string{"host": "mail", "password": "secretref:stub:alpha"})
	if err != nil {
		t.Fatalf("ResolveMap() error = %v", err)
	}
	if m["host"] != "mail" || m["password"] != "one" {
		t.Errorf("ResolveMap() = %v", m)
	}

	if _, err := r.ResolveMap(context.Background(), map[string]string{"k": "secretref:nope:x"}); !errors.Is(err, ErrProviderNotFound) {
		t.Errorf("ResolveMap() error = %v, want ErrProviderNotFound", err)
	}
	if m, err := r.ResolveMap(context.Background(), nil); m != nil || err != nil {
		t.Errorf("ResolveMap(nil) = %v, %v", m, err)
	}
}

func TestResolver_ResolveMapKeepsLiteralDollars(t *testing.T) {
	t.Setenv("HOME", "/root")
	r := NewResolver(true)

	in := map[string]string{"password": "pa$sword1", "url": "https://x/$HOME"}
	m, err := r.ResolveMap(context.Background(), in)
	if err != nil {
		t.Fatalf("ResolveMap() error = %v", err)
	}
	for k, want := range in {
		if m[k] != want {
			t.Errorf("ResolveMap()[%q] = %q, want %q", k, m[k], want)
		}
	}
}

func TestResolver_ProviderErrorPropagates(t *testing.T) {
	boom := errors.New("explode")
	r := NewResolver(true, &stubProvider{name: "stub", resolve: func(string) (string, error) { return "", boom }})

	if _, err := r.ResolveValue(context.Background(), "secretref:stub:x"); !errors.Is(err, boom) {
		t.Errorf("ResolveValue() error = %v, want %v", err, boom)
	}
}

func TestResolver_NilResolverExpandsEnvOnly(t *testing.T) {
	t.Setenv("HN_TEST_USER", "ops")
	var r *Resolver

	got, err := r.ResolveValue(context.Background(), "${HN_TEST_USER}")
	if err != nil || got != "ops" {
		t.Errorf("ResolveValue() = %q, %v", got, err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestResolver_Close(t *testing.T) {
	p := &stubProvider{name: "stub"}
	if err := NewResolver(false, p).Close(); err != nil || !p.closed {
		t.Errorf("Close() error = %v, closed = %v", err, p.closed)
	}
}
