package secret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEnvProvider(t *testing.T) {
	t.Setenv("HN_SMTP_PASSWORD", "hunter2")
	p := NewEnvProvider()

	got, err := p.Resolve(context.Background(), "HN_SMTP_PASSWORD")
	if err != nil || got != "hunter2" {
		t.Errorf("Resolve() = %q, %v", got, err)
	}
	if _, err := p.Resolve(context.Background(), "HN_NOT_SET_ANYWHERE"); !errors.Is(err, ErrSecretNotFound) {
		t.Errorf("Resolve(missing) error = %v, want ErrSecretNotFound", err)
	}
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "slack"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "slack", "webhook"), []byte("https://hooks.example/abc\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	p := NewFileProvider(dir)

	tests := []struct {
		ref     string
		want    string
		wantErr error
	}{
		{ref: "slack/webhook", want: "https://hooks.example/abc"},
		{ref: "missing", wantErr: ErrSecretNotFound},
	}
	for _, tt := range tests {
		got, err := p.Resolve(context.Background(), tt.ref)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Resolve(%q) error = %v, want %v", tt.ref, err, tt.wantErr)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Resolve(%q) = %q, %v; want %q", tt.ref, got, err, tt.want)
		}
	}

	if _, err := p.Resolve(context.Background(), "../etc/passwd"); err == nil {
		t.Error("Resolve should reject refs outside the base directory")
	}
}
