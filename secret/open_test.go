package secret

import (
	"errors"
	"testing"
	"time"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		opts     Options
		wantType string
		wantErr  error
	}{
		{name: "env", provider: "env", wantType: "*secret.EnvProvider"},
		{name: "cached env", provider: "env", opts: Options{CacheTTL: time.Minute}, wantType: "*secret.CachedProvider"},
		{name: "file", provider: "file", opts: Options{Dir: "/run/secrets"}, wantType: "*secret.FileProvider"},
		{name: "file without dir", provider: "file", wantErr: ErrInvalidProvider},
		{name: "unknown", provider: "vault", wantErr: ErrProviderNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Open(tt.provider, tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Open(%q) error = %v, want %v", tt.provider, err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if got := typeName(p); got != tt.wantType {
				t.Errorf("Open(%q) = %s, want %s", tt.provider, got, tt.wantType)
			}
		})
	}
}
