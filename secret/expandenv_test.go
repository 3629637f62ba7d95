package secret

import (
	"errors"
	"strings"
	"testing"
)

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("HN_A", "alpha")

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "no vars", in: "no vars", want: "no vars"},
		{name: "braced", in: "${HN_A}-${HN_A}", want: "alpha-alpha"},
		{name: "bare name kept", in: "$HN_A", want: "$HN_A"},
		{name: "dollar in password", in: "p$ss", want: "p$ss"},
		{name: "dollar in url", in: "https://x/$HOME", want: "https://x/$HOME"},
		{name: "double dollar kept", in: "cost $$5", want: "cost $$5"},
		{name: "escaped braced", in: "$${HN_A}", want: "${HN_A}"},
		{name: "missing sorted and deduplicated", in: "${HN_MISSING_B} ${HN_MISSING_A} ${HN_MISSING_A}", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandEnvStrict(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrMissingEnv) {
					t.Fatalf("ExpandEnvStrict(%q) error = %v, want ErrMissingEnv", tt.in, err)
				}
				if !strings.HasSuffix(err.Error(), "HN_MISSING_A, HN_MISSING_B") {
					t.Errorf("error = %v, want sorted unique names", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ExpandEnvStrict(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}
