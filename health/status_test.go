package health

import (
	"errors"
	"testing"
	"time"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusSuccess, "success"},
		{StatusWarning, "warning"},
		{StatusError, "error"},
		{StatusInfo, "info"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("Status.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []Status{StatusSuccess, StatusWarning, StatusError, StatusInfo} {
		got, err := ParseStatus(" " + s.String() + " ")
		if err != nil || got != s {
			t.Errorf("ParseStatus(%q) = %v, %v; want %v", s.String(), got, err, s)
		}
	}
	if got, err := ParseStatus("WARNING"); err != nil || got != StatusWarning {
		t.Errorf("ParseStatus(WARNING) = %v, %v", got, err)
	}
	if _, err := ParseStatus("degraded"); err == nil {
		t.Error("ParseStatus(degraded) expected error")
	}
}

func TestResultConstructors(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   Status
	}{
		{"success", Success("ok"), StatusSuccess},
		{"warning", Warning("careful"), StatusWarning},
		{"info", Info("fyi"), StatusInfo},
		{"failure", Failure("broken", errors.New("boom")), StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.Status != tt.want {
				t.Errorf("Status = %v, want %v", tt.result.Status, tt.want)
			}
			if tt.result.Timestamp.IsZero() {
				t.Error("Timestamp should not be zero")
			}
		})
	}
}

func TestFailure_EmptyMessageUsesError(t *testing.T) {
	r := Failure("", errors.New("disk unreachable"))
	if r.Message != "disk unreachable" {
		t.Errorf("Message = %q, want 'disk unreachable'", r.Message)
	}
	if r.Error == nil {
		t.Error("Error should be set")
	}
}

func TestResultBuildersReturnCopies(t *testing.T) {
	base := Warning("slow")
	withHint := base.WithRemediation("add an index")
	withDetails := withHint.WithDetails(map[string]any{"latency_ms": 900}).WithDuration(2 * time.Second)

	if base.Remediation != "" {
		t.Error("WithRemediation must not modify the receiver")
	}
	if withDetails.Remediation != "add an index" {
		t.Errorf("Remediation = %q", withDetails.Remediation)
	}
	if withDetails.Details["latency_ms"] != 900 {
		t.Errorf("Details = %v", withDetails.Details)
	}
	if withDetails.Duration != 2*time.Second {
		t.Errorf("Duration = %v, want 2s", withDetails.Duration)
	}
}
