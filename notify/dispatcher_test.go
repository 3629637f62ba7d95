package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/healthnotify/health"
	"github.com/jonwraymond/healthnotify/observe"
	"github.com/jonwraymond/healthnotify/resilience"
)

func TestDispatcher_FailureOnly(t *testing.T) {
	tests := []struct {
		name     string
		report   health.Report
		wantSend int
	}{
		{name: "all success", report: reportOf(health.StatusSuccess, health.StatusSuccess), wantSend: 0},
		{name: "warning present", report: reportOf(health.StatusSuccess, health.StatusWarning), wantSend: 1},
		{name: "error present", report: reportOf(health.StatusError), wantSend: 1},
		{name: "info present", report: reportOf(health.StatusInfo), wantSend: 1},
		{name: "empty report", report: reportOf(), wantSend: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{alias: "mail", opts: Options{Enabled: true, FailureOnly: true}}
			outcomes := NewDispatcher(DispatcherConfig{}).Dispatch(context.Background(), tt.report, []Backend{b})

			if got := b.sendCount(); got != tt.wantSend {
				t.Errorf("sends = %d, want %d", got, tt.wantSend)
			}
			if tt.wantSend == 0 && (!outcomes[0].Skipped || outcomes[0].Reason != ReasonFailureOnly) {
				t.Errorf("outcome = %+v, want failure-only skip", outcomes[0])
			}
		})
	}
}

func TestDispatcher_MailThrowsSlackStillSent(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		name := "sequential"
		if parallel {
			name = "parallel"
		}
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			mail := &fakeBackend{alias: "emailNotificationMethod", opts: Options{Enabled: true, FailureOnly: true}, err: errTransport}
			slack := &fakeBackend{alias: "slackNotificationMethod", opts: Options{Enabled: true}}

			d := NewDispatcher(DispatcherConfig{Parallel: parallel, MaxConcurrent: 1}, WithLogger(observe.NewLoggerWithWriter("info", &buf)))
			report := reportOf(health.StatusSuccess, health.StatusWarning)
			outcomes := d.Dispatch(context.Background(), report, []Backend{mail, slack})

			if mail.sendCount() != 1 || slack.sendCount() != 1 {
				t.Fatalf("sends mail=%d slack=%d, want 1 each", mail.sendCount(), slack.sendCount())
			}
			if len(outcomes) != 2 {
				t.Fatalf("len(outcomes) = %d, want 2", len(outcomes))
			}
			if outcomes[0].Alias != "emailNotificationMethod" || !errors.Is(outcomes[0].Err, ErrSend) || !errors.Is(outcomes[0].Err, errTransport) {
				t.Errorf("mail outcome = %+v, want send error wrapping transport error", outcomes[0])
			}
			if outcomes[1].Alias != "slackNotificationMethod" || !outcomes[1].Sent {
				t.Errorf("slack outcome = %+v, want sent", outcomes[1])
			}
			if sent, skipped, failed := Tally(outcomes); sent != 1 || skipped != 0 || failed != 1 {
				t.Errorf("Tally() = %d, %d, %d; want 1, 0, 1", sent, skipped, failed)
			}
			if !strings.Contains(buf.String(), "notification send failed") {
				t.Errorf("expected failure to be logged: %s", buf.String())
			}
		})
	}
}

func TestDispatcher_PanickingBackendIsIsolated(t *testing.T) {
	bad := &fakeBackend{alias: "bad", opts: Options{Enabled: true}, panicV: "nil map"}
	good := &fakeBackend{alias: "good", opts: Options{Enabled: true}}

	outcomes := NewDispatcher(DispatcherConfig{}).Dispatch(context.Background(), reportOf(health.StatusError), []Backend{bad, good})
	if !errors.Is(outcomes[0].Err, ErrBackendPanicked) {
		t.Errorf("bad outcome err = %v, want ErrBackendPanicked", outcomes[0].Err)
	}
	if !outcomes[1].Sent {
		t.Errorf("good outcome = %+v, want sent", outcomes[1])
	}
}

func TestDispatcher_CancellationBetweenSends(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sendCtxErr error
	first := &fakeBackend{alias: "first", opts: Options{Enabled: true}, onSend: func(sendCtx context.Context) {
		cancel()
		sendCtxErr = sendCtx.Err()
	}}
	second := &fakeBackend{alias: "second", opts: Options{Enabled: true}}

	outcomes := NewDispatcher(DispatcherConfig{}).Dispatch(ctx, reportOf(health.StatusError), []Backend{first, second})

	if !outcomes[0].Sent {
		t.Errorf("in-flight send should complete, outcome = %+v", outcomes[0])
	}
	if sendCtxErr != nil {
		t.Errorf("in-flight send context error = %v, want nil", sendCtxErr)
	}
	if second.sendCount() != 0 {
		t.Error("backend after cancellation must not be sent to")
	}
	if !outcomes[1].Skipped || outcomes[1].Reason != ReasonCancelled {
		t.Errorf("second outcome = %+v, want cancelled skip", outcomes[1])
	}
}

func TestDispatcher_SendTimeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	slow := &fakeBackend{alias: "slow", opts: Options{Enabled: true}, block: block}

	outcomes := NewDispatcher(DispatcherConfig{SendTimeout: 20 * time.Millisecond}).
		Dispatch(context.Background(), reportOf(health.StatusError), []Backend{slow})

	if !errors.Is(outcomes[0].Err, resilience.ErrTimeout) {
		t.Errorf("outcome err = %v, want ErrTimeout", outcomes[0].Err)
	}
}

func TestDispatcher_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	flaky := &fakeBackend{alias: "flaky", opts: Options{Enabled: true}, err: errTransport}
	d := NewDispatcher(DispatcherConfig{BreakerFailures: 2, BreakerReset: time.Hour})
	report := reportOf(health.StatusError)

	for i := 0; i < 2; i++ {
		if out := d.Dispatch(context.Background(), report, []Backend{flaky}); out[0].Err == nil {
			t.Fatalf("cycle %d: expected send error", i)
		}
	}

	out := d.Dispatch(context.Background(), report, []Backend{flaky})
	if !out[0].Skipped || out[0].Reason != ReasonCircuitOpen {
		t.Errorf("outcome = %+v, want circuit-open skip", out[0])
	}
	if flaky.sendCount() != 2 {
		t.Errorf("sends = %d, want 2", flaky.sendCount())
	}
	if got := d.BreakerStates()["flaky"]; got != resilience.StateOpen {
		t.Errorf("breaker state = %v, want open", got)
	}
}

func TestDispatcher_NoBackends(t *testing.T) {
	if out := NewDispatcher(DispatcherConfig{}).Dispatch(context.Background(), reportOf(health.StatusError), nil); len(out) != 0 {
		t.Errorf("Dispatch() = %v, want no outcomes", out)
	}
}
