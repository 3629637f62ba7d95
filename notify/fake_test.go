package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/jonwraymond/healthnotify/health"
)

type fakeBackend struct {
	alias string
	opts  Options

	mu     sync.Mutex
	sends  int
	err    error
	panicV any
	block  chan struct{}
	closed bool
	onSend func(ctx context.Context)
}

func (f *fakeBackend) Alias() string    { return f.alias }
func (f *fakeBackend) Options() Options { return f.opts }

func (f *fakeBackend) Send(ctx context.Context, _ health.Report) error {
	f.mu.Lock()
	f.sends++
	f.mu.Unlock()
	if f.onSend != nil {
		f.onSend(ctx)
	}
	if f.block != nil {
		<-f.block
	}
	if f.panicV != nil {
		panic(f.panicV)
	}
	return f.err
}

func (f *fakeBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeBackend) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sends
}

func (f *fakeBackend) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func fakeFactory(b *fakeBackend) Factory {
	return func(_ context.Context, opts Options, _ map[string]string) (Backend, error) {
		b.opts = opts
		return b, nil
	}
}

var errTransport = errors.New("dial tcp: connection refused")

func reportOf(statuses ...health.Status) health.Report {
	entries := make([]health.Entry, len(statuses))
	for i, s := range statuses {
		entries[i] = health.Entry{
			CheckID:   string(rune('A' + i)),
			CheckName: "check " + string(rune('A'+i)),
			Result:    health.Result{Status: s, Message: s.String()},
		}
	}
	return health.NewReport(entries...)
}
