package notify

import "github.com/jonwraymond/healthnotify/observe"

type options struct {
	logger   observe.Logger
	mw       *observe.Middleware
	resolver SettingsResolver
}

// Option configures a Registry or a Dispatcher.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMiddleware wraps every send with tracing and metrics. Dispatcher only.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(o *options) {
		if mw != nil {
			o.mw = mw
		}
	}
}

// WithSettingsResolver resolves settings values before binding. Registry only.
func WithSettingsResolver(r SettingsResolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: observe.NopLogger(), mw: observe.NopMiddleware()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
