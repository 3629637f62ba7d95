package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/healthnotify/auth"
	"github.com/jonwraymond/healthnotify/cluster"
	"github.com/jonwraymond/healthnotify/config"
	"github.com/jonwraymond/healthnotify/health"
	"github.com/jonwraymond/healthnotify/notifier"
	"github.com/jonwraymond/healthnotify/notify"
	"github.com/jonwraymond/healthnotify/notify/email"
	"github.com/jonwraymond/healthnotify/notify/mongoarchive"
	"github.com/jonwraymond/healthnotify/notify/redispub"
	"github.com/jonwraymond/healthnotify/notify/slack"
	"github.com/jonwraymond/healthnotify/notify/webhook"
	"github.com/jonwraymond/healthnotify/observe"
	"github.com/jonwraymond/healthnotify/resilience"
	"github.com/jonwraymond/healthnotify/scheduler"
)

// backendRegistrations lists every backend the daemon knows about.
var backendRegistrations = []func(*notify.Registry) error{
	email.Register,
	slack.Register,
	webhook.Register,
	redispub.Register,
	mongoarchive.Register,
}

type app struct {
	cfg      *config.Config
	obs      observe.Observer
	logger   observe.Logger
	checks   *health.Registry
	backends *notify.Registry
	dispatch *notify.Dispatcher
	notifier *notifier.HealthCheckNotifier
	runner   *scheduler.Recurring
	server   *http.Server

	closers []func() error
}

// newApp wires every component from cfg. extraChecks are registered after
// the built-in checks.
func newApp(ctx context.Context, cfg *config.Config, extraChecks ...health.Check) (*app, error) {
	obs, err := observe.NewObserver(ctx, cfg.ObserveConfig())
	if err != nil {
		return nil, fmt.Errorf("observer: %w", err)
	}
	a := &app{cfg: cfg, obs: obs, logger: obs.Logger()}
	a.logger = a.logger.With(observe.Field{Key: "instance_id", Value: cfg.Service.InstanceID})

	fail := func(err error) (*app, error) {
		_ = a.Close(context.Background())
		return nil, err
	}

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return fail(fmt.Errorf("middleware: %w", err))
	}

	a.checks = health.NewRegistry(cfg.RegistryOptions()...)
	checks := append([]health.Check{health.NewMemoryCheck(health.MemoryCheckConfig{})}, extraChecks...)
	for _, c := range checks {
		if err := a.checks.Register(c); err != nil {
			return fail(err)
		}
	}

	resolver, err := cfg.Secrets.Resolver()
	if err != nil {
		return fail(err)
	}
	a.closers = append(a.closers, resolver.Close)

	a.backends = notify.NewRegistry(cfg.HealthChecks.Notification,
		notify.WithLogger(a.logger.With(observe.Field{Key: "component", Value: "backends"})),
		notify.WithSettingsResolver(resolver),
	)
	for _, register := range backendRegistrations {
		if err := register(a.backends); err != nil {
			return fail(err)
		}
	}
	a.closers = append(a.closers, a.backends.Close)

	role, ownership, err := a.clusterSignals()
	if err != nil {
		return fail(err)
	}

	a.dispatch = notify.NewDispatcher(cfg.DispatcherConfig(), notify.WithLogger(a.logger), notify.WithMiddleware(mw))
	a.notifier = notifier.New(notifier.Deps{
		Checks:     a.checks,
		Runner:     health.NewAggregator(cfg.AggregatorConfig(), health.WithLogger(a.logger), health.WithMiddleware(mw)),
		Backends:   a.backends,
		Dispatcher: a.dispatch,
		Role:       role,
		Ownership:  ownership,
	}, notifier.WithLogger(a.logger))

	a.runner = scheduler.New(a.notifier, cfg.SchedulerConfig(), scheduler.WithLogger(a.logger), scheduler.WithMiddleware(mw))

	if cfg.HTTP.Addr != "" {
		authn, err := cfg.HTTP.Authenticator(ctx, resolver)
		if err != nil {
			return fail(err)
		}
		var guard func(http.Handler) http.Handler
		if authn != nil {
			guard = auth.Middleware(authn, a.logger)
		}
		mux := http.NewServeMux()
		health.RegisterHandlers(mux, a.notifier, guard)
		var backends http.Handler = http.HandlerFunc(a.serveBackends)
		if guard != nil {
			backends = guard(backends)
		}
		mux.Handle("/health/backends", backends)
		a.server = &http.Server{Addr: cfg.HTTP.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}
	return a, nil
}

func (a *app) clusterSignals() (cluster.RoleProvider, cluster.Ownership, error) {
	c := a.cfg.Cluster
	if c.Mode != config.ClusterRedis {
		role, err := cluster.ParseRole(c.Role)
		if err != nil {
			return nil, nil, err
		}
		return cluster.StaticRole(role), cluster.StaticOwnership(c.SingleActive), nil
	}

	client := redis.NewClient(&redis.Options{Addr: c.Redis.Addr, Password: c.Redis.Password, DB: c.Redis.DB})
	a.closers = append(a.closers, client.Close)
	signals, err := cluster.NewRedisSignals(client, cluster.RedisSignalsConfig{
		InstanceID: a.cfg.Service.InstanceID,
		PrimaryKey: c.Redis.PrimaryKey,
		OwnerKey:   c.Redis.OwnerKey,
		Logger:     a.logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return signals, signals, nil
}

// backendStatus is the state of one registered notification backend.
type backendStatus struct {
	Alias   string `json:"alias"`
	Enabled bool   `json:"enabled"`
	// Circuit is the breaker state, or "off" without a circuit breaker.
	Circuit string `json:"circuit"`
}

func (a *app) backendStatuses(ctx context.Context) []backendStatus {
	var enabled []string
	for _, b := range a.backends.EnabledBackends(ctx) {
		enabled = append(enabled, b.Alias())
	}
	states := a.dispatch.BreakerStates()

	var out []backendStatus
	for _, alias := range a.backends.Aliases() {
		st := backendStatus{Alias: alias, Enabled: slices.Contains(enabled, alias), Circuit: "off"}
		if states != nil {
			st.Circuit = resilience.StateClosed.String()
			if s, ok := states[alias]; ok {
				st.Circuit = s.String()
			}
		}
		out = append(out, st)
	}
	return out
}

func (a *app) serveBackends(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(a.backendStatuses(r.Context()))
}

// reloadBackends rebuilds the notification backends once no cycle is running.
func (a *app) reloadBackends(ctx context.Context) {
	current, ok := a.notifier.ReloadBackends(ctx)
	if !ok {
		return
	}
	aliases := make([]string, len(current))
	for i, b := range current {
		aliases[i] = b.Alias()
	}
	a.logger.Info(ctx, "notification backends reloaded", observe.Field{Key: "enabled", Value: aliases})
}

// run serves the report endpoint and drives the notifier until ctx is done
// or the notifier retires. SIGHUP reloads the notification backends.
func (a *app) run(ctx context.Context) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				a.reloadBackends(ctx)
			}
		}
	}()

	if a.server != nil {
		go func() {
			a.logger.Info(ctx, "report endpoint listening", observe.Field{Key: "addr", Value: a.server.Addr})
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error(ctx, "report endpoint failed", observe.Field{Key: "error", Value: err})
			}
		}()
	}

	if !a.cfg.HealthChecks.Notification.Enabled {
		a.logger.Info(ctx, "health check notification disabled")
		<-ctx.Done()
		return nil
	}

	err := a.runner.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close stops the report endpoint and releases every resource.
func (a *app) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var errs []error
	if a.server != nil {
		errs = append(errs, a.server.Shutdown(ctx))
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	errs = append(errs, a.obs.Shutdown(ctx))
	return errors.Join(errs...)
}
