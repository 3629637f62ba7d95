package config

import (
	"errors"
	"fmt"
	"net"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/jonwraymond/healthnotify/cluster"
	"github.com/jonwraymond/healthnotify/health"
	"github.com/jonwraymond/healthnotify/notify"
	"github.com/jonwraymond/healthnotify/observe"
	"github.com/jonwraymond/healthnotify/scheduler"
	"github.com/jonwraymond/healthnotify/secret"
)

// EnvPrefix prefixes every environment override, e.g.
// HEALTHNOTIFY_LOGGING_LEVEL=debug.
const EnvPrefix = "HEALTHNOTIFY"

// Cluster modes.
const (
	ClusterStatic = "static"
	ClusterRedis  = "redis"
)

// ServiceConfig identifies the running process.
type ServiceConfig struct {
	Name       string `mapstructure:"name"`
	Version    string `mapstructure:"version"`
	InstanceID string `mapstructure:"instance_id"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Level   string `mapstructure:"level"`
}

// TracingConfig configures tracing.
type TracingConfig struct {
	Enabled   bool    `mapstructure:"enabled"`
	Exporter  string  `mapstructure:"exporter"`
	SamplePct float64 `mapstructure:"sample_pct"`
}

// MetricsConfig configures metrics.
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Exporter string `mapstructure:"exporter"`
}

// ObserveConfig groups tracing and metrics.
type ObserveConfig struct {
	Tracing TracingConfig `mapstructure:"tracing"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MethodConfig is the configuration entry of one notification backend.
type MethodConfig struct {
	Enabled     bool              `mapstructure:"enabled"`
	FailureOnly bool              `mapstructure:"failure_only"`
	Verbosity   string            `mapstructure:"verbosity"`
	Settings    map[string]string `mapstructure:"settings"`
}

// NotificationConfig configures the recurring notification cycle.
type NotificationConfig struct {
	Enabled         bool                    `mapstructure:"enabled"`
	FirstRunDelay   time.Duration           `mapstructure:"first_run_delay"`
	Period          time.Duration           `mapstructure:"period"`
	Parallel        bool                    `mapstructure:"parallel"`
	MaxConcurrent   int                     `mapstructure:"max_concurrent"`
	SendTimeout     time.Duration           `mapstructure:"send_timeout"`
	CheckTimeout    time.Duration           `mapstructure:"check_timeout"`
	ParallelChecks  bool                    `mapstructure:"parallel_checks"`
	BreakerFailures int                     `mapstructure:"breaker_failures"`
	BreakerReset    time.Duration           `mapstructure:"breaker_reset"`
	DisabledChecks  []string                `mapstructure:"disabled_checks"`
	Methods         map[string]MethodConfig `mapstructure:"methods"`
}

// HealthChecksConfig is the health check section.
type HealthChecksConfig struct {
	DisabledChecks []string           `mapstructure:"disabled_checks"`
	Notification   NotificationConfig `mapstructure:"notification"`
}

// RedisConfig locates the keys an external coordinator writes.
type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	PrimaryKey string `mapstructure:"primary_key"`
	OwnerKey   string `mapstructure:"owner_key"`
}

// ClusterConfig selects where role and ownership signals come from.
type ClusterConfig struct {
	Mode         string      `mapstructure:"mode"`
	Role         string      `mapstructure:"role"`
	SingleActive bool        `mapstructure:"single_active"`
	Redis        RedisConfig `mapstructure:"redis"`
}

// SecretsConfig configures resolution of secretref: values in backend settings.
type SecretsConfig struct {
	Providers []string      `mapstructure:"providers"`
	FileDir   string        `mapstructure:"file_dir"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	Strict    bool          `mapstructure:"strict"`
}

// HTTPConfig configures the report endpoint. An empty Addr disables it.
// The report route requires credentials when APIKeys or JWTSigningKey is
// set. Both accept secret references.
type HTTPConfig struct {
	Addr          string   `mapstructure:"addr"`
	APIKeyHeader  string   `mapstructure:"api_key_header"`
	APIKeys       []string `mapstructure:"api_keys"`
	JWTSigningKey string   `mapstructure:"jwt_signing_key"`
	JWTIssuer     string   `mapstructure:"jwt_issuer"`
	JWTAudience   string   `mapstructure:"jwt_audience"`
}

// AuthEnabled reports whether the report route requires credentials.
func (h HTTPConfig) AuthEnabled() bool {
	return len(h.APIKeys) > 0 || h.JWTSigningKey != ""
}

// Config is the complete healthnotify configuration.
type Config struct {
	Service      ServiceConfig      `mapstructure:"service"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Observe      ObserveConfig      `mapstructure:"observe"`
	HealthChecks HealthChecksConfig `mapstructure:"health_checks"`
	Cluster      ClusterConfig      `mapstructure:"cluster"`
	Secrets      SecretsConfig      `mapstructure:"secrets"`
	HTTP         HTTPConfig         `mapstructure:"http"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "healthnotify")
	v.SetDefault("service.version", "dev")
	v.SetDefault("service.instance_id", "")
	v.SetDefault("logging.enabled", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("observe.tracing.enabled", false)
	v.SetDefault("observe.tracing.exporter", "none")
	v.SetDefault("observe.tracing.sample_pct", 1.0)
	v.SetDefault("observe.metrics.enabled", false)
	v.SetDefault("observe.metrics.exporter", "none")
	v.SetDefault("health_checks.disabled_checks", []string{})
	v.SetDefault("health_checks.notification.enabled", true)
	v.SetDefault("health_checks.notification.first_run_delay", "1m")
	v.SetDefault("health_checks.notification.period", "24h")
	v.SetDefault("health_checks.notification.parallel", false)
	v.SetDefault("health_checks.notification.max_concurrent", 4)
	v.SetDefault("health_checks.notification.send_timeout", "30s")
	v.SetDefault("health_checks.notification.check_timeout", "0s")
	v.SetDefault("health_checks.notification.parallel_checks", false)
	v.SetDefault("health_checks.notification.breaker_failures", 0)
	v.SetDefault("health_checks.notification.breaker_reset", "1h")
	v.SetDefault("health_checks.notification.disabled_checks", []string{})
	v.SetDefault("cluster.mode", ClusterStatic)
	v.SetDefault("cluster.role", "primary")
	v.SetDefault("cluster.single_active", true)
	v.SetDefault("cluster.redis.addr", "localhost:6379")
	v.SetDefault("cluster.redis.password", "")
	v.SetDefault("cluster.redis.db", 0)
	v.SetDefault("cluster.redis.primary_key", cluster.DefaultPrimaryKey)
	v.SetDefault("cluster.redis.owner_key", cluster.DefaultOwnerKey)
	v.SetDefault("secrets.providers", []string{"env"})
	v.SetDefault("secrets.file_dir", "")
	v.SetDefault("secrets.cache_ttl", "0s")
	v.SetDefault("secrets.strict", true)
	v.SetDefault("http.addr", "")
	v.SetDefault("http.api_key_header", "X-API-Key")
	v.SetDefault("http.api_keys", []string{})
	v.SetDefault("http.jwt_signing_key", "")
	v.SetDefault("http.jwt_issuer", "")
	v.SetDefault("http.jwt_audience", "")
}

// Load reads path, or healthnotify.yaml from the working directory and
// /etc/healthnotify when path is empty, applies environment overrides and
// validates the result. A missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("healthnotify")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/healthnotify")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if cfg.Service.InstanceID == "" {
		cfg.Service.InstanceID = uuid.NewString()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Validate implements validation.Validatable.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Service),
		validation.Field(&c.Logging),
		validation.Field(&c.Observe),
		validation.Field(&c.HealthChecks),
		validation.Field(&c.Cluster),
		validation.Field(&c.Secrets),
		validation.Field(&c.HTTP),
	)
}

// Validate implements validation.Validatable.
func (s ServiceConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.InstanceID, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (l LoggingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In(stringsToAny(observe.ValidLogLevels)...)),
	)
}

// Validate implements validation.Validatable.
func (o ObserveConfig) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Tracing),
		validation.Field(&o.Metrics),
	)
}

// Validate implements validation.Validatable.
func (t TracingConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Exporter, validation.In(stringsToAny(observe.ValidTracingExporters)...)),
		validation.Field(&t.SamplePct, validation.Min(0.0), validation.Max(1.0)),
	)
}

// Validate implements validation.Validatable.
func (m MetricsConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Exporter, validation.In(stringsToAny(observe.ValidMetricsExporters)...)),
	)
}

// Validate implements validation.Validatable.
func (h HealthChecksConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.DisabledChecks, validation.Each(validation.Required)),
		validation.Field(&h.Notification),
	)
}

// Validate implements validation.Validatable.
func (n NotificationConfig) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.FirstRunDelay, validation.Min(time.Duration(0))),
		validation.Field(&n.Period, validation.Required, validation.Min(time.Second)),
		validation.Field(&n.MaxConcurrent, validation.Min(0)),
		validation.Field(&n.SendTimeout, validation.Min(time.Duration(0))),
		validation.Field(&n.CheckTimeout, validation.Min(time.Duration(0))),
		validation.Field(&n.BreakerFailures, validation.Min(0)),
		validation.Field(&n.DisabledChecks, validation.Each(validation.Required)),
		validation.Field(&n.Methods),
	)
}

// Validate implements validation.Validatable.
func (m MethodConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Verbosity, validation.By(func(any) error {
			_, err := notify.ParseVerbosity(m.Verbosity)
			return err
		})),
	)
}

// Validate implements validation.Validatable.
func (c ClusterConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Mode, validation.Required, validation.In(ClusterStatic, ClusterRedis)),
		validation.Field(&c.Role, validation.By(func(any) error {
			_, err := cluster.ParseRole(c.Role)
			return err
		})),
		validation.Field(&c.Redis, validation.Skip.When(c.Mode != ClusterRedis)),
	)
}

// Validate implements validation.Validatable.
func (r RedisConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Addr, validation.Required, is.DialString),
		validation.Field(&r.DB, validation.Min(0)),
	)
}

// Validate implements validation.Validatable.
func (s SecretsConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Providers, validation.Each(validation.In(stringsToAny(secret.Builtin)...))),
		validation.Field(&s.FileDir, validation.When(slices.Contains(s.Providers, "file"), validation.Required)),
		validation.Field(&s.CacheTTL, validation.Min(time.Duration(0))),
	)
}

// Validate implements validation.Validatable.
func (h HTTPConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Addr, validation.By(listenAddr)),
		validation.Field(&h.APIKeyHeader, validation.When(len(h.APIKeys) > 0, validation.Required)),
		validation.Field(&h.APIKeys, validation.Each(validation.Required)),
		validation.Field(&h.JWTSigningKey, validation.When(h.JWTSigningKey != "" && !secret.HasRef(h.JWTSigningKey), validation.Length(32, 0))),
	)
}

// ObserveConfig returns the observe.Config for NewObserver.
func (c *Config) ObserveConfig() observe.Config {
	return observe.Config{
		ServiceName: c.Service.Name,
		Version:     c.Service.Version,
		Tracing: observe.TracingConfig{
			Enabled:   c.Observe.Tracing.Enabled,
			Exporter:  c.Observe.Tracing.Exporter,
			SamplePct: c.Observe.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.Observe.Metrics.Enabled,
			Exporter: c.Observe.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: c.Logging.Enabled,
			Level:   c.Logging.Level,
		},
	}
}

// RegistryOptions returns the disabled-check options for health.NewRegistry.
func (c *Config) RegistryOptions() []health.RegistryOption {
	return []health.RegistryOption{
		health.WithDisabled(c.HealthChecks.DisabledChecks...),
		health.WithNotificationDisabled(c.HealthChecks.Notification.DisabledChecks...),
	}
}

// AggregatorConfig returns the check runner configuration.
func (c *Config) AggregatorConfig() health.AggregatorConfig {
	n := c.HealthChecks.Notification
	return health.AggregatorConfig{CheckTimeout: n.CheckTimeout, Parallel: n.ParallelChecks}
}

// DispatcherConfig returns the notification dispatcher configuration.
func (c *Config) DispatcherConfig() notify.DispatcherConfig {
	n := c.HealthChecks.Notification
	return notify.DispatcherConfig{
		SendTimeout:     n.SendTimeout,
		Parallel:        n.Parallel,
		MaxConcurrent:   n.MaxConcurrent,
		BreakerFailures: n.BreakerFailures,
		BreakerReset:    n.BreakerReset,
	}
}

// SchedulerConfig returns the recurring runner configuration.
func (c *Config) SchedulerConfig() scheduler.Config {
	n := c.HealthChecks.Notification
	return scheduler.Config{Delay: n.FirstRunDelay, Period: n.Period}
}

// Lookup implements notify.ConfigProvider. Aliases match ignoring case
// because viper lowercases map keys.
func (n NotificationConfig) Lookup(alias string) (notify.Descriptor, bool) {
	for key, m := range n.Methods {
		if !strings.EqualFold(key, alias) {
			continue
		}
		verbosity, _ := notify.ParseVerbosity(m.Verbosity)
		return notify.Descriptor{
			Alias:       alias,
			Enabled:     m.Enabled,
			FailureOnly: m.FailureOnly,
			Verbosity:   verbosity,
			Settings:    m.Settings,
		}, true
	}
	return notify.Descriptor{}, false
}

// listenAddr accepts host:port with an optional host, e.g. ":8080".
func listenAddr(value any) error {
	addr, _ := value.(string)
	if addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return errors.New("must be a valid listen address")
	}
	return nil
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
