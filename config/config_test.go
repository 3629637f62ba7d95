package config_test

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jonwraymond/healthnotify/auth"
	"github.com/jonwraymond/healthnotify/config"
	"github.com/jonwraymond/healthnotify/notify"
)

const fullConfig = `
service:
  name: healthnotify
  instance_id: node-1
logging:
  level: debug
health_checks:
  disabled_checks:
    - 3e5c9a6c-checks-disk
  notification:
    first_run_delay: 5m
    period: 12h
    parallel: true
    max_concurrent: 2
    send_timeout: 10s
    disabled_checks:
      - 7f1c-macro-errors
    methods:
      emailNotificationMethod:
        enabled: true
        failure_only: true
        verbosity: Summary
        settings:
          host: smtp.example.com
          port: 587
          recipients: ops@example.com
      slackNotificationMethod:
        enabled: false
        verbosity: Detailed
        settings:
          webHookUrl: https://hooks.slack.com/services/T/B/X
cluster:
  mode: static
  role: primary
  single_active: true
secrets:
  providers: [env]
  cache_ttl: 1m
`

var _ = Describe("Config", func() {
	var tempDir string

	writeConfig := func(content string) string {
		path := filepath.Join(tempDir, "healthnotify.yaml")
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		tempDir = GinkgoT().TempDir()
	})

	Describe("Load", func() {
		Context("with a complete config file", func() {
			var cfg *config.Config

			BeforeEach(func() {
				var err error
				cfg, err = config.Load(writeConfig(fullConfig))
				Expect(err).NotTo(HaveOccurred())
			})

			It("parses durations and flags", func() {
				n := cfg.HealthChecks.Notification
				Expect(n.FirstRunDelay).To(Equal(5 * time.Minute))
				Expect(n.Period).To(Equal(12 * time.Hour))
				Expect(n.Parallel).To(BeTrue())
				Expect(cfg.DispatcherConfig().MaxConcurrent).To(Equal(2))
				Expect(cfg.DispatcherConfig().SendTimeout).To(Equal(10 * time.Second))
				Expect(cfg.SchedulerConfig().Delay).To(Equal(5 * time.Minute))
			})

			It("keeps both disabled check lists", func() {
				Expect(cfg.HealthChecks.DisabledChecks).To(ConsistOf("3e5c9a6c-checks-disk"))
				Expect(cfg.HealthChecks.Notification.DisabledChecks).To(ConsistOf("7f1c-macro-errors"))
				Expect(cfg.RegistryOptions()).To(HaveLen(2))
			})

			It("looks up backend descriptors by alias ignoring case", func() {
				d, ok := cfg.HealthChecks.Notification.Lookup("emailNotificationMethod")
				Expect(ok).To(BeTrue())
				Expect(d.Alias).To(Equal("emailNotificationMethod"))
				Expect(d.Enabled).To(BeTrue())
				Expect(d.FailureOnly).To(BeTrue())
				Expect(d.Verbosity).To(Equal(notify.VerbositySummary))
				Expect(d.Settings).To(HaveKeyWithValue("port", "587"))

				slack, ok := cfg.HealthChecks.Notification.Lookup("slackNotificationMethod")
				Expect(ok).To(BeTrue())
				Expect(slack.Enabled).To(BeFalse())
				Expect(slack.Verbosity).To(Equal(notify.VerbosityDetailed))
			})

			It("reports aliases without an entry as absent", func() {
				_, ok := cfg.HealthChecks.Notification.Lookup("webhookNotificationMethod")
				Expect(ok).To(BeFalse())
			})

			It("maps the observe section", func() {
				oc := cfg.ObserveConfig()
				Expect(oc.ServiceName).To(Equal("healthnotify"))
				Expect(oc.Logging.Level).To(Equal("debug"))
				Expect(oc.Validate()).To(Succeed())
			})

			It("builds a secret resolver", func() {
				r, err := cfg.Secrets.Resolver()
				Expect(err).NotTo(HaveOccurred())
				DeferCleanup(r.Close)

				GinkgoT().Setenv("HEALTHNOTIFY_TEST_SECRET", "s3cret")
				out, err := r.ResolveMap(context.Background(), map[string]string{"password": "secretref:env:HEALTHNOTIFY_TEST_SECRET"})
				Expect(err).NotTo(HaveOccurred())
				Expect(out).To(HaveKeyWithValue("password", "s3cret"))
			})
		})

		Context("with defaults only", func() {
			It("fills every section", func() {
				cfg, err := config.Load(writeConfig("service:\n  name: svc\n"))
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Service.InstanceID).NotTo(BeEmpty())
				Expect(cfg.HealthChecks.Notification.Enabled).To(BeTrue())
				Expect(cfg.HealthChecks.Notification.Period).To(Equal(24 * time.Hour))
				Expect(cfg.HealthChecks.Notification.SendTimeout).To(Equal(30 * time.Second))
				Expect(cfg.Cluster.Mode).To(Equal(config.ClusterStatic))
				Expect(cfg.Secrets.Providers).To(ConsistOf("env"))
			})
		})

		Context("with environment overrides", func() {
			It("prefers HEALTHNOTIFY_ variables", func() {
				GinkgoT().Setenv("HEALTHNOTIFY_LOGGING_LEVEL", "warn")
				GinkgoT().Setenv("HEALTHNOTIFY_CLUSTER_ROLE", "replica")

				cfg, err := config.Load(writeConfig(fullConfig))
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Logging.Level).To(Equal("warn"))
				Expect(cfg.Cluster.Role).To(Equal("replica"))
			})
		})

		Context("with invalid values", func() {
			DescribeTable("rejects the configuration",
				func(content string) {
					_, err := config.Load(writeConfig(content))
					Expect(err).To(HaveOccurred())
				},
				Entry("unknown log level", "logging:\n  level: trace\n"),
				Entry("unknown cluster mode", "cluster:\n  mode: etcd\n"),
				Entry("unknown role", "cluster:\n  role: leader\n"),
				Entry("period too short", "health_checks:\n  notification:\n    period: 10ms\n"),
				Entry("unknown verbosity", "health_checks:\n  notification:\n    methods:\n      x:\n        verbosity: loud\n"),
				Entry("file secrets without dir", "secrets:\n  providers: [file]\n"),
				Entry("redis mode without addr", "cluster:\n  mode: redis\n  redis:\n    addr: \"\"\n"),
				Entry("listen address without port", "http:\n  addr: localhost\n"),
				Entry("short jwt key", "http:\n  jwt_signing_key: tooshort\n"),
			)
		})

		Context("with report endpoint credentials", func() {
			It("builds an authenticator that accepts the configured key", func() {
				GinkgoT().Setenv("HEALTHNOTIFY_TEST_KEY", "report-key")
				cfg, err := config.Load(writeConfig("http:\n  addr: \":8080\"\n  api_keys: [\"secretref:env:HEALTHNOTIFY_TEST_KEY\"]\n  jwt_signing_key: secretref:env:HEALTHNOTIFY_TEST_KEY\n"))
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.HTTP.AuthEnabled()).To(BeTrue())

				r, err := cfg.Secrets.Resolver()
				Expect(err).NotTo(HaveOccurred())
				DeferCleanup(r.Close)

				authn, err := cfg.HTTP.Authenticator(context.Background(), r)
				Expect(err).NotTo(HaveOccurred())
				h := http.Header{}
				h.Set("X-API-Key", "report-key")
				id, err := authn.Authenticate(context.Background(), h)
				Expect(err).NotTo(HaveOccurred())
				Expect(id.Method).To(Equal(auth.MethodAPIKey))
			})

			It("returns no authenticator without credentials", func() {
				cfg, err := config.Load(writeConfig("http:\n  addr: \":8080\"\n"))
				Expect(err).NotTo(HaveOccurred())
				authn, err := cfg.HTTP.Authenticator(context.Background(), nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(authn).To(BeNil())
			})
		})

		Context("with a missing file", func() {
			It("fails when the path is explicit", func() {
				_, err := config.Load(filepath.Join(tempDir, "missing.yaml"))
				Expect(err).To(HaveOccurred())
			})
		})
	})
})
