// Package webhook posts health reports as JSON to an arbitrary endpoint,
// optionally authenticated with an HS256 bearer token.
package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jonwraymond/healthnotify/health"
	"github.com/jonwraymond/healthnotify/notify"
	"github.com/jonwraymond/healthnotify/resilience"
)

// Alias is the configuration key of the webhook backend.
const Alias = "webhookNotificationMethod"

// Subject is the JWT subject of every token the backend signs.
const Subject = "health-report"

// Settings are the webhook backend's own settings.
type Settings struct {
	URL        string        `mapstructure:"url"`
	SigningKey string        `mapstructure:"signingKey" notify:"optional"`
	Issuer     string        `mapstructure:"issuer" notify:"optional"`
	Audience   string        `mapstructure:"audience" notify:"optional"`
	TokenTTL   time.Duration `mapstructure:"tokenTtl" notify:"optional"`
	Attempts   int           `mapstructure:"attempts" notify:"optional"`
	Timeout    time.Duration `mapstructure:"timeout" notify:"optional"`
}

// Validate implements validation.Validatable.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.URL, validation.Required, is.URL),
		validation.Field(&s.SigningKey, validation.When(s.SigningKey != "", validation.Length(32, 0))),
		validation.Field(&s.Attempts, validation.Min(0), validation.Max(10)),
		validation.Field(&s.TokenTTL, validation.Min(time.Duration(0))),
		validation.Field(&s.Timeout, validation.Min(time.Duration(0))),
	)
}

// Payload is the JSON body posted for each report.
type Payload struct {
	Subject string          `json:"subject"`
	Text    string          `json:"text"`
	Report  health.Document `json:"report"`
}

// Backend posts one payload per report.
type Backend struct {
	opts     notify.Options
	settings Settings
	client   *http.Client
	exec     *resilience.Executor
	now      func() time.Time
}

// New creates a webhook backend.
func New(opts notify.Options, s Settings) (notify.Backend, error) {
	if s.Attempts == 0 {
		s.Attempts = 3
	}
	if s.Timeout == 0 {
		s.Timeout = 10 * time.Second
	}
	if s.TokenTTL == 0 {
		s.TokenTTL = 5 * time.Minute
	}
	return &Backend{
		opts:     opts,
		settings: s,
		client:   &http.Client{},
		exec: resilience.NewExecutor(resilience.Policy{
			Retry: resilience.RetryConfig{
				MaxAttempts:  s.Attempts,
				InitialDelay: 250 * time.Millisecond,
				Jitter:       true,
			},
			AttemptTimeout: s.Timeout,
		}),
		now: time.Now,
	}, nil
}

// Register adds the webhook backend to reg.
func Register(reg *notify.Registry) error {
	return reg.Register(Alias, notify.Typed(New))
}

func (b *Backend) Alias() string           { return Alias }
func (b *Backend) Options() notify.Options { return b.opts }

// Send posts the report document. Each attempt carries the same token.
func (b *Backend) Send(ctx context.Context, report health.Report) error {
	header := http.Header{}
	if b.settings.SigningKey != "" {
		token, err := b.sign(report)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		header.Set("Authorization", "Bearer "+token)
	}

	payload := Payload{
		Subject: notify.Subject(report),
		Text:    notify.Render(report, b.opts.Verbosity),
		Report:  report.Document(),
	}
	return b.exec.Execute(ctx, func(ctx context.Context) error {
		return notify.PostJSON(ctx, b.client, b.settings.URL, header, payload)
	})
}

func (b *Backend) sign(report health.Report) (string, error) {
	now := b.now()
	claims := jwt.RegisteredClaims{
		Subject:   Subject,
		Issuer:    b.settings.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(b.settings.TokenTTL)),
		ID:        report.ID.String(),
	}
	if b.settings.Audience != "" {
		claims.Audience = jwt.ClaimStrings{b.settings.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(b.settings.SigningKey))
}
