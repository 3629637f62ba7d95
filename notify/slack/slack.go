// Package slack posts health reports to a Slack incoming webhook.
package slack

import (
	"context"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/jonwraymond/healthnotify/health"
	"github.com/jonwraymond/healthnotify/notify"
	"github.com/jonwraymond/healthnotify/resilience"
)

// Alias is the configuration key of the Slack backend.
const Alias = "slackNotificationMethod"

// Settings are the Slack backend's own settings.
type Settings struct {
	WebHookURL string `mapstructure:"webHookUrl"`
	Channel    string `mapstructure:"channel" notify:"optional"`
	Username   string `mapstructure:"username" notify:"optional"`
	IconEmoji  string `mapstructure:"iconEmoji" notify:"optional"`
	Attempts   int    `mapstructure:"attempts" notify:"optional"`
}

// Validate implements validation.Validatable.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.WebHookURL, validation.Required, is.URL),
		validation.Field(&s.Attempts, validation.Min(0), validation.Max(10)),
	)
}

type message struct {
	Text      string `json:"text"`
	Channel   string `json:"channel,omitempty"`
	Username  string `json:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty"`
}

// Backend posts one message per report.
type Backend struct {
	opts     notify.Options
	settings Settings
	client   *http.Client
	exec     *resilience.Executor
}

// New creates a Slack backend.
func New(opts notify.Options, s Settings) (notify.Backend, error) {
	attempts := s.Attempts
	if attempts == 0 {
		attempts = 3
	}
	return &Backend{
		opts:     opts,
		settings: s,
		client:   &http.Client{Timeout: 10 * time.Second},
		exec: resilience.NewExecutor(resilience.Policy{Retry: resilience.RetryConfig{
			MaxAttempts:  attempts,
			InitialDelay: 500 * time.Millisecond,
			Jitter:       true,
		}}),
	}, nil
}

// Register adds the Slack backend to reg.
func Register(reg *notify.Registry) error {
	return reg.Register(Alias, notify.Typed(New))
}

func (b *Backend) Alias() string           { return Alias }
func (b *Backend) Options() notify.Options { return b.opts }

// Send posts the rendered report, retrying transient failures.
func (b *Backend) Send(ctx context.Context, report health.Report) error {
	msg := message{
		Text:      "```" + notify.Render(report, b.opts.Verbosity) + "```",
		Channel:   b.settings.Channel,
		Username:  b.settings.Username,
		IconEmoji: b.settings.IconEmoji,
	}
	return b.exec.Execute(ctx, func(ctx context.Context) error {
		return notify.PostJSON(ctx, b.client, b.settings.WebHookURL, nil, msg)
	})
}
