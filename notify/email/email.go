// Package email delivers health reports over SMTP.
package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/jonwraymond/healthnotify/health"
	"github.com/jonwraymond/healthnotify/notify"
)

// Alias is the configuration key of the email backend.
const Alias = "emailNotificationMethod"

// Settings are the email backend's own settings.
type Settings struct {
	Host          string   `mapstructure:"host"`
	Port          int      `mapstructure:"port"`
	From          string   `mapstructure:"from"`
	Recipients    []string `mapstructure:"recipients"`
	Username      string   `mapstructure:"username" notify:"optional"`
	Password      string   `mapstructure:"password" notify:"optional"`
	SubjectPrefix string   `mapstructure:"subjectPrefix" notify:"optional"`
}

// Validate implements validation.Validatable.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Host, validation.Required, is.Host),
		validation.Field(&s.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&s.From, validation.Required, is.EmailFormat),
		validation.Field(&s.Recipients, validation.Required, validation.Each(is.EmailFormat)),
		validation.Field(&s.Password, validation.When(s.Username != "", validation.Required)),
	)
}

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Backend sends one mail per report.
type Backend struct {
	opts     notify.Options
	settings Settings
	send     SendFunc
	now      func() time.Time
}

// New creates an email backend.
func New(opts notify.Options, s Settings) (notify.Backend, error) {
	return &Backend{opts: opts, settings: s, send: smtp.SendMail, now: time.Now}, nil
}

// Register adds the email backend to reg.
func Register(reg *notify.Registry) error {
	return reg.Register(Alias, notify.Typed(New))
}

func (b *Backend) Alias() string           { return Alias }
func (b *Backend) Options() notify.Options { return b.opts }

// Send mails the rendered report to every recipient.
func (b *Backend) Send(ctx context.Context, report health.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(b.settings.Host, strconv.Itoa(b.settings.Port))
	var auth smtp.Auth
	if b.settings.Username != "" {
		auth = smtp.PlainAuth("", b.settings.Username, b.settings.Password, b.settings.Host)
	}
	if err := b.send(addr, auth, b.settings.From, b.settings.Recipients, b.message(report)); err != nil {
		return fmt.Errorf("smtp %s: %w", addr, err)
	}
	return nil
}

func (b *Backend) message(report health.Report) []byte {
	subject := notify.Subject(report)
	if b.settings.SubjectPrefix != "" {
		subject = b.settings.SubjectPrefix + " " + subject
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", b.settings.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(b.settings.Recipients, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", b.now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	body := notify.Render(report, b.opts.Verbosity)
	msg.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return msg.Bytes()
}
