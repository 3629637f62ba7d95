// Package redispub publishes health report documents on a Redis channel.
package redispub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/healthnotify/health"
	"github.com/jonwraymond/healthnotify/notify"
)

// Alias is the configuration key of the Redis backend.
const Alias = "redisNotificationMethod"

// ErrNoSubscribers indicates a publish reached no subscriber while
// RequireSubscriber is set.
var ErrNoSubscribers = errors.New("redispub: no subscribers received the report")

// Settings are the Redis backend's own settings.
type Settings struct {
	Addr              string `mapstructure:"addr"`
	Channel           string `mapstructure:"channel"`
	Password          string `mapstructure:"password" notify:"optional"`
	DB                int    `mapstructure:"db" notify:"optional"`
	RequireSubscriber bool   `mapstructure:"requireSubscriber" notify:"optional"`
}

// Validate implements validation.Validatable.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Addr, validation.Required),
		validation.Field(&s.Channel, validation.Required),
		validation.Field(&s.DB, validation.Min(0)),
	)
}

// Publisher is the subset of the go-redis client the backend needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Backend publishes one message per report.
type Backend struct {
	opts     notify.Options
	settings Settings
	pub      Publisher
	closer   func() error
}

// New creates a Redis backend with its own client.
func New(opts notify.Options, s Settings) (notify.Backend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     s.Addr,
		Password: s.Password,
		DB:       s.DB,
	})
	b := NewWithPublisher(opts, s, client)
	b.closer = client.Close
	return b, nil
}

// NewWithPublisher creates a Redis backend over an existing publisher.
func NewWithPublisher(opts notify.Options, s Settings, pub Publisher) *Backend {
	return &Backend{opts: opts, settings: s, pub: pub}
}

// Register adds the Redis backend to reg.
func Register(reg *notify.Registry) error {
	return reg.Register(Alias, notify.Typed(New))
}

func (b *Backend) Alias() string           { return Alias }
func (b *Backend) Options() notify.Options { return b.opts }

// Send publishes the report document as JSON.
func (b *Backend) Send(ctx context.Context, report health.Report) error {
	body, err := json.Marshal(report.Document())
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	receivers, err := b.pub.Publish(ctx, b.settings.Channel, body).Result()
	if err != nil {
		return fmt.Errorf("publish %s: %w", b.settings.Channel, err)
	}
	if receivers == 0 && b.settings.RequireSubscriber {
		return ErrNoSubscribers
	}
	return nil
}

// Close closes the client created by New.
func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer()
}
