// Package mongoarchive stores every health report in a MongoDB collection.
package mongoarchive

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jonwraymond/healthnotify/health"
	"github.com/jonwraymond/healthnotify/notify"
)

// Alias is the configuration key of the MongoDB backend.
const Alias = "mongoNotificationMethod"

// Settings are the MongoDB backend's own settings.
type Settings struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection" notify:"optional"`
}

// Validate implements validation.Validatable.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.URI, validation.Required),
		validation.Field(&s.Database, validation.Required),
	)
}

// Inserter is the subset of *mongo.Collection the backend needs.
type Inserter interface {
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
}

// Record is the stored form of a report.
type Record struct {
	health.Document `bson:",inline"`
	ArchivedAt      time.Time `bson:"archived_at"`
}

// Backend archives one record per report.
type Backend struct {
	opts   notify.Options
	coll   Inserter
	now    func() time.Time
	client *mongo.Client
}

// New connects to MongoDB and creates an archive backend. The driver
// connects lazily, so an unreachable server surfaces on the first Send.
func New(opts notify.Options, s Settings) (notify.Backend, error) {
	if s.Collection == "" {
		s.Collection = "health_reports"
	}
	client, err := mongo.Connect(options.Client().ApplyURI(s.URI))
	if err != nil {
		return nil, fmt.Errorf("mongoarchive: connect: %w", err)
	}
	b := NewWithInserter(opts, client.Database(s.Database).Collection(s.Collection))
	b.client = client
	return b, nil
}

// NewWithInserter creates an archive backend over an existing collection.
func NewWithInserter(opts notify.Options, coll Inserter) *Backend {
	return &Backend{opts: opts, coll: coll, now: time.Now}
}

// Register adds the MongoDB backend to reg.
func Register(reg *notify.Registry) error {
	return reg.Register(Alias, notify.Typed(New))
}

func (b *Backend) Alias() string           { return Alias }
func (b *Backend) Options() notify.Options { return b.opts }

// Send inserts the report document.
func (b *Backend) Send(ctx context.Context, report health.Report) error {
	rec := Record{Document: report.Document(), ArchivedAt: b.now().UTC()}
	if _, err := b.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert report %s: %w", rec.ID, err)
	}
	return nil
}

// Close disconnects the client created by New.
func (b *Backend) Close() error {
	if b.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.client.Disconnect(ctx)
}
