package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/standmarket/marketplace/internal/core/domain"
)

// Outbox implements ports.Notifier by recording each notification in the
// outbox collection, from where a mail relay picks it up.
type Outbox struct {
	col *mongo.Collection
	log zerolog.Logger
}

func NewOutbox(db *mongo.Database, log zerolog.Logger) *Outbox {
	return &Outbox{col: db.Collection(collOutbox), log: log}
}

type outboxDoc struct {
	domain.Notification `bson:",inline"`
	QueuedAt            time.Time `bson:"queued_at"`
	Sent                bool      `bson:"sent"`
}

func (o *Outbox) Deliver(ctx context.Context, n domain.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := o.col.InsertOne(ctx, outboxDoc{Notification: n, QueuedAt: time.Now().UTC()}); err != nil {
		return fmt.Errorf("outbox insert: %w", err)
	}
	o.log.Info().
		Str("kind", string(n.Kind)).
		Str("recipient", n.Recipient).
		Msg("notification queued for delivery")
	return nil
}

func (o *Outbox) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, o.col, mongo.IndexModel{Keys: bson.D{{Key: "sent", Value: 1}, {Key: "queued_at", Value: 1}}})
}
