package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventLogEntry records an externally-received payment provider event. The
// unique index on eventId is the idempotency guarantee: a second insert for
// the same event id fails with a duplicate-key error and is treated as
// "already processed".
type EventLogEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	EventID   string             `bson:"eventId"`
	CreatedAt time.Time          `bson:"createdAt"`
}
