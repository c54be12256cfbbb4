package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nimbusmart/nimbusmart-backend-go/models"
)

// Events is the idempotency ledger for payment provider events.
type Events struct {
	db *mongo.Database
}

func NewEvents(db *mongo.Database) *Events {
	return &Events{db: db}
}

func (s *Events) collection() *mongo.Collection {
	return s.db.Collection("eventlogs")
}

// HasProcessed reports whether an event id has already been recorded. This is
// only a fast pre-check: two concurrent deliveries of a never-before-seen
// event can both pass it. Record is the authoritative gate.
func (s *Events) HasProcessed(ctx context.Context, eventID string) (bool, error) {
	err := s.collection().FindOne(ctx, bson.M{"eventId": eventID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check event log: %w", err)
	}
	return true, nil
}

// Record inserts the event id into the ledger. A duplicate-key error from the
// unique index means another delivery won the race; it is reported as
// alreadyProcessed, never as a failure.
func (s *Events) Record(ctx context.Context, eventID string, occurredAt time.Time) (alreadyProcessed bool, err error) {
	entry := models.EventLogEntry{EventID: eventID, CreatedAt: occurredAt}
	_, err = s.collection().InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return true, nil
		}
		return false, fmt.Errorf("record event: %w", err)
	}
	return false, nil
}

// LatestTimestamp returns the occurrence time of the newest recorded event,
// used by the poller as the lower bound for its next provider query. The zero
// time means the ledger is empty.
func (s *Events) LatestTimestamp(ctx context.Context) (time.Time, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var entry models.EventLogEntry
	err := s.collection().FindOne(ctx, bson.M{}, opts).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("latest event timestamp: %w", err)
	}
	return entry.CreatedAt, nil
}
