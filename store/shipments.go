package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nimbusmart/nimbusmart-backend-go/models"
)

type Shipments struct {
	db *mongo.Database
}

func NewShipments(db *mongo.Database) *Shipments {
	return &Shipments{db: db}
}

func (s *Shipments) collection() *mongo.Collection {
	return s.db.Collection("shipments")
}

// Insert stores a new shipment. The unique index on trackingNumber rejects
// the (negligibly likely) generator collision.
func (s *Shipments) Insert(ctx context.Context, shipment *models.Shipment) error {
	if shipment.ID.IsZero() {
		shipment.ID = primitive.NewObjectID()
	}
	_, err := s.collection().InsertOne(ctx, shipment)
	if err != nil {
		return fmt.Errorf("insert shipment: %w", err)
	}
	return nil
}

func (s *Shipments) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	var shipment models.Shipment
	err := s.collection().FindOne(ctx, bson.M{"trackingNumber": trackingNumber}).Decode(&shipment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrShipmentNotFound
		}
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	return &shipment, nil
}

func (s *Shipments) Update(ctx context.Context, shipment *models.Shipment) error {
	result, err := s.collection().ReplaceOne(ctx, bson.M{"_id": shipment.ID}, shipment)
	if err != nil {
		return fmt.Errorf("update shipment: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrShipmentNotFound
	}
	return nil
}
