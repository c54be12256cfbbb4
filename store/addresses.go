package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nimbusmart/nimbusmart-backend-go/models"
)

type Addresses struct {
	db *mongo.Database
}

func NewAddresses(db *mongo.Database) *Addresses {
	return &Addresses{db: db}
}

func (s *Addresses) collection() *mongo.Collection {
	return s.db.Collection("addresses")
}

func (s *Addresses) Insert(ctx context.Context, address *models.Address) error {
	if address.ID.IsZero() {
		address.ID = primitive.NewObjectID()
	}
	_, err := s.collection().InsertOne(ctx, address)
	if err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}

func (s *Addresses) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Address, error) {
	var address models.Address
	err := s.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&address)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("get address: %w", err)
	}
	return &address, nil
}

func (s *Addresses) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	cursor, err := s.collection().Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer cursor.Close(ctx)

	var addresses []models.Address
	if err := cursor.All(ctx, &addresses); err != nil {
		return nil, fmt.Errorf("decode addresses: %w", err)
	}
	return addresses, nil
}
