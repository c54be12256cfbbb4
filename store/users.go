package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nimbusmart/nimbusmart-backend-go/models"
)

type Users struct {
	db *mongo.Database
}

func NewUsers(db *mongo.Database) *Users {
	return &Users{db: db}
}

func (s *Users) collection() *mongo.Collection {
	return s.db.Collection("users")
}

func (s *Users) Insert(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := s.collection().InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Users) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (s *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.collection().FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

// ClaimAvailableCourier atomically flips the first available courier to
// unavailable and returns it. Two concurrent shipment creations can never
// claim the same courier: the filter and the update run as one document
// operation.
func (s *Users) ClaimAvailableCourier(ctx context.Context) (*models.User, error) {
	filter := bson.M{
		"role":               models.RoleCourier,
		"availabilityStatus": models.AvailabilityAvailable,
	}
	update := bson.M{"$set": bson.M{
		"availabilityStatus": models.AvailabilityUnavailable,
		"updatedAt":          time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var courier models.User
	err := s.collection().FindOneAndUpdate(ctx, filter, update, opts).Decode(&courier)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNoCourierAvailable
		}
		return nil, fmt.Errorf("claim courier: %w", err)
	}
	return &courier, nil
}

// SetCourierAvailability updates a courier's availability, used both for the
// release-on-delivery flow and for the compensating reset when shipment
// creation fails after a claim.
func (s *Users) SetCourierAvailability(ctx context.Context, courierID primitive.ObjectID, status models.AvailabilityStatus) error {
	update := bson.M{"$set": bson.M{
		"availabilityStatus": status,
		"updatedAt":          time.Now(),
	}}
	result, err := s.collection().UpdateOne(ctx, bson.M{"_id": courierID}, update)
	if err != nil {
		return fmt.Errorf("set courier availability: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
