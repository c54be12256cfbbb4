package orders

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nimbusmart/nimbusmart-backend-go/shipping"
)

// LocalReturnLabeler generates return labels in-house with the same
// time-plus-random scheme as delivery tracking numbers.
type LocalReturnLabeler struct {
	tracking *shipping.TrackingGenerator
}

func NewLocalReturnLabeler() *LocalReturnLabeler {
	return &LocalReturnLabeler{tracking: shipping.NewTrackingGenerator("RET")}
}

func (l *LocalReturnLabeler) CreateReturnLabel(_ context.Context, _ primitive.ObjectID) (string, error) {
	return l.tracking.Next(), nil
}
