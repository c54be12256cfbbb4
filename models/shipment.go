package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ShipmentStatus string

const (
	ShipmentStatusPending         ShipmentStatus = "pending"
	ShipmentStatusCourierAssigned ShipmentStatus = "courier_assigned"
	ShipmentStatusShipped         ShipmentStatus = "shipped"
	ShipmentStatusInTransit       ShipmentStatus = "in_transit"
	ShipmentStatusOutForDelivery  ShipmentStatus = "out_for_delivery"
	ShipmentStatusDelivered       ShipmentStatus = "delivered"
	ShipmentStatusReturnInitiated ShipmentStatus = "return_initiated"
	ShipmentStatusCollected       ShipmentStatus = "collected"
	ShipmentStatusReturnedToStore ShipmentStatus = "returned_to_store"
	ShipmentStatusException       ShipmentStatus = "exception"
)

type ShipmentType string

const (
	ShipmentTypeDelivery ShipmentType = "delivery"
	ShipmentTypeReturn   ShipmentType = "return"
)

// shipmentTransitions is the full adjacency table of valid status moves.
// delivered and returned_to_store are terminal.
var shipmentTransitions = map[ShipmentStatus][]ShipmentStatus{
	ShipmentStatusPending:         {ShipmentStatusCourierAssigned, ShipmentStatusShipped},
	ShipmentStatusCourierAssigned: {ShipmentStatusShipped},
	ShipmentStatusShipped:         {ShipmentStatusInTransit},
	ShipmentStatusInTransit:       {ShipmentStatusOutForDelivery},
	ShipmentStatusOutForDelivery:  {ShipmentStatusDelivered},
	ShipmentStatusDelivered:       {},
	ShipmentStatusReturnInitiated: {ShipmentStatusCollected, ShipmentStatusReturnedToStore},
	ShipmentStatusCollected:       {ShipmentStatusReturnInitiated, ShipmentStatusReturnedToStore},
	ShipmentStatusReturnedToStore: {},
	ShipmentStatusException:       {ShipmentStatusInTransit, ShipmentStatusShipped},
}

// CanTransitionTo reports whether the status graph allows moving from s to next.
func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	for _, allowed := range shipmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValid reports whether s is one of the known shipment statuses.
func (s ShipmentStatus) IsValid() bool {
	_, ok := shipmentTransitions[s]
	return ok
}

type Shipment struct {
	ID                    primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrderID               primitive.ObjectID  `bson:"orderId" json:"orderId"`
	CourierID             *primitive.ObjectID `bson:"courierId,omitempty" json:"courierId,omitempty"`
	TrackingNumber        string              `bson:"trackingNumber" json:"trackingNumber"`
	Status                ShipmentStatus      `bson:"status" json:"status"`
	Type                  ShipmentType        `bson:"type" json:"type"`
	EstimatedDeliveryDate time.Time           `bson:"estimatedDeliveryDate,omitempty" json:"estimatedDeliveryDate,omitempty"`
	LastUpdated           time.Time           `bson:"lastUpdated" json:"lastUpdated"`
	CreatedAt             time.Time           `bson:"createdAt" json:"createdAt"`
}
