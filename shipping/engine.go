package shipping

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nimbusmart/nimbusmart-backend-go/metrics"
	"github.com/nimbusmart/nimbusmart-backend-go/models"
	"github.com/nimbusmart/nimbusmart-backend-go/store"
)

var (
	ErrInvalidOrderState = errors.New("only processing orders can be shipped")
	ErrInvalidTransition = errors.New("invalid shipment status transition")
)

// estimatedTransitDays feeds the estimated delivery date on new shipments.
const estimatedTransitDays = 5

type OrderStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
}

type ShipmentStore interface {
	Insert(ctx context.Context, shipment *models.Shipment) error
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error)
	Update(ctx context.Context, shipment *models.Shipment) error
}

type CourierStore interface {
	ClaimAvailableCourier(ctx context.Context) (*models.User, error)
	SetCourierAvailability(ctx context.Context, courierID primitive.ObjectID, status models.AvailabilityStatus) error
}

type Notifier interface {
	NotifyOrder(order *models.Order, event string)
	NotifyAdmin(message string)
}

// Engine owns courier assignment and shipment status transitions.
type Engine struct {
	orders    OrderStore
	shipments ShipmentStore
	couriers  CourierStore
	notifier  Notifier
	tracking  *TrackingGenerator
	now       func() time.Time
}

func NewEngine(orders OrderStore, shipments ShipmentStore, couriers CourierStore, notifier Notifier) *Engine {
	return &Engine{
		orders:    orders,
		shipments: shipments,
		couriers:  couriers,
		notifier:  notifier,
		tracking:  NewTrackingGenerator("SHIP"),
		now:       time.Now,
	}
}

// CreateShipment assigns a courier to a processing order, creates the
// shipment record, and moves the order to shipped. The courier claim is
// atomic; every failure after it releases the courier so nobody stays stuck
// unavailable.
func (e *Engine) CreateShipment(ctx context.Context, orderID primitive.ObjectID) (*models.Shipment, error) {
	order, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusProcessing {
		return nil, fmt.Errorf("%w (order %s is %s)", ErrInvalidOrderState, order.ID.Hex(), order.Status)
	}

	courier, err := e.couriers.ClaimAvailableCourier(ctx)
	if errors.Is(err, store.ErrNoCourierAvailable) {
		log.Printf("⚠️ No available couriers for order %s", orderID.Hex())
		e.notifier.NotifyAdmin(fmt.Sprintf("No available couriers to assign for order ID: %s", orderID.Hex()))
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	now := e.now()
	shipment := &models.Shipment{
		OrderID:               order.ID,
		CourierID:             &courier.ID,
		TrackingNumber:        e.tracking.Next(),
		Status:                models.ShipmentStatusShipped,
		Type:                  models.ShipmentTypeDelivery,
		EstimatedDeliveryDate: now.AddDate(0, 0, estimatedTransitDays),
		LastUpdated:           now,
		CreatedAt:             now,
	}

	if err := e.shipments.Insert(ctx, shipment); err != nil {
		e.releaseCourier(ctx, courier.ID)
		return nil, err
	}

	order.Status = models.OrderStatusShipped
	order.TrackingNumber = shipment.TrackingNumber
	order.ShipmentID = &shipment.ID
	if err := e.orders.Update(ctx, order); err != nil {
		e.releaseCourier(ctx, courier.ID)
		return nil, err
	}

	metrics.ShipmentsCreated.Inc()
	log.Printf("🚚 Shipment created: %s (courier %s)", shipment.TrackingNumber, courier.ID.Hex())
	e.notifier.NotifyOrder(order, "shipped")

	return shipment, nil
}

func (e *Engine) releaseCourier(ctx context.Context, courierID primitive.ObjectID) {
	if err := e.couriers.SetCourierAvailability(ctx, courierID, models.AvailabilityAvailable); err != nil {
		log.Printf("❌ Failed to release courier %s after shipment failure: %v", courierID.Hex(), err)
	}
}

// UpdateShipmentStatus moves a shipment along the transition graph. Only the
// delivered transition mutates the order here; return flows are owned by the
// order service.
func (e *Engine) UpdateShipmentStatus(ctx context.Context, trackingNumber string, newStatus models.ShipmentStatus) (*models.Shipment, error) {
	shipment, err := e.shipments.GetByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}

	if !shipment.Status.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, shipment.Status, newStatus)
	}

	shipment.Status = newStatus
	shipment.LastUpdated = e.now()
	if err := e.shipments.Update(ctx, shipment); err != nil {
		return nil, err
	}
	log.Printf("🚚 Shipment %s status updated to %s", trackingNumber, newStatus)

	if newStatus == models.ShipmentStatusDelivered {
		if err := e.markDelivered(ctx, shipment); err != nil {
			return nil, err
		}
	}

	return shipment, nil
}

func (e *Engine) markDelivered(ctx context.Context, shipment *models.Shipment) error {
	order, err := e.orders.GetByID(ctx, shipment.OrderID)
	if err != nil {
		return err
	}

	order.Status = models.OrderStatusDelivered
	if err := e.orders.Update(ctx, order); err != nil {
		return err
	}

	if shipment.CourierID != nil {
		if err := e.couriers.SetCourierAvailability(ctx, *shipment.CourierID, models.AvailabilityAvailable); err != nil {
			log.Printf("❌ Failed to free courier %s after delivery: %v", shipment.CourierID.Hex(), err)
		}
	}

	e.notifier.NotifyOrder(order, "delivered")
	return nil
}

// TrackShipment returns a shipment and its order for the tracking endpoint.
func (e *Engine) TrackShipment(ctx context.Context, trackingNumber string) (*models.Shipment, *models.Order, error) {
	shipment, err := e.shipments.GetByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, nil, err
	}
	order, err := e.orders.GetByID(ctx, shipment.OrderID)
	if err != nil {
		return nil, nil, err
	}
	return shipment, order, nil
}
