package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/stripe/stripe-go/v81"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nimbusmart/nimbusmart-backend-go/metrics"
	"github.com/nimbusmart/nimbusmart-backend-go/models"
	"github.com/nimbusmart/nimbusmart-backend-go/store"
)

type OrderStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
}

// EventLog is the idempotency gate every inbound event passes through.
type EventLog interface {
	HasProcessed(ctx context.Context, eventID string) (bool, error)
	Record(ctx context.Context, eventID string, occurredAt time.Time) (alreadyProcessed bool, err error)
}

type ShipmentCreator interface {
	CreateShipment(ctx context.Context, orderID primitive.ObjectID) (*models.Shipment, error)
}

type Notifier interface {
	NotifyOrder(order *models.Order, event string)
	NotifyAdmin(message string)
}

type handlerFunc func(ctx context.Context, evt Event) error

// Processor maps provider event types to order state transitions. Both
// delivery paths, the signed webhook and the reconciliation poll, run
// through Process, so the event log gate makes duplicate delivery safe from
// either side.
type Processor struct {
	orders   OrderStore
	events   EventLog
	shipper  ShipmentCreator
	notifier Notifier

	handlers map[string]handlerFunc
}

func NewProcessor(orders OrderStore, events EventLog, shipper ShipmentCreator, notifier Notifier) *Processor {
	p := &Processor{
		orders:   orders,
		events:   events,
		shipper:  shipper,
		notifier: notifier,
	}
	p.handlers = map[string]handlerFunc{
		"payment_intent.created":   p.handlePaymentIntentCreated,
		"payment_intent.succeeded": p.handlePaymentIntentSucceeded,
		"charge.succeeded":         p.handleChargeSucceeded,
		"charge.updated":           p.handleChargeUpdated,
		"refund.succeeded":         p.handleRefundSucceeded,
	}
	return p
}

// Process runs a single provider event through the idempotency gate, its
// handler, and the event log. A handler error leaves the event unrecorded so
// webhook redelivery or the next poll cycle can retry it.
func (p *Processor) Process(ctx context.Context, evt Event) error {
	processed, err := p.events.HasProcessed(ctx, evt.ID)
	if err != nil {
		return err
	}
	if processed {
		log.Printf("🔁 Event already processed: %s", evt.ID)
		metrics.PaymentEventsDuplicate.Inc()
		return nil
	}

	handler, ok := p.handlers[evt.Type]
	if !ok {
		log.Printf("⚠️ Unhandled payment event type: %s (%s)", evt.Type, evt.ID)
		metrics.PaymentEventsUnhandled.Inc()
	} else {
		if err := handler(ctx, evt); err != nil {
			log.Printf("❌ Error handling payment event %s (%s): %v", evt.ID, evt.Type, err)
			metrics.PaymentEventsFailed.WithLabelValues(evt.Type).Inc()
			return err
		}
		metrics.PaymentEventsProcessed.WithLabelValues(evt.Type).Inc()
	}

	// Unhandled types are recorded too, so the poller stops rediscovering
	// them. The duplicate-key outcome means a concurrent delivery won the
	// race, which is a success here.
	alreadyProcessed, err := p.events.Record(ctx, evt.ID, evt.Created)
	if err != nil {
		return err
	}
	if alreadyProcessed {
		log.Printf("🔁 Event recorded concurrently by another delivery: %s", evt.ID)
		metrics.PaymentEventsDuplicate.Inc()
	}
	return nil
}

// orderFromIntentMetadata resolves the order referenced by a payment intent's
// orderId metadata. A missing or unknown order is not a handler failure: the
// event belongs to someone else's intent and is logged and skipped.
func (p *Processor) orderFromIntentMetadata(ctx context.Context, evt Event) (*models.Order, error) {
	if evt.PaymentIntent == nil {
		return nil, fmt.Errorf("event %s has no payment intent payload", evt.ID)
	}
	hex, ok := evt.PaymentIntent.Metadata["orderId"]
	if !ok {
		log.Printf("⚠️ Payment intent %s carries no orderId metadata", evt.PaymentIntent.ID)
		return nil, nil
	}
	orderID, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		log.Printf("⚠️ Payment intent %s carries malformed orderId %q", evt.PaymentIntent.ID, hex)
		return nil, nil
	}
	order, err := p.orders.GetByID(ctx, orderID)
	if errors.Is(err, store.ErrOrderNotFound) {
		log.Printf("❌ Order not found for payment intent %s", evt.PaymentIntent.ID)
		return nil, nil
	}
	return order, err
}

func (p *Processor) handlePaymentIntentCreated(ctx context.Context, evt Event) error {
	order, err := p.orderFromIntentMetadata(ctx, evt)
	if err != nil || order == nil {
		return err
	}

	order.PaymentStatus = models.PaymentStatusIntentCreated
	if err := p.orders.Update(ctx, order); err != nil {
		return err
	}
	log.Printf("💳 Order %s payment status initialized for intent creation", order.ID.Hex())

	p.notifier.NotifyOrder(order, "payment_intent_created")
	return nil
}

func (p *Processor) handlePaymentIntentSucceeded(ctx context.Context, evt Event) error {
	order, err := p.orderFromIntentMetadata(ctx, evt)
	if err != nil || order == nil {
		return err
	}

	order.StripePaymentIntentStatus = string(evt.PaymentIntent.Status)
	order.PaymentStatus = models.PaymentStatusPaid
	if err := p.orders.Update(ctx, order); err != nil {
		return err
	}
	log.Printf("💳 Order %s marked paid", order.ID.Hex())
	p.notifier.NotifyOrder(order, "pending")

	order.Status = models.OrderStatusProcessing
	if err := p.orders.Update(ctx, order); err != nil {
		return err
	}
	log.Printf("📦 Order %s marked as processing", order.ID.Hex())
	p.notifier.NotifyOrder(order, "processing")

	shipment, err := p.shipper.CreateShipment(ctx, order.ID)
	if errors.Is(err, store.ErrNoCourierAvailable) {
		// Not fatal: the order stays in processing until a courier frees
		// up and the admin mark-shipped path re-creates the shipment.
		log.Printf("⚠️ No courier available for order %s, shipment deferred", order.ID.Hex())
		p.notifier.NotifyOrder(order, "shipment_pending")
		return nil
	}
	if err != nil {
		// Infrastructure failure: leave the event unrecorded so redelivery
		// retries shipment creation.
		return fmt.Errorf("create shipment for order %s: %w", order.ID.Hex(), err)
	}

	log.Printf("🚚 Shipment %s created for order %s", shipment.TrackingNumber, order.ID.Hex())
	return nil
}

func (p *Processor) handleChargeSucceeded(ctx context.Context, evt Event) error {
	if evt.Charge == nil || evt.Charge.PaymentIntent == nil {
		return fmt.Errorf("event %s has no charge payload", evt.ID)
	}
	order, err := p.orders.GetByPaymentIntent(ctx, evt.Charge.PaymentIntent.ID)
	if errors.Is(err, store.ErrOrderNotFound) {
		log.Printf("❌ Order not found for charge on intent %s", evt.Charge.PaymentIntent.ID)
		return nil
	}
	if err != nil {
		return err
	}

	order.StripeChargeStatus = string(evt.Charge.Status)
	if evt.Charge.Status == stripe.ChargeStatusSucceeded {
		order.PaymentStatus = models.PaymentStatusPaid
	} else {
		order.PaymentStatus = models.PaymentStatusUnpaid
	}
	if err := p.orders.Update(ctx, order); err != nil {
		return err
	}
	log.Printf("💳 Order %s payment status updated from charge: %s", order.ID.Hex(), order.PaymentStatus)

	if evt.Charge.Status == stripe.ChargeStatusSucceeded {
		p.notifier.NotifyOrder(order, "payment_successful")
	}
	return nil
}

// chargeStatusNotifications are the charge outcomes the customer hears about.
var chargeStatusNotifications = map[string]bool{
	"failed":   true,
	"canceled": true,
	"disputed": true,
}

func (p *Processor) handleChargeUpdated(ctx context.Context, evt Event) error {
	if evt.Charge == nil || evt.Charge.PaymentIntent == nil {
		return fmt.Errorf("event %s has no charge payload", evt.ID)
	}
	order, err := p.orders.GetByPaymentIntent(ctx, evt.Charge.PaymentIntent.ID)
	if errors.Is(err, store.ErrOrderNotFound) {
		log.Printf("❌ Order not found for charge update on intent %s", evt.Charge.PaymentIntent.ID)
		return nil
	}
	if err != nil {
		return err
	}

	chargeStatus := string(evt.Charge.Status)
	order.StripeChargeStatus = chargeStatus

	// Everything that is not an outright success maps to unpaid; the
	// verbatim charge status above keeps the audit trail.
	if evt.Charge.Status == stripe.ChargeStatusSucceeded {
		order.PaymentStatus = models.PaymentStatusPaid
	} else {
		order.PaymentStatus = models.PaymentStatusUnpaid
	}
	if err := p.orders.Update(ctx, order); err != nil {
		return err
	}
	log.Printf("💳 Order %s payment status updated from charge update: %s (charge %s)",
		order.ID.Hex(), order.PaymentStatus, chargeStatus)

	if chargeStatusNotifications[chargeStatus] {
		p.notifier.NotifyOrder(order, chargeStatus)
	}
	return nil
}

func (p *Processor) handleRefundSucceeded(ctx context.Context, evt Event) error {
	if evt.Refund == nil || evt.Refund.PaymentIntent == nil {
		return fmt.Errorf("event %s has no refund payload", evt.ID)
	}
	order, err := p.orders.GetByPaymentIntent(ctx, evt.Refund.PaymentIntent.ID)
	if errors.Is(err, store.ErrOrderNotFound) {
		log.Printf("❌ Order not found for refund on intent %s", evt.Refund.PaymentIntent.ID)
		return nil
	}
	if err != nil {
		return err
	}

	order.StripeRefundStatus = string(evt.Refund.Status)
	order.PaymentStatus = models.PaymentStatusRefunded
	order.Status = models.OrderStatusRefundCompleted
	if err := p.orders.Update(ctx, order); err != nil {
		return err
	}
	log.Printf("💸 Order %s refunded", order.ID.Hex())

	p.notifier.NotifyOrder(order, "refund_completed")
	return nil
}
