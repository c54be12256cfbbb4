package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nimbusmart/nimbusmart-backend-go/models"
	"github.com/nimbusmart/nimbusmart-backend-go/store"
)

type fakeOrders struct {
	byID     map[primitive.ObjectID]*models.Order
	byIntent map[string]*models.Order
}

func newFakeOrders(orders ...*models.Order) *fakeOrders {
	s := &fakeOrders{
		byID:     map[primitive.ObjectID]*models.Order{},
		byIntent: map[string]*models.Order{},
	}
	for _, o := range orders {
		s.byID[o.ID] = o
		if o.PaymentIntentID != "" {
			s.byIntent[o.PaymentIntentID] = o
		}
	}
	return s
}

func (s *fakeOrders) GetByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	o, ok := s.byID[id]
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (s *fakeOrders) GetByPaymentIntent(_ context.Context, paymentIntentID string) (*models.Order, error) {
	o, ok := s.byIntent[paymentIntentID]
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (s *fakeOrders) Update(_ context.Context, order *models.Order) error {
	order.RecomputeCancellable()
	copied := *order
	s.byID[order.ID] = &copied
	if order.PaymentIntentID != "" {
		s.byIntent[order.PaymentIntentID] = &copied
	}
	return nil
}

type fakeEventLog struct {
	recorded map[string]bool
}

func newFakeEventLog() *fakeEventLog {
	return &fakeEventLog{recorded: map[string]bool{}}
}

func (l *fakeEventLog) HasProcessed(_ context.Context, eventID string) (bool, error) {
	return l.recorded[eventID], nil
}

func (l *fakeEventLog) Record(_ context.Context, eventID string, _ time.Time) (bool, error) {
	if l.recorded[eventID] {
		return true, nil
	}
	l.recorded[eventID] = true
	return false, nil
}

type fakeShipper struct {
	created []primitive.ObjectID
	err     error
}

func (s *fakeShipper) CreateShipment(_ context.Context, orderID primitive.ObjectID) (*models.Shipment, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = append(s.created, orderID)
	return &models.Shipment{
		ID:             primitive.NewObjectID(),
		OrderID:        orderID,
		TrackingNumber: "SHIP-1-ABCD1234",
		Status:         models.ShipmentStatusShipped,
	}, nil
}

type recordingNotifier struct {
	orderEvents   []string
	adminMessages []string
}

func (n *recordingNotifier) NotifyOrder(_ *models.Order, event string) {
	n.orderEvents = append(n.orderEvents, event)
}

func (n *recordingNotifier) NotifyAdmin(message string) {
	n.adminMessages = append(n.adminMessages, message)
}

func pendingOrder() *models.Order {
	return &models.Order{
		ID:            primitive.NewObjectID(),
		UserID:        primitive.NewObjectID(),
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
		IsCancellable: true,
	}
}

func intentSucceededEvent(order *models.Order) Event {
	return Event{
		ID:      "evt_1",
		Type:    "payment_intent.succeeded",
		Created: time.Now(),
		PaymentIntent: &stripe.PaymentIntent{
			ID:       "pi_1",
			Status:   stripe.PaymentIntentStatusSucceeded,
			Metadata: map[string]string{"orderId": order.ID.Hex()},
		},
	}
}

func TestPaymentIntentSucceededHappyPath(t *testing.T) {
	order := pendingOrder()
	orders := newFakeOrders(order)
	events := newFakeEventLog()
	shipper := &fakeShipper{}
	notifier := &recordingNotifier{}
	p := NewProcessor(orders, events, shipper, notifier)

	err := p.Process(context.Background(), intentSucceededEvent(order))
	require.NoError(t, err)

	assert.Equal(t, []primitive.ObjectID{order.ID}, shipper.created)
	assert.Equal(t, []string{"pending", "processing"}, notifier.orderEvents)
	assert.True(t, events.recorded["evt_1"])

	stored, _ := orders.GetByID(context.Background(), order.ID)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
	assert.Equal(t, "succeeded", stored.StripePaymentIntentStatus)
}

func TestPaymentIntentSucceededNoCourier(t *testing.T) {
	order := pendingOrder()
	orders := newFakeOrders(order)
	events := newFakeEventLog()
	shipper := &fakeShipper{err: store.ErrNoCourierAvailable}
	notifier := &recordingNotifier{}
	p := NewProcessor(orders, events, shipper, notifier)

	// Shipment failure is absorbed: the event still counts as processed and
	// the order waits in processing.
	err := p.Process(context.Background(), intentSucceededEvent(order))
	require.NoError(t, err)

	assert.True(t, events.recorded["evt_1"])
	assert.Equal(t, []string{"pending", "processing", "shipment_pending"}, notifier.orderEvents)

	stored, _ := orders.GetByID(context.Background(), order.ID)
	assert.Equal(t, models.OrderStatusProcessing, stored.Status)
}

func TestShipmentInfraFailureLeavesEventForRetry(t *testing.T) {
	order := pendingOrder()
	orders := newFakeOrders(order)
	events := newFakeEventLog()
	shipper := &fakeShipper{err: errors.New("shipment insert failed")}
	notifier := &recordingNotifier{}
	p := NewProcessor(orders, events, shipper, notifier)

	// Only courier exhaustion is absorbed; an infrastructure failure
	// propagates so redelivery retries shipment creation.
	err := p.Process(context.Background(), intentSucceededEvent(order))
	require.Error(t, err)
	assert.False(t, events.recorded["evt_1"])
	assert.NotContains(t, notifier.orderEvents, "shipment_pending")
}

func TestProcessIsIdempotent(t *testing.T) {
	order := pendingOrder()
	orders := newFakeOrders(order)
	events := newFakeEventLog()
	shipper := &fakeShipper{}
	notifier := &recordingNotifier{}
	p := NewProcessor(orders, events, shipper, notifier)

	evt := intentSucceededEvent(order)
	require.NoError(t, p.Process(context.Background(), evt))
	require.NoError(t, p.Process(context.Background(), evt))

	assert.Len(t, shipper.created, 1)
	assert.Equal(t, []string{"pending", "processing"}, notifier.orderEvents)
}

func TestUnknownEventTypeIsRecorded(t *testing.T) {
	events := newFakeEventLog()
	p := NewProcessor(newFakeOrders(), events, &fakeShipper{}, &recordingNotifier{})

	err := p.Process(context.Background(), Event{ID: "evt_odd", Type: "customer.created", Created: time.Now()})
	require.NoError(t, err)
	assert.True(t, events.recorded["evt_odd"])
}

func TestHandlerFailureLeavesEventUnrecorded(t *testing.T) {
	order := pendingOrder()
	order.PaymentIntentID = "pi_1"
	orders := newFakeOrders(order)
	events := newFakeEventLog()
	p := NewProcessor(orders, events, &fakeShipper{}, &recordingNotifier{})

	// A charge event without its payload is a handler failure, so the event
	// stays unrecorded and redelivery can retry it.
	err := p.Process(context.Background(), Event{ID: "evt_bad", Type: "charge.succeeded", Created: time.Now()})
	require.Error(t, err)
	assert.False(t, events.recorded["evt_bad"])
}

func TestMissingOrderIsSkippedNotFailed(t *testing.T) {
	events := newFakeEventLog()
	p := NewProcessor(newFakeOrders(), events, &fakeShipper{}, &recordingNotifier{})

	evt := Event{
		ID:      "evt_foreign",
		Type:    "payment_intent.succeeded",
		Created: time.Now(),
		PaymentIntent: &stripe.PaymentIntent{
			ID:       "pi_other",
			Metadata: map[string]string{"orderId": primitive.NewObjectID().Hex()},
		},
	}
	require.NoError(t, p.Process(context.Background(), evt))
	assert.True(t, events.recorded["evt_foreign"])
}

func TestChargeUpdatedDisputedNotifiesCustomer(t *testing.T) {
	order := pendingOrder()
	order.PaymentIntentID = "pi_1"
	order.PaymentStatus = models.PaymentStatusPaid
	orders := newFakeOrders(order)
	notifier := &recordingNotifier{}
	p := NewProcessor(orders, newFakeEventLog(), &fakeShipper{}, notifier)

	evt := Event{
		ID:      "evt_dispute",
		Type:    "charge.updated",
		Created: time.Now(),
		Charge: &stripe.Charge{
			ID:            "ch_1",
			Status:        stripe.ChargeStatus("disputed"),
			PaymentIntent: &stripe.PaymentIntent{ID: "pi_1"},
		},
	}
	require.NoError(t, p.Process(context.Background(), evt))

	stored, _ := orders.GetByPaymentIntent(context.Background(), "pi_1")
	assert.Equal(t, models.PaymentStatusUnpaid, stored.PaymentStatus)
	assert.Equal(t, "disputed", stored.StripeChargeStatus)
	assert.Equal(t, []string{"disputed"}, notifier.orderEvents)
}

func TestChargeUpdatedSucceededKeepsQuiet(t *testing.T) {
	order := pendingOrder()
	order.PaymentIntentID = "pi_1"
	orders := newFakeOrders(order)
	notifier := &recordingNotifier{}
	p := NewProcessor(orders, newFakeEventLog(), &fakeShipper{}, notifier)

	evt := Event{
		ID:      "evt_ch_ok",
		Type:    "charge.updated",
		Created: time.Now(),
		Charge: &stripe.Charge{
			ID:            "ch_1",
			Status:        stripe.ChargeStatusSucceeded,
			PaymentIntent: &stripe.PaymentIntent{ID: "pi_1"},
		},
	}
	require.NoError(t, p.Process(context.Background(), evt))

	stored, _ := orders.GetByPaymentIntent(context.Background(), "pi_1")
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
	assert.Empty(t, notifier.orderEvents)
}

func TestRefundSucceededCompletesRefund(t *testing.T) {
	order := pendingOrder()
	order.PaymentIntentID = "pi_1"
	order.Status = models.OrderStatusReturned
	order.PaymentStatus = models.PaymentStatusRefundInitiated
	orders := newFakeOrders(order)
	notifier := &recordingNotifier{}
	p := NewProcessor(orders, newFakeEventLog(), &fakeShipper{}, notifier)

	evt := Event{
		ID:      "evt_refund",
		Type:    "refund.succeeded",
		Created: time.Now(),
		Refund: &stripe.Refund{
			ID:            "re_1",
			Status:        stripe.RefundStatusSucceeded,
			PaymentIntent: &stripe.PaymentIntent{ID: "pi_1"},
		},
	}
	require.NoError(t, p.Process(context.Background(), evt))

	stored, _ := orders.GetByPaymentIntent(context.Background(), "pi_1")
	assert.Equal(t, models.OrderStatusRefundCompleted, stored.Status)
	assert.Equal(t, models.PaymentStatusRefunded, stored.PaymentStatus)
	assert.False(t, stored.IsCancellable)
	assert.Equal(t, []string{"refund_completed"}, notifier.orderEvents)
}

func TestFromStripeEventParsesFamilies(t *testing.T) {
	raw := []byte(`{"id":"pi_9","status":"succeeded","metadata":{"orderId":"abc"}}`)
	evt, err := FromStripeEvent(stripe.Event{
		ID:      "evt_parse",
		Type:    "payment_intent.succeeded",
		Created: 1700000000,
		Data:    &stripe.EventData{Raw: raw},
	})
	require.NoError(t, err)
	require.NotNil(t, evt.PaymentIntent)
	assert.Equal(t, "pi_9", evt.PaymentIntent.ID)
	assert.Equal(t, "abc", evt.PaymentIntent.Metadata["orderId"])
	assert.Nil(t, evt.Charge)

	bad := stripe.Event{ID: "evt_bad", Type: "charge.updated", Data: &stripe.EventData{Raw: []byte(`{`)}}
	_, err = FromStripeEvent(bad)
	assert.Error(t, err)
}

func TestProcessPropagatesEventLogError(t *testing.T) {
	order := pendingOrder()
	orders := newFakeOrders(order)
	p := NewProcessor(orders, failingEventLog{}, &fakeShipper{}, &recordingNotifier{})

	err := p.Process(context.Background(), intentSucceededEvent(order))
	assert.Error(t, err)
}

type failingEventLog struct{}

func (failingEventLog) HasProcessed(context.Context, string) (bool, error) {
	return false, errors.New("db unavailable")
}

func (failingEventLog) Record(context.Context, string, time.Time) (bool, error) {
	return false, errors.New("db unavailable")
}
