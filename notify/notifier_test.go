package notify

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nimbusmart/nimbusmart-backend-go/models"
	"github.com/nimbusmart/nimbusmart-backend-go/store"
)

type stubUserGetter struct {
	user *models.User
}

func (s stubUserGetter) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, store.ErrUserNotFound
	}
	return s.user, nil
}

type captureSender struct {
	mu   sync.Mutex
	sent []sentMessage
	done chan struct{}
}

type sentMessage struct {
	To      []string
	Subject string
	Body    string
}

func newCaptureSender() *captureSender {
	return &captureSender{done: make(chan struct{}, 8)}
}

func (s *captureSender) Send(_ context.Context, to []string, subject, body string) error {
	s.mu.Lock()
	s.sent = append(s.sent, sentMessage{To: to, Subject: subject, Body: body})
	s.mu.Unlock()
	s.done <- struct{}{}
	return nil
}

func (s *captureSender) wait(t *testing.T) sentMessage {
	t.Helper()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was never sent")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[len(s.sent)-1]
}

func TestNotifyOrderSendsToOrderOwner(t *testing.T) {
	user := &models.User{
		ID:        primitive.NewObjectID(),
		FirstName: "Jane",
		Email:     "jane@example.com",
	}
	order := &models.Order{ID: primitive.NewObjectID(), UserID: user.ID, TrackingNumber: "SHIP-1-ABCD1234"}

	sender := newCaptureSender()
	d := NewDispatcher(stubUserGetter{user: user}, sender, nil)

	d.NotifyOrder(order, "shipped")

	msg := sender.wait(t)
	assert.Equal(t, []string{"jane@example.com"}, msg.To)
	assert.Contains(t, msg.Subject, order.ID.Hex())
	assert.Contains(t, msg.Body, "SHIP-1-ABCD1234")
	assert.True(t, strings.HasPrefix(msg.Body, "Hi Jane,"))
}

func TestNotifyAdminUsesConfiguredAddresses(t *testing.T) {
	sender := newCaptureSender()
	d := NewDispatcher(stubUserGetter{}, sender, []string{"ops@example.com", "oncall@example.com"})

	d.NotifyAdmin("No available couriers")

	msg := sender.wait(t)
	assert.Equal(t, []string{"ops@example.com", "oncall@example.com"}, msg.To)
	assert.Equal(t, "No available couriers", msg.Body)
}

func TestNotifyAdminWithoutAddressesDoesNothing(t *testing.T) {
	sender := newCaptureSender()
	d := NewDispatcher(stubUserGetter{}, sender, nil)

	d.NotifyAdmin("ignored")

	select {
	case <-sender.done:
		t.Fatal("nothing should have been sent")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestContentForFallsBackForUnknownEvents(t *testing.T) {
	user := &models.User{FirstName: "Jane"}
	order := &models.Order{ID: primitive.NewObjectID()}

	content := contentFor("disputed", user, order)
	require.Equal(t, "Order Status Update", content.Subject)
	assert.Contains(t, content.Body, "disputed")
	assert.Contains(t, content.Body, order.ID.Hex())
}

func TestTemplatesCoverLifecycleEvents(t *testing.T) {
	for _, event := range []string{
		"pending", "payment_intent_created", "payment_successful", "processing",
		"shipped", "shipment_pending", "delivered",
		"return_initiated", "refund_initiated", "refund_completed",
	} {
		_, ok := orderStatusTemplates[event]
		assert.True(t, ok, "missing template for %s", event)
	}
}
