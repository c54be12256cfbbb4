package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nimbusmart/nimbusmart-backend-go/config"
	"github.com/nimbusmart/nimbusmart-backend-go/models"
	"github.com/nimbusmart/nimbusmart-backend-go/orders"
	"github.com/nimbusmart/nimbusmart-backend-go/payments"
)

// CreatePaymentIntent registers the order with the payment provider and
// hands the client secret back for checkout.
func CreatePaymentIntent(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("orderId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order ID format"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	order, err := deps.Orders.GetByID(ctx, orderID)
	if err != nil {
		return errorResponse(c, err)
	}

	intent, err := deps.Provider.CreatePaymentIntent(ctx, orders.AmountCents(order), order.ID.Hex())
	if err != nil {
		return errorResponse(c, err)
	}
	log.Printf("💳 Payment intent created for order %s: %s", order.ID.Hex(), intent.ID)

	order.PaymentIntentID = intent.ID
	order.StripePaymentIntentStatus = string(intent.Status)
	order.PaymentStatus = models.PaymentStatusUnpaid
	if err := deps.Orders.Update(ctx, order); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"clientSecret": intent.ClientSecret,
	})
}

// HandleStripeWebhook is the push delivery path for provider events. It
// verifies the signature, normalizes the event, and runs it through the same
// processor the poller uses. A handler failure returns 500 so the provider
// redelivers.
func HandleStripeWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Cannot read request body"})
	}

	sig := c.Request().Header.Get("Stripe-Signature")
	stripeEvent, err := webhook.ConstructEvent(payload, sig, config.GetEnv("STRIPE_WEBHOOK_SECRET", ""))
	if err != nil {
		log.Printf("❌ Stripe webhook signature verification failed: %v", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Webhook signature verification failed"})
	}
	log.Printf("📥 Stripe webhook received: %s (%s)", stripeEvent.Type, stripeEvent.ID)

	evt, err := payments.FromStripeEvent(stripeEvent)
	if err != nil {
		log.Printf("❌ Cannot parse Stripe event %s: %v", stripeEvent.ID, err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Malformed event payload"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := deps.Processor.Process(ctx, evt); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error handling event"})
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}

// GetPollerHealth exposes the reconciliation poller's health snapshot.
func GetPollerHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, deps.Poller.Health())
}
