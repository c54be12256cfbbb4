package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

// ErrProvider wraps every failure returned by the payment provider so callers
// can classify it without inspecting provider-specific error types.
var ErrProvider = errors.New("payment provider error")

// Provider is the outbound payment interface consumed by the order and
// return workflows and by the reconciliation poller.
type Provider interface {
	CreatePaymentIntent(ctx context.Context, amountCents int64, orderID string) (*stripe.PaymentIntent, error)
	CreateRefund(ctx context.Context, paymentIntentID string) (*stripe.Refund, error)
	ListEventsSince(ctx context.Context, since time.Time, limit int64) ([]stripe.Event, error)
}

// StripeProvider implements Provider against the Stripe API.
type StripeProvider struct {
	api *client.API
}

func NewStripeProvider(secretKey string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api}
}

func (p *StripeProvider) CreatePaymentIntent(ctx context.Context, amountCents int64, orderID string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("orderId", orderID)

	intent, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create payment intent: %v", ErrProvider, err)
	}
	return intent, nil
}

func (p *StripeProvider) CreateRefund(ctx context.Context, paymentIntentID string) (*stripe.Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Context = ctx

	refund, err := p.api.Refunds.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create refund: %v", ErrProvider, err)
	}
	return refund, nil
}

// ListEventsSince pages provider events created strictly after since. A zero
// since time fetches from the beginning.
func (p *StripeProvider) ListEventsSince(ctx context.Context, since time.Time, limit int64) ([]stripe.Event, error) {
	params := &stripe.EventListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(limit)
	if !since.IsZero() {
		params.CreatedRange = &stripe.RangeQueryParams{GreaterThan: since.Unix()}
	}

	var events []stripe.Event
	iter := p.api.Events.List(params)
	for iter.Next() {
		events = append(events, *iter.Event())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: list events: %v", ErrProvider, err)
	}
	return events, nil
}
