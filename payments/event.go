package payments

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v81"
)

// Event is a normalized payment provider event. Exactly one of the object
// fields is populated, matching the event type's family.
type Event struct {
	ID      string
	Type    string
	Created time.Time

	PaymentIntent *stripe.PaymentIntent
	Charge        *stripe.Charge
	Refund        *stripe.Refund
}

// FromStripeEvent parses the raw event payload into the typed object for its
// family. Unknown families are passed through with no object; the processor
// logs and skips them.
func FromStripeEvent(e stripe.Event) (Event, error) {
	evt := Event{
		ID:      e.ID,
		Type:    string(e.Type),
		Created: time.Unix(e.Created, 0),
	}

	switch {
	case strings.HasPrefix(evt.Type, "payment_intent."):
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(e.Data.Raw, &pi); err != nil {
			return Event{}, fmt.Errorf("parse payment intent from event %s: %w", e.ID, err)
		}
		evt.PaymentIntent = &pi
	case strings.HasPrefix(evt.Type, "charge."):
		var ch stripe.Charge
		if err := json.Unmarshal(e.Data.Raw, &ch); err != nil {
			return Event{}, fmt.Errorf("parse charge from event %s: %w", e.ID, err)
		}
		evt.Charge = &ch
	case strings.HasPrefix(evt.Type, "refund."):
		var re stripe.Refund
		if err := json.Unmarshal(e.Data.Raw, &re); err != nil {
			return Event{}, fmt.Errorf("parse refund from event %s: %w", e.ID, err)
		}
		evt.Refund = &re
	}

	return evt, nil
}
