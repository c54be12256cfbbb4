package notify

import (
	"fmt"

	"github.com/nimbusmart/nimbusmart-backend-go/models"
)

type emailContent struct {
	Subject string
	Body    string
}

type templateFunc func(user *models.User, order *models.Order) emailContent

var orderStatusTemplates = map[string]templateFunc{
	"pending": func(u *models.User, o *models.Order) emailContent {
		return emailContent{
			Subject: fmt.Sprintf("Your Order #%s is Confirmed!", o.ID.Hex()),
			Body:    fmt.Sprintf("Hi %s,\n\nThank you for your purchase! We've received your order (#%s) and it is currently being prepared. We'll let you know once it's ready to ship.\n\nThanks for shopping with us!\nBest regards,\nThe Nimbusmart Team", u.FirstName, o.ID.Hex()),
		}
	},
	"payment_intent_created": func(u *models.User, o *models.Order) emailContent {
		return emailContent{
			Subject: fmt.Sprintf("Your Order #%s Payment Initiated!", o.ID.Hex()),
			Body:    fmt.Sprintf("Hi %s,\n\nYour payment for order (#%s) has been initiated. Please complete the payment to proceed with your order.\n\nBest regards,\nThe Nimbusmart Team", u.FirstName, o.ID.Hex()),
		}
	},
	"payment_successful": func(u *models.User, o *models.Order) emailContent {
		return emailContent{
			Subject: fmt.Sprintf("Payment Successful for Order #%s!", o.ID.Hex()),
			Body:    fmt.Sprintf("Hi %s,\n\nYour payment for order (#%s) was successful. We're now preparing your order for shipment.\n\nBest regards,\nThe Nimbusmart Team", u.FirstName, o.ID.Hex()),
		}
	},
	"processing": func(u *models.User, o *models.Order) emailContent {
		return emailContent{
			Subject: "Your Order is Being Processed",
			Body:    fmt.Sprintf("Hi %s,\n\nYour order (#%s) is being processed. We'll notify you once it's shipped.\n\nBest regards,\nThe Nimbusmart Team", u.FirstName, o.ID.Hex()),
		}
	},
	"shipped": func(u *models.User, o *models.Order) emailContent {
		return emailContent{
			Subject: fmt.Sprintf("Your Order #%s Has Been Shipped!", o.ID.Hex()),
			Body:    fmt.Sprintf("Hi %s,\n\nYour order (#%s) has been shipped and is on its way to the courier. Tracking number: %s.\n\nBest regards,\nThe Nimbusmart Team", u.FirstName, o.ID.Hex(), o.TrackingNumber),
		}
	},
	"shipment_pending": func(u *models.User, o *models.Order) emailContent {
		return emailContent{
			Subject: fmt.Sprintf("Shipment Pending for Your Order #%s", o.ID.Hex()),
			Body:    fmt.Sprintf("Hi %s,\n\nYour shipment for order (#%s) is pending due to no available couriers. We are working to resolve this and will notify you once the shipment is assigned.\n\nBest regards,\nThe Nimbusmart Team", u.FirstName, o.ID.Hex()),
		}
	},
	"delivered": func(u *models.User, o *models.Order) emailContent {
		return emailContent{
			Subject: fmt.Sprintf("Your Order #%s Has Been Delivered!", o.ID.Hex()),
			Body:    fmt.Sprintf("Hi %s,\n\nYour order (#%s) has been delivered. We hope you enjoy your purchase!\n\nBest regards,\nThe Nimbusmart Team", u.FirstName, o.ID.Hex()),
		}
	},
	"return_initiated": func(u *models.User, o *models.Order) emailContent {
		return emailContent{
			Subject: fmt.Sprintf("Return Initiated for Order #%s", o.ID.Hex()),
			Body:    fmt.Sprintf("Hi %s,\n\nWe have initiated the return process for your order (#%s). A courier will be assigned shortly to collect the items from your address.\n\nBest regards,\nThe Nimbusmart Team", u.FirstName, o.ID.Hex()),
		}
	},
	"refund_initiated": func(u *models.User, o *models.Order) emailContent {
		return emailContent{
			Subject: fmt.Sprintf("Refund Initiated for Order #%s", o.ID.Hex()),
			Body:    fmt.Sprintf("Hi %s,\n\nYour refund for order (#%s) has been initiated. We will notify you once it completes.\n\nBest regards,\nThe Nimbusmart Team", u.FirstName, o.ID.Hex()),
		}
	},
	"refund_completed": func(u *models.User, o *models.Order) emailContent {
		return emailContent{
			Subject: fmt.Sprintf("Refund Completed for Order #%s", o.ID.Hex()),
			Body:    fmt.Sprintf("Hi %s,\n\nYour refund for order (#%s) has been processed successfully. The amount should now be reflected in your account.\n\nBest regards,\nThe Nimbusmart Team", u.FirstName, o.ID.Hex()),
		}
	},
}

func contentFor(event string, user *models.User, order *models.Order) emailContent {
	if tmpl, ok := orderStatusTemplates[event]; ok {
		return tmpl(user, order)
	}
	// Charge-level events (failed, canceled, disputed) and anything new fall
	// through to the generic update.
	return emailContent{
		Subject: "Order Status Update",
		Body:    fmt.Sprintf("Hi %s,\n\nYour order (#%s) status has been updated: %s.\n\nBest regards,\nThe Nimbusmart Team", user.FirstName, order.ID.Hex(), event),
	}
}
