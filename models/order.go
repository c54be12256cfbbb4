package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusProcessing      OrderStatus = "processing"
	OrderStatusShipped         OrderStatus = "shipped"
	OrderStatusDelivered       OrderStatus = "delivered"
	OrderStatusCanceled        OrderStatus = "canceled"
	OrderStatusReturned        OrderStatus = "returned"
	OrderStatusReturnedToStore OrderStatus = "returned_to_store"
	OrderStatusReturnInitiated OrderStatus = "return_initiated"
	OrderStatusRefundCompleted OrderStatus = "refund_completed"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid          PaymentStatus = "unpaid"
	PaymentStatusPaid            PaymentStatus = "paid"
	PaymentStatusRefunded        PaymentStatus = "refunded"
	PaymentStatusRefundInitiated PaymentStatus = "refund_initiated"
	// PaymentStatusIntentCreated is a provisional phase between intent
	// creation and the first charge outcome.
	PaymentStatusIntentCreated PaymentStatus = "payment_intent_created"
)

type OrderItem struct {
	ProductID  primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity   int                `bson:"quantity" json:"quantity"`
	UnitPrice  float64            `bson:"unitPrice" json:"unitPrice"`
	TotalPrice float64            `bson:"totalPrice" json:"totalPrice"`
}

type Order struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID  `bson:"userId" json:"userId"`
	Items             []OrderItem         `bson:"items" json:"items"`
	TotalAmount       float64             `bson:"totalAmount" json:"totalAmount"`
	Status            OrderStatus         `bson:"status" json:"status"`
	PaymentStatus     PaymentStatus       `bson:"paymentStatus" json:"paymentStatus"`
	PaymentIntentID   string              `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	// Raw provider statuses kept verbatim for audit and debugging.
	StripePaymentIntentStatus string `bson:"stripePaymentIntentStatus,omitempty" json:"stripePaymentIntentStatus,omitempty"`
	StripeChargeStatus        string `bson:"stripeChargeStatus,omitempty" json:"stripeChargeStatus,omitempty"`
	StripeRefundStatus        string `bson:"stripeRefundStatus,omitempty" json:"stripeRefundStatus,omitempty"`
	ShippingAddressID  primitive.ObjectID  `bson:"shippingAddressId" json:"shippingAddressId"`
	TrackingNumber     string              `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	ShipmentID         *primitive.ObjectID `bson:"shipmentId,omitempty" json:"shipmentId,omitempty"`
	IsCancellable      bool                `bson:"isCancellable" json:"isCancellable"`
	CancellationReason string              `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	CreatedAt          time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// RecomputeCancellable derives IsCancellable from the current status. It must
// run after every status mutation, before the order is persisted.
func (o *Order) RecomputeCancellable() {
	switch o.Status {
	case OrderStatusCanceled, OrderStatusDelivered, OrderStatusRefundCompleted:
		o.IsCancellable = false
	default:
		o.IsCancellable = true
	}
}
