package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nimbusmart/nimbusmart-backend-go/metrics"
	"github.com/nimbusmart/nimbusmart-backend-go/models"
	"github.com/nimbusmart/nimbusmart-backend-go/store"
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// InitiateReturn starts a customer return for a delivered, paid order. It
// creates a second shipment record of type return with a fresh label and
// moves the order to return_initiated. The refund itself happens later, once
// the physical return is confirmed or an in-store return is processed.
func (s *Service) InitiateReturn(ctx context.Context, orderID primitive.ObjectID) (string, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}

	if order.Status != models.OrderStatusDelivered {
		return "", ErrNotReturnable
	}
	if order.PaymentStatus != models.PaymentStatusPaid {
		return "", ErrUnpaidReturn
	}

	trackingNumber, err := s.labels.CreateReturnLabel(ctx, order.ID)
	if err != nil {
		return "", err
	}

	now := s.now()
	returnShipment := &models.Shipment{
		OrderID:        order.ID,
		TrackingNumber: trackingNumber,
		Status:         models.ShipmentStatusReturnInitiated,
		Type:           models.ShipmentTypeReturn,
		LastUpdated:    now,
		CreatedAt:      now,
	}
	if err := s.shipments.Insert(ctx, returnShipment); err != nil {
		return "", err
	}

	order.Status = models.OrderStatusReturnInitiated
	if err := s.orders.Update(ctx, order); err != nil {
		return "", err
	}

	log.Printf("↩️ Return initiated for order %s, return tracking %s", order.ID.Hex(), trackingNumber)
	s.notifier.NotifyOrder(order, "return_initiated")

	return trackingNumber, nil
}

// resolveProofOfPurchase locates an order from one of the accepted proofs: an
// order id, a customer email (most recent order wins), or a tracking number.
func (s *Service) resolveProofOfPurchase(ctx context.Context, proof string) (*models.Order, error) {
	if objectIDPattern.MatchString(proof) {
		orderID, err := primitive.ObjectIDFromHex(proof)
		if err != nil {
			return nil, ErrInvalidProof
		}
		return s.orders.GetByID(ctx, orderID)
	}

	user, err := s.users.GetByEmail(ctx, proof)
	if err == nil {
		return s.orders.LatestByUser(ctx, user.ID)
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, err
	}

	shipment, err := s.shipments.GetByTrackingNumber(ctx, proof)
	if err == nil {
		return s.orders.GetByID(ctx, shipment.OrderID)
	}
	if !errors.Is(err, store.ErrShipmentNotFound) {
		return nil, err
	}

	return nil, ErrInvalidProof
}

// ProcessInStoreReturn refunds a delivered, paid order presented at a store
// counter. Mutations are all-or-nothing around the refund: nothing changes
// unless the provider accepts the refund request, and inventory is only
// restocked afterward.
func (s *Service) ProcessInStoreReturn(ctx context.Context, proofOfPurchase string) (*models.Order, error) {
	log.Printf("🏬 Processing in-store return, proof of purchase: %s", proofOfPurchase)

	order, err := s.resolveProofOfPurchase(ctx, proofOfPurchase)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusDelivered {
		return nil, ErrNotReturnable
	}
	if order.PaymentStatus == models.PaymentStatusRefundInitiated || order.PaymentStatus == models.PaymentStatusRefunded {
		return nil, ErrRefundAlreadyProcessed
	}
	if order.PaymentStatus != models.PaymentStatusPaid {
		return nil, ErrUnpaidReturn
	}

	if _, err := s.refunder.CreateRefund(ctx, order.PaymentIntentID); err != nil {
		return nil, fmt.Errorf("failed to process refund: %w", err)
	}
	metrics.RefundsIssued.Inc()
	log.Printf("💸 Refund initiated for order %s", order.ID.Hex())

	order.Status = models.OrderStatusReturned
	order.PaymentStatus = models.PaymentStatusRefundInitiated
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	for _, item := range order.Items {
		if err := s.products.IncInventory(ctx, item.ProductID, item.Quantity); err != nil {
			log.Printf("❌ Failed to restock product %s (+%d): %v", item.ProductID.Hex(), item.Quantity, err)
			continue
		}
		log.Printf("📦 Restocked product %s, quantity returned: %d", item.ProductID.Hex(), item.Quantity)
	}

	s.notifier.NotifyOrder(order, "refund_initiated")
	return order, nil
}

// Cancel cancels a still-cancellable order, refunding it when already paid.
// Refund failure is tolerated or fatal depending on CancelRequiresRefund.
func (s *Service) Cancel(ctx context.Context, orderID primitive.ObjectID, reason string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.IsCancellable {
		return nil, ErrNotCancellable
	}

	if reason == "" {
		reason = "No reason provided"
	}

	previousStatus := order.Status
	order.Status = models.OrderStatusCanceled
	order.CancellationReason = reason
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	log.Printf("🚫 Order %s cancelled: %s", order.ID.Hex(), reason)

	if order.PaymentStatus == models.PaymentStatusPaid {
		if _, err := s.refunder.CreateRefund(ctx, order.PaymentIntentID); err != nil {
			if s.CancelRequiresRefund {
				// Strict policy: undo the cancellation and surface the
				// provider failure.
				order.Status = previousStatus
				order.CancellationReason = ""
				if rbErr := s.orders.Update(ctx, order); rbErr != nil {
					log.Printf("❌ Failed to roll back cancellation of order %s: %v", order.ID.Hex(), rbErr)
				}
				return nil, fmt.Errorf("cancellation aborted, refund failed: %w", err)
			}
			log.Printf("❌ Error initiating refund for cancelled order %s: %v", order.ID.Hex(), err)
			return order, nil
		}
		metrics.RefundsIssued.Inc()

		order.PaymentStatus = models.PaymentStatusRefundInitiated
		if err := s.orders.Update(ctx, order); err != nil {
			return nil, err
		}
		log.Printf("💸 Refund initiated for cancelled order %s", order.ID.Hex())
		s.notifier.NotifyOrder(order, "refund_initiated")
	}

	return order, nil
}
