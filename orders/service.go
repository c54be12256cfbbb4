package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nimbusmart/nimbusmart-backend-go/models"
)

var (
	ErrEmptyOrder             = errors.New("no products in the order")
	ErrNotCancellable         = errors.New("order cannot be cancelled")
	ErrNotReturnable          = errors.New("only delivered orders can be returned")
	ErrUnpaidReturn           = errors.New("cannot process return for an unpaid order")
	ErrRefundAlreadyProcessed = errors.New("refund already processed for this order")
	ErrAlreadyShipped         = errors.New("order is already shipped or delivered")
	ErrInvalidProof           = errors.New("no valid proof of purchase found")
)

type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	LatestByUser(ctx context.Context, userID primitive.ObjectID) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
}

type ProductStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	IncInventory(ctx context.Context, id primitive.ObjectID, delta int) error
}

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type AddressStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Address, error)
}

type ShipmentStore interface {
	Insert(ctx context.Context, shipment *models.Shipment) error
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error)
}

type ShipmentCreator interface {
	CreateShipment(ctx context.Context, orderID primitive.ObjectID) (*models.Shipment, error)
}

// Refunder issues refund requests against the payment provider.
type Refunder interface {
	CreateRefund(ctx context.Context, paymentIntentID string) (*stripe.Refund, error)
}

// ReturnLabeler produces a tracking number for a customer-initiated return
// shipment. The production implementation generates labels locally; the
// interface keeps an external label provider swappable.
type ReturnLabeler interface {
	CreateReturnLabel(ctx context.Context, orderID primitive.ObjectID) (string, error)
}

type Notifier interface {
	NotifyOrder(order *models.Order, event string)
	NotifyAdmin(message string)
}

// Service owns order creation and the return, refund and cancellation
// workflows.
type Service struct {
	orders    OrderStore
	products  ProductStore
	users     UserStore
	addresses AddressStore
	shipments ShipmentStore
	shipper   ShipmentCreator
	refunder  Refunder
	labels    ReturnLabeler
	notifier  Notifier

	// CancelRequiresRefund makes cancellation of a paid order fail, and the
	// status roll back, when refund issuance fails. The default (false)
	// tolerates refund failure: the order stays canceled and operators
	// reconcile the refund manually.
	CancelRequiresRefund bool

	now func() time.Time
}

func NewService(orders OrderStore, products ProductStore, users UserStore, addresses AddressStore,
	shipments ShipmentStore, shipper ShipmentCreator, refunder Refunder, labels ReturnLabeler,
	notifier Notifier) *Service {
	return &Service{
		orders:    orders,
		products:  products,
		users:     users,
		addresses: addresses,
		shipments: shipments,
		shipper:   shipper,
		refunder:  refunder,
		labels:    labels,
		notifier:  notifier,
		now:       time.Now,
	}
}

type LineItemInput struct {
	ProductID primitive.ObjectID `json:"productId"`
	Quantity  int                `json:"quantity"`
}

// CreateOrder snapshots current product prices into line items and computes
// the total with decimal arithmetic. Inventory is not reserved at creation;
// it is only adjusted back on returns.
func (s *Service) CreateOrder(ctx context.Context, userID primitive.ObjectID, items []LineItemInput, shippingAddressID primitive.ObjectID) (*models.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	if _, err := s.addresses.GetByID(ctx, shippingAddressID); err != nil {
		return nil, err
	}

	total := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("invalid quantity %d for product %s", item.Quantity, item.ProductID.Hex())
		}
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}

		unit := decimal.NewFromFloat(product.Price)
		lineTotal := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(lineTotal)

		orderItems = append(orderItems, models.OrderItem{
			ProductID:  product.ID,
			Quantity:   item.Quantity,
			UnitPrice:  product.Price,
			TotalPrice: lineTotal.InexactFloat64(),
		})
	}

	now := s.now()
	order := &models.Order{
		UserID:            userID,
		Items:             orderItems,
		TotalAmount:       total.InexactFloat64(),
		Status:            models.OrderStatusPending,
		PaymentStatus:     models.PaymentStatusUnpaid,
		ShippingAddressID: shippingAddressID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, err
	}

	log.Printf("🛒 Order %s created for user %s, total %.2f", order.ID.Hex(), userID.Hex(), order.TotalAmount)
	return order, nil
}

// AmountCents converts an order total to the provider's integer minor units.
func AmountCents(order *models.Order) int64 {
	return decimal.NewFromFloat(order.TotalAmount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// UpdateStatus is the admin override for the order status track.
func (s *Service) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Status = status
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// MarkShipped is the admin path into shipment creation for orders whose
// payment succeeded while no courier was available.
func (s *Service) MarkShipped(ctx context.Context, orderID primitive.ObjectID) (*models.Shipment, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderStatusShipped || order.Status == models.OrderStatusDelivered {
		return nil, ErrAlreadyShipped
	}
	return s.shipper.CreateShipment(ctx, orderID)
}
