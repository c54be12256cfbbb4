package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nimbusmart/nimbusmart-backend-go/orders"
	"github.com/nimbusmart/nimbusmart-backend-go/payments"
	"github.com/nimbusmart/nimbusmart-backend-go/polling"
	"github.com/nimbusmart/nimbusmart-backend-go/shipping"
	"github.com/nimbusmart/nimbusmart-backend-go/store"
)

// Deps carries the stores and engines the handlers run against. main wires
// it once at startup.
type Deps struct {
	Orders    *store.Orders
	Users     *store.Users
	Products  *store.Products
	Addresses *store.Addresses

	OrderService *orders.Service
	Shipping     *shipping.Engine
	Processor    *payments.Processor
	Provider     payments.Provider
	Poller       *polling.Poller
}

var deps Deps

func Init(d Deps) {
	deps = d
}

// errorResponse maps the domain error taxonomy onto HTTP statuses. Unmatched
// errors become a generic 500 so internals never leak to clients.
func errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrOrderNotFound),
		errors.Is(err, store.ErrShipmentNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrProductNotFound),
		errors.Is(err, store.ErrAddressNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})

	case errors.Is(err, shipping.ErrInvalidOrderState),
		errors.Is(err, shipping.ErrInvalidTransition),
		errors.Is(err, orders.ErrEmptyOrder),
		errors.Is(err, orders.ErrNotCancellable),
		errors.Is(err, orders.ErrNotReturnable),
		errors.Is(err, orders.ErrUnpaidReturn),
		errors.Is(err, orders.ErrRefundAlreadyProcessed),
		errors.Is(err, orders.ErrAlreadyShipped),
		errors.Is(err, orders.ErrInvalidProof):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})

	case errors.Is(err, store.ErrNoCourierAvailable):
		// Retryable: the order stays in processing until a courier frees up.
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})

	case errors.Is(err, payments.ErrProvider):
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})

	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}
