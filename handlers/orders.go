package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nimbusmart/nimbusmart-backend-go/models"
	"github.com/nimbusmart/nimbusmart-backend-go/orders"
)

type CreateOrderRequest struct {
	Items             []orders.LineItemInput `json:"items"`
	ShippingAddressID string                 `json:"shippingAddressId"`
}

func CreateOrder(c echo.Context) error {
	userID, ok := c.Get("userID").(primitive.ObjectID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	addressID, err := primitive.ObjectIDFromHex(req.ShippingAddressID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid shipping address ID"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	order, err := deps.OrderService.CreateOrder(ctx, userID, req.Items, addressID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

func GetOrder(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("orderId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order ID format"})
	}

	order, err := deps.Orders.GetByID(c.Request().Context(), orderID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

func GetOrderStatus(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("orderId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order ID format"})
	}

	order, err := deps.Orders.GetByID(c.Request().Context(), orderID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":        string(order.Status),
		"paymentStatus": string(order.PaymentStatus),
	})
}

func GetMyOrders(c echo.Context) error {
	userID, ok := c.Get("userID").(primitive.ObjectID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orderList, err := deps.Orders.ListByUser(ctx, userID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, orderList)
}

func GetAllOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orderList, err := deps.Orders.ListAll(ctx)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, orderList)
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

func UpdateOrderStatus(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("orderId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order ID format"})
	}

	var req UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	order, err := deps.OrderService.UpdateStatus(ctx, orderID, req.Status)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

func MarkAsShipped(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("orderId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order ID format"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	shipment, err := deps.OrderService.MarkShipped(ctx, orderID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message":        "Order marked as shipped",
		"trackingNumber": shipment.TrackingNumber,
	})
}

func InitiateReturn(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("orderId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order ID format"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	trackingNumber, err := deps.OrderService.InitiateReturn(ctx, orderID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message":        "Return initiated, return shipment created",
		"trackingNumber": trackingNumber,
	})
}

type InStoreReturnRequest struct {
	ProofOfPurchase string `json:"proofOfPurchase"`
}

func ProcessInStoreReturn(c echo.Context) error {
	var req InStoreReturnRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.ProofOfPurchase == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Proof of purchase is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	order, err := deps.OrderService.ProcessInStoreReturn(ctx, req.ProofOfPurchase)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Order marked as returned and refund processed",
		"order":   order,
	})
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

func CancelOrder(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("orderId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order ID format"})
	}

	var req CancelOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if _, err := deps.OrderService.Cancel(ctx, orderID, req.Reason); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Order has been cancelled successfully.",
	})
}
