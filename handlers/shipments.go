package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nimbusmart/nimbusmart-backend-go/models"
)

type CreateShipmentRequest struct {
	OrderID string `json:"orderId"`
}

func CreateShipment(c echo.Context) error {
	var req CreateShipmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.OrderID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Order ID is required"})
	}

	orderID, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order ID format"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	shipment, err := deps.Shipping.CreateShipment(ctx, orderID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"message":        "Shipment created successfully",
		"trackingNumber": shipment.TrackingNumber,
	})
}

type UpdateShipmentStatusRequest struct {
	Status models.ShipmentStatus `json:"status"`
}

func UpdateShipmentStatus(c echo.Context) error {
	trackingNumber := c.Param("trackingNumber")

	var req UpdateShipmentStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.Status == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "New status is required"})
	}
	if !req.Status.IsValid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown shipment status"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	shipment, err := deps.Shipping.UpdateShipmentStatus(ctx, trackingNumber, req.Status)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, shipment)
}

// TrackShipment returns shipment progress plus the order's owner with a
// masked email address.
func TrackShipment(c echo.Context) error {
	trackingNumber := c.Param("trackingNumber")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shipment, order, err := deps.Shipping.TrackShipment(ctx, trackingNumber)
	if err != nil {
		return errorResponse(c, err)
	}

	user, err := deps.Users.GetByID(ctx, order.UserID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"shipment": map[string]interface{}{
			"trackingNumber":        shipment.TrackingNumber,
			"status":                shipment.Status,
			"type":                  shipment.Type,
			"estimatedDeliveryDate": shipment.EstimatedDeliveryDate,
			"lastUpdated":           shipment.LastUpdated,
			"order": map[string]interface{}{
				"orderId": order.ID.Hex(),
				"user": map[string]string{
					"firstName": user.FirstName,
					"lastName":  user.LastName,
					"email":     maskEmail(user.Email),
				},
			},
		},
	})
}

func maskEmail(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 {
		return "***"
	}
	local := parts[0]
	if len(local) > 2 {
		return local[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}
