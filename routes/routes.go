package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nimbusmart/nimbusmart-backend-go/handlers"
	customMiddleware "github.com/nimbusmart/nimbusmart-backend-go/middleware"
	"github.com/nimbusmart/nimbusmart-backend-go/models"
)

func SetupRoutes(e *echo.Echo) {
	// Public routes
	e.POST("/register", handlers.SignUp)
	e.POST("/login", handlers.Login)

	// Stripe calls this with its own signature header; it must stay outside
	// the JWT group.
	e.POST("/webhooks/stripe", handlers.HandleStripeWebhook)

	// Public shipment tracking (customer email is masked in the response).
	e.GET("/track/:trackingNumber", handlers.TrackShipment)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Protected API routes
	api := e.Group("/api")
	api.Use(customMiddleware.AuthMiddleware)

	// User routes
	api.GET("/users/me", handlers.GetUserProfile)
	api.GET("/users/me/addresses", handlers.GetUserAddresses)
	api.POST("/users/me/addresses", handlers.AddUserAddress)

	// Product routes
	api.GET("/products", handlers.GetProducts)
	api.GET("/products/:id", handlers.GetProduct)
	api.POST("/products", handlers.CreateProduct, customMiddleware.RequireRole(models.RoleAdmin, models.RoleVendor))

	// Order routes
	api.POST("/orders", handlers.CreateOrder)
	api.GET("/orders", handlers.GetMyOrders)
	api.GET("/orders/:orderId", handlers.GetOrder)
	api.GET("/orders/:orderId/status", handlers.GetOrderStatus)
	api.POST("/orders/:orderId/payment-intent", handlers.CreatePaymentIntent)
	api.POST("/orders/:orderId/cancel", handlers.CancelOrder)
	api.POST("/orders/:orderId/return", handlers.InitiateReturn)

	admin := customMiddleware.RequireRole(models.RoleAdmin)
	api.GET("/admin/orders", handlers.GetAllOrders, admin)
	api.PUT("/orders/:orderId/status", handlers.UpdateOrderStatus, admin)
	api.POST("/orders/:orderId/mark-shipped", handlers.MarkAsShipped, admin)

	// In-store returns are handled at the counter by store staff.
	api.POST("/returns/in-store", handlers.ProcessInStoreReturn, customMiddleware.RequireRole(models.RoleAdmin, models.RoleStoreStaff))

	// Shipment routes
	api.POST("/shipments", handlers.CreateShipment, admin)
	api.PUT("/shipments/:trackingNumber/status", handlers.UpdateShipmentStatus, customMiddleware.RequireRole(models.RoleAdmin, models.RoleCourier))

	api.GET("/admin/poller/health", handlers.GetPollerHealth, admin)
}
