package main

import (
	"context"
	"log"
	"net/smtp"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nimbusmart/nimbusmart-backend-go/config"
	"github.com/nimbusmart/nimbusmart-backend-go/database"
	"github.com/nimbusmart/nimbusmart-backend-go/handlers"
	"github.com/nimbusmart/nimbusmart-backend-go/notify"
	"github.com/nimbusmart/nimbusmart-backend-go/orders"
	"github.com/nimbusmart/nimbusmart-backend-go/payments"
	"github.com/nimbusmart/nimbusmart-backend-go/polling"
	"github.com/nimbusmart/nimbusmart-backend-go/routes"
	"github.com/nimbusmart/nimbusmart-backend-go/shipping"
	"github.com/nimbusmart/nimbusmart-backend-go/store"
)

func main() {
	// Load environment variables
	config.LoadEnv()

	// Initialize Echo
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Connect to MongoDB
	if err := database.ConnectDB(); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Stores
	orderStore := store.NewOrders(database.DB)
	shipmentStore := store.NewShipments(database.DB)
	userStore := store.NewUsers(database.DB)
	productStore := store.NewProducts(database.DB)
	addressStore := store.NewAddresses(database.DB)
	eventStore := store.NewEvents(database.DB)

	if config.GetEnvBool("SEED_SAMPLE_COURIERS", false) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := store.SeedSampleCouriers(ctx, userStore); err != nil {
			log.Printf("⚠️ Courier seeding failed: %v", err)
		}
		cancel()
	}

	// Notifications: use the SMTP relay when configured, otherwise log-only.
	var sender notify.Sender = notify.LogSender{}
	if smtpAddr := config.GetEnv("SMTP_ADDR", ""); smtpAddr != "" {
		var auth smtp.Auth
		if user := config.GetEnv("SMTP_USER", ""); user != "" {
			host := config.GetEnv("SMTP_HOST", "")
			auth = smtp.PlainAuth("", user, config.GetEnv("SMTP_PASSWORD", ""), host)
		}
		sender = &notify.SMTPSender{
			Addr: smtpAddr,
			From: config.GetEnv("SMTP_FROM", "orders@nimbusmart.com"),
			Auth: auth,
		}
	}
	notifier := notify.NewDispatcher(userStore, sender, config.GetEnvList("ADMIN_EMAILS"))

	// Domain engines
	provider := payments.NewStripeProvider(config.GetEnv("STRIPE_SECRET_KEY", ""))
	shippingEngine := shipping.NewEngine(orderStore, shipmentStore, userStore, notifier)

	orderService := orders.NewService(orderStore, productStore, userStore, addressStore,
		shipmentStore, shippingEngine, provider, orders.NewLocalReturnLabeler(), notifier)
	orderService.CancelRequiresRefund = config.GetEnvBool("CANCEL_REQUIRES_REFUND", false)

	processor := payments.NewProcessor(orderStore, eventStore, shippingEngine, notifier)

	// Payment event poller (catches anything the webhook missed)
	pollInterval := config.GetEnvDuration("POLL_INTERVAL", 5*time.Minute)
	poller := polling.NewPoller(provider, eventStore, processor, pollInterval)
	if err := poller.Start(); err != nil {
		log.Fatal("Failed to start payment event poller:", err)
	}

	handlers.Init(handlers.Deps{
		Orders:    orderStore,
		Users:     userStore,
		Products:  productStore,
		Addresses: addressStore,

		OrderService: orderService,
		Shipping:     shippingEngine,
		Processor:    processor,
		Provider:     provider,
		Poller:       poller,
	})

	// Setup routes
	routes.SetupRoutes(e)

	// Start the server
	port := config.GetEnv("PORT", "3000")
	e.Logger.Fatal(e.Start(":" + port))
}
