package notify

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nimbusmart/nimbusmart-backend-go/metrics"
	"github.com/nimbusmart/nimbusmart-backend-go/models"
)

// Sender delivers a single message. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// UserGetter resolves the recipient for an order notification.
type UserGetter interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Dispatcher sends customer and administrator notifications. Every dispatch
// is fire-and-forget: it runs detached from the caller's request, and
// failures are logged and counted but never propagated.
type Dispatcher struct {
	users       UserGetter
	sender      Sender
	adminEmails []string
	timeout     time.Duration
}

func NewDispatcher(users UserGetter, sender Sender, adminEmails []string) *Dispatcher {
	return &Dispatcher{
		users:       users,
		sender:      sender,
		adminEmails: adminEmails,
		timeout:     10 * time.Second,
	}
}

// NotifyOrder emails the order's owner about the named event.
func (d *Dispatcher) NotifyOrder(order *models.Order, event string) {
	// Snapshot what the goroutine needs; the caller may keep mutating order.
	snapshot := *order
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		user, err := d.users.GetByID(ctx, snapshot.UserID)
		if err != nil {
			log.Printf("❌ Cannot send %q notification, user lookup failed for order %s: %v", event, snapshot.ID.Hex(), err)
			metrics.NotificationsFailed.Inc()
			return
		}

		content := contentFor(event, user, &snapshot)
		if err := d.sender.Send(ctx, []string{user.Email}, content.Subject, content.Body); err != nil {
			log.Printf("❌ Failed to send %q notification for order %s: %v", event, snapshot.ID.Hex(), err)
			metrics.NotificationsFailed.Inc()
			return
		}
		log.Printf("📧 Sent %q notification for order %s to %s", event, snapshot.ID.Hex(), user.Email)
	}()
}

// NotifyAdmin alerts the configured administrator addresses. Best effort.
func (d *Dispatcher) NotifyAdmin(message string) {
	if len(d.adminEmails) == 0 {
		log.Println("⚠️ No admin emails configured, cannot send admin notification")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.sender.Send(ctx, d.adminEmails, "Admin Notification", message); err != nil {
			log.Printf("❌ Failed to send admin notification: %v", err)
			metrics.NotificationsFailed.Inc()
			return
		}
		log.Printf("📧 Admin notification sent: %s", message)
	}()
}

// SMTPSender delivers mail through a plain SMTP relay.
type SMTPSender struct {
	Addr string // host:port
	From string
	Auth smtp.Auth
}

func (s *SMTPSender) Send(_ context.Context, to []string, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.From, strings.Join(to, ", "), subject, body)
	if err := smtp.SendMail(s.Addr, s.Auth, s.From, to, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogSender is used when no SMTP relay is configured. It writes the message
// to the log instead of delivering it.
type LogSender struct{}

func (LogSender) Send(_ context.Context, to []string, subject, _ string) error {
	log.Printf("📧 (dry run) to=%s subject=%q", strings.Join(to, ","), subject)
	return nil
}
