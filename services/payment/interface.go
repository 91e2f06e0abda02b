package payment

import (
	"context"

	bookingRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/booking"
	paymentRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/payment"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/booking"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/gateway"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/notification"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"
)

// WebhookAction says what a webhook delivery did.
type WebhookAction string

const (
	WebhookPaid    WebhookAction = "paid"
	WebhookFailed  WebhookAction = "failed"
	WebhookIgnored WebhookAction = "ignored"
)

// WebhookResult reports the outcome of processing one delivery.
type WebhookResult struct {
	Action  WebhookAction   `json:"action"`
	Payment *models.Payment `json:"payment,omitempty"`
}

// Orchestrator owns the money side of a booking: checkout sessions against
// the gateway, webhook settlement, refunds and the expiry sweep.
type Orchestrator interface {
	// Options lists the ways the booking can be paid right now, given its
	// pay type and what has already landed.
	Options(ctx context.Context, auth models.AuthContext, bookingID string) ([]models.PaymentOption, error)
	// CreateSession opens (or reuses) a pending checkout session.
	CreateSession(ctx context.Context, auth models.AuthContext, bookingID string, req models.CreatePaymentRequest) (*models.Payment, error)
	// CreateRemainderSession opens a session for everything still owed.
	CreateRemainderSession(ctx context.Context, auth models.AuthContext, bookingID string) (*models.Payment, error)
	// HandleWebhook settles or fails the referenced payment. Idempotent:
	// replayed deliveries come back as WebhookIgnored.
	HandleWebhook(ctx context.Context, body []byte, signature string) (*WebhookResult, error)
	GetStatus(ctx context.Context, auth models.AuthContext, paymentID string) (*models.Payment, error)
	ListForBooking(ctx context.Context, auth models.AuthContext, bookingID string) ([]models.Payment, error)
	// RequestRefund refunds one paid payment in full (staff operation).
	RequestRefund(ctx context.Context, auth models.AuthContext, paymentID, reason string) (*models.Payment, error)
	// SweepExpired expires overdue pending sessions.
	SweepExpired(ctx context.Context) (int64, error)

	booking.RefundService
}

// DefaultOrchestrator is the production implementation.
type DefaultOrchestrator struct {
	Payments paymentRepo.PaymentRepository
	Bookings bookingRepo.BookingRepository
	Engine   booking.Engine
	Gateway  gateway.Client
	Notify   notification.Dispatcher
	Clock    utils.Clock
}

func NewDefaultOrchestrator(
	payments paymentRepo.PaymentRepository,
	bookings bookingRepo.BookingRepository,
	engine booking.Engine,
	gw gateway.Client,
	notify notification.Dispatcher,
	clock utils.Clock,
) *DefaultOrchestrator {
	if clock == nil {
		clock = utils.NewSystemClock()
	}
	return &DefaultOrchestrator{
		Payments: payments,
		Bookings: bookings,
		Engine:   engine,
		Gateway:  gw,
		Notify:   notify,
		Clock:    clock,
	}
}
