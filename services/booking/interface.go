package booking

import (
	"context"
	"time"

	bookingRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/booking"
	paymentRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/payment"
	studioRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/studio"
	userRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/user"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/inventory"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/notification"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/policy"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/promotion"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/scheduler"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"
)

// pendingTTL is how long a pending booking may sit without a live payment
// before the sweep cancels it and frees the slot.
const pendingTTL = 30 * time.Minute

// ExtendResult reports the outcome of stretching a booking.
type ExtendResult struct {
	Booking          *models.Booking `json:"booking"`
	AdditionalAmount int64           `json:"additionalAmount"`
}

// CancelResult pairs the cancelled booking with the refund maths applied.
type CancelResult struct {
	Booking *models.Booking      `json:"booking"`
	Refund  policy.RefundOutcome `json:"refund"`
}

// RefundService marks payments refunded when a cancellation or no-show
// releases money. Implemented by the payment orchestrator; kept narrow so
// the dependency does not cycle.
type RefundService interface {
	RefundForBooking(ctx context.Context, bookingID string, amount int64, reason string) error
}

// Engine drives the booking lifecycle end to end. Every mutation validates
// the state machine, serializes on the slot or the booking version, and
// compensates partial work on failure.
type Engine interface {
	Create(ctx context.Context, auth models.AuthContext, req models.CreateBookingRequest) (*models.Booking, error)
	Get(ctx context.Context, auth models.AuthContext, id string) (*models.Booking, error)
	List(ctx context.Context, auth models.AuthContext, q bookingRepo.ListQuery) ([]models.Booking, int64, error)

	// Confirm is invoked by the payment flow once the deposit threshold is
	// reached. It is idempotent: confirming a confirmed booking is a no-op.
	Confirm(ctx context.Context, bookingID string) (*models.Booking, error)
	CheckIn(ctx context.Context, auth models.AuthContext, id string) (*models.Booking, error)
	CheckOut(ctx context.Context, auth models.AuthContext, id string) (*models.Booking, error)
	Extend(ctx context.Context, auth models.AuthContext, id string, newEnd time.Time) (*ExtendResult, error)
	ExtensionOptions(ctx context.Context, auth models.AuthContext, id string) (*scheduler.Headroom, error)
	Cancel(ctx context.Context, auth models.AuthContext, id, reason string) (*CancelResult, error)
	MarkNoShow(ctx context.Context, auth models.AuthContext, id string, checkIn *time.Time) (*models.Booking, error)
	Update(ctx context.Context, auth models.AuthContext, id string, req models.UpdateBookingRequest) (*models.Booking, error)

	// SweepNoShows and SweepStalePending are the background reconcilers.
	SweepNoShows(ctx context.Context) (int, error)
	SweepStalePending(ctx context.Context) (int, error)
}

// DefaultEngine is the production implementation.
type DefaultEngine struct {
	Bookings  bookingRepo.BookingRepository
	Payments  paymentRepo.PaymentRepository
	Users     userRepo.UserRepository
	Studios   studioRepo.StudioRepository
	Scheduler scheduler.Service
	Inventory inventory.Service
	Policies  policy.Store
	Promos    promotion.Service
	Notify    notification.Dispatcher
	Clock     utils.Clock

	// Refunds is wired after construction because the payment orchestrator
	// depends on this engine for confirmations.
	Refunds RefundService
}

func NewDefaultEngine(
	bookings bookingRepo.BookingRepository,
	payments paymentRepo.PaymentRepository,
	users userRepo.UserRepository,
	studios studioRepo.StudioRepository,
	sched scheduler.Service,
	inv inventory.Service,
	policies policy.Store,
	promos promotion.Service,
	notify notification.Dispatcher,
	clock utils.Clock,
) *DefaultEngine {
	if clock == nil {
		clock = utils.NewSystemClock()
	}
	return &DefaultEngine{
		Bookings:  bookings,
		Payments:  payments,
		Users:     users,
		Studios:   studios,
		Scheduler: sched,
		Inventory: inv,
		Policies:  policies,
		Promos:    promos,
		Notify:    notify,
		Clock:     clock,
	}
}

// systemAuth is the principal the background sweeps act as.
var systemAuth = models.AuthContext{UserID: "system", Role: models.RoleAdmin}
