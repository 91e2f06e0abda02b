// File: services/booking/lifecycle.go
package booking

import (
	"context"
	"time"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/policy"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"go.uber.org/zap"
)

// Confirm moves a booking to confirmed once enough money has landed. It is
// idempotent so replayed webhooks cannot double-fire it.
func (e *DefaultEngine) Confirm(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := e.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == models.BookingConfirmed {
		return b, nil
	}
	if !models.CanTransition(b.Status, models.BookingConfirmed) {
		return nil, errInvalidTransition(b.Status, models.BookingConfirmed)
	}

	now := e.Clock.Now()
	b.Status = models.BookingConfirmed
	b.ConfirmedAt = &now
	if err := e.save(ctx, b); err != nil {
		// A concurrent confirm is fine; anything else is not.
		if fresh, loadErr := e.load(ctx, bookingID); loadErr == nil && fresh.Status == models.BookingConfirmed {
			return fresh, nil
		}
		return nil, err
	}

	e.Notify.Notify(ctx, b.CustomerID, models.NotifyBookingConfirmed, map[string]any{"bookingId": b.ID})
	utils.GetLogger().Info("booking confirmed", zap.String("bookingId", b.ID))
	return b, nil
}

// CheckIn records the customer's arrival. Allowed from 15 minutes before the
// slot starts until the slot ends.
func (e *DefaultEngine) CheckIn(ctx context.Context, auth models.AuthContext, id string) (*models.Booking, error) {
	if !auth.IsStaff() {
		return nil, ErrStaffOnly
	}
	b, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(b.Status, models.BookingCheckedIn) {
		return nil, errInvalidTransition(b.Status, models.BookingCheckedIn)
	}

	now := e.Clock.Now()
	if now.Before(b.StartTime.Add(-models.EarlyCheckInWindow)) || !now.Before(b.EndTime) {
		return nil, ErrCheckInWindow
	}

	b.Status = models.BookingCheckedIn
	b.CheckedInAt = &now
	if err := e.save(ctx, b); err != nil {
		return nil, err
	}

	if _, err := e.Scheduler.Begin(ctx, b.SlotID); err != nil {
		// The booking is the source of truth; the slot catches up at checkout.
		utils.GetLogger().Warn("slot begin failed after check-in", zap.String("slotId", b.SlotID), zap.Error(err))
	}
	utils.GetLogger().Info("booking checked in", zap.String("bookingId", b.ID), zap.String("staffId", auth.UserID))
	return b, nil
}

// CheckOut closes the session, completes the slot and returns the equipment.
func (e *DefaultEngine) CheckOut(ctx context.Context, auth models.AuthContext, id string) (*models.Booking, error) {
	if !auth.IsStaff() {
		return nil, ErrStaffOnly
	}
	b, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(b.Status, models.BookingCompleted) {
		return nil, errInvalidTransition(b.Status, models.BookingCompleted)
	}

	now := e.Clock.Now()
	b.Status = models.BookingCompleted
	b.CompletedAt = &now
	if err := e.save(ctx, b); err != nil {
		return nil, err
	}

	if _, err := e.Scheduler.Complete(ctx, b.SlotID); err != nil {
		utils.GetLogger().Warn("slot complete failed after checkout", zap.String("slotId", b.SlotID), zap.Error(err))
	}
	e.releaseDetails(ctx, b.EquipmentDetails())

	utils.GetLogger().Info("booking completed", zap.String("bookingId", b.ID), zap.String("staffId", auth.UserID))
	return b, nil
}

// Cancel voids a pending or confirmed booking. The refund is computed from
// the cancellation snapshot against the money actually paid, the slot and
// equipment are released, and any refund is handed to the payment side.
func (e *DefaultEngine) Cancel(ctx context.Context, auth models.AuthContext, id, reason string) (*CancelResult, error) {
	b, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(auth, b); err != nil {
		return nil, err
	}
	if !models.CanTransition(b.Status, models.BookingCancelled) {
		return nil, errInvalidTransition(b.Status, models.BookingCancelled)
	}

	now := e.Clock.Now()
	paid, err := e.Payments.SumPaidByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	outcome := policy.ComputeRefund(b.CancellationPolicy, b.StartTime, now, paid)

	b.Status = models.BookingCancelled
	b.CancelledAt = &now
	b.CancelReason = reason
	b.Financials = models.BookingFinancials{
		OriginalAmount: b.Totals.FinalAmount,
		RefundAmount:   outcome.RefundAmount,
		ChargeAmount:   outcome.ChargeAmount,
		NetAmount:      outcome.ChargeAmount,
	}
	if err := e.save(ctx, b); err != nil {
		return nil, err
	}

	e.releaseSlot(ctx, b.SlotID)
	e.releaseDetails(ctx, b.EquipmentDetails())
	e.requestRefund(ctx, b.ID, outcome.RefundAmount, "booking cancelled")

	e.Notify.Notify(ctx, b.CustomerID, models.NotifyBookingCancelled, map[string]any{
		"bookingId":    b.ID,
		"refundAmount": outcome.RefundAmount,
	})
	utils.GetLogger().Info("booking cancelled",
		zap.String("bookingId", b.ID),
		zap.Int64("paid", paid),
		zap.Int64("refund", outcome.RefundAmount),
	)
	return &CancelResult{Booking: b, Refund: outcome}, nil
}

// MarkNoShow fines a confirmed booking whose customer never arrived. Only
// valid once the grace window after the start time has elapsed; a recorded
// check-in inside the grace window blocks it.
func (e *DefaultEngine) MarkNoShow(ctx context.Context, auth models.AuthContext, id string, checkIn *time.Time) (*models.Booking, error) {
	if !auth.IsStaff() {
		return nil, ErrStaffOnly
	}
	b, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(b.Status, models.BookingNoShow) {
		return nil, errInvalidTransition(b.Status, models.BookingNoShow)
	}

	now := e.Clock.Now()
	grace := time.Duration(0)
	if b.NoShowPolicy != nil {
		grace = time.Duration(b.NoShowPolicy.GraceMinutes) * time.Minute
	}
	if !now.After(b.StartTime.Add(grace)) {
		return nil, ErrNoShowTooEarly
	}

	prevNoShows := 0
	if u, err := e.Users.GetByID(ctx, b.CustomerID); err == nil {
		prevNoShows = u.NoShowCount
	} else {
		utils.GetLogger().Warn("no-show count lookup failed", zap.String("customerId", b.CustomerID), zap.Error(err))
	}

	outcome := policy.ComputeNoShowCharge(b.NoShowPolicy, b.StartTime, checkIn, b.Totals.FinalAmount, prevNoShows)
	if outcome.WithinGrace {
		return nil, ErrCustomerArrived
	}

	paid, err := e.Payments.SumPaidByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	retained := outcome.ChargeAmount
	if retained > paid {
		retained = paid
	}

	b.Status = models.BookingNoShow
	b.NoShowAt = &now
	b.Financials = models.BookingFinancials{
		OriginalAmount: b.Totals.FinalAmount,
		RefundAmount:   paid - retained,
		ChargeAmount:   outcome.ChargeAmount,
		NetAmount:      retained,
	}
	if err := e.save(ctx, b); err != nil {
		return nil, err
	}

	e.releaseSlot(ctx, b.SlotID)
	e.releaseDetails(ctx, b.EquipmentDetails())
	if _, err := e.Users.IncrementNoShowCount(ctx, b.CustomerID); err != nil {
		utils.GetLogger().Error("no-show count increment failed", zap.String("customerId", b.CustomerID), zap.Error(err))
	}
	e.requestRefund(ctx, b.ID, b.Financials.RefundAmount, "no-show partial refund")

	e.Notify.Notify(ctx, b.CustomerID, models.NotifyBookingNoShow, map[string]any{
		"bookingId":    b.ID,
		"chargeAmount": outcome.ChargeAmount,
	})
	utils.GetLogger().Info("booking marked no-show",
		zap.String("bookingId", b.ID),
		zap.Int("chargePercentage", outcome.ChargePercentage),
		zap.Int64("chargeAmount", outcome.ChargeAmount),
	)
	return b, nil
}

// SweepNoShows flags confirmed bookings whose whole slot has passed without a
// check-in. Returns how many were marked.
func (e *DefaultEngine) SweepNoShows(ctx context.Context) (int, error) {
	now := e.Clock.Now()
	overdue, err := e.Bookings.ListConfirmedStartingBefore(ctx, now)
	if err != nil {
		return 0, err
	}

	marked := 0
	for i := range overdue {
		b := &overdue[i]
		if now.Before(b.EndTime) {
			// Mid-session late arrivals are front-desk calls, not ours.
			continue
		}
		if _, err := e.MarkNoShow(ctx, systemAuth, b.ID, nil); err != nil {
			if utils.KindOf(err) == utils.KindPolicyViolation || utils.KindOf(err) == utils.KindConflict {
				continue
			}
			utils.GetLogger().Error("no-show sweep failed for booking", zap.String("bookingId", b.ID), zap.Error(err))
			continue
		}
		marked++
	}
	return marked, nil
}

// SweepStalePending cancels pending bookings whose payment window lapsed with
// no money in flight, freeing their slots. Returns how many were cancelled.
func (e *DefaultEngine) SweepStalePending(ctx context.Context) (int, error) {
	now := e.Clock.Now()
	stale, err := e.Bookings.ListPendingCreatedBefore(ctx, now.Add(-pendingTTL))
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for i := range stale {
		b := &stale[i]
		if live, err := e.hasLivePayment(ctx, b.ID, now); err != nil || live {
			if err != nil {
				utils.GetLogger().Error("stale sweep payment check failed", zap.String("bookingId", b.ID), zap.Error(err))
			}
			continue
		}
		if _, err := e.Cancel(ctx, systemAuth, b.ID, "payment window expired"); err != nil {
			if utils.KindOf(err) == utils.KindConflict {
				continue
			}
			utils.GetLogger().Error("stale sweep cancel failed", zap.String("bookingId", b.ID), zap.Error(err))
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

// hasLivePayment reports whether money is settled or still in flight.
func (e *DefaultEngine) hasLivePayment(ctx context.Context, bookingID string, now time.Time) (bool, error) {
	payments, err := e.Payments.ListByBooking(ctx, bookingID)
	if err != nil {
		return false, err
	}
	for i := range payments {
		p := &payments[i]
		if p.Status == models.PaymentPaid {
			return true, nil
		}
		if p.Status == models.PaymentPending && !p.Expired(now) {
			return true, nil
		}
	}
	return false, nil
}

func (e *DefaultEngine) releaseSlot(ctx context.Context, slotID string) {
	if _, err := e.Scheduler.Release(ctx, slotID); err != nil {
		utils.GetLogger().Error("slot release failed", zap.String("slotId", slotID), zap.Error(err))
	}
}

// requestRefund hands money back through the payment side, best effort. A
// failure leaves the booking financials as the reconciliation record.
func (e *DefaultEngine) requestRefund(ctx context.Context, bookingID string, amount int64, reason string) {
	if amount <= 0 {
		return
	}
	if e.Refunds == nil {
		utils.GetLogger().Warn("refund service not wired, refund left unprocessed",
			zap.String("bookingId", bookingID), zap.Int64("amount", amount))
		return
	}
	if err := e.Refunds.RefundForBooking(ctx, bookingID, amount, reason); err != nil {
		utils.GetLogger().Error("refund request failed", zap.String("bookingId", bookingID), zap.Int64("amount", amount), zap.Error(err))
	}
}
