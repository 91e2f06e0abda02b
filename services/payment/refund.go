// File: services/payment/refund.go
package payment

import (
	"context"
	"errors"
	"fmt"

	paymentRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/payment"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"go.uber.org/zap"
)

// RequestRefund refunds a single paid payment in full. Staff only.
func (o *DefaultOrchestrator) RequestRefund(ctx context.Context, auth models.AuthContext, paymentID, reason string) (*models.Payment, error) {
	if !auth.IsStaff() {
		return nil, utils.NewError(utils.KindForbidden, "STAFF_ONLY", "only staff can issue refunds")
	}

	p, err := o.Payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	updated, err := o.Payments.MarkRefunded(ctx, p.ID, models.RefundInfo{
		Amount:     p.Amount,
		Reason:     reason,
		RefundedAt: o.Clock.Now(),
	})
	if err != nil {
		if errors.Is(err, paymentRepo.ErrWrongStatus) {
			return nil, ErrNotRefundable
		}
		return nil, err
	}

	if b, err := o.Bookings.GetByID(ctx, updated.BookingID); err == nil {
		o.Notify.Notify(ctx, b.CustomerID, models.NotifyRefundIssued, map[string]any{
			"bookingId":    b.ID,
			"paymentId":    updated.ID,
			"refundAmount": updated.Amount,
		})
	}

	utils.GetLogger().Info("refund issued",
		zap.String("paymentId", updated.ID),
		zap.Int64("amount", updated.Amount),
		zap.String("reason", reason),
	)
	return updated, nil
}

// RefundForBooking refunds up to amount across the booking's paid payments,
// newest first. Called by the booking engine during cancellation and no-show
// settlement.
func (o *DefaultOrchestrator) RefundForBooking(ctx context.Context, bookingID string, amount int64, reason string) error {
	if amount <= 0 {
		return nil
	}

	payments, err := o.Payments.ListByBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	now := o.Clock.Now()
	remaining := amount
	for i := range payments {
		if remaining <= 0 {
			break
		}
		p := &payments[i]
		if p.Status != models.PaymentPaid {
			continue
		}
		chunk := remaining
		if p.Amount < chunk {
			chunk = p.Amount
		}
		if _, err := o.Payments.MarkRefunded(ctx, p.ID, models.RefundInfo{
			Amount:     chunk,
			Reason:     reason,
			RefundedAt: now,
		}); err != nil {
			if errors.Is(err, paymentRepo.ErrWrongStatus) {
				// Lost a race against another refund for this payment.
				continue
			}
			return err
		}
		remaining -= chunk
	}

	if remaining > 0 {
		return fmt.Errorf("refund for booking %s short by %d", bookingID, remaining)
	}
	utils.GetLogger().Info("booking refund processed",
		zap.String("bookingId", bookingID),
		zap.Int64("amount", amount),
		zap.String("reason", reason),
	)
	return nil
}
