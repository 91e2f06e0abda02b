// File: services/payment/webhook.go
package payment

import (
	"context"
	"encoding/json"
	"errors"

	bookingRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/booking"
	paymentRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/payment"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/config"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/gateway"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"go.uber.org/zap"
)

// HandleWebhook settles one gateway callback. Replays and callbacks for
// unknown order codes are acknowledged without side effects so the gateway
// stops retrying.
func (o *DefaultOrchestrator) HandleWebhook(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	logger := utils.GetLogger()

	if !o.Gateway.VerifySignature(body, signature) {
		if config.AppConfig.WebhookLenient {
			logger.Warn("webhook signature rejected, acknowledging anyway (lenient mode)")
			return &WebhookResult{Action: WebhookIgnored}, nil
		}
		return nil, ErrInvalidSignature
	}

	var payload gateway.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, ErrMalformedWebhook
	}

	p, err := o.Payments.GetByTransactionID(ctx, payload.Data.OrderCode)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrNotFound) {
			// The gateway sends probe webhooks with synthetic order codes.
			logger.Info("webhook for unknown order code ignored", zap.Int64("orderCode", payload.Data.OrderCode))
			return &WebhookResult{Action: WebhookIgnored}, nil
		}
		return nil, err
	}

	if !payload.Succeeded() {
		return o.settleFailure(ctx, p, payload.Desc)
	}
	return o.settleSuccess(ctx, p, &payload)
}

func (o *DefaultOrchestrator) settleSuccess(ctx context.Context, p *models.Payment, payload *gateway.WebhookPayload) (*WebhookResult, error) {
	logger := utils.GetLogger()

	if payload.Data.Amount != p.Amount {
		logger.Warn("webhook amount differs from session amount",
			zap.String("paymentId", p.ID),
			zap.Int64("expected", p.Amount),
			zap.Int64("received", payload.Data.Amount),
		)
	}

	updated, err := o.Payments.MarkPaid(ctx, p.ID, o.Clock.Now())
	if err != nil {
		if errors.Is(err, paymentRepo.ErrWrongStatus) {
			// Already settled; a replay changes nothing.
			logger.Info("duplicate webhook ignored", zap.String("paymentId", p.ID))
			return &WebhookResult{Action: WebhookIgnored, Payment: p}, nil
		}
		return nil, err
	}

	b, err := o.Bookings.GetByID(ctx, updated.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			logger.Error("paid payment references missing booking", zap.String("paymentId", updated.ID), zap.String("bookingId", updated.BookingID))
			return &WebhookResult{Action: WebhookPaid, Payment: updated}, nil
		}
		return nil, err
	}

	o.Notify.Notify(ctx, b.CustomerID, models.NotifyPaymentSuccess, map[string]any{
		"bookingId": b.ID,
		"paymentId": updated.ID,
		"amount":    updated.Amount,
	})

	// Confirm once the paid total reaches the pay type's deposit threshold.
	total, err := o.Payments.SumPaidByBooking(ctx, b.ID)
	if err != nil {
		logger.Error("failed to total paid amount after webhook", zap.String("bookingId", b.ID), zap.Error(err))
		return &WebhookResult{Action: WebhookPaid, Payment: updated}, nil
	}
	threshold := b.Totals.FinalAmount * int64(b.PayType.DepositPercent()) / 100
	if total >= threshold && b.Status == models.BookingPending {
		if _, err := o.Engine.Confirm(ctx, b.ID); err != nil {
			logger.Error("failed to confirm booking after payment", zap.String("bookingId", b.ID), zap.Error(err))
		}
	}

	logger.Info("webhook settled",
		zap.String("paymentId", updated.ID),
		zap.String("bookingId", b.ID),
		zap.Int64("amount", updated.Amount),
		zap.Int64("paidTotal", total),
	)
	return &WebhookResult{Action: WebhookPaid, Payment: updated}, nil
}

func (o *DefaultOrchestrator) settleFailure(ctx context.Context, p *models.Payment, reason string) (*WebhookResult, error) {
	updated, err := o.Payments.MarkFailed(ctx, p.ID, o.Clock.Now())
	if err != nil {
		if errors.Is(err, paymentRepo.ErrWrongStatus) {
			return &WebhookResult{Action: WebhookIgnored, Payment: p}, nil
		}
		return nil, err
	}

	if b, err := o.Bookings.GetByID(ctx, updated.BookingID); err == nil {
		o.Notify.Notify(ctx, b.CustomerID, models.NotifyPaymentFailed, map[string]any{
			"bookingId": b.ID,
			"paymentId": updated.ID,
			"reason":    reason,
		})
	}

	utils.GetLogger().Info("webhook reported failure",
		zap.String("paymentId", updated.ID),
		zap.String("reason", reason),
	)
	return &WebhookResult{Action: WebhookFailed, Payment: updated}, nil
}
