// File: services/payment/session.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	paymentRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/payment"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/config"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/gateway"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options lists the payable choices for the booking in its current state:
// the configured deposit or the full amount before any money lands, the
// outstanding remainder after.
func (o *DefaultOrchestrator) Options(ctx context.Context, auth models.AuthContext, bookingID string) ([]models.PaymentOption, error) {
	b, err := o.Engine.Get(ctx, auth, bookingID)
	if err != nil {
		return nil, err
	}

	paid, err := o.Payments.SumPaidByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	final := b.Totals.FinalAmount
	outstanding := final - paid

	options := []models.PaymentOption{}
	if b.Status.IsTerminal() || outstanding <= 0 {
		return options, nil
	}

	if paid == 0 {
		if pct := b.PayType.DepositPercent(); pct < 100 {
			options = append(options, models.PaymentOption{
				Kind:       models.PaymentDeposit,
				Percentage: pct,
				Amount:     final * int64(pct) / 100,
			})
		}
		options = append(options, models.PaymentOption{
			Kind:       models.PaymentFull,
			Percentage: 100,
			Amount:     final,
		})
		return options, nil
	}

	pct := 0
	if final > 0 {
		pct = int(outstanding * 100 / final)
	}
	options = append(options, models.PaymentOption{
		Kind:       models.PaymentRemainder,
		Percentage: pct,
		Amount:     outstanding,
	})
	return options, nil
}

// CreateSession opens a checkout session for the booking. Re-requesting the
// same kind while a live session exists returns that session instead of
// minting a second link.
func (o *DefaultOrchestrator) CreateSession(ctx context.Context, auth models.AuthContext, bookingID string, req models.CreatePaymentRequest) (*models.Payment, error) {
	b, err := o.Engine.Get(ctx, auth, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status.IsTerminal() {
		return nil, ErrBookingClosed
	}

	now := o.Clock.Now()
	paid, err := o.Payments.SumPaidByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	final := b.Totals.FinalAmount
	outstanding := final - paid
	if outstanding <= 0 {
		return nil, ErrAlreadySettled
	}

	kind, pct, amount, err := resolveSession(b, req, paid, outstanding)
	if err != nil {
		return nil, err
	}

	if existing, err := o.Payments.FindPendingByKind(ctx, b.ID, kind); err == nil {
		if !existing.Expired(now) && existing.Amount == amount {
			return existing, nil
		}
		// Stale or mispriced session: retire it and mint a fresh one.
		o.abandonSession(ctx, existing)
	} else if !errors.Is(err, paymentRepo.ErrNotFound) {
		return nil, err
	}

	p := &models.Payment{
		ID:         uuid.New().String(),
		BookingID:  b.ID,
		Amount:     amount,
		Percentage: pct,
		Kind:       kind,
		Status:     models.PaymentPending,
		CreatedAt:  now,
		ExpiresAt:  now.Add(models.PaymentSessionTTL),
	}
	for attempt := 0; ; attempt++ {
		p.TransactionID = newOrderCode(now)
		err = o.Payments.Create(ctx, p)
		if err == nil {
			break
		}
		if !errors.Is(err, paymentRepo.ErrDuplicateTransaction) || attempt >= 2 {
			return nil, err
		}
	}

	link, err := o.Gateway.CreateLink(ctx, gateway.CreateLinkRequest{
		OrderCode:   p.TransactionID,
		Amount:      amount,
		Description: fmt.Sprintf("Studio %s", shortID(b.ID)),
		Items: []gateway.LinkItem{{
			Name:     fmt.Sprintf("Studio session (%s)", kind),
			Quantity: 1,
			Price:    amount,
		}},
		ReturnURL: config.AppConfig.FrontendURL + "/payments/return",
		CancelURL: config.AppConfig.FrontendURL + "/payments/cancel",
	})
	if err != nil {
		if _, cancelErr := o.Payments.MarkCancelled(ctx, p.ID); cancelErr != nil {
			utils.GetLogger().Warn("failed to cancel payment after gateway error", zap.String("paymentId", p.ID), zap.Error(cancelErr))
		}
		return nil, err
	}

	p.CheckoutURL = link.CheckoutURL
	p.QRCode = link.QRCode
	if err := o.Payments.AttachCheckout(ctx, p.ID, link.CheckoutURL, link.QRCode); err != nil {
		utils.GetLogger().Warn("failed to persist checkout handle", zap.String("paymentId", p.ID), zap.Error(err))
	}

	utils.GetLogger().Info("payment session created",
		zap.String("paymentId", p.ID),
		zap.String("bookingId", b.ID),
		zap.String("kind", string(kind)),
		zap.Int64("amount", amount),
		zap.Int64("orderCode", p.TransactionID),
	)
	return p, nil
}

// CreateRemainderSession opens a session for everything still owed after the
// deposit settled.
func (o *DefaultOrchestrator) CreateRemainderSession(ctx context.Context, auth models.AuthContext, bookingID string) (*models.Payment, error) {
	return o.CreateSession(ctx, auth, bookingID, models.CreatePaymentRequest{Kind: models.PaymentRemainder})
}

func (o *DefaultOrchestrator) GetStatus(ctx context.Context, auth models.AuthContext, paymentID string) (*models.Payment, error) {
	p, err := o.Payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if _, err := o.Engine.Get(ctx, auth, p.BookingID); err != nil {
		return nil, err
	}
	if p.Expired(o.Clock.Now()) {
		// Present the truth even if the sweep has not flipped the doc yet.
		view := *p
		view.Status = models.PaymentExpired
		return &view, nil
	}
	return p, nil
}

func (o *DefaultOrchestrator) ListForBooking(ctx context.Context, auth models.AuthContext, bookingID string) ([]models.Payment, error) {
	if _, err := o.Engine.Get(ctx, auth, bookingID); err != nil {
		return nil, err
	}
	return o.Payments.ListByBooking(ctx, bookingID)
}

func (o *DefaultOrchestrator) SweepExpired(ctx context.Context) (int64, error) {
	return o.Payments.SweepExpired(ctx, o.Clock.Now())
}

// abandonSession retires a dead pending session locally and voids its
// checkout link, both best effort.
func (o *DefaultOrchestrator) abandonSession(ctx context.Context, p *models.Payment) {
	if _, err := o.Payments.MarkCancelled(ctx, p.ID); err != nil {
		utils.GetLogger().Warn("failed to cancel stale session", zap.String("paymentId", p.ID), zap.Error(err))
		return
	}
	if err := o.Gateway.CancelLink(ctx, p.TransactionID, "superseded by a new session"); err != nil {
		utils.GetLogger().Warn("failed to void stale checkout link", zap.Int64("orderCode", p.TransactionID), zap.Error(err))
	}
}

// resolveSession picks the payment kind, percentage and amount for the
// request given what has already been paid.
func resolveSession(b *models.Booking, req models.CreatePaymentRequest, paid, outstanding int64) (models.PaymentKind, int, int64, error) {
	final := b.Totals.FinalAmount

	kind := req.Kind
	if kind == "" {
		switch {
		case paid > 0:
			kind = models.PaymentRemainder
		case b.PayType == models.PayFull:
			kind = models.PaymentFull
		default:
			kind = models.PaymentDeposit
		}
	}

	switch kind {
	case models.PaymentDeposit:
		if paid > 0 {
			return "", 0, 0, utils.NewError(utils.KindConflict, "DUPLICATE_PAYMENT", "a deposit has already been paid")
		}
		pct := req.Percentage
		if pct == 0 {
			pct = b.PayType.DepositPercent()
		}
		if pct <= 0 || pct >= 100 {
			return "", 0, 0, utils.NewError(utils.KindValidation, "INVALID_PERCENTAGE", "deposit percentage must be between 1 and 99")
		}
		amount := final * int64(pct) / 100
		if amount <= 0 {
			return "", 0, 0, utils.NewError(utils.KindValidation, "INVALID_PERCENTAGE", "deposit rounds down to nothing")
		}
		return kind, pct, amount, nil

	case models.PaymentFull:
		if paid > 0 {
			return "", 0, 0, utils.NewError(utils.KindConflict, "DUPLICATE_PAYMENT", "partial payment exists, pay the remainder instead")
		}
		return kind, 100, final, nil

	case models.PaymentRemainder:
		if paid == 0 {
			return "", 0, 0, ErrNoDeposit
		}
		pct := 0
		if final > 0 {
			pct = int(outstanding * 100 / final)
		}
		return kind, pct, outstanding, nil
	}
	return "", 0, 0, utils.NewError(utils.KindValidation, "INVALID_KIND", "unsupported payment kind")
}

// newOrderCode builds a unique numeric order code from the timestamp plus
// jitter; the unique index catches the rare collision.
func newOrderCode(now time.Time) int64 {
	return now.UnixMilli()*1000 + rand.Int63n(1000)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
