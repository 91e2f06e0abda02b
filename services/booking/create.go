// File: services/booking/create.go
package booking

import (
	"context"
	"errors"
	"time"

	bookingRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/booking"
	studioRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/studio"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/scheduler"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Create runs the booking saga: resolve the slot, price the order, reserve
// equipment, burn the promo, snapshot policies, reserve the slot and persist.
// The slot reservation is the serialization point between racing customers;
// every step after a side effect compensates on failure and surfaces the
// original error.
func (e *DefaultEngine) Create(ctx context.Context, auth models.AuthContext, req models.CreateBookingRequest) (*models.Booking, error) {
	if auth.UserID == "" {
		return nil, utils.NewError(utils.KindUnauthorized, "UNAUTHORIZED", "sign in to book a studio")
	}
	if !req.PayType.Valid() {
		return nil, utils.NewError(utils.KindValidation, "INVALID_PAY_TYPE", "unknown pay type")
	}

	now := e.Clock.Now()
	slot, err := e.resolveSlot(ctx, req)
	if err != nil {
		return nil, err
	}
	if !slot.StartTime.After(now) {
		return nil, utils.NewError(utils.KindValidation, "SLOT_IN_PAST", "slot has already started")
	}

	studio, err := e.Studios.GetByID(ctx, slot.StudioID)
	if err != nil {
		if errors.Is(err, studioRepo.ErrNotFound) {
			return nil, scheduler.ErrStudioNotFound
		}
		return nil, err
	}
	if !studio.IsActive() {
		return nil, scheduler.ErrStudioUnavailable
	}

	duration := slot.Duration()
	details, err := e.buildDetails(ctx, req.Details, duration)
	if err != nil {
		return nil, err
	}
	totals := models.BookingTotals{
		BeforeDiscount: prorated(studio.BasePricePerHour, duration) + detailsSubtotal(details),
	}

	// Side effects begin here. reserved tracks what must be undone.
	var reserved []models.BookingDetail
	for _, d := range details {
		if d.Kind != models.DetailEquipment {
			continue
		}
		if err := e.Inventory.Reserve(ctx, d.TargetID, d.Quantity); err != nil {
			e.releaseDetails(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, d)
	}

	var promoID string
	if req.PromoCode != "" {
		promo, discount, err := e.Promos.Quote(ctx, req.PromoCode, totals.BeforeDiscount, now)
		if err == nil {
			err = e.Promos.Redeem(ctx, promo.ID)
		}
		if err != nil {
			e.releaseDetails(ctx, reserved)
			return nil, err
		}
		promoID = promo.ID
		totals.DiscountAmount = discount
	}
	applyDiscount(&totals)

	b, err := e.finalizeCreate(ctx, auth, req, slot, details, totals, now)
	if err != nil {
		// Unwind in reverse order; the original error wins.
		e.unredeemPromo(ctx, promoID)
		e.releaseDetails(ctx, reserved)
		return nil, err
	}

	e.Notify.Notify(ctx, auth.UserID, models.NotifyBookingCreated, map[string]any{
		"bookingId":   b.ID,
		"finalAmount": b.Totals.FinalAmount,
	})
	utils.GetLogger().Info("booking created",
		zap.String("bookingId", b.ID),
		zap.String("customerId", auth.UserID),
		zap.String("slotId", slot.ID),
		zap.Int64("finalAmount", b.Totals.FinalAmount),
	)
	return b, nil
}

// finalizeCreate snapshots the active policies, takes the slot and persists
// the booking. If persistence fails after the slot was taken, the slot is
// handed back here so Create only has the equipment and promo left to unwind.
func (e *DefaultEngine) finalizeCreate(ctx context.Context, auth models.AuthContext, req models.CreateBookingRequest,
	slot *models.Slot, details []models.BookingDetail, totals models.BookingTotals, now time.Time) (*models.Booking, error) {

	cancelPolicy, err := e.Policies.ActiveCancellation(ctx)
	if err != nil {
		return nil, err
	}
	noShowPolicy, err := e.Policies.ActiveNoShow(ctx)
	if err != nil {
		return nil, err
	}

	b := &models.Booking{
		ID:                 uuid.New().String(),
		CustomerID:         auth.UserID,
		StudioID:           slot.StudioID,
		SlotID:             slot.ID,
		StartTime:          slot.StartTime,
		EndTime:            slot.EndTime,
		Status:             models.BookingPending,
		PayType:            req.PayType,
		Details:            details,
		Totals:             totals,
		CancellationPolicy: cancelPolicy,
		NoShowPolicy:       noShowPolicy,
		PromoCode:          req.PromoCode,
		Notes:              req.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
		Version:            1,
	}

	if _, err := e.Scheduler.Reserve(ctx, slot.ID, b.ID); err != nil {
		return nil, err
	}

	if err := e.Bookings.Create(ctx, b); err != nil {
		if _, relErr := e.Scheduler.Release(ctx, slot.ID); relErr != nil {
			utils.GetLogger().Error("compensation failed: slot release", zap.String("slotId", slot.ID), zap.Error(relErr))
		}
		if errors.Is(err, bookingRepo.ErrVersionConflict) {
			// The unique slot index fired: a concurrent booking owns this slot.
			return nil, scheduler.ErrSlotUnavailable
		}
		return nil, err
	}
	return b, nil
}

// resolveSlot fetches the requested slot or finds/creates one for the
// requested interval.
func (e *DefaultEngine) resolveSlot(ctx context.Context, req models.CreateBookingRequest) (*models.Slot, error) {
	if req.SlotID != "" {
		slot, err := e.Scheduler.GetSlot(ctx, req.SlotID)
		if err != nil {
			return nil, err
		}
		if req.StudioID != "" && req.StudioID != slot.StudioID {
			return nil, utils.NewError(utils.KindValidation, "INVALID_SLOT", "slot does not belong to the given studio")
		}
		if slot.Status != models.SlotAvailable {
			return nil, scheduler.ErrSlotUnavailable
		}
		return slot, nil
	}

	if req.StudioID == "" || req.StartTime == nil || req.EndTime == nil {
		return nil, utils.NewError(utils.KindValidation, "INVALID_SLOT", "provide either slotId or studioId with startTime and endTime")
	}
	return e.Scheduler.FindOrCreateAvailable(ctx, req.StudioID, *req.StartTime, *req.EndTime)
}

// releaseDetails returns reserved equipment to the pool, logging rather than
// failing: compensations must run to completion.
func (e *DefaultEngine) releaseDetails(ctx context.Context, details []models.BookingDetail) {
	for _, d := range details {
		if d.Kind != models.DetailEquipment {
			continue
		}
		if err := e.Inventory.Release(ctx, d.TargetID, d.Quantity); err != nil {
			utils.GetLogger().Error("compensation failed: equipment release",
				zap.String("equipmentId", d.TargetID),
				zap.Int("quantity", d.Quantity),
				zap.Error(err),
			)
		}
	}
}

func (e *DefaultEngine) unredeemPromo(ctx context.Context, promoID string) {
	if promoID == "" {
		return
	}
	if err := e.Promos.Unredeem(ctx, promoID); err != nil {
		utils.GetLogger().Error("compensation failed: promo unredeem", zap.String("promoId", promoID), zap.Error(err))
	}
}
