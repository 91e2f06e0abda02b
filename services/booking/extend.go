// File: services/booking/extend.go
package booking

import (
	"context"
	"errors"
	"time"

	studioRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/studio"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/scheduler"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"go.uber.org/zap"
)

// extendSaveAttempts bounds the optimistic retries when committing the new
// end time on the booking document.
const extendSaveAttempts = 3

// ExtensionOptions reports how far the booking can run over, given the next
// occupied slot and the mandatory gap.
func (e *DefaultEngine) ExtensionOptions(ctx context.Context, auth models.AuthContext, id string) (*scheduler.Headroom, error) {
	b, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(auth, b); err != nil {
		return nil, err
	}
	return e.Scheduler.ExtensionHeadroom(ctx, b.SlotID)
}

// Extend pushes the booking's end time out. The slot grows first, because the
// slot is where conflicts are decided; the booking document follows. The
// extra studio time is billed at the studio's hourly rate and lands on the
// totals before any payment attempt.
func (e *DefaultEngine) Extend(ctx context.Context, auth models.AuthContext, id string, newEnd time.Time) (*ExtendResult, error) {
	b, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(auth, b); err != nil {
		return nil, err
	}
	if b.Status != models.BookingConfirmed && b.Status != models.BookingCheckedIn {
		return nil, utils.NewError(utils.KindConflict, "INVALID_TRANSITION", "only confirmed or ongoing bookings can be extended")
	}

	newEnd = newEnd.UTC()
	if !newEnd.After(b.EndTime) {
		return nil, utils.NewError(utils.KindValidation, "INVALID_EXTENSION", "new end time must be after the current end time")
	}

	studio, err := e.Studios.GetByID(ctx, b.StudioID)
	if err != nil {
		if errors.Is(err, studioRepo.ErrNotFound) {
			return nil, scheduler.ErrStudioNotFound
		}
		return nil, err
	}

	oldEnd := b.EndTime
	additional := prorated(studio.BasePricePerHour, newEnd.Sub(oldEnd))

	if _, err := e.Scheduler.Extend(ctx, b.SlotID, newEnd); err != nil {
		return nil, err
	}

	if err := e.commitExtension(ctx, b, oldEnd, newEnd, additional); err != nil {
		if _, trimErr := e.Scheduler.Trim(ctx, b.SlotID, oldEnd); trimErr != nil {
			utils.GetLogger().Error("extension rollback failed, slot left long",
				zap.String("slotId", b.SlotID), zap.Error(trimErr))
		}
		return nil, err
	}

	utils.GetLogger().Info("booking extended",
		zap.String("bookingId", b.ID),
		zap.Time("newEnd", newEnd),
		zap.Int64("additionalAmount", additional),
	)
	return &ExtendResult{Booking: b, AdditionalAmount: additional}, nil
}

// commitExtension applies the new end and charge to the booking document,
// retrying through version conflicts (a webhook may be confirming the same
// booking concurrently). A concurrent competing extension aborts.
func (e *DefaultEngine) commitExtension(ctx context.Context, b *models.Booking, oldEnd, newEnd time.Time, additional int64) error {
	for attempt := 0; attempt < extendSaveAttempts; attempt++ {
		if attempt > 0 {
			fresh, err := e.load(ctx, b.ID)
			if err != nil {
				return err
			}
			*b = *fresh
			if b.Status != models.BookingConfirmed && b.Status != models.BookingCheckedIn {
				return utils.NewError(utils.KindConflict, "INVALID_TRANSITION", "booking state changed while extending")
			}
			if !b.EndTime.Equal(oldEnd) {
				return utils.NewError(utils.KindConflict, "EXTENSION_CONFLICT", "booking was extended concurrently")
			}
		}

		b.EndTime = newEnd
		b.Totals.BeforeDiscount += additional
		applyDiscount(&b.Totals)

		err := e.save(ctx, b)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrBookingConflict) {
			return err
		}
	}
	return ErrBookingConflict
}
