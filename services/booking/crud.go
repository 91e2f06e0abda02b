// File: services/booking/crud.go
package booking

import (
	"context"
	"errors"

	bookingRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/booking"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

func (e *DefaultEngine) Get(ctx context.Context, auth models.AuthContext, id string) (*models.Booking, error) {
	b, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(auth, b); err != nil {
		return nil, err
	}
	return b, nil
}

// List returns bookings visible to the caller. Customers are pinned to their
// own bookings regardless of the filter they send.
func (e *DefaultEngine) List(ctx context.Context, auth models.AuthContext, q bookingRepo.ListQuery) ([]models.Booking, int64, error) {
	if !auth.IsStaff() {
		q.CustomerID = auth.UserID
	}
	return e.Bookings.List(ctx, q)
}

// Update is the staff-side edit: notes, a discount override, and detail lines
// added or removed before the session starts. Equipment moves with the lines.
func (e *DefaultEngine) Update(ctx context.Context, auth models.AuthContext, id string, req models.UpdateBookingRequest) (*models.Booking, error) {
	if !auth.IsStaff() {
		return nil, ErrStaffOnly
	}
	b, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingPending && b.Status != models.BookingConfirmed {
		return nil, utils.NewError(utils.KindConflict, "INVALID_TRANSITION", "booking can no longer be edited")
	}

	if req.Notes != nil {
		b.Notes = *req.Notes
	}
	if req.DiscountAmount != nil {
		if *req.DiscountAmount < 0 {
			return nil, utils.NewError(utils.KindValidation, "INVALID_DISCOUNT", "discount must not be negative")
		}
		b.Totals.DiscountAmount = *req.DiscountAmount
	}

	// Reserve the new lines first; removed lines release only after the
	// edit is safely persisted.
	added, err := e.buildDetails(ctx, req.AddDetails, b.EndTime.Sub(b.StartTime))
	if err != nil {
		return nil, err
	}
	var addReserved []models.BookingDetail
	for _, d := range added {
		if d.Kind != models.DetailEquipment {
			continue
		}
		if err := e.Inventory.Reserve(ctx, d.TargetID, d.Quantity); err != nil {
			e.releaseDetails(ctx, addReserved)
			return nil, err
		}
		addReserved = append(addReserved, d)
	}

	var removed []models.BookingDetail
	if len(req.RemoveDetailIDs) > 0 {
		keep := make([]models.BookingDetail, 0, len(b.Details))
		for _, d := range b.Details {
			if lo.Contains(req.RemoveDetailIDs, d.ID) {
				removed = append(removed, d)
				continue
			}
			keep = append(keep, d)
		}
		if len(removed) != len(req.RemoveDetailIDs) {
			e.releaseDetails(ctx, addReserved)
			return nil, utils.NewError(utils.KindNotFound, "DETAIL_NOT_FOUND", "one or more detail ids are not on this booking")
		}
		b.Details = keep
	}
	b.Details = append(b.Details, added...)

	b.Totals.BeforeDiscount += detailsSubtotal(added) - detailsSubtotal(removed)
	applyDiscount(&b.Totals)

	if err := e.save(ctx, b); err != nil {
		e.releaseDetails(ctx, addReserved)
		return nil, err
	}
	e.releaseDetails(ctx, removed)

	utils.GetLogger().Info("booking updated",
		zap.String("bookingId", b.ID),
		zap.String("staffId", auth.UserID),
		zap.Int("addedDetails", len(added)),
		zap.Int("removedDetails", len(removed)),
	)
	return b, nil
}

func (e *DefaultEngine) load(ctx context.Context, id string) (*models.Booking, error) {
	b, err := e.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// save persists through the optimistic version guard.
func (e *DefaultEngine) save(ctx context.Context, b *models.Booking) error {
	if err := e.Bookings.ReplaceWithVersion(ctx, b); err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrNotFound):
			return ErrBookingNotFound
		case errors.Is(err, bookingRepo.ErrVersionConflict):
			return ErrBookingConflict
		}
		return err
	}
	return nil
}

// authorize lets staff through and pins customers to their own bookings.
func authorize(auth models.AuthContext, b *models.Booking) error {
	if auth.IsStaff() || auth.Owns(b.CustomerID) {
		return nil
	}
	return ErrNotYours
}
