// File: services/booking/pricing.go
package booking

import (
	"context"
	"strings"
	"time"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// prorated bills an hourly rate per started minute, rounding the total down
// to the nearest minor unit. A 90 minute slot at 100_000/h costs 150_000.
func prorated(pricePerHour int64, d time.Duration) int64 {
	minutes := int64(d / time.Minute)
	if minutes <= 0 || pricePerHour <= 0 {
		return 0
	}
	return pricePerHour * minutes / 60
}

// buildDetails turns the request lines into priced booking details. Equipment
// lines are priced from the catalog for the booked duration; service lines
// carry the price they were sold at. No inventory is reserved here.
func (e *DefaultEngine) buildDetails(ctx context.Context, inputs []models.DetailInput, duration time.Duration) ([]models.BookingDetail, error) {
	details := make([]models.BookingDetail, 0, len(inputs))
	for _, in := range inputs {
		if in.Quantity < 1 {
			return nil, utils.NewError(utils.KindValidation, "INVALID_DETAIL", "detail quantity must be at least 1")
		}
		switch in.Kind {
		case models.DetailEquipment:
			if in.TargetID == "" {
				return nil, utils.NewError(utils.KindValidation, "INVALID_DETAIL", "equipment detail requires a targetId")
			}
			eq, err := e.Inventory.Get(ctx, in.TargetID)
			if err != nil {
				return nil, err
			}
			unit := prorated(eq.PricePerHour, duration)
			details = append(details, models.BookingDetail{
				ID:           uuid.New().String(),
				Kind:         models.DetailEquipment,
				TargetID:     eq.ID,
				Name:         eq.Name,
				Quantity:     in.Quantity,
				PricePerUnit: unit,
				Subtotal:     unit * int64(in.Quantity),
			})
		case models.DetailService:
			name := strings.TrimSpace(in.Name)
			if name == "" {
				return nil, utils.NewError(utils.KindValidation, "INVALID_DETAIL", "service detail requires a name")
			}
			if in.PricePerUnit < 0 {
				return nil, utils.NewError(utils.KindValidation, "INVALID_DETAIL", "service price must not be negative")
			}
			details = append(details, models.BookingDetail{
				ID:           uuid.New().String(),
				Kind:         models.DetailService,
				TargetID:     in.TargetID,
				Name:         name,
				Quantity:     in.Quantity,
				PricePerUnit: in.PricePerUnit,
				Subtotal:     in.PricePerUnit * int64(in.Quantity),
			})
		default:
			return nil, utils.NewError(utils.KindValidation, "INVALID_DETAIL", "unknown detail kind")
		}
	}
	return details, nil
}

// detailsSubtotal sums the line subtotals.
func detailsSubtotal(details []models.BookingDetail) int64 {
	return lo.SumBy(details, func(d models.BookingDetail) int64 { return d.Subtotal })
}

// applyDiscount recomputes the final amount, clamping at zero.
func applyDiscount(totals *models.BookingTotals) {
	totals.FinalAmount = totals.BeforeDiscount - totals.DiscountAmount
	if totals.FinalAmount < 0 {
		totals.FinalAmount = 0
	}
}
