package booking

import (
	"fmt"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"
)

var (
	// ErrBookingNotFound is returned when the booking id resolves to nothing.
	ErrBookingNotFound = utils.NewError(utils.KindNotFound, "BOOKING_NOT_FOUND", "booking not found")
	// ErrNotYours is returned when a customer touches someone else's booking.
	ErrNotYours = utils.NewError(utils.KindForbidden, "FORBIDDEN", "you do not have access to this booking")
	// ErrStaffOnly guards the staff-side operations.
	ErrStaffOnly = utils.NewError(utils.KindForbidden, "FORBIDDEN", "this operation requires staff privileges")
	// ErrBookingConflict is returned when a concurrent writer got to the
	// booking first; the caller should re-read and retry.
	ErrBookingConflict = utils.NewError(utils.KindConflict, "BOOKING_CONFLICT", "booking was modified concurrently, retry")
	// ErrCheckInWindow rejects check-ins outside [start-15m, end).
	ErrCheckInWindow = utils.NewError(utils.KindPolicyViolation, "CHECKIN_WINDOW", "check-in is only possible from 15 minutes before start until the end of the slot")
	// ErrNoShowTooEarly rejects no-show marking inside the grace window.
	ErrNoShowTooEarly = utils.NewError(utils.KindPolicyViolation, "NOSHOW_TOO_EARLY", "the grace window has not elapsed yet")
	// ErrCustomerArrived rejects no-show marking when a check-in time inside
	// the grace window is on record.
	ErrCustomerArrived = utils.NewError(utils.KindPolicyViolation, "CUSTOMER_ARRIVED", "customer checked in within the grace window")
)

// errInvalidTransition names both states so staff can see what raced.
func errInvalidTransition(from, to models.BookingStatus) *utils.AppError {
	return utils.NewError(utils.KindConflict, "INVALID_TRANSITION",
		fmt.Sprintf("booking cannot move from %s to %s", from, to))
}
