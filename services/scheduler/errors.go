package scheduler

import "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

var (
	// ErrSlotNotFound is returned when the slot id resolves to nothing.
	ErrSlotNotFound = utils.NewError(utils.KindNotFound, "SLOT_NOT_FOUND", "slot not found")
	// ErrStudioNotFound is returned when the studio id resolves to nothing.
	ErrStudioNotFound = utils.NewError(utils.KindNotFound, "STUDIO_NOT_FOUND", "studio not found")
	// ErrStudioUnavailable is returned when the studio is inactive or under
	// maintenance and therefore not accepting bookings.
	ErrStudioUnavailable = utils.NewError(utils.KindConflict, "STUDIO_UNAVAILABLE", "studio is not accepting bookings")
	// ErrInvalidRange rejects malformed or too-short intervals.
	ErrInvalidRange = utils.NewError(utils.KindValidation, "INVALID_SLOT_RANGE", "slot must end after it starts and last at least 60 minutes")
	// ErrSlotOverlap is returned when the requested interval, padded with the
	// mandatory gap, collides with an occupied slot.
	ErrSlotOverlap = utils.NewError(utils.KindConflict, "SLOT_OVERLAP", "requested interval conflicts with another booking")
	// ErrSlotUnavailable is returned when a status transition finds the slot
	// in a different state, typically because a concurrent booking won.
	ErrSlotUnavailable = utils.NewError(utils.KindConflict, "SLOT_UNAVAILABLE", "slot is no longer available")
	// ErrExtensionConflict is returned when stretching a slot would run into
	// the next occupied slot.
	ErrExtensionConflict = utils.NewError(utils.KindConflict, "EXTENSION_CONFLICT", "extension conflicts with a following booking")
)
