package models

import "time"

// DetailInput is one requested line item on a new booking. Equipment lines
// are priced from the inventory catalog; service lines carry their own name
// and unit price.
type DetailInput struct {
	Kind         DetailKind `json:"kind" binding:"required"`
	TargetID     string     `json:"targetId,omitempty"`
	Name         string     `json:"name,omitempty"`
	Quantity     int        `json:"quantity" binding:"required,min=1"`
	PricePerUnit int64      `json:"pricePerUnit,omitempty"`
}

// CreateBookingRequest books either an existing available slot (SlotID)
// or a fresh interval on a studio (StudioID + StartTime + EndTime).
type CreateBookingRequest struct {
	SlotID    string        `json:"slotId,omitempty"`
	StudioID  string        `json:"studioId,omitempty"`
	StartTime *time.Time    `json:"startTime,omitempty"`
	EndTime   *time.Time    `json:"endTime,omitempty"`
	PayType   PayType       `json:"payType" binding:"required"`
	Details   []DetailInput `json:"details,omitempty"`
	PromoCode string        `json:"promoCode,omitempty"`
	Notes     string        `json:"notes,omitempty"`
}

// CancelBookingRequest carries the optional cancellation reason.
type CancelBookingRequest struct {
	Reason string `json:"reason,omitempty"`
}

// NoShowRequest optionally reports an observed late check-in time so the
// grace window can be evaluated against it.
type NoShowRequest struct {
	CheckInTime *time.Time `json:"checkInTime,omitempty"`
}

// ExtendBookingRequest moves the booking end forward.
type ExtendBookingRequest struct {
	NewEndTime time.Time `json:"newEndTime" binding:"required"`
}

// UpdateBookingRequest is the staff-side mutation payload. Nil fields are
// left untouched; RemoveDetailIDs releases equipment held by those lines.
type UpdateBookingRequest struct {
	Notes           *string       `json:"notes,omitempty"`
	DiscountAmount  *int64        `json:"discountAmount,omitempty"`
	AddDetails      []DetailInput `json:"addDetails,omitempty"`
	RemoveDetailIDs []string      `json:"removeDetailIds,omitempty"`
}

// CreatePaymentRequest selects a payment option by percentage or kind.
type CreatePaymentRequest struct {
	Percentage int         `json:"percentage,omitempty"`
	Kind       PaymentKind `json:"kind,omitempty"`
}
