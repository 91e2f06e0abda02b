package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCheckedIn BookingStatus = "checked_in"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingNoShow    BookingStatus = "no_show"
)

// IsTerminal reports whether no further transitions are allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled || s == BookingNoShow
}

// bookingTransitions is the full transition relation. Anything absent
// here is an invalid transition.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCheckedIn, BookingCancelled, BookingNoShow},
	BookingCheckedIn: {BookingCompleted},
}

// CanTransition reports whether from → to is a legal lifecycle move.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PayType is the payment commitment chosen at booking time.
type PayType string

const (
	PayFull             PayType = "full"
	PayDeposit30        PayType = "deposit_30"
	PayDeposit50        PayType = "deposit_50"
	PayDepositRemainder PayType = "deposit_then_remainder"
)

// DepositPercent is the share of the final amount that must be paid
// before the booking confirms.
func (p PayType) DepositPercent() int {
	switch p {
	case PayDeposit30, PayDepositRemainder:
		return 30
	case PayDeposit50:
		return 50
	default:
		return 100
	}
}

// Valid reports whether p is a known pay type.
func (p PayType) Valid() bool {
	switch p {
	case PayFull, PayDeposit30, PayDeposit50, PayDepositRemainder:
		return true
	}
	return false
}

// DetailKind discriminates booking line items.
type DetailKind string

const (
	DetailEquipment DetailKind = "equipment"
	DetailService   DetailKind = "service"
)

// BookingDetail is one line item on a booking. Equipment details hold
// reserved inventory for the life of the booking.
type BookingDetail struct {
	ID           string     `bson:"id" json:"id"`
	Kind         DetailKind `bson:"kind" json:"kind"`
	TargetID     string     `bson:"targetId" json:"targetId"`
	Name         string     `bson:"name,omitempty" json:"name,omitempty"`
	Quantity     int        `bson:"quantity" json:"quantity"`
	PricePerUnit int64      `bson:"pricePerUnit" json:"pricePerUnit"`
	Subtotal     int64      `bson:"subtotal" json:"subtotal"`
}

// BookingTotals is the booking price breakdown in VND minor units.
type BookingTotals struct {
	BeforeDiscount int64 `bson:"beforeDiscount" json:"beforeDiscount"`
	DiscountAmount int64 `bson:"discountAmount" json:"discountAmount"`
	FinalAmount    int64 `bson:"finalAmount" json:"finalAmount"`
}

// BookingFinancials records the money outcome of a cancellation or no-show.
type BookingFinancials struct {
	OriginalAmount int64 `bson:"originalAmount" json:"originalAmount"`
	RefundAmount   int64 `bson:"refundAmount" json:"refundAmount"`
	ChargeAmount   int64 `bson:"chargeAmount" json:"chargeAmount"`
	NetAmount      int64 `bson:"netAmount" json:"netAmount"`
}

// Booking is the aggregate root of the rental lifecycle. It owns its
// detail lines and policy snapshots by value; the slot and customer are
// referenced by id.
type Booking struct {
	ID         string        `bson:"id" json:"id"`
	CustomerID string        `bson:"customerId" json:"customerId"`
	StudioID   string        `bson:"studioId" json:"studioId"`
	SlotID     string        `bson:"slotId" json:"slotId"`
	StartTime  time.Time     `bson:"startTime" json:"startTime"`
	EndTime    time.Time     `bson:"endTime" json:"endTime"`
	Status     BookingStatus `bson:"status" json:"status"`
	PayType    PayType       `bson:"payType" json:"payType"`

	Details    []BookingDetail   `bson:"details,omitempty" json:"details,omitempty"`
	Totals     BookingTotals     `bson:"totals" json:"totals"`
	Financials BookingFinancials `bson:"financials" json:"financials"`

	// Immutable copies of the active policies at creation time. All later
	// refund/charge math runs against these, never the live documents.
	CancellationPolicy *CancellationPolicy `bson:"cancellationPolicy,omitempty" json:"cancellationPolicy,omitempty"`
	NoShowPolicy       *NoShowPolicy       `bson:"noShowPolicy,omitempty" json:"noShowPolicy,omitempty"`

	PromoCode    string `bson:"promoCode,omitempty" json:"promoCode,omitempty"`
	Notes        string `bson:"notes,omitempty" json:"notes,omitempty"`
	CancelReason string `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`

	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	ConfirmedAt *time.Time `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	CheckedInAt *time.Time `bson:"checkedInAt,omitempty" json:"checkedInAt,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	NoShowAt    *time.Time `bson:"noShowAt,omitempty" json:"noShowAt,omitempty"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`

	Version int `bson:"version" json:"version"`
}

// DurationHours returns the slot length in fractional hours.
func (b *Booking) DurationHours() float64 {
	return b.EndTime.Sub(b.StartTime).Hours()
}

// EquipmentDetails returns only the inventory-holding line items.
func (b *Booking) EquipmentDetails() []BookingDetail {
	var out []BookingDetail
	for _, d := range b.Details {
		if d.Kind == DetailEquipment {
			out = append(out, d)
		}
	}
	return out
}
