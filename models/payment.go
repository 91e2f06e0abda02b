package models

import "time"

// PaymentKind distinguishes what a payment session is for.
type PaymentKind string

const (
	PaymentDeposit   PaymentKind = "deposit"
	PaymentFull      PaymentKind = "full"
	PaymentRemainder PaymentKind = "remainder"
	PaymentFine      PaymentKind = "fine"
)

// PaymentStatus is the gateway-facing state of one payment session.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentExpired   PaymentStatus = "expired"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentSessionTTL is how long a checkout link stays payable.
const PaymentSessionTTL = 15 * time.Minute

// RefundInfo records a processed refund against a paid payment.
type RefundInfo struct {
	Amount     int64     `bson:"amount" json:"amount"`
	Reason     string    `bson:"reason,omitempty" json:"reason,omitempty"`
	RefundedAt time.Time `bson:"refundedAt" json:"refundedAt"`
}

// Payment is one gateway checkout session tied to a booking.
// TransactionID is the numeric orderCode the gateway echoes in webhooks.
type Payment struct {
	ID            string        `bson:"id" json:"id"`
	BookingID     string        `bson:"bookingId" json:"bookingId"`
	Amount        int64         `bson:"amount" json:"amount"`
	Percentage    int           `bson:"percentage" json:"percentage"`
	Kind          PaymentKind   `bson:"kind" json:"kind"`
	Status        PaymentStatus `bson:"status" json:"status"`
	TransactionID int64         `bson:"transactionId" json:"transactionId"`
	CheckoutURL   string        `bson:"checkoutUrl,omitempty" json:"checkoutUrl,omitempty"`
	QRCode        string        `bson:"qrCode,omitempty" json:"qrCode,omitempty"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	ExpiresAt     time.Time     `bson:"expiresAt" json:"expiresAt"`
	PaidAt        *time.Time    `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	FailedAt      *time.Time    `bson:"failedAt,omitempty" json:"failedAt,omitempty"`
	Refund        *RefundInfo   `bson:"refund,omitempty" json:"refund,omitempty"`
}

// Expired reports whether the session can no longer be paid.
func (p *Payment) Expired(now time.Time) bool {
	return p.Status == PaymentPending && now.After(p.ExpiresAt)
}

// PaymentOption is one offered way to pay for a booking.
type PaymentOption struct {
	Kind       PaymentKind `json:"kind"`
	Percentage int         `json:"percentage"`
	Amount     int64       `json:"amount"`
}
