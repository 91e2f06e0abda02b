package models

import "time"

// NotificationKind enumerates the lifecycle events pushed to customers.
type NotificationKind string

const (
	NotifyBookingCreated   NotificationKind = "booking_created"
	NotifyBookingConfirmed NotificationKind = "booking_confirmed"
	NotifyBookingCancelled NotificationKind = "booking_cancelled"
	NotifyBookingNoShow    NotificationKind = "booking_no_show"
	NotifyPaymentSuccess   NotificationKind = "payment_success"
	NotifyPaymentFailed    NotificationKind = "payment_failed"
	NotifyRefundIssued     NotificationKind = "refund_issued"
)

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Data      map[string]any   `json:"data,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NotifyPayload is the queued form of a notification, consumed by the
// background worker.
type NotifyPayload struct {
	UserID string           `json:"userId"`
	Kind   NotificationKind `json:"kind"`
	Data   map[string]any   `json:"data,omitempty"`
}
