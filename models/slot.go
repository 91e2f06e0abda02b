package models

import "time"

// SlotStatus is the lifecycle state of a studio time slot.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotHeld      SlotStatus = "held"
	SlotBooked    SlotStatus = "booked"
	SlotOngoing   SlotStatus = "ongoing"
	SlotCompleted SlotStatus = "completed"
	SlotCancelled SlotStatus = "cancelled"
)

const (
	// MinSlotDuration is the shortest bookable interval.
	MinSlotDuration = 60 * time.Minute
	// SlotGap is the mandatory buffer between two occupied slots of the
	// same studio (cleanup / handover time).
	SlotGap = 30 * time.Minute
	// EarlyCheckInWindow is how far before the slot start a check-in is accepted.
	EarlyCheckInWindow = 15 * time.Minute
)

// OccupyingSlotStatuses are the statuses that block studio time for
// conflict detection. Completed and cancelled slots never conflict.
var OccupyingSlotStatuses = []SlotStatus{SlotHeld, SlotBooked, SlotOngoing}

// Occupies reports whether a slot in this status blocks studio time.
func (s SlotStatus) Occupies() bool {
	return s == SlotHeld || s == SlotBooked || s == SlotOngoing
}

// Slot is a half-open interval [StartTime, EndTime) on one studio's
// calendar. BookingID is a weak back-reference, set while the slot is
// held, booked, ongoing or completed.
type Slot struct {
	ID        string     `bson:"id" json:"id"`
	StudioID  string     `bson:"studioId" json:"studioId"`
	StartTime time.Time  `bson:"startTime" json:"startTime"`
	EndTime   time.Time  `bson:"endTime" json:"endTime"`
	Status    SlotStatus `bson:"status" json:"status"`
	BookingID string     `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	Version   int        `bson:"version" json:"version"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// Duration returns the slot length.
func (s *Slot) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
