package models

import "time"

// StudioStatus is the lifecycle state of a studio room.
type StudioStatus string

const (
	StudioActive      StudioStatus = "active"
	StudioInactive    StudioStatus = "inactive"
	StudioMaintenance StudioStatus = "maintenance"
)

// Studio represents a rentable studio room. Prices are VND minor units.
type Studio struct {
	ID               string       `bson:"id" json:"id"`
	Name             string       `bson:"name" json:"name"`
	Description      string       `bson:"description,omitempty" json:"description,omitempty"`
	BasePricePerHour int64        `bson:"basePricePerHour" json:"basePricePerHour"`
	Capacity         int          `bson:"capacity" json:"capacity"`
	Status           StudioStatus `bson:"status" json:"status"`
	CreatedAt        time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// IsActive reports whether the studio accepts new bookings.
func (s *Studio) IsActive() bool {
	return s.Status == StudioActive
}
