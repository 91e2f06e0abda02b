package models

import "time"

// Equipment is a countable rentable item (camera, light rig, backdrop).
// Counters are absolute quantities; availability is derived, never stored.
type Equipment struct {
	ID             string    `bson:"id" json:"id"`
	Name           string    `bson:"name" json:"name"`
	Description    string    `bson:"description,omitempty" json:"description,omitempty"`
	PricePerHour   int64     `bson:"pricePerHour" json:"pricePerHour"`
	TotalQty       int       `bson:"totalQty" json:"totalQty"`
	MaintenanceQty int       `bson:"maintenanceQty" json:"maintenanceQty"`
	InUseQty       int       `bson:"inUseQty" json:"inUseQty"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updatedAt"`
}

// AvailableQty returns how many units can still be reserved.
func (e *Equipment) AvailableQty() int {
	return e.TotalQty - e.MaintenanceQty - e.InUseQty
}
