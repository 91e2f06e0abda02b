package models

import "time"

// PolicyType discriminates the two policy variants.
type PolicyType string

const (
	PolicyCancellation PolicyType = "cancellation"
	PolicyNoShow       PolicyType = "no_show"
)

// ChargeType selects the no-show charge formula.
type ChargeType string

const (
	ChargeFull       ChargeType = "FULL_CHARGE"
	ChargePercentage ChargeType = "PERCENTAGE"
	ChargeEscalating ChargeType = "ESCALATING"
)

// RefundTier grants RefundPercentage when the cancellation happens at
// least HoursBefore hours ahead of the booking start.
type RefundTier struct {
	HoursBefore      int `bson:"hoursBefore" json:"hoursBefore"`
	RefundPercentage int `bson:"refundPercentage" json:"refundPercentage"`
}

// CancellationPolicy is the tiered refund schedule.
type CancellationPolicy struct {
	Tiers []RefundTier `bson:"tiers" json:"tiers"`
}

// NoShowPolicy configures the charge applied when a customer never
// arrives. BasePercentage/StepPercentage only apply to ESCALATING,
// ChargePercentage only to PERCENTAGE.
type NoShowPolicy struct {
	ChargeType       ChargeType `bson:"chargeType" json:"chargeType"`
	ChargePercentage int        `bson:"chargePercentage,omitempty" json:"chargePercentage,omitempty"`
	BasePercentage   int        `bson:"basePercentage,omitempty" json:"basePercentage,omitempty"`
	StepPercentage   int        `bson:"stepPercentage,omitempty" json:"stepPercentage,omitempty"`
	GraceMinutes     int        `bson:"graceMinutes" json:"graceMinutes"`
}

// Policy is the persisted tagged union. Exactly one of Cancellation or
// NoShow is set, matching Type. Bookings embed value copies of the inner
// documents as immutable snapshots.
type Policy struct {
	ID           string              `bson:"id" json:"id"`
	Type         PolicyType          `bson:"type" json:"type"`
	Category     string              `bson:"category,omitempty" json:"category,omitempty"`
	Cancellation *CancellationPolicy `bson:"cancellation,omitempty" json:"cancellation,omitempty"`
	NoShow       *NoShowPolicy       `bson:"noShow,omitempty" json:"noShow,omitempty"`
	IsActive     bool                `bson:"isActive" json:"isActive"`
	Version      int                 `bson:"version" json:"version"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}
