package models

import "time"

// DiscountType is how a promotion's value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Promotion is a redeemable discount code. UsedCount only moves on
// committed bookings and is compensated when a creation rolls back.
type Promotion struct {
	ID             string       `bson:"id" json:"id"`
	Code           string       `bson:"code" json:"code"`
	Description    string       `bson:"description,omitempty" json:"description,omitempty"`
	DiscountType   DiscountType `bson:"discountType" json:"discountType"`
	DiscountValue  int64        `bson:"discountValue" json:"discountValue"`
	MaxDiscount    int64        `bson:"maxDiscount,omitempty" json:"maxDiscount,omitempty"`
	MinOrderAmount int64        `bson:"minOrderAmount,omitempty" json:"minOrderAmount,omitempty"`
	UsageLimit     int          `bson:"usageLimit,omitempty" json:"usageLimit,omitempty"`
	UsedCount      int          `bson:"usedCount" json:"usedCount"`
	ValidFrom      time.Time    `bson:"validFrom" json:"validFrom"`
	ValidUntil     time.Time    `bson:"validUntil" json:"validUntil"`
	IsActive       bool         `bson:"isActive" json:"isActive"`
	CreatedAt      time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time    `bson:"updatedAt" json:"updatedAt"`
}
