package utils

import "time"

// Clock abstracts "now" so time-dependent rules (grace windows, refund
// tiers, session expiry) can be exercised against fixed instants.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// NewSystemClock returns a Clock backed by the wall clock in UTC.
func NewSystemClock() Clock { return systemClock{} }

// FixedClock always reports the same instant.
type FixedClock struct {
	Instant time.Time
}

func (f FixedClock) Now() time.Time { return f.Instant.UTC() }
