package policy

import (
	"sort"
	"time"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
)

// RefundOutcome is the result of applying a cancellation policy snapshot to a
// booking at a given moment.
type RefundOutcome struct {
	RefundAmount     int64              `json:"refundAmount"`
	ChargeAmount     int64              `json:"chargeAmount"`
	RefundPercentage int                `json:"refundPercentage"`
	HoursBefore      float64            `json:"hoursBefore"`
	Tier             *models.RefundTier `json:"tier,omitempty"`
}

// NoShowOutcome is the result of applying a no-show policy snapshot.
type NoShowOutcome struct {
	ChargeAmount     int64 `json:"chargeAmount"`
	ChargePercentage int   `json:"chargePercentage"`
	WithinGrace      bool  `json:"withinGrace"`
}

// ComputeRefund resolves the refund for cancelling a booking worth amount that
// starts at startTime, evaluated at now. Tiers are matched from the most to the
// least generous: the first tier whose hoursBefore threshold is met wins. A nil
// or empty snapshot refunds nothing.
func ComputeRefund(snapshot *models.CancellationPolicy, startTime, now time.Time, amount int64) RefundOutcome {
	hoursBefore := startTime.Sub(now).Hours()
	if hoursBefore < 0 {
		hoursBefore = 0
	}
	out := RefundOutcome{
		ChargeAmount: amount,
		HoursBefore:  hoursBefore,
	}
	if snapshot == nil || len(snapshot.Tiers) == 0 {
		return out
	}

	tiers := make([]models.RefundTier, len(snapshot.Tiers))
	copy(tiers, snapshot.Tiers)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].HoursBefore > tiers[j].HoursBefore })

	for _, tier := range tiers {
		if hoursBefore >= float64(tier.HoursBefore) {
			matched := tier
			out.Tier = &matched
			out.RefundPercentage = tier.RefundPercentage
			out.RefundAmount = percentageOf(amount, tier.RefundPercentage)
			out.ChargeAmount = amount - out.RefundAmount
			break
		}
	}
	return out
}

// ComputeNoShowCharge resolves the fine for a customer who did not show up for
// a booking worth amount. checkIn is the recorded arrival time, if any: an
// arrival within the grace window means no fine is due. previousNoShows is the
// customer's no-show count before this booking, used by escalating policies.
func ComputeNoShowCharge(snapshot *models.NoShowPolicy, startTime time.Time, checkIn *time.Time, amount int64, previousNoShows int) NoShowOutcome {
	if snapshot == nil {
		snapshot = &models.NoShowPolicy{ChargeType: models.ChargeFull}
	}

	grace := time.Duration(snapshot.GraceMinutes) * time.Minute
	if checkIn != nil && !checkIn.After(startTime.Add(grace)) {
		return NoShowOutcome{WithinGrace: true}
	}

	pct := 0
	switch snapshot.ChargeType {
	case models.ChargeFull:
		pct = 100
	case models.ChargePercentage:
		pct = snapshot.ChargePercentage
	case models.ChargeEscalating:
		pct = snapshot.BasePercentage + snapshot.StepPercentage*previousNoShows
		if pct > 100 {
			pct = 100
		}
	}
	if pct < 0 {
		pct = 0
	}

	return NoShowOutcome{
		ChargeAmount:     percentageOf(amount, pct),
		ChargePercentage: pct,
	}
}

// percentageOf returns pct% of amount rounded down to the nearest minor unit.
func percentageOf(amount int64, pct int) int64 {
	if amount <= 0 || pct <= 0 {
		return 0
	}
	return amount * int64(pct) / 100
}
