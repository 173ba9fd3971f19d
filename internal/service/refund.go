package service

import "time"

// Tiered cancellation refund policy. The cutoff is measured from the
// cancellation moment to the booking's first committed hour.
const (
	fullRefundNotice = 24 * time.Hour // >= 24h out: 100%
	halfRefundNotice = 12 * time.Hour // >= 12h out: 50%
)

// RefundAmount computes the refund owed when a booking that starts at
// startsAt is cancelled at now.
//
// This is a step function with two breakpoints, no partial-hour
// interpolation: 100% at 24 hours' notice or more, 50% at 12, nothing below
// that (including cancellations after the booking has started). The returned
// amount is recorded on the booking and never recalculated.
func RefundAmount(finalPrice float64, startsAt, now time.Time) float64 {
	notice := startsAt.Sub(now)
	switch {
	case notice >= fullRefundNotice:
		return finalPrice
	case notice >= halfRefundNotice:
		return finalPrice * 0.5
	default:
		return 0
	}
}
