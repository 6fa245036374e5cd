// Package timewindow derives urgency and freshness signals from the
// distance between a reference instant and a donation deadline. It is pure:
// results depend only on the two inputs.
package timewindow

import "time"

// Tier is the user-facing freshness classification.
type Tier string

const (
	TierFresh       Tier = "Fresh"
	TierConsumeSoon Tier = "Consume Soon"
	TierHighRisk    Tier = "High Risk"
)

// UrgentThresholdHours is the remaining-hours cutoff at or below which a
// donation is flagged urgent.
const UrgentThresholdHours = 3

// Classification is the evaluator output for one (now, expiresAt) pair.
type Classification struct {
	HoursRemaining int
	Urgent         bool
	Tier           Tier
}

// Classify computes the whole hours remaining until expiresAt (floored, so
// it goes negative once the deadline has passed), the urgency flag, and the
// freshness tier.
func Classify(now, expiresAt time.Time) Classification {
	d := expiresAt.Sub(now)
	hours := int(d / time.Hour)
	// Duration division truncates toward zero; floor negative remainders.
	if d < 0 && d%time.Hour != 0 {
		hours--
	}

	tier := TierFresh
	switch {
	case hours <= 1:
		tier = TierHighRisk
	case hours <= UrgentThresholdHours:
		tier = TierConsumeSoon
	}

	return Classification{
		HoursRemaining: hours,
		Urgent:         hours <= UrgentThresholdHours,
		Tier:           tier,
	}
}
