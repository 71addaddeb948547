// Package scoring computes the 0–100 value score that gates every nudge.
// Five independent monotone sub-scores over externally-supplied signals:
//
//	risk: 30  readiness: 25  novelty: 20  impact: 15  trust: 10
//
// No randomness — fully deterministic given signals, so the gate is
// auditable and unit-testable.
package scoring

import (
	"fmt"
	"math"

	"github.com/pulsehabit/pulse/internal/domain"
)

// Score computes the value score for one candidate. Callers validate the
// signal bundle first; Score itself never fails.
func Score(t domain.NotificationType, sig domain.Signals) domain.ValueScore {
	v := domain.ValueScore{
		Risk:      riskScore(sig.DaysUntilStreakLoss),
		Readiness: readinessScore(sig.HourOpenRate),
		Novelty:   noveltyScore(sig.DaysSinceCategorySent),
		Impact:    impactScore(sig.EstimatedImpact),
		Trust:     trustScore(sig.TrustLevel),
	}
	v.Reason = fmt.Sprintf("%s(%s): risk=%d readiness=%d novelty=%d impact=%d trust=%d total=%d",
		t, domain.CategoryOf(t), v.Risk, v.Readiness, v.Novelty, v.Impact, v.Trust, v.Total())
	return v
}

// riskScore rises as the streak approaches its lapse. Negative days means
// no streak at stake for this candidate.
func riskScore(daysUntilLoss float64) int {
	switch {
	case daysUntilLoss < 0:
		return 0
	case daysUntilLoss <= 0.5:
		return domain.MaxRisk // lapses today
	case daysUntilLoss <= 1:
		return 24
	case daysUntilLoss <= 2:
		return 15
	case daysUntilLoss <= 3:
		return 8
	case daysUntilLoss <= 7:
		return 3
	default:
		return 0
	}
}

// readinessScore scales the historical open rate for the current hour.
func readinessScore(hourOpenRate float64) int {
	return clamp(int(math.Round(hourOpenRate*float64(domain.MaxReadiness))), domain.MaxReadiness)
}

// noveltyScore rewards category rotation: +4 per day since this candidate's
// category was last sent, saturating at the max. Negative means never sent.
func noveltyScore(daysSinceCategory int) int {
	if daysSinceCategory < 0 {
		return domain.MaxNovelty
	}
	return clamp(daysSinceCategory*4, domain.MaxNovelty)
}

// impactScore scales the estimated behavior-change impact.
func impactScore(estimated float64) int {
	return clamp(int(math.Round(estimated*float64(domain.MaxImpact))), domain.MaxImpact)
}

// trustScore scales the user's overall trust/opt-in level.
func trustScore(level float64) int {
	return clamp(int(math.Round(level*float64(domain.MaxTrust))), domain.MaxTrust)
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
