// Package engine implements the nudge decision engine: the quiet-hours and
// frequency gates, the evaluation orchestrator, and the per-user serialized
// runner. All send decisions flow through exactly one code path, Evaluate.
package engine

import (
	"fmt"
	"time"

	"github.com/pulsehabit/pulse/internal/domain"
)

// ─── Quiet-Hours & Window Gate ──────────────────────────────────────────────

// IsSendableNow reports whether any send is time-permitted right now.
// Only the do-not-disturb interval blocks sending outright; the named
// morning/midday/evening windows steer content selection, never delivery.
// DND intervals may wrap past midnight; a zero-width interval never blocks.
func IsSendableNow(now time.Time, prefs domain.Preferences) bool {
	dnd := prefs.DND
	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		dnd = prefs.DNDWeekend
	}
	return !dnd.Contains(now.Hour())
}

// ─── Frequency Gate ─────────────────────────────────────────────────────────

// Gate reasons, stable strings for logs and metrics.
const (
	ReasonDisabled     = "notifications_disabled"
	ReasonTypeDisabled = "type_disabled"
	ReasonDailyCeiling = "daily_ceiling"
	ReasonSpacing      = "min_spacing"
	ReasonWeeklyBudget = "weekly_budget"
	ReasonAllowed      = "allowed"
	ReasonEscalated    = "allowed_escalation"
)

// GateResult is the frequency gate's verdict for one candidate.
type GateResult struct {
	Allow  bool   `json:"allow"`
	Reason string `json:"reason"`
}

// MaySend decides whether sending the given type now would violate the
// enable flags, the daily ceiling, the minimum spacing, or the weekly
// budget. Checks run in order; the first failure short-circuits.
//
// The at-risk escalation bypasses only the weekly budget, and only for
// streak-at-risk sends — the daily ceiling and spacing always hold.
func MaySend(now time.Time, t domain.NotificationType, prefs domain.Preferences,
	daily domain.DailyState, weekly domain.WeeklyState) GateResult {

	if !prefs.Enabled {
		return GateResult{Reason: ReasonDisabled}
	}
	if !prefs.TypeEnabled(t) {
		return GateResult{Reason: ReasonTypeDisabled}
	}

	// Hard ceiling — never overridden, escalation included.
	if daily.CountSent >= prefs.MaxPerDay {
		return GateResult{Reason: ReasonDailyCeiling}
	}

	// Minimum spacing between sends.
	if !daily.LastSentAt.IsZero() {
		if now.Sub(daily.LastSentAt) < time.Duration(prefs.MinMinutesBetween)*time.Minute {
			return GateResult{Reason: ReasonSpacing}
		}
	}

	// Weekly budget — the primary frequency budget.
	if weekly.CountSent >= prefs.MaxPerWeek {
		if t == domain.TypeStreakAtRisk && weekly.AtRiskEscalation {
			return GateResult{Allow: true, Reason: ReasonEscalated}
		}
		return GateResult{Reason: ReasonWeeklyBudget}
	}

	return GateResult{Allow: true, Reason: ReasonAllowed}
}

// ─── Silent-Day Bookkeeping ─────────────────────────────────────────────────

// silentDays recomputes the consecutive-silent-days counter from the last
// send date. A send today zeroes it.
func silentDays(weekly domain.WeeklyState, now time.Time) int {
	if weekly.LastSentDate == "" {
		return weekly.SilentDays
	}
	last, err := time.Parse("2006-01-02", weekly.LastSentDate)
	if err != nil {
		return weekly.SilentDays
	}
	today, _ := time.Parse("2006-01-02", domain.DayKey(now))
	gap := int(today.Sub(last).Hours() / 24)
	if gap < 0 {
		return 0
	}
	if gap == 0 {
		return 0
	}
	return gap - 1 // days strictly between last send and today
}

// minutesSince is a small helper kept for log lines.
func minutesSince(from, to time.Time) string {
	return fmt.Sprintf("%.0fm", to.Sub(from).Minutes())
}
