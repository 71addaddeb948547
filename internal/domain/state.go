package domain

import "time"

// ─── Daily / Weekly State ───────────────────────────────────────────────────

// DayKey formats a time as the calendar-date key for DailyState.
func DayKey(t time.Time) string { return t.Format("2006-01-02") }

// WeekStartKey returns the Monday of t's week as a date key.
// Weeks start Monday (ISO).
func WeekStartKey(t time.Time) string {
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	monday := t.AddDate(0, 0, -offset)
	return DayKey(monday)
}

// DailyState tracks one user's sends for one calendar day. A new day starts
// a fresh DailyState; it is never carried over.
type DailyState struct {
	Day        string             `json:"day"` // "2006-01-02"
	CountSent  int                `json:"count_sent"`
	LastSentAt time.Time          `json:"last_sent_at"` // zero if nothing sent yet
	TypesSent  []NotificationType `json:"types_sent"`
	Engagement float64            `json:"engagement"` // rolling [0,1]
}

// NewDailyState returns a fresh state for the given day.
func NewDailyState(day string) DailyState {
	return DailyState{Day: day}
}

// WeeklyState tracks one user's sends for one Monday-keyed week.
// CountSent <= MaxPerWeek except while AtRiskEscalation is active, the only
// sanctioned override (one extra streak-at-risk send per day, still subject
// to spacing and the daily ceiling).
type WeeklyState struct {
	WeekStart        string             `json:"week_start"` // Monday, "2006-01-02"
	CountSent        int                `json:"count_sent"`
	TypesSent        []NotificationType `json:"types_sent"`
	LastType         NotificationType   `json:"last_type"`
	LastSentDate     string             `json:"last_sent_date"`
	SilentDays       int                `json:"silent_days"` // consecutive days with no send
	OpenRate         float64            `json:"open_rate"`   // rolling [0,1]
	AtRiskEscalation bool               `json:"at_risk_escalation"`
}

// NewWeeklyState returns a fresh state for the given week. The escalation
// flag always starts false — it resets at the start of each week.
func NewWeeklyState(weekStart string) WeeklyState {
	return WeeklyState{WeekStart: weekStart}
}

// ─── Scorer Signals ─────────────────────────────────────────────────────────

// Signals bundles the externally-supplied measures the value scorer consumes
// for one candidate. All signals come from outside collaborators (habit
// repositories, smart timing, trust model); the scorer is pure over them.
type Signals struct {
	// DaysUntilStreakLoss: 0 means the streak lapses today. Negative means
	// the signal is unavailable for this candidate.
	DaysUntilStreakLoss float64 `json:"days_until_streak_loss"`

	// HourOpenRate is the historical open rate for the current hour, [0,1].
	HourOpenRate float64 `json:"hour_open_rate"`

	// DaysSinceCategorySent: days since this candidate's category was last
	// sent. Negative means never sent (maximum novelty).
	DaysSinceCategorySent int `json:"days_since_category_sent"`

	// EstimatedImpact is the estimated behavior-change impact, [0,1].
	EstimatedImpact float64 `json:"estimated_impact"`

	// TrustLevel is the user's overall trust/opt-in level, [0,1].
	TrustLevel float64 `json:"trust_level"`
}

// Validate reports whether the signal bundle is usable. An invalid bundle
// causes that single candidate to be skipped, never the whole cycle.
func (s Signals) Validate() error {
	if s.DaysUntilStreakLoss != s.DaysUntilStreakLoss { // NaN
		return ErrInvalidSignal
	}
	if s.HourOpenRate < 0 || s.HourOpenRate > 1 || s.HourOpenRate != s.HourOpenRate {
		return ErrInvalidSignal
	}
	if s.EstimatedImpact < 0 || s.EstimatedImpact > 1 || s.EstimatedImpact != s.EstimatedImpact {
		return ErrInvalidSignal
	}
	if s.TrustLevel < 0 || s.TrustLevel > 1 || s.TrustLevel != s.TrustLevel {
		return ErrInvalidSignal
	}
	return nil
}
