// Package domain defines the core types of the Pulse nudge engine:
// notification types, behavior categories, value scores, per-user
// preferences and the daily/weekly state the decision engine mutates.
// Design rule: nudges support autonomy, never guilt.
package domain

import "time"

// ─── Notification Types ─────────────────────────────────────────────────────

// NotificationType enumerates the 12 kinds of proactive nudges.
// The set is closed — every type must have a category, a template,
// and a default-enabled flag.
type NotificationType string

const (
	TypeMorningMotivation   NotificationType = "morning_motivation"
	TypeMiddayCheckIn       NotificationType = "midday_check_in"
	TypeEveningReminder     NotificationType = "evening_reminder"
	TypeStreakAtRisk        NotificationType = "streak_at_risk"
	TypeComebackNudge       NotificationType = "comeback_nudge"
	TypeMilestoneApproach   NotificationType = "milestone_approaching"
	TypeAchievementUnlocked NotificationType = "achievement_unlocked"
	TypeAIInsight           NotificationType = "ai_insight"
	TypeHabitSpecific       NotificationType = "habit_specific"
	TypeSocialActivity      NotificationType = "social_activity"
	TypeWeeklySummary       NotificationType = "weekly_summary"
	TypeCoachOutreach       NotificationType = "coach_outreach"
)

// TypeInfo carries the immutable display metadata of a notification type.
type TypeInfo struct {
	Label          string `json:"label"`
	Emoji          string `json:"emoji"`
	DefaultEnabled bool   `json:"default_enabled"`
}

// typeCatalog is the single source of truth for the 12 types.
var typeCatalog = map[NotificationType]TypeInfo{
	TypeMorningMotivation:   {Label: "Morning Motivation", Emoji: "🌅", DefaultEnabled: true},
	TypeMiddayCheckIn:       {Label: "Midday Check-in", Emoji: "☀️", DefaultEnabled: false},
	TypeEveningReminder:     {Label: "Evening Reminder", Emoji: "🌙", DefaultEnabled: true},
	TypeStreakAtRisk:        {Label: "Streak Shield", Emoji: "🔥", DefaultEnabled: true},
	TypeComebackNudge:       {Label: "Comeback Nudge", Emoji: "🌱", DefaultEnabled: true},
	TypeMilestoneApproach:   {Label: "Milestone Approaching", Emoji: "🏁", DefaultEnabled: true},
	TypeAchievementUnlocked: {Label: "Achievement Unlocked", Emoji: "🏆", DefaultEnabled: true},
	TypeAIInsight:           {Label: "Coach Insight", Emoji: "💡", DefaultEnabled: true},
	TypeHabitSpecific:       {Label: "Habit Reminder", Emoji: "📌", DefaultEnabled: false},
	TypeSocialActivity:      {Label: "Friend Activity", Emoji: "👋", DefaultEnabled: false},
	TypeWeeklySummary:       {Label: "Weekly Summary", Emoji: "📊", DefaultEnabled: true},
	TypeCoachOutreach:       {Label: "Coach Outreach", Emoji: "💬", DefaultEnabled: true},
}

// AllTypes returns the 12 notification types in stable display order.
func AllTypes() []NotificationType {
	return []NotificationType{
		TypeMorningMotivation, TypeMiddayCheckIn, TypeEveningReminder,
		TypeStreakAtRisk, TypeComebackNudge, TypeMilestoneApproach,
		TypeAchievementUnlocked, TypeAIInsight, TypeHabitSpecific,
		TypeSocialActivity, TypeWeeklySummary, TypeCoachOutreach,
	}
}

// Valid reports whether t is one of the 12 defined types.
func (t NotificationType) Valid() bool {
	_, ok := typeCatalog[t]
	return ok
}

// Info returns the display metadata for this type.
func (t NotificationType) Info() TypeInfo { return typeCatalog[t] }

// Label returns the human-readable name of this type.
func (t NotificationType) Label() string { return typeCatalog[t].Label }

// Emoji returns the emoji associated with this type.
func (t NotificationType) Emoji() string { return typeCatalog[t].Emoji }

// DefaultEnabled reports whether this type is on by default at onboarding.
func (t NotificationType) DefaultEnabled() bool { return typeCatalog[t].DefaultEnabled }

// ─── Behavior Categories ────────────────────────────────────────────────────

// BehaviorCategory groups notification types by the behavioral lever they
// pull. Exactly 5 values; SilentDay marks intentional non-send.
type BehaviorCategory string

const (
	CatCelebration   BehaviorCategory = "celebration"
	CatCuriosityHook BehaviorCategory = "curiosity_hook"
	CatStreakShield  BehaviorCategory = "streak_shield"
	CatSocialWhisper BehaviorCategory = "social_whisper"
	CatSilentDay     BehaviorCategory = "silent_day"
)

// CategoryOf maps every notification type to exactly one behavior category.
// Total: unknown types fall through to SilentDay, which is never sent.
func CategoryOf(t NotificationType) BehaviorCategory {
	switch t {
	case TypeAchievementUnlocked, TypeMilestoneApproach, TypeWeeklySummary:
		return CatCelebration
	case TypeAIInsight, TypeMorningMotivation, TypeMiddayCheckIn:
		return CatCuriosityHook
	case TypeStreakAtRisk, TypeEveningReminder, TypeHabitSpecific:
		return CatStreakShield
	case TypeSocialActivity, TypeCoachOutreach, TypeComebackNudge:
		return CatSocialWhisper
	default:
		return CatSilentDay
	}
}

// Priority returns the tie-break rank of a category (lower wins).
// Order: Streak Shield > Celebration > Curiosity Hook > Social Whisper.
// Silent Day ranks last and is never a chosen output.
func (c BehaviorCategory) Priority() int {
	switch c {
	case CatStreakShield:
		return 0
	case CatCelebration:
		return 1
	case CatCuriosityHook:
		return 2
	case CatSocialWhisper:
		return 3
	default:
		return 4
	}
}

// ─── Decision ───────────────────────────────────────────────────────────────

// Decision is the engine's committed output: at most one chosen, sanitized
// nudge per evaluation cycle.
type Decision struct {
	HistoryID string           `json:"history_id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Category  BehaviorCategory `json:"category"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Score     ValueScore       `json:"score"`
	DecidedAt time.Time        `json:"decided_at"`
}

// ─── History ────────────────────────────────────────────────────────────────

// HistoryEntry is the write-once record of a sent nudge. Only the
// opened/dismissed/converted outcome fields may be set after creation,
// each exactly once.
type HistoryEntry struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Body        string           `json:"body"`
	SentAt      time.Time        `json:"sent_at"`
	Opened      bool             `json:"opened"`
	OpenedAt    time.Time        `json:"opened_at,omitempty"`
	Dismissed   bool             `json:"dismissed"`
	ConvertedTo bool             `json:"converted"` // user performed a habit afterward
}

// Outcome names a reported delivery outcome for a history entry.
type Outcome string

const (
	OutcomeOpened    Outcome = "opened"
	OutcomeDismissed Outcome = "dismissed"
	OutcomeConverted Outcome = "converted"
)

// Valid reports whether o is a recognized outcome.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeOpened, OutcomeDismissed, OutcomeConverted:
		return true
	}
	return false
}

// ─── Smart Timing ───────────────────────────────────────────────────────────

// SmartTiming holds per-user learned delivery timing. Written only by the
// timing learner, read-only to the scorer and everything else.
type SmartTiming struct {
	MorningHour     int            `json:"morning_hour"`
	MiddayHour      int            `json:"midday_hour"`
	EveningHour     int            `json:"evening_hour"`
	BestDays        []time.Weekday `json:"best_days"`
	AvgOpenDelayMin float64        `json:"avg_open_delay_min"`
	ResponsiveHours []int          `json:"responsive_hours"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
