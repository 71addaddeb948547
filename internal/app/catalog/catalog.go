// Package catalog holds the pre-authored nudge templates. The engine never
// authors prose: it selects a template by type and tone, then runs it
// through the guardrail filter. Templates here are treated as opaque,
// unsanitized input by the engine.
package catalog

import (
	"fmt"

	"github.com/pulsehabit/pulse/internal/domain"
)

// Catalog is the in-repo template source. Implements domain.TemplateCatalog.
type Catalog struct{}

// New returns the built-in catalog.
func New() *Catalog { return &Catalog{} }

// Template returns the body template for a type in the given tone.
// Falls back to the gentle voice when no variant exists for the tone,
// and returns "" for unknown types (the engine treats that as no-send).
func (c *Catalog) Template(t domain.NotificationType, tone domain.Tone) string {
	variants, ok := bodies[t]
	if !ok {
		return ""
	}
	if body, ok := variants[tone]; ok {
		return body
	}
	return variants[domain.ToneGentle]
}

// Title returns the notification title for a type, personalized with the
// coach name where the template calls for one.
func (c *Catalog) Title(t domain.NotificationType, coachName string) string {
	if coachName == "" {
		coachName = "Your coach"
	}
	info := t.Info()
	switch t {
	case domain.TypeAIInsight, domain.TypeCoachOutreach:
		return fmt.Sprintf("%s %s has a thought", info.Emoji, coachName)
	case domain.TypeWeeklySummary:
		return fmt.Sprintf("%s Your week in review", info.Emoji)
	default:
		return fmt.Sprintf("%s %s", info.Emoji, info.Label)
	}
}

// bodies maps each type to its tone variants. Every type carries at least
// the gentle voice; other tones fall back to it.
var bodies = map[domain.NotificationType]map[domain.Tone]string{
	domain.TypeMorningMotivation: {
		domain.ToneGentle:   "A new day, a blank page. One small habit this morning?",
		domain.ToneCheerful: "Good morning! Today's looking bright — pick one habit to start it off.",
		domain.ToneCoach:    "Morning. One rep before breakfast sets the tone for the day.",
		domain.TonePlayful:  "Rise and shine — your habits missed you overnight.",
		domain.ToneMinimal:  "Morning habit?",
	},
	domain.TypeMiddayCheckIn: {
		domain.ToneGentle:  "Halfway through the day — a quick habit fits nicely here if you feel like it.",
		domain.ToneMinimal: "Midday check-in.",
	},
	domain.TypeEveningReminder: {
		domain.ToneGentle:  "Evening's a nice time to close the loop on today's habits, whenever you're ready.",
		domain.ToneCoach:   "Day's not done yet. One habit before you wind down.",
		domain.ToneMinimal: "Evening habits open.",
	},
	domain.TypeStreakAtRisk: {
		domain.ToneGentle:   "Your streak is still alive — one small step today keeps it going.",
		domain.ToneCheerful: "That streak of yours is worth keeping! A tiny action today does it.",
		domain.ToneCoach:    "Streak's on the line today. One focused minute is all it takes.",
		domain.TonePlayful:  "Your streak is doing a little nervous dance. Want to calm it down?",
		domain.ToneMinimal:  "Streak ends today without a check-in.",
	},
	domain.TypeComebackNudge: {
		domain.ToneGentle:   "It's been quiet lately — tomorrow's a fresh start, and so is right now.",
		domain.ToneCheerful: "Welcome back whenever you're ready — your habits kept your seat warm.",
		domain.ToneMinimal:  "Your habits are here when you are.",
	},
	domain.TypeMilestoneApproach: {
		domain.ToneGentle:   "You're close to a milestone — it's within reach whenever you're ready.",
		domain.ToneCheerful: "So close! One more push and that milestone is yours.",
		domain.ToneCoach:    "Milestone in sight. Finish strong.",
	},
	domain.TypeAchievementUnlocked: {
		domain.ToneGentle:   "You earned something new. Take a moment to enjoy it.",
		domain.ToneCheerful: "Achievement unlocked! You earned this one.",
		domain.TonePlayful:  "Ding! Something shiny just landed in your trophy case.",
	},
	domain.TypeAIInsight: {
		domain.ToneGentle: "I noticed a pattern in your week that might be worth a look.",
		domain.ToneCoach:  "Spotted something in your data. Quick read when you have a minute.",
	},
	domain.TypeHabitSpecific: {
		domain.ToneGentle:  "One of your habits fits well into this part of the day.",
		domain.ToneMinimal: "Habit window open.",
	},
	domain.TypeSocialActivity: {
		domain.ToneGentle:  "A friend has been active today — quietly cheering from the sidelines.",
		domain.TonePlayful: "Psst — your friends are on a roll today.",
	},
	domain.TypeWeeklySummary: {
		domain.ToneGentle:   "Your week's story is ready — wins, patterns, and what's next.",
		domain.ToneCheerful: "What a week! Your summary is ready to enjoy.",
		domain.ToneMinimal:  "Weekly summary ready.",
	},
	domain.TypeCoachOutreach: {
		domain.ToneGentle: "Just checking in — no agenda, here if you want to talk habits.",
		domain.ToneCoach:  "Checking in. How did this week actually feel?",
	},
}
