// Package signals derives the value scorer's per-candidate measures from
// stored state: hour-of-day open rates and category recency come from
// history, trust from the rolling weekly open rate, and the timing learner's
// per-window optimal hours lift readiness when the user opted into smart
// timing. Streak measures belong to the habit repositories upstream —
// triggers that know them pass signal overrides, and this source reports
// "no streak at stake" otherwise.
package signals

import (
	"time"

	"github.com/pulsehabit/pulse/internal/domain"
)

// Store is the read-only persistence the source draws from.
type Store interface {
	GetPreferences(userID string) (*domain.Preferences, error)
	GetWeeklyState(userID, weekStart string) (domain.WeeklyState, error)
	ListHistory(userID string, limit int) ([]domain.HistoryEntry, error)
	GetSmartTiming(userID string) (*domain.SmartTiming, error)
}

// Source computes signal bundles from the state store.
// Implements domain.SignalSource.
type Source struct {
	store Store
	now   func() time.Time
}

// New creates a store-backed signal source.
func New(store Store) *Source {
	return &Source{store: store, now: time.Now}
}

// NewAt creates a source with a fixed clock, for tests.
func NewAt(store Store, now func() time.Time) *Source {
	return &Source{store: store, now: now}
}

// recentHistoryWindow bounds how much history feeds the hour open rate.
const recentHistoryWindow = 200

// SignalsFor builds the scorer input for one candidate.
func (s *Source) SignalsFor(userID string, t domain.NotificationType) (domain.Signals, error) {
	now := s.now()

	prefs, err := s.store.GetPreferences(userID)
	if err != nil {
		return domain.Signals{}, err
	}
	history, err := s.store.ListHistory(userID, recentHistoryWindow)
	if err != nil {
		return domain.Signals{}, err
	}
	weekly, err := s.store.GetWeeklyState(userID, domain.WeekStartKey(now))
	if err != nil {
		return domain.Signals{}, err
	}

	rate := hourOpenRate(history, now.Hour())
	if prefs.UseSmartTiming {
		timing, err := s.store.GetSmartTiming(userID)
		if err != nil {
			return domain.Signals{}, err
		}
		rate = applySmartTiming(rate, timing, now.Hour())
	}

	return domain.Signals{
		DaysUntilStreakLoss:   -1, // supplied by streak-lapse triggers, not derivable here
		HourOpenRate:          rate,
		DaysSinceCategorySent: daysSinceCategory(history, domain.CategoryOf(t), now),
		EstimatedImpact:       impactEstimate[t],
		TrustLevel:            trustLevel(weekly, history),
	}, nil
}

// Floors the learner's hour estimates put under the readiness signal. The
// raw per-hour open rate stays authoritative when it is higher; the floor
// keeps a learned-good hour reachable on thin per-hour samples.
const (
	bestHourFloor       = 0.8
	responsiveHourFloor = 0.65
)

// applySmartTiming folds the learned delivery hours into the readiness
// signal: the current hour being one of the per-window optimal hours, or one
// of the most-responsive hours, lifts the open rate to the matching floor.
func applySmartTiming(rate float64, timing *domain.SmartTiming, hour int) float64 {
	if timing == nil {
		return rate
	}
	if hour == timing.MorningHour || hour == timing.MiddayHour || hour == timing.EveningHour {
		if rate < bestHourFloor {
			return bestHourFloor
		}
		return rate
	}
	for _, h := range timing.ResponsiveHours {
		if h == hour {
			if rate < responsiveHourFloor {
				return responsiveHourFloor
			}
			return rate
		}
	}
	return rate
}

// hourOpenRate is the fraction of past sends at this hour that were opened.
// With no data for the hour, a neutral 0.5 keeps new users reachable.
func hourOpenRate(history []domain.HistoryEntry, hour int) float64 {
	sent, opened := 0, 0
	for _, e := range history {
		if e.SentAt.Hour() != hour {
			continue
		}
		sent++
		if e.Opened {
			opened++
		}
	}
	if sent == 0 {
		return 0.5
	}
	return float64(opened) / float64(sent)
}

// daysSinceCategory finds the most recent send of the candidate's category.
// Negative means the category was never sent (maximum novelty).
func daysSinceCategory(history []domain.HistoryEntry, cat domain.BehaviorCategory, now time.Time) int {
	for _, e := range history { // newest first
		if domain.CategoryOf(e.Type) != cat {
			continue
		}
		days := int(now.Sub(e.SentAt).Hours() / 24)
		if days < 0 {
			days = 0
		}
		return days
	}
	return -1
}

// trustLevel blends a neutral prior with the observed weekly open rate.
// Users with no delivery history sit at 0.5 and earn trust via opens.
func trustLevel(weekly domain.WeeklyState, history []domain.HistoryEntry) float64 {
	if len(history) == 0 {
		return 0.5
	}
	return 0.3*0.5 + 0.7*weekly.OpenRate
}

// impactEstimate is the per-type estimated behavior-change impact, [0,1].
// Streak protection and concrete habit prompts move behavior most; ambient
// social content least.
var impactEstimate = map[domain.NotificationType]float64{
	domain.TypeStreakAtRisk:        0.9,
	domain.TypeMilestoneApproach:   0.8,
	domain.TypeHabitSpecific:       0.7,
	domain.TypeComebackNudge:       0.7,
	domain.TypeEveningReminder:     0.6,
	domain.TypeAchievementUnlocked: 0.6,
	domain.TypeAIInsight:           0.6,
	domain.TypeMorningMotivation:   0.5,
	domain.TypeWeeklySummary:       0.5,
	domain.TypeMiddayCheckIn:       0.4,
	domain.TypeCoachOutreach:       0.4,
	domain.TypeSocialActivity:      0.3,
}
