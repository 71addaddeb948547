// Package timing implements the smart timing learner: a low-frequency
// background task that recomputes per-user optimal delivery hours from
// accumulated notification history. The learner only reads history and
// writes SmartTiming — it never touches daily/weekly state and needs no
// coordination with the decision engine.
package timing

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/pulsehabit/pulse/internal/domain"
)

// topResponsiveHours is how many hours the most-responsive list keeps.
const topResponsiveHours = 3

// Store is the persistence the learner needs.
type Store interface {
	GetPreferences(userID string) (*domain.Preferences, error)
	ListHistory(userID string, limit int) ([]domain.HistoryEntry, error)
	GetSmartTiming(userID string) (*domain.SmartTiming, error)
	PutSmartTiming(userID string, timing domain.SmartTiming) error
}

// UserLister enumerates users for the nightly pass.
type UserLister interface {
	ListUsers() ([]string, error)
}

// Learner recomputes SmartTiming on a schedule independent of send
// decisions. It is never invoked synchronously inside an evaluation cycle.
type Learner struct {
	store    Store
	users    UserLister
	interval time.Duration
}

// NewLearner creates a learner running every interval (default nightly).
func NewLearner(store Store, users UserLister, interval time.Duration) *Learner {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Learner{store: store, users: users, interval: interval}
}

// Run starts the learner loop. Call in a goroutine.
func (l *Learner) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.runAll()
		}
	}
}

func (l *Learner) runAll() {
	users, err := l.users.ListUsers()
	if err != nil {
		log.Printf("[timing] list users: %v", err)
		return
	}
	for _, userID := range users {
		if err := l.UpdateUser(userID, time.Now()); err != nil {
			log.Printf("[timing] user=%s update: %v", userID, err)
		}
	}
}

// UpdateUser recomputes and persists one user's SmartTiming from their
// full history.
func (l *Learner) UpdateUser(userID string, now time.Time) error {
	prefs, err := l.store.GetPreferences(userID)
	if err != nil {
		return err
	}
	history, err := l.store.ListHistory(userID, 0)
	if err != nil {
		return err
	}
	current, err := l.store.GetSmartTiming(userID)
	if err != nil {
		return err
	}

	timing := Update(history, *prefs, current)
	timing.UpdatedAt = now
	return l.store.PutSmartTiming(userID, timing)
}

// ─── Pure Recomputation ─────────────────────────────────────────────────────

// hourStats accumulates per-hour delivery outcomes.
type hourStats struct {
	sent   [24]int
	opened [24]int
}

func (h hourStats) openRate(hour int) float64 {
	if h.sent[hour] == 0 {
		return 0
	}
	return float64(h.opened[hour]) / float64(h.sent[hour])
}

// Update recomputes SmartTiming from history. Ties break toward the
// currently-stored hour to avoid oscillation on sparse data; with no data
// at all, each window's start hour is used.
func Update(history []domain.HistoryEntry, prefs domain.Preferences, current *domain.SmartTiming) domain.SmartTiming {
	var stats hourStats
	var daySent, dayOpened [7]int
	var delaySum float64
	var delayCount int

	for _, e := range history {
		hour := e.SentAt.Hour()
		stats.sent[hour]++
		daySent[int(e.SentAt.Weekday())]++
		if e.Opened {
			stats.opened[hour]++
			dayOpened[int(e.SentAt.Weekday())]++
			if !e.OpenedAt.IsZero() && e.OpenedAt.After(e.SentAt) {
				delaySum += e.OpenedAt.Sub(e.SentAt).Minutes()
				delayCount++
			}
		}
	}

	timing := domain.SmartTiming{
		MorningHour: bestHourIn(prefs.Morning, stats, storedHour(current, windowMorning, prefs.Morning.Start)),
		MiddayHour:  bestHourIn(prefs.Midday, stats, storedHour(current, windowMidday, prefs.Midday.Start)),
		EveningHour: bestHourIn(prefs.Evening, stats, storedHour(current, windowEvening, prefs.Evening.Start)),
	}

	if delayCount > 0 {
		timing.AvgOpenDelayMin = delaySum / float64(delayCount)
	} else if current != nil {
		timing.AvgOpenDelayMin = current.AvgOpenDelayMin
	}

	timing.ResponsiveHours = responsiveHours(stats, topResponsiveHours)
	timing.BestDays = bestDays(daySent, dayOpened)
	return timing
}

type windowName int

const (
	windowMorning windowName = iota
	windowMidday
	windowEvening
)

func storedHour(current *domain.SmartTiming, w windowName, fallback int) int {
	if current == nil {
		return fallback
	}
	switch w {
	case windowMorning:
		return current.MorningHour
	case windowMidday:
		return current.MiddayHour
	default:
		return current.EveningHour
	}
}

// bestHourIn picks the hour inside the window with the highest open rate.
// An hour only beats the stored one strictly — equal rates keep the stored
// value, which damps oscillation on sparse data.
func bestHourIn(w domain.HourWindow, stats hourStats, stored int) int {
	best := stored
	bestRate := -1.0
	if w.Contains(stored) && stats.sent[stored] > 0 {
		bestRate = stats.openRate(stored)
	}

	for hour := 0; hour < 24; hour++ {
		if !w.Contains(hour) || stats.sent[hour] == 0 || hour == stored {
			continue
		}
		if rate := stats.openRate(hour); rate > bestRate {
			best = hour
			bestRate = rate
		}
	}
	return best
}

// responsiveHours returns the top-n hours by open rate across all sends.
func responsiveHours(stats hourStats, n int) []int {
	type rated struct {
		hour int
		rate float64
	}
	var all []rated
	for hour := 0; hour < 24; hour++ {
		if stats.sent[hour] > 0 && stats.opened[hour] > 0 {
			all = append(all, rated{hour: hour, rate: stats.openRate(hour)})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].rate != all[j].rate {
			return all[i].rate > all[j].rate
		}
		return all[i].hour < all[j].hour
	})

	if len(all) > n {
		all = all[:n]
	}
	hours := make([]int, len(all))
	for i, r := range all {
		hours[i] = r.hour
	}
	return hours
}

// bestDays returns the weekdays whose open rate beats the overall rate.
func bestDays(sent, opened [7]int) []time.Weekday {
	totalSent, totalOpened := 0, 0
	for d := 0; d < 7; d++ {
		totalSent += sent[d]
		totalOpened += opened[d]
	}
	if totalSent == 0 {
		return nil
	}
	overall := float64(totalOpened) / float64(totalSent)

	var days []time.Weekday
	for d := 0; d < 7; d++ {
		if sent[d] == 0 {
			continue
		}
		if float64(opened[d])/float64(sent[d]) > overall {
			days = append(days, time.Weekday(d))
		}
	}
	return days
}
