package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pulsehabit/pulse/internal/domain"
)

// ─── Evaluation Runner ──────────────────────────────────────────────────────

// UserLister enumerates onboarded users for the periodic sweep.
type UserLister interface {
	ListUsers() ([]string, error)
}

// Runner drives evaluation cycles: a periodic sweep over all users plus
// ad-hoc triggers, both through the identical Evaluate entry point.
// Cycles for the same user never run concurrently — a cycle arriving while
// one is in flight is skipped, never queued behind stale state. Different
// users evaluate fully in parallel.
type Runner struct {
	engine   *Engine
	users    UserLister
	interval time.Duration

	mu   sync.Mutex
	busy map[string]bool
}

// NewRunner creates a runner sweeping every interval.
func NewRunner(engine *Engine, users UserLister, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Runner{
		engine:   engine,
		users:    users,
		interval: interval,
		busy:     make(map[string]bool),
	}
}

// Start runs the periodic sweep until the context ends. Call in a goroutine.
func (r *Runner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.sweep(now)
		}
	}
}

// sweep evaluates every onboarded user once with the time-of-day default
// candidate set. Users evaluate in parallel; the per-user guard serializes.
func (r *Runner) sweep(now time.Time) {
	users, err := r.users.ListUsers()
	if err != nil {
		log.Printf("[runner] list users: %v", err)
		return
	}

	var wg sync.WaitGroup
	for _, userID := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			if _, err := r.Trigger(now, userID, nil, nil); err != nil && err != domain.ErrCycleBusy {
				log.Printf("[runner] user=%s evaluate: %v", userID, err)
			}
		}(userID)
	}
	wg.Wait()
}

// Trigger runs one evaluation cycle for a user — the single entry point for
// both the timer sweep and ad-hoc triggers (streak-lapse events, API calls).
// A nil candidate list selects the time-of-day defaults.
// Returns domain.ErrCycleBusy when a cycle for the user is already running.
func (r *Runner) Trigger(now time.Time, userID string, candidates []domain.NotificationType,
	overrides map[domain.NotificationType]domain.Signals) (*domain.Decision, error) {

	if !r.acquire(userID) {
		return nil, domain.ErrCycleBusy
	}
	defer r.release(userID)

	if candidates == nil {
		candidates = DefaultCandidates(now)
	}
	return r.engine.Evaluate(now, userID, candidates, overrides)
}

func (r *Runner) acquire(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busy[userID] {
		return false
	}
	r.busy[userID] = true
	return true
}

func (r *Runner) release(userID string) {
	r.mu.Lock()
	delete(r.busy, userID)
	r.mu.Unlock()
}

// ─── Default Candidate Selection ────────────────────────────────────────────

// DefaultCandidates picks the candidate types for a timer tick based on the
// time of day. Window preference steers which content is considered here;
// it never blocks sending (only DND does, inside Evaluate).
func DefaultCandidates(now time.Time) []domain.NotificationType {
	hour := now.Hour()
	switch {
	case hour >= 5 && hour < 11:
		return []domain.NotificationType{
			domain.TypeMorningMotivation,
			domain.TypeAIInsight,
			domain.TypeComebackNudge,
		}
	case hour >= 11 && hour < 16:
		return []domain.NotificationType{
			domain.TypeMiddayCheckIn,
			domain.TypeHabitSpecific,
			domain.TypeSocialActivity,
			domain.TypeMilestoneApproach,
		}
	default:
		cands := []domain.NotificationType{
			domain.TypeEveningReminder,
			domain.TypeStreakAtRisk,
			domain.TypeAchievementUnlocked,
			domain.TypeCoachOutreach,
		}
		if now.Weekday() == time.Sunday {
			cands = append(cands, domain.TypeWeeklySummary)
		}
		return cands
	}
}
