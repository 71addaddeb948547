package engine

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pulsehabit/pulse/internal/app/guardrail"
	"github.com/pulsehabit/pulse/internal/app/scoring"
	"github.com/pulsehabit/pulse/internal/domain"
	"github.com/pulsehabit/pulse/internal/infra/metrics"
)

// ─── Decision Engine ────────────────────────────────────────────────────────

// Engine orchestrates the gates, the scorer and the guardrail filter into
// a single send decision per evaluation cycle. Everything before the final
// commit is pure computation; the commit is one atomic state transition.
type Engine struct {
	store     domain.StateStore
	catalog   domain.TemplateCatalog
	signals   domain.SignalSource
	coachName string
}

// New creates a decision engine over the given collaborators.
func New(store domain.StateStore, catalog domain.TemplateCatalog, signals domain.SignalSource, coachName string) *Engine {
	return &Engine{store: store, catalog: catalog, signals: signals, coachName: coachName}
}

// scored is a candidate that survived the gates and the score threshold.
type scored struct {
	typ   domain.NotificationType
	score domain.ValueScore
}

// Evaluate runs one decision cycle for a user: gate, score, pick, filter,
// commit. Returns nil when no nudge should be sent — that outcome is normal
// and carries no error. Overrides, when non-nil, replace the signal source
// for specific candidate types (used by ad-hoc triggers that already carry
// fresh signals, e.g. a streak-lapse event).
//
// Callers must serialize cycles per user; see Runner.
func (e *Engine) Evaluate(now time.Time, userID string, candidates []domain.NotificationType,
	overrides map[domain.NotificationType]domain.Signals) (*domain.Decision, error) {

	timer := time.Now()
	defer func() { metrics.EvaluateLatency.Observe(time.Since(timer).Seconds()) }()
	metrics.EvaluationsTotal.Inc()

	prefs, err := e.store.GetPreferences(userID)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	// 1. Quiet hours: DND blocks everything.
	if !IsSendableNow(now, *prefs) {
		metrics.SuppressedTotal.WithLabelValues("quiet_hours").Inc()
		return nil, nil
	}

	daily, err := e.store.GetDailyState(userID, domain.DayKey(now))
	if err != nil {
		return nil, fmt.Errorf("load daily state: %w", err)
	}
	weekly, err := e.store.GetWeeklyState(userID, domain.WeekStartKey(now))
	if err != nil {
		return nil, fmt.Errorf("load weekly state: %w", err)
	}
	weekly.SilentDays = silentDays(weekly, now)

	// 2–3. Gate and score every candidate independently. A bad candidate is
	// skipped and logged, never aborts the others.
	var passing []scored
	for _, t := range candidates {
		if !t.Valid() {
			log.Printf("[engine] user=%s skipping unknown type %q", userID, t)
			continue
		}

		gate := MaySend(now, t, *prefs, daily, weekly)
		if !gate.Allow {
			// Escalation activation: a streak-at-risk candidate that scores
			// past the threshold on a day where the weekly budget is already
			// spent arms the one sanctioned override for the rest of the week.
			if gate.Reason == ReasonWeeklyBudget && t == domain.TypeStreakAtRisk && !weekly.AtRiskEscalation {
				if sig, err := e.signalsFor(userID, t, overrides); err == nil {
					if score := scoring.Score(t, sig); score.Passes() {
						weekly.AtRiskEscalation = true
						log.Printf("[engine] user=%s at-risk escalation armed (%s)", userID, score.Reason)
						// The armed flag survives even if this cycle ends in
						// a non-send (spacing, ceiling); the commit path
						// persists it again with the decision.
						if err := e.putWeekly(userID, weekly); err != nil {
							log.Printf("[engine] user=%s escalation persist failed: %v", userID, err)
						}
						gate = MaySend(now, t, *prefs, daily, weekly)
					}
				}
			}
			if !gate.Allow {
				metrics.SuppressedTotal.WithLabelValues(gate.Reason).Inc()
				continue
			}
		}

		sig, err := e.signalsFor(userID, t, overrides)
		if err != nil {
			log.Printf("[engine] user=%s type=%s signals unavailable: %v", userID, t, err)
			metrics.SuppressedTotal.WithLabelValues("invalid_signal").Inc()
			continue
		}

		score := scoring.Score(t, sig)
		if !score.Passes() {
			metrics.SuppressedTotal.WithLabelValues("below_threshold").Inc()
			continue
		}
		passing = append(passing, scored{typ: t, score: score})
	}

	if len(passing) == 0 {
		return nil, nil
	}

	// 4. Rank: highest total wins; equal totals break on category priority.
	sort.SliceStable(passing, func(i, j int) bool {
		ti, tj := passing[i].score.Total(), passing[j].score.Total()
		if ti != tj {
			return ti > tj
		}
		return domain.CategoryOf(passing[i].typ).Priority() < domain.CategoryOf(passing[j].typ).Priority()
	})

	// 5. Render and filter, walking down the ranking if a winner's text
	// cannot be made safe. A Silent Day winner is an intentional non-send.
	for _, cand := range passing {
		category := domain.CategoryOf(cand.typ)
		if category == domain.CatSilentDay {
			metrics.SuppressedTotal.WithLabelValues("silent_day").Inc()
			return nil, nil
		}

		body := e.catalog.Template(cand.typ, prefs.Tone)
		if body == "" {
			// No template for the chosen type is unrecoverable for this
			// cycle: no send beats sending empty content.
			metrics.SuppressedTotal.WithLabelValues("empty_template").Inc()
			return nil, fmt.Errorf("type %s: %w", cand.typ, domain.ErrEmptyTemplate)
		}

		sanitized := guardrail.Sanitize(body)
		if sanitized != body {
			metrics.SanitizerRewrites.Inc()
		}
		if guardrail.ContainsBanned(sanitized) {
			// Hard user-visible-safety failure for this candidate only.
			log.Printf("[engine] user=%s type=%s dropped: %v", userID, cand.typ, domain.ErrUnsafeContent)
			metrics.SuppressedTotal.WithLabelValues("unsafe_content").Inc()
			continue
		}

		// 6. Commit as one atomic state transition.
		decision, err := e.commit(now, userID, cand, *prefs, daily, weekly, sanitized)
		if err != nil {
			metrics.CommitFailures.Inc()
			return nil, fmt.Errorf("%w: %v", domain.ErrCommitFailed, err)
		}
		metrics.DecisionsTotal.WithLabelValues(string(cand.typ)).Inc()
		return decision, nil
	}

	return nil, nil
}

// commit applies the winning candidate to daily/weekly state and appends the
// history entry in a single store transaction.
func (e *Engine) commit(now time.Time, userID string, cand scored, prefs domain.Preferences,
	daily domain.DailyState, weekly domain.WeeklyState, body string) (*domain.Decision, error) {

	title := guardrail.Sanitize(e.catalog.Title(cand.typ, e.coachName))
	prevSentAt := daily.LastSentAt

	entry := domain.HistoryEntry{
		ID:     uuid.NewString(),
		UserID: userID,
		Type:   cand.typ,
		Title:  title,
		Body:   body,
		SentAt: now,
	}

	daily.CountSent++
	daily.LastSentAt = now
	daily.TypesSent = append(daily.TypesSent, cand.typ)

	weekly.CountSent++
	weekly.TypesSent = append(weekly.TypesSent, cand.typ)
	weekly.LastType = cand.typ
	weekly.LastSentDate = domain.DayKey(now)
	weekly.SilentDays = 0

	if err := e.store.CommitDecision(daily, weekly, entry); err != nil {
		return nil, err
	}

	if !prevSentAt.IsZero() {
		log.Printf("[engine] user=%s sent %s (%s since previous)", userID, cand.typ, minutesSince(prevSentAt, now))
	} else {
		log.Printf("[engine] user=%s sent %s (%s)", userID, cand.typ, cand.score.Reason)
	}

	return &domain.Decision{
		HistoryID: entry.ID,
		UserID:    userID,
		Type:      cand.typ,
		Category:  domain.CategoryOf(cand.typ),
		Title:     title,
		Body:      body,
		Score:     cand.score,
		DecidedAt: now,
	}, nil
}

// signalsFor fetches the signal bundle for one candidate, preferring an
// override supplied by the trigger.
func (e *Engine) signalsFor(userID string, t domain.NotificationType,
	overrides map[domain.NotificationType]domain.Signals) (domain.Signals, error) {

	if sig, ok := overrides[t]; ok {
		return sig, sig.Validate()
	}
	sig, err := e.signals.SignalsFor(userID, t)
	if err != nil {
		return sig, err
	}
	return sig, sig.Validate()
}

// ─── Delivery & Outcome Reporting ───────────────────────────────────────────

// RecordDelivery acknowledges that the delivery sink actually dispatched a
// decision. The decision was already committed by Evaluate; this verifies
// the history entry exists and feeds the delivery metric.
func (e *Engine) RecordDelivery(d domain.Decision) error {
	if _, err := e.store.GetHistoryEntry(d.HistoryID); err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	metrics.DeliveredTotal.WithLabelValues(string(d.Type)).Inc()
	return nil
}

// RecordOutcome applies an opened/dismissed/converted event to a history
// entry (write-once per flag) and folds opens into the rolling engagement
// and open-rate state the scorer's signals draw from.
func (e *Engine) RecordOutcome(id string, outcome domain.Outcome, at time.Time) error {
	if !outcome.Valid() {
		return fmt.Errorf("record outcome: unknown outcome %q", outcome)
	}

	entry, err := e.store.GetHistoryEntry(id)
	if err != nil {
		return err
	}

	if err := e.store.RecordOutcome(id, outcome, at.Unix()); err != nil {
		return err
	}
	metrics.OutcomesTotal.WithLabelValues(string(outcome)).Inc()

	// Rolling open-rate / engagement smoothing. Dismissals pull the rates
	// down, opens and conversions pull them up.
	var observed float64
	switch outcome {
	case domain.OutcomeOpened:
		observed = 1.0
	case domain.OutcomeConverted:
		observed = 1.0
	case domain.OutcomeDismissed:
		observed = 0.0
	}

	weekly, err := e.store.GetWeeklyState(entry.UserID, domain.WeekStartKey(entry.SentAt))
	if err == nil {
		weekly.OpenRate = smooth(weekly.OpenRate, observed)
		if err := e.putWeekly(entry.UserID, weekly); err != nil {
			log.Printf("[engine] user=%s open-rate update failed: %v", entry.UserID, err)
		}
	}

	daily, err := e.store.GetDailyState(entry.UserID, domain.DayKey(entry.SentAt))
	if err == nil {
		daily.Engagement = smooth(daily.Engagement, observed)
		if err := e.putDaily(entry.UserID, daily); err != nil {
			log.Printf("[engine] user=%s engagement update failed: %v", entry.UserID, err)
		}
	}

	return nil
}

// Usage returns the current daily and weekly counters alongside the caps,
// for the settings UI ("X of Y notifications used this week").
func (e *Engine) Usage(now time.Time, userID string) (daily domain.DailyState, weekly domain.WeeklyState, prefs domain.Preferences, err error) {
	p, err := e.store.GetPreferences(userID)
	if err != nil {
		return daily, weekly, prefs, err
	}
	daily, err = e.store.GetDailyState(userID, domain.DayKey(now))
	if err != nil {
		return daily, weekly, prefs, err
	}
	weekly, err = e.store.GetWeeklyState(userID, domain.WeekStartKey(now))
	if err != nil {
		return daily, weekly, prefs, err
	}
	// The stored counter is only advanced on commits; recompute against now
	// so long silent stretches read accurately.
	weekly.SilentDays = silentDays(weekly, now)
	return daily, weekly, *p, nil
}

// smooth is the rolling-rate update: 70% memory, 30% newest observation.
func smooth(old, observed float64) float64 {
	return 0.7*old + 0.3*observed
}

// bookkeepingStore is the optional widening of StateStore used for rolling
// rate updates outside the decision path.
type bookkeepingStore interface {
	PutWeeklyState(userID string, st domain.WeeklyState) error
	PutDailyState(userID string, st domain.DailyState) error
}

func (e *Engine) putWeekly(userID string, st domain.WeeklyState) error {
	if bs, ok := e.store.(bookkeepingStore); ok {
		return bs.PutWeeklyState(userID, st)
	}
	return nil
}

func (e *Engine) putDaily(userID string, st domain.DailyState) error {
	if bs, ok := e.store.(bookkeepingStore); ok {
		return bs.PutDailyState(userID, st)
	}
	return nil
}
