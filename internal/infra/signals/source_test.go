package signals

import (
	"testing"
	"time"

	"github.com/pulsehabit/pulse/internal/domain"
)

// memStore serves canned preferences, history, weekly state and timing.
type memStore struct {
	prefs   domain.Preferences
	history []domain.HistoryEntry
	weekly  domain.WeeklyState
	timing  *domain.SmartTiming
}

func (m *memStore) GetPreferences(string) (*domain.Preferences, error) {
	p := m.prefs
	return &p, nil
}

func (m *memStore) ListHistory(string, int) ([]domain.HistoryEntry, error) {
	return m.history, nil
}

func (m *memStore) GetWeeklyState(_, weekStart string) (domain.WeeklyState, error) {
	m.weekly.WeekStart = weekStart
	return m.weekly, nil
}

func (m *memStore) GetSmartTiming(string) (*domain.SmartTiming, error) {
	return m.timing, nil
}

func fixedNow() time.Time {
	return time.Date(2025, 7, 2, 18, 0, 0, 0, time.UTC)
}

func entry(t domain.NotificationType, sentAt time.Time, opened bool) domain.HistoryEntry {
	return domain.HistoryEntry{ID: "h-" + string(t) + sentAt.Format("0102-15"), Type: t, SentAt: sentAt, Opened: opened}
}

func TestSignalsFor_NewUserNeutral(t *testing.T) {
	src := NewAt(&memStore{}, fixedNow)
	sig, err := src.SignalsFor("ada", domain.TypeMorningMotivation)
	if err != nil {
		t.Fatalf("signals: %v", err)
	}
	if sig.DaysUntilStreakLoss >= 0 {
		t.Errorf("streak loss must be unavailable here, got %v", sig.DaysUntilStreakLoss)
	}
	if sig.HourOpenRate != 0.5 {
		t.Errorf("no data should give a neutral open rate, got %v", sig.HourOpenRate)
	}
	if sig.DaysSinceCategorySent >= 0 {
		t.Errorf("never-sent category must be negative, got %d", sig.DaysSinceCategorySent)
	}
	if sig.TrustLevel != 0.5 {
		t.Errorf("no history should give neutral trust, got %v", sig.TrustLevel)
	}
	if err := sig.Validate(); err != nil {
		t.Errorf("produced signals must validate: %v", err)
	}
}

func TestHourOpenRate_CountsOnlyMatchingHour(t *testing.T) {
	now := fixedNow() // 18:00
	// Two sends at 18h (one opened), one opened send at 09h that must not
	// count toward the 18h rate.
	store := &memStore{history: []domain.HistoryEntry{
		entry(domain.TypeEveningReminder, now.AddDate(0, 0, -1), true),
		entry(domain.TypeEveningReminder, now.AddDate(0, 0, -2), false),
		entry(domain.TypeMorningMotivation, now.AddDate(0, 0, -1).Add(-9*time.Hour), true),
	}}
	src := NewAt(store, fixedNow)
	sig, err := src.SignalsFor("ada", domain.TypeEveningReminder)
	if err != nil {
		t.Fatalf("signals: %v", err)
	}
	if sig.HourOpenRate != 0.5 {
		t.Errorf("1 of 2 sends at 18h opened, rate = %v, want 0.5", sig.HourOpenRate)
	}
}

func TestDaysSinceCategory_MostRecentOfCategory(t *testing.T) {
	now := fixedNow()
	// Newest first, like the store returns. Streak-shield sends 1 and 5 days
	// ago; celebration never sent.
	store := &memStore{history: []domain.HistoryEntry{
		entry(domain.TypeEveningReminder, now.AddDate(0, 0, -1), true),
		entry(domain.TypeStreakAtRisk, now.AddDate(0, 0, -5), true),
	}}
	src := NewAt(store, fixedNow)

	shield, err := src.SignalsFor("ada", domain.TypeStreakAtRisk)
	if err != nil {
		t.Fatalf("signals: %v", err)
	}
	if shield.DaysSinceCategorySent != 1 {
		t.Errorf("streak-shield recency = %d, want 1 (evening reminder shares the category)", shield.DaysSinceCategorySent)
	}

	celebration, err := src.SignalsFor("ada", domain.TypeAchievementUnlocked)
	if err != nil {
		t.Fatalf("signals: %v", err)
	}
	if celebration.DaysSinceCategorySent >= 0 {
		t.Errorf("celebration never sent, got %d", celebration.DaysSinceCategorySent)
	}
}

func TestTrustLevel_BlendsWeeklyOpenRate(t *testing.T) {
	now := fixedNow()
	store := &memStore{
		history: []domain.HistoryEntry{entry(domain.TypeEveningReminder, now.AddDate(0, 0, -1), true)},
		weekly:  domain.WeeklyState{OpenRate: 1},
	}
	src := NewAt(store, fixedNow)
	sig, err := src.SignalsFor("ada", domain.TypeEveningReminder)
	if err != nil {
		t.Fatalf("signals: %v", err)
	}
	// 0.3 neutral prior + 0.7 observed.
	if sig.TrustLevel < 0.84 || sig.TrustLevel > 0.86 {
		t.Errorf("trust = %v, want 0.85", sig.TrustLevel)
	}
}

func TestSmartTiming_LiftsReadinessAtLearnedHours(t *testing.T) {
	prefs := domain.DefaultPreferences() // smart timing on
	timing := &domain.SmartTiming{
		MorningHour:     8,
		MiddayHour:      13,
		EveningHour:     18,
		ResponsiveHours: []int{20},
	}

	// 18:00 is the learned evening hour: no per-hour data, so the neutral
	// 0.5 lifts to the best-hour floor.
	src := NewAt(&memStore{prefs: prefs, timing: timing}, fixedNow)
	sig, err := src.SignalsFor("ada", domain.TypeEveningReminder)
	if err != nil {
		t.Fatalf("signals: %v", err)
	}
	if sig.HourOpenRate != 0.8 {
		t.Errorf("learned hour rate = %v, want 0.8", sig.HourOpenRate)
	}

	// 20:00 is only a responsive hour: lower floor.
	at20 := func() time.Time { return fixedNow().Add(2 * time.Hour) }
	src = NewAt(&memStore{prefs: prefs, timing: timing}, at20)
	sig, err = src.SignalsFor("ada", domain.TypeEveningReminder)
	if err != nil {
		t.Fatalf("signals: %v", err)
	}
	if sig.HourOpenRate != 0.65 {
		t.Errorf("responsive hour rate = %v, want 0.65", sig.HourOpenRate)
	}

	// 19:00 matches nothing learned: the neutral rate stands.
	at19 := func() time.Time { return fixedNow().Add(time.Hour) }
	src = NewAt(&memStore{prefs: prefs, timing: timing}, at19)
	sig, err = src.SignalsFor("ada", domain.TypeEveningReminder)
	if err != nil {
		t.Fatalf("signals: %v", err)
	}
	if sig.HourOpenRate != 0.5 {
		t.Errorf("unlearned hour rate = %v, want 0.5", sig.HourOpenRate)
	}
}

func TestSmartTiming_ObservedRateBeatsFloor(t *testing.T) {
	prefs := domain.DefaultPreferences()
	timing := &domain.SmartTiming{EveningHour: 18}
	now := fixedNow()
	// Every 18h send opened: the observed 1.0 outranks the 0.8 floor.
	store := &memStore{
		prefs:  prefs,
		timing: timing,
		history: []domain.HistoryEntry{
			entry(domain.TypeEveningReminder, now.AddDate(0, 0, -1), true),
			entry(domain.TypeEveningReminder, now.AddDate(0, 0, -2), true),
		},
	}
	sig, err := NewAt(store, fixedNow).SignalsFor("ada", domain.TypeEveningReminder)
	if err != nil {
		t.Fatalf("signals: %v", err)
	}
	if sig.HourOpenRate != 1 {
		t.Errorf("rate = %v, want observed 1.0 to stand", sig.HourOpenRate)
	}
}

func TestSmartTiming_OptOutIgnoresLearner(t *testing.T) {
	prefs := domain.DefaultPreferences()
	prefs.UseSmartTiming = false
	timing := &domain.SmartTiming{EveningHour: 18}

	src := NewAt(&memStore{prefs: prefs, timing: timing}, fixedNow)
	sig, err := src.SignalsFor("ada", domain.TypeEveningReminder)
	if err != nil {
		t.Fatalf("signals: %v", err)
	}
	if sig.HourOpenRate != 0.5 {
		t.Errorf("opted-out rate = %v, want the plain 0.5", sig.HourOpenRate)
	}
}

func TestImpactEstimate_CoversEveryType(t *testing.T) {
	for _, typ := range domain.AllTypes() {
		est, ok := impactEstimate[typ]
		if !ok {
			t.Errorf("type %s has no impact estimate", typ)
			continue
		}
		if est <= 0 || est > 1 {
			t.Errorf("type %s impact %v out of (0,1]", typ, est)
		}
	}
	if impactEstimate[domain.TypeStreakAtRisk] <= impactEstimate[domain.TypeSocialActivity] {
		t.Error("streak protection must outrank ambient social content")
	}
}
