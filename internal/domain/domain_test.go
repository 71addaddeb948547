package domain_test

import (
	"testing"
	"time"

	"github.com/pulsehabit/pulse/internal/domain"
)

// ═══════════════════════════════════════════════════════════════════════════
// Notification Type & Category Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestAllTypes_TwelveDefined(t *testing.T) {
	types := domain.AllTypes()
	if len(types) != 12 {
		t.Fatalf("expected 12 notification types, got %d", len(types))
	}
	seen := make(map[domain.NotificationType]bool)
	for _, typ := range types {
		if seen[typ] {
			t.Errorf("duplicate type %s", typ)
		}
		seen[typ] = true
		if !typ.Valid() {
			t.Errorf("type %s not valid", typ)
		}
		if typ.Label() == "" || typ.Emoji() == "" {
			t.Errorf("type %s missing display metadata", typ)
		}
	}
}

func TestCategoryOf_Total(t *testing.T) {
	categories := map[domain.BehaviorCategory]int{}
	for _, typ := range domain.AllTypes() {
		cat := domain.CategoryOf(typ)
		if cat == domain.CatSilentDay {
			t.Errorf("defined type %s must not map to silent day", typ)
		}
		categories[cat]++
	}
	// Every sendable category is covered by at least one type.
	for _, cat := range []domain.BehaviorCategory{
		domain.CatCelebration, domain.CatCuriosityHook,
		domain.CatStreakShield, domain.CatSocialWhisper,
	} {
		if categories[cat] == 0 {
			t.Errorf("category %s has no types", cat)
		}
	}
}

func TestCategoryOf_UnknownIsSilentDay(t *testing.T) {
	if cat := domain.CategoryOf("not_a_type"); cat != domain.CatSilentDay {
		t.Errorf("unknown type mapped to %s, want silent day", cat)
	}
}

func TestCategoryPriority_Order(t *testing.T) {
	order := []domain.BehaviorCategory{
		domain.CatStreakShield, domain.CatCelebration,
		domain.CatCuriosityHook, domain.CatSocialWhisper, domain.CatSilentDay,
	}
	for i := 1; i < len(order); i++ {
		if order[i-1].Priority() >= order[i].Priority() {
			t.Errorf("%s should outrank %s", order[i-1], order[i])
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Value Score Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestValueScore_TotalIsSum(t *testing.T) {
	v := domain.ValueScore{Risk: 20, Readiness: 15, Novelty: 10, Impact: 5, Trust: 5}
	if v.Total() != 55 {
		t.Errorf("total = %d, want 55", v.Total())
	}
}

func TestValueScore_TotalClamped(t *testing.T) {
	over := domain.ValueScore{Risk: 50, Readiness: 50, Novelty: 50, Impact: 50, Trust: 50}
	if over.Total() != 100 {
		t.Errorf("oversized total = %d, want clamp to 100", over.Total())
	}
	under := domain.ValueScore{Risk: -10}
	if under.Total() != 0 {
		t.Errorf("negative total = %d, want clamp to 0", under.Total())
	}
}

func TestValueScore_PassBoundary(t *testing.T) {
	at := domain.ValueScore{Risk: 30, Readiness: 25, Novelty: 10} // 65
	if !at.Passes() {
		t.Error("total 65 must pass")
	}
	below := domain.ValueScore{Risk: 30, Readiness: 25, Novelty: 9} // 64
	if below.Passes() {
		t.Error("total 64 must fail")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Window & Date Key Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestHourWindow_WrapsMidnight(t *testing.T) {
	w := domain.HourWindow{Start: 22, End: 7}
	for _, h := range []int{22, 23, 0, 3, 6} {
		if !w.Contains(h) {
			t.Errorf("hour %d should be inside 22-07", h)
		}
	}
	for _, h := range []int{7, 12, 21} {
		if w.Contains(h) {
			t.Errorf("hour %d should be outside 22-07", h)
		}
	}
}

func TestHourWindow_ZeroWidthNeverContains(t *testing.T) {
	w := domain.HourWindow{Start: 9, End: 9}
	for h := 0; h < 24; h++ {
		if w.Contains(h) {
			t.Fatalf("zero-width window contains hour %d", h)
		}
	}
}

func TestWeekStartKey_Monday(t *testing.T) {
	// Wed 2025-07-02 belongs to the week of Mon 2025-06-30.
	wed := time.Date(2025, 7, 2, 15, 0, 0, 0, time.UTC)
	if got := domain.WeekStartKey(wed); got != "2025-06-30" {
		t.Errorf("week start = %s, want 2025-06-30", got)
	}
	// Sunday still belongs to the preceding Monday's week.
	sun := time.Date(2025, 7, 6, 9, 0, 0, 0, time.UTC)
	if got := domain.WeekStartKey(sun); got != "2025-06-30" {
		t.Errorf("sunday week start = %s, want 2025-06-30", got)
	}
	// Monday starts its own week.
	mon := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)
	if got := domain.WeekStartKey(mon); got != "2025-07-07" {
		t.Errorf("monday week start = %s, want 2025-07-07", got)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Preferences & Signals Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestDefaultPreferences(t *testing.T) {
	p := domain.DefaultPreferences()
	if !p.Enabled {
		t.Error("defaults should enable nudges")
	}
	if p.MaxPerDay != 2 || p.MaxPerWeek != 4 || p.MinMinutesBetween != 120 {
		t.Errorf("frequency defaults wrong: %d/%d/%d", p.MaxPerDay, p.MaxPerWeek, p.MinMinutesBetween)
	}
	if !p.Tone.Valid() {
		t.Errorf("default tone %q invalid", p.Tone)
	}
	for _, typ := range domain.AllTypes() {
		if p.TypeEnabled(typ) != typ.DefaultEnabled() {
			t.Errorf("type %s enabled=%v, want default %v", typ, p.TypeEnabled(typ), typ.DefaultEnabled())
		}
	}
}

func TestTypeEnabled_FallsBackToDefault(t *testing.T) {
	p := domain.Preferences{EnabledTypes: map[domain.NotificationType]bool{
		domain.TypeStreakAtRisk: false,
	}}
	if p.TypeEnabled(domain.TypeStreakAtRisk) {
		t.Error("explicit false should win")
	}
	if !p.TypeEnabled(domain.TypeMorningMotivation) {
		t.Error("unset type should fall back to its default (enabled)")
	}
}

func TestSignals_Validate(t *testing.T) {
	good := domain.Signals{DaysUntilStreakLoss: 1, HourOpenRate: 0.5, EstimatedImpact: 0.5, TrustLevel: 0.5}
	if err := good.Validate(); err != nil {
		t.Errorf("valid signals rejected: %v", err)
	}

	bad := good
	bad.HourOpenRate = 1.5
	if err := bad.Validate(); err == nil {
		t.Error("open rate above 1 should be rejected")
	}

	bad = good
	bad.TrustLevel = -0.1
	if err := bad.Validate(); err == nil {
		t.Error("negative trust should be rejected")
	}
}
