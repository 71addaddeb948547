package domain

// ─── Tone ───────────────────────────────────────────────────────────────────

// Tone selects the voice templates are rendered in. Exactly 5 values.
type Tone string

const (
	ToneCheerful Tone = "cheerful"
	ToneGentle   Tone = "gentle"
	ToneCoach    Tone = "coach"
	TonePlayful  Tone = "playful"
	ToneMinimal  Tone = "minimal"
)

// Valid reports whether t is a recognized tone.
func (t Tone) Valid() bool {
	switch t {
	case ToneCheerful, ToneGentle, ToneCoach, TonePlayful, ToneMinimal:
		return true
	}
	return false
}

// ─── Time Windows ───────────────────────────────────────────────────────────

// HourWindow is a half-open hour-of-day interval [Start, End).
// Start > End means the window wraps past midnight (e.g. 22 → 7).
// Start == End is zero-width and never contains anything.
type HourWindow struct {
	Start int `json:"start" toml:"start"`
	End   int `json:"end" toml:"end"`
}

// Contains reports whether the given hour-of-day falls inside the window,
// handling the midnight wrap.
func (w HourWindow) Contains(hour int) bool {
	if w.Start == w.End {
		return false // zero-width window never blocks
	}
	if w.Start > w.End {
		return hour >= w.Start || hour < w.End
	}
	return hour >= w.Start && hour < w.End
}

// ─── Preferences ────────────────────────────────────────────────────────────

// Frequency defaults. The weekly cap is the primary budget; the daily cap
// is an independent safety net and may be stricter per-day.
const (
	DefaultMaxPerDay         = 2
	DefaultMaxPerWeek        = 4
	DefaultMinMinutesBetween = 120
)

// Preferences holds a user's notification settings. Created at onboarding,
// user-editable any time.
type Preferences struct {
	Enabled bool `json:"enabled"`

	// Named content windows (preference only — they never block sending).
	Morning HourWindow `json:"morning"`
	Midday  HourWindow `json:"midday"`
	Evening HourWindow `json:"evening"`

	// Do-not-disturb: the only interval that blocks sending outright.
	DND        HourWindow `json:"dnd"`
	DNDWeekend HourWindow `json:"dnd_weekend"`

	MaxPerDay         int `json:"max_per_day"`         // hard ceiling, default 2
	MaxPerWeek        int `json:"max_per_week"`        // primary budget, default 4
	MinMinutesBetween int `json:"min_minutes_between"` // spacing, default 120

	EnabledTypes   map[NotificationType]bool `json:"enabled_types"`
	UseSmartTiming bool                      `json:"use_smart_timing"`
	Tone           Tone                      `json:"tone"`
}

// DefaultPreferences returns onboarding defaults: nudges on, gentle tone,
// 22:00–07:00 weekday DND (23:00–09:00 weekends), per-type flags from the
// type catalog.
func DefaultPreferences() Preferences {
	enabled := make(map[NotificationType]bool, len(typeCatalog))
	for _, t := range AllTypes() {
		enabled[t] = t.DefaultEnabled()
	}
	return Preferences{
		Enabled:           true,
		Morning:           HourWindow{Start: 7, End: 11},
		Midday:            HourWindow{Start: 11, End: 16},
		Evening:           HourWindow{Start: 16, End: 22},
		DND:               HourWindow{Start: 22, End: 7},
		DNDWeekend:        HourWindow{Start: 23, End: 9},
		MaxPerDay:         DefaultMaxPerDay,
		MaxPerWeek:        DefaultMaxPerWeek,
		MinMinutesBetween: DefaultMinMinutesBetween,
		EnabledTypes:      enabled,
		UseSmartTiming:    true,
		Tone:              ToneGentle,
	}
}

// TypeEnabled reports whether the given type is enabled, falling back to the
// type's default when the user has no explicit setting.
func (p Preferences) TypeEnabled(t NotificationType) bool {
	if v, ok := p.EnabledTypes[t]; ok {
		return v
	}
	return t.DefaultEnabled()
}
