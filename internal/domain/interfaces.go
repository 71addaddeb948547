package domain

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// StateStore abstracts per-user persistent state. Implemented by
// infra/sqlite.DB. Commit is the only call that mutates Daily/WeeklyState
// and History, and it is all-or-nothing.
type StateStore interface {
	GetPreferences(userID string) (*Preferences, error)
	PutPreferences(userID string, prefs Preferences) error

	GetDailyState(userID, day string) (DailyState, error)
	GetWeeklyState(userID, weekStart string) (WeeklyState, error)

	// CommitDecision atomically applies one decision: daily and weekly
	// counters, the history entry, and the escalation flag.
	CommitDecision(daily DailyState, weekly WeeklyState, entry HistoryEntry) error

	GetHistoryEntry(id string) (*HistoryEntry, error)
	ListHistory(userID string, limit int) ([]HistoryEntry, error)
	RecordOutcome(id string, outcome Outcome, at int64) error

	GetSmartTiming(userID string) (*SmartTiming, error)
	PutSmartTiming(userID string, timing SmartTiming) error
}

// TemplateCatalog produces unsanitized candidate strings for a type.
// The engine treats the output as opaque input to the guardrail filter.
type TemplateCatalog interface {
	Template(t NotificationType, tone Tone) string
	Title(t NotificationType, coachName string) string
}

// SignalSource supplies the scorer's per-candidate measures from external
// collaborators (habit repositories, trust model, smart timing).
type SignalSource interface {
	SignalsFor(userID string, t NotificationType) (Signals, error)
}
