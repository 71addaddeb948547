package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Evaluation errors
	ErrInvalidSignal = errors.New("signal bundle missing or out of range")
	ErrInvalidType   = errors.New("unknown notification type")
	ErrEmptyTemplate = errors.New("template catalog returned empty text")
	ErrUnsafeContent = errors.New("banned phrase survived sanitization")
	ErrCycleBusy     = errors.New("evaluation cycle already running for user")

	// State errors
	ErrUserNotFound    = errors.New("no preferences stored for user")
	ErrHistoryNotFound = errors.New("history entry not found")
	ErrOutcomeRecorded = errors.New("outcome already recorded for history entry")
	ErrCommitFailed    = errors.New("decision commit failed — state unchanged, retry next cycle")

	// Preference errors
	ErrInvalidTone   = errors.New("unknown tone preference")
	ErrInvalidWindow = errors.New("hour window out of range")
)
