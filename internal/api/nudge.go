package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pulsehabit/pulse/internal/domain"
)

// ─── Evaluate ───────────────────────────────────────────────────────────────

// evaluateRequest is an ad-hoc evaluation trigger. Candidates and signal
// overrides are optional: a bare POST behaves exactly like a timer tick.
type evaluateRequest struct {
	Candidates []domain.NotificationType                  `json:"candidates,omitempty"`
	Signals    map[domain.NotificationType]domain.Signals `json:"signals,omitempty"`
	At         time.Time                                  `json:"at,omitempty"`
}

type evaluateResponse struct {
	Decision *domain.Decision `json:"decision"` // null means intentional non-send
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req evaluateRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	now := req.At
	if now.IsZero() {
		now = time.Now()
	}

	decision, err := s.runner.Trigger(now, userID, req.Candidates, req.Signals)
	switch {
	case errors.Is(err, domain.ErrCycleBusy):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, domain.ErrCommitFailed):
		// Retryable: state is unchanged, the next cycle re-evaluates.
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, evaluateResponse{Decision: decision})
}

// ─── Preferences ────────────────────────────────────────────────────────────

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	prefs, err := s.store.GetPreferences(userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	prefs := domain.DefaultPreferences()
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid preferences: "+err.Error())
		return
	}
	if !prefs.Tone.Valid() {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidTone.Error())
		return
	}
	for _, win := range []domain.HourWindow{prefs.Morning, prefs.Midday, prefs.Evening, prefs.DND, prefs.DNDWeekend} {
		if win.Start < 0 || win.Start > 23 || win.End < 0 || win.End > 23 {
			writeError(w, http.StatusBadRequest, domain.ErrInvalidWindow.Error())
			return
		}
	}

	if err := s.store.PutPreferences(userID, prefs); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// ─── Usage Counters ─────────────────────────────────────────────────────────

// usageResponse backs the settings UI's "X of Y notifications used" display.
type usageResponse struct {
	Day            string `json:"day"`
	SentToday      int    `json:"sent_today"`
	MaxPerDay      int    `json:"max_per_day"`
	WeekStart      string `json:"week_start"`
	SentThisWeek   int    `json:"sent_this_week"`
	MaxPerWeek     int    `json:"max_per_week"`
	SilentDays     int    `json:"silent_days"`
	EscalationOpen bool   `json:"at_risk_escalation_active"`
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	daily, weekly, prefs, err := s.engine.Usage(time.Now(), userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, usageResponse{
		Day:            daily.Day,
		SentToday:      daily.CountSent,
		MaxPerDay:      prefs.MaxPerDay,
		WeekStart:      weekly.WeekStart,
		SentThisWeek:   weekly.CountSent,
		MaxPerWeek:     prefs.MaxPerWeek,
		SilentDays:     weekly.SilentDays,
		EscalationOpen: weekly.AtRiskEscalation,
	})
}

// ─── History ────────────────────────────────────────────────────────────────

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := s.store.ListHistory(userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// ─── Delivery & Outcomes ────────────────────────────────────────────────────

func (s *Server) handleRecordDelivery(w http.ResponseWriter, r *http.Request) {
	var decision domain.Decision
	if err := json.NewDecoder(r.Body).Decode(&decision); err != nil {
		writeError(w, http.StatusBadRequest, "invalid decision: "+err.Error())
		return
	}

	if err := s.engine.RecordDelivery(decision); err != nil {
		if errors.Is(err, domain.ErrHistoryNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

type outcomeRequest struct {
	Outcome domain.Outcome `json:"outcome"`
	At      time.Time      `json:"at,omitempty"`
}

func (s *Server) handleRecordOutcome(w http.ResponseWriter, r *http.Request) {
	historyID := chi.URLParam(r, "historyID")

	var req outcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if !req.Outcome.Valid() {
		writeError(w, http.StatusBadRequest, "outcome must be opened, dismissed or converted")
		return
	}
	at := req.At
	if at.IsZero() {
		at = time.Now()
	}

	err := s.engine.RecordOutcome(historyID, req.Outcome, at)
	switch {
	case errors.Is(err, domain.ErrHistoryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrOutcomeRecorded):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
	}
}
