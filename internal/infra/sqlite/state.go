package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pulsehabit/pulse/internal/domain"
)

// ─── Daily / Weekly State Repository ────────────────────────────────────────
// State rows are created lazily: a missing row reads back as a fresh state
// for the period, and the first committed decision materializes it.

// GetDailyState loads the daily counters for one user and calendar day.
func (d *DB) GetDailyState(userID, day string) (domain.DailyState, error) {
	row := d.db.QueryRow(
		`SELECT day, count_sent, last_sent_at, types_sent, engagement
		 FROM daily_state WHERE user_id = ? AND day = ?`, userID, day,
	)

	var st domain.DailyState
	var lastSent sql.NullInt64
	var typesJSON string
	err := row.Scan(&st.Day, &st.CountSent, &lastSent, &typesJSON, &st.Engagement)
	if err == sql.ErrNoRows {
		return domain.NewDailyState(day), nil
	}
	if err != nil {
		return st, fmt.Errorf("get daily state: %w", err)
	}

	if lastSent.Valid {
		st.LastSentAt = time.Unix(lastSent.Int64, 0)
	}
	st.TypesSent = unmarshalTypes(typesJSON)
	return st, nil
}

// GetWeeklyState loads the weekly counters for one user and Monday key.
func (d *DB) GetWeeklyState(userID, weekStart string) (domain.WeeklyState, error) {
	row := d.db.QueryRow(
		`SELECT week_start, count_sent, types_sent, last_type, last_sent_date,
		        silent_days, open_rate, at_risk_escalation
		 FROM weekly_state WHERE user_id = ? AND week_start = ?`, userID, weekStart,
	)

	var st domain.WeeklyState
	var typesJSON, lastType string
	err := row.Scan(&st.WeekStart, &st.CountSent, &typesJSON, &lastType,
		&st.LastSentDate, &st.SilentDays, &st.OpenRate, &st.AtRiskEscalation)
	if err == sql.ErrNoRows {
		return domain.NewWeeklyState(weekStart), nil
	}
	if err != nil {
		return st, fmt.Errorf("get weekly state: %w", err)
	}

	st.TypesSent = unmarshalTypes(typesJSON)
	st.LastType = domain.NotificationType(lastType)
	return st, nil
}

// PutWeeklyState upserts weekly counters outside the decision path (used for
// silent-day and open-rate bookkeeping).
func (d *DB) PutWeeklyState(userID string, st domain.WeeklyState) error {
	_, err := d.db.Exec(upsertWeeklySQL,
		userID, st.WeekStart, st.CountSent, marshalTypes(st.TypesSent),
		string(st.LastType), st.LastSentDate, st.SilentDays, st.OpenRate,
		st.AtRiskEscalation)
	if err != nil {
		return fmt.Errorf("put weekly state: %w", err)
	}
	return nil
}

// PutDailyState upserts daily counters outside the decision path (used for
// engagement bookkeeping).
func (d *DB) PutDailyState(userID string, st domain.DailyState) error {
	_, err := d.db.Exec(upsertDailySQL,
		userID, st.Day, st.CountSent, nullableUnix(st.LastSentAt),
		marshalTypes(st.TypesSent), st.Engagement)
	if err != nil {
		return fmt.Errorf("put daily state: %w", err)
	}
	return nil
}

const upsertDailySQL = `
	INSERT INTO daily_state (user_id, day, count_sent, last_sent_at, types_sent, engagement)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id, day) DO UPDATE SET
		count_sent=excluded.count_sent,
		last_sent_at=excluded.last_sent_at,
		types_sent=excluded.types_sent,
		engagement=excluded.engagement`

const upsertWeeklySQL = `
	INSERT INTO weekly_state (user_id, week_start, count_sent, types_sent,
		last_type, last_sent_date, silent_days, open_rate, at_risk_escalation)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id, week_start) DO UPDATE SET
		count_sent=excluded.count_sent,
		types_sent=excluded.types_sent,
		last_type=excluded.last_type,
		last_sent_date=excluded.last_sent_date,
		silent_days=excluded.silent_days,
		open_rate=excluded.open_rate,
		at_risk_escalation=excluded.at_risk_escalation`

// CommitDecision atomically applies one send decision: daily counters,
// weekly counters, and the history entry, in a single transaction.
// Partial commits are not permitted — on any failure the transaction rolls
// back and the caller sees unchanged state.
func (d *DB) CommitDecision(daily domain.DailyState, weekly domain.WeeklyState, entry domain.HistoryEntry) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(upsertDailySQL,
		entry.UserID, daily.Day, daily.CountSent, nullableUnix(daily.LastSentAt),
		marshalTypes(daily.TypesSent), daily.Engagement); err != nil {
		return fmt.Errorf("commit daily state: %w", err)
	}

	if _, err := tx.Exec(upsertWeeklySQL,
		entry.UserID, weekly.WeekStart, weekly.CountSent, marshalTypes(weekly.TypesSent),
		string(weekly.LastType), weekly.LastSentDate, weekly.SilentDays,
		weekly.OpenRate, weekly.AtRiskEscalation); err != nil {
		return fmt.Errorf("commit weekly state: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO history (id, user_id, type, title, body, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, string(entry.Type), entry.Title, entry.Body,
		entry.SentAt.Unix()); err != nil {
		return fmt.Errorf("commit history entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit decision: %w", err)
	}
	return nil
}
