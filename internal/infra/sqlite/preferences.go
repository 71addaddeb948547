package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pulsehabit/pulse/internal/domain"
)

// ─── Preferences Repository ─────────────────────────────────────────────────

// GetPreferences loads a user's notification preferences.
// Returns domain.ErrUserNotFound if the user was never onboarded.
func (d *DB) GetPreferences(userID string) (*domain.Preferences, error) {
	row := d.db.QueryRow(
		`SELECT enabled,
		        morning_start, morning_end, midday_start, midday_end,
		        evening_start, evening_end,
		        dnd_start, dnd_end, dnd_weekend_start, dnd_weekend_end,
		        max_per_day, max_per_week, min_minutes_between,
		        enabled_types, use_smart_timing, tone
		 FROM preferences WHERE user_id = ?`, userID,
	)

	var p domain.Preferences
	var typesJSON, tone string
	err := row.Scan(&p.Enabled,
		&p.Morning.Start, &p.Morning.End, &p.Midday.Start, &p.Midday.End,
		&p.Evening.Start, &p.Evening.End,
		&p.DND.Start, &p.DND.End, &p.DNDWeekend.Start, &p.DNDWeekend.End,
		&p.MaxPerDay, &p.MaxPerWeek, &p.MinMinutesBetween,
		&typesJSON, &p.UseSmartTiming, &tone)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	p.Tone = domain.Tone(tone)
	p.EnabledTypes = make(map[domain.NotificationType]bool)
	if err := json.Unmarshal([]byte(typesJSON), &p.EnabledTypes); err != nil {
		return nil, fmt.Errorf("decode enabled types: %w", err)
	}
	return &p, nil
}

// PutPreferences inserts or updates a user's preferences.
func (d *DB) PutPreferences(userID string, p domain.Preferences) error {
	typesJSON, err := json.Marshal(p.EnabledTypes)
	if err != nil {
		return fmt.Errorf("encode enabled types: %w", err)
	}

	_, err = d.db.Exec(
		`INSERT INTO preferences (user_id, enabled,
			morning_start, morning_end, midday_start, midday_end,
			evening_start, evening_end,
			dnd_start, dnd_end, dnd_weekend_start, dnd_weekend_end,
			max_per_day, max_per_week, min_minutes_between,
			enabled_types, use_smart_timing, tone)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			enabled=excluded.enabled,
			morning_start=excluded.morning_start, morning_end=excluded.morning_end,
			midday_start=excluded.midday_start, midday_end=excluded.midday_end,
			evening_start=excluded.evening_start, evening_end=excluded.evening_end,
			dnd_start=excluded.dnd_start, dnd_end=excluded.dnd_end,
			dnd_weekend_start=excluded.dnd_weekend_start, dnd_weekend_end=excluded.dnd_weekend_end,
			max_per_day=excluded.max_per_day, max_per_week=excluded.max_per_week,
			min_minutes_between=excluded.min_minutes_between,
			enabled_types=excluded.enabled_types,
			use_smart_timing=excluded.use_smart_timing,
			tone=excluded.tone`,
		userID, p.Enabled,
		p.Morning.Start, p.Morning.End, p.Midday.Start, p.Midday.End,
		p.Evening.Start, p.Evening.End,
		p.DND.Start, p.DND.End, p.DNDWeekend.Start, p.DNDWeekend.End,
		p.MaxPerDay, p.MaxPerWeek, p.MinMinutesBetween,
		string(typesJSON), p.UseSmartTiming, string(p.Tone),
	)
	if err != nil {
		return fmt.Errorf("put preferences: %w", err)
	}
	return nil
}

// ListUsers returns every onboarded user id. Used by the evaluation runner
// and the nightly timing learner.
func (d *DB) ListUsers() ([]string, error) {
	rows, err := d.db.Query(`SELECT user_id FROM preferences ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}
	return users, rows.Err()
}
