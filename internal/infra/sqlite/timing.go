package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pulsehabit/pulse/internal/domain"
)

// ─── Smart Timing Repository ────────────────────────────────────────────────
// Written only by the timing learner; everything else reads.

// GetSmartTiming loads a user's learned timing. Returns nil (no error) when
// the learner has not produced anything yet.
func (d *DB) GetSmartTiming(userID string) (*domain.SmartTiming, error) {
	row := d.db.QueryRow(
		`SELECT morning_hour, midday_hour, evening_hour, best_days,
		        avg_open_delay, responsive_hours, updated_at
		 FROM smart_timing WHERE user_id = ?`, userID,
	)

	var t domain.SmartTiming
	var bestDays, respHours string
	var updatedAt int64
	err := row.Scan(&t.MorningHour, &t.MiddayHour, &t.EveningHour,
		&bestDays, &t.AvgOpenDelayMin, &respHours, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get smart timing: %w", err)
	}

	for _, d := range unmarshalInts(bestDays) {
		t.BestDays = append(t.BestDays, time.Weekday(d))
	}
	t.ResponsiveHours = unmarshalInts(respHours)
	t.UpdatedAt = time.Unix(updatedAt, 0)
	return &t, nil
}

// PutSmartTiming upserts a user's learned timing.
func (d *DB) PutSmartTiming(userID string, t domain.SmartTiming) error {
	days := make([]int, len(t.BestDays))
	for i, wd := range t.BestDays {
		days[i] = int(wd)
	}

	_, err := d.db.Exec(
		`INSERT INTO smart_timing (user_id, morning_hour, midday_hour, evening_hour,
			best_days, avg_open_delay, responsive_hours, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			morning_hour=excluded.morning_hour,
			midday_hour=excluded.midday_hour,
			evening_hour=excluded.evening_hour,
			best_days=excluded.best_days,
			avg_open_delay=excluded.avg_open_delay,
			responsive_hours=excluded.responsive_hours,
			updated_at=excluded.updated_at`,
		userID, t.MorningHour, t.MiddayHour, t.EveningHour,
		marshalInts(days), t.AvgOpenDelayMin, marshalInts(t.ResponsiveHours),
		t.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("put smart timing: %w", err)
	}
	return nil
}
