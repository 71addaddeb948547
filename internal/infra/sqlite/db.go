// Package sqlite provides SQLite-based persistent storage for Pulse.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/pulsehabit/pulse/internal/domain"
)

// DB wraps a SQLite connection with WAL mode and migrations.
// Implements domain.StateStore.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Per-user notification preferences (created at onboarding)
		`CREATE TABLE IF NOT EXISTS preferences (
			user_id             TEXT PRIMARY KEY,
			enabled             BOOLEAN NOT NULL DEFAULT 1,
			morning_start       INTEGER NOT NULL,
			morning_end         INTEGER NOT NULL,
			midday_start        INTEGER NOT NULL,
			midday_end          INTEGER NOT NULL,
			evening_start       INTEGER NOT NULL,
			evening_end         INTEGER NOT NULL,
			dnd_start           INTEGER NOT NULL,
			dnd_end             INTEGER NOT NULL,
			dnd_weekend_start   INTEGER NOT NULL,
			dnd_weekend_end     INTEGER NOT NULL,
			max_per_day         INTEGER NOT NULL,
			max_per_week        INTEGER NOT NULL,
			min_minutes_between INTEGER NOT NULL,
			enabled_types       TEXT NOT NULL,
			use_smart_timing    BOOLEAN NOT NULL DEFAULT 1,
			tone                TEXT NOT NULL
		)`,

		// Daily send counters, one row per user per calendar day
		`CREATE TABLE IF NOT EXISTS daily_state (
			user_id      TEXT NOT NULL,
			day          TEXT NOT NULL,
			count_sent   INTEGER NOT NULL DEFAULT 0,
			last_sent_at INTEGER,
			types_sent   TEXT NOT NULL DEFAULT '[]',
			engagement   REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, day)
		)`,

		// Weekly send counters, one row per user per Monday-keyed week
		`CREATE TABLE IF NOT EXISTS weekly_state (
			user_id            TEXT NOT NULL,
			week_start         TEXT NOT NULL,
			count_sent         INTEGER NOT NULL DEFAULT 0,
			types_sent         TEXT NOT NULL DEFAULT '[]',
			last_type          TEXT NOT NULL DEFAULT '',
			last_sent_date     TEXT NOT NULL DEFAULT '',
			silent_days        INTEGER NOT NULL DEFAULT 0,
			open_rate          REAL NOT NULL DEFAULT 0,
			at_risk_escalation BOOLEAN NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, week_start)
		)`,

		// Notification history: write-once except outcome fields
		`CREATE TABLE IF NOT EXISTS history (
			id        TEXT PRIMARY KEY,
			user_id   TEXT NOT NULL,
			type      TEXT NOT NULL,
			title     TEXT NOT NULL,
			body      TEXT NOT NULL,
			sent_at   INTEGER NOT NULL,
			opened    BOOLEAN NOT NULL DEFAULT 0,
			opened_at INTEGER,
			dismissed BOOLEAN NOT NULL DEFAULT 0,
			converted BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_user_sent ON history(user_id, sent_at)`,

		// Learned delivery timing, written only by the timing learner
		`CREATE TABLE IF NOT EXISTS smart_timing (
			user_id          TEXT PRIMARY KEY,
			morning_hour     INTEGER NOT NULL,
			midday_hour      INTEGER NOT NULL,
			evening_hour     INTEGER NOT NULL,
			best_days        TEXT NOT NULL DEFAULT '[]',
			avg_open_delay   REAL NOT NULL DEFAULT 0,
			responsive_hours TEXT NOT NULL DEFAULT '[]',
			updated_at       INTEGER NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func nullableUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

// marshalTypes encodes a type list as a JSON array for storage.
func marshalTypes(types []domain.NotificationType) string {
	if len(types) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(types)
	return string(b)
}

func unmarshalTypes(s string) []domain.NotificationType {
	if s == "" || s == "[]" {
		return nil
	}
	var types []domain.NotificationType
	_ = json.Unmarshal([]byte(s), &types)
	return types
}

// marshalInts encodes an int list as a JSON array for storage.
func marshalInts(vals []int) string {
	if len(vals) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(vals)
	return string(b)
}

func unmarshalInts(s string) []int {
	if s == "" || s == "[]" {
		return nil
	}
	var vals []int
	_ = json.Unmarshal([]byte(s), &vals)
	return vals
}
