package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pulsehabit/pulse/internal/domain"
)

// ─── History Repository ─────────────────────────────────────────────────────

// GetHistoryEntry retrieves a single history entry by id.
func (d *DB) GetHistoryEntry(id string) (*domain.HistoryEntry, error) {
	row := d.db.QueryRow(
		`SELECT id, user_id, type, title, body, sent_at, opened, opened_at, dismissed, converted
		 FROM history WHERE id = ?`, id,
	)
	entry, err := scanHistory(row)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrHistoryNotFound
	}
	return entry, nil
}

// ListHistory returns a user's history, newest first. limit <= 0 means all.
func (d *DB) ListHistory(userID string, limit int) ([]domain.HistoryEntry, error) {
	q := `SELECT id, user_id, type, title, body, sent_at, opened, opened_at, dismissed, converted
	      FROM history WHERE user_id = ? ORDER BY sent_at DESC`
	args := []any{userID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// RecordOutcome sets one outcome flag on a history entry, exactly once.
// Returns domain.ErrOutcomeRecorded if the flag was already set and
// domain.ErrHistoryNotFound if the entry does not exist.
func (d *DB) RecordOutcome(id string, outcome domain.Outcome, at int64) error {
	var q string
	args := []any{id}
	switch outcome {
	case domain.OutcomeOpened:
		q = `UPDATE history SET opened = 1, opened_at = ? WHERE id = ? AND opened = 0`
		args = []any{at, id}
	case domain.OutcomeDismissed:
		q = `UPDATE history SET dismissed = 1 WHERE id = ? AND dismissed = 0`
	case domain.OutcomeConverted:
		q = `UPDATE history SET converted = 1 WHERE id = ? AND converted = 0`
	default:
		return fmt.Errorf("record outcome: unknown outcome %q", outcome)
	}

	res, err := d.db.Exec(q, args...)
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		if _, err := d.GetHistoryEntry(id); err != nil {
			return err
		}
		return domain.ErrOutcomeRecorded
	}
	return nil
}

func scanHistory(s scanner) (*domain.HistoryEntry, error) {
	var e domain.HistoryEntry
	var typ string
	var sentAt int64
	var openedAt sql.NullInt64

	err := s.Scan(&e.ID, &e.UserID, &typ, &e.Title, &e.Body, &sentAt,
		&e.Opened, &openedAt, &e.Dismissed, &e.ConvertedTo)
	if err == sql.ErrNoRows {
		return nil, nil // Not found, no error
	}
	if err != nil {
		return nil, err
	}

	e.Type = domain.NotificationType(typ)
	e.SentAt = time.Unix(sentAt, 0)
	if openedAt.Valid {
		e.OpenedAt = time.Unix(openedAt.Int64, 0)
	}
	return &e, nil
}
