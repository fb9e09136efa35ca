package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"number-inventory/internal/audit"
)

const logSelect = `SELECT l.id, l.number, l.action, l.performed_by, COALESCE(u.username, '') AS username,
	l.logged_at, l.previous_state, l.new_state, l.notes
	FROM number_logs l LEFT JOIN users u ON u.id = l.performed_by`

// logRow mirrors number_logs. Snapshots are stored as JSON text.
type logRow struct {
	ID            string         `db:"id"`
	Number        string         `db:"number"`
	Action        audit.Action   `db:"action"`
	PerformedBy   string         `db:"performed_by"`
	Username      string         `db:"username"`
	LoggedAt      time.Time      `db:"logged_at"`
	PreviousState sql.NullString `db:"previous_state"`
	NewState      sql.NullString `db:"new_state"`
	Notes         string         `db:"notes"`
}

func (r logRow) entry() (audit.Entry, error) {
	prev, err := decodeSnapshot(r.PreviousState)
	if err != nil {
		return audit.Entry{}, fmt.Errorf("log %s previous_state: %w", r.ID, err)
	}
	next, err := decodeSnapshot(r.NewState)
	if err != nil {
		return audit.Entry{}, fmt.Errorf("log %s new_state: %w", r.ID, err)
	}
	return audit.Entry{
		ID:            r.ID,
		Number:        r.Number,
		Action:        r.Action,
		PerformedBy:   audit.Actor{ID: r.PerformedBy, Username: r.Username},
		Timestamp:     r.LoggedAt.UTC(),
		PreviousState: prev,
		NewState:      next,
		Notes:         r.Notes,
	}, nil
}

func appendLog(ctx context.Context, q queryer, e audit.Entry) error {
	prev, err := encodeSnapshot(e.PreviousState)
	if err != nil {
		return err
	}
	next, err := encodeSnapshot(e.NewState)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, q.Rebind(`INSERT INTO number_logs
		(id, number, action, performed_by, logged_at, previous_state, new_state, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.Number, string(e.Action), e.PerformedBy.ID, e.Timestamp.UTC(), prev, next, e.Notes)
	return mapErr(err, "Log")
}

func encodeSnapshot(s *audit.Snapshot) (sql.NullString, error) {
	if s == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode snapshot: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeSnapshot(ns sql.NullString) (*audit.Snapshot, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var s audit.Snapshot
	if err := json.Unmarshal([]byte(ns.String), &s); err != nil {
		return nil, err
	}
	return &s, nil
}
