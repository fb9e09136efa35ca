// Package sqlstore implements store.Store over database/sql using sqlx.
// Queries are written with ? placeholders and rebound for the driver in use
// (pgx in production, modernc sqlite for embedded mode and tests).
package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"number-inventory/internal/audit"
	"number-inventory/internal/numbers"
	"number-inventory/internal/store"
	"number-inventory/pkg/utils"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

type Store struct {
	db *sqlx.DB
}

var _ store.Store = (*Store)(nil)

// New wraps an open connection. The schema must already be applied.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for health checks and migrations.
func (s *Store) DB() *sqlx.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return mapErr(err, "")
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// WithTx runs fn inside a database transaction. fn's error is returned as is;
// begin and commit failures are classified like any other driver error.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return mapErr(utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		return fn(ctx, &sqlTx{q: tx})
	}), "")
}

/* ===================== NUMBERS ===================== */

func (s *Store) GetNumber(ctx context.Context, id string) (numbers.Record, error) {
	return getNumber(ctx, s.db, id)
}

func (s *Store) FindNumber(ctx context.Context, value string) (numbers.Record, bool, error) {
	return findNumber(ctx, s.db, value)
}

func (s *Store) ListNumbers(ctx context.Context, q numbers.ListQuery) ([]numbers.Record, int, error) {
	return listNumbers(ctx, s.db, q)
}

/* ===================== LOGS ===================== */

func (s *Store) QueryLogs(ctx context.Context, q audit.Query) ([]audit.Entry, int, error) {
	q.Normalize()
	w := where{}
	if q.Number != "" {
		w.add("l.number = ?", q.Number)
	}
	if q.Action != "" {
		w.add("l.action = ?", string(q.Action))
	}
	if q.PerformedBy != "" {
		w.add("l.performed_by = ?", q.PerformedBy)
	}
	if !q.StartDate.IsZero() {
		w.add("l.logged_at >= ?", q.StartDate.UTC())
	}
	if !q.EndDate.IsZero() {
		w.add("l.logged_at <= ?", q.EndDate.UTC())
	}

	var total int
	countQ := s.db.Rebind("SELECT COUNT(*) FROM number_logs l" + w.sql())
	if err := s.db.GetContext(ctx, &total, countQ, w.args...); err != nil {
		return nil, 0, mapErr(err, "Log")
	}

	order := fmt.Sprintf(" ORDER BY l.%s %s, l.id %s", audit.SortFields[q.SortBy], dir(q.SortDesc), dir(q.SortDesc))
	listQ := s.db.Rebind(logSelect + w.sql() + order + " LIMIT ? OFFSET ?")
	var rows []logRow
	if err := s.db.SelectContext(ctx, &rows, listQ, append(w.args, q.Limit, q.Offset())...); err != nil {
		return nil, 0, mapErr(err, "Log")
	}

	out := make([]audit.Entry, 0, len(rows))
	for _, r := range rows {
		e, err := r.entry()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, nil
}

func (s *Store) CountLogs(ctx context.Context, since time.Time) (int, error) {
	w := sinceFilter(since)
	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind("SELECT COUNT(*) FROM number_logs l"+w.sql()), w.args...); err != nil {
		return 0, mapErr(err, "")
	}
	return n, nil
}

func (s *Store) CountLogsByAction(ctx context.Context, since time.Time) (map[audit.Action]int, error) {
	w := sinceFilter(since)
	var rows []struct {
		Action audit.Action `db:"action"`
		N      int          `db:"n"`
	}
	q := s.db.Rebind("SELECT l.action, COUNT(*) AS n FROM number_logs l" + w.sql() + " GROUP BY l.action")
	if err := s.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, mapErr(err, "")
	}

	out := make(map[audit.Action]int, len(audit.Actions))
	for _, a := range audit.Actions {
		out[a] = 0
	}
	for _, r := range rows {
		out[r.Action] = r.N
	}
	return out, nil
}

func (s *Store) LogActivity(ctx context.Context, since time.Time) ([]store.Activity, error) {
	w := sinceFilter(since)
	q := s.db.Rebind(`SELECT l.action, l.performed_by, COALESCE(u.username, '') AS username, l.logged_at
		FROM number_logs l LEFT JOIN users u ON u.id = l.performed_by` + w.sql() + " ORDER BY l.logged_at ASC, l.id ASC")
	out := make([]store.Activity, 0)
	if err := s.db.SelectContext(ctx, &out, q, w.args...); err != nil {
		return nil, mapErr(err, "")
	}
	for i := range out {
		out[i].Timestamp = out[i].Timestamp.UTC()
	}
	return out, nil
}

/* ===================== STATS ===================== */

func (s *Store) NumberFacets(ctx context.Context) ([]store.Facet, error) {
	out := make([]store.Facet, 0)
	q := `SELECT service_type, special_type, status, COUNT(*) AS n
		FROM numbers GROUP BY service_type, special_type, status`
	if err := s.db.SelectContext(ctx, &out, q); err != nil {
		return nil, mapErr(err, "")
	}
	return out, nil
}

/* ===================== helpers ===================== */

// where accumulates AND-ed conditions and their arguments.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	out := " WHERE " + w.conds[0]
	for _, c := range w.conds[1:] {
		out += " AND " + c
	}
	return out
}

func sinceFilter(since time.Time) where {
	w := where{}
	if !since.IsZero() {
		w.add("l.logged_at >= ?", since.UTC())
	}
	return w
}

func dir(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}
