package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"number-inventory/internal/apperr"
	"number-inventory/internal/numbers"
)

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.ExtContext
}

const numberColumns = `id, number, status, service_type, special_type, allocated_to, remarks, created_at, updated_at`

func getNumber(ctx context.Context, q queryer, id string) (numbers.Record, error) {
	var r numbers.Record
	err := sqlx.GetContext(ctx, q, &r, q.Rebind("SELECT "+numberColumns+" FROM numbers WHERE id = ?"), id)
	if err != nil {
		return numbers.Record{}, mapErr(err, "Number")
	}
	return utcRecord(r), nil
}

func findNumber(ctx context.Context, q queryer, value string) (numbers.Record, bool, error) {
	var r numbers.Record
	err := sqlx.GetContext(ctx, q, &r, q.Rebind("SELECT "+numberColumns+" FROM numbers WHERE number = ?"), value)
	if errors.Is(err, sql.ErrNoRows) {
		return numbers.Record{}, false, nil
	}
	if err != nil {
		return numbers.Record{}, false, mapErr(err, "Number")
	}
	return utcRecord(r), true, nil
}

func listNumbers(ctx context.Context, q queryer, lq numbers.ListQuery) ([]numbers.Record, int, error) {
	lq.Normalize()

	w := where{}
	if lq.Status != "" {
		w.add("status = ?", string(lq.Status))
	}
	if len(lq.ServiceTypes) > 0 {
		vals := make([]string, 0, len(lq.ServiceTypes))
		for _, v := range lq.ServiceTypes {
			vals = append(vals, string(v))
		}
		w.add("service_type IN (?)", vals)
	}
	if len(lq.SpecialTypes) > 0 {
		vals := make([]string, 0, len(lq.SpecialTypes))
		for _, v := range lq.SpecialTypes {
			vals = append(vals, string(v))
		}
		w.add("special_type IN (?)", vals)
	}
	if lq.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(lq.Search)) + "%"
		w.add(`(LOWER(number) LIKE ? ESCAPE '\' OR LOWER(allocated_to) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	countQ, countArgs, err := sqlx.In("SELECT COUNT(*) FROM numbers"+w.sql(), w.args...)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := sqlx.GetContext(ctx, q, &total, q.Rebind(countQ), countArgs...); err != nil {
		return nil, 0, mapErr(err, "Number")
	}

	order := fmt.Sprintf(" ORDER BY %s %s, id %s", numbers.SortFields[lq.SortBy], dir(lq.SortDesc), dir(lq.SortDesc))
	listQ, listArgs, err := sqlx.In("SELECT "+numberColumns+" FROM numbers"+w.sql()+order+" LIMIT ? OFFSET ?",
		append(w.args, lq.Limit, lq.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	out := make([]numbers.Record, 0)
	if err := sqlx.SelectContext(ctx, q, &out, q.Rebind(listQ), listArgs...); err != nil {
		return nil, 0, mapErr(err, "Number")
	}
	for i := range out {
		out[i] = utcRecord(out[i])
	}
	return out, total, nil
}

func insertNumber(ctx context.Context, q queryer, r numbers.Record) error {
	_, err := q.ExecContext(ctx, q.Rebind(`INSERT INTO numbers (`+numberColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		r.ID, r.Number, string(r.Status), string(r.ServiceType), string(r.SpecialType),
		r.AllocatedTo, r.Remarks, r.CreatedAt.UTC(), r.UpdatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.DuplicateNumber(r.Number)
		}
		return mapErr(err, "Number")
	}
	return nil
}

// updateNumber writes the mutable columns. number, service_type and special_type are never updated.
func updateNumber(ctx context.Context, q queryer, r numbers.Record) error {
	res, err := q.ExecContext(ctx, q.Rebind(`UPDATE numbers
		SET status = ?, allocated_to = ?, remarks = ?, updated_at = ?
		WHERE id = ?`),
		string(r.Status), r.AllocatedTo, r.Remarks, r.UpdatedAt.UTC(), r.ID)
	if err != nil {
		return mapErr(err, "Number")
	}
	return requireAffected(res, "Number")
}

func deleteNumber(ctx context.Context, q queryer, id string) error {
	res, err := q.ExecContext(ctx, q.Rebind("DELETE FROM numbers WHERE id = ?"), id)
	if err != nil {
		return mapErr(err, "Number")
	}
	return requireAffected(res, "Number")
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(what)
	}
	return nil
}

func utcRecord(r numbers.Record) numbers.Record {
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return r
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
