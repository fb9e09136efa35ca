package sqlstore

import (
	"context"

	"number-inventory/internal/audit"
	"number-inventory/internal/numbers"
	"number-inventory/internal/store"
)

// sqlTx adapts *sqlx.Tx to store.Tx.
type sqlTx struct {
	q queryer
}

var _ store.Tx = (*sqlTx)(nil)

func (t *sqlTx) GetNumber(ctx context.Context, id string) (numbers.Record, error) {
	return getNumber(ctx, t.q, id)
}

func (t *sqlTx) FindNumber(ctx context.Context, value string) (numbers.Record, bool, error) {
	return findNumber(ctx, t.q, value)
}

func (t *sqlTx) ListNumbers(ctx context.Context, q numbers.ListQuery) ([]numbers.Record, int, error) {
	return listNumbers(ctx, t.q, q)
}

func (t *sqlTx) InsertNumber(ctx context.Context, r numbers.Record) error {
	return insertNumber(ctx, t.q, r)
}

func (t *sqlTx) UpdateNumber(ctx context.Context, r numbers.Record) error {
	return updateNumber(ctx, t.q, r)
}

func (t *sqlTx) DeleteNumber(ctx context.Context, id string) error {
	return deleteNumber(ctx, t.q, id)
}

func (t *sqlTx) AppendLog(ctx context.Context, e audit.Entry) error {
	return appendLog(ctx, t.q, e)
}
