package memstore

import (
	"context"

	"number-inventory/internal/apperr"
	"number-inventory/internal/audit"
	"number-inventory/internal/numbers"
)

// memTx runs with Store.mu held for writing. Every write records its inverse.
type memTx struct {
	s    *Store
	undo []func()
}

func (t *memTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *memTx) GetNumber(_ context.Context, id string) (numbers.Record, error) {
	return t.s.getNumber(id)
}

func (t *memTx) FindNumber(_ context.Context, value string) (numbers.Record, bool, error) {
	return t.s.findNumber(value)
}

func (t *memTx) ListNumbers(_ context.Context, q numbers.ListQuery) ([]numbers.Record, int, error) {
	rows, total := t.s.listNumbers(q)
	return rows, total, nil
}

func (t *memTx) InsertNumber(_ context.Context, r numbers.Record) error {
	if _, ok := t.s.byValue[r.Number]; ok {
		return apperr.DuplicateNumber(r.Number)
	}
	t.s.numbers[r.ID] = r
	t.s.byValue[r.Number] = r.ID
	t.undo = append(t.undo, func() {
		delete(t.s.numbers, r.ID)
		delete(t.s.byValue, r.Number)
	})
	return nil
}

func (t *memTx) UpdateNumber(_ context.Context, r numbers.Record) error {
	prev, ok := t.s.numbers[r.ID]
	if !ok {
		return apperr.NotFound("Number")
	}
	t.s.numbers[r.ID] = r
	t.undo = append(t.undo, func() { t.s.numbers[r.ID] = prev })
	return nil
}

func (t *memTx) DeleteNumber(_ context.Context, id string) error {
	prev, ok := t.s.numbers[id]
	if !ok {
		return apperr.NotFound("Number")
	}
	delete(t.s.numbers, id)
	delete(t.s.byValue, prev.Number)
	t.undo = append(t.undo, func() {
		t.s.numbers[id] = prev
		t.s.byValue[prev.Number] = id
	})
	return nil
}

func (t *memTx) AppendLog(_ context.Context, e audit.Entry) error {
	n := len(t.s.logs)
	t.s.logs = append(t.s.logs, e)
	t.undo = append(t.undo, func() { t.s.logs = t.s.logs[:n] })
	return nil
}
