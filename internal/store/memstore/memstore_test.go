package memstore

import (
	"context"
	"testing"

	"number-inventory/internal/numbers"
	"number-inventory/internal/store"
	"number-inventory/internal/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	s := New()
	func() {
		defer func() { _ = recover() }()
		_ = s.WithTx(t.Context(), func(ctx context.Context, tx store.Tx) error {
			_ = tx.InsertNumber(ctx, numbers.Record{ID: "n1", Number: "0711"})
			panic("boom")
		})
	}()
	if _, ok, _ := s.FindNumber(t.Context(), "0711"); ok {
		t.Fatalf("expected insert to be undone after panic")
	}
}

func TestTxListNumbers_Sorted(t *testing.T) {
	s := New()
	ctx := t.Context()
	err := s.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		for i, n := range []string{"0713", "0711", "0714", "0712"} {
			if err := tx.InsertNumber(ctx, numbers.Record{ID: string(rune('a' + i)), Number: n}); err != nil {
				return err
			}
		}
		got, total, err := tx.ListNumbers(ctx, numbers.ListQuery{SortBy: "number", Limit: 3})
		if err != nil {
			return err
		}
		if total != 4 || len(got) != 3 {
			t.Fatalf("total=%d len=%d", total, len(got))
		}
		for i, want := range []string{"0711", "0712", "0713"} {
			if got[i].Number != want {
				t.Fatalf("row %d: got %s want %s", i, got[i].Number, want)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
