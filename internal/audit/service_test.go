package audit

import (
	"context"
	"testing"
	"time"

	"number-inventory/internal/numbers"
)

type sliceAppender struct{ entries []Entry }

func (a *sliceAppender) AppendLog(_ context.Context, e Entry) error {
	a.entries = append(a.entries, e)
	return nil
}

func TestService_AppendRequiresNumberActorAndAction(t *testing.T) {
	svc := NewService()
	w := &sliceAppender{}

	bad := []Entry{
		{PerformedBy: Actor{ID: "u"}, Action: ActionCreated},
		{Number: "0711", Action: ActionCreated},
		{Number: "0711", PerformedBy: Actor{ID: "u"}, Action: "Renamed"},
	}
	for _, e := range bad {
		if _, err := svc.Append(context.Background(), w, e); err != ErrInvalidEntry {
			t.Fatalf("expected ErrInvalidEntry for %+v, got %v", e, err)
		}
	}
	if len(w.entries) != 0 {
		t.Fatalf("expected nothing appended")
	}
}

func TestService_StampsIDAndTimestamp(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	svc := NewService().WithClock(func() time.Time { return now })
	w := &sliceAppender{}

	e, err := svc.Append(context.Background(), w, Entry{Number: "0711", PerformedBy: Actor{ID: "u"}, Action: ActionCreated})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if e.ID == "" || !e.Timestamp.Equal(now) {
		t.Fatalf("expected stamped entry, got %+v", e)
	}
	if len(w.entries) != 1 || w.entries[0].ID != e.ID {
		t.Fatalf("expected entry appended once")
	}
}

func TestDeletionSnapshot_IsPartial(t *testing.T) {
	r := numbers.Record{ID: "id", Number: "0711", Status: numbers.StatusAvailable, ServiceType: numbers.ServiceLTE, SpecialType: numbers.SpecialGold}
	s := DeletionSnapshot(r)
	if s.ID != "" || s.Number != "" || s.CreatedAt != nil {
		t.Fatalf("expected identity fields dropped, got %+v", s)
	}
	if s.Status != numbers.StatusAvailable || s.SpecialType != numbers.SpecialGold {
		t.Fatalf("unexpected snapshot %+v", s)
	}
}

func TestQuery_DateRangeInclusive(t *testing.T) {
	start, _ := ParseDate("2024-05-01", false)
	end, _ := ParseDate("2024-05-01", true)
	q := Query{StartDate: start, EndDate: end}
	q.Normalize()

	in := Entry{Timestamp: time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)}
	out := Entry{Timestamp: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)}
	if !q.Matches(in) || q.Matches(out) {
		t.Fatalf("unexpected range matching")
	}
}
