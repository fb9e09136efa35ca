// Package storetest is a behavioural suite every store.Store implementation must pass.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"number-inventory/internal/apperr"
	"number-inventory/internal/audit"
	"number-inventory/internal/numbers"
	"number-inventory/internal/rbac"
	"number-inventory/internal/store"
	"number-inventory/internal/users"
)

// Factory returns an empty store with the schema applied.
type Factory func(t *testing.T) store.Store

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func Run(t *testing.T, newStore Factory) {
	t.Run("InsertAndGet", func(t *testing.T) { testInsertAndGet(t, newStore(t)) })
	t.Run("DuplicateNumber", func(t *testing.T) { testDuplicate(t, newStore(t)) })
	t.Run("UpdateAndDelete", func(t *testing.T) { testUpdateDelete(t, newStore(t)) })
	t.Run("RollbackOnError", func(t *testing.T) { testRollback(t, newStore(t)) })
	t.Run("ListNumbers", func(t *testing.T) { testListNumbers(t, newStore(t)) })
	t.Run("Logs", func(t *testing.T) { testLogs(t, newStore(t)) })
	t.Run("Facets", func(t *testing.T) { testFacets(t, newStore(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
}

func record(id, number string, st numbers.Status, svc numbers.ServiceType, at time.Time) numbers.Record {
	return numbers.Record{
		ID:          id,
		Number:      number,
		Status:      st,
		ServiceType: svc,
		SpecialType: numbers.SpecialStandard,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func insert(t *testing.T, s store.Store, recs ...numbers.Record) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		for _, r := range recs {
			if err := tx.InsertNumber(ctx, r); err != nil {
				return err
			}
		}
		return nil
	}))
}

func testInsertAndGet(t *testing.T, s store.Store) {
	ctx := context.Background()
	r := record("n1", "0711234567", numbers.StatusAvailable, numbers.ServiceLTE, base)
	r.Remarks = "fresh"
	insert(t, s, r)

	got, err := s.GetNumber(ctx, "n1")
	require.NoError(t, err)
	require.Equal(t, r.Number, got.Number)
	require.Equal(t, r.Remarks, got.Remarks)
	require.True(t, got.CreatedAt.Equal(base))

	_, ok, err := s.FindNumber(ctx, "0711234567")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = s.FindNumber(ctx, "0000")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = s.GetNumber(ctx, "missing")
	require.True(t, errors.Is(err, apperr.ErrNotFound), "got %v", err)
}

func testDuplicate(t *testing.T, s store.Store) {
	insert(t, s, record("n1", "0711", numbers.StatusAvailable, numbers.ServiceLTE, base))

	err := s.WithTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.InsertNumber(ctx, record("n2", "0711", numbers.StatusAvailable, numbers.ServiceIPTL, base))
	})
	require.Equal(t, apperr.KindDuplicateNumber, apperr.KindOf(err), "got %v", err)
}

func testUpdateDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	r := record("n1", "0711", numbers.StatusAvailable, numbers.ServiceLTE, base)
	insert(t, s, r)

	r.Status = numbers.StatusAllocated
	r.AllocatedTo = "Customer A"
	r.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.UpdateNumber(ctx, r)
	}))
	got, err := s.GetNumber(ctx, "n1")
	require.NoError(t, err)
	require.Equal(t, numbers.StatusAllocated, got.Status)
	require.Equal(t, "Customer A", got.AllocatedTo)
	require.True(t, got.UpdatedAt.Equal(base.Add(time.Hour)))

	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.DeleteNumber(ctx, "n1")
	}))
	_, err = s.GetNumber(ctx, "n1")
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	err = s.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.DeleteNumber(ctx, "n1")
	})
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func testRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	boom := errors.New("boom")
	err := s.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.InsertNumber(ctx, record("n1", "0711", numbers.StatusAvailable, numbers.ServiceLTE, base)); err != nil {
			return err
		}
		if err := tx.AppendLog(ctx, audit.Entry{
			ID: "l1", Number: "0711", Action: audit.ActionCreated,
			PerformedBy: audit.Actor{ID: "u1"}, Timestamp: base,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, ok, err := s.FindNumber(ctx, "0711")
	require.NoError(t, err)
	require.False(t, ok)
	n, err := s.CountLogs(ctx, time.Time{})
	require.NoError(t, err)
	require.Zero(t, n)
}

func testListNumbers(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := record("a", "0711000001", numbers.StatusAvailable, numbers.ServiceLTE, base)
	b := record("b", "0711000002", numbers.StatusAllocated, numbers.ServiceIPTL, base.Add(time.Minute))
	b.AllocatedTo = "Acme Corp"
	c := record("c", "0722000003", numbers.StatusAvailable, numbers.ServiceFTTHCopper, base.Add(2*time.Minute))
	c.SpecialType = numbers.SpecialGold
	insert(t, s, a, b, c)

	all, total, err := s.ListNumbers(ctx, numbers.ListQuery{})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Equal(t, []string{"c", "b", "a"}, ids(all))

	got, total, err := s.ListNumbers(ctx, numbers.ListQuery{Status: numbers.StatusAvailable, SortBy: "number"})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Equal(t, []string{"a", "c"}, ids(got))

	got, _, err = s.ListNumbers(ctx, numbers.ListQuery{ServiceTypes: numbers.SplitServiceTypes("LTE,FTTH/Copper")})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "c"}, ids(got))

	got, _, err = s.ListNumbers(ctx, numbers.ListQuery{SpecialTypes: []numbers.SpecialType{numbers.SpecialGold}})
	require.NoError(t, err)
	require.Equal(t, []string{"c"}, ids(got))

	got, _, err = s.ListNumbers(ctx, numbers.ListQuery{Search: "ACME"})
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, ids(got))

	got, _, err = s.ListNumbers(ctx, numbers.ListQuery{Search: "0722"})
	require.NoError(t, err)
	require.Equal(t, []string{"c"}, ids(got))

	got, total, err = s.ListNumbers(ctx, numbers.ListQuery{Page: 2, Limit: 2, SortBy: "number"})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Equal(t, []string{"c"}, ids(got))

	got, _, err = s.ListNumbers(ctx, numbers.ListQuery{Page: 5, Limit: 2})
	require.NoError(t, err)
	require.Empty(t, got)
}

func testLogs(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.InsertUser(ctx, users.User{
		ID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: "x",
		Role: rbac.RoleAdmin, IsActive: true, CreatedAt: base, UpdatedAt: base,
	}))

	prev := &audit.Snapshot{Status: numbers.StatusAvailable, ServiceType: numbers.ServiceLTE}
	entries := []audit.Entry{
		{ID: "l1", Number: "0711", Action: audit.ActionCreated, PerformedBy: audit.Actor{ID: "u1"}, Timestamp: base, Notes: "Number created"},
		{ID: "l2", Number: "0711", Action: audit.ActionAllocated, PerformedBy: audit.Actor{ID: "u1"}, Timestamp: base.Add(24 * time.Hour), PreviousState: prev},
		{ID: "l3", Number: "0722", Action: audit.ActionCreated, PerformedBy: audit.Actor{ID: "ghost"}, Timestamp: base.Add(48 * time.Hour)},
	}
	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		for _, e := range entries {
			if err := tx.AppendLog(ctx, e); err != nil {
				return err
			}
		}
		return nil
	}))

	got, total, err := s.QueryLogs(ctx, audit.Query{})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Equal(t, "l3", got[0].ID)
	require.Equal(t, "", got[0].PerformedBy.Username)
	require.Equal(t, "alice", got[2].PerformedBy.Username)
	require.Equal(t, "Number created", got[2].Notes)

	got, total, err = s.QueryLogs(ctx, audit.Query{Number: "0711", Action: audit.ActionAllocated})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.NotNil(t, got[0].PreviousState)
	require.Equal(t, numbers.StatusAvailable, got[0].PreviousState.Status)
	require.Nil(t, got[0].NewState)
	require.True(t, got[0].Timestamp.Equal(base.Add(24*time.Hour)))

	// Inclusive on both ends.
	_, total, err = s.QueryLogs(ctx, audit.Query{StartDate: base, EndDate: base.Add(24 * time.Hour)})
	require.NoError(t, err)
	require.Equal(t, 2, total)

	_, total, err = s.QueryLogs(ctx, audit.Query{PerformedBy: "u1"})
	require.NoError(t, err)
	require.Equal(t, 2, total)

	n, err := s.CountLogs(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, 2, n)

	byAction, err := s.CountLogsByAction(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, byAction, len(audit.Actions))
	require.Equal(t, 2, byAction[audit.ActionCreated])
	require.Equal(t, 1, byAction[audit.ActionAllocated])
	require.Equal(t, 0, byAction[audit.ActionDeleted])

	act, err := s.LogActivity(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, act, 2)
	require.Equal(t, audit.ActionAllocated, act[0].Action)
	require.Equal(t, "alice", act[0].Username)
	require.True(t, act[0].Timestamp.Before(act[1].Timestamp))
}

func testFacets(t *testing.T, s store.Store) {
	insert(t, s,
		record("a", "1", numbers.StatusAvailable, numbers.ServiceLTE, base),
		record("b", "2", numbers.StatusAvailable, numbers.ServiceLTE, base),
		record("c", "3", numbers.StatusAllocated, numbers.ServiceIPTL, base),
	)
	facets, err := s.NumberFacets(context.Background())
	require.NoError(t, err)

	sum := 0
	for _, f := range facets {
		sum += f.Count
		if f.ServiceType == numbers.ServiceLTE {
			require.Equal(t, numbers.StatusAvailable, f.Status)
			require.Equal(t, 2, f.Count)
		}
	}
	require.Equal(t, 3, sum)
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	admin := users.User{
		ID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: "h",
		Role: rbac.RoleAdmin, IsActive: true, CreatedAt: base, UpdatedAt: base,
	}
	planner := users.User{
		ID: "u2", Username: "bob", Email: "bob@example.com", PasswordHash: "h",
		Role: rbac.RolePlanner, IsActive: true, CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour),
	}
	require.NoError(t, s.InsertUser(ctx, admin))
	require.NoError(t, s.InsertUser(ctx, planner))

	dup := planner
	dup.ID = "u3"
	require.Equal(t, apperr.KindConflict, apperr.KindOf(s.InsertUser(ctx, dup)))

	got, err := s.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "u1", got.ID)
	require.Nil(t, got.LastLogin)

	_, err = s.FindUserByUsername(ctx, "nobody")
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	taken, err := s.UserTaken(ctx, "", "ALICE@example.com", "")
	require.NoError(t, err)
	require.True(t, taken)
	taken, err = s.UserTaken(ctx, "alice", "", "u1")
	require.NoError(t, err)
	require.False(t, taken)

	login := base.Add(2 * time.Hour)
	planner.IsActive = false
	planner.LastLogin = &login
	require.NoError(t, s.UpdateUser(ctx, planner))
	got, err = s.GetUser(ctx, "u2")
	require.NoError(t, err)
	require.False(t, got.IsActive)
	require.NotNil(t, got.LastLogin)
	require.True(t, got.LastLogin.Equal(login))

	require.Equal(t, apperr.KindNotFound, apperr.KindOf(s.UpdateUser(ctx, users.User{ID: "ghost"})))

	active := true
	list, total, err := s.ListUsers(ctx, users.ListQuery{IsActive: &active})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "alice", list[0].Username)

	list, total, err = s.ListUsers(ctx, users.ListQuery{})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Equal(t, "bob", list[0].Username)

	list, _, err = s.ListUsers(ctx, users.ListQuery{Search: "BOB@"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	stats, err := s.UserStats(ctx, base.Add(30*time.Minute))
	require.NoError(t, err)
	require.Equal(t, users.Stats{
		TotalUsers: 2, ActiveUsers: 1, InactiveUsers: 1,
		AdminUsers: 1, PlannerUsers: 1, RecentRegistrations: 1,
	}, stats)
}

func ids(rs []numbers.Record) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}
