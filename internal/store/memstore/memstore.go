// Package memstore is an in-process Store used as the test double for sqlstore.
// A single lock serializes writers; WithTx undoes partial writes on error.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"number-inventory/internal/apperr"
	"number-inventory/internal/audit"
	"number-inventory/internal/numbers"
	"number-inventory/internal/rbac"
	"number-inventory/internal/store"
	"number-inventory/internal/users"
)

type Store struct {
	mu sync.RWMutex

	numbers map[string]numbers.Record
	byValue map[string]string // number value -> id
	logs    []audit.Entry
	users   map[string]users.User
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		numbers: map[string]numbers.Record{},
		byValue: map[string]string{},
		users:   map[string]users.User{},
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

// WithTx holds the write lock for the whole of fn.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{s: s}
	defer func() {
		if p := recover(); p != nil {
			tx.rollback()
			panic(p)
		}
		if err != nil {
			tx.rollback()
		}
	}()
	return fn(ctx, tx)
}

/* ===================== NUMBERS ===================== */

func (s *Store) GetNumber(_ context.Context, id string) (numbers.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getNumber(id)
}

func (s *Store) FindNumber(_ context.Context, value string) (numbers.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findNumber(value)
}

func (s *Store) ListNumbers(_ context.Context, q numbers.ListQuery) ([]numbers.Record, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, total := s.listNumbers(q)
	return rows, total, nil
}

// listNumbers filters, sorts and pages. Ties on the sort key fall back to id.
func (s *Store) listNumbers(q numbers.ListQuery) ([]numbers.Record, int) {
	q.Normalize()
	matched := make([]numbers.Record, 0)
	for _, r := range s.numbers {
		if q.Matches(r) {
			matched = append(matched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if q.Less(matched[i], matched[j]) {
			return true
		}
		if q.Less(matched[j], matched[i]) {
			return false
		}
		return matched[i].ID < matched[j].ID
	})
	return page(matched, q.Offset(), q.Limit), len(matched)
}

func (s *Store) getNumber(id string) (numbers.Record, error) {
	r, ok := s.numbers[id]
	if !ok {
		return numbers.Record{}, apperr.NotFound("Number")
	}
	return r, nil
}

func (s *Store) findNumber(value string) (numbers.Record, bool, error) {
	id, ok := s.byValue[value]
	if !ok {
		return numbers.Record{}, false, nil
	}
	return s.numbers[id], true, nil
}

/* ===================== LOGS ===================== */

func (s *Store) QueryLogs(_ context.Context, q audit.Query) ([]audit.Entry, int, error) {
	q.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]audit.Entry, 0)
	for _, e := range s.logs {
		if q.Matches(e) {
			matched = append(matched, s.withUsername(e))
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return q.Less(matched[i], matched[j]) })
	return page(matched, q.Offset(), q.Limit), len(matched), nil
}

func (s *Store) CountLogs(_ context.Context, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.logs {
		if !e.Timestamp.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountLogsByAction(_ context.Context, since time.Time) (map[audit.Action]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[audit.Action]int, len(audit.Actions))
	for _, a := range audit.Actions {
		out[a] = 0
	}
	for _, e := range s.logs {
		if !e.Timestamp.Before(since) {
			out[e.Action]++
		}
	}
	return out, nil
}

func (s *Store) LogActivity(_ context.Context, since time.Time) ([]store.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Activity, 0)
	for _, e := range s.logs {
		if e.Timestamp.Before(since) {
			continue
		}
		e = s.withUsername(e)
		out = append(out, store.Activity{
			Action:      e.Action,
			PerformedBy: e.PerformedBy.ID,
			Username:    e.PerformedBy.Username,
			Timestamp:   e.Timestamp,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *Store) withUsername(e audit.Entry) audit.Entry {
	if u, ok := s.users[e.PerformedBy.ID]; ok {
		e.PerformedBy.Username = u.Username
	}
	return e
}

/* ===================== STATS ===================== */

func (s *Store) NumberFacets(context.Context) ([]store.Facet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct {
		svc  numbers.ServiceType
		spec numbers.SpecialType
		st   numbers.Status
	}
	counts := map[key]int{}
	for _, r := range s.numbers {
		counts[key{r.ServiceType, r.SpecialType, r.Status}]++
	}
	out := make([]store.Facet, 0, len(counts))
	for k, n := range counts {
		out = append(out, store.Facet{ServiceType: k.svc, SpecialType: k.spec, Status: k.st, Count: n})
	}
	return out, nil
}

/* ===================== USERS ===================== */

func (s *Store) GetUser(_ context.Context, id string) (users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return users.User{}, apperr.NotFound("User")
	}
	return u, nil
}

func (s *Store) FindUserByUsername(_ context.Context, username string) (users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return users.User{}, apperr.NotFound("User")
}

func (s *Store) UserTaken(_ context.Context, username, email, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userTaken(username, email, excludeID), nil
}

func (s *Store) userTaken(username, email, excludeID string) bool {
	for _, u := range s.users {
		if u.ID == excludeID {
			continue
		}
		if username != "" && u.Username == username {
			return true
		}
		if email != "" && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (s *Store) InsertUser(_ context.Context, u users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok || s.userTaken(u.Username, u.Email, "") {
		return apperr.Conflict("User with this username or email already exists")
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) UpdateUser(_ context.Context, u users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return apperr.NotFound("User")
	}
	if s.userTaken(u.Username, u.Email, u.ID) {
		return apperr.Conflict("Username or email already exists")
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) ListUsers(_ context.Context, q users.ListQuery) ([]users.User, int, error) {
	q.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]users.User, 0)
	for _, u := range s.users {
		if q.Matches(u) {
			matched = append(matched, u)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return page(matched, q.Offset(), q.Limit), len(matched), nil
}

func (s *Store) UserStats(_ context.Context, since time.Time) (users.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out users.Stats
	for _, u := range s.users {
		out.TotalUsers++
		if u.IsActive {
			out.ActiveUsers++
		} else {
			out.InactiveUsers++
		}
		switch u.Role {
		case rbac.RoleAdmin:
			out.AdminUsers++
		case rbac.RolePlanner:
			out.PlannerUsers++
		}
		if !u.CreatedAt.Before(since) {
			out.RecentRegistrations++
		}
	}
	return out, nil
}

func page[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}
