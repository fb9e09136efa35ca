package stats

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"number-inventory/internal/audit"
	"number-inventory/internal/numbers"
	"number-inventory/internal/rbac"
	"number-inventory/internal/store"
	"number-inventory/internal/store/memstore"
	"number-inventory/internal/users"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// mapCache is an in-process Cache that counts lookups.
type mapCache struct {
	data map[string][]byte
	gen  int64
	hits int
}

func (c *mapCache) Generation(context.Context) (int64, error) { return c.gen, nil }

func (c *mapCache) Bump(context.Context) error {
	c.gen++
	return nil
}

func (c *mapCache) Get(_ context.Context, key string, dst any) (bool, error) {
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dst)
}

func (c *mapCache) Set(_ context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	c.data[key] = b
	return err
}

func seed(t *testing.T, s store.Store, recs []numbers.Record, logs []audit.Entry) {
	t.Helper()
	require.NoError(t, s.WithTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		for _, r := range recs {
			if err := tx.InsertNumber(ctx, r); err != nil {
				return err
			}
		}
		for _, e := range logs {
			if err := tx.AppendLog(ctx, e); err != nil {
				return err
			}
		}
		return nil
	}))
}

func rec(id string, st numbers.Status, svc numbers.ServiceType, sp numbers.SpecialType) numbers.Record {
	return numbers.Record{ID: id, Number: "07" + id, Status: st, ServiceType: svc, SpecialType: sp, CreatedAt: now, UpdatedAt: now}
}

func TestSummary_SumsToTotal(t *testing.T) {
	s := memstore.New()
	seed(t, s, []numbers.Record{
		rec("1", numbers.StatusAvailable, numbers.ServiceLTE, numbers.SpecialStandard),
		rec("2", numbers.StatusAllocated, numbers.ServiceLTE, numbers.SpecialGold),
		rec("3", numbers.StatusAllocated, numbers.ServiceIPTL, numbers.SpecialGold),
		rec("4", numbers.StatusHeld, numbers.ServiceFTTHCopper, numbers.SpecialElite),
	}, nil)
	svc := NewService(s, nil)

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, Summary{TotalNumbers: 4, AvailableNumbers: 1, AllocatedNumbers: 2, HeldNumbers: 1}, sum)
	require.Equal(t, sum.TotalNumbers,
		sum.AvailableNumbers+sum.AllocatedNumbers+sum.ReservedNumbers+sum.HeldNumbers+sum.QuarantinedNumbers)

	bySvc, err := svc.ByServiceType(context.Background())
	require.NoError(t, err)
	require.Len(t, bySvc, 3)
	require.Equal(t, Breakdown{Allocated: 1, Available: 1, Total: 2}, bySvc[numbers.ServiceLTE])
	require.Equal(t, Breakdown{Total: 1}, bySvc[numbers.ServiceFTTHCopper])

	bySpecial, err := svc.BySpecialType(context.Background())
	require.NoError(t, err)
	require.Len(t, bySpecial, 5)
	require.Equal(t, Breakdown{Allocated: 2, Total: 2}, bySpecial[numbers.SpecialGold])
	require.Equal(t, Breakdown{}, bySpecial[numbers.SpecialPlatinum])
}

func TestSummary_EmptyStore(t *testing.T) {
	sum, err := NewService(memstore.New(), nil).Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, Summary{}, sum)
}

func TestCache_InvalidatedOnWrite(t *testing.T) {
	s := memstore.New()
	cache := &mapCache{data: map[string][]byte{}}
	svc := NewService(s, cache)
	ctx := context.Background()

	seed(t, s, []numbers.Record{rec("1", numbers.StatusAvailable, numbers.ServiceLTE, numbers.SpecialStandard)}, nil)
	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, sum.TotalNumbers)

	seed(t, s, []numbers.Record{rec("2", numbers.StatusAvailable, numbers.ServiceLTE, numbers.SpecialStandard)}, nil)
	sum, err = svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, sum.TotalNumbers, "served from cache until invalidated")
	require.Equal(t, 1, cache.hits)

	svc.Invalidate(ctx)
	sum, err = svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, sum.TotalNumbers)
}

// racingReader commits a write, and invalidates, while facets are being counted.
type racingReader struct {
	*memstore.Store
	during func()
}

func (r *racingReader) NumberFacets(ctx context.Context) ([]store.Facet, error) {
	out, err := r.Store.NumberFacets(ctx)
	if r.during != nil {
		r.during()
		r.during = nil
	}
	return out, err
}

func TestCache_WriteDuringRecomputeIsNotServedStale(t *testing.T) {
	s := memstore.New()
	r := &racingReader{Store: s}
	svc := NewService(r, &mapCache{data: map[string][]byte{}})
	ctx := context.Background()

	r.during = func() {
		seed(t, s, []numbers.Record{rec("1", numbers.StatusAvailable, numbers.ServiceLTE, numbers.SpecialStandard)}, nil)
		svc.Invalidate(ctx)
	}
	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Zero(t, sum.TotalNumbers)

	sum, err = svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, sum.TotalNumbers)
}

func TestLogStats(t *testing.T) {
	s := memstore.New()
	seed(t, s, nil, []audit.Entry{
		{ID: "a", Number: "1", Action: audit.ActionCreated, PerformedBy: audit.Actor{ID: "u1"}, Timestamp: now.AddDate(0, -1, 0)},
		{ID: "b", Number: "1", Action: audit.ActionAllocated, PerformedBy: audit.Actor{ID: "u1"}, Timestamp: now.Add(-time.Hour)},
	})
	svc := NewService(s, nil).WithClock(func() time.Time { return now })

	ls, err := svc.LogStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, ls.TotalLogs)
	require.Equal(t, 1, ls.RecentActivity)
	require.Equal(t, 1, ls.ActionBreakdown[audit.ActionAllocated])
	require.Equal(t, 0, ls.ActionBreakdown[audit.ActionDeleted])
}

func TestAnalytics(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	for _, u := range []users.User{
		{ID: "u1", Username: "alice", Email: "a@x.io", Role: rbac.RoleAdmin, IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: "u2", Username: "bob", Email: "b@x.io", Role: rbac.RolePlanner, IsActive: true, CreatedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, s.InsertUser(ctx, u))
	}

	entry := func(id string, a audit.Action, by string, ts time.Time) audit.Entry {
		return audit.Entry{ID: id, Number: "0711", Action: a, PerformedBy: audit.Actor{ID: by}, Timestamp: ts}
	}
	seed(t, s,
		[]numbers.Record{
			rec("1", numbers.StatusAllocated, numbers.ServiceLTE, numbers.SpecialGold),
			rec("2", numbers.StatusAvailable, numbers.ServiceLTE, numbers.SpecialStandard),
		},
		[]audit.Entry{
			entry("old", audit.ActionAllocated, "u1", now.AddDate(-2, 0, 0)),
			entry("m1", audit.ActionAllocated, "u1", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)),
			entry("m2", audit.ActionReleased, "u1", time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC)),
			entry("m3", audit.ActionAllocated, "u2", time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC)),
			entry("r1", audit.ActionCreated, "u2", now.Add(-48*time.Hour)),
			entry("r2", audit.ActionReserved, "u2", now.Add(-24*time.Hour)),
			entry("r3", audit.ActionAllocated, "u1", now.Add(-time.Hour)),
			entry("r4", audit.ActionStatusChanged, "ghost", now.Add(-time.Minute)),
		},
	)

	a, err := NewService(s, nil).WithClock(func() time.Time { return now }).Analytics(ctx)
	require.NoError(t, err)

	require.Equal(t, []MonthlyTrend{
		{Year: 2024, Month: 2, Action: audit.ActionAllocated, Count: 2},
		{Year: 2024, Month: 2, Action: audit.ActionReleased, Count: 1},
		{Year: 2024, Month: 6, Action: audit.ActionAllocated, Count: 1},
		{Year: 2024, Month: 6, Action: audit.ActionReserved, Count: 1},
	}, a.MonthlyTrends)

	require.Equal(t, []ServiceStatusCount{
		{ServiceType: numbers.ServiceLTE, Status: numbers.StatusAvailable, Count: 1},
		{ServiceType: numbers.ServiceLTE, Status: numbers.StatusAllocated, Count: 1},
	}, a.ServiceTypeStats)
	require.Equal(t, 1, a.SpecialTypeStats[numbers.SpecialGold])
	require.Equal(t, 0, a.SpecialTypeStats[numbers.SpecialElite])

	require.Len(t, a.RecentActivity, 4)
	require.Equal(t, "r4", a.RecentActivity[0].ID)
	require.Equal(t, "alice", a.RecentActivity[1].PerformedBy.Username)

	require.Equal(t, []UserActivity{
		{UserID: "u2", Username: "bob", ActivityCount: 2},
		{UserID: "u1", Username: "alice", ActivityCount: 1},
	}, a.UserActivityStats)
}

func TestHealth(t *testing.T) {
	s := memstore.New()
	require.NoError(t, s.InsertUser(context.Background(), users.User{ID: "u1", Username: "alice", Email: "a@x.io", Role: rbac.RoleAdmin}))
	seed(t, s, []numbers.Record{rec("1", numbers.StatusAvailable, numbers.ServiceLTE, numbers.SpecialStandard)},
		[]audit.Entry{{ID: "a", Number: "1", Action: audit.ActionCreated, PerformedBy: audit.Actor{ID: "u1"}, Timestamp: now}})

	h, err := NewService(s, nil).Health(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, h.TotalNumbers)
	require.Equal(t, 1, h.TotalUsers)
	require.Equal(t, 1, h.TotalLogs)
	require.NotEmpty(t, h.GoVersion)
	require.GreaterOrEqual(t, h.UptimeSeconds, 0.0)
}
