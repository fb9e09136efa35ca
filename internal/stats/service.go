// Package stats aggregates the number inventory and the audit log for dashboards.
// Every view is computed from the store; the optional cache only holds the
// per-facet number counts and is retired on each committed lifecycle write.
package stats

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"sort"
	"time"

	"number-inventory/internal/audit"
	"number-inventory/internal/numbers"
	"number-inventory/internal/store"
	"number-inventory/internal/users"
	"number-inventory/pkg/logger"
)

const (
	RecentWindow = 7 * 24 * time.Hour
	TrendMonths  = 12
	RecentLimit  = 10
	TopUsers     = 5
)

// trendActions are the actions charted month by month.
var trendActions = []audit.Action{audit.ActionAllocated, audit.ActionReleased, audit.ActionReserved}

// Reader is the slice of store.Store the aggregator reads.
type Reader interface {
	store.StatsReader
	store.LogReader
	UserStats(ctx context.Context, registeredSince time.Time) (users.Stats, error)
}

type Service struct {
	store   Reader
	cache   Cache
	clock   func() time.Time
	started time.Time
}

func NewService(r Reader, cache Cache) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{store: r, cache: cache, clock: time.Now, started: time.Now()}
}

func (s *Service) WithClock(clock func() time.Time) *Service {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// Invalidate retires cached counts. It satisfies lifecycle.Invalidator.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		logger.From(ctx).Warn("stats cache invalidate failed", "err", err)
	}
}

const facetsKey = "facets"

// facets reads the generation before the store, so counts computed while a
// write commits land under a generation that write has already retired.
func (s *Service) facets(ctx context.Context) ([]store.Facet, error) {
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		logger.From(ctx).Warn("stats cache read failed", "err", err)
		return s.store.NumberFacets(ctx)
	}
	key := fmt.Sprintf("%s:%d", facetsKey, gen)

	var cached []store.Facet
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		logger.From(ctx).Warn("stats cache read failed", "err", err)
	}
	if hit {
		return cached, nil
	}

	out, err := s.store.NumberFacets(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, out); err != nil {
		logger.From(ctx).Warn("stats cache write failed", "err", err)
	}
	return out, nil
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	facets, err := s.facets(ctx)
	if err != nil {
		return Summary{}, err
	}
	var out Summary
	for _, f := range facets {
		out.TotalNumbers += f.Count
		switch f.Status {
		case numbers.StatusAvailable:
			out.AvailableNumbers += f.Count
		case numbers.StatusAllocated:
			out.AllocatedNumbers += f.Count
		case numbers.StatusReserved:
			out.ReservedNumbers += f.Count
		case numbers.StatusHeld:
			out.HeldNumbers += f.Count
		case numbers.StatusQuarantined:
			out.QuarantinedNumbers += f.Count
		}
	}
	return out, nil
}

// ByServiceType reports every service type, including those with no numbers.
func (s *Service) ByServiceType(ctx context.Context) (map[numbers.ServiceType]Breakdown, error) {
	facets, err := s.facets(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[numbers.ServiceType]Breakdown, len(numbers.ServiceTypes))
	for _, t := range numbers.ServiceTypes {
		out[t] = Breakdown{}
	}
	for _, f := range facets {
		out[f.ServiceType] = addFacet(out[f.ServiceType], f)
	}
	return out, nil
}

// BySpecialType reports every special type, including those with no numbers.
func (s *Service) BySpecialType(ctx context.Context) (map[numbers.SpecialType]Breakdown, error) {
	facets, err := s.facets(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[numbers.SpecialType]Breakdown, len(numbers.SpecialTypes))
	for _, t := range numbers.SpecialTypes {
		out[t] = Breakdown{}
	}
	for _, f := range facets {
		out[f.SpecialType] = addFacet(out[f.SpecialType], f)
	}
	return out, nil
}

func addFacet(b Breakdown, f store.Facet) Breakdown {
	b.Total += f.Count
	switch f.Status {
	case numbers.StatusAllocated:
		b.Allocated += f.Count
	case numbers.StatusAvailable:
		b.Available += f.Count
	}
	return b
}

func (s *Service) LogStats(ctx context.Context) (LogStats, error) {
	since := s.clock().UTC().Add(-RecentWindow)
	total, err := s.store.CountLogs(ctx, time.Time{})
	if err != nil {
		return LogStats{}, err
	}
	recent, err := s.store.CountLogs(ctx, since)
	if err != nil {
		return LogStats{}, err
	}
	byAction, err := s.store.CountLogsByAction(ctx, time.Time{})
	if err != nil {
		return LogStats{}, err
	}
	return LogStats{TotalLogs: total, RecentActivity: recent, ActionBreakdown: byAction}, nil
}

func (s *Service) Analytics(ctx context.Context) (Analytics, error) {
	now := s.clock().UTC()
	recentSince := now.Add(-RecentWindow)

	activity, err := s.store.LogActivity(ctx, now.AddDate(0, -TrendMonths, 0))
	if err != nil {
		return Analytics{}, err
	}
	facets, err := s.facets(ctx)
	if err != nil {
		return Analytics{}, err
	}
	recent, _, err := s.store.QueryLogs(ctx, audit.Query{StartDate: recentSince, Limit: RecentLimit})
	if err != nil {
		return Analytics{}, err
	}

	return Analytics{
		MonthlyTrends:     monthlyTrends(activity),
		ServiceTypeStats:  serviceStatus(facets),
		SpecialTypeStats:  specialCounts(facets),
		RecentActivity:    recent,
		UserActivityStats: topUsers(activity, recentSince, TopUsers),
	}, nil
}

func (s *Service) Health(ctx context.Context) (Health, error) {
	sum, err := s.Summary(ctx)
	if err != nil {
		return Health{}, err
	}
	us, err := s.store.UserStats(ctx, s.clock().UTC())
	if err != nil {
		return Health{}, err
	}
	logs, err := s.store.CountLogs(ctx, time.Time{})
	if err != nil {
		return Health{}, err
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return Health{
		TotalNumbers:   sum.TotalNumbers,
		TotalUsers:     us.TotalUsers,
		TotalLogs:      logs,
		UptimeSeconds:  s.clock().Sub(s.started).Seconds(),
		GoVersion:      runtime.Version(),
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: mem.HeapAlloc,
	}, nil
}

func monthlyTrends(activity []store.Activity) []MonthlyTrend {
	type key struct {
		year, month int
		action      audit.Action
	}
	counts := map[key]int{}
	for _, a := range activity {
		if !slices.Contains(trendActions, a.Action) {
			continue
		}
		ts := a.Timestamp.UTC()
		counts[key{ts.Year(), int(ts.Month()), a.Action}]++
	}

	out := make([]MonthlyTrend, 0, len(counts))
	for k, n := range counts {
		out = append(out, MonthlyTrend{Year: k.year, Month: k.month, Action: k.action, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return slices.Index(trendActions, out[i].Action) < slices.Index(trendActions, out[j].Action)
	})
	return out
}

func serviceStatus(facets []store.Facet) []ServiceStatusCount {
	type key struct {
		svc numbers.ServiceType
		st  numbers.Status
	}
	counts := map[key]int{}
	for _, f := range facets {
		counts[key{f.ServiceType, f.Status}] += f.Count
	}
	out := make([]ServiceStatusCount, 0, len(counts))
	for _, svc := range numbers.ServiceTypes {
		for _, st := range numbers.Statuses {
			if n := counts[key{svc, st}]; n > 0 {
				out = append(out, ServiceStatusCount{ServiceType: svc, Status: st, Count: n})
			}
		}
	}
	return out
}

func specialCounts(facets []store.Facet) map[numbers.SpecialType]int {
	out := make(map[numbers.SpecialType]int, len(numbers.SpecialTypes))
	for _, t := range numbers.SpecialTypes {
		out[t] = 0
	}
	for _, f := range facets {
		out[f.SpecialType] += f.Count
	}
	return out
}

// topUsers ranks known users by entries at or after since. Entries whose user no longer exists are skipped.
func topUsers(activity []store.Activity, since time.Time, limit int) []UserActivity {
	byUser := map[string]*UserActivity{}
	for _, a := range activity {
		if a.Timestamp.Before(since) || a.Username == "" {
			continue
		}
		u, ok := byUser[a.PerformedBy]
		if !ok {
			u = &UserActivity{UserID: a.PerformedBy, Username: a.Username}
			byUser[a.PerformedBy] = u
		}
		u.ActivityCount++
	}

	out := make([]UserActivity, 0, len(byUser))
	for _, u := range byUser {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ActivityCount != out[j].ActivityCount {
			return out[i].ActivityCount > out[j].ActivityCount
		}
		return out[i].Username < out[j].Username
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
