package audit

import (
	"strings"
	"time"
)

const (
	DefaultLimit = 25
	MaxLimit     = 500
)

// Query filters the log. Zero values mean "no filter".
// StartDate and EndDate are inclusive.
type Query struct {
	Number      string
	Action      Action
	PerformedBy string
	StartDate   time.Time
	EndDate     time.Time

	Page     int
	Limit    int
	SortDesc bool
	// SortBy is "timestamp", "number" or "action".
	SortBy string
}

var SortFields = map[string]string{
	"timestamp": "logged_at",
	"number":    "number",
	"action":    "action",
}

func (q *Query) Normalize() {
	q.Number = strings.TrimSpace(q.Number)
	q.PerformedBy = strings.TrimSpace(q.PerformedBy)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if _, ok := SortFields[q.SortBy]; !ok {
		q.SortBy = "timestamp"
		q.SortDesc = true
	}
}

func (q Query) Offset() int { return (q.Page - 1) * q.Limit }

func (q Query) Matches(e Entry) bool {
	if q.Number != "" && e.Number != q.Number {
		return false
	}
	if q.Action != "" && e.Action != q.Action {
		return false
	}
	if q.PerformedBy != "" && e.PerformedBy.ID != q.PerformedBy {
		return false
	}
	if !q.StartDate.IsZero() && e.Timestamp.Before(q.StartDate) {
		return false
	}
	if !q.EndDate.IsZero() && e.Timestamp.After(q.EndDate) {
		return false
	}
	return true
}

func (q Query) Less(a, b Entry) bool {
	var c int
	switch q.SortBy {
	case "number":
		c = strings.Compare(a.Number, b.Number)
	case "action":
		c = strings.Compare(string(a.Action), string(b.Action))
	default:
		c = a.Timestamp.Compare(b.Timestamp)
	}
	if q.SortDesc {
		return c > 0
	}
	return c < 0
}

// ParseDate accepts RFC3339 or a plain date. A plain end date covers the whole day.
func ParseDate(raw string, endOfDay bool) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t.UTC(), true
}
