package numbers

import (
	"strconv"
	"strings"
)

const (
	DefaultLimit = 25
	MaxLimit     = 500
)

// SortFields maps accepted sort keys to column names.
var SortFields = map[string]string{
	"number":      "number",
	"status":      "status",
	"serviceType": "service_type",
	"specialType": "special_type",
	"allocatedTo": "allocated_to",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

// ListQuery filters, sorts and pages the number list.
type ListQuery struct {
	Status       Status
	ServiceTypes []ServiceType
	SpecialTypes []SpecialType
	Search       string

	Page     int
	Limit    int
	SortBy   string
	SortDesc bool
}

// Normalize applies defaults and drops unknown sort keys.
func (q *ListQuery) Normalize() {
	q.Search = strings.TrimSpace(q.Search)
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
		q.SortBy = "createdAt"
		q.SortDesc = true
	}
}

func (q ListQuery) Offset() int { return (q.Page - 1) * q.Limit }

// Matches evaluates the filter part of q against r.
func (q ListQuery) Matches(r Record) bool {
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	if len(q.ServiceTypes) > 0 && !containsService(q.ServiceTypes, r.ServiceType) {
		return false
	}
	if len(q.SpecialTypes) > 0 && !containsSpecial(q.SpecialTypes, r.SpecialType) {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(r.Number), needle) &&
			!strings.Contains(strings.ToLower(r.AllocatedTo), needle) {
			return false
		}
	}
	return true
}

// Less orders a before b using q's sort key.
func (q ListQuery) Less(a, b Record) bool {
	var c int
	switch q.SortBy {
	case "number":
		c = strings.Compare(a.Number, b.Number)
	case "status":
		c = strings.Compare(string(a.Status), string(b.Status))
	case "serviceType":
		c = strings.Compare(string(a.ServiceType), string(b.ServiceType))
	case "specialType":
		c = strings.Compare(string(a.SpecialType), string(b.SpecialType))
	case "allocatedTo":
		c = strings.Compare(a.AllocatedTo, b.AllocatedTo)
	case "updatedAt":
		c = a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		c = a.CreatedAt.Compare(b.CreatedAt)
	}
	if q.SortDesc {
		return c > 0
	}
	return c < 0
}

// Pages is the number of pages for total rows.
func Pages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// SplitServiceTypes parses a comma separated filter value.
func SplitServiceTypes(raw string) []ServiceType {
	var out []ServiceType
	for _, p := range splitList(raw) {
		out = append(out, ServiceType(p))
	}
	return out
}

func SplitSpecialTypes(raw string) []SpecialType {
	var out []SpecialType
	for _, p := range splitList(raw) {
		out = append(out, SpecialType(p))
	}
	return out
}

// ParseSortOrder accepts "asc" and "desc"; anything else means desc.
func ParseSortOrder(raw string) bool {
	return !strings.EqualFold(strings.TrimSpace(raw), "asc")
}

// AtoiDefault parses s or returns def.
func AtoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsService(set []ServiceType, v ServiceType) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsSpecial(set []SpecialType, v SpecialType) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
