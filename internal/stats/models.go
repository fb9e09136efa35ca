package stats

import (
	"number-inventory/internal/audit"
	"number-inventory/internal/numbers"
)

// Summary counts numbers per status. Statuses with no numbers report 0.
type Summary struct {
	TotalNumbers       int `json:"totalNumbers"`
	AvailableNumbers   int `json:"availableNumbers"`
	AllocatedNumbers   int `json:"allocatedNumbers"`
	ReservedNumbers    int `json:"reservedNumbers"`
	HeldNumbers        int `json:"heldNumbers"`
	QuarantinedNumbers int `json:"quarantinedNumbers"`
}

// Breakdown is the per-type view used by the service and special type charts.
type Breakdown struct {
	Allocated int `json:"allocated"`
	Available int `json:"available"`
	Total     int `json:"total"`
}

type LogStats struct {
	TotalLogs       int                  `json:"totalLogs"`
	RecentActivity  int                  `json:"recentActivity"`
	ActionBreakdown map[audit.Action]int `json:"actionBreakdown"`
}

type MonthlyTrend struct {
	Year   int          `json:"year"`
	Month  int          `json:"month"`
	Action audit.Action `json:"action"`
	Count  int          `json:"count"`
}

type ServiceStatusCount struct {
	ServiceType numbers.ServiceType `json:"serviceType"`
	Status      numbers.Status      `json:"status"`
	Count       int                 `json:"count"`
}

type UserActivity struct {
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	ActivityCount int    `json:"activityCount"`
}

type Analytics struct {
	MonthlyTrends     []MonthlyTrend              `json:"monthlyTrends"`
	ServiceTypeStats  []ServiceStatusCount        `json:"serviceTypeStats"`
	SpecialTypeStats  map[numbers.SpecialType]int `json:"specialTypeStats"`
	RecentActivity    []audit.Entry               `json:"recentActivity"`
	UserActivityStats []UserActivity              `json:"userActivityStats"`
}

type Health struct {
	TotalNumbers   int     `json:"totalNumbers"`
	TotalUsers     int     `json:"totalUsers"`
	TotalLogs      int     `json:"totalLogs"`
	UptimeSeconds  float64 `json:"uptime"`
	GoVersion      string  `json:"goVersion"`
	Goroutines     int     `json:"goroutines"`
	HeapAllocBytes uint64  `json:"heapAllocBytes"`
}
