package attendance

import (
	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/metrics"
)

// Filter narrows the snapshot corpus. Empty fields do not filter.
type Filter struct {
	// DateFrom and DateTo bound the session date, both inclusive, as YYYY-MM-DD.
	DateFrom string   `json:"dateFrom,omitempty"`
	DateTo   string   `json:"dateTo,omitempty"`
	Groups   []string `json:"groups,omitempty"`
}

// GroupAttendance is the attendance of one training group.
type GroupAttendance struct {
	GroupName         string  `json:"groupName"`
	CheckInCount      int     `json:"checkInCount"`
	UniquePlayers     int     `json:"uniquePlayers"`
	Sessions          int     `json:"sessions"`
	AverageAttendance float64 `json:"averageAttendance"`
}

// GroupAttendanceResult holds the per-group attendance together with the
// sessions that contributed to any group.
type GroupAttendanceResult struct {
	Groups              []GroupAttendance `json:"groups"`
	TotalUniqueSessions int               `json:"totalUniqueSessions"`
	SessionIDs          []string          `json:"sessionIds"`
}

// WeekdayAttendance is the attendance on one day of the week.
type WeekdayAttendance struct {
	Weekday           int     `json:"weekday"` // 0 is Sunday
	WeekdayName       string  `json:"weekdayName"`
	CheckInCount      int     `json:"checkInCount"`
	Sessions          int     `json:"sessions"`
	AverageAttendance float64 `json:"averageAttendance"`
}

// MonthlyAttendance is the attendance in one calendar month.
type MonthlyAttendance struct {
	Month             string  `json:"month"` // YYYY-MM
	CheckInCount      int     `json:"checkInCount"`
	UniquePlayers     int     `json:"uniquePlayers"`
	Sessions          int     `json:"sessions"`
	AverageAttendance float64 `json:"averageAttendance"`
}

// GroupTrendPoint is the attendance of one group in one month.
type GroupTrendPoint struct {
	GroupName         string  `json:"groupName"`
	Month             string  `json:"month"`
	CheckInCount      int     `json:"checkInCount"`
	Sessions          int     `json:"sessions"`
	AverageAttendance float64 `json:"averageAttendance"`
}

// PlayerAttendance counts the check-ins of one player.
type PlayerAttendance struct {
	PlayerID     string `json:"playerId"`
	PlayerName   string `json:"playerName"`
	CheckInCount int    `json:"checkInCount"`
}

// TrainingDayComparison compares the two busiest weekdays.
type TrainingDayComparison struct {
	Day1                 WeekdayAttendance `json:"day1"`
	Day2                 WeekdayAttendance `json:"day2"`
	Difference           int               `json:"difference"`
	PercentageDifference float64           `json:"percentageDifference"`
}

// Aggregator computes attendance statistics from stored snapshots.
type Aggregator struct {
	store   club.Store
	metrics metrics.Metrics
	locale  Locale
}
