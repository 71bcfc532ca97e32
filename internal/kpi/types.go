package kpi

import (
	"time"

	"github.com/marchalgreen/Rundeklar-sub002/internal/attendance"
	"github.com/marchalgreen/Rundeklar-sub002/internal/metrics"
)

// PeriodType selects how the current period is chosen and compared.
type PeriodType string

const (
	PeriodSeason PeriodType = "season"
	PeriodLast7  PeriodType = "last7"
	PeriodLast30 PeriodType = "last30"
	PeriodCustom PeriodType = "custom"
)

// KPIs are the headline attendance figures of one period.
type KPIs struct {
	TotalCheckIns     int     `json:"totalCheckIns"`
	TotalSessions     int     `json:"totalSessions"`
	AverageAttendance float64 `json:"averageAttendance"`
	// UniquePlayers sums the unique players of each group, so a player in
	// two groups is counted twice.
	UniquePlayers int `json:"uniquePlayers"`
}

// Period is an inclusive time range. To is the last millisecond of its day.
type Period struct {
	Type  PeriodType `json:"type"`
	From  time.Time  `json:"from"`
	To    time.Time  `json:"to"`
	Label string     `json:"label"`
}

// Request describes the current period. Season and the custom dates are
// only read for the matching period type.
type Request struct {
	Type   PeriodType
	Season string // YYYY-YYYY, defaults to the season of today
	From   string // YYYY-MM-DD
	To     string // YYYY-MM-DD
	Groups []string
}

// Delta is the change of one KPI. Percentage is nil when the base is zero.
type Delta struct {
	Absolute   float64  `json:"absolute"`
	Percentage *float64 `json:"percentage,omitempty"`
}

// Deltas holds the change of every KPI against the comparison period.
type Deltas struct {
	TotalCheckIns     Delta `json:"totalCheckIns"`
	TotalSessions     Delta `json:"totalSessions"`
	AverageAttendance Delta `json:"averageAttendance"`
	UniquePlayers     Delta `json:"uniquePlayers"`
}

// Report compares the KPIs of a period with its comparison period. Deltas
// is nil when the comparison period has no sessions.
type Report struct {
	Current    KPIs    `json:"current"`
	Previous   KPIs    `json:"previous"`
	Period     Period  `json:"period"`
	Comparison Period  `json:"comparison"`
	Deltas     *Deltas `json:"deltas,omitempty"`
}

// Engine computes KPI reports from the attendance aggregator.
type Engine struct {
	aggregator *attendance.Aggregator
	metrics    metrics.Metrics
	now        func() time.Time
}
