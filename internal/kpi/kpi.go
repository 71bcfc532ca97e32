package kpi

import (
	"context"
	"time"

	"github.com/marchalgreen/Rundeklar-sub002/internal/attendance"
	"github.com/marchalgreen/Rundeklar-sub002/internal/metrics"
)

// Compute derives the headline KPIs from group attendance. Sessions are
// counted from the same session set the check-ins came from.
func Compute(result attendance.GroupAttendanceResult) KPIs {
	k := KPIs{TotalSessions: result.TotalUniqueSessions}
	for _, g := range result.Groups {
		k.TotalCheckIns += g.CheckInCount
		k.UniquePlayers += g.UniquePlayers
	}
	if k.TotalSessions > 0 {
		k.AverageAttendance = attendance.Round1(float64(k.TotalCheckIns) / float64(k.TotalSessions))
	}
	return k
}

func delta(current, previous float64) Delta {
	d := Delta{Absolute: attendance.Round1(current - previous)}
	if previous != 0 {
		pct := attendance.Round1((current - previous) / previous * 100)
		d.Percentage = &pct
	}
	return d
}

// CompareKPIs returns the deltas of current against previous, or nil when
// the previous period had no sessions.
func CompareKPIs(current, previous KPIs) *Deltas {
	if previous.TotalSessions == 0 {
		return nil
	}
	return &Deltas{
		TotalCheckIns:     delta(float64(current.TotalCheckIns), float64(previous.TotalCheckIns)),
		TotalSessions:     delta(float64(current.TotalSessions), float64(previous.TotalSessions)),
		AverageAttendance: delta(current.AverageAttendance, previous.AverageAttendance),
		UniquePlayers:     delta(float64(current.UniquePlayers), float64(previous.UniquePlayers)),
	}
}

// NewEngine creates an Engine.
func NewEngine(aggregator *attendance.Aggregator, metrics metrics.Metrics) *Engine {
	return &Engine{aggregator: aggregator, metrics: metrics, now: time.Now}
}

// Report computes the KPIs of the requested period and of its comparison
// period with the same group filter.
func (e *Engine) Report(ctx context.Context, req Request) (Report, error) {
	start := time.Now()
	defer func() {
		e.metrics.ObserveAnalyticsDuration("kpi_report", time.Since(start).Seconds())
	}()

	period, err := CurrentPeriod(req, e.now())
	if err != nil {
		return Report{}, err
	}
	comparison := ComparisonPeriod(period)

	snapshots, players, err := e.aggregator.Load(ctx)
	if err != nil {
		return Report{}, err
	}
	current := Compute(attendance.ComputeGroupAttendance(snapshots, players, period.Filter(req.Groups)))
	previous := Compute(attendance.ComputeGroupAttendance(snapshots, players, comparison.Filter(req.Groups)))

	return Report{
		Current:    current,
		Previous:   previous,
		Period:     period,
		Comparison: comparison,
		Deltas:     CompareKPIs(current, previous),
	}, nil
}
