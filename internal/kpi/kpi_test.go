package kpi

import (
	"context"
	"testing"
	"time"

	"github.com/marchalgreen/Rundeklar-sub002/internal/attendance"
	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCompute(t *testing.T) {
	result := attendance.GroupAttendanceResult{
		Groups: []attendance.GroupAttendance{
			{GroupName: "Senior", CheckInCount: 3, UniquePlayers: 2, Sessions: 3},
			{GroupName: "U15", CheckInCount: 4, UniquePlayers: 2, Sessions: 2},
		},
		TotalUniqueSessions: 3,
	}
	assert.Equal(t, KPIs{TotalCheckIns: 7, TotalSessions: 3, AverageAttendance: 2.3, UniquePlayers: 4}, Compute(result))
	assert.Equal(t, KPIs{}, Compute(attendance.GroupAttendanceResult{}))
}

func TestCompareKPIs(t *testing.T) {
	t.Run("absent when comparison has no sessions", func(t *testing.T) {
		assert.Nil(t, CompareKPIs(KPIs{TotalCheckIns: 10, TotalSessions: 2, AverageAttendance: 5}, KPIs{}))
	})

	t.Run("absolute and percentage", func(t *testing.T) {
		d := CompareKPIs(
			KPIs{TotalCheckIns: 30, TotalSessions: 4, AverageAttendance: 7.5, UniquePlayers: 10},
			KPIs{TotalCheckIns: 20, TotalSessions: 4, AverageAttendance: 5, UniquePlayers: 0},
		)
		require.NotNil(t, d)
		assert.Equal(t, 10.0, d.TotalCheckIns.Absolute)
		require.NotNil(t, d.TotalCheckIns.Percentage)
		assert.Equal(t, 50.0, *d.TotalCheckIns.Percentage)
		assert.Equal(t, 0.0, *d.TotalSessions.Percentage)
		assert.Equal(t, 2.5, d.AverageAttendance.Absolute)
		assert.Equal(t, 10.0, d.UniquePlayers.Absolute)
		assert.Nil(t, d.UniquePlayers.Percentage, "No percentage against a zero base")
	})
}

func TestCurrentPeriod(t *testing.T) {
	now := time.Date(2024, time.October, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		req      Request
		wantFrom string
		wantTo   string
	}{
		{"running season ends today", Request{Type: PeriodSeason}, "2024-08-01", "2024-10-15"},
		{"past season is complete", Request{Type: PeriodSeason, Season: "2022-2023"}, "2022-08-01", "2023-07-31"},
		{"last 7 days", Request{Type: PeriodLast7}, "2024-10-09", "2024-10-15"},
		{"last 30 days", Request{Type: PeriodLast30}, "2024-09-16", "2024-10-15"},
		{"custom", Request{Type: PeriodCustom, From: "2024-01-01", To: "2024-03-31"}, "2024-01-01", "2024-03-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CurrentPeriod(tt.req, now)
			require.NoError(t, err)
			f := p.Filter(nil)
			assert.Equal(t, tt.wantFrom, f.DateFrom)
			assert.Equal(t, tt.wantTo, f.DateTo)
		})
	}

	t.Run("invalid", func(t *testing.T) {
		_, err := CurrentPeriod(Request{Type: PeriodCustom, From: "2024-03-01", To: "2024-01-01"}, now)
		assert.True(t, club.IsValidation(err))
		_, err = CurrentPeriod(Request{Type: "fortnight"}, now)
		assert.True(t, club.IsValidation(err))
		_, err = CurrentPeriod(Request{Type: PeriodSeason, Season: "2024"}, now)
		assert.True(t, club.IsValidation(err))
	})
}

func TestComparisonPeriod(t *testing.T) {
	tests := []struct {
		name      string
		period    Period
		wantFrom  string
		wantTo    string
		wantLabel string
	}{
		{
			"season shifts one year back",
			Period{Type: PeriodSeason, From: day("2024-08-01"), To: endOfDay(day("2024-10-15"))},
			"2023-08-01", "2023-10-15", "previous season",
		},
		{
			"season is clamped to july 31",
			Period{Type: PeriodSeason, From: day("2024-08-01"), To: endOfDay(day("2025-07-31"))},
			"2023-08-01", "2024-07-31", "previous season",
		},
		{
			"season on a leap day stops at february 28",
			Period{Type: PeriodSeason, From: day("2023-08-01"), To: endOfDay(day("2024-02-29"))},
			"2022-08-01", "2023-02-28", "previous season",
		},
		{
			"rolling 7 days",
			Period{Type: PeriodLast7, From: day("2024-10-09"), To: endOfDay(day("2024-10-15"))},
			"2024-10-02", "2024-10-08", "previous 7 days",
		},
		{
			"custom quarter",
			Period{Type: PeriodCustom, From: day("2024-01-01"), To: endOfDay(day("2024-03-31"))},
			"2023-10-02", "2023-12-31", "previous 3 months",
		},
		{
			"custom days",
			Period{Type: PeriodCustom, From: day("2024-01-11"), To: endOfDay(day("2024-01-20"))},
			"2024-01-01", "2024-01-10", "previous 10 days",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmp := ComparisonPeriod(tt.period)
			f := cmp.Filter(nil)
			assert.Equal(t, tt.wantFrom, f.DateFrom)
			assert.Equal(t, tt.wantTo, f.DateTo)
			assert.Equal(t, tt.wantLabel, cmp.Label)
		})
	}

	t.Run("running season on a leap day", func(t *testing.T) {
		p, err := CurrentPeriod(Request{Type: PeriodSeason}, time.Date(2024, 2, 29, 19, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		cmp := ComparisonPeriod(p)
		assert.Equal(t, endOfDay(day("2023-02-28")), cmp.To)
	})

	t.Run("rolling window ends one millisecond before the period", func(t *testing.T) {
		p := Period{Type: PeriodLast30, From: day("2024-09-16"), To: endOfDay(day("2024-10-15"))}
		cmp := ComparisonPeriod(p)
		assert.Equal(t, p.From.Add(-time.Millisecond), cmp.To)
		assert.Equal(t, p.To.Sub(p.From), cmp.To.Sub(cmp.From))
	})
}

func TestEngine_Report(t *testing.T) {
	ctx := context.Background()
	store := club.NewMock()
	store.Players = []club.Player{
		{ID: "A", TrainingGroups: []string{"U15"}},
		{ID: "B", TrainingGroups: []string{"U15"}},
	}
	store.Snapshots = []club.StatisticsSnapshot{
		{ID: "snap1", SessionID: "s1", SessionDate: "2024-10-14", CheckIns: []club.CheckIn{
			{ID: "c1", SessionID: "s1", PlayerID: "A"}, {ID: "c2", SessionID: "s1", PlayerID: "B"},
		}},
	}
	metr := metrics.NewMock()
	engine := NewEngine(attendance.NewAggregator(store, metr, attendance.LocaleEnglish), metr)
	engine.now = func() time.Time { return time.Date(2024, time.October, 15, 12, 0, 0, 0, time.UTC) }

	t.Run("no deltas without comparison data", func(t *testing.T) {
		report, err := engine.Report(ctx, Request{Type: PeriodLast7})
		require.NoError(t, err)
		assert.Equal(t, 2, report.Current.TotalCheckIns)
		assert.Equal(t, 1, report.Current.TotalSessions)
		assert.Equal(t, 0, report.Previous.TotalSessions)
		assert.Nil(t, report.Deltas)
		assert.Equal(t, "previous 7 days", report.Comparison.Label)
	})

	t.Run("deltas with comparison data", func(t *testing.T) {
		store.Snapshots = append(store.Snapshots, club.StatisticsSnapshot{
			ID: "snap0", SessionID: "s0", SessionDate: "2024-10-07",
			CheckIns: []club.CheckIn{{ID: "c0", SessionID: "s0", PlayerID: "A"}},
		})
		report, err := engine.Report(ctx, Request{Type: PeriodLast7})
		require.NoError(t, err)
		require.NotNil(t, report.Deltas)
		assert.Equal(t, 1.0, report.Deltas.TotalCheckIns.Absolute)
		assert.Equal(t, 100.0, *report.Deltas.TotalCheckIns.Percentage)
	})

	t.Run("invalid request", func(t *testing.T) {
		_, err := engine.Report(ctx, Request{Type: PeriodCustom})
		assert.True(t, club.IsValidation(err))
	})

	assert.Contains(t, metr.AnalyticsOperations(), "kpi_report")
}
