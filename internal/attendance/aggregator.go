package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/metrics"
)

// NewAggregator creates an Aggregator reading snapshots and players from store.
func NewAggregator(store club.Store, metrics metrics.Metrics, locale Locale) *Aggregator {
	return &Aggregator{store: store, metrics: metrics, locale: locale}
}

// Locale returns the locale used for weekday names.
func (a *Aggregator) Locale() Locale {
	return a.locale
}

// Load reads the snapshot corpus and the players.
func (a *Aggregator) Load(ctx context.Context) ([]club.StatisticsSnapshot, []club.Player, error) {
	snapshots, err := a.store.ListStatisticsSnapshots(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	players, err := a.store.ListPlayers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list players: %w", err)
	}
	return snapshots, players, nil
}

func (a *Aggregator) observe(operation string, start time.Time) {
	a.metrics.ObserveAnalyticsDuration(operation, time.Since(start).Seconds())
}

// GroupAttendance returns the attendance per training group.
func (a *Aggregator) GroupAttendance(ctx context.Context, filter Filter) (GroupAttendanceResult, error) {
	defer a.observe("group_attendance", time.Now())
	snapshots, players, err := a.Load(ctx)
	if err != nil {
		return GroupAttendanceResult{}, err
	}
	return ComputeGroupAttendance(snapshots, players, filter), nil
}

// WeekdayAttendance returns the attendance per weekday, Monday first.
func (a *Aggregator) WeekdayAttendance(ctx context.Context, filter Filter) ([]WeekdayAttendance, error) {
	defer a.observe("weekday_attendance", time.Now())
	snapshots, players, err := a.Load(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeWeekdayAttendance(snapshots, players, filter, a.locale), nil
}

// MonthlyTrend returns the attendance per month.
func (a *Aggregator) MonthlyTrend(ctx context.Context, filter Filter) ([]MonthlyAttendance, error) {
	defer a.observe("monthly_trend", time.Now())
	snapshots, players, err := a.Load(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeMonthlyTrend(snapshots, players, filter), nil
}

// GroupTrend returns the deduplicated attendance per group and month.
func (a *Aggregator) GroupTrend(ctx context.Context, filter Filter) ([]GroupTrendPoint, error) {
	defer a.observe("group_trend", time.Now())
	snapshots, players, err := a.Load(ctx)
	if err != nil {
		return nil, err
	}
	return DedupeGroupTrend(ComputeGroupTrend(snapshots, players, filter)), nil
}

// PlayerLongTail returns check-in counts per player, most frequent first.
// A positive limit truncates the list.
func (a *Aggregator) PlayerLongTail(ctx context.Context, filter Filter, limit int) ([]PlayerAttendance, error) {
	defer a.observe("player_long_tail", time.Now())
	snapshots, players, err := a.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := ComputePlayerLongTail(snapshots, players, filter)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// TrainingDayComparison compares the two busiest weekdays. It returns nil
// when fewer than two weekdays have data.
func (a *Aggregator) TrainingDayComparison(ctx context.Context, filter Filter) (*TrainingDayComparison, error) {
	weekdays, err := a.WeekdayAttendance(ctx, filter)
	if err != nil {
		return nil, err
	}
	return CompareTrainingDays(weekdays), nil
}
