package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkIns(sessionID string, playerIDs ...string) []club.CheckIn {
	out := make([]club.CheckIn, 0, len(playerIDs))
	for _, id := range playerIDs {
		out = append(out, club.CheckIn{ID: sessionID + "-" + id, SessionID: sessionID, PlayerID: id})
	}
	return out
}

func fixture() ([]club.StatisticsSnapshot, []club.Player) {
	players := []club.Player{
		{ID: "A", Name: "Anna", TrainingGroups: []string{"U15"}},
		{ID: "B", Name: "Bo", TrainingGroups: []string{"U15", "Senior"}},
		{ID: "C", Name: "Carl"},
		{ID: "D", Name: "Dina", TrainingGroups: []string{"Senior"}},
	}
	snapshots := []club.StatisticsSnapshot{
		// Wednesday
		{ID: "snap1", SessionID: "s1", SessionDate: "2024-09-04", CheckIns: checkIns("s1", "A", "B", "C")},
		// Monday
		{ID: "snap2", SessionID: "s2", SessionDate: "2024-09-09", CheckIns: checkIns("s2", "A", "B")},
		// Sunday, next month
		{ID: "snap3", SessionID: "s3", SessionDate: "2024-10-06T18:00:00+02:00", CheckIns: checkIns("s3", "D", "unknown")},
	}
	return snapshots, players
}

func TestComputeGroupAttendance(t *testing.T) {
	snapshots, players := fixture()

	t.Run("per group attribution", func(t *testing.T) {
		result := ComputeGroupAttendance(snapshots, players, Filter{})
		require.Len(t, result.Groups, 2)

		senior, u15 := result.Groups[0], result.Groups[1]
		assert.Equal(t, "Senior", senior.GroupName)
		assert.Equal(t, 3, senior.CheckInCount)
		assert.Equal(t, 2, senior.UniquePlayers)
		assert.Equal(t, 3, senior.Sessions)
		assert.Equal(t, 1.0, senior.AverageAttendance)

		assert.Equal(t, "U15", u15.GroupName)
		assert.Equal(t, 4, u15.CheckInCount)
		assert.Equal(t, 2, u15.Sessions)
		assert.Equal(t, 2.0, u15.AverageAttendance)

		assert.Equal(t, 3, result.TotalUniqueSessions)
		assert.Equal(t, []string{"s1", "s2", "s3"}, result.SessionIDs)
	})

	t.Run("average is total over sessions", func(t *testing.T) {
		snaps := []club.StatisticsSnapshot{
			{SessionID: "s1", SessionDate: "2024-09-04", CheckIns: checkIns("s1", "A", "B", "E")},
			{SessionID: "s2", SessionDate: "2024-09-11", CheckIns: checkIns("s2", "A", "B")},
		}
		ps := []club.Player{
			{ID: "A", TrainingGroups: []string{"U15"}},
			{ID: "B", TrainingGroups: []string{"U15"}},
			{ID: "E", TrainingGroups: []string{"U15"}},
		}
		result := ComputeGroupAttendance(snaps, ps, Filter{})
		require.Len(t, result.Groups, 1)
		assert.Equal(t, 2.5, result.Groups[0].AverageAttendance)
	})

	t.Run("group filter", func(t *testing.T) {
		result := ComputeGroupAttendance(snapshots, players, Filter{Groups: []string{"U15"}})
		require.Len(t, result.Groups, 1)
		for _, g := range result.Groups {
			assert.Equal(t, "U15", g.GroupName)
		}
		assert.Equal(t, []string{"s1", "s2"}, result.SessionIDs)
	})

	t.Run("date range is inclusive", func(t *testing.T) {
		result := ComputeGroupAttendance(snapshots, players, Filter{DateFrom: "2024-09-09", DateTo: "2024-10-06"})
		assert.Equal(t, []string{"s2", "s3"}, result.SessionIDs)
	})

	t.Run("no data is an empty result", func(t *testing.T) {
		result := ComputeGroupAttendance(nil, players, Filter{})
		assert.NotNil(t, result.Groups)
		assert.Empty(t, result.Groups)
		assert.Equal(t, 0, result.TotalUniqueSessions)
	})
}

func TestComputeGroupAttendance_PlayerWithoutGroups(t *testing.T) {
	snaps := []club.StatisticsSnapshot{{SessionID: "s1", SessionDate: "2024-09-04", CheckIns: checkIns("s1", "C")}}
	players := []club.Player{{ID: "C", TrainingGroups: []string{}}}

	result := ComputeGroupAttendance(snaps, players, Filter{})
	assert.Empty(t, result.Groups)
	assert.Empty(t, result.SessionIDs)
}

func TestCheckInFieldSpellingsCountAlike(t *testing.T) {
	current := `[{"id":"snap1","sessionId":"s1","sessionDate":"2024-09-04","checkIns":[{"id":"c1","sessionId":"s1","playerId":"A"},{"id":"c2","sessionId":"s1","playerId":"B"}]}]`
	legacy := `[{"id":"snap1","sessionId":"s1","sessionDate":"2024-09-04","checkIns":[{"id":"c1","sessionId":"s1","player_id":"A"},{"id":"c2","sessionId":"s1","player_id":"B"}]}]`
	_, players := fixture()

	var a, b []club.StatisticsSnapshot
	require.NoError(t, json.Unmarshal([]byte(current), &a))
	require.NoError(t, json.Unmarshal([]byte(legacy), &b))

	assert.Equal(t, ComputeGroupAttendance(a, players, Filter{}), ComputeGroupAttendance(b, players, Filter{}))
	assert.Equal(t, ComputeWeekdayAttendance(a, players, Filter{}, LocaleEnglish), ComputeWeekdayAttendance(b, players, Filter{}, LocaleEnglish))
}

func TestComputeWeekdayAttendance(t *testing.T) {
	snapshots, players := fixture()

	t.Run("sorted monday to sunday", func(t *testing.T) {
		days := ComputeWeekdayAttendance(snapshots, players, Filter{}, LocaleEnglish)
		require.Len(t, days, 3)
		assert.Equal(t, 1, days[0].Weekday)
		assert.Equal(t, "Monday", days[0].WeekdayName)
		assert.Equal(t, 3, days[1].Weekday)
		assert.Equal(t, 3, days[1].CheckInCount, "Players without a group still count without a filter")
		assert.Equal(t, 0, days[2].Weekday)
		assert.Equal(t, 2, days[2].CheckInCount)
	})

	t.Run("group filter", func(t *testing.T) {
		days := ComputeWeekdayAttendance(snapshots, players, Filter{Groups: []string{"U15"}}, LocaleDanish)
		require.Len(t, days, 2)
		assert.Equal(t, "Mandag", days[0].WeekdayName)
		assert.Equal(t, "Onsdag", days[1].WeekdayName)
		assert.Equal(t, 2, days[1].CheckInCount)
	})
}

func TestComputeMonthlyTrend(t *testing.T) {
	snapshots, players := fixture()
	months := ComputeMonthlyTrend(snapshots, players, Filter{})
	require.Len(t, months, 2)
	assert.Equal(t, "2024-09", months[0].Month)
	assert.Equal(t, 5, months[0].CheckInCount)
	assert.Equal(t, 3, months[0].UniquePlayers)
	assert.Equal(t, 2.5, months[0].AverageAttendance)
	assert.Equal(t, "2024-10", months[1].Month)
}

func TestGroupTrend(t *testing.T) {
	snapshots, players := fixture()
	points := ComputeGroupTrend(snapshots, players, Filter{})
	assert.Equal(t, []GroupTrendPoint{
		{GroupName: "Senior", Month: "2024-09", CheckInCount: 2, Sessions: 2, AverageAttendance: 1},
		{GroupName: "Senior", Month: "2024-10", CheckInCount: 1, Sessions: 1, AverageAttendance: 1},
		{GroupName: "U15", Month: "2024-09", CheckInCount: 4, Sessions: 2, AverageAttendance: 2},
	}, points)

	merged := append(append([]GroupTrendPoint{}, points...), points[0], points[2])
	assert.Equal(t, points, DedupeGroupTrend(merged))
}

func TestComputePlayerLongTail(t *testing.T) {
	snapshots, players := fixture()
	tail := ComputePlayerLongTail(snapshots, players, Filter{})
	require.Len(t, tail, 5)
	assert.Equal(t, "Anna", tail[0].PlayerName)
	assert.Equal(t, 2, tail[0].CheckInCount)
	assert.Equal(t, "Bo", tail[1].PlayerName)

	filtered := ComputePlayerLongTail(snapshots, players, Filter{Groups: []string{"Senior"}})
	require.Len(t, filtered, 2)
	assert.Equal(t, "B", filtered[0].PlayerID)
	assert.Equal(t, "D", filtered[1].PlayerID)
}

func TestCompareTrainingDays(t *testing.T) {
	tests := []struct {
		name     string
		weekdays []WeekdayAttendance
		want     *TrainingDayComparison
	}{
		{"no data", nil, nil},
		{"single day", []WeekdayAttendance{{Weekday: 1, CheckInCount: 4}}, nil},
		{"empty days are ignored", []WeekdayAttendance{{Weekday: 1, CheckInCount: 4}, {Weekday: 2}}, nil},
		{
			"top two",
			[]WeekdayAttendance{{Weekday: 1, CheckInCount: 8}, {Weekday: 3, CheckInCount: 12}, {Weekday: 4, CheckInCount: 2}},
			&TrainingDayComparison{
				Day1:                 WeekdayAttendance{Weekday: 3, CheckInCount: 12},
				Day2:                 WeekdayAttendance{Weekday: 1, CheckInCount: 8},
				Difference:           4,
				PercentageDifference: 50,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareTrainingDays(tt.weekdays))
		})
	}
}

func TestWeekdayName(t *testing.T) {
	assert.Equal(t, "Sunday", WeekdayName(time.Sunday, LocaleEnglish))
	assert.Equal(t, "Lørdag", WeekdayName(time.Saturday, LocaleDanish))
	assert.Equal(t, LocaleDanish, ParseLocale("fr"))
	assert.Equal(t, LocaleEnglish, ParseLocale("en"))
}

func TestAggregator(t *testing.T) {
	ctx := context.Background()
	snapshots, players := fixture()
	store := club.NewMock()
	store.Snapshots = snapshots
	store.Players = players
	metr := metrics.NewMock()
	agg := NewAggregator(store, metr, LocaleEnglish)

	result, err := agg.GroupAttendance(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, result.Groups, 2)

	tail, err := agg.PlayerLongTail(ctx, Filter{}, 1)
	require.NoError(t, err)
	assert.Len(t, tail, 1)

	cmp, err := agg.TrainingDayComparison(ctx, Filter{})
	require.NoError(t, err)
	require.NotNil(t, cmp)
	assert.Equal(t, 3, cmp.Day1.Weekday)

	assert.Contains(t, metr.AnalyticsOperations(), "group_attendance")

	store.ListStatisticsSnapshotsFunc = func() ([]club.StatisticsSnapshot, error) {
		return nil, errors.New("db down")
	}
	_, err = agg.WeekdayAttendance(ctx, Filter{})
	require.Error(t, err)
}
