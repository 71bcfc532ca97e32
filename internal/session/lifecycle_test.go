package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/marchalgreen/Rundeklar-sub002/internal/attendance"
	"github.com/marchalgreen/Rundeklar-sub002/internal/cache"
	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/database"
	"github.com/marchalgreen/Rundeklar-sub002/internal/metrics"
	"github.com/marchalgreen/Rundeklar-sub002/internal/network"
	"github.com/marchalgreen/Rundeklar-sub002/internal/notifier"
	"github.com/marchalgreen/Rundeklar-sub002/internal/pubsub"
	"github.com/marchalgreen/Rundeklar-sub002/internal/session"
	"github.com/marchalgreen/Rundeklar-sub002/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A Wednesday session with three check-ins and one singles match won by A.
func TestSessionToStatistics(t *testing.T) {
	ctx := context.Background()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	defer teardown()

	metr := metrics.NewMock()
	store := cache.New(club.New(db), metr)
	for _, p := range []club.Player{
		{ID: "A", Name: "Anna", TrainingGroups: []string{"U15"}, Active: true},
		{ID: "B", Name: "Bo", TrainingGroups: []string{"U15"}, Active: true},
		{ID: "C", Name: "Carl", TrainingGroups: []string{}, Active: true},
	} {
		require.NoError(t, store.UpsertPlayer(ctx, p))
	}
	require.NoError(t, store.UpsertCourt(ctx, club.Court{ID: "court1", Idx: 1}))

	builder := snapshot.New(store, metr, pubsub.NewMock())
	notif := notifier.NewMock()
	svc := session.New(store, builder, notif, metr, 12*time.Hour)

	sess, err := svc.StartSession(ctx, "2024-09-04")
	require.NoError(t, err)
	for _, id := range []string{"A", "B", "C"} {
		_, created, err := svc.CheckIn(ctx, session.CheckInRequest{SessionID: sess.ID, PlayerID: id})
		require.NoError(t, err)
		require.True(t, created)
	}

	require.NoError(t, store.CreateMatch(ctx, club.Match{ID: "m1", SessionID: sess.ID, CourtID: "court1", Round: 1, StartedAt: time.Now()}))
	require.NoError(t, store.CreateMatchPlayer(ctx, club.MatchPlayer{ID: "mp1", MatchID: "m1", PlayerID: "A", Slot: 0}))
	require.NoError(t, store.CreateMatchPlayer(ctx, club.MatchPlayer{ID: "mp2", MatchID: "m1", PlayerID: "B", Slot: 1}))
	_, err = store.UpsertMatchResult(ctx, club.MatchResult{
		ID: "r1", MatchID: "m1", Sport: club.SportBadminton, WinnerTeam: club.Team1,
		ScoreData: club.ScoreData{Sets: []club.SetScore{{Team1: 21, Team2: 17}, {Team1: 21, Team2: 19}}},
	})
	require.NoError(t, err)

	_, err = svc.EndSession(ctx, sess.ID)
	require.NoError(t, err)

	snap, err := builder.SnapshotSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, snap.CheckIns, 3)
	assert.Len(t, snap.Matches, 1)
	assert.Equal(t, "2024-2025", snap.Season)
	assert.Equal(t, 1, metr.SnapshotsCreated(), "The second call must return the stored snapshot")

	agg := attendance.NewAggregator(store, metr, attendance.LocaleEnglish)
	groups, err := agg.GroupAttendance(ctx, attendance.Filter{})
	require.NoError(t, err)
	require.Len(t, groups.Groups, 1)
	assert.Equal(t, attendance.GroupAttendance{GroupName: "U15", CheckInCount: 2, UniquePlayers: 2, Sessions: 1, AverageAttendance: 2.0}, groups.Groups[0])

	weekdays, err := agg.WeekdayAttendance(ctx, attendance.Filter{})
	require.NoError(t, err)
	require.Len(t, weekdays, 1)
	assert.Equal(t, "Wednesday", weekdays[0].WeekdayName)
	assert.Equal(t, 3, weekdays[0].CheckInCount)

	stats, err := network.NewAnalyzer(store, metr).PlayerStatistics(ctx, "A", network.StatsFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalMatches)
	assert.Equal(t, 1, stats.TotalWins)
	assert.Equal(t, 100.0, stats.WinRate)

	summaries := notif.SessionSummaries()
	require.Len(t, summaries, 1)
	assert.Equal(t, 3, summaries[0].CheckIns)

	// Live rows changing afterwards leaves history untouched.
	require.NoError(t, svc.Checkout(ctx, sess.ID, "C"))
	groups, err = agg.GroupAttendance(ctx, attendance.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, groups.Groups[0].CheckInCount)
}
