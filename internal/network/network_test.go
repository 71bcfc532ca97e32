package network

import (
	"context"
	"testing"

	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func level(v float64) *float64 { return &v }

func slots(matchID string, playerIDs ...string) []club.MatchPlayer {
	out := make([]club.MatchPlayer, 0, len(playerIDs))
	for i, id := range playerIDs {
		out = append(out, club.MatchPlayer{ID: matchID + id, MatchID: matchID, PlayerID: id, Slot: i})
	}
	return out
}

func checkIns(sessionID string, playerIDs ...string) []club.CheckIn {
	out := make([]club.CheckIn, 0, len(playerIDs))
	for _, id := range playerIDs {
		out = append(out, club.CheckIn{ID: sessionID + id, SessionID: sessionID, PlayerID: id})
	}
	return out
}

func seededStore() *club.MockStore {
	store := club.NewMock()
	store.Players = []club.Player{
		{ID: "A", Name: "Anna", Level: level(3)},
		{ID: "B", Name: "Bo", Level: level(4)},
		{ID: "C", Name: "Carl", Level: level(2)},
		{ID: "D", Name: "Dina"},
		{ID: "E", Name: "Emil", Level: level(5)},
		{ID: "F", Name: "Frida"},
	}
	store.Courts = []club.Court{{ID: "court1", Idx: 1}, {ID: "court2", Idx: 2}}
	store.Snapshots = []club.StatisticsSnapshot{
		{
			ID: "snap1", SessionID: "s1", SessionDate: "2024-09-04", Season: "2024-2025",
			CheckIns:     checkIns("s1", "A", "B"),
			Matches:      []club.Match{{ID: "m1", SessionID: "s1", CourtID: "court1"}},
			MatchPlayers: slots("m1", "A", "B"),
		},
		{
			ID: "snap2", SessionID: "s2", SessionDate: "2024-10-02", Season: "2024-2025",
			CheckIns: checkIns("s2", "A", "B", "C", "D", "E"),
			Matches: []club.Match{
				{ID: "m2", SessionID: "s2", CourtID: "court2", Round: 1},
				{ID: "m3", SessionID: "s2", CourtID: "court2", Round: 2},
			},
			MatchPlayers: append(slots("m2", "A", "C", "B", "D"), slots("m3", "A", "B", "C", "E")...),
		},
		{
			// Season left empty on purpose; it is derived from the date.
			ID: "snap3", SessionID: "s3", SessionDate: "2023-11-01",
			CheckIns:     checkIns("s3", "A", "C"),
			Matches:      []club.Match{{ID: "m4", SessionID: "s3", CourtID: "court1"}},
			MatchPlayers: slots("m4", "A", "C"),
		},
	}
	store.MatchResults = []club.MatchResult{
		{ID: "r1", MatchID: "m1", Sport: club.SportBadminton, WinnerTeam: club.Team1,
			ScoreData: club.ScoreData{Sets: []club.SetScore{{Team1: 21, Team2: 15}, {Team1: 21, Team2: 18}}}},
		{ID: "r2", MatchID: "m2", Sport: club.SportBadminton, WinnerTeam: club.Team2,
			ScoreData: club.ScoreData{Sets: []club.SetScore{{Team1: 15, Team2: 21}}}},
		{ID: "r4", MatchID: "m4", Sport: club.SportBadminton, WinnerTeam: club.Team1,
			ScoreData: club.ScoreData{Sets: []club.SetScore{{Team1: 21, Team2: 10}}}},
	}
	return store
}

func TestTopPartnersAndOpponents(t *testing.T) {
	ctx := context.Background()
	analyzer := NewAnalyzer(seededStore(), metrics.NewMock())

	partners, err := analyzer.TopPartners(ctx, "A", 10)
	require.NoError(t, err)
	assert.Equal(t, []PlayerCount{
		{PlayerID: "B", PlayerName: "Bo", Count: 1},
		{PlayerID: "C", PlayerName: "Carl", Count: 1},
	}, partners)

	opponents, err := analyzer.TopOpponents(ctx, "A", 2)
	require.NoError(t, err)
	assert.Equal(t, []PlayerCount{
		{PlayerID: "B", PlayerName: "Bo", Count: 2},
		{PlayerID: "C", PlayerName: "Carl", Count: 2},
	}, opponents)

	none, err := analyzer.TopPartners(ctx, "F", 5)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = analyzer.TopOpponents(ctx, "nobody", 5)
	assert.True(t, club.IsNotFound(err))
}

func TestPlayerComparison(t *testing.T) {
	ctx := context.Background()
	analyzer := NewAnalyzer(seededStore(), metrics.NewMock())

	cmp, err := analyzer.PlayerComparison(ctx, "A", "B")
	require.NoError(t, err)
	assert.Equal(t, "Anna", cmp.Player1Name)
	assert.Equal(t, 1, cmp.MatchesTogether)
	assert.Equal(t, 2, cmp.MatchesAgainst)
	assert.Equal(t, 1, cmp.Player1Wins)
	assert.Equal(t, 1, cmp.Player2Wins)
	assert.Equal(t, 0, cmp.WinsTogether)

	require.Len(t, cmp.Matches, 3)
	assert.Equal(t, "m2", cmp.Matches[0].MatchID, "Newest session first")
	assert.Equal(t, "m3", cmp.Matches[1].MatchID)
	assert.Equal(t, "m1", cmp.Matches[2].MatchID)

	doubles := cmp.Matches[0]
	assert.False(t, doubles.SameTeam)
	require.NotNil(t, doubles.Won)
	assert.False(t, *doubles.Won)
	assert.Equal(t, []string{"Carl"}, doubles.Partners)
	assert.Equal(t, []string{"Bo", "Dina"}, doubles.Opponents)

	assert.True(t, cmp.Matches[1].SameTeam)
	assert.Nil(t, cmp.Matches[1].Won)
	assert.Nil(t, cmp.Matches[2].Partners, "Singles carry no partner list")

	_, err = analyzer.PlayerComparison(ctx, "A", "A")
	assert.True(t, club.IsValidation(err))
}

func TestHeadToHead(t *testing.T) {
	ctx := context.Background()
	analyzer := NewAnalyzer(seededStore(), metrics.NewMock())

	h2h, err := analyzer.HeadToHead(ctx, "A", "B")
	require.NoError(t, err)
	assert.Equal(t, 2, h2h.TotalMatches)
	assert.Equal(t, 1, h2h.Player1Wins)
	assert.Equal(t, 1, h2h.Player2Wins)
	require.Len(t, h2h.Matches, 2)
	assert.Equal(t, "m2", h2h.Matches[0].MatchID)
	assert.Equal(t, "m1", h2h.Matches[1].MatchID)

	reversed, err := analyzer.HeadToHead(ctx, "B", "A")
	require.NoError(t, err)
	assert.Equal(t, h2h.Player1Wins, reversed.Player2Wins)

	empty, err := analyzer.HeadToHead(ctx, "A", "F")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalMatches)
	assert.Empty(t, empty.Matches)

	_, err = analyzer.HeadToHead(ctx, "A", "nobody")
	assert.True(t, club.IsNotFound(err))
}

func TestPlayerStatistics(t *testing.T) {
	ctx := context.Background()
	metr := metrics.NewMock()
	analyzer := NewAnalyzer(seededStore(), metr)

	t.Run("all seasons", func(t *testing.T) {
		stats, err := analyzer.PlayerStatistics(ctx, "A", StatsFilter{})
		require.NoError(t, err)
		assert.Equal(t, 3, stats.TotalCheckIns)
		assert.Equal(t, map[string]int{"2024-2025": 2, "2023-2024": 1}, stats.CheckInsBySeason)
		assert.Equal(t, 4, stats.TotalMatches)
		assert.Equal(t, map[string]int{"2024-2025": 3, "2023-2024": 1}, stats.MatchesBySeason)
		require.NotNil(t, stats.PreferredCategory)
		assert.Equal(t, CategoryMixed, *stats.PreferredCategory)
		require.NotNil(t, stats.MostPlayedCourt)
		assert.Equal(t, 1, *stats.MostPlayedCourt, "Ties go to the lower court")
		require.NotNil(t, stats.LastPlayedDate)
		assert.Equal(t, "2024-10-02", *stats.LastPlayedDate)
		assert.Equal(t, 2, stats.TotalWins)
		assert.Equal(t, 1, stats.TotalLosses)
		assert.Equal(t, 66.7, stats.WinRate)
		assert.Equal(t, 4.7, stats.AverageScoreDifference)
		require.NotNil(t, stats.AverageLevelDifferencePartners)
		assert.Equal(t, 0.0, *stats.AverageLevelDifferencePartners)
		require.NotNil(t, stats.AverageLevelDifferenceOpponents)
		assert.Equal(t, 0.4, *stats.AverageLevelDifferenceOpponents)
		assert.Len(t, stats.TopOpponents, 4)
	})

	t.Run("season filter", func(t *testing.T) {
		stats, err := analyzer.PlayerStatistics(ctx, "A", StatsFilter{Season: "2023-2024"})
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalCheckIns)
		assert.Equal(t, 1, stats.TotalMatches)
		require.NotNil(t, stats.PreferredCategory)
		assert.Equal(t, CategorySingle, *stats.PreferredCategory)
		assert.Equal(t, 100.0, stats.WinRate)
		assert.Equal(t, "2023-11-01", *stats.LastPlayedDate)
	})

	t.Run("date filter", func(t *testing.T) {
		stats, err := analyzer.PlayerStatistics(ctx, "A", StatsFilter{DateFrom: "2024-10-01"})
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalMatches)
		assert.Equal(t, CategoryDouble, *stats.PreferredCategory)
		assert.Equal(t, 2, *stats.MostPlayedCourt)
	})

	t.Run("player without matches", func(t *testing.T) {
		stats, err := analyzer.PlayerStatistics(ctx, "F", StatsFilter{})
		require.NoError(t, err)
		assert.Equal(t, 0, stats.TotalMatches)
		assert.Equal(t, 0.0, stats.WinRate)
		assert.Nil(t, stats.PreferredCategory)
		assert.Nil(t, stats.MostPlayedCourt)
		assert.Nil(t, stats.LastPlayedDate)
		assert.Nil(t, stats.AverageLevelDifferencePartners)
		assert.NotNil(t, stats.TopPartners)
	})

	t.Run("unknown player", func(t *testing.T) {
		_, err := analyzer.PlayerStatistics(ctx, "nobody", StatsFilter{})
		assert.True(t, club.IsNotFound(err))
	})

	assert.Contains(t, metr.AnalyticsOperations(), "player_statistics")
}

// frozenStore moves every result and court into the snapshots that reference
// them and empties the live tables, as after a reset.
func frozenStore() *club.MockStore {
	store := seededStore()
	results := make(map[string]club.MatchResult, len(store.MatchResults))
	for _, r := range store.MatchResults {
		results[r.MatchID] = r
	}
	courts := make(map[string]club.Court, len(store.Courts))
	for _, ct := range store.Courts {
		courts[ct.ID] = ct
	}
	for i := range store.Snapshots {
		snap := &store.Snapshots[i]
		seen := map[string]bool{}
		for _, m := range snap.Matches {
			if r, ok := results[m.ID]; ok {
				snap.MatchResults = append(snap.MatchResults, r)
			}
			if ct, ok := courts[m.CourtID]; ok && !seen[ct.ID] {
				seen[ct.ID] = true
				snap.Courts = append(snap.Courts, ct)
			}
		}
	}
	store.MatchResults = nil
	store.Courts = nil
	return store
}

func TestPlayerStatistics_SurvivesLiveReset(t *testing.T) {
	ctx := context.Background()
	analyzer := NewAnalyzer(frozenStore(), metrics.NewMock())

	stats, err := analyzer.PlayerStatistics(ctx, "A", StatsFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalWins)
	assert.Equal(t, 1, stats.TotalLosses)
	assert.Equal(t, 66.7, stats.WinRate)
	assert.Equal(t, 4.7, stats.AverageScoreDifference)
	require.NotNil(t, stats.MostPlayedCourt)
	assert.Equal(t, 1, *stats.MostPlayedCourt)

	h2h, err := analyzer.HeadToHead(ctx, "A", "B")
	require.NoError(t, err)
	assert.Equal(t, 1, h2h.Player1Wins)
}

func TestPlayerStatistics_LiveResultOverridesSnapshot(t *testing.T) {
	ctx := context.Background()
	store := frozenStore()
	// m1 was corrected after the session ended: B won.
	store.MatchResults = []club.MatchResult{{
		ID:         "r1",
		MatchID:    "m1",
		Sport:      club.SportBadminton,
		ScoreData:  club.ScoreData{Sets: []club.SetScore{{Team1: 18, Team2: 21}}},
		WinnerTeam: club.Team2,
	}}
	analyzer := NewAnalyzer(store, metrics.NewMock())

	h2h, err := analyzer.HeadToHead(ctx, "A", "B")
	require.NoError(t, err)
	assert.Equal(t, 0, h2h.Player1Wins)
	assert.Equal(t, 2, h2h.Player2Wins)
}
