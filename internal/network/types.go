package network

import (
	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/metrics"
	"github.com/marchalgreen/Rundeklar-sub002/internal/teams"
)

// DefaultLimit is the number of partners and opponents in player statistics.
const DefaultLimit = 5

// Category is the kind of match a player prefers.
type Category string

const (
	CategorySingle Category = "single"
	CategoryDouble Category = "double"
	CategoryMixed  Category = "mixed"
)

// PlayerCount is how often a player appeared next to or against another.
type PlayerCount struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Count      int    `json:"count"`
}

// SharedMatch is one match both compared players took part in. Won is
// player one's outcome and is nil without a recorded result.
type SharedMatch struct {
	MatchID     string          `json:"matchId"`
	SessionID   string          `json:"sessionId"`
	SessionDate string          `json:"sessionDate"`
	SameTeam    bool            `json:"sameTeam"`
	Won         *bool           `json:"won,omitempty"`
	Sport       club.Sport      `json:"sport,omitempty"`
	ScoreData   *club.ScoreData `json:"scoreData,omitempty"`
	Partners    []string        `json:"partners,omitempty"`
	Opponents   []string        `json:"opponents,omitempty"`
}

// Comparison summarises every match two players shared.
type Comparison struct {
	Player1ID       string        `json:"player1Id"`
	Player1Name     string        `json:"player1Name"`
	Player2ID       string        `json:"player2Id"`
	Player2Name     string        `json:"player2Name"`
	MatchesTogether int           `json:"matchesTogether"`
	MatchesAgainst  int           `json:"matchesAgainst"`
	WinsTogether    int           `json:"winsTogether"`
	Player1Wins     int           `json:"player1Wins"`
	Player2Wins     int           `json:"player2Wins"`
	Matches         []SharedMatch `json:"matches"`
}

// HeadToHead is the record of two players on opposing teams.
type HeadToHead struct {
	Player1ID    string        `json:"player1Id"`
	Player2ID    string        `json:"player2Id"`
	TotalMatches int           `json:"totalMatches"`
	Player1Wins  int           `json:"player1Wins"`
	Player2Wins  int           `json:"player2Wins"`
	Matches      []SharedMatch `json:"matches"`
}

// StatsFilter narrows player statistics to a season and date range.
type StatsFilter struct {
	Season   string `json:"season,omitempty"`
	DateFrom string `json:"dateFrom,omitempty"`
	DateTo   string `json:"dateTo,omitempty"`
}

// PlayerStatistics is the composite profile of one player.
type PlayerStatistics struct {
	PlayerID                        string         `json:"playerId"`
	PlayerName                      string         `json:"playerName"`
	TotalCheckIns                   int            `json:"totalCheckIns"`
	CheckInsBySeason                map[string]int `json:"checkInsBySeason"`
	TotalMatches                    int            `json:"totalMatches"`
	MatchesBySeason                 map[string]int `json:"matchesBySeason"`
	TopPartners                     []PlayerCount  `json:"topPartners"`
	TopOpponents                    []PlayerCount  `json:"topOpponents"`
	PreferredCategory               *Category      `json:"preferredCategory"`
	AverageLevelDifferencePartners  *float64       `json:"averageLevelDifferencePartners"`
	AverageLevelDifferenceOpponents *float64       `json:"averageLevelDifferenceOpponents"`
	MostPlayedCourt                 *int           `json:"mostPlayedCourt"`
	LastPlayedDate                  *string        `json:"lastPlayedDate"`
	TotalWins                       int            `json:"totalWins"`
	TotalLosses                     int            `json:"totalLosses"`
	WinRate                         float64        `json:"winRate"`
	AverageScoreDifference          float64        `json:"averageScoreDifference"`
}

// playedMatch is a snapshotted match with its resolved teams.
type playedMatch struct {
	match       club.Match
	sessionID   string
	sessionDate string
	season      string
	teams       teams.Structure
}

// Analyzer computes player network statistics from stored snapshots.
type Analyzer struct {
	store   club.Store
	metrics metrics.Metrics
}
