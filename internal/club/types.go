package club

import (
	"database/sql"
	"encoding/json"
	"sync"
	"time"
)

// store handles all database operations for the club.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// SessionStatus is the lifecycle state of a training session.
type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionEnded  SessionStatus = "ended"
)

// Session is one training/club event.
type Session struct {
	ID        string        `json:"id"`
	Date      string        `json:"date"` // ISO-8601, calendar logic uses the YYYY-MM-DD prefix
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// MaxNotesLength is the longest check-in note accepted, in characters.
const MaxNotesLength = 500

// CheckIn records that a player attended a session.
type CheckIn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	PlayerID  string    `json:"playerId"`
	CreatedAt time.Time `json:"createdAt"`
	MaxRounds *int      `json:"maxRounds,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
}

type Court struct {
	ID  string `json:"id"`
	Idx int    `json:"idx"`
}

type Match struct {
	ID        string     `json:"id"`
	SessionID string     `json:"sessionId"`
	CourtID   string     `json:"courtId"`
	Round     int        `json:"round"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

// MatchPlayer places a player in a slot of a match. Slots are 0-based and
// decide the team structure.
type MatchPlayer struct {
	ID       string `json:"id"`
	MatchID  string `json:"matchId"`
	PlayerID string `json:"playerId"`
	Slot     int    `json:"slot"`
}

// Sport played in a match.
type Sport string

const (
	SportBadminton Sport = "badminton"
	SportTennis    Sport = "tennis"
	SportPadel     Sport = "padel"
)

// Team identifies one side of a match.
type Team string

const (
	Team1 Team = "team1"
	Team2 Team = "team2"
)

// Opponent returns the other side.
func (t Team) Opponent() Team {
	switch t {
	case Team1:
		return Team2
	case Team2:
		return Team1
	}
	return ""
}

// SetScore is the points (badminton) or games (tennis, padel) per side in one set.
type SetScore struct {
	Team1 int `json:"team1"`
	Team2 int `json:"team2"`
}

// ScoreData is the structured score payload shared by all supported sports.
type ScoreData struct {
	Sets []SetScore `json:"sets"`
}

// PointDifference returns the summed score of team minus the summed score of
// its opponent across all sets.
func (s ScoreData) PointDifference(team Team) int {
	diff := 0
	for _, set := range s.Sets {
		diff += set.Team1 - set.Team2
	}
	if team == Team2 {
		return -diff
	}
	return diff
}

// MatchResult is the recorded outcome of a match. There is at most one per match.
type MatchResult struct {
	ID         string    `json:"id"`
	MatchID    string    `json:"matchId"`
	Sport      Sport     `json:"sport"`
	ScoreData  ScoreData `json:"scoreData"`
	WinnerTeam Team      `json:"winnerTeam"`
}

// Player is a club member.
type Player struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Level          *float64 `json:"level,omitempty"`
	TrainingGroups []string `json:"trainingGroups"`
	Active         bool     `json:"active"`
}

// InGroup reports whether the player belongs to the named training group.
func (p Player) InGroup(group string) bool {
	for _, g := range p.TrainingGroups {
		if g == group {
			return true
		}
	}
	return false
}

// StatisticsSnapshot is the immutable record of an ended session. It is the
// only input for historical analytics.
type StatisticsSnapshot struct {
	ID           string        `json:"id"`
	SessionID    string        `json:"sessionId"`
	SessionDate  string        `json:"sessionDate"`
	Season       string        `json:"season"`
	Matches      []Match       `json:"matches"`
	MatchPlayers []MatchPlayer `json:"matchPlayers"`
	CheckIns     []CheckIn     `json:"checkIns"`
	// MatchResults and Courts are those of the snapshotted matches. Older
	// snapshots have neither.
	MatchResults []MatchResult `json:"matchResults"`
	Courts       []Court       `json:"courts"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// rawCheckIn is the on-disk shape of a snapshotted check-in. Older revisions
// wrote the player id as player_id.
type rawCheckIn struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"sessionId"`
	PlayerID       string    `json:"playerId"`
	LegacyPlayerID string    `json:"player_id"`
	CreatedAt      time.Time `json:"createdAt"`
	MaxRounds      *int      `json:"maxRounds,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
}

var _ json.Unmarshaler = (*CheckIn)(nil)
