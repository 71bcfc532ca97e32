package teams

import (
	"sort"

	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
)

// Structure holds the two sides of a match as ordered player ids.
type Structure struct {
	Team1 []string
	Team2 []string
}

// Resolve derives the teams of one match from its slot assignments.
// Players are ordered by slot; two players are always opponents, otherwise
// the first ceil(n/2) slots form team1 and the rest team2. A single player
// yields an empty team2.
func Resolve(players []club.MatchPlayer) Structure {
	sorted := make([]club.MatchPlayer, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Slot < sorted[j].Slot
	})

	split := (len(sorted) + 1) / 2
	if len(sorted) == 2 {
		split = 1
	}

	s := Structure{Team1: []string{}, Team2: []string{}}
	for i, mp := range sorted {
		if i < split {
			s.Team1 = append(s.Team1, mp.PlayerID)
		} else {
			s.Team2 = append(s.Team2, mp.PlayerID)
		}
	}
	return s
}

// TeamOf returns the side playerID is on, or "" if the player did not play.
func (s Structure) TeamOf(playerID string) club.Team {
	for _, id := range s.Team1 {
		if id == playerID {
			return club.Team1
		}
	}
	for _, id := range s.Team2 {
		if id == playerID {
			return club.Team2
		}
	}
	return ""
}

// Members returns the players of one side.
func (s Structure) Members(team club.Team) []string {
	switch team {
	case club.Team1:
		return s.Team1
	case club.Team2:
		return s.Team2
	}
	return nil
}

// Size is the number of participants on both sides.
func (s Structure) Size() int {
	return len(s.Team1) + len(s.Team2)
}

// GroupByMatch buckets slot assignments by match id.
func GroupByMatch(matchPlayers []club.MatchPlayer) map[string][]club.MatchPlayer {
	byMatch := make(map[string][]club.MatchPlayer)
	for _, mp := range matchPlayers {
		byMatch[mp.MatchID] = append(byMatch[mp.MatchID], mp)
	}
	return byMatch
}
