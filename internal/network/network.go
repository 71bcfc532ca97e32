package network

import (
	"math"
	"sort"

	"github.com/marchalgreen/Rundeklar-sub002/internal/attendance"
	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/season"
	"github.com/marchalgreen/Rundeklar-sub002/internal/teams"
)

// corpus is the loaded state every network statistic is computed from.
type corpus struct {
	snapshots []club.StatisticsSnapshot
	players   map[string]club.Player
	results   map[string]club.MatchResult
	courts    map[string]int
}

func newCorpus(snapshots []club.StatisticsSnapshot, players []club.Player, results []club.MatchResult, courts []club.Court) *corpus {
	c := &corpus{
		snapshots: snapshots,
		players:   make(map[string]club.Player, len(players)),
		results:   make(map[string]club.MatchResult, len(results)),
		courts:    make(map[string]int, len(courts)),
	}
	for _, p := range players {
		c.players[p.ID] = p
	}
	// Snapshotted results and courts survive a reset of the live tables.
	// Live rows win, so a result recorded after the session ended counts.
	for _, snap := range snapshots {
		for _, r := range snap.MatchResults {
			c.results[r.MatchID] = r
		}
		for _, ct := range snap.Courts {
			c.courts[ct.ID] = ct.Idx
		}
	}
	for _, r := range results {
		c.results[r.MatchID] = r
	}
	for _, ct := range courts {
		c.courts[ct.ID] = ct.Idx
	}
	return c
}

func (c *corpus) name(playerID string) string {
	if p, ok := c.players[playerID]; ok && p.Name != "" {
		return p.Name
	}
	return playerID
}

func (c *corpus) names(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.name(id))
	}
	return out
}

func seasonOf(snap club.StatisticsSnapshot) string {
	if snap.Season != "" {
		return snap.Season
	}
	label, err := season.Of(snap.SessionDate)
	if err != nil {
		return ""
	}
	return label
}

func (f StatsFilter) includes(snap club.StatisticsSnapshot) bool {
	if f.Season != "" && seasonOf(snap) != f.Season {
		return false
	}
	return attendance.Filter{DateFrom: f.DateFrom, DateTo: f.DateTo}.IncludesDate(snap.SessionDate)
}

// matches returns every snapshotted match passing filter with its teams.
func (c *corpus) matches(filter StatsFilter) []playedMatch {
	var out []playedMatch
	seen := make(map[string]struct{})
	for _, snap := range c.snapshots {
		if !filter.includes(snap) {
			continue
		}
		byMatch := teams.GroupByMatch(snap.MatchPlayers)

		ordered := make([]club.Match, 0, len(byMatch))
		known := make(map[string]struct{}, len(snap.Matches))
		for _, m := range snap.Matches {
			known[m.ID] = struct{}{}
			if _, ok := byMatch[m.ID]; ok {
				ordered = append(ordered, m)
			}
		}
		// Slot assignments whose match row is missing still count.
		var orphans []string
		for id := range byMatch {
			if _, ok := known[id]; !ok {
				orphans = append(orphans, id)
			}
		}
		sort.Strings(orphans)
		for _, id := range orphans {
			ordered = append(ordered, club.Match{ID: id, SessionID: snap.SessionID})
		}

		for _, m := range ordered {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			out = append(out, playedMatch{
				match:       m,
				sessionID:   snap.SessionID,
				sessionDate: snap.SessionDate,
				season:      seasonOf(snap),
				teams:       teams.Resolve(byMatch[m.ID]),
			})
		}
	}
	return out
}

// tally counts the partners and opponents of playerID across matches.
func tally(matches []playedMatch, playerID string) (partners, opponents map[string]int) {
	partners = make(map[string]int)
	opponents = make(map[string]int)
	for _, m := range matches {
		team := m.teams.TeamOf(playerID)
		if team == "" {
			continue
		}
		for _, id := range m.teams.Members(team) {
			if id != playerID {
				partners[id]++
			}
		}
		for _, id := range m.teams.Members(team.Opponent()) {
			opponents[id]++
		}
	}
	return partners, opponents
}

// rank sorts counts descending and truncates to a positive limit.
func (c *corpus) rank(counts map[string]int, limit int) []PlayerCount {
	out := make([]PlayerCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, PlayerCount{PlayerID: id, PlayerName: c.name(id), Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].PlayerName != out[j].PlayerName {
			return out[i].PlayerName < out[j].PlayerName
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// decided returns the result of a match if it names a winner.
func (c *corpus) decided(matchID string) (club.MatchResult, bool) {
	r, ok := c.results[matchID]
	if !ok || (r.WinnerTeam != club.Team1 && r.WinnerTeam != club.Team2) {
		return club.MatchResult{}, false
	}
	return r, true
}

// shared returns the matches both players took part in, newest first.
func (c *corpus) shared(p1, p2 string) []SharedMatch {
	out := []SharedMatch{}
	for _, m := range c.matches(StatsFilter{}) {
		t1, t2 := m.teams.TeamOf(p1), m.teams.TeamOf(p2)
		if t1 == "" || t2 == "" {
			continue
		}
		sm := SharedMatch{
			MatchID:     m.match.ID,
			SessionID:   m.sessionID,
			SessionDate: m.sessionDate,
			SameTeam:    t1 == t2,
		}
		if r, ok := c.decided(m.match.ID); ok {
			won := r.WinnerTeam == t1
			score := r.ScoreData
			sm.Won = &won
			sm.Sport = r.Sport
			sm.ScoreData = &score
		}
		if len(m.teams.Team1) >= 2 && len(m.teams.Team2) >= 2 {
			var partners []string
			for _, id := range m.teams.Members(t1) {
				if id != p1 {
					partners = append(partners, id)
				}
			}
			sm.Partners = c.names(partners)
			sm.Opponents = c.names(m.teams.Members(t1.Opponent()))
		}
		out = append(out, sm)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return datePrefix(out[i].SessionDate) > datePrefix(out[j].SessionDate)
	})
	return out
}

func (c *corpus) comparison(p1, p2 club.Player) Comparison {
	cmp := Comparison{
		Player1ID:   p1.ID,
		Player1Name: p1.Name,
		Player2ID:   p2.ID,
		Player2Name: p2.Name,
		Matches:     c.shared(p1.ID, p2.ID),
	}
	for _, m := range cmp.Matches {
		if m.SameTeam {
			cmp.MatchesTogether++
			if m.Won != nil && *m.Won {
				cmp.WinsTogether++
			}
			continue
		}
		cmp.MatchesAgainst++
		if m.Won == nil {
			continue
		}
		if *m.Won {
			cmp.Player1Wins++
		} else {
			cmp.Player2Wins++
		}
	}
	return cmp
}

func (c *corpus) headToHead(p1, p2 string) HeadToHead {
	h2h := HeadToHead{Player1ID: p1, Player2ID: p2, Matches: []SharedMatch{}}
	for _, m := range c.shared(p1, p2) {
		if m.SameTeam {
			continue
		}
		h2h.TotalMatches++
		h2h.Matches = append(h2h.Matches, m)
		if m.Won == nil {
			continue
		}
		if *m.Won {
			h2h.Player1Wins++
		} else {
			h2h.Player2Wins++
		}
	}
	return h2h
}

func (c *corpus) statistics(player club.Player, filter StatsFilter, limit int) PlayerStatistics {
	stats := PlayerStatistics{
		PlayerID:         player.ID,
		PlayerName:       player.Name,
		CheckInsBySeason: map[string]int{},
		MatchesBySeason:  map[string]int{},
	}

	for _, snap := range c.snapshots {
		if !filter.includes(snap) {
			continue
		}
		for _, ci := range snap.CheckIns {
			if ci.PlayerID == player.ID {
				stats.TotalCheckIns++
				stats.CheckInsBySeason[seasonOf(snap)]++
			}
		}
	}

	matches := c.matches(filter)
	partners, opponents := tally(matches, player.ID)
	stats.TopPartners = c.rank(partners, limit)
	stats.TopOpponents = c.rank(opponents, limit)
	stats.AverageLevelDifferencePartners = c.levelDifference(player, partners)
	stats.AverageLevelDifferenceOpponents = c.levelDifference(player, opponents)

	var single, double bool
	var last string
	courts := make(map[int]int)
	decided, scoreDiff := 0, 0
	for _, m := range matches {
		team := m.teams.TeamOf(player.ID)
		if team == "" {
			continue
		}
		stats.TotalMatches++
		stats.MatchesBySeason[m.season]++

		switch size := m.teams.Size(); {
		case size == 2:
			single = true
		case size >= 3:
			double = true
		}
		if idx, ok := c.courts[m.match.CourtID]; ok {
			courts[idx]++
		}
		if d := datePrefix(m.sessionDate); d > last {
			last = d
		}

		r, ok := c.decided(m.match.ID)
		if !ok {
			continue
		}
		decided++
		if r.WinnerTeam == team {
			stats.TotalWins++
		} else {
			stats.TotalLosses++
		}
		scoreDiff += r.ScoreData.PointDifference(team)
	}

	stats.PreferredCategory = category(single, double)
	stats.MostPlayedCourt = mode(courts)
	if last != "" {
		stats.LastPlayedDate = &last
	}
	if decided > 0 {
		stats.WinRate = attendance.Round1(float64(stats.TotalWins) / float64(decided) * 100)
		stats.AverageScoreDifference = attendance.Round1(float64(scoreDiff) / float64(decided))
	}
	return stats
}

// levelDifference averages other players' level minus the player's level,
// weighted by how often they met. Unrated players are skipped.
func (c *corpus) levelDifference(player club.Player, counts map[string]int) *float64 {
	if player.Level == nil {
		return nil
	}
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sum float64
	weight := 0
	for _, id := range ids {
		other, ok := c.players[id]
		if !ok || other.Level == nil {
			continue
		}
		sum += float64(counts[id]) * (*other.Level - *player.Level)
		weight += counts[id]
	}
	if weight == 0 {
		return nil
	}
	v := math.Round(sum/float64(weight)*100) / 100
	return &v
}

func category(single, double bool) *Category {
	var c Category
	switch {
	case single && double:
		c = CategoryMixed
	case single:
		c = CategorySingle
	case double:
		c = CategoryDouble
	default:
		return nil
	}
	return &c
}

// mode returns the most frequent court index; ties go to the lower index.
func mode(counts map[int]int) *int {
	best, bestCount := 0, 0
	for idx, n := range counts {
		if n > bestCount || (n == bestCount && idx < best) {
			best, bestCount = idx, n
		}
	}
	if bestCount == 0 {
		return nil
	}
	return &best
}

func datePrefix(date string) string {
	if len(date) > 10 {
		return date[:10]
	}
	return date
}
