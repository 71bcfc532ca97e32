package attendance

import (
	"math"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/season"
)

// Round1 rounds v to one decimal.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func average(count, sessions int) float64 {
	if sessions == 0 {
		return 0
	}
	return Round1(float64(count) / float64(sessions))
}

// datePrefix returns the YYYY-MM-DD part of an ISO date.
func datePrefix(date string) string {
	if len(date) > 10 {
		return date[:10]
	}
	return date
}

// IncludesDate reports whether date lies within the filter's date range.
func (f Filter) IncludesDate(date string) bool {
	d := datePrefix(date)
	if f.DateFrom != "" && d < datePrefix(f.DateFrom) {
		return false
	}
	if f.DateTo != "" && d > datePrefix(f.DateTo) {
		return false
	}
	return true
}

// AllowsGroup reports whether group passes the group filter.
func (f Filter) AllowsGroup(group string) bool {
	if len(f.Groups) == 0 {
		return true
	}
	for _, g := range f.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// groupsOf returns the player's groups that pass the filter.
func (f Filter) groupsOf(p club.Player) []string {
	out := make([]string, 0, len(p.TrainingGroups))
	seen := make(map[string]bool, len(p.TrainingGroups))
	for _, g := range p.TrainingGroups {
		if g == "" || seen[g] || !f.AllowsGroup(g) {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}

// counts reports whether a check-in by player counts for views that only
// honour the group filter. Without a filter every check-in counts.
func (f Filter) counts(p club.Player, known bool) bool {
	if len(f.Groups) == 0 {
		return true
	}
	return known && len(f.groupsOf(p)) > 0
}

// Snapshots returns the snapshots whose session date is in range.
func (f Filter) Snapshots(snapshots []club.StatisticsSnapshot) []club.StatisticsSnapshot {
	out := make([]club.StatisticsSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if f.IncludesDate(s.SessionDate) {
			out = append(out, s)
		}
	}
	return out
}

func indexPlayers(players []club.Player) map[string]club.Player {
	idx := make(map[string]club.Player, len(players))
	for _, p := range players {
		idx[p.ID] = p
	}
	return idx
}

type bucket struct {
	checkIns int
	players  map[string]struct{}
	sessions map[string]struct{}
}

func newBucket() *bucket {
	return &bucket{players: make(map[string]struct{}), sessions: make(map[string]struct{})}
}

func (b *bucket) add(sessionID, playerID string) {
	b.checkIns++
	b.players[playerID] = struct{}{}
	b.sessions[sessionID] = struct{}{}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ComputeGroupAttendance attributes every check-in to each training group of
// the player. Players without a matching group count towards no group.
func ComputeGroupAttendance(snapshots []club.StatisticsSnapshot, players []club.Player, filter Filter) GroupAttendanceResult {
	idx := indexPlayers(players)
	buckets := make(map[string]*bucket)

	for _, snap := range filter.Snapshots(snapshots) {
		for _, c := range snap.CheckIns {
			player, ok := idx[c.PlayerID]
			if !ok {
				continue
			}
			for _, g := range filter.groupsOf(player) {
				b, ok := buckets[g]
				if !ok {
					b = newBucket()
					buckets[g] = b
				}
				b.add(snap.SessionID, c.PlayerID)
			}
		}
	}

	result := GroupAttendanceResult{Groups: []GroupAttendance{}, SessionIDs: []string{}}
	union := make(map[string]struct{})
	for name, b := range buckets {
		result.Groups = append(result.Groups, GroupAttendance{
			GroupName:         name,
			CheckInCount:      b.checkIns,
			UniquePlayers:     len(b.players),
			Sessions:          len(b.sessions),
			AverageAttendance: average(b.checkIns, len(b.sessions)),
		})
		for id := range b.sessions {
			union[id] = struct{}{}
		}
	}
	sort.Slice(result.Groups, func(i, j int) bool {
		return result.Groups[i].GroupName < result.Groups[j].GroupName
	})
	result.SessionIDs = sortedKeys(union)
	result.TotalUniqueSessions = len(union)
	return result
}

// ComputeWeekdayAttendance buckets check-ins by the weekday of the session,
// sorted Monday to Sunday.
func ComputeWeekdayAttendance(snapshots []club.StatisticsSnapshot, players []club.Player, filter Filter, locale Locale) []WeekdayAttendance {
	idx := indexPlayers(players)
	buckets := make(map[int]*bucket)

	for _, snap := range filter.Snapshots(snapshots) {
		d, err := season.ParseDate(snap.SessionDate)
		if err != nil {
			log.Warn("Skipping snapshot with unreadable date", "snapshotID", snap.ID, "date", snap.SessionDate)
			continue
		}
		day := int(d.Weekday())
		for _, c := range snap.CheckIns {
			player, ok := idx[c.PlayerID]
			if !filter.counts(player, ok) {
				continue
			}
			b, ok := buckets[day]
			if !ok {
				b = newBucket()
				buckets[day] = b
			}
			b.add(snap.SessionID, c.PlayerID)
		}
	}

	out := make([]WeekdayAttendance, 0, len(buckets))
	for day, b := range buckets {
		out = append(out, WeekdayAttendance{
			Weekday:           day,
			WeekdayName:       WeekdayName(time.Weekday(day), locale),
			CheckInCount:      b.checkIns,
			Sessions:          len(b.sessions),
			AverageAttendance: average(b.checkIns, len(b.sessions)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return sortKey(out[i].Weekday) < sortKey(out[j].Weekday)
	})
	return out
}

// ComputeMonthlyTrend buckets check-ins by the year and month of the session.
func ComputeMonthlyTrend(snapshots []club.StatisticsSnapshot, players []club.Player, filter Filter) []MonthlyAttendance {
	idx := indexPlayers(players)
	buckets := make(map[string]*bucket)

	for _, snap := range filter.Snapshots(snapshots) {
		month, ok := monthOf(snap)
		if !ok {
			continue
		}
		for _, c := range snap.CheckIns {
			player, known := idx[c.PlayerID]
			if !filter.counts(player, known) {
				continue
			}
			b, ok := buckets[month]
			if !ok {
				b = newBucket()
				buckets[month] = b
			}
			b.add(snap.SessionID, c.PlayerID)
		}
	}

	out := make([]MonthlyAttendance, 0, len(buckets))
	for month, b := range buckets {
		out = append(out, MonthlyAttendance{
			Month:             month,
			CheckInCount:      b.checkIns,
			UniquePlayers:     len(b.players),
			Sessions:          len(b.sessions),
			AverageAttendance: average(b.checkIns, len(b.sessions)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// ComputeGroupTrend buckets check-ins by group and month jointly, with the
// same per-group attribution as ComputeGroupAttendance.
func ComputeGroupTrend(snapshots []club.StatisticsSnapshot, players []club.Player, filter Filter) []GroupTrendPoint {
	type key struct{ group, month string }
	idx := indexPlayers(players)
	buckets := make(map[key]*bucket)

	for _, snap := range filter.Snapshots(snapshots) {
		month, ok := monthOf(snap)
		if !ok {
			continue
		}
		for _, c := range snap.CheckIns {
			player, ok := idx[c.PlayerID]
			if !ok {
				continue
			}
			for _, g := range filter.groupsOf(player) {
				k := key{g, month}
				b, ok := buckets[k]
				if !ok {
					b = newBucket()
					buckets[k] = b
				}
				b.add(snap.SessionID, c.PlayerID)
			}
		}
	}

	out := make([]GroupTrendPoint, 0, len(buckets))
	for k, b := range buckets {
		out = append(out, GroupTrendPoint{
			GroupName:         k.group,
			Month:             k.month,
			CheckInCount:      b.checkIns,
			Sessions:          len(b.sessions),
			AverageAttendance: average(b.checkIns, len(b.sessions)),
		})
	}
	sortTrend(out)
	return out
}

func sortTrend(points []GroupTrendPoint) {
	sort.Slice(points, func(i, j int) bool {
		if points[i].GroupName != points[j].GroupName {
			return points[i].GroupName < points[j].GroupName
		}
		return points[i].Month < points[j].Month
	})
}

// DedupeGroupTrend keeps the first point of every (group, month) pair.
// Trend rows merged from several sources can repeat a pair.
func DedupeGroupTrend(points []GroupTrendPoint) []GroupTrendPoint {
	type key struct{ group, month string }
	seen := make(map[key]struct{}, len(points))
	out := make([]GroupTrendPoint, 0, len(points))
	for _, p := range points {
		k := key{p.GroupName, p.Month}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	sortTrend(out)
	return out
}

// ComputePlayerLongTail counts check-ins per player, most frequent first.
func ComputePlayerLongTail(snapshots []club.StatisticsSnapshot, players []club.Player, filter Filter) []PlayerAttendance {
	idx := indexPlayers(players)
	counts := make(map[string]int)

	for _, snap := range filter.Snapshots(snapshots) {
		for _, c := range snap.CheckIns {
			player, ok := idx[c.PlayerID]
			if !filter.counts(player, ok) {
				continue
			}
			counts[c.PlayerID]++
		}
	}

	out := make([]PlayerAttendance, 0, len(counts))
	for id, n := range counts {
		name := id
		if p, ok := idx[id]; ok && p.Name != "" {
			name = p.Name
		}
		out = append(out, PlayerAttendance{PlayerID: id, PlayerName: name, CheckInCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CheckInCount != out[j].CheckInCount {
			return out[i].CheckInCount > out[j].CheckInCount
		}
		return out[i].PlayerName < out[j].PlayerName
	})
	return out
}

// CompareTrainingDays compares the two weekdays with the most check-ins. It
// returns nil when fewer than two weekdays have data.
func CompareTrainingDays(weekdays []WeekdayAttendance) *TrainingDayComparison {
	days := make([]WeekdayAttendance, 0, len(weekdays))
	for _, w := range weekdays {
		if w.CheckInCount > 0 {
			days = append(days, w)
		}
	}
	if len(days) < 2 {
		return nil
	}
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].CheckInCount > days[j].CheckInCount
	})

	top, second := days[0], days[1]
	diff := top.CheckInCount - second.CheckInCount
	pct := 0.0
	if second.CheckInCount > 0 {
		pct = Round1(float64(diff) / float64(second.CheckInCount) * 100)
	}
	return &TrainingDayComparison{
		Day1:                 top,
		Day2:                 second,
		Difference:           diff,
		PercentageDifference: pct,
	}
}

func monthOf(snap club.StatisticsSnapshot) (string, bool) {
	d, err := season.ParseDate(snap.SessionDate)
	if err != nil {
		log.Warn("Skipping snapshot with unreadable date", "snapshotID", snap.ID, "date", snap.SessionDate)
		return "", false
	}
	return d.Format("2006-01"), true
}
