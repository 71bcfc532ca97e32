package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/marchalgreen/Rundeklar-sub002/internal/attendance"
	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/kpi"
	"github.com/marchalgreen/Rundeklar-sub002/internal/network"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

func printGroupAttendance(w io.Writer, result attendance.GroupAttendanceResult) {
	fmt.Fprintf(w, "\nSessions: %d\n\n", result.TotalUniqueSessions)
	if len(result.Groups) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)
	table.Header("GROUP", "CHECK-INS", "PLAYERS", "SESSIONS", "AVG")
	for _, g := range result.Groups {
		table.Append(
			g.GroupName,
			strconv.Itoa(g.CheckInCount),
			strconv.Itoa(g.UniquePlayers),
			strconv.Itoa(g.Sessions),
			fmt.Sprintf("%.1f", g.AverageAttendance),
		)
	}
	table.Render()
}

func printWeekdays(w io.Writer, days []attendance.WeekdayAttendance, cmp *attendance.TrainingDayComparison) {
	if len(days) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)
	table.Header("DAY", "CHECK-INS", "SESSIONS", "AVG")
	for _, d := range days {
		table.Append(d.WeekdayName, strconv.Itoa(d.CheckInCount), strconv.Itoa(d.Sessions), fmt.Sprintf("%.1f", d.AverageAttendance))
	}
	table.Render()
	if cmp != nil {
		fmt.Fprintf(w, "\n%s vs %s: %+d check-ins (%+.1f%%)\n",
			cmp.Day1.WeekdayName, cmp.Day2.WeekdayName, cmp.Difference, cmp.PercentageDifference)
	}
}

func printPlayerAttendance(w io.Writer, players []attendance.PlayerAttendance) {
	if len(players) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)
	table.Header("#", "PLAYER", "CHECK-INS")
	for i, p := range players {
		table.Append(strconv.Itoa(i+1), p.PlayerName, strconv.Itoa(p.CheckInCount))
	}
	table.Render()
}

func printPlayerStatistics(w io.Writer, playerID string, s network.PlayerStatistics) {
	name := s.PlayerName
	if name == "" {
		name = playerID
	}
	fmt.Fprintf(w, "\n%s  |  Check-ins: %d  |  Matches: %d  |  W-L: %d-%d  |  Win rate: %.1f%%  |  Avg score diff: %+.1f\n\n",
		name, s.TotalCheckIns, s.TotalMatches, s.TotalWins, s.TotalLosses, s.WinRate, s.AverageScoreDifference)

	seasons := make([]string, 0, len(s.CheckInsBySeason))
	for season := range s.CheckInsBySeason {
		seasons = append(seasons, season)
	}
	for season := range s.MatchesBySeason {
		if _, ok := s.CheckInsBySeason[season]; !ok {
			seasons = append(seasons, season)
		}
	}
	sort.Strings(seasons)
	if len(seasons) > 0 {
		table := newTable(w)
		table.Header("SEASON", "CHECK-INS", "MATCHES")
		for _, season := range seasons {
			table.Append(season, strconv.Itoa(s.CheckInsBySeason[season]), strconv.Itoa(s.MatchesBySeason[season]))
		}
		table.Render()
	}

	printCounts(w, "Top partners", s.TopPartners)
	printCounts(w, "Top opponents", s.TopOpponents)

	fmt.Fprintf(w, "\nPreferred category: %s\n", orDash(s.PreferredCategory, func(c network.Category) string { return string(c) }))
	fmt.Fprintf(w, "Level difference partners: %s\n", orDash(s.AverageLevelDifferencePartners, formatFloat))
	fmt.Fprintf(w, "Level difference opponents: %s\n", orDash(s.AverageLevelDifferenceOpponents, formatFloat))
	fmt.Fprintf(w, "Most played court: %s\n", orDash(s.MostPlayedCourt, strconv.Itoa))
	fmt.Fprintf(w, "Last played: %s\n", orDash(s.LastPlayedDate, func(d string) string { return d }))
}

func printCounts(w io.Writer, title string, counts []network.PlayerCount) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	table := newTable(w)
	table.Header("PLAYER", "MATCHES")
	for _, c := range counts {
		table.Append(c.PlayerName, strconv.Itoa(c.Count))
	}
	table.Render()
}

func printHeadToHead(w io.Writer, h network.HeadToHead) {
	fmt.Fprintf(w, "\n%s vs %s  |  Matches: %d  |  %d-%d\n\n", h.Player1ID, h.Player2ID, h.TotalMatches, h.Player1Wins, h.Player2Wins)
	if len(h.Matches) == 0 {
		return
	}
	table := newTable(w)
	table.Header("DATE", "RESULT", "SCORE", "PARTNERS", "OPPONENTS")
	for _, m := range h.Matches {
		table.Append(firstDay(m.SessionDate), outcome(m.Won), formatScore(m.ScoreData), strings.Join(m.Partners, ", "), strings.Join(m.Opponents, ", "))
	}
	table.Render()
}

func printKPIReport(w io.Writer, r kpi.Report) {
	fmt.Fprintf(w, "\n%s (%s to %s) vs %s (%s to %s)\n\n",
		r.Period.Label, r.Period.From.Format("2006-01-02"), r.Period.To.Format("2006-01-02"),
		r.Comparison.Label, r.Comparison.From.Format("2006-01-02"), r.Comparison.To.Format("2006-01-02"))

	table := newTable(w)
	table.Header("KPI", "CURRENT", "PREVIOUS", "CHANGE")
	var deltas kpi.Deltas
	if r.Deltas != nil {
		deltas = *r.Deltas
	}
	rows := []struct {
		name              string
		current, previous string
		delta             kpi.Delta
	}{
		{"Check-ins", strconv.Itoa(r.Current.TotalCheckIns), strconv.Itoa(r.Previous.TotalCheckIns), deltas.TotalCheckIns},
		{"Sessions", strconv.Itoa(r.Current.TotalSessions), strconv.Itoa(r.Previous.TotalSessions), deltas.TotalSessions},
		{"Avg attendance", formatFloat(r.Current.AverageAttendance), formatFloat(r.Previous.AverageAttendance), deltas.AverageAttendance},
		{"Unique players", strconv.Itoa(r.Current.UniquePlayers), strconv.Itoa(r.Previous.UniquePlayers), deltas.UniquePlayers},
	}
	for _, row := range rows {
		change := "—"
		if r.Deltas != nil {
			change = formatDelta(row.delta)
		}
		table.Append(row.name, row.current, row.previous, change)
	}
	table.Render()
}

func formatDelta(d kpi.Delta) string {
	if d.Percentage == nil {
		return fmt.Sprintf("%+.1f", d.Absolute)
	}
	return fmt.Sprintf("%+.1f (%+.1f%%)", d.Absolute, *d.Percentage)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatScore(score *club.ScoreData) string {
	if score == nil || len(score.Sets) == 0 {
		return "—"
	}
	sets := make([]string, len(score.Sets))
	for i, s := range score.Sets {
		sets[i] = fmt.Sprintf("%d-%d", s.Team1, s.Team2)
	}
	return strings.Join(sets, " ")
}

func outcome(won *bool) string {
	switch {
	case won == nil:
		return "—"
	case *won:
		return "W"
	default:
		return "L"
	}
}

func firstDay(date string) string {
	if len(date) > 10 {
		return date[:10]
	}
	return date
}

func orDash[T any](v *T, format func(T) string) string {
	if v == nil {
		return "—"
	}
	return format(*v)
}
