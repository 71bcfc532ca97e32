package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/marchalgreen/Rundeklar-sub002/internal/attendance"
	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/database"
	"github.com/marchalgreen/Rundeklar-sub002/internal/kpi"
	"github.com/marchalgreen/Rundeklar-sub002/internal/metrics"
	"github.com/marchalgreen/Rundeklar-sub002/internal/network"
	"github.com/marchalgreen/Rundeklar-sub002/internal/pubsub"
	"github.com/marchalgreen/Rundeklar-sub002/internal/snapshot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	dateFrom string
	dateTo   string
	groups   string
	limit    int
	period   string
	season   string
)

func init() {
	for _, cmd := range []*cobra.Command{attendanceCmd, weekdaysCmd, playersCmd} {
		cmd.Flags().StringVar(&dateFrom, "from", "", "Only include sessions on or after this date (YYYY-MM-DD)")
		cmd.Flags().StringVar(&dateTo, "to", "", "Only include sessions on or before this date (YYYY-MM-DD)")
		cmd.Flags().StringVar(&groups, "groups", "", "Comma separated training groups")
	}
	playersCmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many players")
	playerCmd.Flags().StringVar(&season, "season", "", "Only include this season (e.g. 2024-2025)")
	kpiCmd.Flags().StringVar(&period, "period", string(kpi.PeriodSeason), "season, last7, last30 or custom")
	kpiCmd.Flags().StringVar(&season, "season", "", "Season for the season period")
	kpiCmd.Flags().StringVar(&dateFrom, "from", "", "Start of a custom period")
	kpiCmd.Flags().StringVar(&dateTo, "to", "", "End of a custom period")
	kpiCmd.Flags().StringVar(&groups, "groups", "", "Comma separated training groups")

	rootCmd.AddCommand(attendanceCmd, weekdaysCmd, playersCmd, playerCmd, h2hCmd, kpiCmd, snapshotCmd)
}

// engine holds the services a statistics command needs, backed by the local database.
type engine struct {
	store      club.Store
	attendance *attendance.Aggregator
	network    *network.Analyzer
	kpi        *kpi.Engine
	snapshots  *snapshot.Builder
	teardown   func()
}

func openEngine() (*engine, error) {
	db, teardown, err := database.InitDB(dbPath, "", "")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A private registry keeps the CLI from touching the default one.
	metricsSvc := metrics.NewService(prometheus.NewRegistry())
	store := club.New(db)
	agg := attendance.NewAggregator(store, metricsSvc, attendance.ParseLocale(locale))
	return &engine{
		store:      store,
		attendance: agg,
		network:    network.NewAnalyzer(store, metricsSvc),
		kpi:        kpi.NewEngine(agg, metricsSvc),
		snapshots:  snapshot.New(store, metricsSvc, pubsub.NewNop()),
		teardown:   teardown,
	}, nil
}

func withEngine(fn func(ctx context.Context, e *engine, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.teardown()
		return fn(cmd.Context(), e, args)
	}
}

func filterFromFlags() attendance.Filter {
	return attendance.Filter{DateFrom: dateFrom, DateTo: dateTo, Groups: splitGroups(groups)}
}

func splitGroups(raw string) []string {
	var out []string
	for _, g := range strings.Split(raw, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Show attendance per training group",
	RunE: withEngine(func(ctx context.Context, e *engine, args []string) error {
		result, err := e.attendance.GroupAttendance(ctx, filterFromFlags())
		if err != nil {
			return err
		}
		printGroupAttendance(os.Stdout, result)
		return nil
	}),
}

var weekdaysCmd = &cobra.Command{
	Use:   "weekdays",
	Short: "Show attendance per weekday and compare the two busiest days",
	RunE: withEngine(func(ctx context.Context, e *engine, args []string) error {
		days, err := e.attendance.WeekdayAttendance(ctx, filterFromFlags())
		if err != nil {
			return err
		}
		printWeekdays(os.Stdout, days, attendance.CompareTrainingDays(days))
		return nil
	}),
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List players by number of check-ins",
	RunE: withEngine(func(ctx context.Context, e *engine, args []string) error {
		players, err := e.attendance.PlayerLongTail(ctx, filterFromFlags(), limit)
		if err != nil {
			return err
		}
		printPlayerAttendance(os.Stdout, players)
		return nil
	}),
}

var playerCmd = &cobra.Command{
	Use:   "player <player-id>",
	Short: "Show the statistics of one player",
	Args:  cobra.ExactArgs(1),
	RunE: withEngine(func(ctx context.Context, e *engine, args []string) error {
		stats, err := e.network.PlayerStatistics(ctx, args[0], network.StatsFilter{Season: season})
		if err != nil {
			return err
		}
		printPlayerStatistics(os.Stdout, args[0], stats)
		return nil
	}),
}

var h2hCmd = &cobra.Command{
	Use:   "h2h <player-id> <player-id>",
	Short: "Show every match two players played against each other",
	Args:  cobra.ExactArgs(2),
	RunE: withEngine(func(ctx context.Context, e *engine, args []string) error {
		h2h, err := e.network.HeadToHead(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		printHeadToHead(os.Stdout, h2h)
		return nil
	}),
}

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Show KPIs for a period compared with the period before it",
	RunE: withEngine(func(ctx context.Context, e *engine, args []string) error {
		report, err := e.kpi.Report(ctx, kpi.Request{
			Type:   kpi.PeriodType(period),
			Season: season,
			From:   dateFrom,
			To:     dateTo,
			Groups: splitGroups(groups),
		})
		if err != nil {
			return err
		}
		printKPIReport(os.Stdout, report)
		return nil
	}),
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <session-id>",
	Short: "Snapshot an ended session that has no snapshot yet",
	Args:  cobra.ExactArgs(1),
	RunE: withEngine(func(ctx context.Context, e *engine, args []string) error {
		snap, err := e.snapshots.SnapshotSession(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Snapshot %s of session %s (%s, season %s): %d check-ins, %d matches\n",
			snap.ID, snap.SessionID, snap.SessionDate, snap.Season, len(snap.CheckIns), len(snap.Matches))
		return nil
	}),
}
