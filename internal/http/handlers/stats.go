package handlers

import (
	"net/http"

	"github.com/marchalgreen/Rundeklar-sub002/internal/attendance"
	"github.com/marchalgreen/Rundeklar-sub002/internal/kpi"
	"github.com/marchalgreen/Rundeklar-sub002/internal/network"
)

const defaultLimit = 10

func GroupAttendanceHandler(agg *attendance.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := agg.GroupAttendance(r.Context(), filterFromQuery(r))
		if err != nil {
			writeError(w, err, "Failed to compute group attendance")
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func WeekdayAttendanceHandler(agg *attendance.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := agg.WeekdayAttendance(r.Context(), filterFromQuery(r))
		if err != nil {
			writeError(w, err, "Failed to compute weekday attendance")
			return
		}
		writeJSON(w, http.StatusOK, days)
	}
}

func MonthlyTrendHandler(agg *attendance.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		months, err := agg.MonthlyTrend(r.Context(), filterFromQuery(r))
		if err != nil {
			writeError(w, err, "Failed to compute monthly trend")
			return
		}
		writeJSON(w, http.StatusOK, months)
	}
}

func GroupTrendHandler(agg *attendance.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		points, err := agg.GroupTrend(r.Context(), filterFromQuery(r))
		if err != nil {
			writeError(w, err, "Failed to compute group trend")
			return
		}
		writeJSON(w, http.StatusOK, points)
	}
}

func PlayerLongTailHandler(agg *attendance.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := agg.PlayerLongTail(r.Context(), filterFromQuery(r), limitFromQuery(r, 0))
		if err != nil {
			writeError(w, err, "Failed to compute player attendance")
			return
		}
		writeJSON(w, http.StatusOK, players)
	}
}

// TrainingDaysHandler responds with null when fewer than two weekdays have data.
func TrainingDaysHandler(agg *attendance.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmp, err := agg.TrainingDayComparison(r.Context(), filterFromQuery(r))
		if err != nil {
			writeError(w, err, "Failed to compare training days")
			return
		}
		writeJSON(w, http.StatusOK, cmp)
	}
}

func KPIHandler(engine *kpi.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		report, err := engine.Report(r.Context(), kpi.Request{
			Type:   kpi.PeriodType(q.Get("period")),
			Season: q.Get("season"),
			From:   q.Get("from"),
			To:     q.Get("to"),
			Groups: splitList(q.Get("groups")),
		})
		if err != nil {
			writeError(w, err, "Failed to compute KPIs")
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func PlayerStatisticsHandler(analyzer *network.Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		stats, err := analyzer.PlayerStatistics(r.Context(), r.PathValue("id"), network.StatsFilter{
			Season:   q.Get("season"),
			DateFrom: q.Get("from"),
			DateTo:   q.Get("to"),
		})
		if err != nil {
			writeError(w, err, "Failed to compute player statistics")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func TopPartnersHandler(analyzer *network.Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partners, err := analyzer.TopPartners(r.Context(), r.PathValue("id"), limitFromQuery(r, defaultLimit))
		if err != nil {
			writeError(w, err, "Failed to compute partners")
			return
		}
		writeJSON(w, http.StatusOK, partners)
	}
}

func TopOpponentsHandler(analyzer *network.Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opponents, err := analyzer.TopOpponents(r.Context(), r.PathValue("id"), limitFromQuery(r, defaultLimit))
		if err != nil {
			writeError(w, err, "Failed to compute opponents")
			return
		}
		writeJSON(w, http.StatusOK, opponents)
	}
}

func PlayerComparisonHandler(analyzer *network.Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmp, err := analyzer.PlayerComparison(r.Context(), r.PathValue("id"), r.PathValue("other"))
		if err != nil {
			writeError(w, err, "Failed to compare players")
			return
		}
		writeJSON(w, http.StatusOK, cmp)
	}
}

func HeadToHeadHandler(analyzer *network.Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h2h, err := analyzer.HeadToHead(r.Context(), r.PathValue("id"), r.PathValue("other"))
		if err != nil {
			writeError(w, err, "Failed to compute head-to-head")
			return
		}
		writeJSON(w, http.StatusOK, h2h)
	}
}
