package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		SnapshotsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "club_statistics_snapshots_created_total",
			Help: "The total number of session snapshots written.",
		}),
		SnapshotFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "club_statistics_snapshot_failures_total",
			Help: "The total number of snapshots that failed while ending a session.",
		}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "club_cache_hits_total",
			Help: "Reads served from the record cache, by table.",
		}, []string{"table"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "club_cache_misses_total",
			Help: "Reads that went to the record store, by table.",
		}, []string{"table"}),
		AnalyticsDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "club_analytics_duration_seconds",
			Help:    "The duration of statistics computations.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "club_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "club_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "club_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.SnapshotsCreated,
		s.SnapshotFailures,
		s.CacheHits,
		s.CacheMisses,
		s.AnalyticsDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncSnapshotsCreated() {
	s.SnapshotsCreated.Inc()
}

func (s *Service) IncSnapshotFailures() {
	s.SnapshotFailures.Inc()
}

func (s *Service) IncCacheHit(table string) {
	s.CacheHits.WithLabelValues(table).Inc()
}

func (s *Service) IncCacheMiss(table string) {
	s.CacheMisses.WithLabelValues(table).Inc()
}

func (s *Service) ObserveAnalyticsDuration(operation string, seconds float64) {
	s.AnalyticsDuration.WithLabelValues(operation).Observe(seconds)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
