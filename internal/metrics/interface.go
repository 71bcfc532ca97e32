package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncSnapshotsCreated()
	IncSnapshotFailures()
	IncCacheHit(table string)
	IncCacheMiss(table string)
	ObserveAnalyticsDuration(operation string, seconds float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
