package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu               sync.Mutex
	snapshotsCreated int
	snapshotFailures int
	cacheHits        map[string]int
	cacheMisses      map[string]int
	analyticsOps     []string
	slackNotifSent   int
	slackNotifFailed int
	startupTime      float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		cacheHits:   make(map[string]int),
		cacheMisses: make(map[string]int),
	}
}

func (m *Mock) IncSnapshotsCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshotsCreated++
}

func (m *Mock) IncSnapshotFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshotFailures++
}

func (m *Mock) IncCacheHit(table string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits[table]++
}

func (m *Mock) IncCacheMiss(table string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheMisses[table]++
}

func (m *Mock) ObserveAnalyticsDuration(operation string, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyticsOps = append(m.analyticsOps, operation)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// SnapshotsCreated returns the number of times IncSnapshotsCreated was called.
func (m *Mock) SnapshotsCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotsCreated
}

// SnapshotFailures returns the number of times IncSnapshotFailures was called.
func (m *Mock) SnapshotFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotFailures
}

// CacheHits returns the recorded cache hits for a table.
func (m *Mock) CacheHits(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheHits[table]
}

// CacheMisses returns the recorded cache misses for a table.
func (m *Mock) CacheMisses(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheMisses[table]
}

// AnalyticsOperations returns the operations passed to ObserveAnalyticsDuration.
func (m *Mock) AnalyticsOperations() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.analyticsOps...)
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
