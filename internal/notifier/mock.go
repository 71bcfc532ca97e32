package notifier

import "sync"

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendSessionSummaryCalls []SessionSummary

	// Spies
	SendSessionSummaryFunc   func(summary SessionSummary, dryRun bool) (string, error)
	FormatSessionSummaryFunc func(summary SessionSummary) (any, error)
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SendSessionSummary(summary SessionSummary, dryRun bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendSessionSummaryCalls = append(m.SendSessionSummaryCalls, summary)
	if m.SendSessionSummaryFunc != nil {
		return m.SendSessionSummaryFunc(summary, dryRun)
	}
	return "mock-ts", nil
}

func (m *Mock) FormatSessionSummary(summary SessionSummary) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatSessionSummaryFunc != nil {
		return m.FormatSessionSummaryFunc(summary)
	}
	return summary, nil
}

// SessionSummaries returns the summaries passed to SendSessionSummary.
func (m *Mock) SessionSummaries() []SessionSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SessionSummary(nil), m.SendSessionSummaryCalls...)
}
