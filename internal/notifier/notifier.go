package notifier

// GroupCount is the number of check-ins one training group had in a session.
type GroupCount struct {
	Group    string
	CheckIns int
}

// SessionSummary describes an ended session for a notification.
type SessionSummary struct {
	SessionID string
	Date      string
	Season    string
	CheckIns  int
	Matches   int
	Groups    []GroupCount
}

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For ended sessions
	SendSessionSummary(summary SessionSummary, dryRun bool) (string, error)
	// For formatting responses, e.g. a preview in the API
	FormatSessionSummary(summary SessionSummary) (any, error)
}

// nop discards notifications. It is used when no provider is configured.
type nop struct{}

// NewNop returns a Notifier that sends nothing.
func NewNop() Notifier {
	return nop{}
}

func (nop) SendSessionSummary(summary SessionSummary, dryRun bool) (string, error) {
	return "", nil
}

func (nop) FormatSessionSummary(summary SessionSummary) (any, error) {
	return summary, nil
}
