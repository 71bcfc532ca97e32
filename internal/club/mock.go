package club

import (
	"context"
	"sync"
)

// MockStore is an in-memory implementation of the Store interface for testing.
// Rows live in the exported slices; the XxxFunc hooks override behaviour and
// the call counters record reads. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	Players      []Player
	Sessions     []Session
	CheckIns     []CheckIn
	Courts       []Court
	Matches      []Match
	MatchPlayers []MatchPlayer
	MatchResults []MatchResult
	Snapshots    []StatisticsSnapshot

	// Spies for method calls
	ListCheckInsFunc             func(sessionID string) ([]CheckIn, error)
	ListMatchesFunc              func() ([]Match, error)
	ListStatisticsSnapshotsFunc  func() ([]StatisticsSnapshot, error)
	CreateStatisticsSnapshotFunc func(snapshot StatisticsSnapshot) (StatisticsSnapshot, bool, error)
	UpdateSessionStatusFunc      func(sessionID string, status SessionStatus) error

	// Call records
	ListPlayersCalls              int
	ListSessionsCalls             int
	ListCheckInsCalls             []string
	ListMatchesCalls              int
	ListMatchPlayersCalls         int
	ListMatchResultsCalls         int
	ListStatisticsSnapshotsCalls  int
	CreateStatisticsSnapshotCalls []StatisticsSnapshot
	CreateCheckInCalls            []CheckIn
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

var _ Store = (*MockStore)(nil)

func cloneRows[T any](rows []T) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	return out
}

func (m *MockStore) ListPlayers(ctx context.Context) ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListPlayersCalls++
	return cloneRows(m.Players), nil
}

func (m *MockStore) UpsertPlayer(ctx context.Context, player Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Players {
		if m.Players[i].ID == player.ID {
			m.Players[i] = player
			return nil
		}
	}
	m.Players = append(m.Players, player)
	return nil
}

func (m *MockStore) ListSessions(ctx context.Context) ([]Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListSessionsCalls++
	return cloneRows(m.Sessions), nil
}

func (m *MockStore) CreateSession(ctx context.Context, session Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session.Status == SessionActive {
		for _, existing := range m.Sessions {
			if existing.Status == SessionActive {
				return ErrActiveSessionExists
			}
		}
	}
	m.Sessions = append(m.Sessions, session)
	return nil
}

func (m *MockStore) UpdateSessionStatus(ctx context.Context, sessionID string, status SessionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateSessionStatusFunc != nil {
		return m.UpdateSessionStatusFunc(sessionID, status)
	}
	for i := range m.Sessions {
		if m.Sessions[i].ID == sessionID {
			m.Sessions[i].Status = status
			return nil
		}
	}
	return &NotFoundError{Entity: "session", ID: sessionID}
}

func (m *MockStore) ListCheckIns(ctx context.Context, sessionID string) ([]CheckIn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCheckInsCalls = append(m.ListCheckInsCalls, sessionID)
	if m.ListCheckInsFunc != nil {
		return m.ListCheckInsFunc(sessionID)
	}
	out := []CheckIn{}
	for _, c := range m.CheckIns {
		if sessionID == "" || c.SessionID == sessionID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockStore) CreateCheckIn(ctx context.Context, checkIn CheckIn) (CheckIn, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCheckInCalls = append(m.CreateCheckInCalls, checkIn)
	for _, c := range m.CheckIns {
		if c.SessionID == checkIn.SessionID && c.PlayerID == checkIn.PlayerID {
			return c, false, nil
		}
	}
	m.CheckIns = append(m.CheckIns, checkIn)
	return checkIn, true, nil
}

func (m *MockStore) DeleteCheckIn(ctx context.Context, checkInID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.CheckIns {
		if c.ID == checkInID {
			m.CheckIns = append(m.CheckIns[:i], m.CheckIns[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{Entity: "check-in", ID: checkInID}
}

func (m *MockStore) ListCourts(ctx context.Context) ([]Court, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneRows(m.Courts), nil
}

func (m *MockStore) UpsertCourt(ctx context.Context, court Court) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Courts {
		if m.Courts[i].ID == court.ID {
			m.Courts[i] = court
			return nil
		}
	}
	m.Courts = append(m.Courts, court)
	return nil
}

func (m *MockStore) ListMatches(ctx context.Context) ([]Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListMatchesCalls++
	if m.ListMatchesFunc != nil {
		return m.ListMatchesFunc()
	}
	return cloneRows(m.Matches), nil
}

func (m *MockStore) CreateMatch(ctx context.Context, match Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Matches = append(m.Matches, match)
	return nil
}

func (m *MockStore) UpdateMatch(ctx context.Context, match Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Matches {
		if m.Matches[i].ID == match.ID {
			m.Matches[i] = match
			return nil
		}
	}
	return &NotFoundError{Entity: "match", ID: match.ID}
}

func (m *MockStore) ListMatchPlayers(ctx context.Context) ([]MatchPlayer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListMatchPlayersCalls++
	return cloneRows(m.MatchPlayers), nil
}

func (m *MockStore) CreateMatchPlayer(ctx context.Context, matchPlayer MatchPlayer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchPlayers = append(m.MatchPlayers, matchPlayer)
	return nil
}

func (m *MockStore) ListMatchResults(ctx context.Context) ([]MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListMatchResultsCalls++
	return cloneRows(m.MatchResults), nil
}

func (m *MockStore) UpsertMatchResult(ctx context.Context, result MatchResult) (MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.MatchResults {
		if m.MatchResults[i].MatchID == result.MatchID {
			result.ID = m.MatchResults[i].ID
			m.MatchResults[i] = result
			return result, nil
		}
	}
	m.MatchResults = append(m.MatchResults, result)
	return result, nil
}

func (m *MockStore) ListStatisticsSnapshots(ctx context.Context) ([]StatisticsSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListStatisticsSnapshotsCalls++
	if m.ListStatisticsSnapshotsFunc != nil {
		return m.ListStatisticsSnapshotsFunc()
	}
	return cloneRows(m.Snapshots), nil
}

func (m *MockStore) CreateStatisticsSnapshot(ctx context.Context, snapshot StatisticsSnapshot) (StatisticsSnapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateStatisticsSnapshotCalls = append(m.CreateStatisticsSnapshotCalls, snapshot)
	if m.CreateStatisticsSnapshotFunc != nil {
		return m.CreateStatisticsSnapshotFunc(snapshot)
	}
	for _, s := range m.Snapshots {
		if s.SessionID == snapshot.SessionID {
			return s, false, nil
		}
	}
	m.Snapshots = append(m.Snapshots, snapshot)
	return snapshot, true, nil
}

func (m *MockStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Players, m.Sessions, m.CheckIns, m.Courts = nil, nil, nil, nil
	m.Matches, m.MatchPlayers, m.MatchResults, m.Snapshots = nil, nil, nil, nil
	return nil
}
