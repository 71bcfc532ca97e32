package club

import "context"

// Store defines the record store for one tenant. List methods return rows in
// a stable order and never return nil slices on success.
type Store interface {
	ListPlayers(ctx context.Context) ([]Player, error)
	UpsertPlayer(ctx context.Context, player Player) error

	ListSessions(ctx context.Context) ([]Session, error)
	CreateSession(ctx context.Context, session Session) error
	UpdateSessionStatus(ctx context.Context, sessionID string, status SessionStatus) error

	// ListCheckIns returns the check-ins of one session, or of all sessions
	// when sessionID is empty.
	ListCheckIns(ctx context.Context, sessionID string) ([]CheckIn, error)
	// CreateCheckIn inserts a check-in. When (sessionID, playerID) already
	// exists, the existing row is returned with created=false.
	CreateCheckIn(ctx context.Context, checkIn CheckIn) (stored CheckIn, created bool, err error)
	DeleteCheckIn(ctx context.Context, checkInID string) error

	ListCourts(ctx context.Context) ([]Court, error)
	UpsertCourt(ctx context.Context, court Court) error

	ListMatches(ctx context.Context) ([]Match, error)
	CreateMatch(ctx context.Context, match Match) error
	UpdateMatch(ctx context.Context, match Match) error

	ListMatchPlayers(ctx context.Context) ([]MatchPlayer, error)
	CreateMatchPlayer(ctx context.Context, matchPlayer MatchPlayer) error

	ListMatchResults(ctx context.Context) ([]MatchResult, error)
	// UpsertMatchResult creates the result of a match or replaces it in place.
	UpsertMatchResult(ctx context.Context, result MatchResult) (MatchResult, error)

	ListStatisticsSnapshots(ctx context.Context) ([]StatisticsSnapshot, error)
	// CreateStatisticsSnapshot persists a snapshot. When the session already
	// has one, the existing snapshot is returned with created=false.
	CreateStatisticsSnapshot(ctx context.Context, snapshot StatisticsSnapshot) (stored StatisticsSnapshot, created bool, err error)

	// Clear wipes every table of the tenant.
	Clear(ctx context.Context) error
}
