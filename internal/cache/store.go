package cache

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// Store is a club.Store that caches reads of the wrapped store.
type Store struct {
	next    club.Store
	metrics metrics.Metrics
	group   singleflight.Group

	players      *table[club.Player]
	sessions     *table[club.Session]
	checkIns     *table[club.CheckIn]
	courts       *table[club.Court]
	matches      *table[club.Match]
	matchPlayers *table[club.MatchPlayer]
	matchResults *table[club.MatchResult]
	snapshots    *table[club.StatisticsSnapshot]
}

var _ club.Store = (*Store)(nil)

// New wraps next with an empty cache.
func New(next club.Store, m metrics.Metrics) *Store {
	return &Store{
		next:         next,
		metrics:      m,
		players:      newTable("players", func(p club.Player) string { return p.ID }),
		sessions:     newTable("sessions", func(s club.Session) string { return s.ID }),
		checkIns:     newTable("check_ins", func(c club.CheckIn) string { return c.ID }),
		courts:       newTable("courts", func(c club.Court) string { return c.ID }),
		matches:      newTable("matches", func(m club.Match) string { return m.ID }),
		matchPlayers: newTable("match_players", func(mp club.MatchPlayer) string { return mp.ID }),
		matchResults: newTable("match_results", func(r club.MatchResult) string { return r.MatchID }),
		snapshots:    newTable("statistics_snapshots", func(s club.StatisticsSnapshot) string { return s.SessionID }),
	}
}

// Bypass returns the uncached store, for reads that must see committed rows.
func (s *Store) Bypass() club.Store {
	return s.next
}

// Invalidate drops every cached table.
func (s *Store) Invalidate() {
	log.Info("Invalidating record cache")
	s.players.reset()
	s.sessions.reset()
	s.checkIns.reset()
	s.courts.reset()
	s.matches.reset()
	s.matchPlayers.reset()
	s.matchResults.reset()
	s.snapshots.reset()
}

func (s *Store) ListPlayers(ctx context.Context) ([]club.Player, error) {
	return read(ctx, s, s.players, s.next.ListPlayers)
}

func (s *Store) UpsertPlayer(ctx context.Context, player club.Player) error {
	if err := s.next.UpsertPlayer(ctx, player); err != nil {
		return err
	}
	s.players.upsert(player)
	return nil
}

func (s *Store) ListSessions(ctx context.Context) ([]club.Session, error) {
	return read(ctx, s, s.sessions, s.next.ListSessions)
}

func (s *Store) CreateSession(ctx context.Context, session club.Session) error {
	if err := s.next.CreateSession(ctx, session); err != nil {
		return err
	}
	s.sessions.upsert(session)
	return nil
}

func (s *Store) UpdateSessionStatus(ctx context.Context, sessionID string, status club.SessionStatus) error {
	if err := s.next.UpdateSessionStatus(ctx, sessionID, status); err != nil {
		return err
	}
	s.sessions.modify(sessionID, func(sess *club.Session) { sess.Status = status })
	return nil
}

func (s *Store) ListCheckIns(ctx context.Context, sessionID string) ([]club.CheckIn, error) {
	all, err := read(ctx, s, s.checkIns, func(ctx context.Context) ([]club.CheckIn, error) {
		return s.next.ListCheckIns(ctx, "")
	})
	if err != nil {
		return nil, err
	}
	if sessionID == "" {
		return all, nil
	}
	out := []club.CheckIn{}
	for _, c := range all {
		if c.SessionID == sessionID {
			out = append(out, c)
		}
	}
	return out, nil
}

// CreateCheckIn patches the cache with whichever row the store kept, so a
// duplicate request resolves to the existing row without a second entry.
func (s *Store) CreateCheckIn(ctx context.Context, checkIn club.CheckIn) (club.CheckIn, bool, error) {
	stored, created, err := s.next.CreateCheckIn(ctx, checkIn)
	if err != nil {
		return club.CheckIn{}, false, err
	}
	s.checkIns.upsert(stored)
	return stored, created, nil
}

func (s *Store) DeleteCheckIn(ctx context.Context, checkInID string) error {
	if err := s.next.DeleteCheckIn(ctx, checkInID); err != nil {
		return err
	}
	s.checkIns.remove(checkInID)
	return nil
}

func (s *Store) ListCourts(ctx context.Context) ([]club.Court, error) {
	return read(ctx, s, s.courts, s.next.ListCourts)
}

func (s *Store) UpsertCourt(ctx context.Context, court club.Court) error {
	if err := s.next.UpsertCourt(ctx, court); err != nil {
		return err
	}
	s.courts.upsert(court)
	return nil
}

func (s *Store) ListMatches(ctx context.Context) ([]club.Match, error) {
	return read(ctx, s, s.matches, s.next.ListMatches)
}

func (s *Store) CreateMatch(ctx context.Context, match club.Match) error {
	if err := s.next.CreateMatch(ctx, match); err != nil {
		return err
	}
	s.matches.upsert(match)
	return nil
}

func (s *Store) UpdateMatch(ctx context.Context, match club.Match) error {
	if err := s.next.UpdateMatch(ctx, match); err != nil {
		return err
	}
	s.matches.upsert(match)
	return nil
}

func (s *Store) ListMatchPlayers(ctx context.Context) ([]club.MatchPlayer, error) {
	return read(ctx, s, s.matchPlayers, s.next.ListMatchPlayers)
}

func (s *Store) CreateMatchPlayer(ctx context.Context, matchPlayer club.MatchPlayer) error {
	if err := s.next.CreateMatchPlayer(ctx, matchPlayer); err != nil {
		return err
	}
	s.matchPlayers.upsert(matchPlayer)
	return nil
}

func (s *Store) ListMatchResults(ctx context.Context) ([]club.MatchResult, error) {
	return read(ctx, s, s.matchResults, s.next.ListMatchResults)
}

func (s *Store) UpsertMatchResult(ctx context.Context, result club.MatchResult) (club.MatchResult, error) {
	stored, err := s.next.UpsertMatchResult(ctx, result)
	if err != nil {
		return club.MatchResult{}, err
	}
	s.matchResults.upsert(stored)
	return stored, nil
}

func (s *Store) ListStatisticsSnapshots(ctx context.Context) ([]club.StatisticsSnapshot, error) {
	return read(ctx, s, s.snapshots, s.next.ListStatisticsSnapshots)
}

func (s *Store) CreateStatisticsSnapshot(ctx context.Context, snapshot club.StatisticsSnapshot) (club.StatisticsSnapshot, bool, error) {
	stored, created, err := s.next.CreateStatisticsSnapshot(ctx, snapshot)
	if err != nil {
		return club.StatisticsSnapshot{}, false, err
	}
	s.snapshots.upsert(stored)
	return stored, created, nil
}

func (s *Store) Clear(ctx context.Context) error {
	err := s.next.Clear(ctx)
	// Drop the cache even on failure; a partial wipe leaves it unknowable.
	s.Invalidate()
	return err
}
