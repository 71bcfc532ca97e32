package club

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a new SQL backed Store.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

var _ Store = (*store)(nil)

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func (s *store) ListPlayers(ctx context.Context) ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, level, training_groups, active FROM players ORDER BY name, id")
	if err != nil {
		return nil, storeErr("list players", err)
	}
	defer rows.Close()

	players := []Player{}
	for rows.Next() {
		var p Player
		var level sql.NullFloat64
		var groups sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &level, &groups, &p.Active); err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		if level.Valid {
			v := level.Float64
			p.Level = &v
		}
		p.TrainingGroups = decodeArray[string]([]byte(groups.String), "players.training_groups", p.ID)
		players = append(players, p)
	}
	return players, storeErr("list players", rows.Err())
}

func (s *store) UpsertPlayer(ctx context.Context, player Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := player.TrainingGroups
	if groups == nil {
		groups = []string{}
	}
	groupsJSON, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("failed to encode training groups: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO players (id, name, level, training_groups, active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			level = excluded.level,
			training_groups = excluded.training_groups,
			active = excluded.active;
	`, player.ID, player.Name, player.Level, string(groupsJSON), player.Active)
	return storeErr("upsert player", err)
}

func (s *store) ListSessions(ctx context.Context) ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, date, status, created_at FROM sessions ORDER BY date, created_at")
	if err != nil {
		return nil, storeErr("list sessions", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		var createdAt int64
		if err := rows.Scan(&sess.ID, &sess.Date, &sess.Status, &createdAt); err != nil {
			log.Error("Failed to scan session row", "error", err)
			continue
		}
		sess.CreatedAt = fromMillis(createdAt)
		sessions = append(sessions, sess)
	}
	return sessions, storeErr("list sessions", rows.Err())
}

func (s *store) CreateSession(ctx context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "INSERT INTO sessions (id, date, status, created_at) VALUES (?, ?, ?, ?)",
		session.ID, session.Date, session.Status, toMillis(session.CreatedAt))
	if isActiveSessionConflict(err) {
		log.Warn("Rejected second active session", "sessionID", session.ID)
		return ErrActiveSessionExists
	}
	return storeErr("create session", err)
}

// isActiveSessionConflict matches the idx_sessions_single_active violation.
// Both drivers pass the SQLite message through unchanged.
func isActiveSessionConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: sessions.status")
}

func (s *store) UpdateSessionStatus(ctx context.Context, sessionID string, status SessionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE sessions SET status = ? WHERE id = ?", status, sessionID)
	if err != nil {
		return storeErr("update session", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: "session", ID: sessionID}
	}
	return nil
}

const checkInColumns = "id, session_id, player_id, created_at, max_rounds, notes"

func scanCheckIn(scanner interface{ Scan(...any) error }) (CheckIn, error) {
	var c CheckIn
	var createdAt int64
	var maxRounds sql.NullInt64
	var notes sql.NullString
	if err := scanner.Scan(&c.ID, &c.SessionID, &c.PlayerID, &createdAt, &maxRounds, &notes); err != nil {
		return CheckIn{}, err
	}
	c.CreatedAt = fromMillis(createdAt)
	if maxRounds.Valid {
		v := int(maxRounds.Int64)
		c.MaxRounds = &v
	}
	if notes.Valid {
		v := notes.String
		c.Notes = &v
	}
	return c, nil
}

func (s *store) ListCheckIns(ctx context.Context, sessionID string) ([]CheckIn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + checkInColumns + " FROM check_ins"
	var args []any
	if sessionID != "" {
		query += " WHERE session_id = ?"
		args = append(args, sessionID)
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list check-ins", err)
	}
	defer rows.Close()

	checkIns := []CheckIn{}
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			log.Error("Failed to scan check-in row", "error", err)
			continue
		}
		checkIns = append(checkIns, c)
	}
	return checkIns, storeErr("list check-ins", rows.Err())
}

// CreateCheckIn relies on the (session_id, player_id) unique index: a losing
// concurrent writer inserts nothing and reads back the winner's row.
func (s *store) CreateCheckIn(ctx context.Context, checkIn CheckIn) (CheckIn, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO check_ins (`+checkInColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, player_id) DO NOTHING;
	`, checkIn.ID, checkIn.SessionID, checkIn.PlayerID, toMillis(checkIn.CreatedAt), checkIn.MaxRounds, checkIn.Notes)
	if err != nil {
		return CheckIn{}, false, storeErr("create check-in", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return checkIn, true, nil
	}

	row := s.db.QueryRowContext(ctx, "SELECT "+checkInColumns+" FROM check_ins WHERE session_id = ? AND player_id = ?",
		checkIn.SessionID, checkIn.PlayerID)
	existing, err := scanCheckIn(row)
	if err != nil {
		return CheckIn{}, false, storeErr("read conflicting check-in", err)
	}
	log.Debug("Check-in already existed, returning existing row", "sessionID", checkIn.SessionID, "playerID", checkIn.PlayerID)
	return existing, false, nil
}

func (s *store) DeleteCheckIn(ctx context.Context, checkInID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM check_ins WHERE id = ?", checkInID)
	if err != nil {
		return storeErr("delete check-in", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: "check-in", ID: checkInID}
	}
	return nil
}

func (s *store) ListCourts(ctx context.Context) ([]Court, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, idx FROM courts ORDER BY idx")
	if err != nil {
		return nil, storeErr("list courts", err)
	}
	defer rows.Close()

	courts := []Court{}
	for rows.Next() {
		var c Court
		if err := rows.Scan(&c.ID, &c.Idx); err != nil {
			log.Error("Failed to scan court row", "error", err)
			continue
		}
		courts = append(courts, c)
	}
	return courts, storeErr("list courts", rows.Err())
}

func (s *store) UpsertCourt(ctx context.Context, court Court) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO courts (id, idx) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET idx = excluded.idx;
	`, court.ID, court.Idx)
	return storeErr("upsert court", err)
}

func (s *store) ListMatches(ctx context.Context) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, session_id, court_id, round, started_at, ended_at FROM matches ORDER BY started_at, id")
	if err != nil {
		return nil, storeErr("list matches", err)
	}
	defer rows.Close()

	matches := []Match{}
	for rows.Next() {
		var m Match
		var startedAt int64
		var endedAt sql.NullInt64
		if err := rows.Scan(&m.ID, &m.SessionID, &m.CourtID, &m.Round, &startedAt, &endedAt); err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		m.StartedAt = fromMillis(startedAt)
		if endedAt.Valid {
			t := fromMillis(endedAt.Int64)
			m.EndedAt = &t
		}
		matches = append(matches, m)
	}
	return matches, storeErr("list matches", rows.Err())
}

func nullableMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func (s *store) CreateMatch(ctx context.Context, match Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "INSERT INTO matches (id, session_id, court_id, round, started_at, ended_at) VALUES (?, ?, ?, ?, ?, ?)",
		match.ID, match.SessionID, match.CourtID, match.Round, toMillis(match.StartedAt), nullableMillis(match.EndedAt))
	return storeErr("create match", err)
}

func (s *store) UpdateMatch(ctx context.Context, match Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE matches SET session_id = ?, court_id = ?, round = ?, started_at = ?, ended_at = ? WHERE id = ?",
		match.SessionID, match.CourtID, match.Round, toMillis(match.StartedAt), nullableMillis(match.EndedAt), match.ID)
	if err != nil {
		return storeErr("update match", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: "match", ID: match.ID}
	}
	return nil
}

func (s *store) ListMatchPlayers(ctx context.Context) ([]MatchPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, match_id, player_id, slot FROM match_players ORDER BY match_id, slot")
	if err != nil {
		return nil, storeErr("list match players", err)
	}
	defer rows.Close()

	matchPlayers := []MatchPlayer{}
	for rows.Next() {
		var mp MatchPlayer
		if err := rows.Scan(&mp.ID, &mp.MatchID, &mp.PlayerID, &mp.Slot); err != nil {
			log.Error("Failed to scan match player row", "error", err)
			continue
		}
		matchPlayers = append(matchPlayers, mp)
	}
	return matchPlayers, storeErr("list match players", rows.Err())
}

func (s *store) CreateMatchPlayer(ctx context.Context, matchPlayer MatchPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "INSERT INTO match_players (id, match_id, player_id, slot) VALUES (?, ?, ?, ?)",
		matchPlayer.ID, matchPlayer.MatchID, matchPlayer.PlayerID, matchPlayer.Slot)
	return storeErr("create match player", err)
}

const matchResultColumns = "id, match_id, sport, score_data, winner_team"

func scanMatchResult(scanner interface{ Scan(...any) error }) (MatchResult, error) {
	var r MatchResult
	var scoreData sql.NullString
	if err := scanner.Scan(&r.ID, &r.MatchID, &r.Sport, &scoreData, &r.WinnerTeam); err != nil {
		return MatchResult{}, err
	}
	if scoreData.Valid && scoreData.String != "" {
		if err := json.Unmarshal([]byte(scoreData.String), &r.ScoreData); err != nil {
			log.Warn("Failed to decode score data", "error", err, "matchID", r.MatchID)
			r.ScoreData = ScoreData{}
		}
	}
	if r.ScoreData.Sets == nil {
		r.ScoreData.Sets = []SetScore{}
	}
	return r, nil
}

func (s *store) ListMatchResults(ctx context.Context) ([]MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+matchResultColumns+" FROM match_results ORDER BY match_id")
	if err != nil {
		return nil, storeErr("list match results", err)
	}
	defer rows.Close()

	results := []MatchResult{}
	for rows.Next() {
		r, err := scanMatchResult(rows)
		if err != nil {
			log.Error("Failed to scan match result row", "error", err)
			continue
		}
		results = append(results, r)
	}
	return results, storeErr("list match results", rows.Err())
}

// UpsertMatchResult keeps the id of an existing result for the match.
func (s *store) UpsertMatchResult(ctx context.Context, result MatchResult) (MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scoreJSON, err := json.Marshal(result.ScoreData)
	if err != nil {
		return MatchResult{}, fmt.Errorf("failed to encode score data: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO match_results (`+matchResultColumns+`)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(match_id) DO UPDATE SET
			sport = excluded.sport,
			score_data = excluded.score_data,
			winner_team = excluded.winner_team;
	`, result.ID, result.MatchID, result.Sport, string(scoreJSON), result.WinnerTeam)
	if err != nil {
		return MatchResult{}, storeErr("upsert match result", err)
	}
	row := s.db.QueryRowContext(ctx, "SELECT "+matchResultColumns+" FROM match_results WHERE match_id = ?", result.MatchID)
	stored, err := scanMatchResult(row)
	return stored, storeErr("read match result", err)
}

const snapshotColumns = "id, session_id, session_date, season, matches, match_players, check_ins, match_results, courts, created_at"

func scanSnapshot(scanner interface{ Scan(...any) error }) (StatisticsSnapshot, error) {
	var snap StatisticsSnapshot
	var matches, matchPlayers, checkIns, results, courts sql.NullString
	var createdAt int64
	if err := scanner.Scan(&snap.ID, &snap.SessionID, &snap.SessionDate, &snap.Season, &matches, &matchPlayers, &checkIns, &results, &courts, &createdAt); err != nil {
		return StatisticsSnapshot{}, err
	}
	snap.CreatedAt = fromMillis(createdAt)
	snap.Matches = decodeArray[Match]([]byte(matches.String), "statistics_snapshots.matches", snap.ID)
	snap.MatchPlayers = decodeArray[MatchPlayer]([]byte(matchPlayers.String), "statistics_snapshots.match_players", snap.ID)
	snap.CheckIns = decodeArray[CheckIn]([]byte(checkIns.String), "statistics_snapshots.check_ins", snap.ID)
	snap.MatchResults = decodeArray[MatchResult]([]byte(results.String), "statistics_snapshots.match_results", snap.ID)
	snap.Courts = decodeArray[Court]([]byte(courts.String), "statistics_snapshots.courts", snap.ID)
	return snap, nil
}

func (s *store) ListStatisticsSnapshots(ctx context.Context) ([]StatisticsSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+snapshotColumns+" FROM statistics_snapshots ORDER BY session_date, id")
	if err != nil {
		return nil, storeErr("list snapshots", err)
	}
	defer rows.Close()

	snapshots := []StatisticsSnapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			log.Error("Failed to scan snapshot row", "error", err)
			continue
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, storeErr("list snapshots", rows.Err())
}

func marshalArray[T any](rows []T) (string, error) {
	if rows == nil {
		rows = []T{}
	}
	b, err := json.Marshal(rows)
	return string(b), err
}

func (s *store) CreateStatisticsSnapshot(ctx context.Context, snapshot StatisticsSnapshot) (StatisticsSnapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches, err := marshalArray(snapshot.Matches)
	if err != nil {
		return StatisticsSnapshot{}, false, fmt.Errorf("failed to encode snapshot matches: %w", err)
	}
	matchPlayers, err := marshalArray(snapshot.MatchPlayers)
	if err != nil {
		return StatisticsSnapshot{}, false, fmt.Errorf("failed to encode snapshot match players: %w", err)
	}
	checkIns, err := marshalArray(snapshot.CheckIns)
	if err != nil {
		return StatisticsSnapshot{}, false, fmt.Errorf("failed to encode snapshot check-ins: %w", err)
	}
	results, err := marshalArray(snapshot.MatchResults)
	if err != nil {
		return StatisticsSnapshot{}, false, fmt.Errorf("failed to encode snapshot match results: %w", err)
	}
	courts, err := marshalArray(snapshot.Courts)
	if err != nil {
		return StatisticsSnapshot{}, false, fmt.Errorf("failed to encode snapshot courts: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO statistics_snapshots (`+snapshotColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO NOTHING;
	`, snapshot.ID, snapshot.SessionID, snapshot.SessionDate, snapshot.Season, matches, matchPlayers, checkIns, results, courts, toMillis(snapshot.CreatedAt))
	if err != nil {
		return StatisticsSnapshot{}, false, storeErr("create snapshot", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return snapshot, true, nil
	}

	row := s.db.QueryRowContext(ctx, "SELECT "+snapshotColumns+" FROM statistics_snapshots WHERE session_id = ?", snapshot.SessionID)
	existing, err := scanSnapshot(row)
	if err != nil {
		return StatisticsSnapshot{}, false, storeErr("read existing snapshot", err)
	}
	return existing, false, nil
}

func (s *store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin clear", err)
	}
	for _, table := range []string{"match_results", "match_players", "matches", "check_ins", "statistics_snapshots", "sessions", "courts", "players"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			tx.Rollback()
			return storeErr("clear "+table, err)
		}
	}
	return storeErr("commit clear", tx.Commit())
}

// FindSession returns the session with the given id from a listing.
func FindSession(sessions []Session, id string) (Session, error) {
	for _, s := range sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return Session{}, &NotFoundError{Entity: "session", ID: id}
}

// FindPlayer returns the player with the given id from a listing.
func FindPlayer(players []Player, id string) (Player, error) {
	for _, p := range players {
		if p.ID == id {
			return p, nil
		}
	}
	return Player{}, &NotFoundError{Entity: "player", ID: id}
}
