package session

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/marchalgreen/Rundeklar-sub002/internal/attendance"
	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/metrics"
	"github.com/marchalgreen/Rundeklar-sub002/internal/notifier"
	"github.com/marchalgreen/Rundeklar-sub002/internal/season"
)

// New creates a new Service. Active sessions older than maxDuration are
// ended on the next read; zero disables expiry.
func New(store club.Store, snapshots SnapshotBuilder, notifier Notifier, metrics metrics.Metrics, maxDuration time.Duration) *Service {
	return &Service{
		store:       store,
		snapshots:   snapshots,
		notifier:    notifier,
		metrics:     metrics,
		maxDuration: maxDuration,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// ActiveSession returns the active session, or nil if there is none.
// Expired sessions are ended on the way.
func (s *Service) ActiveSession(ctx context.Context) (*club.Session, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var active *club.Session
	for _, sess := range sessions {
		if sess.Status != club.SessionActive {
			continue
		}
		if s.expired(sess) {
			log.Info("Ending expired session", "sessionID", sess.ID, "createdAt", sess.CreatedAt)
			if _, err := s.end(ctx, sess); err != nil {
				return nil, err
			}
			continue
		}
		active = &sess
	}
	return active, nil
}

func (s *Service) expired(sess club.Session) bool {
	return s.maxDuration > 0 && s.now().Sub(sess.CreatedAt) > s.maxDuration
}

// StartSession opens a session on date, today when date is empty.
func (s *Service) StartSession(ctx context.Context, date string) (club.Session, error) {
	if date == "" {
		date = s.now().Format("2006-01-02")
	}
	if _, err := season.ParseDate(date); err != nil {
		return club.Session{}, &club.ValidationError{Field: "date", Message: err.Error()}
	}

	active, err := s.ActiveSession(ctx)
	if err != nil {
		return club.Session{}, err
	}
	if active != nil {
		return club.Session{}, ErrSessionAlreadyActive
	}

	sess := club.Session{
		ID:        s.newID(),
		Date:      date,
		Status:    club.SessionActive,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		// A concurrent start won between the check above and this insert.
		if errors.Is(err, ErrSessionAlreadyActive) {
			return club.Session{}, ErrSessionAlreadyActive
		}
		return club.Session{}, fmt.Errorf("failed to create session: %w", err)
	}
	log.Info("Session started", "sessionID", sess.ID, "date", sess.Date)
	return sess, nil
}

// EndSession ends an active session and its matches, then snapshots it.
// A failed snapshot is logged and does not fail the call.
func (s *Service) EndSession(ctx context.Context, sessionID string) (club.Session, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return club.Session{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	sess, err := club.FindSession(sessions, sessionID)
	if err != nil {
		return club.Session{}, err
	}
	if sess.Status == club.SessionEnded {
		return club.Session{}, &club.ValidationError{Field: "session", Message: "session already ended"}
	}
	return s.end(ctx, sess)
}

func (s *Service) end(ctx context.Context, sess club.Session) (club.Session, error) {
	if err := s.store.UpdateSessionStatus(ctx, sess.ID, club.SessionEnded); err != nil {
		return club.Session{}, fmt.Errorf("failed to end session %s: %w", sess.ID, err)
	}
	sess.Status = club.SessionEnded

	if err := s.endMatches(ctx, sess.ID); err != nil {
		return club.Session{}, err
	}
	log.Info("Session ended", "sessionID", sess.ID, "date", sess.Date)

	snap, err := s.snapshots.SnapshotSession(ctx, sess.ID)
	if err != nil {
		s.metrics.IncSnapshotFailures()
		log.Error("Failed to snapshot ended session", "error", err, "sessionID", sess.ID)
		return sess, nil
	}
	s.notify(ctx, snap)
	return sess, nil
}

func (s *Service) endMatches(ctx context.Context, sessionID string) error {
	matches, err := s.store.ListMatches(ctx)
	if err != nil {
		return fmt.Errorf("failed to list matches: %w", err)
	}
	now := s.now().UTC()
	for _, m := range matches {
		if m.SessionID != sessionID || m.EndedAt != nil {
			continue
		}
		m.EndedAt = &now
		if err := s.store.UpdateMatch(ctx, m); err != nil {
			return fmt.Errorf("failed to end match %s: %w", m.ID, err)
		}
		log.Debug("Match ended", "matchID", m.ID, "sessionID", sessionID)
	}
	return nil
}

// notify sends the session summary. Failures are logged only.
func (s *Service) notify(ctx context.Context, snap club.StatisticsSnapshot) {
	summary := notifier.SessionSummary{
		SessionID: snap.SessionID,
		Date:      snap.SessionDate,
		Season:    snap.Season,
		CheckIns:  len(snap.CheckIns),
		Matches:   len(snap.Matches),
	}
	players, err := s.store.ListPlayers(ctx)
	if err != nil {
		log.Warn("Sending session summary without groups", "error", err, "sessionID", snap.SessionID)
	} else {
		groups := attendance.ComputeGroupAttendance([]club.StatisticsSnapshot{snap}, players, attendance.Filter{})
		for _, g := range groups.Groups {
			summary.Groups = append(summary.Groups, notifier.GroupCount{Group: g.GroupName, CheckIns: g.CheckInCount})
		}
	}
	if _, err := s.notifier.SendSessionSummary(summary, IsDryRun(ctx)); err != nil {
		log.Error("Failed to send session summary", "error", err, "sessionID", snap.SessionID)
	}
}

// CheckIn adds a player to an active session. Checking in twice returns
// the existing check-in with created set to false.
func (s *Service) CheckIn(ctx context.Context, req CheckInRequest) (club.CheckIn, bool, error) {
	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > club.MaxNotesLength {
		return club.CheckIn{}, false, &club.ValidationError{
			Field:   "notes",
			Message: fmt.Sprintf("must be at most %d characters", club.MaxNotesLength),
		}
	}
	if req.MaxRounds != nil && *req.MaxRounds < 1 {
		return club.CheckIn{}, false, &club.ValidationError{Field: "maxRounds", Message: "must be positive"}
	}

	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return club.CheckIn{}, false, fmt.Errorf("failed to list sessions: %w", err)
	}
	sess, err := club.FindSession(sessions, req.SessionID)
	if err != nil {
		return club.CheckIn{}, false, err
	}
	if sess.Status != club.SessionActive {
		return club.CheckIn{}, false, &club.ValidationError{Field: "session", Message: "session is not active"}
	}

	players, err := s.store.ListPlayers(ctx)
	if err != nil {
		return club.CheckIn{}, false, fmt.Errorf("failed to list players: %w", err)
	}
	if _, err := club.FindPlayer(players, req.PlayerID); err != nil {
		return club.CheckIn{}, false, err
	}

	stored, created, err := s.store.CreateCheckIn(ctx, club.CheckIn{
		ID:        s.newID(),
		SessionID: req.SessionID,
		PlayerID:  req.PlayerID,
		CreatedAt: s.now().UTC(),
		MaxRounds: req.MaxRounds,
		Notes:     req.Notes,
	})
	if err != nil {
		return club.CheckIn{}, false, fmt.Errorf("failed to check in: %w", err)
	}
	if created {
		log.Info("Player checked in", "sessionID", req.SessionID, "playerID", req.PlayerID)
	} else {
		log.Debug("Player already checked in", "sessionID", req.SessionID, "playerID", req.PlayerID, "checkInID", stored.ID)
	}
	return stored, created, nil
}

// Checkout removes a player's check-in from a session.
func (s *Service) Checkout(ctx context.Context, sessionID, playerID string) error {
	checkIns, err := s.store.ListCheckIns(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to list check-ins: %w", err)
	}
	for _, c := range checkIns {
		if c.PlayerID != playerID {
			continue
		}
		if err := s.store.DeleteCheckIn(ctx, c.ID); err != nil {
			return fmt.Errorf("failed to check out: %w", err)
		}
		log.Info("Player checked out", "sessionID", sessionID, "playerID", playerID)
		return nil
	}
	return &club.NotFoundError{Entity: "check-in", ID: sessionID + "/" + playerID}
}
