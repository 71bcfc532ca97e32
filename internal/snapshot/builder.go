package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/metrics"
	"github.com/marchalgreen/Rundeklar-sub002/internal/pubsub"
	"github.com/marchalgreen/Rundeklar-sub002/internal/season"
)

// New creates a new Builder.
func New(store club.Store, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Builder {
	return &Builder{
		store:   store,
		metrics: metrics,
		pubsub:  pubsub,
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

// live returns the store to read session rows from. A cached store may still
// hold an empty read from before the session's rows were committed.
func (b *Builder) live() club.Store {
	if c, ok := b.store.(bypasser); ok {
		return c.Bypass()
	}
	return b.store
}

// SnapshotSession returns the snapshot of an ended session, creating it on
// the first call. A second call returns the stored snapshot unchanged.
func (b *Builder) SnapshotSession(ctx context.Context, sessionID string) (club.StatisticsSnapshot, error) {
	live := b.live()

	sessions, err := live.ListSessions(ctx)
	if err != nil {
		return club.StatisticsSnapshot{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	session, err := club.FindSession(sessions, sessionID)
	if err != nil {
		return club.StatisticsSnapshot{}, err
	}
	if session.Status != club.SessionEnded {
		return club.StatisticsSnapshot{}, fmt.Errorf("snapshot %s: %w", sessionID, ErrSessionNotEnded)
	}

	existing, err := live.ListStatisticsSnapshots(ctx)
	if err != nil {
		return club.StatisticsSnapshot{}, fmt.Errorf("failed to list snapshots: %w", err)
	}
	for _, snap := range existing {
		if snap.SessionID == sessionID {
			log.Debug("Snapshot already exists", "sessionID", sessionID, "snapshotID", snap.ID)
			return snap, nil
		}
	}

	snap, err := b.capture(ctx, live, session)
	if err != nil {
		return club.StatisticsSnapshot{}, err
	}

	stored, created, err := b.store.CreateStatisticsSnapshot(ctx, snap)
	if err != nil {
		return club.StatisticsSnapshot{}, fmt.Errorf("failed to store snapshot: %w", err)
	}
	if !created {
		// Lost a race against a concurrent builder; theirs is the snapshot.
		log.Info("Snapshot was created concurrently", "sessionID", sessionID, "snapshotID", stored.ID)
		return stored, nil
	}

	b.metrics.IncSnapshotsCreated()
	log.Info("Snapshot created", "sessionID", sessionID, "snapshotID", stored.ID, "season", stored.Season,
		"checkIns", len(stored.CheckIns), "matches", len(stored.Matches))
	b.publish(stored)
	return stored, nil
}

// capture copies the session's current matches with their players, results
// and courts, and its check-ins.
func (b *Builder) capture(ctx context.Context, live club.Store, session club.Session) (club.StatisticsSnapshot, error) {
	label, err := season.Of(session.Date)
	if err != nil {
		return club.StatisticsSnapshot{}, &club.ValidationError{Field: "date", Message: err.Error()}
	}

	allMatches, err := live.ListMatches(ctx)
	if err != nil {
		return club.StatisticsSnapshot{}, fmt.Errorf("failed to list matches: %w", err)
	}
	matches := []club.Match{}
	matchIDs := make(map[string]struct{})
	for _, m := range allMatches {
		if m.SessionID == session.ID {
			matches = append(matches, m)
			matchIDs[m.ID] = struct{}{}
		}
	}

	allMatchPlayers, err := live.ListMatchPlayers(ctx)
	if err != nil {
		return club.StatisticsSnapshot{}, fmt.Errorf("failed to list match players: %w", err)
	}
	matchPlayers := []club.MatchPlayer{}
	for _, mp := range allMatchPlayers {
		if _, ok := matchIDs[mp.MatchID]; ok {
			matchPlayers = append(matchPlayers, mp)
		}
	}

	checkIns, err := live.ListCheckIns(ctx, session.ID)
	if err != nil {
		return club.StatisticsSnapshot{}, fmt.Errorf("failed to list check-ins: %w", err)
	}
	if checkIns == nil {
		checkIns = []club.CheckIn{}
	}

	allResults, err := live.ListMatchResults(ctx)
	if err != nil {
		return club.StatisticsSnapshot{}, fmt.Errorf("failed to list match results: %w", err)
	}
	results := []club.MatchResult{}
	for _, r := range allResults {
		if _, ok := matchIDs[r.MatchID]; ok {
			results = append(results, r)
		}
	}

	allCourts, err := live.ListCourts(ctx)
	if err != nil {
		return club.StatisticsSnapshot{}, fmt.Errorf("failed to list courts: %w", err)
	}
	used := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		used[m.CourtID] = struct{}{}
	}
	courts := []club.Court{}
	for _, ct := range allCourts {
		if _, ok := used[ct.ID]; ok {
			courts = append(courts, ct)
		}
	}

	return club.StatisticsSnapshot{
		ID:           b.newID(),
		SessionID:    session.ID,
		SessionDate:  session.Date,
		Season:       label,
		Matches:      matches,
		MatchPlayers: matchPlayers,
		CheckIns:     checkIns,
		MatchResults: results,
		Courts:       courts,
		CreatedAt:    b.now().UTC(),
	}, nil
}

func (b *Builder) publish(snap club.StatisticsSnapshot) {
	event := pubsub.SnapshotCreated{
		SnapshotID:   snap.ID,
		SessionID:    snap.SessionID,
		SessionDate:  snap.SessionDate,
		Season:       snap.Season,
		CheckIns:     len(snap.CheckIns),
		Matches:      len(snap.Matches),
		MatchPlayers: len(snap.MatchPlayers),
	}
	if err := b.pubsub.SendMessage(pubsub.EventSnapshotCreated, event); err != nil {
		log.Error("Failed to publish snapshot event", "error", err, "snapshotID", snap.ID)
	}
}
