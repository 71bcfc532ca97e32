package session

import (
	"context"

	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/notifier"
)

// SnapshotBuilder captures the snapshot of an ended session.
type SnapshotBuilder interface {
	SnapshotSession(ctx context.Context, sessionID string) (club.StatisticsSnapshot, error)
}

// Notifier defines the notification operations required by the session service.
type Notifier interface {
	notifier.Notifier
}
