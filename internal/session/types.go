package session

import (
	"context"
	"time"

	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/metrics"
)

// ErrSessionAlreadyActive is returned when starting a session while another is active.
var ErrSessionAlreadyActive = club.ErrActiveSessionExists

// CheckInRequest is a player's request to join a session.
type CheckInRequest struct {
	SessionID string  `json:"sessionId"`
	PlayerID  string  `json:"playerId"`
	MaxRounds *int    `json:"maxRounds,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// Service handles the lifecycle of training sessions.
type Service struct {
	store       club.Store
	snapshots   SnapshotBuilder
	notifier    Notifier
	metrics     metrics.Metrics
	maxDuration time.Duration
	now         func() time.Time
	newID       func() string
}

type contextKey string

const dryRunKey contextKey = "dryRun"

// WithDryRun marks ctx so that notifications are logged instead of sent.
func WithDryRun(ctx context.Context, dryRun bool) context.Context {
	return context.WithValue(ctx, dryRunKey, dryRun)
}

// IsDryRun reports whether ctx was marked by WithDryRun.
func IsDryRun(ctx context.Context) bool {
	dryRun, ok := ctx.Value(dryRunKey).(bool)
	return ok && dryRun
}
