package snapshot

import (
	"errors"
	"time"

	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/metrics"
	"github.com/marchalgreen/Rundeklar-sub002/internal/pubsub"
)

// ErrSessionNotEnded is returned when a snapshot is requested for a session
// that is still active.
var ErrSessionNotEnded = errors.New("session not ended")

// bypasser is implemented by caching stores that can hand out the store
// they wrap.
type bypasser interface {
	Bypass() club.Store
}

// Builder captures statistics snapshots of ended sessions.
type Builder struct {
	store   club.Store
	metrics metrics.Metrics
	pubsub  pubsub.PubSubClient
	newID   func() string
	now     func() time.Time
}
