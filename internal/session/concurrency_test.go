package session_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/database"
	"github.com/marchalgreen/Rundeklar-sub002/internal/metrics"
	"github.com/marchalgreen/Rundeklar-sub002/internal/notifier"
	"github.com/marchalgreen/Rundeklar-sub002/internal/pubsub"
	"github.com/marchalgreen/Rundeklar-sub002/internal/session"
	"github.com/marchalgreen/Rundeklar-sub002/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockstepStore holds the first n session reads until all n have happened,
// so every caller sees the same "no active session" state before writing.
type lockstepStore struct {
	club.Store
	reads   atomic.Int32
	n       int32
	barrier sync.WaitGroup
}

func newLockstepStore(next club.Store, n int) *lockstepStore {
	s := &lockstepStore{Store: next, n: int32(n)}
	s.barrier.Add(n)
	return s
}

func (s *lockstepStore) ListSessions(ctx context.Context) ([]club.Session, error) {
	sessions, err := s.Store.ListSessions(ctx)
	if s.reads.Add(1) <= s.n {
		s.barrier.Done()
		s.barrier.Wait()
	}
	return sessions, err
}

func TestStartSession_ConcurrentStartsLeaveOneActive(t *testing.T) {
	ctx := context.Background()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	defer teardown()

	const starters = 2
	store := newLockstepStore(club.New(db), starters)
	metr := metrics.NewMock()
	svc := session.New(store, snapshot.New(store, metr, pubsub.NewMock()), notifier.NewMock(), metr, 12*time.Hour)

	errs := make([]error, starters)
	var wg sync.WaitGroup
	for i := 0; i < starters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.StartSession(ctx, "2024-09-04")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, session.ErrSessionAlreadyActive)
	}
	assert.Equal(t, 1, succeeded)

	sessions, err := club.New(db).ListSessions(ctx)
	require.NoError(t, err)
	active := 0
	for _, s := range sessions {
		if s.Status == club.SessionActive {
			active++
		}
	}
	assert.Equal(t, 1, active)
}
