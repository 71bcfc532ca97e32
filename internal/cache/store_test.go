package cache_test

import (
	"context"
	"sync"
	"testing"

	"github.com/marchalgreen/Rundeklar-sub002/internal/cache"
	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CachesNonEmptyReads(t *testing.T) {
	ctx := context.Background()
	backing := club.NewMock()
	backing.Players = []club.Player{{ID: "p1", Name: "Anna"}}
	metr := metrics.NewMock()
	store := cache.New(backing, metr)

	for i := 0; i < 3; i++ {
		players, err := store.ListPlayers(ctx)
		require.NoError(t, err)
		assert.Len(t, players, 1)
	}

	assert.Equal(t, 1, backing.ListPlayersCalls, "Only the first read should reach the store")
	assert.Equal(t, 1, metr.CacheMisses("players"))
	assert.Equal(t, 2, metr.CacheHits("players"))
}

func TestStore_NeverCachesEmptyReads(t *testing.T) {
	ctx := context.Background()
	backing := club.NewMock()
	store := cache.New(backing, metrics.NewMock())

	snapshots, err := store.ListStatisticsSnapshots(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshots)

	// A write committed by someone else becomes visible on the next read.
	backing.Snapshots = []club.StatisticsSnapshot{{ID: "snap1", SessionID: "s1"}}

	snapshots, err = store.ListStatisticsSnapshots(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshots, 1)
	assert.Equal(t, 2, backing.ListStatisticsSnapshotsCalls)

	_, err = store.ListStatisticsSnapshots(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, backing.ListStatisticsSnapshotsCalls, "The non-empty read should now be cached")
}

func TestStore_WritesPatchInsteadOfRefetch(t *testing.T) {
	ctx := context.Background()
	backing := club.NewMock()
	backing.CheckIns = []club.CheckIn{{ID: "c1", SessionID: "s1", PlayerID: "p1"}}
	store := cache.New(backing, metrics.NewMock())

	_, err := store.ListCheckIns(ctx, "s1")
	require.NoError(t, err)

	t.Run("create appends", func(t *testing.T) {
		_, created, err := store.CreateCheckIn(ctx, club.CheckIn{ID: "c2", SessionID: "s1", PlayerID: "p2"})
		require.NoError(t, err)
		assert.True(t, created)

		checkIns, err := store.ListCheckIns(ctx, "s1")
		require.NoError(t, err)
		assert.Len(t, checkIns, 2)
	})

	t.Run("duplicate create does not double insert", func(t *testing.T) {
		stored, created, err := store.CreateCheckIn(ctx, club.CheckIn{ID: "c3", SessionID: "s1", PlayerID: "p2"})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "c2", stored.ID)

		checkIns, err := store.ListCheckIns(ctx, "s1")
		require.NoError(t, err)
		assert.Len(t, checkIns, 2)
	})

	t.Run("delete removes", func(t *testing.T) {
		require.NoError(t, store.DeleteCheckIn(ctx, "c1"))
		checkIns, err := store.ListCheckIns(ctx, "")
		require.NoError(t, err)
		require.Len(t, checkIns, 1)
		assert.Equal(t, "c2", checkIns[0].ID)
	})

	assert.Equal(t, []string{""}, backing.ListCheckInsCalls, "Writes must not trigger a refetch")
}

func TestStore_SessionStatusPatch(t *testing.T) {
	ctx := context.Background()
	backing := club.NewMock()
	backing.Sessions = []club.Session{{ID: "s1", Status: club.SessionActive}}
	store := cache.New(backing, metrics.NewMock())

	_, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.NoError(t, store.UpdateSessionStatus(ctx, "s1", club.SessionEnded))

	sessions, err := store.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, club.SessionEnded, sessions[0].Status)
	assert.Equal(t, 1, backing.ListSessionsCalls)
}

func TestStore_InvalidateForcesReload(t *testing.T) {
	ctx := context.Background()
	backing := club.NewMock()
	backing.Matches = []club.Match{{ID: "m1"}}
	store := cache.New(backing, metrics.NewMock())

	_, err := store.ListMatches(ctx)
	require.NoError(t, err)
	store.Invalidate()
	_, err = store.ListMatches(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, backing.ListMatchesCalls)
}

func TestStore_ConcurrentMissesShareOneRead(t *testing.T) {
	ctx := context.Background()
	backing := club.NewMock()
	release := make(chan struct{})
	backing.ListMatchesFunc = func() ([]club.Match, error) {
		<-release
		return []club.Match{{ID: "m1"}}, nil
	}
	store := cache.New(backing, metrics.NewMock())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			matches, err := store.ListMatches(ctx)
			assert.NoError(t, err)
			assert.Len(t, matches, 1)
		}()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, 1, backing.ListMatchesCalls)
}

func TestStore_BypassReturnsBackingStore(t *testing.T) {
	backing := club.NewMock()
	store := cache.New(backing, metrics.NewMock())
	assert.Same(t, backing, store.Bypass())
}
