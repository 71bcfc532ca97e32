// Package cache puts a read-through cache in front of a club.Store.
//
// Each logical table is cached as one collection and the cache is owned by
// whoever constructs it; there is no package level state. The contract:
//
//   - A read that returns zero rows is never cached, since a concurrently
//     committing write may not be visible yet. The next read retries the store.
//   - Writes patch the cached collection (append, replace or remove the row)
//     instead of invalidating it, so concurrent writers do not stampede the store.
//   - Invalidate drops everything and is reserved for bulk operations such as
//     a restore or a tenant wipe.
//   - Concurrent misses on the same table share one store read.
package cache

import (
	"context"
	"sync"
)

// table is the cached copy of one logical table.
type table[T any] struct {
	name string
	key  func(T) string

	mu     sync.RWMutex
	rows   []T
	loaded bool
	// gen is bumped by every write so a load that started before the write
	// does not overwrite the patched collection with stale rows.
	gen uint64
}

func newTable[T any](name string, key func(T) string) *table[T] {
	return &table[T]{name: name, key: key}
}

func (t *table[T]) get() ([]T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.loaded {
		return nil, false
	}
	return clone(t.rows), true
}

func (t *table[T]) generation() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.gen
}

func (t *table[T]) fill(rows []T, gen uint64) {
	if len(rows) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		return
	}
	t.rows = clone(rows)
	t.loaded = true
}

// upsert replaces the row with the same key or appends it.
func (t *table[T]) upsert(row T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if !t.loaded {
		return
	}
	k := t.key(row)
	for i := range t.rows {
		if t.key(t.rows[i]) == k {
			t.rows[i] = row
			return
		}
	}
	t.rows = append(t.rows, row)
}

func (t *table[T]) modify(k string, fn func(*T)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if !t.loaded {
		return
	}
	for i := range t.rows {
		if t.key(t.rows[i]) == k {
			fn(&t.rows[i])
			return
		}
	}
}

func (t *table[T]) remove(k string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if !t.loaded {
		return
	}
	for i := range t.rows {
		if t.key(t.rows[i]) == k {
			t.rows = append(t.rows[:i:i], t.rows[i+1:]...)
			return
		}
	}
}

func (t *table[T]) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	t.rows = nil
	t.loaded = false
}

func clone[T any](rows []T) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	return out
}

// read serves a table from the cache or loads it through the store.
func read[T any](ctx context.Context, s *Store, t *table[T], load func(context.Context) ([]T, error)) ([]T, error) {
	if rows, ok := t.get(); ok {
		s.metrics.IncCacheHit(t.name)
		return rows, nil
	}
	s.metrics.IncCacheMiss(t.name)

	v, err, _ := s.group.Do(t.name, func() (any, error) {
		// Another flight may have filled the table since the miss above.
		if rows, ok := t.get(); ok {
			return rows, nil
		}
		gen := t.generation()
		rows, err := load(ctx)
		if err != nil {
			return nil, err
		}
		t.fill(rows, gen)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]T)), nil
}
