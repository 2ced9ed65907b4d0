// package query implements the keyed async cache that mediates all playlist
// reads and writes against the backend.
//
// The cache guarantees three things: at most one in-flight fetch per key
// (concurrent readers join it), an invalidation always wins over a
// concurrently-resolving fetch that started before it, and a mutation only
// invalidates after it has succeeded.
package query

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/phonos/internal/shared"
)

// Key identifies a cached resource. Keys are unique per logical resource and
// each key always holds the same value type.
type Key string

// Playlists is the key for the playlist list.
const Playlists Key = "playlists"

// PlaylistKey returns the key for a single playlist.
func PlaylistKey(id int) Key {
	return Key(fmt.Sprintf("playlist:%d", id))
}

// entry is the cache slot for one key. value and err are stable once done is
// closed; fresh records whether the fetch survived invalidation.
type entry struct {
	value any
	err   error
	fresh bool
	gen   uint64
	done  chan struct{}
}

// Cache is a keyed async cache. The zero value is not usable; construct with
// [NewCache].
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	gens    map[Key]uint64
	logger  *log.Logger
}

// NewCache creates an empty cache.
func NewCache(logger *log.Logger) *Cache {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Cache{
		entries: make(map[Key]*entry),
		gens:    make(map[Key]uint64),
		logger:  logger,
	}
}

// Get returns the fresh cached value for key, joins an in-flight fetch if one
// exists, or starts fetch otherwise.
//
// On fetch failure nothing is stored, the key stays absent or stale, and every
// joined caller receives the same error.
func Get[V any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (V, error)) (V, error) {
	var zero V
	var e *entry

	for {
		c.mu.Lock()
		e = c.entries[key]

		if e != nil && e.done == nil && e.fresh {
			value := e.value
			c.mu.Unlock()
			return value.(V), nil
		}

		if e != nil && e.done != nil {
			done := e.done
			gen := c.gens[key]
			c.mu.Unlock()

			select {
			case <-done:
			case <-ctx.Done():
				return zero, ctx.Err()
			}

			if e.err != nil {
				return zero, e.err
			}
			// An entry generation behind the one observed at join time
			// means the fetch predates an invalidation; the joined value
			// is stale for this caller, so go around and fetch fresh.
			if e.gen == gen {
				return e.value.(V), nil
			}
			continue
		}
		break
	}

	e = &entry{gen: c.gens[key], done: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	c.logger.Debug("cache fetch", "key", key)
	value, err := fetch(ctx)

	c.mu.Lock()
	if err != nil {
		e.err = err
		if c.entries[key] == e {
			delete(c.entries, key)
		}
	} else {
		e.value = value
		// A generation bump while the fetch was in flight means an
		// invalidation happened; the result is usable but stale.
		e.fresh = c.gens[key] == e.gen
	}
	done := e.done
	e.done = nil
	close(done)
	c.mu.Unlock()

	if err != nil {
		return zero, err
	}
	return value, nil
}

// Invalidate marks the given keys stale; the next Get for each always issues
// a fresh fetch.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked(keys)
}

func (c *Cache) invalidateLocked(keys []Key) {
	for _, key := range keys {
		c.gens[key]++
		if e := c.entries[key]; e != nil && e.done == nil {
			e.fresh = false
		}
		c.logger.Debug("cache invalidate", "key", key)
	}
}

// Mutate executes the write and, only after it resolves successfully,
// invalidates every listed key as a single step. A failed mutation
// invalidates nothing and stores nothing.
func (c *Cache) Mutate(ctx context.Context, write func(context.Context) error, invalidates ...Key) error {
	if err := write(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked(invalidates)
	return nil
}
