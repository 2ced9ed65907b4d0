package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestCacheGet(t *testing.T) {
	t.Run("Caches Fresh Value", func(t *testing.T) {
		c := NewCache(nil)
		var calls atomic.Int64

		fetch := func(context.Context) (string, error) {
			calls.Add(1)
			return "value", nil
		}

		for range 3 {
			got, err := Get(context.Background(), c, "k", fetch)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != "value" {
				t.Errorf("expected 'value', got %q", got)
			}
		}

		if calls.Load() != 1 {
			t.Errorf("expected 1 fetch, got %d", calls.Load())
		}
	})

	t.Run("Concurrent Gets Share One Fetch", func(t *testing.T) {
		c := NewCache(nil)
		var calls atomic.Int64
		release := make(chan struct{})

		fetch := func(context.Context) (int, error) {
			calls.Add(1)
			<-release
			return 42, nil
		}

		const n = 16
		results := make([]int, n)
		errs := make([]error, n)
		var started, finished sync.WaitGroup

		for i := range n {
			started.Add(1)
			finished.Add(1)
			go func() {
				started.Done()
				results[i], errs[i] = Get(context.Background(), c, "k", fetch)
				finished.Done()
			}()
		}

		started.Wait()
		close(release)
		finished.Wait()

		if calls.Load() != 1 {
			t.Errorf("expected exactly 1 underlying fetch, got %d", calls.Load())
		}
		for i := range n {
			if errs[i] != nil {
				t.Fatalf("caller %d got error: %v", i, errs[i])
			}
			if results[i] != 42 {
				t.Errorf("caller %d got %d, expected identical value 42", i, results[i])
			}
		}
	})

	t.Run("Failure Stores Nothing And Shares Error", func(t *testing.T) {
		c := NewCache(nil)
		var calls atomic.Int64
		boom := errors.New("boom")

		failing := func(context.Context) (string, error) {
			calls.Add(1)
			return "", boom
		}

		if _, err := Get(context.Background(), c, "k", failing); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}

		// key stayed absent, a retry fetches again
		working := func(context.Context) (string, error) {
			calls.Add(1)
			return "ok", nil
		}
		got, err := Get(context.Background(), c, "k", working)
		if err != nil || got != "ok" {
			t.Fatalf("expected recovery, got %q / %v", got, err)
		}

		if calls.Load() != 2 {
			t.Errorf("expected 2 fetches, got %d", calls.Load())
		}
	})

	t.Run("Keys Are Independent", func(t *testing.T) {
		c := NewCache(nil)
		var calls atomic.Int64

		fetch := func(context.Context) (string, error) {
			calls.Add(1)
			return "v", nil
		}

		Get(context.Background(), c, PlaylistKey(1), fetch)
		Get(context.Background(), c, PlaylistKey(2), fetch)
		Get(context.Background(), c, Playlists, fetch)

		if calls.Load() != 3 {
			t.Errorf("expected one fetch per key, got %d", calls.Load())
		}
	})
}

func TestCacheInvalidate(t *testing.T) {
	t.Run("Next Get Refetches", func(t *testing.T) {
		c := NewCache(nil)
		var calls atomic.Int64

		fetch := func(context.Context) (string, error) {
			calls.Add(1)
			return "v", nil
		}

		Get(context.Background(), c, "k", fetch)
		c.Invalidate("k")
		Get(context.Background(), c, "k", fetch)

		if calls.Load() != 2 {
			t.Errorf("expected refetch after invalidate, got %d fetches", calls.Load())
		}
	})

	t.Run("Invalidation Wins Over In-Flight Fetch", func(t *testing.T) {
		c := NewCache(nil)
		var calls atomic.Int64
		fetching := make(chan struct{})
		release := make(chan struct{})

		slow := func(context.Context) (string, error) {
			calls.Add(1)
			close(fetching)
			<-release
			return "stale", nil
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			got, err := Get(context.Background(), c, "k", slow)
			if err != nil || got != "stale" {
				t.Errorf("expected in-flight caller to still resolve, got %q / %v", got, err)
			}
		}()

		<-fetching
		c.Invalidate("k") // lands while the fetch is in flight
		close(release)
		<-done

		// the resolved value must not have been stored as fresh
		fresh := func(context.Context) (string, error) {
			calls.Add(1)
			return "fresh", nil
		}
		got, err := Get(context.Background(), c, "k", fresh)
		if err != nil {
			t.Fatal(err)
		}
		if got != "fresh" {
			t.Errorf("expected refetch after racing invalidation, got %q", got)
		}
		if calls.Load() != 2 {
			t.Errorf("expected 2 fetches, got %d", calls.Load())
		}
	})

	t.Run("Get After Invalidate Skips In-Flight Fetch", func(t *testing.T) {
		c := NewCache(nil)
		var calls atomic.Int64
		fetching := make(chan struct{})
		release := make(chan struct{})

		slow := func(context.Context) (string, error) {
			calls.Add(1)
			close(fetching)
			<-release
			return "stale", nil
		}

		first := make(chan struct{})
		go func() {
			defer close(first)
			Get(context.Background(), c, "k", slow)
		}()

		<-fetching
		c.Invalidate("k")

		// This Get starts after the invalidation, so it must not settle
		// for the value the pre-invalidation fetch resolves with.
		second := make(chan struct{})
		go func() {
			defer close(second)
			got, err := Get(context.Background(), c, "k", func(context.Context) (string, error) {
				calls.Add(1)
				return "fresh", nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if got != "fresh" {
				t.Errorf("post-invalidation get returned %q, expected a fresh fetch", got)
			}
		}()

		close(release)
		<-first
		<-second

		if calls.Load() != 2 {
			t.Errorf("expected the late caller to refetch, got %d fetches", calls.Load())
		}
	})

	t.Run("Unrelated Keys Unaffected", func(t *testing.T) {
		c := NewCache(nil)
		var calls atomic.Int64

		fetch := func(context.Context) (string, error) {
			calls.Add(1)
			return "v", nil
		}

		Get(context.Background(), c, PlaylistKey(1), fetch)
		Get(context.Background(), c, PlaylistKey(2), fetch)
		c.Invalidate(PlaylistKey(1))
		Get(context.Background(), c, PlaylistKey(2), fetch)

		if calls.Load() != 2 {
			t.Errorf("expected playlist 2 to stay fresh, got %d fetches", calls.Load())
		}
	})
}

func TestCacheMutate(t *testing.T) {
	t.Run("Success Invalidates Listed Keys", func(t *testing.T) {
		c := NewCache(nil)
		var calls atomic.Int64

		fetch := func(context.Context) (string, error) {
			calls.Add(1)
			return "v", nil
		}

		Get(context.Background(), c, Playlists, fetch)
		Get(context.Background(), c, PlaylistKey(1), fetch)

		err := c.Mutate(context.Background(), func(context.Context) error {
			return nil
		}, Playlists, PlaylistKey(1))
		if err != nil {
			t.Fatal(err)
		}

		Get(context.Background(), c, Playlists, fetch)
		Get(context.Background(), c, PlaylistKey(1), fetch)

		if calls.Load() != 4 {
			t.Errorf("expected both keys refetched, got %d fetches", calls.Load())
		}
	})

	t.Run("Failure Invalidates Nothing", func(t *testing.T) {
		c := NewCache(nil)
		var calls atomic.Int64

		fetch := func(context.Context) (string, error) {
			calls.Add(1)
			return "v", nil
		}

		Get(context.Background(), c, Playlists, fetch)

		boom := errors.New("write failed")
		err := c.Mutate(context.Background(), func(context.Context) error {
			return boom
		}, Playlists)
		if !errors.Is(err, boom) {
			t.Fatalf("expected write error surfaced, got %v", err)
		}

		Get(context.Background(), c, Playlists, fetch)

		if calls.Load() != 1 {
			t.Errorf("expected entry untouched after failed mutation, got %d fetches", calls.Load())
		}
	})
}
