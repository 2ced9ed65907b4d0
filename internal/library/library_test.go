package library

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/phonos/internal/api"
	"github.com/desertthunder/phonos/internal/models"
	"github.com/desertthunder/phonos/internal/query"
	"github.com/desertthunder/phonos/internal/shared"
)

// backendCounts tracks requests per method+path prefix.
type backendCounts struct {
	lists   atomic.Int64
	singles atomic.Int64
}

func newTestLibrary(t *testing.T, fail *atomic.Bool) (*Library, *backendCounts) {
	t.Helper()

	counts := &backendCounts{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail != nil && fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/playlists":
			counts.lists.Add(1)
			json.NewEncoder(w).Encode([]models.Playlist{{ID: 1, Name: "a", Version: 1}})
		case r.Method == http.MethodGet && r.URL.Path == "/playlists/1":
			counts.singles.Add(1)
			json.NewEncoder(w).Encode(models.Playlist{ID: 1, Name: "a", Version: 1})
		case r.Method == http.MethodPost && r.URL.Path == "/playlists":
			json.NewEncoder(w).Encode(models.Playlist{ID: 2, Name: "b", Version: 1})
		case r.Method == http.MethodPut && r.URL.Path == "/playlists/1":
			var p models.Playlist
			json.NewDecoder(r.Body).Decode(&p)
			p.Version++
			json.NewEncoder(w).Encode(p)
		case r.Method == http.MethodDelete && r.URL.Path == "/playlists/1":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	gw := api.NewGateway(api.GatewayOpts{
		BaseURL: srv.URL,
		Tokens:  func() (string, error) { return "t", nil },
	})
	return New(gw, query.NewCache(nil)), counts
}

func TestLibrary(t *testing.T) {
	t.Run("Playlists Are Cached", func(t *testing.T) {
		lib, counts := newTestLibrary(t, nil)

		for range 3 {
			if _, err := lib.Playlists(context.Background()); err != nil {
				t.Fatal(err)
			}
		}

		if counts.lists.Load() != 1 {
			t.Errorf("expected 1 list fetch, got %d", counts.lists.Load())
		}
	})

	t.Run("Update Invalidates Playlist And List", func(t *testing.T) {
		lib, counts := newTestLibrary(t, nil)
		ctx := context.Background()

		playlist, err := lib.Playlist(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := lib.Playlists(ctx); err != nil {
			t.Fatal(err)
		}

		edited := models.AddElement(playlist, models.PlaylistElement{Name: "Blue"})
		if _, err := lib.Update(ctx, edited); err != nil {
			t.Fatal(err)
		}

		if _, err := lib.Playlist(ctx, 1); err != nil {
			t.Fatal(err)
		}
		if _, err := lib.Playlists(ctx); err != nil {
			t.Fatal(err)
		}

		if counts.singles.Load() != 2 {
			t.Errorf("expected playlist refetched after update, got %d fetches", counts.singles.Load())
		}
		if counts.lists.Load() != 2 {
			t.Errorf("expected list refetched after update, got %d fetches", counts.lists.Load())
		}
	})

	t.Run("Failed Update Leaves Cache Untouched", func(t *testing.T) {
		fail := &atomic.Bool{}
		lib, counts := newTestLibrary(t, fail)
		ctx := context.Background()

		playlist, err := lib.Playlist(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}

		fail.Store(true)
		if _, err := lib.Update(ctx, playlist); err == nil {
			t.Fatal("expected update failure")
		}
		fail.Store(false)

		if _, err := lib.Playlist(ctx, 1); err != nil {
			t.Fatal(err)
		}
		if counts.singles.Load() != 1 {
			t.Errorf("expected cached entry to survive failed mutation, got %d fetches", counts.singles.Load())
		}
	})

	t.Run("Delete Invalidates Both Keys", func(t *testing.T) {
		lib, counts := newTestLibrary(t, nil)
		ctx := context.Background()

		lib.Playlist(ctx, 1)
		lib.Playlists(ctx)

		if err := lib.Delete(ctx, 1); err != nil {
			t.Fatal(err)
		}

		lib.Playlists(ctx)
		if counts.lists.Load() != 2 {
			t.Errorf("expected list refetched after delete, got %d fetches", counts.lists.Load())
		}
	})

	t.Run("Create Invalidates List", func(t *testing.T) {
		lib, counts := newTestLibrary(t, nil)
		ctx := context.Background()

		lib.Playlists(ctx)

		created, err := lib.Create(ctx, "b")
		if err != nil {
			t.Fatal(err)
		}
		if created.ID != 2 {
			t.Errorf("expected server-assigned ID, got %d", created.ID)
		}

		lib.Playlists(ctx)
		if counts.lists.Load() != 2 {
			t.Errorf("expected list refetched after create, got %d fetches", counts.lists.Load())
		}
	})

	t.Run("Missing Playlist Surfaces Error", func(t *testing.T) {
		lib, _ := newTestLibrary(t, nil)

		_, err := lib.Playlist(context.Background(), 99)
		if err == nil {
			t.Fatal("expected error for unknown playlist")
		}
		var serverErr *shared.ServerError
		if !errors.As(err, &serverErr) || serverErr.Status != http.StatusNotFound {
			t.Errorf("expected ServerError{404}, got %v", err)
		}
	})
}
