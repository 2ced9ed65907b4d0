// package library layers the query cache over the gateway for playlist reads
// and writes, owning the key space and the invalidation rules.
package library

import (
	"context"

	"github.com/desertthunder/phonos/internal/api"
	"github.com/desertthunder/phonos/internal/models"
	"github.com/desertthunder/phonos/internal/query"
)

// Library is the read/write surface for playlists. Reads go through the
// cache; writes go through the gateway and invalidate exactly the affected
// keys — never an unrelated playlist's entry.
type Library struct {
	cache   *query.Cache
	gateway *api.Gateway
}

// New creates a Library over the given gateway and cache.
func New(gateway *api.Gateway, cache *query.Cache) *Library {
	return &Library{cache: cache, gateway: gateway}
}

// Playlists returns the playlist list, fetching on a cold or stale cache.
func (l *Library) Playlists(ctx context.Context) ([]models.Playlist, error) {
	return query.Get(ctx, l.cache, query.Playlists, l.gateway.ListPlaylists)
}

// Playlist returns a single playlist by ID.
func (l *Library) Playlist(ctx context.Context, id int) (models.Playlist, error) {
	return query.Get(ctx, l.cache, query.PlaylistKey(id), func(ctx context.Context) (models.Playlist, error) {
		return l.gateway.GetPlaylist(ctx, id)
	})
}

// Create creates an empty playlist and invalidates the list key.
func (l *Library) Create(ctx context.Context, name string) (models.Playlist, error) {
	var created models.Playlist
	err := l.cache.Mutate(ctx, func(ctx context.Context) error {
		var err error
		created, err = l.gateway.CreatePlaylist(ctx, name)
		return err
	}, query.Playlists)
	if err != nil {
		return models.Playlist{}, err
	}
	return created, nil
}

// Update replaces the stored playlist with the given value and invalidates
// its key and the list key. The value usually comes from the pure edit ops
// in [models] applied to a cached snapshot.
func (l *Library) Update(ctx context.Context, playlist models.Playlist) (models.Playlist, error) {
	var updated models.Playlist
	err := l.cache.Mutate(ctx, func(ctx context.Context) error {
		var err error
		updated, err = l.gateway.UpdatePlaylist(ctx, playlist)
		return err
	}, query.PlaylistKey(playlist.ID), query.Playlists)
	if err != nil {
		return models.Playlist{}, err
	}
	return updated, nil
}

// Delete removes a playlist and invalidates its key and the list key.
func (l *Library) Delete(ctx context.Context, id int) error {
	return l.cache.Mutate(ctx, func(ctx context.Context) error {
		return l.gateway.DeletePlaylist(ctx, id)
	}, query.PlaylistKey(id), query.Playlists)
}
