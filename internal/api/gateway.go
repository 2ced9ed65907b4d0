// package api implements the typed request surface to the phonos backend.
//
// One Gateway is the canonical client for the whole REST surface; every
// authenticated request carries the session bearer token and every non-2xx
// response is mapped into the shared error taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/phonos/internal/models"
	"github.com/desertthunder/phonos/internal/shared"
	"golang.org/x/time/rate"
)

// TokenSource supplies the current session token. [auth.Flow.Token] is the
// production implementation, so a logout is visible to the gateway on the
// very next request.
type TokenSource func() (string, error)

// Gateway is the request surface bound to one session.
type Gateway struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	limiter        *rate.Limiter
	logger         *log.Logger
	onUnauthorized func()
}

// GatewayOpts configures a [Gateway].
type GatewayOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	// RequestsPerSecond bounds outgoing calls; zero disables limiting.
	RequestsPerSecond float64
	Logger            *log.Logger
}

// NewGateway creates a gateway for the backend at BaseURL.
func NewGateway(opts GatewayOpts) *Gateway {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:4000"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Gateway{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		tokens:     opts.Tokens,
		limiter:    limiter,
		logger:     opts.Logger,
	}
}

// OnUnauthorized registers the hook invoked when the backend answers 401.
// The session flow registers its Logout here: a 401 invalidates the session
// as a side effect visible to every caller.
func (g *Gateway) OnUnauthorized(fn func()) {
	g.onUnauthorized = fn
}

// BaseURL returns the backend base URL the gateway is bound to.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// do performs an authenticated request and decodes the JSON response into
// result when it is non-nil.
func (g *Gateway) do(ctx context.Context, method, path string, body any, result any) error {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrNetwork, err)
		}
	}

	token, err := g.tokens()
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := shared.GenerateID()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	g.logger.Debug("api request", "id", requestID, "method", method, "path", path)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		g.logger.Warn("session invalidated by backend", "path", path)
		if g.onUnauthorized != nil {
			g.onUnauthorized()
		}
		return shared.ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &shared.ServerError{Status: resp.StatusCode}
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// ListPlaylists retrieves all of the user's playlists.
func (g *Gateway) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	if err := g.do(ctx, http.MethodGet, "/playlists", nil, &playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

// CreatePlaylist creates an empty playlist with the given name.
func (g *Gateway) CreatePlaylist(ctx context.Context, name string) (models.Playlist, error) {
	body := map[string]any{"name": name, "elements": []models.PlaylistElement{}}

	var playlist models.Playlist
	if err := g.do(ctx, http.MethodPost, "/playlists", body, &playlist); err != nil {
		return models.Playlist{}, err
	}
	return playlist, nil
}

// GetPlaylist retrieves a playlist by ID.
func (g *Gateway) GetPlaylist(ctx context.Context, id int) (models.Playlist, error) {
	var playlist models.Playlist
	if err := g.do(ctx, http.MethodGet, fmt.Sprintf("/playlists/%d", id), nil, &playlist); err != nil {
		return models.Playlist{}, err
	}
	return playlist, nil
}

// UpdatePlaylist replaces the stored playlist with the given value.
//
// The carried version makes the write compare-and-swap: the server rejects a
// version behind the stored one with a 409, which surfaces as
// [shared.ServerError]. The caller refetches and redoes the edit.
func (g *Gateway) UpdatePlaylist(ctx context.Context, playlist models.Playlist) (models.Playlist, error) {
	var updated models.Playlist
	if err := g.do(ctx, http.MethodPut, fmt.Sprintf("/playlists/%d", playlist.ID), playlist, &updated); err != nil {
		return models.Playlist{}, err
	}
	return updated, nil
}

// DeletePlaylist deletes a playlist by ID.
func (g *Gateway) DeletePlaylist(ctx context.Context, id int) error {
	return g.do(ctx, http.MethodDelete, fmt.Sprintf("/playlists/%d", id), nil, nil)
}

// Search queries the provider catalog through the backend.
func (g *Gateway) Search(ctx context.Context, query string) (models.SearchResults, error) {
	var results models.SearchResults
	path := "/spotify/search?q=" + url.QueryEscape(query)
	if err := g.do(ctx, http.MethodGet, path, nil, &results); err != nil {
		return models.SearchResults{}, err
	}
	return results, nil
}

// AlbumSongs retrieves the track listing for an album.
func (g *Gateway) AlbumSongs(ctx context.Context, albumID string) ([]models.Song, error) {
	var songs []models.Song
	path := "/spotify/album_songs/" + url.PathEscape(albumID)
	if err := g.do(ctx, http.MethodGet, path, nil, &songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// AlbumElement fetches an album's songs and folds them into a playlist
// element carrying the album's search metadata.
func (g *Gateway) AlbumElement(ctx context.Context, album models.AlbumSearchResult) (models.PlaylistElement, error) {
	songs, err := g.AlbumSongs(ctx, album.SpotifyID)
	if err != nil {
		return models.PlaylistElement{}, err
	}

	album.Songs = songs
	return models.ElementFromAlbum(album), nil
}

// SendPlayerCommand forwards a playback command to the backend. The response
// is a bare ack; the effect arrives through the realtime channel.
func (g *Gateway) SendPlayerCommand(ctx context.Context, command models.PlaybackCommand) error {
	return g.do(ctx, http.MethodPost, "/player", command, nil)
}

// RealtimeToken obtains a short-lived token for the realtime channel. The
// long-lived bearer token never appears in a URL, so transports that log
// query strings cannot leak it.
func (g *Gateway) RealtimeToken(ctx context.Context) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %v", shared.ErrNetwork, err)
		}
	}

	token, err := g.tokens()
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/player/sse_token", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if g.onUnauthorized != nil {
			g.onUnauthorized()
		}
		return "", shared.ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &shared.ServerError{Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	realtime := strings.TrimSpace(string(raw))
	if realtime == "" {
		return "", fmt.Errorf("%w: empty realtime token", shared.ErrServiceUnavailable)
	}

	return realtime, nil
}
