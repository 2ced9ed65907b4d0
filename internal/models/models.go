// package models defines the data model shared by the phonos client: playlists
// and their elements, search results, and the playback wire types.
package models

// Song represents a single playable track inside a playlist element.
type Song struct {
	Name      string `json:"name"`
	Artists   string `json:"artists"`
	ImageURL  string `json:"image_url"`
	SpotifyID string `json:"spotify_id"`
}

// PlaylistElement groups an ordered run of songs (typically an album) inside a playlist.
type PlaylistElement struct {
	Name     string `json:"name"`
	Artists  string `json:"artists"`
	ImageURL string `json:"image_url"`
	Songs    []Song `json:"songs"`
}

// Playlist is the unit of storage on the backend.
//
// The server assigns ID on creation and bumps Version on every successful
// update; writes always replace the whole value. Element ordering is the
// addressing scheme for edits, so an edit is only valid against the snapshot
// it was computed from.
type Playlist struct {
	ID       int               `json:"id"`
	Name     string            `json:"name"`
	Version  int               `json:"version"`
	Elements []PlaylistElement `json:"elements"`
}

// SongSearchResult is a track hit from the backend search endpoint.
type SongSearchResult struct {
	Name      string `json:"name"`
	SpotifyID string `json:"spotify_id"`
	ImageURL  string `json:"image_url"`
}

// AlbumSearchResult is an album hit, carrying its full track listing so it can
// be added to a playlist as one element.
type AlbumSearchResult struct {
	Name      string `json:"name"`
	SpotifyID string `json:"spotify_id"`
	ImageURL  string `json:"image_url"`
	Songs     []Song `json:"songs"`
}

// SearchResults is the combined response of the search endpoint.
type SearchResults struct {
	Songs  []SongSearchResult `json:"songs"`
	Albums []AlbumSearchResult `json:"albums"`
}
