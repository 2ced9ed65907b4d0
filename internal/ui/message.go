package ui

import (
	"github.com/desertthunder/phonos/internal/models"
	"github.com/desertthunder/phonos/internal/search"
)

// playlistsFetchedMsg carries the library listing.
type playlistsFetchedMsg struct {
	playlists []models.Playlist
	err       error
}

// playlistFetchedMsg carries a single playlist snapshot for the detail view.
type playlistFetchedMsg struct {
	playlist models.Playlist
	err      error
}

// playlistEditedMsg reports the outcome of a write against the open playlist.
type playlistEditedMsg struct {
	playlist models.Playlist
	err      error
}

// searchResultsMsg carries a debounced search response.
type searchResultsMsg search.Result

// playbackMsg carries a realtime playback state push. A nil state means the
// player is idle.
type playbackMsg struct {
	state *models.PlaybackState
	open  bool
}

// commandFailedMsg reports a playback command that could not be sent.
type commandFailedMsg struct {
	err error
}
