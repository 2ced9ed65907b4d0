package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/phonos/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = elementItem{}
	_ list.Item = songHitItem{}
	_ list.Item = albumHitItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	return fmt.Sprintf("%d elements", len(i.playlist.Elements))
}

// elementItem wraps [models.PlaylistElement] to implement [list.Item].
type elementItem struct {
	element models.PlaylistElement
	index   int
}

func (i elementItem) FilterValue() string { return i.element.Name }
func (i elementItem) Title() string       { return i.element.Name }
func (i elementItem) Description() string {
	desc := fmt.Sprintf("%d songs", len(i.element.Songs))
	if i.element.Artists != "" {
		desc = fmt.Sprintf("%s • %s", i.element.Artists, desc)
	}
	return desc
}

// songHitItem wraps [models.SongSearchResult] to implement [list.Item].
type songHitItem struct {
	song models.SongSearchResult
}

func (i songHitItem) FilterValue() string { return i.song.Name }
func (i songHitItem) Title() string       { return i.song.Name }
func (i songHitItem) Description() string { return "song" }

// albumHitItem wraps [models.AlbumSearchResult] to implement [list.Item].
type albumHitItem struct {
	album models.AlbumSearchResult
}

func (i albumHitItem) FilterValue() string { return i.album.Name }
func (i albumHitItem) Title() string       { return i.album.Name }
func (i albumHitItem) Description() string { return "album" }
