// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for playlist management and playback:
//  1. [PlaylistListView] : Browse playlists
//  2. [PlaylistDetailView] : Inspect a playlist's elements and start playback
//  3. [SearchView] : Debounced Spotify search, adding hits to the open playlist
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via typed message structs.
// Playback states flow through a channel from the realtime player subscription, rendered as a persistent now-playing footer.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
