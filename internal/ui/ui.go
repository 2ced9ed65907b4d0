package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/phonos/internal/api"
	"github.com/desertthunder/phonos/internal/library"
	"github.com/desertthunder/phonos/internal/models"
	"github.com/desertthunder/phonos/internal/player"
	"github.com/desertthunder/phonos/internal/search"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	PlaylistDetailView
	SearchView
)

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	library    *library.Library
	gateway    *api.Gateway
	searcher   *search.Searcher
	dispatcher *player.Dispatcher
	channel    *player.Channel

	width  int
	height int

	playlistList list.Model
	playlists    []models.Playlist

	elementList list.Model
	open        models.Playlist
	hasOpen     bool

	searchInput textinput.Model
	resultList  list.Model
	results     models.SearchResults

	nowPlaying *models.PlaybackState
	status     string
	err        error

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, lib *library.Library, gateway *api.Gateway, searcher *search.Searcher, dispatcher *player.Dispatcher, channel *player.Channel) *Model {
	input := textinput.New()
	input.Placeholder = "Search Spotify..."
	input.CharLimit = 120

	return &Model{
		ctx:         ctx,
		view:        PlaylistListView,
		library:     lib,
		gateway:     gateway,
		searcher:    searcher,
		dispatcher:  dispatcher,
		channel:     channel,
		searchInput: input,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init fetches the library listing and begins draining playback and search updates.
func (m *Model) Init() tea.Cmd {
	m.channel.Connect(m.ctx)
	return tea.Batch(m.fetchPlaylists(), m.waitForPlayback(), m.waitForSearch())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handlePlaybackKeys(msg); handled {
			return m, cmd
		}
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case PlaylistDetailView:
			return m.handleDetailKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		}

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.err = nil
		m.playlists = msg.playlists
		items := make([]list.Item, len(msg.playlists))
		for i, pl := range msg.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Playlists"
		m.resizeLists()
		return m, nil

	case playlistFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = PlaylistListView
			return m, nil
		}
		m.err = nil
		m.setOpen(msg.playlist)
		m.view = PlaylistDetailView
		return m, nil

	case playlistEditedMsg:
		if msg.err != nil {
			// A version conflict means our snapshot went stale; refetch
			// and let the user retry against the current value.
			m.status = fmt.Sprintf("edit failed: %v", msg.err)
			if m.hasOpen {
				return m, m.fetchPlaylist(m.open.ID)
			}
			return m, nil
		}
		m.status = ""
		m.setOpen(msg.playlist)
		return m, m.fetchPlaylists()

	case searchResultsMsg:
		if msg.Err != nil {
			m.status = fmt.Sprintf("search failed: %v", msg.Err)
			return m, m.waitForSearch()
		}
		m.status = ""
		m.results = msg.Results
		m.resultList.SetItems(resultItems(msg.Results))
		return m, m.waitForSearch()

	case playbackMsg:
		if !msg.open {
			return m, nil
		}
		m.nowPlaying = msg.state
		return m, m.waitForPlayback()

	case commandFailedMsg:
		m.status = fmt.Sprintf("command failed: %v", msg.err)
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case PlaylistListView:
		body = m.renderPlaylistList()
	case PlaylistDetailView:
		body = m.renderDetail()
	case SearchView:
		body = m.renderSearch()
	}

	return fmt.Sprintf("%s\n%s", body, m.renderFooter())
}

func (m *Model) resizeLists() {
	w, h := m.width-4, m.height-8
	if w < 0 || h < 0 {
		return
	}
	m.playlistList.SetSize(w, h)
	m.elementList.SetSize(w, h)
	m.resultList.SetSize(w, h-3)
}

func (m *Model) setOpen(playlist models.Playlist) {
	m.open = playlist
	m.hasOpen = true
	items := make([]list.Item, len(playlist.Elements))
	for i, element := range playlist.Elements {
		items[i] = elementItem{element: element, index: i}
	}
	m.elementList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.elementList.Title = playlist.Name
	m.resizeLists()
}

func resultItems(results models.SearchResults) []list.Item {
	items := make([]list.Item, 0, len(results.Albums)+len(results.Songs))
	for _, album := range results.Albums {
		items = append(items, albumHitItem{album: album})
	}
	for _, song := range results.Songs {
		items = append(items, songHitItem{song: song})
	}
	return items
}

// handlePlaybackKeys services transport bindings in any view. The search view
// owns the keyboard while typing, so it is excluded.
func (m *Model) handlePlaybackKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.view == SearchView {
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keys.toggle):
		if m.nowPlaying != nil && m.nowPlaying.Status == models.StatusPlaying {
			return m.sendCommand(m.dispatcher.Pause), true
		}
		return m.sendCommand(m.dispatcher.Resume), true
	case key.Matches(msg, m.keys.nextSong):
		return m.sendCommand(m.dispatcher.NextSong), true
	case key.Matches(msg, m.keys.prevSong):
		return m.sendCommand(m.dispatcher.PrevSong), true
	case key.Matches(msg, m.keys.nextElem):
		return m.sendCommand(m.dispatcher.NextElement), true
	case key.Matches(msg, m.keys.prevElem):
		return m.sendCommand(m.dispatcher.PrevElement), true
	}
	return nil, false
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if selected, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			return m, m.fetchPlaylist(selected.playlist.ID)
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		return m, nil
	case key.Matches(msg, m.keys.search):
		m.view = SearchView
		m.searchInput.SetValue("")
		m.resultList = list.New(nil, list.NewDefaultDelegate(), 0, 0)
		m.resultList.Title = "Results"
		m.resizeLists()
		return m, m.searchInput.Focus()
	case key.Matches(msg, m.keys.play):
		if selected, ok := m.elementList.SelectedItem().(elementItem); ok {
			index := selected.index
			return m, m.sendCommand(func(ctx context.Context) error {
				return m.dispatcher.Play(ctx, m.open.ID, &index, nil)
			})
		}
	case key.Matches(msg, m.keys.remove):
		if selected, ok := m.elementList.SelectedItem().(elementItem); ok {
			return m, m.updateOpen(models.RemoveElement(m.open, selected.index))
		}
	}

	var cmd tea.Cmd
	m.elementList, cmd = m.elementList.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistDetailView
		m.searchInput.Blur()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		return m, m.addSelectedHit()
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd

	before := m.searchInput.Value()
	m.searchInput, cmd = m.searchInput.Update(msg)
	cmds = append(cmds, cmd)

	if after := m.searchInput.Value(); after != before {
		m.searcher.Query(m.ctx, after)
	}

	m.resultList, cmd = m.resultList.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// addSelectedHit folds the selected search hit into the open playlist. An
// album hit becomes one element carrying its full track listing; a song hit
// becomes a single-song element.
func (m *Model) addSelectedHit() tea.Cmd {
	if !m.hasOpen {
		return nil
	}

	switch selected := m.resultList.SelectedItem().(type) {
	case albumHitItem:
		album := selected.album
		return func() tea.Msg {
			element, err := m.gateway.AlbumElement(m.ctx, album)
			if err != nil {
				return playlistEditedMsg{err: err}
			}
			updated, err := m.library.Update(m.ctx, models.AddElement(m.open, element))
			return playlistEditedMsg{playlist: updated, err: err}
		}
	case songHitItem:
		song := selected.song
		element := models.PlaylistElement{
			Name:     song.Name,
			ImageURL: song.ImageURL,
			Songs: []models.Song{
				{Name: song.Name, ImageURL: song.ImageURL, SpotifyID: song.SpotifyID},
			},
		}
		return m.updateOpen(models.AddElement(m.open, element))
	}
	return nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case PlaylistDetailView:
		m.elementList, cmd = m.elementList.Update(msg)
	case SearchView:
		m.resultList, cmd = m.resultList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.library.Playlists(m.ctx)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) fetchPlaylist(id int) tea.Cmd {
	return func() tea.Msg {
		playlist, err := m.library.Playlist(m.ctx, id)
		return playlistFetchedMsg{playlist: playlist, err: err}
	}
}

func (m *Model) updateOpen(playlist models.Playlist) tea.Cmd {
	return func() tea.Msg {
		updated, err := m.library.Update(m.ctx, playlist)
		return playlistEditedMsg{playlist: updated, err: err}
	}
}

func (m *Model) sendCommand(send func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := send(m.ctx); err != nil {
			return commandFailedMsg{err: err}
		}
		return nil
	}
}

func (m *Model) waitForPlayback() tea.Cmd {
	states := m.channel.States()
	return func() tea.Msg {
		state, ok := <-states
		return playbackMsg{state: state, open: ok}
	}
}

func (m *Model) waitForSearch() tea.Cmd {
	return func() tea.Msg {
		return searchResultsMsg(<-m.searcher.Results())
	}
}

func (m *Model) renderPlaylistList() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderDetail() string {
	helpView := m.help.ShortHelpView([]key.Binding{
		m.keys.play, m.keys.search, m.keys.remove, m.keys.back, m.keys.quit,
	})
	return fmt.Sprintf("%s\n\n%s", m.elementList.View(), helpView)
}

func (m *Model) renderSearch() string {
	title := styles.title.Render(fmt.Sprintf("Add to '%s'", m.open.Name))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back})
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, m.searchInput.View(), m.resultList.View(), helpView)
}

// renderFooter shows the persistent now-playing line plus any status message.
func (m *Model) renderFooter() string {
	var line string
	if m.nowPlaying == nil {
		line = styles.help.Render("nothing playing")
	} else {
		marker := "▶"
		if m.nowPlaying.Status == models.StatusPaused {
			marker = "⏸"
		}
		line = styles.ok.Render(fmt.Sprintf("%s %s - %s (%s)", marker, m.nowPlaying.ArtistName, m.nowPlaying.SongName, m.nowPlaying.AlbumName))
	}

	if m.status != "" {
		line = fmt.Sprintf("%s\n%s", line, styles.warn.Render(m.status))
	}
	return line
}
