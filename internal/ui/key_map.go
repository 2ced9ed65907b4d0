package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	search   key.Binding
	play     key.Binding
	toggle   key.Binding
	nextSong key.Binding
	prevSong key.Binding
	nextElem key.Binding
	prevElem key.Binding
	remove   key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		play:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "play")),
		toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/resume")),
		nextSong: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next song")),
		prevSong: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "prev song")),
		nextElem: key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "next element")),
		prevElem: key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "prev element")),
		remove:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.search, k.play, k.toggle, k.remove},
		{k.nextSong, k.prevSong, k.nextElem, k.prevElem},
		{k.quit},
	}
}
