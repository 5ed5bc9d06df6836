package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the browser.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	pgUp   key.Binding
	pgDown key.Binding
	top    key.Binding
	sort   key.Binding
	clear  key.Binding
	quit   key.Binding

	categories key.Binding
	choose     key.Binding
	unfilter   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "up")),
		down:   key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "down")),
		pgUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		pgDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		top:    key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "top")),
		sort:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "toggle sort")),
		clear:  key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "clear search")),
		quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),

		categories: key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "categories")),
		choose:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose")),
		unfilter:   key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "all songs")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.sort, k.categories, k.clear, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.pgUp, k.pgDown, k.top},
		{k.sort, k.categories, k.unfilter, k.clear, k.quit},
	}
}
