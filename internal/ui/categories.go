package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/songbook/internal/browse"
)

// ListFetcher loads custom lists from the server.
type ListFetcher interface {
	FetchLists(ctx context.Context) ([]string, error)
	FetchList(ctx context.Context, name string) ([]string, error)
}

// category is one row of the categories screen: a genre or a custom list.
type category struct {
	genre string
	list  string
	count int
}

func (c category) label() string {
	if c.list != "" {
		return "list   " + c.list
	}
	return fmt.Sprintf("genre  %s (%d)", c.genre, c.count)
}

// categories lists genres of the loaded songs followed by the custom lists.
func (m *Model) categories() []category {
	genres := browse.Genres(m.state.Songs)
	out := make([]category, 0, len(genres)+len(m.lists))
	for _, g := range genres {
		out = append(out, category{genre: g.Name, count: g.Count})
	}
	for _, name := range m.lists {
		out = append(out, category{list: name})
	}
	return out
}

func (m *Model) toggleCategories() tea.Cmd {
	m.dispatch(browse.CategoriesToggled{})
	m.cursor = 0
	m.notice = ""
	if m.state.Categories && m.listFetcher != nil && m.lists == nil {
		return m.fetchLists()
	}
	return nil
}

func (m *Model) handleCategoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.categories()

	switch {
	case msg.Type == tea.KeyCtrlC:
		m.debouncer.Stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.categories), msg.Type == tea.KeyEsc:
		return m, m.toggleCategories()
	case key.Matches(msg, m.keys.up):
		m.cursor = max(0, m.cursor-1)
	case key.Matches(msg, m.keys.down):
		m.cursor = max(0, min(len(items)-1, m.cursor+1))
	case key.Matches(msg, m.keys.top):
		m.cursor = 0
	case key.Matches(msg, m.keys.choose):
		if m.cursor >= len(items) {
			return m, nil
		}
		item := items[m.cursor]
		if item.list != "" {
			return m, m.fetchList(item.list)
		}
		m.dispatch(browse.GenreSelected{Genre: item.genre})
	}
	return m, nil
}

func (m *Model) fetchLists() tea.Cmd {
	return func() tea.Msg {
		names, err := m.listFetcher.FetchLists(m.ctx)
		return listsFetchedMsg{names: names, err: err}
	}
}

func (m *Model) fetchList(name string) tea.Cmd {
	return func() tea.Msg {
		hashes, err := m.listFetcher.FetchList(m.ctx, name)
		return listFetchedMsg{name: name, hashes: hashes, err: err}
	}
}

func (m *Model) viewCategories(b *strings.Builder) {
	items := m.categories()
	if len(items) == 0 {
		b.WriteString(styles.warn.Render("No genres or custom lists."))
		b.WriteString("\n")
		return
	}

	height := max(1, m.state.Window.ViewportHeight)
	start := max(0, min(m.cursor-height+1, len(items)-height))
	end := min(len(items), start+height)
	for i := start; i < end; i++ {
		if i == m.cursor {
			b.WriteString(styles.title.Render("> " + items[i].label()))
		} else {
			b.WriteString("  " + items[i].label())
		}
		b.WriteString("\n")
	}
}
