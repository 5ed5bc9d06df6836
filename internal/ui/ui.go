package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/songbook/internal/browse"
	"github.com/desertthunder/songbook/internal/models"
)

// chrome is the number of lines drawn around the list: search box, status, spacer, and help.
const chrome = 4

// Fetcher loads the song list.
type Fetcher interface {
	FetchSongs(ctx context.Context) ([]*models.Song, error)
}

// Options configures a [Model]. Zero values select the defaults.
//
// Without Lists the categories screen offers genres only.
type Options struct {
	Debounce       time.Duration
	PreloadScreens int
	Scheduler      browse.Scheduler
	Lists          ListFetcher
	Logger         *log.Logger
}

// Model represents the browser state.
type Model struct {
	ctx       context.Context
	fetcher   Fetcher
	logger    *log.Logger
	state     browse.ViewState
	input     textinput.Model
	help      help.Model
	keys      keyMap
	width     int
	height    int
	rows      rowCache
	searches  chan string
	debouncer *browse.Debouncer[string]

	listFetcher ListFetcher
	lists       []string
	cursor      int
	notice      string
}

// NewModel creates a browser that loads its list from fetcher.
func NewModel(ctx context.Context, fetcher Fetcher, opts Options) *Model {
	if opts.Scheduler == nil {
		opts.Scheduler = browse.NewClockScheduler(browse.RealClock{})
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.PreloadScreens <= 0 {
		opts.PreloadScreens = browse.DefaultPreloadScreens
	}

	input := textinput.New()
	input.Placeholder = "Search songs"
	input.Prompt = "/ "
	input.CharLimit = 256
	input.Focus()

	m := &Model{
		ctx:      ctx,
		fetcher:  fetcher,
		logger:   opts.Logger,
		state:    browse.NewViewState(0),
		input:    input,
		help:     help.New(),
		keys:     newKeyMap(),
		searches: make(chan string, 1),

		listFetcher: opts.Lists,
	}
	m.state.Window = m.state.Window.WithPreloadScreens(opts.PreloadScreens)
	m.debouncer = browse.NewDebouncer(opts.Scheduler, opts.Debounce, m.publishSearch)
	return m
}

// State returns the current view state.
func (m *Model) State() browse.ViewState { return m.state }

// Init fetches the song list and starts listening for debounced searches.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.fetchSongs(), m.waitForSearch())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(0, msg.Width-len(m.input.Prompt)-1)
		m.dispatch(browse.Resized{Height: max(1, msg.Height-chrome)})
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case songsFetchedMsg:
		if msg.err != nil {
			m.logger.Error("failed to fetch songs", "error", msg.err)
			m.dispatch(browse.ListFailed{Err: msg.err})
			return m, nil
		}
		m.logger.Debug("songs loaded", "count", len(msg.songs))
		m.dispatch(browse.ListLoaded{Songs: msg.songs})
		return m, nil

	case searchFiredMsg:
		m.dispatch(browse.SearchFired{Query: msg.query})
		return m, m.waitForSearch()

	case listsFetchedMsg:
		if msg.err != nil {
			m.logger.Error("failed to fetch custom lists", "error", msg.err)
			m.notice = "custom lists unavailable"
			return m, nil
		}
		m.lists = msg.names
		return m, nil

	case listFetchedMsg:
		if msg.err != nil {
			m.logger.Error("failed to fetch custom list", "list", msg.name, "error", msg.err)
			m.notice = fmt.Sprintf("could not load list %s", msg.name)
			return m, nil
		}
		m.notice = ""
		m.dispatch(browse.CustomListLoaded{Name: msg.name, Hashes: msg.hashes})
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state.Categories {
		return m.handleCategoryKeys(msg)
	}

	page := max(1, m.state.Window.ViewportHeight)

	switch {
	case key.Matches(msg, m.keys.categories):
		return m, m.toggleCategories()
	case key.Matches(msg, m.keys.unfilter):
		m.dispatch(browse.FacetsCleared{})
		return m, nil
	case key.Matches(msg, m.keys.quit):
		m.debouncer.Stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.sort):
		m.dispatch(browse.SortToggled{})
		return m, nil
	case key.Matches(msg, m.keys.up):
		m.dispatch(browse.Scrolled{Rows: -1})
		return m, nil
	case key.Matches(msg, m.keys.down):
		m.dispatch(browse.Scrolled{Rows: 1})
		return m, nil
	case key.Matches(msg, m.keys.pgUp):
		m.dispatch(browse.Scrolled{Rows: -page})
		return m, nil
	case key.Matches(msg, m.keys.pgDown):
		m.dispatch(browse.Scrolled{Rows: page})
		return m, nil
	case key.Matches(msg, m.keys.top):
		m.dispatch(browse.ScrollPositionReset{})
		return m, nil
	case key.Matches(msg, m.keys.clear):
		m.input.SetValue("")
		m.searchChanged()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.searchChanged()
	}
	return m, cmd
}

func (m *Model) searchChanged() {
	q := m.input.Value()
	m.dispatch(browse.SearchInput{Query: q})
	m.debouncer.Trigger(q)
}

// dispatch reduces ev into the state and refreshes the rendered rows.
func (m *Model) dispatch(ev browse.Event) {
	m.state = browse.Reduce(m.state, ev)
	m.renderRows()
}

func (m *Model) renderRows() {
	start, end := m.state.Window.Range(len(m.state.Filtered))
	lines := make([]string, 0, end-start)
	for _, song := range m.state.Filtered[start:end] {
		lines = append(lines, renderRow(song, m.width))
	}
	m.rows = rowCache{start: start, lines: lines}
}

// publishSearch replaces any undelivered query with q.
func (m *Model) publishSearch(q string) {
	for {
		select {
		case m.searches <- q:
			return
		default:
		}
		select {
		case <-m.searches:
		default:
		}
	}
}

func (m *Model) fetchSongs() tea.Cmd {
	return func() tea.Msg {
		songs, err := m.fetcher.FetchSongs(m.ctx)
		return songsFetchedMsg{songs: songs, err: err}
	}
}

func (m *Model) waitForSearch() tea.Cmd {
	return func() tea.Msg {
		select {
		case q := <-m.searches:
			return searchFiredMsg{query: q}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// View renders the search box, status line, visible rows, and help.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.status())
	b.WriteString("\n\n")

	switch {
	case m.state.Categories:
		m.viewCategories(&b)
	case m.state.Err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.state.Err)))
		b.WriteString("\n")
		b.WriteString(styles.help.Render("Press esc to quit"))
		b.WriteString("\n")
	case !m.state.Loaded:
		b.WriteString(styles.help.Render("Loading songs..."))
		b.WriteString("\n")
	case m.state.Hits() == 0:
		b.WriteString(styles.warn.Render("No songs match."))
		b.WriteString("\n")
	default:
		start, end := m.state.Window.Visible(m.state.Hits())
		for i := start; i < end; i++ {
			line, ok := m.rows.line(i)
			if !ok {
				line = renderRow(m.state.Filtered[i], m.width)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) status() string {
	hits := styles.ok.Render(fmt.Sprintf("Hits: %d", m.state.Hits()))
	mode := styles.help.Render(fmt.Sprintf("sorted by %s", m.state.Mode))
	line := hits + "  " + mode
	if m.state.Facet.Active() {
		line += "  " + styles.title.Render(m.state.Facet.String())
	}
	if m.notice != "" {
		line += "  " + styles.warn.Render(m.notice)
	}
	return line
}
