package browse

import (
	"slices"
	"unicode/utf8"

	"github.com/desertthunder/songbook/internal/models"
)

// Event is an input to [Reduce].
type Event interface {
	event()
}

// ListLoaded carries the fetched song list.
type ListLoaded struct{ Songs []*models.Song }

// ListFailed reports that the fetch failed. The list stays empty.
type ListFailed struct{ Err error }

// SearchInput is a change of the search box contents.
type SearchInput struct{ Query string }

// SearchFired runs the search for Query.
type SearchFired struct{ Query string }

// SortToggled flips the sort mode.
type SortToggled struct{}

// ScrollPositionReset returns the list to the top.
type ScrollPositionReset struct{}

// Scrolled moves the list by Rows items.
type Scrolled struct{ Rows int }

// Resized sets the viewport height in rows.
type Resized struct{ Height int }

// CategoriesToggled opens or closes the categories screen.
type CategoriesToggled struct{}

// GenreSelected narrows the list to one genre and closes the categories screen.
type GenreSelected struct{ Genre string }

// CustomListLoaded narrows the list to the songs on a fetched custom list and closes the
// categories screen.
type CustomListLoaded struct {
	Name   string
	Hashes []string
}

// FacetsCleared drops the active genre or list.
type FacetsCleared struct{}

func (ListLoaded) event()          {}
func (ListFailed) event()          {}
func (SearchInput) event()         {}
func (SearchFired) event()         {}
func (SortToggled) event()         {}
func (ScrollPositionReset) event() {}
func (Scrolled) event()            {}
func (Resized) event()             {}
func (CategoriesToggled) event()   {}
func (GenreSelected) event()       {}
func (CustomListLoaded) event()    {}
func (FacetsCleared) event()       {}

// ViewState is the complete browser state.
//
// Songs is the cleaned list in the active sort order. Filtered is what the list shows: all
// of Songs for short queries, otherwise the search results, in relevance order until the
// sort mode is toggled. An active Facet narrows Filtered before and after searching.
type ViewState struct {
	Songs      []*models.Song
	Filtered   []*models.Song
	Query      string
	Applied    string
	Mode       SortMode
	Facet      Facet
	Categories bool
	Loaded     bool
	Err        error
	Window     Window

	index *Index
}

// NewViewState returns the initial state: nothing loaded, artist order, top of the list.
func NewViewState(viewportHeight int) ViewState {
	return ViewState{Mode: ArtistOrder, Window: NewWindow(1, viewportHeight)}
}

// Hits is the number of songs the list currently shows.
func (s ViewState) Hits() int { return len(s.Filtered) }

func isShort(query string) bool { return utf8.RuneCountInString(query) <= 1 }

// Reduce returns the state after ev. s is not modified.
func Reduce(s ViewState, ev Event) ViewState {
	switch ev := ev.(type) {
	case ListLoaded:
		cleaned := Clean(ev.Songs)
		s.index = NewIndex(cleaned)
		s.Songs = Sort(cleaned, s.Mode)
		s.Loaded = true
		s.Err = nil
		s = s.search(s.Applied)
		s.Window = s.Window.Reset()

	case ListFailed:
		s.Err = ev.Err

	case SearchInput:
		s.Query = ev.Query
		s.Window = s.Window.Reset()

	case SearchFired:
		s = s.search(ev.Query)
		s.Window = s.Window.ScrollTo(s.Window.Offset, len(s.Filtered))

	case SortToggled:
		s.Mode = s.Mode.Toggle()
		s.Songs = Sort(s.Songs, s.Mode)
		s.Filtered = Sort(s.Filtered, s.Mode)

	case ScrollPositionReset:
		s.Window = s.Window.Reset()

	case Scrolled:
		s.Window = s.Window.ScrollBy(ev.Rows*s.Window.ItemHeight, len(s.Filtered))

	case Resized:
		s.Window = s.Window.Resize(ev.Height, len(s.Filtered))

	case CategoriesToggled:
		s.Categories = !s.Categories

	case GenreSelected:
		s = s.narrow(Facet{Kind: GenreFacet, Name: ev.Genre})

	case CustomListLoaded:
		hashes := make(map[string]struct{}, len(ev.Hashes))
		for _, h := range ev.Hashes {
			hashes[h] = struct{}{}
		}
		s = s.narrow(Facet{Kind: ListFacet, Name: ev.Name, hashes: hashes})

	case FacetsCleared:
		s = s.narrow(Facet{})
	}

	return s
}

func (s ViewState) search(query string) ViewState {
	s.Applied = query
	if s.index == nil {
		s.Filtered = nil
		return s
	}
	if isShort(query) {
		s.Filtered = s.Facet.apply(slices.Clone(s.Songs))
		return s
	}
	s.Filtered = s.Facet.apply(s.index.Search(query))
	return s
}

func (s ViewState) narrow(f Facet) ViewState {
	s.Facet = f
	s.Categories = false
	s = s.search(s.Applied)
	s.Window = s.Window.Reset()
	return s
}
