package browse

import (
	"slices"
	"strings"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// FacetKind is the kind of category narrowing the list.
type FacetKind int

const (
	NoFacet FacetKind = iota
	GenreFacet
	ListFacet
)

// Facet narrows the list to one genre or one custom list. Search runs within it.
type Facet struct {
	Kind FacetKind
	Name string

	hashes map[string]struct{}
}

// Active reports whether f narrows anything.
func (f Facet) Active() bool { return f.Kind != NoFacet }

func (f Facet) String() string {
	switch f.Kind {
	case GenreFacet:
		return "genre: " + f.Name
	case ListFacet:
		return "list: " + f.Name
	default:
		return ""
	}
}

// Keep reports whether song belongs to f.
func (f Facet) Keep(song *models.Song) bool {
	switch f.Kind {
	case GenreFacet:
		return shared.FoldKey(strings.TrimSpace(song.Genre())) == shared.FoldKey(f.Name)
	case ListFacet:
		_, ok := f.hashes[song.SongHash()]
		return ok
	default:
		return true
	}
}

func (f Facet) apply(songs []*models.Song) []*models.Song {
	if !f.Active() {
		return songs
	}
	return slices.DeleteFunc(songs, func(s *models.Song) bool { return !f.Keep(s) })
}

// Category is one genre with the number of songs filed under it.
type Category struct {
	Name  string
	Count int
}

// Genres groups songs by case-insensitive genre, alphabetically. The first spelling seen
// names each group; songs without a genre are left out.
func Genres(songs []*models.Song) []Category {
	byKey := map[string]*Category{}
	for _, s := range songs {
		name := strings.TrimSpace(s.Genre())
		if name == "" {
			continue
		}
		key := shared.FoldKey(name)
		if c, ok := byKey[key]; ok {
			c.Count++
			continue
		}
		byKey[key] = &Category{Name: name, Count: 1}
	}

	out := make([]Category, 0, len(byKey))
	for _, c := range byKey {
		out = append(out, *c)
	}
	slices.SortFunc(out, func(a, b Category) int {
		return strings.Compare(shared.FoldKey(a.Name), shared.FoldKey(b.Name))
	})
	return out
}
