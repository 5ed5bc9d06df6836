package browse

import (
	"cmp"
	"slices"
	"strings"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// SortMode selects the active comparator.
type SortMode int

const (
	ArtistOrder SortMode = iota
	RecencyOrder
)

// Toggle returns the other mode.
func (m SortMode) Toggle() SortMode {
	if m == ArtistOrder {
		return RecencyOrder
	}
	return ArtistOrder
}

func (m SortMode) String() string {
	switch m {
	case ArtistOrder:
		return "artist"
	case RecencyOrder:
		return "recent"
	default:
		return ""
	}
}

// CompareArtist orders by case-folded artist, then case-folded title.
func CompareArtist(a, b *models.Song) int {
	if c := strings.Compare(shared.FoldKey(a.Artist()), shared.FoldKey(b.Artist())); c != 0 {
		return c
	}
	return strings.Compare(shared.FoldKey(a.Title()), shared.FoldKey(b.Title()))
}

// CompareRecency orders newest first.
func CompareRecency(a, b *models.Song) int {
	return cmp.Compare(b.CreatedAt().UnixNano(), a.CreatedAt().UnixNano())
}

// Comparator returns the comparison function for m.
func (m SortMode) Comparator() func(a, b *models.Song) int {
	if m == RecencyOrder {
		return CompareRecency
	}
	return CompareArtist
}

// Sort returns a stably sorted copy of songs.
func Sort(songs []*models.Song, mode SortMode) []*models.Song {
	out := slices.Clone(songs)
	slices.SortStableFunc(out, mode.Comparator())
	return out
}
