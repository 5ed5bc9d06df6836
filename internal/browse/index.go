package browse

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"github.com/desertthunder/songbook/internal/models"
)

// MaxPatternLength bounds the query runes used for matching. Longer queries are truncated.
const MaxPatternLength = 32

// Clean drops songs that lack a non-empty title or artist. Order is preserved.
func Clean(songs []*models.Song) []*models.Song {
	out := make([]*models.Song, 0, len(songs))
	for _, s := range songs {
		if s != nil && s.Browsable() {
			out = append(out, s)
		}
	}
	return out
}

// Index is a point-in-time search index over a cleaned song list.
type Index struct {
	songs []*models.Song
	keys  []string
}

// NewIndex indexes songs by "title artist".
func NewIndex(songs []*models.Song) *Index {
	idx := &Index{
		songs: slices.Clone(songs),
		keys:  make([]string, len(songs)),
	}
	for i, s := range songs {
		idx.keys[i] = strings.ToLower(s.Title() + " " + s.Artist())
	}
	return idx
}

// String implements [fuzzy.Source].
func (idx *Index) String(i int) string { return idx.keys[i] }

// Len implements [fuzzy.Source].
func (idx *Index) Len() int { return len(idx.keys) }

// Songs returns the indexed list in the order it was built with.
func (idx *Index) Songs() []*models.Song { return slices.Clone(idx.songs) }

// Search returns songs matching query, best first.
//
// A query of at most one rune returns the full list unchanged. Subsequence matches come
// first, ranked by [fuzzy.FindFrom]; songs that only match approximately follow, ranked
// by [partialScore].
func (idx *Index) Search(query string) []*models.Song {
	if utf8.RuneCountInString(query) <= 1 {
		return idx.Songs()
	}

	pattern := []rune(strings.ToLower(query))
	if len(pattern) > MaxPatternLength {
		pattern = pattern[:MaxPatternLength]
	}

	matches := fuzzy.FindFrom(string(pattern), idx)

	out := make([]*models.Song, 0, len(matches))
	matched := make(map[int]bool, len(matches))
	for _, m := range matches {
		matched[m.Index] = true
		out = append(out, idx.songs[m.Index])
	}

	type approx struct {
		index int
		score int
	}
	var extra []approx
	threshold := maxScore(len(pattern))
	for i, key := range idx.keys {
		if matched[i] {
			continue
		}
		if score := partialScore(pattern, key); score*2 >= threshold {
			extra = append(extra, approx{index: i, score: score})
		}
	}
	slices.SortStableFunc(extra, func(a, b approx) int { return b.score - a.score })

	for _, e := range extra {
		out = append(out, idx.songs[e.index])
	}
	return out
}

func maxScore(n int) int { return 3 * n }

// partialScore scores pattern against key allowing skipped pattern runes.
//
// Each pattern rune found right after the previous match scores 3, found further on scores 2,
// and not found scores 0.
func partialScore(pattern []rune, key string) int {
	target := []rune(key)
	score, pos, prev := 0, 0, -1

	for _, r := range pattern {
		found := -1
		for i := pos; i < len(target); i++ {
			if target[i] == r {
				found = i
				break
			}
		}
		if found < 0 {
			continue
		}

		if found == prev+1 {
			score += 3
		} else {
			score += 2
		}
		prev, pos = found, found+1
	}

	return score
}
