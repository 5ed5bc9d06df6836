package ui

import (
	"github.com/desertthunder/songbook/internal/models"
)

// songsFetchedMsg carries the result of a list fetch.
type songsFetchedMsg struct {
	songs []*models.Song
	err   error
}

// searchFiredMsg is sent once the search input has been quiet for the debounce window.
type searchFiredMsg struct {
	query string
}

// listsFetchedMsg carries the custom list names.
type listsFetchedMsg struct {
	names []string
	err   error
}

// listFetchedMsg carries the song hashes on one custom list.
type listFetchedMsg struct {
	name   string
	hashes []string
	err    error
}
