// Package ui implements the interactive song browser using bubbletea's Elm architecture.
//
// The [Model] wraps a [browse.ViewState] and forwards every input to [browse.Reduce]:
//   - typing updates the search box and resets the scroll position at once
//   - the search itself runs after the input has been quiet for the debounce window
//   - ctrl+s toggles between artist and recency order
//
// Search input is coalesced by a [browse.Debouncer]. Its callback pushes the latest query
// into a channel that a waiting [tea.Cmd] turns into a message.
//
// Only rows inside the window's preload range are rendered; the visible slice of those is drawn.
package ui
