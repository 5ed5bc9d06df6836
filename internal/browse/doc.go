// Package browse holds the rendering-independent core of the song browser.
//
// The browser state is a [ViewState] value advanced by the pure transition [Reduce]:
//
//	ListLoaded(songs)     clean, sort and index the fetched list
//	SearchInput(query)    record the query and reset scroll
//	SearchFired(query)    run the search (emitted by the [Debouncer])
//	SortToggled           flip between artist and recency order
//	ScrollPositionReset   jump back to the first row
//	GenreSelected(genre)  narrow to one genre ([Genres] lists them)
//	CustomListLoaded      narrow to the songs on a custom list
//	FacetsCleared         show everything again
//
// [Index] does fuzzy matching over title and artist. [Window] decides which rows a
// frame needs. [Debouncer] coalesces keystrokes through a [Scheduler], which tests
// drive with a [FakeClock].
package browse
