package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/songbook/internal/browse"
	"github.com/desertthunder/songbook/internal/shared"
)

type stubLists struct {
	lists   map[string][]string
	err     error
	fetched []string
}

func (s *stubLists) FetchLists(ctx context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	names := make([]string, 0, len(s.lists))
	for name := range s.lists {
		names = append(names, name)
	}
	return names, nil
}

func (s *stubLists) FetchList(ctx context.Context, name string) ([]string, error) {
	s.fetched = append(s.fetched, name)
	hashes, ok := s.lists[name]
	if !ok {
		return nil, shared.ErrListNotFound
	}
	return hashes, nil
}

func newCategoryModel(t *testing.T, lists ListFetcher) *Model {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	all := songs()
	all[0].SetGenre("Rock")
	all[1].SetGenre("Pop")

	clock := browse.NewFakeClock(time.Now())
	m := NewModel(ctx, &stubFetcher{songs: all}, Options{Scheduler: browse.NewClockScheduler(clock), Lists: lists})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	load(m)
	return m
}

// press sends k and feeds any resulting command's message back into the model.
func press(m *Model, k tea.KeyType) {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	if cmd != nil {
		if msg := cmd(); msg != nil {
			m.Update(msg)
		}
	}
}

func TestCategories(t *testing.T) {
	t.Run("genre", func(t *testing.T) {
		m := newCategoryModel(t, nil)

		press(m, tea.KeyCtrlG)
		if !m.State().Categories {
			t.Fatal("expected the categories screen")
		}
		view := m.View()
		for _, want := range []string{"> genre  Pop (1)", "genre  Rock (1)"} {
			if !strings.Contains(view, want) {
				t.Errorf("view missing %q:\n%s", want, view)
			}
		}

		press(m, tea.KeyDown)
		press(m, tea.KeyEnter)
		if m.State().Categories {
			t.Error("choosing should close the screen")
		}
		if m.State().Hits() != 1 || m.State().Filtered[0].ID() != "1" {
			t.Errorf("expected the rock song, got %d hits", m.State().Hits())
		}
		if !strings.Contains(m.View(), "genre: Rock") {
			t.Errorf("status should name the genre:\n%s", m.View())
		}

		press(m, tea.KeyCtrlR)
		if m.State().Hits() != 3 || m.State().Facet.Active() {
			t.Errorf("expected all songs back, got %d", m.State().Hits())
		}
	})

	t.Run("custom list", func(t *testing.T) {
		lists := &stubLists{lists: map[string][]string{"alice": {"hash-2", "hash-3"}}}
		m := newCategoryModel(t, lists)

		press(m, tea.KeyCtrlG)
		if !strings.Contains(m.View(), "list   alice") {
			t.Fatalf("expected the custom list:\n%s", m.View())
		}

		press(m, tea.KeyDown)
		press(m, tea.KeyDown)
		press(m, tea.KeyEnter)
		if len(lists.fetched) != 1 || lists.fetched[0] != "alice" {
			t.Fatalf("expected alice fetched, got %v", lists.fetched)
		}
		if m.State().Hits() != 2 || !strings.Contains(m.View(), "list: alice") {
			t.Errorf("expected two songs from alice:\n%s", m.View())
		}
	})

	t.Run("list fetch failure", func(t *testing.T) {
		m := newCategoryModel(t, &stubLists{err: errors.New("offline")})

		press(m, tea.KeyCtrlG)
		if !strings.Contains(m.View(), "custom lists unavailable") {
			t.Errorf("expected a notice:\n%s", m.View())
		}
		if !strings.Contains(m.View(), "genre  Pop") {
			t.Errorf("genres should still be offered:\n%s", m.View())
		}
	})

	t.Run("esc closes instead of quitting", func(t *testing.T) {
		m := newCategoryModel(t, nil)

		press(m, tea.KeyCtrlG)
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if cmd != nil {
			t.Error("esc should not quit from the categories screen")
		}
		if m.State().Categories {
			t.Error("expected the screen closed")
		}
	})
}
