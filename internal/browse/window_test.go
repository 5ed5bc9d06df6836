package browse

import "testing"

func TestWindowRange(t *testing.T) {
	tests := []struct {
		name       string
		w          Window
		total      int
		start, end int
	}{
		{"top with preload", NewWindow(1, 10), 100, 0, 30},
		{"middle with preload", Window{ItemHeight: 1, ViewportHeight: 10, Preload: 20, Offset: 50}, 100, 30, 80},
		{"clamped to total", NewWindow(1, 10), 5, 0, 5},
		{"empty list", NewWindow(1, 10), 0, 0, 0},
		{"tall items no preload", Window{ItemHeight: 3, ViewportHeight: 9}, 100, 0, 3},
		{"partial item at both edges", Window{ItemHeight: 3, ViewportHeight: 9, Offset: 1}, 100, 0, 4},
		{"item ending on top edge excluded", Window{ItemHeight: 3, ViewportHeight: 9, Offset: 3}, 100, 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.w.Range(tt.total)
			if start != tt.start || end != tt.end {
				t.Errorf("Range(%d) = [%d, %d), want [%d, %d)", tt.total, start, end, tt.start, tt.end)
			}
		})
	}
}

func TestWindowScroll(t *testing.T) {
	w := NewWindow(1, 10)

	t.Run("clamps to bounds", func(t *testing.T) {
		if got := w.ScrollBy(-5, 100).Offset; got != 0 {
			t.Errorf("expected 0, got %d", got)
		}
		if got := w.ScrollTo(500, 100).Offset; got != 90 {
			t.Errorf("expected 90, got %d", got)
		}
		if got := w.ScrollTo(3, 4).Offset; got != 0 {
			t.Errorf("short list should not scroll, got %d", got)
		}
	})

	t.Run("value semantics", func(t *testing.T) {
		moved := w.ScrollBy(7, 100)
		if w.Offset != 0 || moved.Offset != 7 {
			t.Errorf("expected original untouched, got %d and %d", w.Offset, moved.Offset)
		}
		if moved.Reset().Offset != 0 {
			t.Error("Reset should return to the top")
		}
	})

	t.Run("visible ignores preload", func(t *testing.T) {
		start, end := w.ScrollTo(20, 100).Visible(100)
		if start != 20 || end != 30 {
			t.Errorf("Visible = [%d, %d), want [20, 30)", start, end)
		}
	})

	t.Run("resize keeps preload proportional", func(t *testing.T) {
		r := w.ScrollTo(90, 100).Resize(20, 100)
		if r.Preload != 40 || r.Offset != 80 {
			t.Errorf("got preload %d offset %d", r.Preload, r.Offset)
		}
	})

	t.Run("custom preload screens", func(t *testing.T) {
		r := w.WithPreloadScreens(1).Resize(5, 100)
		if r.Preload != 5 {
			t.Errorf("expected preload 5, got %d", r.Preload)
		}
		start, end := r.ScrollTo(50, 100).Range(100)
		if start != 45 || end != 60 {
			t.Errorf("Range = [%d, %d), want [45, 60)", start, end)
		}
		if n := w.WithPreloadScreens(-1).Preload; n != 0 {
			t.Errorf("negative screens should disable preload, got %d", n)
		}
	})
}
