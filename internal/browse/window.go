package browse

// Window is the virtualized list geometry. All values share one unit (rows in the terminal).
type Window struct {
	ItemHeight     int
	ViewportHeight int
	Preload        int
	Offset         int

	// Screens is the preload margin in viewport heights, applied on resize.
	Screens int
}

// DefaultPreloadScreens is the preload margin used by [NewWindow].
const DefaultPreloadScreens = 2

// NewWindow creates a window at the top of the list with a preload margin of two viewports.
func NewWindow(itemHeight, viewportHeight int) Window {
	return Window{
		ItemHeight:     max(1, itemHeight),
		ViewportHeight: max(0, viewportHeight),
		Preload:        DefaultPreloadScreens * max(0, viewportHeight),
		Screens:        DefaultPreloadScreens,
	}
}

// WithPreloadScreens sets the preload margin to n viewport heights.
func (w Window) WithPreloadScreens(n int) Window {
	w.Screens = max(0, n)
	w.Preload = w.Screens * w.ViewportHeight
	return w
}

// Range returns the half-open index range [start, end) of items whose span intersects the
// viewport extended by Preload above and below.
func (w Window) Range(total int) (start, end int) {
	if total <= 0 || w.ItemHeight <= 0 {
		return 0, 0
	}

	top := w.Offset - w.Preload
	bottom := w.Offset + w.ViewportHeight + w.Preload

	if top > 0 {
		start = top / w.ItemHeight
	}
	if bottom > 0 {
		end = (bottom + w.ItemHeight - 1) / w.ItemHeight
	}

	end = min(end, total)
	start = min(start, end)
	return start, end
}

// Visible returns the index range inside the viewport alone.
func (w Window) Visible(total int) (start, end int) {
	inner := w
	inner.Preload = 0
	return inner.Range(total)
}

// MaxOffset is the largest offset that still fills the viewport.
func (w Window) MaxOffset(total int) int {
	return max(0, total*w.ItemHeight-w.ViewportHeight)
}

// ScrollTo moves to offset, clamped to [0, MaxOffset].
func (w Window) ScrollTo(offset, total int) Window {
	w.Offset = min(max(0, offset), w.MaxOffset(total))
	return w
}

// ScrollBy moves the offset by delta, clamped.
func (w Window) ScrollBy(delta, total int) Window {
	return w.ScrollTo(w.Offset+delta, total)
}

// Reset returns to the top of the list.
func (w Window) Reset() Window {
	w.Offset = 0
	return w
}

// Resize changes the viewport height, keeping the preload proportional and the offset in range.
func (w Window) Resize(viewportHeight, total int) Window {
	w.ViewportHeight = max(0, viewportHeight)
	w.Preload = w.Screens * w.ViewportHeight
	return w.ScrollTo(w.Offset, total)
}
