package virtual

// Virtualizer owns scroll geometry and yields the window to render.
type Virtualizer interface {
	Window(totalRows int) Window
	ScrollTo(offset float64)
	ScrollToIndex(index int)
	Resize(viewportHeight float64)
	Offset() float64
}

// Fixed is a Virtualizer for rows of one estimated height.
type Fixed struct {
	rowHeight float64
	viewport  float64
	offset    float64
	total     int
}

var _ Virtualizer = (*Fixed)(nil)

// NewFixed returns a virtualizer with the given row and viewport heights.
func NewFixed(rowHeight, viewportHeight float64) *Fixed {
	return &Fixed{rowHeight: rowHeight, viewport: viewportHeight}
}

// Window computes the window for the current offset and records totalRows
// so later scrolls clamp against it.
func (f *Fixed) Window(totalRows int) Window {
	f.total = totalRows
	w := ComputeWindow(totalRows, f.offset, f.viewport, f.rowHeight)
	f.offset = w.Offset
	return w
}

// ScrollTo sets the scroll offset.
func (f *Fixed) ScrollTo(offset float64) {
	f.offset = clampOffset(offset, float64(f.total)*f.rowHeight, f.viewport)
}

// ScrollToIndex moves the offset the minimal amount that makes the row
// fully visible. Out-of-range indices are ignored.
func (f *Fixed) ScrollToIndex(index int) {
	if index < 0 || index >= f.total || f.rowHeight <= 0 {
		return
	}
	top := float64(index) * f.rowHeight
	bottom := top + f.rowHeight
	switch {
	case top < f.offset:
		f.ScrollTo(top)
	case bottom > f.offset+f.viewport:
		f.ScrollTo(bottom - f.viewport)
	}
}

// Resize changes the viewport height.
func (f *Fixed) Resize(viewportHeight float64) {
	f.viewport = viewportHeight
	f.ScrollTo(f.offset)
}

// Offset returns the current scroll offset.
func (f *Fixed) Offset() float64 {
	return f.offset
}
