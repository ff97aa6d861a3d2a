// Package virtual computes which rows of a fixed-height list intersect a
// scroll viewport, plus the filler heights above and below them that keep
// the scrollbar geometry of the full list.
package virtual

import "math"

// Overscan is the number of extra rows kept on each side of the viewport.
const Overscan = 1

// Item is one row of a window, in the same units as the row height.
type Item struct {
	Index int
	Start float64
	Size  float64
	End   float64
}

// Window is the rendered slice of a list. PaddingTop + the item sizes +
// PaddingBottom always equals TotalSize.
type Window struct {
	Items         []Item
	PaddingTop    float64
	PaddingBottom float64
	TotalSize     float64
	// Offset is the scroll offset the window was computed for, after
	// clamping.
	Offset float64
}

// Indices returns the contiguous ascending run of row indices.
func (w Window) Indices() []int {
	out := make([]int, len(w.Items))
	for i, it := range w.Items {
		out[i] = it.Index
	}
	return out
}

// Empty reports whether no rows are rendered.
func (w Window) Empty() bool {
	return len(w.Items) == 0
}

// ComputeWindow returns the rows of a totalRows list whose [start, end)
// span intersects [scrollOffset, scrollOffset+viewportHeight), widened by
// Overscan and clamped to the list. Offsets past the content clamp to the
// last full viewport; negative offsets clamp to zero.
func ComputeWindow(totalRows int, scrollOffset, viewportHeight, estimatedRowHeight float64) Window {
	if totalRows <= 0 || !finite(estimatedRowHeight) || estimatedRowHeight <= 0 || !finite(viewportHeight) {
		return Window{}
	}

	total := float64(totalRows) * estimatedRowHeight
	if !finite(total) {
		return Window{}
	}
	if viewportHeight <= 0 {
		return Window{PaddingBottom: total, TotalSize: total}
	}

	offset := clampOffset(scrollOffset, total, viewportHeight)

	// Clamp in float64 so huge ratios never overflow the int conversion.
	lastRow := float64(totalRows - 1)
	first := int(clampRow(math.Floor(offset/estimatedRowHeight)-Overscan, lastRow))
	last := int(clampRow(math.Ceil((offset+viewportHeight)/estimatedRowHeight)-1+Overscan, lastRow))

	items := make([]Item, 0, last-first+1)
	for i := first; i <= last; i++ {
		start := float64(i) * estimatedRowHeight
		items = append(items, Item{
			Index: i,
			Start: start,
			Size:  estimatedRowHeight,
			End:   start + estimatedRowHeight,
		})
	}

	return Window{
		Items:         items,
		PaddingTop:    items[0].Start,
		PaddingBottom: total - items[len(items)-1].End,
		TotalSize:     total,
		Offset:        offset,
	}
}

func clampRow(row, lastRow float64) float64 {
	if math.IsNaN(row) {
		return 0
	}
	return min(max(row, 0), lastRow)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clampOffset(offset, total, viewport float64) float64 {
	if math.IsNaN(offset) || offset < 0 {
		return 0
	}
	return min(offset, max(0, total-viewport))
}
