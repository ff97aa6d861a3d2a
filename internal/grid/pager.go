package grid

import (
	"fmt"

	"github.com/runger/datagrid/internal/listclient"
)

// Pager derives pagination controls from the current query and the
// records the endpoint returned for it.
type Pager struct {
	PageIndex int
	PageSize  int
	Total     int // listclient.TotalUnknown when not reported
	Records   int // records on the current page, before client filtering
}

// NewPager builds the pager for a query and its fetched page.
func NewPager(q listclient.Query, p listclient.Page) Pager {
	return Pager{PageIndex: q.PageIndex, PageSize: q.PageSize, Total: p.Total, Records: len(p.Records)}
}

// TotalKnown reports whether the endpoint reported a total.
func (p Pager) TotalKnown() bool {
	return p.Total >= 0
}

// PageCount returns the number of pages, or listclient.TotalUnknown.
func (p Pager) PageCount() int {
	return listclient.Page{Total: p.Total}.PageCount(p.PageSize)
}

// CanPrev reports whether previous and first are enabled.
func (p Pager) CanPrev() bool {
	return p.PageIndex > 0
}

// CanNext reports whether next is enabled. With an unknown total a full
// page means there may be more.
func (p Pager) CanNext() bool {
	if !p.TotalKnown() {
		return p.PageSize > 0 && p.Records >= p.PageSize
	}
	return p.PageIndex+1 < p.PageCount()
}

// CanLast reports whether jumping to the last page is possible.
func (p Pager) CanLast() bool {
	return p.TotalKnown() && p.PageIndex+1 < p.PageCount()
}

// LastIndex returns the index of the last page, or -1 when unknown.
func (p Pager) LastIndex() int {
	if !p.TotalKnown() {
		return -1
	}
	return max(0, p.PageCount()-1)
}

// RowRange returns the 1-based range of records on the page, or 0, 0 for
// an empty page.
func (p Pager) RowRange() (from, to int) {
	if p.Records == 0 {
		return 0, 0
	}
	from = p.PageIndex*p.PageSize + 1
	return from, from + p.Records - 1
}

// RowsLabel renders "rows 1-20 of 45", with "?" for an unknown total.
func (p Pager) RowsLabel() string {
	from, to := p.RowRange()
	return fmt.Sprintf("rows %d-%d of %s", from, to, p.totalText(p.Total))
}

// PageLabel renders "page 1 of 3", with "?" for an unknown total.
func (p Pager) PageLabel() string {
	return fmt.Sprintf("page %d of %s", p.PageIndex+1, p.totalText(p.PageCount()))
}

func (p Pager) totalText(n int) string {
	if !p.TotalKnown() {
		return "?"
	}
	return fmt.Sprint(n)
}

// nextPageSize returns the option after (step > 0) or before (step < 0)
// size. A size that is not an option snaps to its nearest neighbour in the
// step direction.
func nextPageSize(options []int, size, step int) int {
	if len(options) == 0 {
		return size
	}
	if step > 0 {
		for _, o := range options {
			if o > size {
				return o
			}
		}
		return size
	}
	for i := len(options) - 1; i >= 0; i-- {
		if options[i] < size {
			return options[i]
		}
	}
	return size
}
