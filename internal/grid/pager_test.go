package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/runger/datagrid/internal/listclient"
)

func TestPager_FirstPageOfKnownTotal(t *testing.T) {
	p := Pager{PageIndex: 0, PageSize: 20, Total: 45, Records: 20}

	assert.Equal(t, 3, p.PageCount())
	assert.False(t, p.CanPrev())
	assert.True(t, p.CanNext())
	assert.True(t, p.CanLast())
	assert.Equal(t, 2, p.LastIndex())
	assert.Equal(t, "rows 1-20 of 45", p.RowsLabel())
	assert.Equal(t, "page 1 of 3", p.PageLabel())
}

func TestPager_LastPage(t *testing.T) {
	p := Pager{PageIndex: 2, PageSize: 20, Total: 45, Records: 5}

	assert.True(t, p.CanPrev())
	assert.False(t, p.CanNext())
	assert.False(t, p.CanLast())
	assert.Equal(t, "rows 41-45 of 45", p.RowsLabel())
}

func TestPager_UnknownTotal(t *testing.T) {
	full := Pager{PageIndex: 1, PageSize: 20, Total: listclient.TotalUnknown, Records: 20}
	assert.True(t, full.CanNext(), "a full page may have a successor")
	assert.False(t, full.CanLast())
	assert.Equal(t, -1, full.LastIndex())
	assert.Equal(t, "page 2 of ?", full.PageLabel())
	assert.Equal(t, "rows 21-40 of ?", full.RowsLabel())

	short := Pager{PageIndex: 1, PageSize: 20, Total: listclient.TotalUnknown, Records: 3}
	assert.False(t, short.CanNext())
}

func TestPager_OutOfRange(t *testing.T) {
	p := Pager{PageIndex: 9, PageSize: 20, Total: 45, Records: 0}
	from, to := p.RowRange()
	assert.Zero(t, from)
	assert.Zero(t, to)
	assert.False(t, p.CanNext())
	assert.True(t, p.CanPrev())
}

func TestNextPageSize(t *testing.T) {
	opts := []int{5, 10, 20}
	assert.Equal(t, 10, nextPageSize(opts, 5, 1))
	assert.Equal(t, 20, nextPageSize(opts, 20, 1))
	assert.Equal(t, 10, nextPageSize(opts, 20, -1))
	assert.Equal(t, 5, nextPageSize(opts, 5, -1))
	assert.Equal(t, 20, nextPageSize(opts, 15, 1))
	assert.Equal(t, 10, nextPageSize(opts, 15, -1))
	assert.Equal(t, 7, nextPageSize(nil, 7, 1))
}
