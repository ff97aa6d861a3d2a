package table

import (
	"slices"
)

// TableModel is the state behind a grid: column definitions, sort state,
// global filter, visibility and widths, and the row projection they yield.
type TableModel interface {
	SetData(records []Record)
	Rows() []Row
	Headers() []Header
	Columns() []ColumnState
	Sorting() SortState
	ToggleSort(columnID string, multi bool)
	SetGlobalFilter(text string)
	GlobalFilter() GlobalFilter
	ToggleVisibility(columnID string)
	SetAllVisible(visible bool)
	AllVisible() bool
	SomeVisible() bool
	Resize(columnID string, delta int)
	SetSize(columnID string, size int)
}

// Cell is one rendered cell of a row.
type Cell struct {
	ColumnID string
	Value    Value
	Text     string
}

// Row is one entry of the projection. Index is the record's position in the
// fetched page.
type Row struct {
	Index  int
	Record Record
	Cells  []Cell // visible columns only, in column order
}

// Cell returns the visible cell for a column.
func (r Row) Cell(columnID string) (Cell, bool) {
	for _, c := range r.Cells {
		if c.ColumnID == columnID {
			return c, true
		}
	}
	return Cell{}, false
}

// Header is the render data of a visible column.
type Header struct {
	ID        string
	Label     string
	Sort      Direction
	SortIndex int // position in a multi-column sort, -1 when unsorted
	Width     int
	Visible   bool
	Sortable  bool
}

// ColumnState describes every column, hidden or not, for visibility
// toggles.
type ColumnState struct {
	ID      string
	Label   string
	Visible bool
	Width   int
}

// Model is the in-memory TableModel. It is not safe for concurrent use.
type Model struct {
	columns      []ColumnSpec
	visible      []bool
	widths       []int
	data         []Record
	sorting      SortState
	filter       GlobalFilter
	allowPattern bool

	rows  []Row
	dirty bool
}

var _ TableModel = (*Model)(nil)

// New creates a model over the given columns. Column ids must be unique and
// every column needs an accessor.
func New(columns []ColumnSpec) (*Model, error) {
	if err := validateColumns(columns); err != nil {
		return nil, err
	}
	m := &Model{
		columns:      slices.Clone(columns),
		visible:      make([]bool, len(columns)),
		widths:       make([]int, len(columns)),
		allowPattern: true,
		dirty:        true,
	}
	for i, c := range columns {
		m.visible[i] = !c.Hidden
		m.widths[i] = c.initialSize()
	}
	return m, nil
}

// SetPatternSearch enables or disables /pattern/flags detection in the
// global filter.
func (m *Model) SetPatternSearch(enabled bool) {
	m.allowPattern = enabled
	m.filter = ParseGlobalFilter(m.filter.Text(), enabled)
	m.dirty = true
}

// SetData replaces the row set.
func (m *Model) SetData(records []Record) {
	m.data = records
	m.dirty = true
}

// Len returns the number of rows in the projection.
func (m *Model) Len() int {
	return len(m.Rows())
}

// Rows returns the filtered and sorted projection of the current data.
func (m *Model) Rows() []Row {
	if m.dirty {
		m.rows = m.project()
		m.dirty = false
	}
	return m.rows
}

func (m *Model) project() []Row {
	type candidate struct {
		index  int
		record Record
		values []Value
	}

	cands := make([]candidate, 0, len(m.data))
	for i, rec := range m.data {
		values := make([]Value, len(m.columns))
		for ci, col := range m.columns {
			values[ci] = col.Accessor(rec)
		}
		if !m.matches(values) {
			continue
		}
		cands = append(cands, candidate{index: i, record: rec, values: values})
	}

	if len(m.sorting) > 0 {
		keys := m.sortColumns()
		slices.SortStableFunc(cands, func(a, b candidate) int {
			for _, k := range keys {
				c := compareValues(a.values[k.col], b.values[k.col])
				if c == 0 {
					continue
				}
				// Nulls stay last in both directions.
				if k.desc && a.values[k.col].Kind != KindNull && b.values[k.col].Kind != KindNull {
					c = -c
				}
				return c
			}
			return 0
		})
	}

	rows := make([]Row, 0, len(cands))
	for _, c := range cands {
		cells := make([]Cell, 0, len(m.columns))
		for ci, col := range m.columns {
			if !m.visible[ci] {
				continue
			}
			cells = append(cells, Cell{ColumnID: col.ID, Value: c.values[ci], Text: c.values[ci].String()})
		}
		rows = append(rows, Row{Index: c.index, Record: c.record, Cells: cells})
	}
	return rows
}

// matches applies the global filter across all columns, visible or not.
func (m *Model) matches(values []Value) bool {
	if m.filter.Empty() {
		return true
	}
	for _, v := range values {
		if m.filter.MatchValue(v) {
			return true
		}
	}
	return false
}

type sortColumn struct {
	col  int
	desc bool
}

func (m *Model) sortColumns() []sortColumn {
	keys := make([]sortColumn, 0, len(m.sorting))
	for _, k := range m.sorting {
		if i := m.indexOf(k.ColumnID); i >= 0 {
			keys = append(keys, sortColumn{col: i, desc: k.Desc})
		}
	}
	return keys
}

func (m *Model) indexOf(columnID string) int {
	for i, c := range m.columns {
		if c.ID == columnID {
			return i
		}
	}
	return -1
}

// Headers returns the visible columns' header render data.
func (m *Model) Headers() []Header {
	headers := make([]Header, 0, len(m.columns))
	for i, c := range m.columns {
		if !m.visible[i] {
			continue
		}
		dir, pos := m.sorting.Direction(c.ID)
		headers = append(headers, Header{
			ID:        c.ID,
			Label:     c.label(),
			Sort:      dir,
			SortIndex: pos,
			Width:     m.widths[i],
			Visible:   true,
			Sortable:  c.Sortable,
		})
	}
	return headers
}

// Columns returns the state of every column.
func (m *Model) Columns() []ColumnState {
	out := make([]ColumnState, len(m.columns))
	for i, c := range m.columns {
		out[i] = ColumnState{ID: c.ID, Label: c.label(), Visible: m.visible[i], Width: m.widths[i]}
	}
	return out
}

// Sorting returns a copy of the sort state.
func (m *Model) Sorting() SortState {
	return slices.Clone(m.sorting)
}

// ToggleSort cycles the column's sort direction. Non-sortable and unknown
// columns are ignored.
func (m *Model) ToggleSort(columnID string, multi bool) {
	i := m.indexOf(columnID)
	if i < 0 || !m.columns[i].Sortable {
		return
	}
	m.sorting = m.sorting.Toggle(columnID, multi)
	m.dirty = true
}

// SetGlobalFilter replaces the client-side search text.
func (m *Model) SetGlobalFilter(text string) {
	if text == m.filter.Text() {
		return
	}
	m.filter = ParseGlobalFilter(text, m.allowPattern)
	m.dirty = true
}

// GlobalFilter returns the compiled search.
func (m *Model) GlobalFilter() GlobalFilter {
	return m.filter
}

// ToggleVisibility flips a column's visibility.
func (m *Model) ToggleVisibility(columnID string) {
	if i := m.indexOf(columnID); i >= 0 {
		m.visible[i] = !m.visible[i]
		m.dirty = true
	}
}

// SetAllVisible shows or hides every column.
func (m *Model) SetAllVisible(visible bool) {
	for i := range m.visible {
		m.visible[i] = visible
	}
	m.dirty = true
}

// AllVisible reports whether no column is hidden.
func (m *Model) AllVisible() bool {
	return !slices.Contains(m.visible, false)
}

// SomeVisible reports whether at least one column is shown.
func (m *Model) SomeVisible() bool {
	return slices.Contains(m.visible, true)
}

// Resize adjusts a column's width by delta cells within its bounds.
func (m *Model) Resize(columnID string, delta int) {
	if i := m.indexOf(columnID); i >= 0 {
		m.SetSize(columnID, m.widths[i]+delta)
	}
}

// SetSize sets a column's width, clamped to its bounds. Other columns keep
// their widths.
func (m *Model) SetSize(columnID string, size int) {
	i := m.indexOf(columnID)
	if i < 0 {
		return
	}
	m.widths[i] = m.columns[i].clamp(size)
}
