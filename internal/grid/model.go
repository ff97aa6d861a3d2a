// Package grid is the Bubble Tea presentation shell of the data grid: a
// search line, a sortable header, a virtualized body and pagination
// controls wired to the request-state synchronizer and the table model.
package grid

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runger/datagrid/internal/listclient"
	"github.com/runger/datagrid/internal/location"
	"github.com/runger/datagrid/internal/querystate"
	"github.com/runger/datagrid/internal/table"
	"github.com/runger/datagrid/internal/virtual"
)

// DefaultDebounce is the delay after the last search keystroke before the
// text is sent to the server.
const DefaultDebounce = 100 * time.Millisecond

// DefaultPageSizeOptions are the page sizes +/- cycle through.
var DefaultPageSizeOptions = []int{5, 10, 20}

// Fetcher loads pages; *listclient.Client implements it.
type Fetcher interface {
	Key(q listclient.Query) string
	Cached(q listclient.Query) (listclient.Result, bool)
	Get(ctx context.Context, q listclient.Query) (listclient.Result, error)
	Revalidate(ctx context.Context, q listclient.Query) (listclient.Page, error)
}

// gridState represents the state of the current fetch key.
type gridState int

const (
	stateIdle    gridState = iota // Before the first fetch
	stateLoading                  // Fetch for the current key in progress
	stateLoaded                   // Page for the current key shown
	stateError                    // Fetch for the current key failed
)

func (s gridState) String() string {
	switch s {
	case stateLoading:
		return "loading"
	case stateLoaded:
		return "loaded"
	case stateError:
		return "error"
	default:
		return "idle"
	}
}

// pageMsg is sent when a fetch or revalidation completes.
type pageMsg struct {
	key        string
	page       listclient.Page
	background bool
	err        error
}

// debounceMsg fires after the search debounce timer expires.
type debounceMsg struct {
	id uint64 // Must match debounceID to be accepted
}

// initMsg triggers the first fetch through Update.
type initMsg struct{}

// Options tunes the grid.
type Options struct {
	PageSizeOptions []int
	// RowHeight is the estimated height of a row in terminal lines.
	RowHeight int
	Debounce  time.Duration
	// Virtualizer replaces the default fixed-height virtualizer.
	Virtualizer virtual.Virtualizer
	KeyMap      *KeyMap
	Logger      *slog.Logger
	// IDField names the record field that keeps the cursor on the same
	// record when a page is revalidated. Defaults to "id".
	IDField string
}

// DefaultOptions returns the default grid options.
func DefaultOptions() Options {
	return Options{
		PageSizeOptions: DefaultPageSizeOptions,
		RowHeight:       1,
		Debounce:        DefaultDebounce,
		IDField:         "id",
	}
}

// defaultBodyHeight is used before the first WindowSizeMsg.
const defaultBodyHeight = 10

// Model is the Bubble Tea model of the grid.
type Model struct {
	state   gridState
	fetcher Fetcher
	sync    *querystate.Synchronizer
	loc     *location.Store
	table   table.TableModel
	virt    virtual.Virtualizer
	log     *slog.Logger

	page    listclient.Page // last page applied to the table
	hasPage bool
	key     string // key whose result is awaited or shown
	err     error

	search  textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    KeyMap

	cursor      int // row index into the projection
	activeCol   int // index into the visible headers
	popup       bool
	popupCursor int

	pageSizes  []int
	idField    string
	rowHeight  int
	debounce   time.Duration
	debounceID uint64

	width  int
	height int
}

// New creates a grid model. The table's global filter starts from the
// synchronizer's filter.
func New(f Fetcher, s *querystate.Synchronizer, loc *location.Store, tm table.TableModel, opts Options) Model {
	if opts.RowHeight <= 0 {
		opts.RowHeight = 1
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if len(opts.PageSizeOptions) == 0 {
		opts.PageSizeOptions = DefaultPageSizeOptions
	}
	if opts.IDField == "" {
		opts.IDField = "id"
	}
	if opts.Virtualizer == nil {
		opts.Virtualizer = virtual.NewFixed(float64(opts.RowHeight), defaultBodyHeight)
	}
	keys := DefaultKeyMap()
	if opts.KeyMap != nil {
		keys = *opts.KeyMap
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "Search all columns..."
	ti.SetValue(s.Query().Filter)
	tm.SetGlobalFilter(s.Query().Filter)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		state:     stateIdle,
		fetcher:   f,
		sync:      s,
		loc:       loc,
		table:     tm,
		virt:      opts.Virtualizer,
		log:       log,
		search:    ti,
		spinner:   sp,
		help:      help.New(),
		keys:      keys,
		pageSizes: opts.PageSizeOptions,
		idField:   opts.IDField,
		rowHeight: opts.RowHeight,
		debounce:  opts.Debounce,
	}
}

// Err returns the error of the current key, if any.
func (m Model) Err() error {
	return m.err
}

// Query returns the current request state.
func (m Model) Query() listclient.Query {
	return m.sync.Query()
}

// Location returns the current location URL.
func (m Model) Location() string {
	return m.loc.String()
}

// Pager returns the pagination state of the current page. Until the
// current key's page has arrived the total is unknown and no records are
// counted, so next and last stay disabled while loading or after a failed
// fetch.
func (m Model) Pager() Pager {
	if !m.showingCurrent() {
		return NewPager(m.sync.Query(), listclient.Page{Total: listclient.TotalUnknown})
	}
	return NewPager(m.sync.Query(), m.page)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return initMsg{} }
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.virt.Resize(float64(m.bodyHeight()))
		return m, nil

	case pageMsg:
		return m.handlePage(msg)

	case debounceMsg:
		return m.handleDebounce(msg)

	case spinner.TickMsg:
		if m.state != stateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case initMsg:
		return m, m.startFetch()
	}

	return m, nil
}

// handleKey routes keys to the focused part of the grid.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.search.Focused() {
		return m.handleSearchKey(msg)
	}
	if m.popup {
		return m.handlePopupKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.virt.Resize(float64(m.bodyHeight()))

	case key.Matches(msg, m.keys.Search):
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Columns):
		m.popup = true
		m.popupCursor = 0

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.visibleRows())
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.visibleRows())

	case key.Matches(msg, m.keys.Left):
		m.moveColumn(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveColumn(1)

	case key.Matches(msg, m.keys.Sort):
		m.sortActive(false)
	case key.Matches(msg, m.keys.MultiSort):
		m.sortActive(true)
	case key.Matches(msg, m.keys.Narrow):
		m.resizeActive(-1)
	case key.Matches(msg, m.keys.Widen):
		m.resizeActive(1)

	case key.Matches(msg, m.keys.NextPage):
		if p := m.Pager(); p.CanNext() {
			return m, m.setPageIndex(p.PageIndex + 1)
		}
	case key.Matches(msg, m.keys.PrevPage):
		if p := m.Pager(); p.CanPrev() {
			return m, m.setPageIndex(p.PageIndex - 1)
		}
	case key.Matches(msg, m.keys.FirstPage):
		if m.Pager().CanPrev() {
			return m, m.setPageIndex(0)
		}
	case key.Matches(msg, m.keys.LastPage):
		if p := m.Pager(); p.CanLast() {
			return m, m.setPageIndex(p.LastIndex())
		}
	case key.Matches(msg, m.keys.LargerPages):
		return m, m.setPageSize(nextPageSize(m.pageSizes, m.sync.Query().PageSize, 1))
	case key.Matches(msg, m.keys.SmallerPages):
		return m, m.setPageSize(nextPageSize(m.pageSizes, m.sync.Query().PageSize, -1))

	case key.Matches(msg, m.keys.Refresh):
		return m, m.revalidate(false)

	case key.Matches(msg, m.keys.Back):
		return m, m.navigate(m.loc.Back)
	case key.Matches(msg, m.keys.Forward):
		return m, m.navigate(m.loc.Forward)
	}

	return m, nil
}

// handleSearchKey edits the search text. Every edit filters the page at
// once and restarts the debounce for the server filter.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc, tea.KeyEnter:
		m.search.Blur()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}

	m.table.SetGlobalFilter(m.search.Value())
	m.clampCursor()
	return m, tea.Batch(cmd, m.startDebounce())
}

// handlePopupKey drives the column visibility list. Entry 0 is "Toggle
// All", entry i is column i-1.
func (m Model) handlePopupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	columns := m.table.Columns()
	switch {
	case key.Matches(msg, m.keys.Quit) && msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Close), key.Matches(msg, m.keys.Columns), key.Matches(msg, m.keys.Quit):
		m.popup = false
	case key.Matches(msg, m.keys.Up):
		m.popupCursor = max(0, m.popupCursor-1)
	case key.Matches(msg, m.keys.Down):
		m.popupCursor = min(len(columns), m.popupCursor+1)
	case key.Matches(msg, m.keys.Toggle):
		if m.popupCursor == 0 {
			m.table.SetAllVisible(!m.table.AllVisible())
		} else {
			m.table.ToggleVisibility(columns[m.popupCursor-1].ID)
		}
		m.clampColumn()
	}
	return m, nil
}

// handlePage applies a fetch result if it belongs to the current key.
func (m Model) handlePage(msg pageMsg) (tea.Model, tea.Cmd) {
	// Discard stale responses; the cache still holds them.
	if msg.key != m.key {
		m.log.Debug("discarding stale page", "key", msg.key, "current", m.key)
		return m, nil
	}

	if msg.err != nil {
		if msg.background && m.showingCurrent() {
			m.log.Warn("background revalidation failed", "key", msg.key, "error", msg.err)
			return m, nil
		}
		m.log.Warn("page fetch failed", "key", msg.key, "error", msg.err)
		m.state = stateError
		m.err = msg.err
		return m, nil
	}

	m.applyPage(msg.page)
	return m, nil
}

// handleDebounce pushes the search text to the server filter once typing
// settles. Pattern searches stay client-side.
func (m Model) handleDebounce(msg debounceMsg) (tea.Model, tea.Cmd) {
	if msg.id != m.debounceID {
		return m, nil // Stale debounce timer; ignore.
	}
	if m.table.GlobalFilter().IsPattern() {
		return m, nil
	}
	m.sync.SetFilter(m.search.Value())
	return m, m.syncFetch()
}

// startDebounce increments the debounce counter and returns a tea.Tick
// command that fires after the debounce interval.
func (m *Model) startDebounce() tea.Cmd {
	m.debounceID++
	id := m.debounceID
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return debounceMsg{id: id}
	})
}

// syncFetch starts a fetch when the query's key differs from the one
// shown or awaited.
func (m *Model) syncFetch() tea.Cmd {
	if m.fetcher.Key(m.sync.Query()) == m.key && m.state != stateIdle {
		return nil
	}
	return m.startFetch()
}

// startFetch makes the current query's key the awaited one. Cached pages
// render immediately and, when stale, are revalidated in the background.
func (m *Model) startFetch() tea.Cmd {
	q := m.sync.Query()
	key := m.fetcher.Key(q)
	m.key = key
	m.err = nil

	if r, ok := m.fetcher.Cached(q); ok {
		m.applyPage(r.Page)
		if r.Stale {
			return m.revalidate(true)
		}
		return nil
	}

	m.state = stateLoading
	f := m.fetcher
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		r, err := f.Get(context.Background(), q)
		return pageMsg{key: key, page: r.Page, err: err}
	})
}

// revalidate refetches the current key, replacing its cache entry.
func (m *Model) revalidate(background bool) tea.Cmd {
	q := m.sync.Query()
	key := m.fetcher.Key(q)
	m.key = key

	var tick tea.Cmd
	if !background {
		m.state = stateLoading
		m.err = nil
		tick = m.spinner.Tick
	}
	f := m.fetcher
	return tea.Batch(tick, func() tea.Msg {
		p, err := f.Revalidate(context.Background(), q)
		return pageMsg{key: key, page: p, background: background, err: err}
	})
}

// applyPage shows p. A new key resets cursor and scroll; a refreshed page
// of the same key keeps the cursor on the selected record.
func (m *Model) applyPage(p listclient.Page) {
	selected := ""
	if row, ok := m.Selected(); ok {
		selected = row.Record.ID(m.idField)
	}
	sameKey := m.hasPage && p.Key == m.page.Key

	m.page = p
	m.hasPage = true
	m.err = nil
	m.state = stateLoaded
	m.table.SetData(p.Records)

	switch {
	case !sameKey:
		m.cursor = 0
		m.virt.ScrollTo(0)
	case selected != "":
		for i, row := range m.table.Rows() {
			if row.Record.ID(m.idField) == selected {
				m.cursor = i
				break
			}
		}
	}
	m.clampCursor()
	if sameKey {
		m.virt.ScrollToIndex(m.cursor)
	}
}

// Selected returns the row under the cursor.
func (m Model) Selected() (table.Row, bool) {
	if !m.hasPage {
		return table.Row{}, false
	}
	rows := m.table.Rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return table.Row{}, false
	}
	return rows[m.cursor], true
}

// showingCurrent reports whether the table holds the current key's page.
func (m Model) showingCurrent() bool {
	return m.hasPage && m.page.Key == m.key
}

func (m *Model) setPageIndex(index int) tea.Cmd {
	if err := m.sync.SetPageIndex(index); err != nil {
		m.log.Warn("rejected page index", "index", index, "error", err)
		return nil
	}
	return m.syncFetch()
}

func (m *Model) setPageSize(size int) tea.Cmd {
	if err := m.sync.SetPageSize(size); err != nil {
		m.log.Warn("rejected page size", "size", size, "error", err)
		return nil
	}
	return m.syncFetch()
}

// navigate moves through the location history. A changed filter is copied
// into the search line and any pending server push is dropped.
func (m *Model) navigate(move func() bool) tea.Cmd {
	before := m.sync.Query().Filter
	if !move() {
		return nil
	}
	if f := m.sync.Query().Filter; f != before {
		m.debounceID++
		m.search.SetValue(f)
		m.table.SetGlobalFilter(f)
		m.clampCursor()
	}
	return m.syncFetch()
}

func (m *Model) moveCursor(delta int) {
	n := len(m.table.Rows())
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = max(0, min(n-1, m.cursor+delta))
	m.virt.Window(n)
	m.virt.ScrollToIndex(m.cursor)
}

func (m *Model) clampCursor() {
	n := len(m.table.Rows())
	m.cursor = max(0, min(n-1, m.cursor))
	m.virt.Window(n)
}

func (m *Model) moveColumn(delta int) {
	m.activeCol += delta
	m.clampColumn()
}

func (m *Model) clampColumn() {
	n := len(m.table.Headers())
	m.activeCol = max(0, min(n-1, m.activeCol))
}

func (m *Model) activeHeader() (table.Header, bool) {
	headers := m.table.Headers()
	if m.activeCol < 0 || m.activeCol >= len(headers) {
		return table.Header{}, false
	}
	return headers[m.activeCol], true
}

func (m *Model) sortActive(multi bool) {
	if h, ok := m.activeHeader(); ok {
		m.table.ToggleSort(h.ID, multi)
		m.clampCursor()
	}
}

func (m *Model) resizeActive(delta int) {
	if h, ok := m.activeHeader(); ok {
		m.table.Resize(h.ID, delta)
	}
}

// bodyHeight returns the number of terminal lines for rows: the terminal
// height minus search line, header, footer and help.
func (m Model) bodyHeight() int {
	if m.height <= 0 {
		return defaultBodyHeight
	}
	chrome := 4
	if m.help.ShowAll {
		chrome += 5
	}
	return max(1, m.height-chrome)
}

func (m Model) visibleRows() int {
	return max(1, m.bodyHeight()/m.rowHeight)
}
