package grid

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/runger/datagrid/internal/table"
	"github.com/runger/datagrid/internal/virtual"
)

var (
	headerStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	activeHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	selectedStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("237"))
	normalStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	controlStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	spinnerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Messages shown in place of rows.
const (
	msgNothingFound = "Nothing found"
	msgFailed       = "Something went wrong..."
	msgLoading      = "Loading..."
	msgNoColumns    = "No columns visible"
)

// Sort glyphs drawn after a sortable header's label.
const (
	glyphUnsorted = "↕"
	glyphAsc      = "▲"
	glyphDesc     = "▼"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewSearch())
	b.WriteRune('\n')

	if m.popup {
		b.WriteString(m.viewColumns())
	} else {
		b.WriteString(m.viewTable())
	}
	b.WriteRune('\n')

	b.WriteString(m.viewFooter())
	b.WriteRune('\n')
	// History keys only show when they would move.
	keys := m.keys
	keys.Back.SetEnabled(m.loc.CanBack())
	keys.Forward.SetEnabled(m.loc.CanForward())
	b.WriteString(m.help.View(keys))

	return b.String()
}

// viewSearch renders the search input and the current location.
func (m Model) viewSearch() string {
	line := m.search.View()
	if loc := m.loc.String(); loc != "" {
		line += "  " + dimStyle.Render(MiddleTruncate(loc, 40))
	}
	return line
}

// viewTable renders the header and exactly bodyHeight body lines.
func (m Model) viewTable() string {
	headers := m.table.Headers()
	height := m.bodyHeight()

	var lines []string
	if len(headers) == 0 {
		lines = []string{dimStyle.Render(msgNoColumns)}
		return strings.Join(padLines(lines, height+1, ""), "\n")
	}

	header := m.viewHeader(headers)
	width := tableWidth(headers)
	blank := strings.Repeat(" ", width)
	rows := m.table.Rows()

	switch {
	case m.state == stateError:
		lines = []string{errorStyle.Render(Fit(msgFailed, width))}
	case !m.showingCurrent():
		lines = []string{Fit(m.spinner.View()+" "+msgLoading, width)}
	case len(rows) == 0:
		lines = []string{dimStyle.Render(Fit(msgNothingFound, width))}
	default:
		lines = m.viewRows(rows, headers, width, height)
	}

	return header + "\n" + strings.Join(padLines(lines, height, blank), "\n")
}

// viewHeader renders labels with sort glyphs, highlighting the active
// column.
func (m Model) viewHeader(headers []table.Header) string {
	multi := len(m.table.Sorting()) > 1
	cells := make([]string, len(headers))
	for i, h := range headers {
		label := h.Label
		if g := sortGlyph(h, multi); g != "" {
			label += " " + g
		}
		text := Fit(Sanitize(label), h.Width)
		if i == m.activeCol {
			cells[i] = activeHeaderStyle.Render(text)
		} else {
			cells[i] = headerStyle.Render(text)
		}
	}
	return strings.Join(cells, " ")
}

func sortGlyph(h table.Header, multi bool) string {
	if !h.Sortable {
		return ""
	}
	switch h.Sort {
	case table.SortAsc:
		return glyphAsc + sortPosition(h, multi)
	case table.SortDesc:
		return glyphDesc + sortPosition(h, multi)
	default:
		return glyphUnsorted
	}
}

func sortPosition(h table.Header, multi bool) string {
	if !multi || h.SortIndex < 0 {
		return ""
	}
	return fmt.Sprint(h.SortIndex + 1)
}

// viewRows renders the rows of the virtual window that lie inside the
// viewport, with a scrollbar on the right.
func (m Model) viewRows(rows []table.Row, headers []table.Header, width, height int) []string {
	w := m.virt.Window(len(rows))
	top := m.virt.Offset()
	bottom := top + float64(height)

	var lines []string
	for _, it := range w.Items {
		// Overscan rows lie outside the viewport; a terminal cannot show
		// them partially.
		if it.Start < top || it.End > bottom {
			continue
		}
		lines = append(lines, m.viewRow(rows[it.Index], headers, it.Index == m.cursor))
		for extra := 1; extra < m.rowHeight; extra++ {
			lines = append(lines, strings.Repeat(" ", width))
		}
	}

	lines = padLines(lines, height, strings.Repeat(" ", width))
	bar := scrollbar(w, height)
	for i := range lines {
		lines[i] += " " + bar[i]
	}
	return lines
}

func (m Model) viewRow(row table.Row, headers []table.Header, selected bool) string {
	cells := make([]string, len(headers))
	for i, h := range headers {
		c, _ := row.Cell(h.ID)
		cells[i] = Fit(Sanitize(c.Text), h.Width)
	}
	line := strings.Join(cells, " ")
	if selected {
		return selectedStyle.Render(line)
	}
	return normalStyle.Render(line)
}

// scrollbar derives the thumb from the window paddings. It is blank when
// everything fits.
func scrollbar(w virtual.Window, height int) []string {
	out := make([]string, height)
	if w.TotalSize <= float64(height) || height <= 0 {
		for i := range out {
			out[i] = " "
		}
		return out
	}
	top := int(math.Floor(w.PaddingTop / w.TotalSize * float64(height)))
	bottom := height - int(math.Floor(w.PaddingBottom/w.TotalSize*float64(height)))
	if bottom <= top {
		bottom = top + 1
	}
	for i := range out {
		if i >= top && i < bottom {
			out[i] = "┃"
		} else {
			out[i] = dimStyle.Render("│")
		}
	}
	return out
}

// viewColumns renders the column visibility popup.
func (m Model) viewColumns() string {
	columns := m.table.Columns()
	lines := make([]string, 0, len(columns)+2)
	lines = append(lines, headerStyle.Render("Columns"))

	all := "[ ]"
	switch {
	case m.table.AllVisible():
		all = "[x]"
	case m.table.SomeVisible():
		all = "[-]"
	}
	lines = append(lines, m.popupLine(0, all+" Toggle All"))
	for i, c := range columns {
		box := "[ ]"
		if c.Visible {
			box = "[x]"
		}
		lines = append(lines, m.popupLine(i+1, box+" "+Sanitize(c.Label)))
	}
	return strings.Join(padLines(lines, m.bodyHeight()+1, ""), "\n")
}

func (m Model) popupLine(i int, text string) string {
	if i == m.popupCursor {
		return selectedStyle.Render("> " + text)
	}
	return normalStyle.Render("  " + text)
}

// viewFooter renders pagination controls and counts.
func (m Model) viewFooter() string {
	p := m.Pager()
	controls := []string{
		control("«", p.CanPrev()),
		control("‹", p.CanPrev()),
		control("›", p.CanNext()),
		control("»", p.CanLast()),
	}

	parts := []string{
		strings.Join(controls, " "),
		p.RowsLabel(),
		p.PageLabel(),
		fmt.Sprintf("size %d", p.PageSize),
	}
	if shown := len(m.table.Rows()); m.showingCurrent() && shown != p.Records {
		parts = append(parts, fmt.Sprintf("showing %d", shown))
	}
	if m.state == stateLoading {
		parts = append(parts, m.spinner.View())
	}
	return strings.Join(parts, dimStyle.Render(" · "))
}

func control(glyph string, enabled bool) string {
	if enabled {
		return controlStyle.Render(glyph)
	}
	return dimStyle.Render(glyph)
}

func tableWidth(headers []table.Header) int {
	w := 0
	for _, h := range headers {
		w += h.Width
	}
	return w + max(0, len(headers)-1)
}

// padLines returns exactly n lines, filling with fill or cutting the tail.
func padLines(lines []string, n int, fill string) []string {
	if len(lines) >= n {
		return lines[:n]
	}
	out := make([]string, n)
	copy(out, lines)
	for i := len(lines); i < n; i++ {
		out[i] = fill
	}
	return out
}
