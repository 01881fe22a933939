package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const tableGap = "  "

// Table lays out rows under a styled header and a rule. Widths are measured
// with lipgloss so styled cells line up with plain ones.
type Table struct {
	headers []string
	rows    [][]string
	right   map[int]bool
	limit   map[int]int
}

func NewTable(headers ...string) *Table {
	return &Table{headers: headers, right: map[int]bool{}, limit: map[int]int{}}
}

// AlignRight right-aligns the given columns.
func (t *Table) AlignRight(cols ...int) *Table {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

// MaxWidth truncates cells of col to width runes. Only use it on columns
// holding unstyled text.
func (t *Table) MaxWidth(col, width int) *Table {
	t.limit[col] = width
	return t
}

// Row appends a row; missing cells render empty and extra cells are dropped.
func (t *Table) Row(cells ...string) *Table {
	row := make([]string, len(t.headers))
	for i := range row {
		if i >= len(cells) {
			break
		}
		row[i] = cells[i]
		if w, ok := t.limit[i]; ok {
			row[i] = Truncate(row[i], w)
		}
	}
	t.rows = append(t.rows, row)
	return t
}

func (t *Table) Len() int { return len(t.rows) }

func (t *Table) String() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	header := make([]string, len(t.headers))
	for i, h := range t.headers {
		header[i] = StyleHeader.Render(h)
	}
	t.writeLine(&b, header, widths)

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = StyleDim.Render(strings.Repeat("─", w))
	}
	t.writeLine(&b, rule, widths)

	for _, row := range t.rows {
		t.writeLine(&b, row, widths)
	}
	return b.String()
}

// writeLine pads each cell to its column width. Lines carry no trailing
// blanks.
func (t *Table) writeLine(b *strings.Builder, cells []string, widths []int) {
	var line strings.Builder
	for i, cell := range cells {
		if i > 0 {
			line.WriteString(tableGap)
		}
		pad := strings.Repeat(" ", max(widths[i]-lipgloss.Width(cell), 0))
		if t.right[i] {
			line.WriteString(pad + cell)
		} else {
			line.WriteString(cell + pad)
		}
	}
	b.WriteString(strings.TrimRight(line.String(), " "))
	b.WriteString("\n")
}

// RenderTable renders headers and rows as a left-aligned Table.
func RenderTable(headers []string, rows [][]string) string {
	t := NewTable(headers...)
	for _, row := range rows {
		t.Row(row...)
	}
	return t.String()
}
