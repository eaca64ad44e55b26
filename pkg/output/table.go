package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// columnGap separates adjacent columns.
const columnGap = "  "

// Column is one table column.
//
// Fields:
//   - Header: Text of the header cell
//   - Hidden: Whether the column is left out when rendering
type Column struct {
	Header string
	Hidden bool
}

// Table buffers rows and renders them as left-aligned columns whose widths
// fit the widest cell. Widths are measured in terminal cells, so emoji
// status icons and CJK text line up.
type Table struct {
	columns []Column
	widths  []int
	rows    [][]string
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{}
}

// AddColumn appends an always-visible column.
//
// Parameters:
//   - header: Header text
//
// Returns:
//   - *Table: The table, for chaining
func (t *Table) AddColumn(header string) *Table {
	return t.AddOptionalColumn(header, true)
}

// AddOptionalColumn appends a column that is rendered only when visible is
// true. Rows still carry a value for it, so callers build rows the same way
// whether or not the column shows.
//
// Parameters:
//   - header: Header text
//   - visible: Whether the column is rendered
//
// Returns:
//   - *Table: The table, for chaining
func (t *Table) AddOptionalColumn(header string, visible bool) *Table {
	t.columns = append(t.columns, Column{Header: header, Hidden: !visible})
	t.widths = append(t.widths, DisplayWidth(header))
	return t
}

// AddRow buffers a row and widens columns to fit it. Values beyond the last
// column are ignored; missing values render empty.
//
// Returns:
//   - *Table: The table, for chaining
func (t *Table) AddRow(values ...string) *Table {
	row := make([]string, len(t.columns))
	copy(row, values)
	for i, val := range row {
		if w := DisplayWidth(val); w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, row)
	return t
}

// Len returns the number of buffered rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Columns returns the visible column headers in order.
func (t *Table) Columns() []string {
	var headers []string
	for _, col := range t.columns {
		if !col.Hidden {
			headers = append(headers, col.Header)
		}
	}
	return headers
}

// Render writes the header, a dashed separator and every row. Trailing
// padding is trimmed from each line.
//
// Parameters:
//   - w: Destination writer
//
// Returns:
//   - error: First write error
func (t *Table) Render(w io.Writer) error {
	headers := make([]string, len(t.columns))
	dashes := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = col.Header
		dashes[i] = strings.Repeat("-", t.widths[i])
	}

	lines := append([][]string{headers, dashes}, t.rows...)
	for _, cells := range lines {
		if _, err := fmt.Fprintln(w, t.line(cells)); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) line(cells []string) string {
	var b strings.Builder
	first := true
	for i, col := range t.columns {
		if col.Hidden {
			continue
		}
		if !first {
			b.WriteString(columnGap)
		}
		first = false
		b.WriteString(ToWidth(cells[i], t.widths[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

// DisplayWidth returns the number of terminal cells val occupies.
func DisplayWidth(val string) int {
	return runewidth.StringWidth(val)
}

// ToWidth pads val with spaces to width terminal cells. Values already at
// least that wide are returned unchanged.
func ToWidth(val string, width int) string {
	if pad := width - DisplayWidth(val); pad > 0 {
		return val + strings.Repeat(" ", pad)
	}
	return val
}
