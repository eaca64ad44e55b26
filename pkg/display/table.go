package display

import (
	"fmt"
	"io"

	"github.com/ajxudir/depfloor/pkg/output"
)

// ColumnDef defines a single table column's properties.
//
// Fields:
//   - Name: Column header text
//   - Optional: If true, the column is shown only when TableOptions asks for it
type ColumnDef struct {
	Name     string
	Optional bool
}

// Schema defines a complete table structure.
type Schema struct {
	Columns []ColumnDef
}

// Predefined table schemas.
var (
	// BumpSchema defines columns for the 'bump' command output.
	// WARNING is shown only when some dependency carries a warning or error.
	BumpSchema = Schema{
		Columns: []ColumnDef{
			{Name: "NAME"},
			{Name: "ORIGINAL"},
			{Name: "REQUIREMENT"},
			{Name: "FLOOR"},
			{Name: "REASON"},
			{Name: "STATUS"},
			{Name: "WARNING", Optional: true},
		},
	}

	// FloorSchema defines columns for the 'floor' command output.
	FloorSchema = Schema{
		Columns: []ColumnDef{
			{Name: "NAME"},
			{Name: "FLOOR"},
			{Name: "DATE"},
			{Name: "REASON"},
			{Name: "ERROR", Optional: true},
		},
	}

	// SeriesSchema defines columns for the per-package series breakdown.
	SeriesSchema = Schema{
		Columns: []ColumnDef{
			{Name: "SERIES"},
			{Name: "FIRST SEEN"},
			{Name: "BAND"},
		},
	}
)

// TableOptions configures table creation from a schema.
//
// Fields:
//   - ShowOptional: Map of optional column names to show
type TableOptions struct {
	ShowOptional map[string]bool
}

// NewTableFromSchema creates an output.Table from a schema and options.
//
// Parameters:
//   - schema: Table schema defining columns
//   - options: Configuration options
//
// Returns:
//   - *output.Table: New table ready for adding rows
func NewTableFromSchema(schema Schema, options TableOptions) *output.Table {
	table := output.NewTable()
	for _, col := range schema.Columns {
		if col.Optional {
			table.AddOptionalColumn(col.Name, options.ShowOptional[col.Name])
		} else {
			table.AddColumn(col.Name)
		}
	}
	return table
}

// PrintBumpTable prints the bump result as a table followed by its summary.
//
// It performs the following operations:
//   - Step 1: Build one row per dependency in declared order
//   - Step 2: Hide the WARNING column when no row has a note
//   - Step 3: Print window, table and summary
//
// Parameters:
//   - w: Writer to output to (typically os.Stdout)
//   - result: Bump result to render
func PrintBumpTable(w io.Writer, result *output.BumpResult) {
	if len(result.Dependencies) == 0 {
		PrintNoDependenciesMessage(w, result.Manifest)
		return
	}

	rows := make([][]string, 0, len(result.Dependencies))
	showWarning := false
	for _, d := range result.Dependencies {
		note := d.Warning
		if d.Error != "" {
			note = d.Error
		}
		if note != "" {
			showWarning = true
		}
		floorDisplay := SafeFloorValue(d.Floor)
		reason := d.Reason
		if d.Floor == "" {
			reason = ""
		}
		rows = append(rows, []string{
			d.Name,
			d.Original,
			d.Requirement,
			floorDisplay,
			reason,
			FormatStatus(d.Status),
			TruncateWithEllipsis(note, 80),
		})
	}

	table := NewTableFromSchema(BumpSchema, TableOptions{ShowOptional: map[string]bool{"WARNING": showWarning}})
	for _, row := range rows {
		table.AddRow(row...)
	}

	PrintWindow(w, result.Window)
	_ = table.Render(w)
	_, _ = fmt.Fprintln(w)
	PrintSummary(w, result.Summary, result.Persisted)
}

// PrintFloorTable prints the floors of the queried packages.
//
// Parameters:
//   - w: Writer to output to (typically os.Stdout)
//   - result: Floor query result
//   - showSeries: Also print every package's minor series with its band
func PrintFloorTable(w io.Writer, result *output.FloorResult, showSeries bool) {
	rows := make([][]string, 0, len(result.Packages))
	showError := false
	for _, p := range result.Packages {
		if p.Error != "" {
			showError = true
		}
		rows = append(rows, []string{
			p.Name,
			SafeFloorValue(p.Floor),
			FormatDate(p.FloorDate),
			p.Reason,
			TruncateWithEllipsis(p.Error, 80),
		})
	}

	table := NewTableFromSchema(FloorSchema, TableOptions{ShowOptional: map[string]bool{"ERROR": showError}})
	for _, row := range rows {
		table.AddRow(row...)
	}

	PrintWindow(w, result.Window)
	_ = table.Render(w)

	if !showSeries {
		return
	}
	for _, p := range result.Packages {
		if len(p.Series) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "\n%s\n", p.Name)
		printSeries(w, p.Series)
	}
}

func printSeries(w io.Writer, series []output.SeriesEntry) {
	table := NewTableFromSchema(SeriesSchema, TableOptions{})
	for _, s := range series {
		table.AddRow(s.Version, FormatDate(s.Date), s.Band)
	}
	_ = table.Render(w)
}
