package output

import (
	"time"

	"github.com/iancoleman/orderedmap"
)

// dateLayout renders calendar dates in JSON and tables.
const dateLayout = "2006-01-02"

// WindowInfo describes the retention window a result was computed with.
//
// Fields:
//   - DropMonths: Length of the support window
//   - CooldownMonths: Trailing grace period
//   - DropDate: Series dated before this are unsupported
//   - CooldownDate: Series dated on or after this are always kept
type WindowInfo struct {
	DropMonths     float64
	CooldownMonths float64
	DropDate       time.Time
	CooldownDate   time.Time
}

func (w WindowInfo) ordered() *orderedmap.OrderedMap {
	m := orderedmap.New()
	m.Set("drop_months", w.DropMonths)
	m.Set("cooldown_months", w.CooldownMonths)
	m.Set("drop_date", formatDate(w.DropDate))
	m.Set("cooldown_date", formatDate(w.CooldownDate))
	return m
}

// BumpResult represents the output data for the bump command.
//
// Fields:
//   - Manifest: Path of the manifest that was read
//   - Window: Retention window
//   - DryRun: Whether persisting was skipped on request
//   - Persisted: Whether the new requirements were written
//   - Summary: Counts per status
//   - Dependencies: One entry per declared dependency, in declared order
//   - Warnings: Non-fatal diagnostics (omitted if empty)
//   - Errors: Failure messages (omitted if empty)
type BumpResult struct {
	Manifest     string
	Window       WindowInfo
	DryRun       bool
	Persisted    bool
	Summary      BumpSummary
	Dependencies []BumpEntry
	Warnings     []string
	Errors       []string
}

// BumpSummary holds summary statistics for bump results.
type BumpSummary struct {
	Total     int
	Updated   int
	Unchanged int
	Fallback  int
	Skipped   int
	Failed    int
}

// BumpEntry represents one dependency in the bump output.
//
// Fields:
//   - Name: Project name
//   - Original: Requirement as declared
//   - Requirement: Requirement after the bump
//   - Floor: Selected floor version, empty when none was selected
//   - Reason: Rule that produced the floor
//   - FloorDate: First-seen date of the floor
//   - Status: Display status (see pkg/constants)
//   - Warning: Fallback or skip reason (omitted if empty)
//   - Error: Failure message (omitted if empty)
type BumpEntry struct {
	Name        string
	Original    string
	Requirement string
	Floor       string
	Reason      string
	FloorDate   time.Time
	Status      string
	Warning     string
	Error       string
}

// Ordered converts the result into an ordered map for JSON output.
//
// Keys appear in a fixed order and dependencies keep their declared order.
//
// Returns:
//   - *orderedmap.OrderedMap: JSON document
func (r *BumpResult) Ordered() *orderedmap.OrderedMap {
	m := orderedmap.New()
	m.Set("manifest", r.Manifest)
	m.Set("window", r.Window.ordered())
	m.Set("dry_run", r.DryRun)
	m.Set("persisted", r.Persisted)

	summary := orderedmap.New()
	summary.Set("total", r.Summary.Total)
	summary.Set("updated", r.Summary.Updated)
	summary.Set("unchanged", r.Summary.Unchanged)
	summary.Set("fallback", r.Summary.Fallback)
	summary.Set("skipped", r.Summary.Skipped)
	summary.Set("failed", r.Summary.Failed)
	m.Set("summary", summary)

	deps := make([]*orderedmap.OrderedMap, 0, len(r.Dependencies))
	for _, d := range r.Dependencies {
		deps = append(deps, d.ordered())
	}
	m.Set("dependencies", deps)

	if len(r.Warnings) > 0 {
		m.Set("warnings", r.Warnings)
	}
	if len(r.Errors) > 0 {
		m.Set("errors", r.Errors)
	}
	return m
}

func (e BumpEntry) ordered() *orderedmap.OrderedMap {
	m := orderedmap.New()
	m.Set("name", e.Name)
	m.Set("original", e.Original)
	m.Set("requirement", e.Requirement)
	m.Set("changed", e.Original != e.Requirement)
	if e.Floor != "" {
		m.Set("floor", e.Floor)
		m.Set("reason", e.Reason)
		m.Set("floor_date", formatDate(e.FloorDate))
	}
	m.Set("status", e.Status)
	if e.Warning != "" {
		m.Set("warning", e.Warning)
	}
	if e.Error != "" {
		m.Set("error", e.Error)
	}
	return m
}

// FloorResult represents the output data for the floor command.
//
// Fields:
//   - Window: Retention window
//   - Packages: One entry per queried package, in argument order
type FloorResult struct {
	Window   WindowInfo
	Packages []FloorEntry
}

// FloorEntry is the floor of one package with the series it was chosen from.
//
// Fields:
//   - Name: Package name as given
//   - PURL: Package URL identifying the package
//   - Floor: Selected floor version
//   - Reason: Rule that produced the floor
//   - FloorDate: First-seen date of the floor
//   - Series: Minor series, ascending
//   - Error: Failure message (omitted if empty)
type FloorEntry struct {
	Name      string
	PURL      string
	Floor     string
	Reason    string
	FloorDate time.Time
	Series    []SeriesEntry
	Error     string
}

// SeriesEntry is one minor series and how the window classifies it.
//
// Fields:
//   - Version: Representative version of the series
//   - Date: First-seen date of that version
//   - Band: "supported", "cooldown" or "dropped"
type SeriesEntry struct {
	Version string
	Date    time.Time
	Band    string
}

// Ordered converts the result into an ordered map for JSON output.
//
// Returns:
//   - *orderedmap.OrderedMap: JSON document
func (r *FloorResult) Ordered() *orderedmap.OrderedMap {
	m := orderedmap.New()
	m.Set("window", r.Window.ordered())

	pkgs := make([]*orderedmap.OrderedMap, 0, len(r.Packages))
	for _, p := range r.Packages {
		entry := orderedmap.New()
		entry.Set("name", p.Name)
		entry.Set("purl", p.PURL)
		if p.Error != "" {
			entry.Set("error", p.Error)
			pkgs = append(pkgs, entry)
			continue
		}
		entry.Set("floor", p.Floor)
		entry.Set("reason", p.Reason)
		entry.Set("floor_date", formatDate(p.FloorDate))

		series := make([]*orderedmap.OrderedMap, 0, len(p.Series))
		for _, s := range p.Series {
			sm := orderedmap.New()
			sm.Set("version", s.Version)
			sm.Set("date", formatDate(s.Date))
			sm.Set("band", s.Band)
			series = append(series, sm)
		}
		entry.Set("series", series)
		pkgs = append(pkgs, entry)
	}
	m.Set("packages", pkgs)
	return m
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
