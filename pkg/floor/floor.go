// Package floor chooses the oldest release a project should still support.
//
// The policy is a time window counted back from today. Minor series older
// than the drop window are no longer supported. A trailing cooldown keeps a
// series supported until it has also aged past the cooldown boundary, so the
// floor does not jump the moment a series crosses the drop boundary.
package floor

import (
	"errors"
	"fmt"
	"math"
	"time"

	depferrors "github.com/ajxudir/depfloor/pkg/errors"
	"github.com/ajxudir/depfloor/pkg/history"
	"github.com/ajxudir/depfloor/pkg/verbose"
	"github.com/ajxudir/depfloor/pkg/version"
)

// DaysPerMonth is the average Gregorian month length used to turn month
// windows into day counts.
const DaysPerMonth = 30.436875

// ErrNoReleases is returned when a package has no usable final release.
var ErrNoReleases = errors.New("no usable releases")

// Reason records which rule produced a floor.
type Reason string

const (
	// ReasonCooldownBand: the oldest series dated inside [drop date, cooldown date).
	ReasonCooldownBand Reason = "cooldown-band"

	// ReasonNewestObsolete: no series in the band, so the newest series older
	// than the drop date.
	ReasonNewestObsolete Reason = "newest-obsolete"

	// ReasonEarliestRelease: every series is newer than the cooldown date, so
	// the oldest release of the package.
	ReasonEarliestRelease Reason = "earliest-release"
)

// Band is where a series date falls relative to the window.
type Band string

const (
	// BandDropped: dated before the drop date.
	BandDropped Band = "dropped"

	// BandCooldown: dated inside [drop date, cooldown date), the floor candidates.
	BandCooldown Band = "cooldown"

	// BandSupported: dated on or after the cooldown date.
	BandSupported Band = "supported"
)

func bandOf(date, dropDate, cooldownDate time.Time) Band {
	switch {
	case date.Before(dropDate):
		return BandDropped
	case date.Before(cooldownDate):
		return BandCooldown
	default:
		return BandSupported
	}
}

// Window is the retention policy in months.
//
// Fields:
//   - DropMonths: Length of the support window
//   - CooldownMonths: Trailing grace period, at most DropMonths
type Window struct {
	DropMonths     float64
	CooldownMonths float64
}

// Validate checks 0 <= CooldownMonths <= DropMonths.
//
// Returns:
//   - error: *errors.InvalidParameterError when the window is invalid; nil otherwise
func (w Window) Validate() error {
	if math.IsNaN(w.DropMonths) || math.IsNaN(w.CooldownMonths) ||
		w.CooldownMonths < 0 || w.DropMonths < 0 || w.CooldownMonths > w.DropMonths {
		return &depferrors.InvalidParameterError{DropMonths: w.DropMonths, CooldownMonths: w.CooldownMonths}
	}
	return nil
}

// Dates returns the drop and cooldown dates for the given day.
//
// Month counts become whole days by rounding up, then are subtracted from
// the calendar day of now.
//
// Parameters:
//   - now: Reference time; only its UTC calendar day is used
//
// Returns:
//   - dropDate: Series dated before this are outside the support window
//   - cooldownDate: Series dated on or after this are always kept
func (w Window) Dates(now time.Time) (dropDate, cooldownDate time.Time) {
	today := history.Day(now)
	dropDate = today.AddDate(0, 0, -monthsToDays(w.DropMonths))
	cooldownDate = today.AddDate(0, 0, -monthsToDays(w.CooldownMonths))
	return dropDate, cooldownDate
}

// Classify returns the band of date for the window evaluated at now.
func (w Window) Classify(date, now time.Time) Band {
	dropDate, cooldownDate := w.Dates(now)
	return bandOf(date, dropDate, cooldownDate)
}

func monthsToDays(months float64) int {
	return int(math.Ceil(months * DaysPerMonth))
}

// Selection is the outcome of Select.
//
// Fields:
//   - Version: The chosen floor version
//   - Floor: Version rendered without trailing ".0" segments
//   - Reason: The rule that produced it
//   - Date: First-seen date of the chosen version
type Selection struct {
	Version *version.Version
	Floor   string
	Reason  Reason
	Date    time.Time
}

// Specifier returns the lower-bound specifier ">=floor".
func (s *Selection) Specifier() string {
	return ">=" + s.Floor
}

// Select picks the oldest supported release of pkg.
//
// It performs the following operations:
//   - Step 1: Validate the window
//   - Step 2: Compute the drop and cooldown dates
//   - Step 3: Split the minor series into the cooldown band [drop, cooldown)
//     and the obsolete set (before drop); newer series are ignored
//   - Step 4: Pick the oldest series in the band, else the newest obsolete
//     series, else the oldest release overall
//
// Parameters:
//   - pkg: Release history of the package
//   - now: Reference time
//   - w: Retention window
//
// Returns:
//   - *Selection: The chosen floor
//   - error: InvalidParameterError for a bad window, ErrNoReleases when the
//     package has no final release
func Select(pkg *history.Package, now time.Time, w Window) (*Selection, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	oldest, ok := pkg.Oldest()
	if !ok {
		return nil, fmt.Errorf("%s: %w", pkg.Name, ErrNoReleases)
	}

	dropDate, cooldownDate := w.Dates(now)
	verbose.WindowDates(pkg.Name, dropDate, cooldownDate)

	var band, obsolete []history.Series
	for _, s := range pkg.MinorSeries() {
		switch bandOf(s.Date, dropDate, cooldownDate) {
		case BandCooldown:
			band = append(band, s)
		case BandDropped:
			obsolete = append(obsolete, s)
		}
	}

	var sel *Selection
	switch {
	case len(band) > 0:
		sel = &Selection{Version: band[0].Version, Reason: ReasonCooldownBand, Date: band[0].Date}
	case len(obsolete) > 0:
		last := obsolete[len(obsolete)-1]
		sel = &Selection{Version: last.Version, Reason: ReasonNewestObsolete, Date: last.Date}
	default:
		date, _ := pkg.ReleaseDate(oldest)
		sel = &Selection{Version: oldest, Reason: ReasonEarliestRelease, Date: date}
	}
	sel.Floor = sel.Version.Format()

	verbose.FloorSelected(pkg.Name, sel.Floor, string(sel.Reason))
	return sel, nil
}
