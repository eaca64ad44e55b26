package floor

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	depferrors "github.com/ajxudir/depfloor/pkg/errors"
	"github.com/ajxudir/depfloor/pkg/history"
	"github.com/ajxudir/depfloor/pkg/version"
)

var now = time.Date(2026, 1, 1, 14, 30, 0, 0, time.UTC)

// monthsAgo returns the date the given number of months before now, using
// the same day arithmetic as the selector.
func monthsAgo(months float64) time.Time {
	return history.Day(now).AddDate(0, 0, -int(math.Ceil(months*DaysPerMonth)))
}

// release builds a history release first seen on the given date.
func release(v string, date time.Time) history.Release {
	return history.Release{Version: version.MustParse(v), Uploads: []time.Time{date}}
}

// syntheticPackage has minor series released 50, 30, 20, 10, 5 and 0.5 months ago.
func syntheticPackage() *history.Package {
	return history.FromReleases("synthetic", []history.Release{
		release("1.0.0", monthsAgo(50)),
		release("1.0.3", monthsAgo(45)),
		release("1.1.0", monthsAgo(30)),
		release("1.2.0", monthsAgo(20)),
		release("1.2.1", monthsAgo(19)),
		release("1.3.0", monthsAgo(10)),
		release("1.4.0", monthsAgo(5)),
		release("1.5.0", monthsAgo(0.5)),
	})
}

// TestSelectScenarios tests floor selection against a synthetic history.
//
// It verifies:
//   - drop=24, cooldown=0 picks the 20-month series
//   - drop=24, cooldown=6 picks the 20-month series from the [18,24) band
//   - An empty band falls back to the newest obsolete series
//   - A package younger than the cooldown falls back to its oldest release
func TestSelectScenarios(t *testing.T) {
	tests := []struct {
		name     string
		window   Window
		expected string
		reason   Reason
	}{
		{"no cooldown", Window{DropMonths: 24, CooldownMonths: 0}, "1.2", ReasonCooldownBand},
		{"six month cooldown", Window{DropMonths: 24, CooldownMonths: 6}, "1.2", ReasonCooldownBand},
		{"band holds two series", Window{DropMonths: 36, CooldownMonths: 8}, "1.1", ReasonCooldownBand},
		{"empty band", Window{DropMonths: 12, CooldownMonths: 12}, "1.2", ReasonNewestObsolete},
		{"short window", Window{DropMonths: 4, CooldownMonths: 0}, "1.5", ReasonCooldownBand},
		{"all newer than cooldown", Window{DropMonths: 100, CooldownMonths: 100}, "1", ReasonEarliestRelease},
		{"band past every series", Window{DropMonths: 60, CooldownMonths: 55}, "1", ReasonEarliestRelease},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := Select(syntheticPackage(), now, tt.window)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sel.Floor)
			assert.Equal(t, tt.reason, sel.Reason)
			assert.Equal(t, ">="+tt.expected, sel.Specifier())
		})
	}
}

// TestSelectInvalidWindow tests parameter validation.
//
// It verifies:
//   - cooldown > drop, negative drop and negative cooldown all fail
//   - The failure happens before the package is inspected
func TestSelectInvalidWindow(t *testing.T) {
	empty := history.FromReleases("empty", nil)

	for _, w := range []Window{
		{DropMonths: 4, CooldownMonths: 5},
		{DropMonths: -1, CooldownMonths: 0},
		{DropMonths: 0, CooldownMonths: -1},
		{DropMonths: math.NaN(), CooldownMonths: 0},
	} {
		_, err := Select(empty, now, w)
		require.Error(t, err)
		assert.True(t, depferrors.IsInvalidParameter(err), "%+v", w)
	}
}

// TestSelectNoReleases tests a package without final releases.
func TestSelectNoReleases(t *testing.T) {
	_, err := Select(history.FromReleases("empty", nil), now, Window{DropMonths: 24, CooldownMonths: 12})
	require.ErrorIs(t, err, ErrNoReleases)
	assert.Contains(t, err.Error(), "empty")
}

// TestSelectBoundaries tests the half-open cooldown band.
//
// It verifies:
//   - A series dated exactly on the drop date is in the band
//   - A series dated exactly on the cooldown date is not in the band
func TestSelectBoundaries(t *testing.T) {
	w := Window{DropMonths: 24, CooldownMonths: 12}
	dropDate, cooldownDate := w.Dates(now)

	onDrop := history.FromReleases("p", []history.Release{
		release("1.0", dropDate.AddDate(0, 0, -1)),
		release("2.0", dropDate),
		release("3.0", cooldownDate),
	})
	sel, err := Select(onDrop, now, w)
	require.NoError(t, err)
	assert.Equal(t, "2", sel.Floor)
	assert.Equal(t, ReasonCooldownBand, sel.Reason)

	onCooldown := history.FromReleases("p", []history.Release{
		release("1.0", dropDate.AddDate(0, 0, -1)),
		release("3.0", cooldownDate),
	})
	sel, err = Select(onCooldown, now, w)
	require.NoError(t, err)
	assert.Equal(t, "1", sel.Floor)
	assert.Equal(t, ReasonNewestObsolete, sel.Reason)
}

// TestSelectIsMember tests that the floor is always a series or the oldest release.
//
// It verifies:
//   - For a grid of valid windows the floor is a minor series or the oldest release
func TestSelectIsMember(t *testing.T) {
	pkg := syntheticPackage()
	members := map[string]bool{}
	for _, s := range pkg.MinorSeries() {
		members[s.Version.Key()] = true
	}
	oldest, _ := pkg.Oldest()
	members[oldest.Key()] = true

	for drop := 0.0; drop <= 60; drop += 3 {
		for cooldown := 0.0; cooldown <= drop; cooldown += 3 {
			sel, err := Select(pkg, now, Window{DropMonths: drop, CooldownMonths: cooldown})
			require.NoError(t, err)
			assert.True(t, members[sel.Version.Key()], "drop=%v cooldown=%v floor=%s", drop, cooldown, sel.Floor)
		}
	}
}

// TestSelectUsesSeriesDate tests that a series is dated by its representative.
//
// It verifies:
//   - A later micro uploaded earlier does not move the series into the band
func TestSelectUsesSeriesDate(t *testing.T) {
	pkg := history.FromReleases("p", []history.Release{
		release("1.0.0", monthsAgo(30)),
		release("2.0.0", monthsAgo(6)),
		release("2.0.1", monthsAgo(20)),
	})

	sel, err := Select(pkg, now, Window{DropMonths: 24, CooldownMonths: 12})
	require.NoError(t, err)
	assert.Equal(t, "1", sel.Floor)
	assert.Equal(t, ReasonNewestObsolete, sel.Reason)
}

// TestWindowDates tests month to day conversion.
//
// It verifies:
//   - Day counts are rounded up
//   - The time of day of now is ignored
func TestWindowDates(t *testing.T) {
	drop, cooldown := Window{DropMonths: 24, CooldownMonths: 0.5}.Dates(now)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -731), drop)
	assert.Equal(t, time.Date(2025, 12, 16, 0, 0, 0, 0, time.UTC), cooldown)
}

// TestWindowClassify tests banding of series dates.
//
// It verifies:
//   - The drop date belongs to the cooldown band
//   - The cooldown date belongs to the supported band
func TestWindowClassify(t *testing.T) {
	w := Window{DropMonths: 24, CooldownMonths: 0.5}
	drop, cooldown := w.Dates(now)

	assert.Equal(t, BandDropped, w.Classify(drop.AddDate(0, 0, -1), now))
	assert.Equal(t, BandCooldown, w.Classify(drop, now))
	assert.Equal(t, BandCooldown, w.Classify(cooldown.AddDate(0, 0, -1), now))
	assert.Equal(t, BandSupported, w.Classify(cooldown, now))
}
