package history

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajxudir/depfloor/pkg/verbose"
	"github.com/ajxudir/depfloor/pkg/version"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func artifact(ver, uploaded string) Artifact {
	return Artifact{Filename: "pkg-" + ver + ".tar.gz", Version: ver, UploadTime: uploaded}
}

func formatted(vs []*version.Version) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Format()
	}
	return out
}

// TestClassify tests filtering and dating of artifacts.
//
// It verifies:
//   - Invalid versions, prereleases and unknown timestamps are dropped
//   - Both accepted timestamp layouts parse
//   - A release's date is the earliest upload across its artifacts
//   - Equal versions written differently merge into one release
//   - Output is sorted by version
func TestClassify(t *testing.T) {
	buf := &bytes.Buffer{}
	verbose.SetWriter(buf)
	verbose.Enable()
	defer verbose.Disable()

	releases := Classify("demo", []Artifact{
		artifact("2.0", "2023-05-02T10:00:00Z"),
		artifact("2.0.0", "2023-05-01T23:59:59.123456Z"),
		artifact("1.5", "2022-01-10T08:00:00.5Z"),
		artifact("2.1rc1", "2023-06-01T00:00:00Z"),
		artifact("2.1.dev0", "2023-06-01T00:00:00Z"),
		artifact("garbage", "2023-06-01T00:00:00Z"),
		artifact("1.6", "2022-03-01T00:00:00+00:00"),
		artifact("1.7", ""),
	})

	require.Len(t, releases, 2)
	assert.Equal(t, "1.5", releases[0].Version.Format())
	assert.Equal(t, day(2022, 1, 10), releases[0].Date())
	assert.Equal(t, "2", releases[1].Version.Format())
	assert.Len(t, releases[1].Uploads, 2)
	assert.Equal(t, day(2023, 5, 1), releases[1].Date())

	out := buf.String()
	assert.Contains(t, out, `"2.1rc1": prerelease`)
	assert.Contains(t, out, `"2.1.dev0": prerelease`)
	assert.Contains(t, out, `"garbage": invalid version`)
	assert.Contains(t, out, `"1.6": invalid upload time`)
}

// TestClassifyEmpty tests classification of no usable artifacts.
func TestClassifyEmpty(t *testing.T) {
	assert.Empty(t, Classify("demo", nil))
	assert.Empty(t, Classify("demo", []Artifact{artifact("1.0a1", "2020-01-01T00:00:00Z")}))
}

// TestPackageReleases tests the release list and dates.
//
// It verifies:
//   - Releases are sorted ascending, epochs last
//   - ReleaseDate accepts equivalent spellings
//   - Oldest returns the lowest release
func TestPackageReleases(t *testing.T) {
	p := NewPackage("demo", []Artifact{
		artifact("1.10.0", "2021-01-01T00:00:00Z"),
		artifact("1!0.1", "2024-01-01T00:00:00Z"),
		artifact("1.2.0", "2019-01-01T00:00:00Z"),
		artifact("1.9", "2020-06-01T00:00:00Z"),
	})

	assert.Equal(t, []string{"1.2", "1.9", "1.10", "1!0.1"}, formatted(p.Releases()))

	d, ok := p.ReleaseDate(version.MustParse("1.2"))
	require.True(t, ok)
	assert.Equal(t, day(2019, 1, 1), d)

	_, ok = p.ReleaseDate(version.MustParse("3.0"))
	assert.False(t, ok)

	oldest, ok := p.Oldest()
	require.True(t, ok)
	assert.Equal(t, "1.2", oldest.Format())

	_, ok = NewPackage("empty", nil).Oldest()
	assert.False(t, ok)
}

// TestMinorSeries tests grouping into minor series.
//
// It verifies:
//   - One series per (epoch, major, minor)
//   - The representative is the smallest micro, not the first upload
//   - The series date is the date of the representative itself
//   - Epochs form separate groups
func TestMinorSeries(t *testing.T) {
	p := NewPackage("demo", []Artifact{
		artifact("1.2.1", "2020-01-01T00:00:00Z"),
		artifact("1.2.0", "2020-03-01T00:00:00Z"),
		artifact("1.2.5", "2019-06-01T00:00:00Z"),
		artifact("1.3.2", "2020-09-01T00:00:00Z"),
		artifact("1.3.4", "2020-10-01T00:00:00Z"),
		artifact("2.0", "2021-01-01T00:00:00Z"),
		artifact("1!1.2.0", "2022-01-01T00:00:00Z"),
	})

	series := p.MinorSeries()
	require.Len(t, series, 4)

	assert.Equal(t, "1.2", series[0].Version.Format())
	assert.Equal(t, day(2020, 3, 1), series[0].Date)

	assert.Equal(t, "1.3.2", series[1].Version.Format())
	assert.Equal(t, day(2020, 9, 1), series[1].Date)

	assert.Equal(t, "2", series[2].Version.Format())
	assert.Equal(t, "1!1.2", series[3].Version.Format())
	assert.Equal(t, 1, series[3].Version.Epoch())
}

// TestMinorSeriesFallbackDate tests dating a series whose representative was
// only published with extra segments.
//
// It verifies:
//   - 1.4.0.1 alone dates the 1.4 series
func TestMinorSeriesFallbackDate(t *testing.T) {
	p := NewPackage("demo", []Artifact{
		artifact("1.4.0.1", "2020-05-05T00:00:00Z"),
		artifact("1.4.0.2", "2020-04-04T00:00:00Z"),
		artifact("1.4.1", "2020-01-01T00:00:00Z"),
	})

	series := p.MinorSeries()
	require.Len(t, series, 1)
	assert.Equal(t, "1.4", series[0].Version.Format())
	assert.Equal(t, day(2020, 4, 4), series[0].Date)
}

// TestMinorSeriesCached tests that derived data is computed once.
//
// It verifies:
//   - Repeated calls return the same backing array
func TestMinorSeriesCached(t *testing.T) {
	p := NewPackage("demo", []Artifact{artifact("1.0", "2020-01-01T00:00:00Z")})

	first := p.MinorSeries()
	second := p.MinorSeries()
	require.Len(t, first, 1)
	assert.Same(t, &first[0], &second[0])
}

// TestFromReleasesMerges tests that FromReleases merges equal versions.
func TestFromReleasesMerges(t *testing.T) {
	p := FromReleases("demo", []Release{
		{Version: version.MustParse("1.0"), Uploads: []time.Time{day(2020, 2, 1)}},
		{Version: version.MustParse("1.0.0"), Uploads: []time.Time{day(2020, 1, 1)}},
		{Version: version.MustParse("1.1"), Uploads: nil},
	})

	assert.Equal(t, []string{"1"}, formatted(p.Releases()))
	d, ok := p.ReleaseDate(version.MustParse("1"))
	require.True(t, ok)
	assert.Equal(t, day(2020, 1, 1), d)
}

// TestDay tests truncation to a UTC calendar day.
func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	assert.Equal(t, day(2020, 1, 1), Day(time.Date(2020, 1, 2, 5, 0, 0, 0, loc)))
}
