package history

import (
	"slices"
	"sync"
	"time"

	"github.com/ajxudir/depfloor/pkg/version"
)

// Series is the representative release of one (epoch, major, minor) group.
//
// Fields:
//   - Version: epoch!major.minor.min(micro) of the group
//   - Date: First-seen date of that exact version
type Series struct {
	Version *version.Version
	Date    time.Time
}

// Package is the release history of one package.
//
// The release list is built at construction. The minor series are derived on
// first use and cached for the lifetime of the Package.
//
// Fields:
//   - Name: Package name
//   - releases: Final releases, ascending
//   - dates: First-seen date per version key
//   - seriesOnce: Guards the one-time minor series computation
//   - series: Cached minor series, ascending
type Package struct {
	Name string

	releases []Release
	dates    map[string]time.Time

	seriesOnce sync.Once
	series     []Series
}

// NewPackage classifies artifacts and builds the release history.
//
// Parameters:
//   - name: Package name
//   - artifacts: Artifacts as reported by the registry
//
// Returns:
//   - *Package: The release history
func NewPackage(name string, artifacts []Artifact) *Package {
	return FromReleases(name, Classify(name, artifacts))
}

// FromReleases builds a release history from already classified releases.
//
// Releases that compare equal are merged. The input slice is not retained.
//
// Parameters:
//   - name: Package name
//   - releases: Final releases in any order
//
// Returns:
//   - *Package: The release history
func FromReleases(name string, releases []Release) *Package {
	p := &Package{
		Name:  name,
		dates: make(map[string]time.Time, len(releases)),
	}

	index := make(map[string]int, len(releases))
	for _, r := range releases {
		if len(r.Uploads) == 0 {
			continue
		}
		key := r.Version.Key()
		if i, ok := index[key]; ok {
			p.releases[i].Uploads = append(p.releases[i].Uploads, r.Uploads...)
		} else {
			index[key] = len(p.releases)
			p.releases = append(p.releases, Release{Version: r.Version, Uploads: slices.Clone(r.Uploads)})
		}
	}
	sortReleases(p.releases)

	for _, r := range p.releases {
		p.dates[r.Version.Key()] = r.Date()
	}
	return p
}

// Releases returns all final releases in ascending order.
//
// Returns:
//   - []*version.Version: A fresh slice, safe to modify
func (p *Package) Releases() []*version.Version {
	out := make([]*version.Version, len(p.releases))
	for i, r := range p.releases {
		out[i] = r.Version
	}
	return out
}

// ReleaseDate returns the first-seen date of a version.
//
// Parameters:
//   - v: The version to look up; "1.0" and "1.0.0" are the same release
//
// Returns:
//   - time.Time: The first-seen date (UTC midnight)
//   - bool: false when the version is not a known release
func (p *Package) ReleaseDate(v *version.Version) (time.Time, bool) {
	d, ok := p.dates[v.Key()]
	return d, ok
}

// Oldest returns the lowest release overall.
//
// Returns:
//   - *version.Version: The oldest release
//   - bool: false when the package has no releases
func (p *Package) Oldest() (*version.Version, bool) {
	if len(p.releases) == 0 {
		return nil, false
	}
	return p.releases[0].Version, true
}

// MinorSeries returns one entry per (epoch, major, minor) group, ascending.
//
// The representative of a group is the release with the smallest micro
// number, whatever order the group's releases were uploaded in. Its date is
// the first-seen date of exactly that version. A group whose smallest micro
// only exists as a longer release (1.2.0.1 without 1.2.0) or a post release
// is dated by the earliest release sharing that micro.
//
// Returns:
//   - []Series: Cached series, computed on first call
func (p *Package) MinorSeries() []Series {
	p.seriesOnce.Do(func() {
		p.series = p.buildSeries()
	})
	return p.series
}

type seriesKey struct {
	epoch, major, minor int
}

func (p *Package) buildSeries() []Series {
	type group struct {
		minMicro int
		date     time.Time
	}

	groups := make(map[seriesKey]*group)
	var keys []seriesKey
	for _, r := range p.releases {
		v := r.Version
		k := seriesKey{v.Epoch(), v.Major(), v.Minor()}
		g, ok := groups[k]
		if !ok {
			groups[k] = &group{minMicro: v.Micro(), date: r.Date()}
			keys = append(keys, k)
			continue
		}
		switch {
		case v.Micro() < g.minMicro:
			g.minMicro, g.date = v.Micro(), r.Date()
		case v.Micro() == g.minMicro && r.Date().Before(g.date):
			g.date = r.Date()
		}
	}

	series := make([]Series, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		rep, err := version.New(k.epoch, k.major, k.minor, g.minMicro)
		if err != nil {
			continue
		}
		date, ok := p.dates[rep.Key()]
		if !ok {
			date = g.date
		}
		series = append(series, Series{Version: rep, Date: date})
	}

	slices.SortStableFunc(series, func(a, b Series) int { return a.Version.Compare(b.Version) })
	return series
}

func sortReleases(rs []Release) {
	slices.SortStableFunc(rs, func(a, b Release) int { return a.Version.Compare(b.Version) })
}
