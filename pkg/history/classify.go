// Package history turns raw registry artifacts into a package release history.
//
// Classify filters the artifacts down to final releases with a first-seen
// date. Package groups those releases into minor series, the unit the floor
// selector works on.
package history

import (
	"time"

	"github.com/ajxudir/depfloor/pkg/verbose"
	"github.com/ajxudir/depfloor/pkg/version"
)

// Upload timestamp layouts accepted from the registry. Anything else is
// skipped.
var uploadTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04:05Z",
}

// Artifact is one distribution file as reported by the registry.
//
// Fields:
//   - Filename: Distribution file name, informational
//   - Version: Raw version string the file was published under
//   - UploadTime: Raw ISO-8601 upload timestamp
//   - Yanked: Whether the registry marked the file as yanked
type Artifact struct {
	Filename   string
	Version    string
	UploadTime string
	Yanked     bool
}

// Release is a final release with the upload dates of all its artifacts.
//
// Fields:
//   - Version: The parsed version
//   - Uploads: Upload dates (UTC midnight) of every artifact, in input order
type Release struct {
	Version *version.Version
	Uploads []time.Time
}

// Date returns the first-seen date of the release, the earliest of its uploads.
func (r Release) Date() time.Time {
	var first time.Time
	for i, d := range r.Uploads {
		if i == 0 || d.Before(first) {
			first = d
		}
	}
	return first
}

// Classify parses artifacts into final releases.
//
// It performs the following operations:
//   - Step 1: Parse each artifact's version; invalid versions are dropped
//   - Step 2: Drop prereleases (alpha, beta, rc, dev)
//   - Step 3: Parse the upload timestamp; unknown formats are dropped
//   - Step 4: Group artifacts by version equality ("1.0" and "1.0.0" merge)
//
// Nothing here is fatal: every dropped artifact is traced through the
// verbose logger and skipped.
//
// Parameters:
//   - name: Package name, used for tracing only
//   - artifacts: Artifacts as reported by the registry
//
// Returns:
//   - []Release: Releases sorted by ascending version
func Classify(name string, artifacts []Artifact) []Release {
	byKey := make(map[string]*Release)
	var order []string

	for _, a := range artifacts {
		v, err := version.Parse(a.Version)
		if err != nil {
			verbose.ReleaseDropped(name, a.Version, "invalid version: "+err.Error())
			continue
		}
		if v.IsPrerelease() {
			verbose.ReleaseDropped(name, a.Version, "prerelease")
			continue
		}
		uploaded, ok := parseUploadTime(a.UploadTime)
		if !ok {
			verbose.ReleaseDropped(name, a.Version, "invalid upload time "+a.UploadTime)
			continue
		}

		key := v.Key()
		rel, seen := byKey[key]
		if !seen {
			rel = &Release{Version: v}
			byKey[key] = rel
			order = append(order, key)
		}
		rel.Uploads = append(rel.Uploads, uploaded)
	}

	releases := make([]Release, 0, len(order))
	for _, key := range order {
		releases = append(releases, *byKey[key])
	}
	sortReleases(releases)
	return releases
}

// parseUploadTime parses a registry timestamp and truncates it to a UTC date.
func parseUploadTime(raw string) (time.Time, bool) {
	for _, layout := range uploadTimeLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return Day(t), true
		}
	}
	return time.Time{}, false
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
