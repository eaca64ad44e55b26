// Package version models PEP 440 versions for floor selection.
//
// Parsing and ordering are delegated to deps.dev's semver library (PyPI
// system). On top of it this package exposes the pieces the floor selector
// needs: the epoch, the numeric release segments, a prerelease flag that also
// covers .dev releases, and the trailing ".0" stripping used when rendering a
// floor.
package version

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"deps.dev/util/semver"
)

// Version is a parsed, non-wildcard PEP 440 version.
//
// Fields:
//   - sv: The underlying deps.dev version, used for ordering
//   - canon: Canonical form, release padded to at least three segments
//   - epoch: Version epoch, 0 when absent
//   - release: Numeric release segments as printed in canon
//   - written: Number of release segments in the parsed input
//   - suffix: Everything after the release segments (pre, post, dev, local)
//   - prerelease: true for a, b, rc and dev releases
type Version struct {
	sv         *semver.Version
	canon      string
	epoch      int
	release    []int
	written    int
	suffix     string
	prerelease bool
}

// Parse parses a PEP 440 version string.
//
// It performs the following operations:
//   - Step 1: Parse with the PyPI system of deps.dev/util/semver
//   - Step 2: Reject wildcards, which are only meaningful inside specifiers
//   - Step 3: Split the canonical form into epoch, release segments and suffix
//
// Parameters:
//   - raw: Version string, surrounding whitespace is ignored
//
// Returns:
//   - *Version: The parsed version
//   - error: When raw is not a valid PEP 440 version
func Parse(raw string) (*Version, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("invalid version %q: empty", raw)
	}
	sv, err := semver.PyPI.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if sv.IsWildcard() {
		return nil, fmt.Errorf("invalid version %q: wildcard", raw)
	}

	canon := sv.Canon(false)
	epoch, _ := sv.Epoch()

	body := canon
	if i := strings.IndexByte(body, '!'); i >= 0 {
		body = body[i+1:]
	}
	end := strings.IndexFunc(body, func(r rune) bool { return r != '.' && (r < '0' || r > '9') })
	if end < 0 {
		end = len(body)
	}
	nums := strings.TrimRight(body[:end], ".")
	suffix := body[len(nums):]

	var release []int
	for _, part := range strings.Split(nums, ".") {
		n, convErr := strconv.Atoi(part)
		if convErr != nil {
			return nil, fmt.Errorf("invalid version %q: release segment %q", raw, part)
		}
		release = append(release, n)
	}

	// A local label may itself contain ".dev"; only the public part counts.
	public := suffix
	if i := strings.IndexByte(public, '+'); i >= 0 {
		public = public[:i]
	}

	return &Version{
		sv:         sv,
		canon:      canon,
		epoch:      epoch,
		release:    release,
		written:    min(max(writtenSegments(s), 1), len(release)),
		suffix:     suffix,
		prerelease: sv.IsPrerelease() || strings.Contains(public, ".dev"),
	}, nil
}

// writtenSegments counts the leading numeric release segments of s.
func writtenSegments(s string) int {
	if i := strings.IndexByte(s, '!'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "v"), "V")
	n := 0
	for _, part := range strings.Split(s, ".") {
		digits := len(part) - len(strings.TrimLeft(part, "0123456789"))
		if digits == 0 {
			break
		}
		n++
		if digits < len(part) {
			break
		}
	}
	return n
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(raw string) *Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// New builds the final release epoch!major.minor.micro.
//
// Parameters:
//   - epoch: Version epoch
//   - major, minor, micro: Release segments
//
// Returns:
//   - *Version: The synthesized version
//   - error: Only when the segments are negative
func New(epoch, major, minor, micro int) (*Version, error) {
	if epoch < 0 || major < 0 || minor < 0 || micro < 0 {
		return nil, fmt.Errorf("negative version component in %d!%d.%d.%d", epoch, major, minor, micro)
	}
	return Parse(fmt.Sprintf("%d!%d.%d.%d", epoch, major, minor, micro))
}

// Epoch returns the version epoch, 0 when the version has none.
func (v *Version) Epoch() int { return v.epoch }

// Release returns a copy of the numeric release segments.
func (v *Version) Release() []int { return slices.Clone(v.release) }

// Major returns the first release segment.
func (v *Version) Major() int { return v.segment(0) }

// Minor returns the second release segment, 0 when absent.
func (v *Version) Minor() int { return v.segment(1) }

// Micro returns the third release segment, 0 when absent.
func (v *Version) Micro() int { return v.segment(2) }

func (v *Version) segment(i int) int {
	if i < len(v.release) {
		return v.release[i]
	}
	return 0
}

// IsPrerelease reports whether the version is an alpha, beta, release
// candidate or development release.
func (v *Version) IsPrerelease() bool { return v.prerelease }

// Compare orders two versions by PEP 440 precedence.
//
// Returns:
//   - int: -1 when v < o, 0 when equal, 1 when v > o
func (v *Version) Compare(o *Version) int {
	return v.sv.Compare(o.sv)
}

// Less reports whether v sorts before o.
func (v *Version) Less(o *Version) bool { return v.Compare(o) < 0 }

// Equal reports whether v and o are the same version ("1.0" equals "1.0.0").
func (v *Version) Equal(o *Version) bool { return v.Compare(o) == 0 }

// Key returns a string identifying the version up to equality.
//
// Trailing zero release segments are dropped so that "1.0", "1.0.0" and
// "1.0.0.0" share a key, matching Equal.
func (v *Version) Key() string {
	n := len(v.release)
	for n > 1 && v.release[n-1] == 0 {
		n--
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = strconv.Itoa(v.release[i])
	}
	var b strings.Builder
	if v.epoch != 0 {
		fmt.Fprintf(&b, "%d!", v.epoch)
	}
	b.WriteString(strings.Join(parts, "."))
	b.WriteString(v.suffix)
	return b.String()
}

// String returns the canonical form, with the release padded to at least
// three segments ("1.26" renders as "1.26.0").
func (v *Version) String() string { return v.canon }

// Normalized returns the canonical form without padding: the release keeps
// the segments that were written, so "2.0rc1" stays "2.0rc1" where String
// gives "2.0.0rc1".
func (v *Version) Normalized() string {
	var b strings.Builder
	if v.epoch != 0 {
		fmt.Fprintf(&b, "%d!", v.epoch)
	}
	for i, n := range v.release[:v.written] {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(n))
	}
	b.WriteString(v.suffix)
	return b.String()
}

// Format returns the canonical form with trailing ".0" segments stripped.
func (v *Version) Format() string { return Format(v.canon) }

// Format strips up to three trailing ".0" suffixes from a version string.
//
// Examples:
//
//	Format("2.0")    // "2"
//	Format("1.26.0") // "1.26"
//	Format("1.0.0")  // "1"
//	Format("1.10")   // "1.10"
//
// Parameters:
//   - s: Version string, surrounding whitespace is ignored
//
// Returns:
//   - string: The stripped version string
func Format(s string) string {
	v := strings.TrimSpace(s)
	for i := 0; i < 3 && strings.HasSuffix(v, ".0"); i++ {
		v = strings.TrimSuffix(v, ".0")
	}
	return v
}

// Sort sorts versions in ascending precedence order.
func Sort(vs []*Version) {
	slices.SortStableFunc(vs, func(a, b *Version) int { return a.Compare(b) })
}
