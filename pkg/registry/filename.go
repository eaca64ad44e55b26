package registry

import (
	"regexp"
	"strings"
)

var nameSeparators = regexp.MustCompile(`[-_.]+`)

// NormalizeName returns the PEP 503 form of a project name: runs of "-",
// "_" and "." become a single "-", and the result is lowercased.
func NormalizeName(name string) string {
	return strings.ToLower(nameSeparators.ReplaceAllString(strings.TrimSpace(name), "-"))
}

// sdistExtensions are checked longest first so ".tar.gz" wins over ".gz".
var sdistExtensions = []string{".tar.gz", ".tar.bz2", ".tar.xz", ".tar.Z", ".tgz", ".tbz", ".zip", ".tar"}

// VersionFromFilename extracts the version string from a distribution
// filename.
//
// Wheels and eggs put the version in the second dash-separated field
// ("name-1.2.3-py3-none-any.whl"). Source distributions end in
// "name-1.2.3.tar.gz"; since the name may itself contain dashes, the
// version is taken after the last one.
//
// Returns:
//   - string: The version as written in the filename
//   - bool: false when the filename does not follow either layout
func VersionFromFilename(filename string) (string, bool) {
	switch {
	case strings.HasSuffix(filename, ".whl"), strings.HasSuffix(filename, ".egg"):
		parts := strings.Split(filename, "-")
		if len(parts) < 3 || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	for _, ext := range sdistExtensions {
		if !strings.HasSuffix(filename, ext) {
			continue
		}
		stem := strings.TrimSuffix(filename, ext)
		i := strings.LastIndex(stem, "-")
		if i <= 0 || i == len(stem)-1 {
			return "", false
		}
		return stem[i+1:], true
	}

	// installers and other legacy formats: name-version.something
	parts := strings.Split(filename, "-")
	if len(parts) < 2 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
