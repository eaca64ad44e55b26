package cmd

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withVersion(t *testing.T, version, buildOS, buildArch string) {
	t.Helper()
	oldVersion, oldOS, oldArch := Version, BuildOS, BuildArch
	Version, BuildOS, BuildArch = version, buildOS, buildArch
	t.Cleanup(func() { Version, BuildOS, BuildArch = oldVersion, oldOS, oldArch })
}

// TestBuildKinds tests how version strings are classified.
func TestBuildKinds(t *testing.T) {
	tests := []struct {
		version    string
		dev        bool
		prerelease bool
	}{
		{version: "dev", dev: true},
		{version: "", dev: true},
		{version: "v1.2.3"},
		{version: "1.2.3"},
		{version: "v1.3.0-rc.1", prerelease: true},
		{version: "2.0.0-beta", prerelease: true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			withVersion(t, tt.version, "", "")
			assert.Equal(t, tt.dev, IsDevBuild())
			assert.Equal(t, tt.prerelease, IsPrerelease())
			assert.Equal(t, tt.version, GetVersion())
		})
	}
}

// TestBuildWarnings tests the warnings shown before every command.
//
// It verifies:
//   - Dev builds and prereleases are flagged
//   - Releases built for this platform produce no warning
//   - A foreign build target is flagged
func TestBuildWarnings(t *testing.T) {
	withVersion(t, "dev", "", "")
	assert.Contains(t, GetBuildWarnings(), "Development build")

	withVersion(t, "v1.3.0-rc.1", runtime.GOOS, runtime.GOARCH)
	assert.Contains(t, GetBuildWarnings(), "Prerelease build: v1.3.0-rc.1")

	withVersion(t, "v1.3.0", runtime.GOOS, runtime.GOARCH)
	assert.Empty(t, GetBuildWarnings())
	assert.False(t, HasArchMismatch())

	withVersion(t, "v1.3.0", "plan9", "mips")
	assert.True(t, HasArchMismatch())
	assert.Contains(t, GetArchMismatchWarning(), "plan9/mips")
}

// TestVersionCommand tests the version subcommand output.
func TestVersionCommand(t *testing.T) {
	newTestProject(t, "inplace")
	withVersion(t, "v1.3.0", "", "")

	stdout, _, err := runCommand(t, "version")
	assert.NoError(t, err)
	assert.Contains(t, stdout, "Version: v1.3.0")
	assert.Contains(t, stdout, "Go:      "+runtime.Version())
	assert.Contains(t, stdout, "Build:   "+runtime.GOOS+"/"+runtime.GOARCH)
}
