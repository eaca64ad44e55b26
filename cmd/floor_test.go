package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajxudir/depfloor/pkg/errors"
)

// TestFloorTable tests the floor query table.
//
// It verifies:
//   - Each rule is reported with its floor and date
//   - --series lists every minor series with its band
//   - The manifest is not read or changed
func TestFloorTable(t *testing.T) {
	p := newTestProject(t, "inplace")
	before := p.readManifest(t)

	stdout, _, err := runCommand(t, "floor", "numpy", "requests", "--series")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Window: drop 24 months (2024-01-01), cooldown 12 months (2024-12-31)")
	assert.Regexp(t, `numpy\s+1\.2\s+2024-06-01\s+cooldown-band`, stdout)
	assert.Regexp(t, `requests\s+2\.28\s+2023-06-01\s+newest-obsolete`, stdout)
	assert.NotContains(t, stdout, "ERROR")
	assert.Contains(t, stdout, "SERIES")
	assert.Regexp(t, `(?m)^1\s+2020-01-01\s+dropped`, stdout)
	assert.Regexp(t, `(?m)^1\.5\s+2025-06-01\s+supported`, stdout)
	assert.Equal(t, before, p.readManifest(t))
}

// TestFloorLegacyAPI tests that the configured index API reaches the client.
func TestFloorLegacyAPI(t *testing.T) {
	p := newTestProject(t, "inplace")
	p.writeConfig(t, "registry:\n  base_url: "+p.index.URL()+"\n  api: json\n")

	stdout, _, err := runCommand(t, "floor", "numpy")
	require.NoError(t, err)
	assert.Regexp(t, `numpy\s+1\.2\s+2024-06-01\s+cooldown-band`, stdout)
	assert.Equal(t, 1, p.index.Requests())
}

// TestFloorJSON tests the floor query JSON document.
func TestFloorJSON(t *testing.T) {
	newTestProject(t, "inplace")

	stdout, _, err := runCommand(t, "floor", "NumPy>=1.0", "--output", "json", "--cooldown-months", "0")
	require.NoError(t, err)

	var doc struct {
		Window struct {
			CooldownMonths float64 `json:"cooldown_months"`
		} `json:"window"`
		Packages []struct {
			Name   string `json:"name"`
			PURL   string `json:"purl"`
			Floor  string `json:"floor"`
			Reason string `json:"reason"`
			Series []struct {
				Version string `json:"version"`
				Band    string `json:"band"`
			} `json:"series"`
		} `json:"packages"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))

	assert.Equal(t, 0.0, doc.Window.CooldownMonths)
	require.Len(t, doc.Packages, 1)
	pkg := doc.Packages[0]
	assert.Equal(t, "NumPy", pkg.Name)
	assert.Equal(t, "pkg:pypi/numpy", pkg.PURL)
	assert.Equal(t, "1.2", pkg.Floor)
	require.Len(t, pkg.Series, 3)
	assert.Equal(t, "dropped", pkg.Series[0].Band)
	assert.Equal(t, "cooldown", pkg.Series[1].Band)
	assert.Equal(t, "cooldown", pkg.Series[2].Band)
}

// TestFloorFailures tests exit codes when packages cannot be resolved.
//
// It verifies:
//   - Some failures give a partial success (exit 1) with an ERROR column
//   - Only failures give the first error (exit 2)
func TestFloorFailures(t *testing.T) {
	newTestProject(t, "inplace")

	stdout, _, err := runCommand(t, "floor", "numpy", "no-such-package")
	require.Error(t, err)
	assert.Equal(t, errors.ExitPartialFailure, errors.GetExitCode(err))
	assert.Contains(t, stdout, "ERROR")
	assert.Contains(t, stdout, "no-such-package")

	_, _, err = runCommand(t, "floor", "no-such-package")
	require.Error(t, err)
	depErr, ok := errors.IsDependencyError(err)
	require.True(t, ok)
	assert.Equal(t, "no-such-package", depErr.Name)
	assert.Equal(t, errors.ExitFailure, errors.GetExitCode(err))
}

// TestFloorRequiresPackage tests that at least one package is required.
func TestFloorRequiresPackage(t *testing.T) {
	p := newTestProject(t, "inplace")

	_, _, err := runCommand(t, "floor")
	require.Error(t, err)
	assert.Equal(t, 0, p.index.Requests())
}
