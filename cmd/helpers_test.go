package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/ajxudir/depfloor/pkg/preflight"
	"github.com/ajxudir/depfloor/pkg/testutil"
	"github.com/ajxudir/depfloor/pkg/verbose"
)

// testNow is the fixed clock of command tests. With the default 24/12 window
// the drop date is 2024-01-01 and the cooldown date 2024-12-31.
var testNow = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

// testDeps is the manifest written by newTestProject.
var testDeps = []string{
	"numpy>=1.0",
	"requests>=2.30",
	"pip @ https://example.com/pip-24.0-py3-none-any.whl",
}

// testProject is a project directory with a manifest, a config pointing at
// a fake index, and the command globals redirected to it.
type testProject struct {
	dir      string
	manifest string
	index    *testutil.FakeIndex
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.Add(10 * time.Hour)
}

// newTestProject sets up a project whose index knows:
//   - numpy: 1.0 (2020), 1.2 (2024-06), 1.5 (2025-06); floor 1.2 (cooldown-band)
//   - requests: 2.0 (2019), 2.28 (2023-06), 2.32 (2025-12); floor 2.28 (newest-obsolete)
func newTestProject(t *testing.T, persistMode string) *testProject {
	t.Helper()

	idx := testutil.NewFakeIndex(t).
		AddRelease("numpy", "1.0.0", day("2020-01-01")).
		AddRelease("numpy", "1.2.0", day("2024-06-01")).
		AddRelease("numpy", "1.5.0", day("2025-06-01")).
		AddRelease("requests", "2.0.0", day("2019-01-01")).
		AddRelease("requests", "2.28.0", day("2023-06-01")).
		AddRelease("requests", "2.32.0", day("2025-12-01"))

	dir := t.TempDir()
	p := &testProject{
		dir:      dir,
		manifest: testutil.WritePyProject(t, dir, testDeps...),
		index:    idx,
	}
	p.writeConfig(t, fmt.Sprintf("registry:\n  base_url: %s\npersist:\n  mode: %s\n", idx.URL(), persistMode))

	oldNow, oldGetwd, oldNoColor := nowFunc, getwdFunc, color.NoColor
	oldPreflight := validatePersistCommandFunc
	nowFunc = func() time.Time { return testNow }
	getwdFunc = func() (string, error) { return dir, nil }
	color.NoColor = true
	validatePersistCommandFunc = func(string) *preflight.ValidateResult { return &preflight.ValidateResult{} }
	t.Cleanup(func() {
		nowFunc, getwdFunc, color.NoColor = oldNow, oldGetwd, oldNoColor
		validatePersistCommandFunc = oldPreflight
		verbose.Disable()
		rootCmd.SetArgs(nil)
	})
	return p
}

// writeConfig replaces the project's .depfloor.yml.
func (p *testProject) writeConfig(t *testing.T, content string) {
	t.Helper()
	testutil.WriteFile(t, p.dir, ".depfloor.yml", content)
}

// readManifest returns the current manifest content.
func (p *testProject) readManifest(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(p.dir, "pyproject.toml"))
	require.NoError(t, err)
	return string(data)
}

// resetCommandFlags restores every flag of every command to its default, so
// values and Changed state do not leak between tests.
func resetCommandFlags() {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
}

// runCommand executes the CLI with args and returns what it printed.
func runCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetCommandFlags()
	rootCmd.SetArgs(append([]string{"--skip-build-checks"}, args...))
	stdout, stderr = testutil.CaptureOutput(t, func() {
		err = ExecuteTest()
	})
	return stdout, stderr, err
}
