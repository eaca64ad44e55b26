package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WritePyProject writes a pyproject.toml declaring deps into dir.
//
// Parameters:
//   - t: Testing instance; the test fails if the file cannot be written
//   - dir: Target directory, typically t.TempDir()
//   - deps: Requirement strings in declared order
//
// Returns:
//   - string: Path of the written manifest
func WritePyProject(t *testing.T, dir string, deps ...string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("[project]\nname = \"demo\"\nversion = \"0.1.0\"\ndependencies = [\n")
	for _, dep := range deps {
		fmt.Fprintf(&b, "    %q,\n", dep)
	}
	b.WriteString("]\n")

	path := filepath.Join(dir, "pyproject.toml")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteFile writes content to name inside dir and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
