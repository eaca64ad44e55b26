// Package manifest reads the dependency list of a pyproject.toml and writes
// updated requirements back.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFile is the manifest looked up when none is given.
const DefaultFile = "pyproject.toml"

// Project is the [project] table of a pyproject.toml.
//
// Fields:
//   - Path: Absolute path of the manifest
//   - Name: [project].name
//   - Dependencies: [project].dependencies in declared order
type Project struct {
	Path         string
	Name         string
	Dependencies []string
}

// Dir returns the directory containing the manifest.
func (p *Project) Dir() string {
	return filepath.Dir(p.Path)
}

type pyproject struct {
	Project *struct {
		Name         string   `toml:"name"`
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
}

// Load reads a pyproject.toml.
//
// Parameters:
//   - path: Manifest path; empty means DefaultFile in the working directory
//
// Returns:
//   - *Project: Name and dependencies in declared order
//   - error: When the file cannot be read, is not valid TOML, or has no [project] table
func Load(path string) (*Project, error) {
	if path == "" {
		path = DefaultFile
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parse(abs, data)
}

func parse(path string, data []byte) (*Project, error) {
	var doc pyproject
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if doc.Project == nil {
		return nil, fmt.Errorf("%s has no [project] table", path)
	}
	return &Project{
		Path:         path,
		Name:         doc.Project.Name,
		Dependencies: doc.Project.Dependencies,
	}, nil
}
