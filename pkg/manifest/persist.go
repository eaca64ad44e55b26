package manifest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ajxudir/depfloor/pkg/cmdexec"
	"github.com/ajxudir/depfloor/pkg/verbose"
	"github.com/ajxudir/depfloor/pkg/warnings"
)

// Persister writes a full, updated dependency list back to a project.
type Persister interface {
	// Persist replaces the dependencies of project with requirements, which
	// must be in the same order as project.Dependencies.
	Persist(ctx context.Context, project *Project, requirements []string) error
}

// CommandPersister hands the new requirements to a package manager command,
// by default "uv add --no-sync {{requirements}}".
//
// Fields:
//   - Command: Command template; {{requirements}} expands to one
//     shell-escaped argument per requirement, {{manifest}} to the manifest path
//   - Env: Extra environment for the command
//   - Timeout: Limit for each command group, 0 for none
type CommandPersister struct {
	Command string
	Env     map[string]string
	Timeout time.Duration
}

// Persist runs the command in the manifest's directory.
func (p *CommandPersister) Persist(ctx context.Context, project *Project, requirements []string) error {
	if len(requirements) == 0 {
		return nil
	}
	_, err := cmdexec.Execute(ctx, cmdexec.Request{
		Commands: p.Command,
		Env:      p.Env,
		Dir:      project.Dir(),
		Timeout:  p.Timeout,
		Replacements: map[string][]string{
			"requirements": requirements,
			"manifest":     {project.Path},
		},
	})
	if err != nil {
		return fmt.Errorf("persisting requirements: %w", err)
	}
	return nil
}

// InPlacePersister rewrites the quoted strings of [project].dependencies
// directly in the manifest. Everything outside those strings, including
// comments and layout, is left byte-identical.
type InPlacePersister struct{}

// Persist rewrites the manifest atomically and restores the original if
// the result does not read back as requirements.
//
// It performs the following operations:
//   - Step 1: Locate each dependency string literal of [project].dependencies
//   - Step 2: Replace the literals whose value changed
//   - Step 3: Write to a temp file and rename over the manifest
//   - Step 4: Reload and compare; restore the original on mismatch
func (InPlacePersister) Persist(ctx context.Context, project *Project, requirements []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(requirements) != len(project.Dependencies) {
		return fmt.Errorf("have %d requirements for %d dependencies in %s", len(requirements), len(project.Dependencies), project.Path)
	}

	original, err := os.ReadFile(project.Path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", project.Path, err)
	}

	updated, err := rewriteDependencies(original, requirements)
	if err != nil {
		return fmt.Errorf("%s: %w", project.Path, err)
	}
	if string(updated) == string(original) {
		verbose.Printf("%s: no changes to write", project.Path)
		return nil
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(project.Path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := writeFileAtomic(project.Path, updated, mode); err != nil {
		return err
	}

	reloaded, err := parse(project.Path, updated)
	if err == nil && !slices.Equal(reloaded.Dependencies, requirements) {
		err = fmt.Errorf("rewritten dependencies do not match the requested ones")
	}
	if err != nil {
		if restoreErr := os.WriteFile(project.Path, original, mode); restoreErr != nil {
			warnings.Warnf("failed to restore %s: %v", project.Path, restoreErr)
		}
		return fmt.Errorf("%s: %w", project.Path, err)
	}
	verbose.Printf("%s: rewrote %d dependencies in place", project.Path, len(requirements))
	return nil
}

// literal is the byte range of one string in the dependencies array,
// including its quotes.
type literal struct {
	start, end int
	quote      byte
	value      string
}

// rewriteDependencies replaces the dependency literals of content whose
// value differs from requirements.
func rewriteDependencies(content []byte, requirements []string) ([]byte, error) {
	lits, err := findDependencyLiterals(string(content))
	if err != nil {
		return nil, err
	}
	if len(lits) != len(requirements) {
		return nil, fmt.Errorf("found %d dependency strings, expected %d", len(lits), len(requirements))
	}

	out := string(content)
	for i := len(lits) - 1; i >= 0; i-- {
		lit := lits[i]
		if lit.value == requirements[i] {
			continue
		}
		out = out[:lit.start] + quote(requirements[i], lit.quote) + out[lit.end:]
	}
	return []byte(out), nil
}

// quote renders s as a TOML string, preferring the original quote style.
func quote(s string, style byte) string {
	if style == '\'' && !strings.ContainsAny(s, "'\n") {
		return "'" + s + "'"
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}

// findDependencyLiterals scans the [project] table for "dependencies = [",
// then collects the single-line string literals of that array.
func findDependencyLiterals(text string) ([]literal, error) {
	start, err := dependenciesArrayStart(text)
	if err != nil {
		return nil, err
	}

	var lits []literal
	for i := start; i < len(text); {
		c := text[i]
		switch {
		case c == ']':
			return lits, nil
		case c == '#':
			for i < len(text) && text[i] != '\n' {
				i++
			}
		case c == '"' || c == '\'':
			if strings.HasPrefix(text[i:], `"""`) || strings.HasPrefix(text[i:], "'''") {
				return nil, fmt.Errorf("multi-line strings in dependencies are not supported")
			}
			lit, err := scanString(text, i)
			if err != nil {
				return nil, err
			}
			lits = append(lits, lit)
			i = lit.end
		default:
			i++
		}
	}
	return nil, fmt.Errorf("unterminated dependencies array")
}

// dependenciesArrayStart returns the offset just after the "[" opening
// [project].dependencies.
func dependenciesArrayStart(text string) (int, error) {
	inProject := false
	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		trimmed := strings.TrimSpace(line)
		lineStart := offset
		offset += len(line)

		if strings.HasPrefix(trimmed, "[") {
			header := strings.TrimSpace(strings.SplitN(trimmed, "#", 2)[0])
			inProject = header == "[project]"
			continue
		}
		if !inProject {
			continue
		}
		key, value, ok := strings.Cut(trimmed, "=")
		if !ok || strings.TrimSpace(key) != "dependencies" {
			continue
		}
		value = strings.TrimLeft(value, " \t")
		if !strings.HasPrefix(value, "[") {
			return 0, fmt.Errorf("[project].dependencies is not an inline array")
		}
		return lineStart + strings.Index(line, value) + 1, nil
	}
	return 0, fmt.Errorf("[project].dependencies not found")
}

// scanString reads the TOML basic or literal string starting at text[i].
func scanString(text string, i int) (literal, error) {
	q := text[i]
	var b strings.Builder
	for j := i + 1; j < len(text); j++ {
		c := text[j]
		switch {
		case c == '\n':
			return literal{}, fmt.Errorf("newline in string at offset %d", i)
		case c == q:
			return literal{start: i, end: j + 1, quote: q, value: b.String()}, nil
		case c == '\\' && q == '"' && j+1 < len(text):
			j++
			switch text[j] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(text[j])
			}
		default:
			b.WriteByte(c)
		}
	}
	return literal{}, fmt.Errorf("unterminated string at offset %d", i)
}

// writeFileAtomic writes through a temp file in the same directory and a
// rename, so an interrupted write never leaves a truncated manifest.
func writeFileAtomic(path string, content []byte, mode os.FileMode) error {
	if info, err := os.Stat(path); err == nil && info.Mode().Perm()&0o200 == 0 {
		return fmt.Errorf("file is read-only: %s", path)
	}

	suffix := make([]byte, 8)
	tmpName := filepath.Base(path) + ".tmp"
	if _, err := rand.Read(suffix); err == nil {
		tmpName = filepath.Base(path) + "." + hex.EncodeToString(suffix) + ".tmp"
	}
	tmp := filepath.Join(filepath.Dir(path), tmpName)

	if err := os.WriteFile(tmp, content, mode); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			warnings.Warnf("failed to clean up temp file %s: %v", tmp, removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
