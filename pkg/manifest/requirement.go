package manifest

import (
	"fmt"
	"regexp"
	"strings"
)

// Requirement is one dependency string split into its PEP 508 parts.
//
// Fields:
//   - Raw: The string as written in the manifest
//   - Name: Project name
//   - Extras: Requested extras, in written order
//   - Specifier: Version specifier without parentheses, "" when unconstrained
//   - Marker: Environment marker after ";", without the separator
//   - URL: Direct reference after "@"; such requirements have no specifier
type Requirement struct {
	Raw       string
	Name      string
	Extras    []string
	Specifier string
	Marker    string
	URL       string
}

var (
	namePattern  = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?`)
	extraPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?$`)
)

// ParseRequirement splits a dependency string such as
// `rich[jupyter] >=13, <14; python_version >= "3.9"`.
//
// Returns:
//   - Requirement: The parsed parts
//   - error: When the name or extras are malformed or a bracket is unbalanced
func ParseRequirement(s string) (Requirement, error) {
	req := Requirement{Raw: s}
	rest := strings.TrimSpace(s)

	req.Name = namePattern.FindString(rest)
	if req.Name == "" {
		return Requirement{}, fmt.Errorf("invalid requirement %q: missing project name", s)
	}
	rest = strings.TrimSpace(rest[len(req.Name):])

	if strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return Requirement{}, fmt.Errorf("invalid requirement %q: unterminated extras", s)
		}
		for _, extra := range strings.Split(rest[1:end], ",") {
			extra = strings.TrimSpace(extra)
			if extra == "" {
				continue
			}
			if !extraPattern.MatchString(extra) {
				return Requirement{}, fmt.Errorf("invalid requirement %q: bad extra %q", s, extra)
			}
			req.Extras = append(req.Extras, extra)
		}
		rest = strings.TrimSpace(rest[end+1:])
	}

	if strings.HasPrefix(rest, "@") {
		rest = strings.TrimSpace(rest[1:])
		// a marker after a URL must be separated by whitespace
		url, marker, _ := strings.Cut(rest, " ;")
		if i := strings.IndexAny(url, " \t"); i >= 0 {
			marker = strings.TrimPrefix(strings.TrimSpace(url[i:]), ";")
			url = url[:i]
		}
		if url == "" {
			return Requirement{}, fmt.Errorf("invalid requirement %q: empty URL", s)
		}
		req.URL = url
		req.Marker = strings.TrimSpace(marker)
		return req, nil
	}

	spec, marker, _ := strings.Cut(rest, ";")
	req.Marker = strings.TrimSpace(marker)
	spec = strings.TrimSpace(spec)
	if strings.HasPrefix(spec, "(") {
		if !strings.HasSuffix(spec, ")") {
			return Requirement{}, fmt.Errorf("invalid requirement %q: unbalanced parentheses", s)
		}
		spec = strings.TrimSpace(spec[1 : len(spec)-1])
	}
	if spec != "" && !strings.ContainsAny(spec[:1], "<>=!~") {
		return Requirement{}, fmt.Errorf("invalid requirement %q: unexpected %q", s, spec)
	}
	req.Specifier = spec
	return req, nil
}

// IsURL reports whether the requirement is a direct reference.
func (r Requirement) IsURL() bool {
	return r.URL != ""
}

// WithSpecifier renders the requirement with spec in place of its specifier,
// keeping the name, extras and marker: "name[extras]spec; marker".
func (r Requirement) WithSpecifier(spec string) string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[")
		b.WriteString(strings.Join(r.Extras, ","))
		b.WriteString("]")
	}
	if r.IsURL() {
		b.WriteString(" @ ")
		b.WriteString(r.URL)
		if r.Marker != "" {
			b.WriteString(" ")
		}
	} else {
		b.WriteString(spec)
	}
	if r.Marker != "" {
		b.WriteString("; ")
		b.WriteString(r.Marker)
	}
	return b.String()
}
