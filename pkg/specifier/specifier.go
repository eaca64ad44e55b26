// Package specifier merges a computed lower bound into an existing PEP 440
// version specifier.
//
// Whether two specifiers overlap at all is decided with deps.dev's PEP 440
// set algebra. The merged result is rendered from a bound model built
// from the clauses themselves: one lower bound, one upper bound and a list of
// exclusions. An exclusion that falls strictly inside the range would need an
// "or" of two ranges to express, which a requirement string cannot hold; in
// that case the existing specifier is kept.
package specifier

import (
	"fmt"
	"strconv"
	"strings"

	"deps.dev/util/semver"

	"github.com/ajxudir/depfloor/pkg/version"
)

// Result is the outcome of Combine.
//
// Fields:
//   - Specifier: The specifier to write back
//   - Changed: Specifier allows a different set of versions than the existing one;
//     a respelling of the same range (== 1.2.3, ~=1.4) is not a change
//   - Fallback: The existing specifier was kept because the merge was impossible
//   - Warning: Human-readable reason for a fallback, empty otherwise
type Result struct {
	Specifier string
	Changed   bool
	Fallback  bool
	Warning   string
}

// Combine intersects an existing specifier with a lower bound.
//
// It performs the following operations:
//   - Step 1: Validate both specifiers as PEP 440
//   - Step 2: Intersect their version sets; an empty intersection keeps existing
//   - Step 3: Fold all clauses into one range; an exclusion inside the range
//     keeps existing
//   - Step 4: Render the range with trailing ".0" segments stripped
//
// Parameters:
//   - existing: Current specifier, may be empty (unconstrained)
//   - lower: New lower bound, normally ">=X"
//
// Returns:
//   - Result: The merged specifier or a fallback with a warning
//   - error: When either specifier is not valid PEP 440
func Combine(existing, lower string) (Result, error) {
	existing = strings.TrimSpace(existing)
	lower = strings.TrimSpace(lower)

	exC, err := semver.PyPI.ParseConstraint(existing)
	if err != nil {
		return Result{}, fmt.Errorf("invalid specifier %q: %w", existing, err)
	}
	loC, err := semver.PyPI.ParseConstraint(lower)
	if err != nil {
		return Result{}, fmt.Errorf("invalid specifier %q: %w", lower, err)
	}

	set := exC.Set()
	if err := set.Intersect(loC.Set()); err != nil {
		return Result{}, fmt.Errorf("intersecting %q with %q: %w", existing, lower, err)
	}
	if set.Empty() {
		return fallback(existing, fmt.Sprintf("%q excludes every version allowed by %q; keeping %q", existing, lower, existing)), nil
	}

	r := &rangeSpec{}
	for _, spec := range []string{existing, lower} {
		clauses, err := parseClauses(spec)
		if err != nil {
			return Result{}, err
		}
		for _, c := range clauses {
			if err := r.apply(c); err != nil {
				return Result{}, err
			}
		}
	}

	disjoint := r.resolve()
	if r.empty() {
		return fallback(existing, fmt.Sprintf("%q excludes every version allowed by %q; keeping %q", existing, lower, existing)), nil
	}
	if disjoint {
		return fallback(existing, fmt.Sprintf("cannot update versions with != in supported range; keeping %q", existing)), nil
	}

	out := r.String()
	changed := out != existing
	if norm, ok := normalize(existing); ok && norm == out {
		changed = false
	}
	return Result{Specifier: out, Changed: changed}, nil
}

// normalize renders spec on its own in canonical form; ok is false when it
// cannot be folded into a single range.
func normalize(spec string) (string, bool) {
	clauses, err := parseClauses(spec)
	if err != nil {
		return "", false
	}
	r := &rangeSpec{}
	for _, c := range clauses {
		if r.apply(c) != nil {
			return "", false
		}
	}
	if r.resolve() || r.empty() {
		return "", false
	}
	return r.String(), true
}

func fallback(existing, warning string) Result {
	return Result{Specifier: existing, Fallback: true, Warning: warning}
}

// clause is one comparison of a specifier, e.g. ">=1.2" or "!=1.4.*".
type clause struct {
	op       string
	raw      string
	v        *version.Version
	wildcard bool
}

var operators = []string{"===", "~=", "==", "!=", "<=", ">=", "<", ">"}

// parseClauses splits a comma-separated specifier into clauses.
func parseClauses(spec string) ([]clause, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}
	var out []clause
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		op := ""
		for _, candidate := range operators {
			if strings.HasPrefix(part, candidate) {
				op = candidate
				break
			}
		}
		if op == "" {
			return nil, fmt.Errorf("invalid specifier clause %q: missing operator", part)
		}
		if op == "===" {
			return nil, fmt.Errorf("invalid specifier clause %q: arbitrary equality is not supported", part)
		}
		raw := strings.TrimSpace(part[len(op):])
		wildcard := strings.HasSuffix(raw, ".*")
		if wildcard && op != "==" && op != "!=" {
			return nil, fmt.Errorf("invalid specifier clause %q: wildcard needs == or !=", part)
		}
		v, err := version.Parse(strings.TrimSuffix(raw, ".*"))
		if err != nil {
			return nil, fmt.Errorf("invalid specifier clause %q: %w", part, err)
		}
		out = append(out, clause{op: op, raw: raw, v: v, wildcard: wildcard})
	}
	return out, nil
}

// bound is one end of a range.
type bound struct {
	v         *version.Version
	inclusive bool
}

// exclusion removes a single version (hi == nil) or the half-open range [lo, hi).
type exclusion struct {
	lo, hi *version.Version
}

// rangeSpec is the conjunction of all clauses folded into one range.
// A nil bound is unbounded on that side.
type rangeSpec struct {
	lower, upper *bound
	excluded     []exclusion
}

func (r *rangeSpec) apply(c clause) error {
	switch c.op {
	case ">=":
		r.raiseLower(bound{c.v, true})
	case ">":
		r.raiseLower(bound{c.v, false})
	case "<=":
		r.dropUpper(bound{c.v, true})
	case "<":
		r.dropUpper(bound{c.v, false})
	case "==":
		if c.wildcard {
			next, err := nextPrefix(c.v.Release(), c.v.Epoch(), significantSegments(c.raw))
			if err != nil {
				return err
			}
			r.raiseLower(bound{c.v, true})
			r.dropUpper(bound{next, false})
			return nil
		}
		r.raiseLower(bound{c.v, true})
		r.dropUpper(bound{c.v, true})
	case "!=":
		if c.wildcard {
			next, err := nextPrefix(c.v.Release(), c.v.Epoch(), significantSegments(c.raw))
			if err != nil {
				return err
			}
			r.excluded = append(r.excluded, exclusion{lo: c.v, hi: next})
			return nil
		}
		r.excluded = append(r.excluded, exclusion{lo: c.v})
	case "~=":
		segments := significantSegments(c.raw)
		if segments < 2 {
			return fmt.Errorf("invalid specifier clause %q: ~= needs at least two release segments", c.op+c.raw)
		}
		next, err := nextPrefix(c.v.Release(), c.v.Epoch(), segments-1)
		if err != nil {
			return err
		}
		r.raiseLower(bound{c.v, true})
		r.dropUpper(bound{next, false})
	default:
		return fmt.Errorf("unsupported operator %q", c.op)
	}
	return nil
}

// raiseLower keeps the tighter of the current and the given lower bound.
func (r *rangeSpec) raiseLower(b bound) {
	if r.lower == nil {
		r.lower = &b
		return
	}
	switch cmp := b.v.Compare(r.lower.v); {
	case cmp > 0:
		r.lower = &b
	case cmp == 0 && !b.inclusive:
		r.lower.inclusive = false
	}
}

// dropUpper keeps the tighter of the current and the given upper bound.
func (r *rangeSpec) dropUpper(b bound) {
	if r.upper == nil {
		r.upper = &b
		return
	}
	switch cmp := b.v.Compare(r.upper.v); {
	case cmp < 0:
		r.upper = &b
	case cmp == 0 && !b.inclusive:
		r.upper.inclusive = false
	}
}

// contains reports whether v lies within the bounds, ignoring exclusions.
func (r *rangeSpec) contains(v *version.Version) bool {
	if r.lower != nil {
		cmp := v.Compare(r.lower.v)
		if cmp < 0 || (cmp == 0 && !r.lower.inclusive) {
			return false
		}
	}
	if r.upper != nil {
		cmp := v.Compare(r.upper.v)
		if cmp > 0 || (cmp == 0 && !r.upper.inclusive) {
			return false
		}
	}
	return true
}

// empty reports whether the bounds admit no version.
func (r *rangeSpec) empty() bool {
	if r.lower == nil || r.upper == nil {
		return false
	}
	cmp := r.lower.v.Compare(r.upper.v)
	return cmp > 0 || (cmp == 0 && !(r.lower.inclusive && r.upper.inclusive))
}

// resolve folds exclusions into the bounds where they touch an end of the
// range and drops those outside it. It reports whether an exclusion is left
// strictly inside the range.
func (r *rangeSpec) resolve() (disjoint bool) {
	pending := r.excluded
	for changed := true; changed && len(pending) > 0 && !r.empty(); {
		changed = false
		var next []exclusion
		for _, e := range pending {
			if r.absorb(e) {
				changed = true
				continue
			}
			next = append(next, e)
		}
		pending = next
	}
	r.excluded = pending
	return len(pending) > 0 && !r.empty()
}

// absorb applies e to the bounds if it lies outside or at an end of the range.
func (r *rangeSpec) absorb(e exclusion) bool {
	if e.hi == nil {
		switch {
		case !r.contains(e.lo):
			return true
		case r.lower != nil && e.lo.Equal(r.lower.v):
			r.lower.inclusive = false
			return true
		case r.upper != nil && e.lo.Equal(r.upper.v):
			r.upper.inclusive = false
			return true
		}
		return false
	}

	// [lo, hi) entirely below or above the range.
	if r.lower != nil && e.hi.Compare(r.lower.v) <= 0 {
		return true
	}
	if r.upper != nil {
		cmp := e.lo.Compare(r.upper.v)
		if cmp > 0 || (cmp == 0 && !r.upper.inclusive) {
			return true
		}
	}

	coversLower := r.lower != nil && e.lo.Compare(r.lower.v) <= 0
	coversUpper := r.upper != nil && e.hi.Compare(r.upper.v) > 0
	switch {
	case coversLower && coversUpper:
		r.lower = &bound{e.hi, true}
		r.upper = &bound{e.lo, false}
		return true
	case coversLower:
		r.lower = &bound{e.hi, true}
		return true
	case coversUpper:
		r.upper = &bound{e.lo, false}
		return true
	}
	return false
}

// String renders the range as a PEP 440 specifier.
func (r *rangeSpec) String() string {
	if r.lower != nil && r.upper != nil && r.lower.inclusive && r.upper.inclusive && r.lower.v.Equal(r.upper.v) {
		return "==" + version.Format(r.lower.v.Normalized())
	}
	var parts []string
	if r.lower != nil {
		op := ">"
		if r.lower.inclusive {
			op = ">="
		}
		parts = append(parts, op+version.Format(r.lower.v.Normalized()))
	}
	if r.upper != nil {
		op := "<"
		if r.upper.inclusive {
			op = "<="
		}
		parts = append(parts, op+version.Format(r.upper.v.Normalized()))
	}
	return strings.Join(parts, ",")
}

// nextPrefix increments the last of the first n release segments:
// ([1, 4, 5], 2) gives 1.5, ([2, 2], 1) gives 3.
func nextPrefix(release []int, epoch, n int) (*version.Version, error) {
	if n < 1 || n > len(release) {
		return nil, fmt.Errorf("cannot take %d-segment prefix of %v", n, release)
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = strconv.Itoa(release[i])
	}
	parts[n-1] = strconv.Itoa(release[n-1] + 1)
	s := strings.Join(parts, ".")
	if epoch != 0 {
		s = fmt.Sprintf("%d!%s", epoch, s)
	}
	return version.Parse(s)
}

// significantSegments counts the release segments written in a version string,
// before any padding.
func significantSegments(raw string) int {
	s := strings.TrimSuffix(raw, ".*")
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
