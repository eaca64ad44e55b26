package specifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCombine tests merging a lower bound into existing specifiers.
//
// It verifies:
//   - An unconstrained requirement takes the floor as is
//   - A looser lower bound is replaced by the floor
//   - A tighter lower bound is kept
//   - Upper bounds survive and are rendered after the lower bound
//   - Pins, wildcards and compatible-release clauses are folded into ranges
//   - Exclusions outside or at the edge of the range are absorbed
//   - Respelling the same range is not reported as a change
//   - Prerelease bounds keep their written release segments
func TestCombine(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		lower    string
		want     string
		changed  bool
	}{
		{"unconstrained", "", ">=1.26", ">=1.26", true},
		{"looser lower", ">=1.0", ">=1.26", ">=1.26", true},
		{"tighter lower", ">=2.1", ">=1.26", ">=2.1", false},
		{"same lower", ">=1.26", ">=1.26", ">=1.26", false},
		{"with upper", ">=1.0,<3.0", ">=1.26", ">=1.26,<3", true},
		{"upper only", "<3", ">=2", ">=2,<3", true},
		{"inclusive upper", "<=2.5", ">=2.0", ">=2,<=2.5", true},
		{"exclusive lower wins tie", ">1.5", ">=1.5", ">1.5", false},
		{"pin inside", "==1.2.3", ">=1.0", "==1.2.3", false},
		{"pin on floor", "==1.26.0", ">=1.26", "==1.26", false},
		{"spaced pin", "== 1.2.3", ">=1.0", "==1.2.3", false},
		{"wildcard pin", "==1.2.*", ">=1.2.5", ">=1.2.5,<1.3", true},
		{"compatible release", "~=1.4", ">=1.2", ">=1.4,<2", false},
		{"compatible release micro", "~=1.4.5", ">=1.4.7", ">=1.4.7,<1.5", true},
		{"exclusion below floor", ">=1.0,!=1.5", ">=1.6", ">=1.6", true},
		{"exclusion on floor", "!=1.6", ">=1.6", ">1.6", true},
		{"exclusion above upper", "<2,!=2.5", ">=1.0", ">=1,<2", true},
		{"wildcard exclusion at floor", "!=1.6.*", ">=1.6", ">=1.7", true},
		{"spaces", " >= 1.0 , < 3.0 ", ">=1.26", ">=1.26,<3", true},
		{"trailing zeros", ">=1.0.0", ">=2.0.0", ">=2", true},
		{"prerelease upper", ">=1.0,<2.0rc1", ">=1.26", ">=1.26,<2.0rc1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Combine(tt.existing, tt.lower)
			require.NoError(t, err)
			assert.False(t, res.Fallback)
			assert.Empty(t, res.Warning)
			assert.Equal(t, tt.want, res.Specifier)
			assert.Equal(t, tt.changed, res.Changed)
		})
	}
}

// TestCombineEmptyIntersection tests falling back when nothing satisfies both.
//
// It verifies:
//   - "<2.0" combined with ">=2.5" keeps "<2.0" and warns
//   - A pin below the floor keeps the pin and warns
func TestCombineEmptyIntersection(t *testing.T) {
	res, err := Combine("<2.0", ">=2.5")
	require.NoError(t, err)
	assert.Equal(t, "<2.0", res.Specifier)
	assert.True(t, res.Fallback)
	assert.False(t, res.Changed)
	assert.Contains(t, res.Warning, "excludes every version")

	res, err = Combine("==1.0", ">=1.26")
	require.NoError(t, err)
	assert.Equal(t, "==1.0", res.Specifier)
	assert.True(t, res.Fallback)
}

// TestCombineDisjunction tests falling back when an exclusion splits the range.
//
// It verifies:
//   - An exclusion strictly inside the range keeps the original specifier
//   - The warning mentions !=
func TestCombineDisjunction(t *testing.T) {
	for _, existing := range []string{">=1.0,!=1.30", "!=1.30.*", ">=1,<3,!=2.0"} {
		t.Run(existing, func(t *testing.T) {
			res, err := Combine(existing, ">=1.26")
			require.NoError(t, err)
			assert.Equal(t, existing, res.Specifier)
			assert.True(t, res.Fallback)
			assert.Contains(t, res.Warning, "!=")
		})
	}
}

// TestCombineSelf tests that a specifier intersected with itself is unchanged
// in meaning.
func TestCombineSelf(t *testing.T) {
	for _, s := range []string{">=1.26", ">=1.0,<2", "==3.1"} {
		res, err := Combine(s, s)
		require.NoError(t, err)
		assert.False(t, res.Fallback)
		again, err := Combine(res.Specifier, s)
		require.NoError(t, err)
		assert.Equal(t, res.Specifier, again.Specifier)
	}
}

// TestCombineInvalid tests rejection of malformed specifiers.
func TestCombineInvalid(t *testing.T) {
	for _, existing := range []string{"1.0", ">=banana", "~=1", "===1.0"} {
		t.Run(existing, func(t *testing.T) {
			_, err := Combine(existing, ">=1.0")
			assert.Error(t, err)
		})
	}

	_, err := Combine(">=1.0", ">=")
	assert.Error(t, err)
}

// TestSignificantSegments tests counting written release segments.
func TestSignificantSegments(t *testing.T) {
	assert.Equal(t, 2, significantSegments("1.4"))
	assert.Equal(t, 3, significantSegments("1.4.5a4"))
	assert.Equal(t, 2, significantSegments("2.2.post1"))
	assert.Equal(t, 2, significantSegments("1!3.1"))
	assert.Equal(t, 2, significantSegments("1.2.*"))
	assert.Equal(t, 1, significantSegments("v7"))
}
