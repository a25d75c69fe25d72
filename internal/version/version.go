// Package version compares dotted release identifiers.
//
// Identifiers arrive either as raw strings ("5.0.4", "tomcat-9.0.1") or as
// already-parsed component sequences. Both normalize at the boundary into
// one canonical form: the ordered maximal digit runs of the input.
// Comparison is lexicographic with greater-or-equal semantics and requires
// equal arity; sequences of different lengths are never compatible,
// whatever their magnitudes.
package version

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var digitRuns = regexp.MustCompile(`[0-9]+`)

// Version is a release identifier normalized to its integer components.
// The zero value has no components and is compatible only with another
// empty identifier.
type Version struct {
	parts []int
}

// Parse normalizes a raw identifier string. Every maximal run of digits
// becomes one component, in order; all other characters are separators.
// A string with no digits yields the empty Version. Parse never fails.
func Parse(s string) Version {
	runs := digitRuns.FindAllString(s, -1)
	if len(runs) == 0 {
		return Version{}
	}
	parts := make([]int, len(runs))
	for i, run := range runs {
		n, err := strconv.Atoi(run)
		if err != nil {
			// Run exceeds the int range; saturate instead of failing.
			n = math.MaxInt
		}
		parts[i] = n
	}
	return Version{parts: parts}
}

// Of wraps an already-parsed component sequence.
func Of(parts ...int) Version {
	if len(parts) == 0 {
		return Version{}
	}
	v := Version{parts: make([]int, len(parts))}
	copy(v.parts, parts)
	return v
}

// Parts returns a copy of the component sequence.
func (v Version) Parts() []int {
	if len(v.parts) == 0 {
		return nil
	}
	out := make([]int, len(v.parts))
	copy(out, v.parts)
	return out
}

// Len returns the number of components.
func (v Version) Len() int {
	return len(v.parts)
}

// String renders the components dotted, or "" for the empty Version.
func (v Version) String() string {
	if len(v.parts) == 0 {
		return ""
	}
	rendered := make([]string, len(v.parts))
	for i, p := range v.parts {
		rendered[i] = strconv.Itoa(p)
	}
	return strings.Join(rendered, ".")
}

// Compatible reports whether actual satisfies required.
//
// The identifiers must have equal arity: "2.1" never satisfies a required
// "2.1.0", regardless of magnitude. Equal-arity identifiers compare
// component-wise from the most significant end, short-circuiting at the
// first difference; fully equal sequences are compatible. Two empty
// identifiers are vacuously compatible.
func Compatible(required, actual Version) bool {
	if len(required.parts) != len(actual.parts) {
		return false
	}
	for i := range required.parts {
		switch {
		case actual.parts[i] < required.parts[i]:
			return false
		case actual.parts[i] > required.parts[i]:
			return true
		}
	}
	return true
}

// CompatibleStrings is Compatible over raw identifier strings.
func CompatibleStrings(required, actual string) bool {
	return Compatible(Parse(required), Parse(actual))
}
