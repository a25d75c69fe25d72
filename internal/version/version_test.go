package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []int
	}{
		{"plain dotted", "2.1", []int{2, 1}},
		{"three components", "5.0.4", []int{5, 0, 4}},
		{"single component", "7", []int{7}},
		{"prefixed", "v5.0", []int{5, 0}},
		{"embedded text", "tomcat-9.0.1", []int{9, 0, 1}},
		{"mixed separators", "4_2-rc.3", []int{4, 2, 3}},
		{"leading zeros", "05.010", []int{5, 10}},
		{"consecutive separators", "2..1", []int{2, 1}},
		{"empty string", "", nil},
		{"no digits", "beta", nil},
		{"digits at edges", "1-snapshot-2", []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Parse(tt.input).Parts())
		})
	}
}

func TestOfCopiesInput(t *testing.T) {
	parts := []int{3, 1}
	v := Of(parts...)
	parts[0] = 99
	assert.Equal(t, []int{3, 1}, v.Parts())
}

func TestPartsCopyIsIsolated(t *testing.T) {
	v := Of(2, 1)
	got := v.Parts()
	got[0] = 99
	assert.Equal(t, []int{2, 1}, v.Parts())
}

func TestString(t *testing.T) {
	tests := []struct {
		name     string
		v        Version
		expected string
	}{
		{"dotted", Of(2, 1), "2.1"},
		{"single", Of(7), "7"},
		{"empty", Version{}, ""},
		{"reparse strips decoration", Parse("v5.0-beta.2"), "5.0.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.v.String())
		})
	}
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		name     string
		required string
		actual   string
		expected bool
	}{
		{"equal", "2.1", "2.1", true},
		{"actual behind", "2.1", "2.0", false},
		{"actual ahead", "2.1", "2.2", true},
		{"arity mismatch longer required", "2.1.0", "2.1", false},
		{"arity mismatch longer actual", "2.1", "2.1.0", false},
		{"component-wise not numeric", "1.9", "2.0", true},
		{"component-wise reverse", "2.0", "1.9", false},
		{"major wins over minor", "2.9", "3.0", true},
		{"both empty", "", "", true},
		{"both digitless", "beta", "rc", true},
		{"empty required non-empty actual", "", "2.1", false},
		{"non-empty required empty actual", "2.1", "", false},
		{"decorated inputs", "v2.1", "release-2.4", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CompatibleStrings(tt.required, tt.actual))
		})
	}
}

func TestCompatiblePreParsed(t *testing.T) {
	assert.True(t, Compatible(Of(2, 1), Of(2, 1)))
	assert.True(t, Compatible(Of(2, 1), Of(2, 2)))
	assert.False(t, Compatible(Of(2, 1), Of(2, 0)))
	assert.False(t, Compatible(Of(2, 1, 0), Of(2, 1)))

	// String and pre-parsed forms normalize identically.
	assert.Equal(t, Parse("2.1").Parts(), Of(2, 1).Parts())
	assert.True(t, Compatible(Parse("2.1"), Of(2, 4)))
}

func TestCompatibleShortCircuits(t *testing.T) {
	// Once a more significant component is ahead, later components are
	// irrelevant.
	assert.True(t, Compatible(Of(1, 9, 9), Of(2, 0, 0)))
	assert.False(t, Compatible(Of(2, 0, 0), Of(1, 9, 9)))
}
