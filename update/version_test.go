package update

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVersion(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected Version
	}{
		{name: "plain semver", input: "1.2.3", expected: Version{1, 2, 3}},
		{name: "v prefix", input: "v1.2.3", expected: Version{1, 2, 3}},
		{name: "two components padded", input: "1.2", expected: Version{1, 2, 0}},
		{name: "single component", input: "7", expected: Version{7, 0, 0}},
		{name: "extra components truncated", input: "1.2.3.4", expected: Version{1, 2, 3}},
		{name: "empty", input: "", expected: Version{0, 0, 0}},
		{name: "garbage", input: "not a version", expected: Version{0, 0, 0}},
		{name: "mixed segments", input: "v2.0-beta.5", expected: Version{2, 0, 5}},
		{name: "date style", input: "2024.06", expected: Version{2024, 6, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseVersion(tc.input))
		})
	}
}

func TestVersionOrdering(t *testing.T) {
	testCases := []struct {
		name    string
		current string
		next    string
		newer   bool
	}{
		{name: "patch bump", current: "1.0.0", next: "1.0.1", newer: true},
		{name: "numeric not lexical", current: "v1.2.0", next: "v1.10.0", newer: true},
		{name: "equal after padding", current: "1.2", next: "1.2.0", newer: false},
		{name: "downgrade", current: "2.0.0", next: "1.9.9", newer: false},
		{name: "identical", current: "3.1.4", next: "3.1.4", newer: false},
		{name: "unknown installed", current: "Unknown", next: "v0.0.1", newer: true},
		{name: "garbage both", current: "???", next: "!!!", newer: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.newer, IsNewerVersion(tc.current, tc.next))
		})
	}
}

func TestVersionCompareIsStrictTotalOrder(t *testing.T) {
	a := ParseVersion("1.2.0")
	b := ParseVersion("1.10.0")

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.False(t, a.Newer(a))
}
