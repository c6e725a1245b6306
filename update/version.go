package update

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var numberPattern = regexp.MustCompile(`\d+`)

// Version is a normalized (major, minor, patch) triple. Parsing is total:
// any string yields a valid Version, garbage yields 0.0.0.
type Version struct {
	Major, Minor, Patch int
}

// ParseVersion normalizes a version string. A leading "v" prefix is
// ignored, non-numeric segments are dropped, and the result is padded or
// truncated to exactly three components.
func ParseVersion(s string) Version {
	nums := numberPattern.FindAllString(strings.TrimPrefix(s, "v"), 3)

	parts := [3]int{}
	for i, n := range nums {
		// The pattern only matches digit runs; overlong runs saturate
		// instead of failing.
		v, err := strconv.Atoi(n)
		if err != nil {
			v = int(^uint(0) >> 1)
		}
		parts[i] = v
	}

	return Version{Major: parts[0], Minor: parts[1], Patch: parts[2]}
}

// Compare returns -1, 0, or 1 by lexicographic order over the triple.
func (v Version) Compare(other Version) int {
	pairs := [][2]int{
		{v.Major, other.Major},
		{v.Minor, other.Minor},
		{v.Patch, other.Patch},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}

// Newer reports whether v is strictly newer than other. This is the total
// order used everywhere "newer" is decided.
func (v Version) Newer(other Version) bool {
	return v.Compare(other) > 0
}

// IsNewerVersion reports whether next is strictly newer than current,
// comparing the parsed triples.
func IsNewerVersion(current, next string) bool {
	return ParseVersion(next).Newer(ParseVersion(current))
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
