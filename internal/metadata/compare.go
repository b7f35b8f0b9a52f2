package metadata

import (
	"strconv"
	"strings"
)

// CompareVersions orders two version lists newest first. It returns a
// negative number when a sorts before b.
//
// Each side is reduced to its minimum version, the longest common prefix is
// stripped and the leading digit runs of the remainders are compared as
// integers. This is not a semver comparison: it is only correct when the
// versions differ in the first component after the shared prefix, which holds
// for release tags like v14.15.0 and v14.2.0.
func CompareVersions(a, b []string) int {
	return compareSingle(minVersion(a), minVersion(b))
}

func minVersion(list []string) string {
	var lowest string
	for i, v := range list {
		if i == 0 || compareSingle(lowest, v) < 0 {
			lowest = v
		}
	}
	return lowest
}

func compareSingle(a, b string) int {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	i := 0
	for i < len(a) && i < len(b) && a[i] == b[i] {
		i++
	}
	return leadingNumber(b[i:]) - leadingNumber(a[i:])
}

// leadingNumber parses the leading digit run of s; no digits counts as 0.
func leadingNumber(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
