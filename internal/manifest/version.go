package manifest

import (
	"regexp"
	"strconv"
)

// componentCount is the fixed width versions are padded to before comparing
const componentCount = 4

// componentSplitRegex separates version components on the common
// delimiters found in upstream version strings
var componentSplitRegex = regexp.MustCompile(`[.\-_+]`)

// leadingDigitsRegex matches the leading digit run of one component
var leadingDigitsRegex = regexp.MustCompile(`^\d+`)

// parseComponents breaks a version string into fixed-width numeric
// components. Each component contributes its leading digit run;
// non-numeric or missing components coerce to 0.
func parseComponents(v string) [componentCount]int {
	var nums [componentCount]int

	parts := componentSplitRegex.Split(v, -1)
	for i := 0; i < componentCount && i < len(parts); i++ {
		digits := leadingDigitsRegex.FindString(parts[i])
		if digits == "" {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			// Digit run too long for int; saturate rather than fail
			n = int(^uint(0) >> 1)
		}
		nums[i] = n
	}

	return nums
}

// CompareVersions compares two version strings with a tolerant heuristic:
// components split on '.', '-', '_', '+', leading digit runs compared
// numerically, everything else coerced to 0. Total over arbitrary input,
// never an error.
// Returns: -1 if v1 < v2, 0 if v1 == v2, 1 if v1 > v2
func CompareVersions(v1, v2 string) int {
	nums1 := parseComponents(v1)
	nums2 := parseComponents(v2)

	for i := 0; i < componentCount; i++ {
		if nums1[i] < nums2[i] {
			return -1
		}
		if nums1[i] > nums2[i] {
			return 1
		}
	}
	return 0
}

// MaxVersion returns the highest version in the list per CompareVersions,
// or "" for an empty list
func MaxVersion(versions []string) string {
	if len(versions) == 0 {
		return ""
	}

	latest := versions[0]
	for _, v := range versions[1:] {
		if CompareVersions(v, latest) > 0 {
			latest = v
		}
	}
	return latest
}
