// Package algo has array primitives shared by the missingness policies.
package algo

// LongestRun returns the length of the longest run of consecutive true values.
func LongestRun(values []bool) int {
	longest, current := 0, 0
	for _, v := range values {
		if !v {
			current = 0
			continue
		}
		current++
		longest = max(longest, current)
	}
	return longest
}

// CountTrue returns how many values are true.
func CountTrue(values []bool) int {
	n := 0
	for _, v := range values {
		if v {
			n++
		}
	}
	return n
}

// GroupAny reduces flags into nGroups buckets with a logical OR.
// groupOf[i] is the bucket of flags[i]; negative buckets are skipped.
func GroupAny(flags []bool, groupOf []int, nGroups int) []bool {
	out := make([]bool, nGroups)
	for i, f := range flags {
		g := groupOf[i]
		if g < 0 || g >= nGroups {
			continue
		}
		out[g] = out[g] || f
	}
	return out
}
