package utils

import "cmp"

// MaxIndices returns every index holding the maximum value, in order.
func MaxIndices[T cmp.Ordered](values []T) []int {
	if len(values) == 0 {
		return nil
	}
	best := values[0]
	indices := []int{0}
	for i := 1; i < len(values); i++ {
		switch {
		case values[i] > best:
			best = values[i]
			indices = indices[:0]
			indices = append(indices, i)
		case values[i] == best:
			indices = append(indices, i)
		}
	}
	return indices
}
