// Package breakpoints merges slide, shape, and panzoom timestamps into the
// sorted, deduplicated set of re-render breakpoints the whiteboard frame
// emitter walks pairwise.
package breakpoints

import "sort"

// Merge unions every timestamp supplied, filters out anything beyond
// duration, collapses adjacent equal values, and returns the result sorted
// ascending. duration itself is always included (clamped in, not clamped
// out) so the final interval has an end.
func Merge(times []float64, duration float64) []float64 {
	set := make([]float64, 0, len(times)+1)
	for _, t := range times {
		if t <= duration {
			set = append(set, t)
		}
	}
	set = append(set, duration)

	sort.Float64s(set)

	out := set[:0:0]
	for i, t := range set {
		if i == 0 || t != out[len(out)-1] {
			out = append(out, t)
		}
	}
	return out
}
