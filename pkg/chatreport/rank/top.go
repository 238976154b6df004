// Package rank turns raw counts into the report: it filters the word table,
// picks the top words and builds the sender leaderboards.
package rank

import (
	"cmp"
	"slices"
)

// Count is a key with its tally.
type Count[K cmp.Ordered] struct {
	Key K
	N   int
}

// Top returns the n largest entries of m, by descending count and then
// ascending key. A negative n returns every entry.
func Top[K cmp.Ordered](m map[K]int, n int) []Count[K] {
	out := make([]Count[K], 0, len(m))
	for k, v := range m {
		out = append(out, Count[K]{Key: k, N: v})
	}
	slices.SortFunc(out, func(a, b Count[K]) int {
		if c := cmp.Compare(b.N, a.N); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
