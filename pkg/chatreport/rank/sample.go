package rank

import (
	"math/rand"
	"sort"
)

// Downsample reduces every sample list of a kept word to at most n entries,
// chosen uniformly without replacement. Words are visited in sorted order
// so a seeded rng gives reproducible output.
func Downsample(samples map[string][]string, kept map[string]int, n int, rng *rand.Rand) map[string][]string {
	words := make([]string, 0, len(kept))
	for w := range kept {
		words = append(words, w)
	}
	sort.Strings(words)

	out := make(map[string][]string, len(words))
	for _, w := range words {
		list := samples[w]
		if len(list) <= n {
			out[w] = list
			continue
		}
		pick := make([]string, len(list))
		copy(pick, list)
		for i := 0; i < n; i++ {
			j := i + rng.Intn(len(pick)-i)
			pick[i], pick[j] = pick[j], pick[i]
		}
		out[w] = pick[:n]
	}
	return out
}
