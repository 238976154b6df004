// Package pmi holds the information-theoretic scores used by word discovery.
package pmi

import (
	"math"
	"slices"
)

// Entropy returns the base-2 Shannon entropy of a count distribution.
// Empty or all-zero distributions have entropy 0. Terms are summed in
// ascending count order so the result does not depend on map iteration.
func Entropy[K comparable](counts map[K]int64) float64 {
	values := make([]int64, 0, len(counts))
	var total int64
	for _, c := range counts {
		if c <= 0 {
			continue
		}
		values = append(values, c)
		total += c
	}
	if total == 0 {
		return 0
	}
	slices.Sort(values)
	var h float64
	for _, c := range values {
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

// Split calculates the pointwise mutual information of a word against one
// way of splitting it into a prefix and a suffix:
//
//	PMI = log2(n_word * total / (n_prefix * n_suffix))
//
// ok is false when the log argument would not be positive, i.e. when any
// count is zero or negative.
func Split(nWord, nPrefix, nSuffix, total int64) (float64, bool) {
	if nWord <= 0 || nPrefix <= 0 || nSuffix <= 0 || total <= 0 {
		return 0, false
	}
	arg := float64(nWord) * float64(total) / (float64(nPrefix) * float64(nSuffix))
	if arg <= 0 || math.IsInf(arg, 0) || math.IsNaN(arg) {
		return 0, false
	}
	return math.Log2(arg), true
}

// MinSplit returns the smallest finite Split score over every internal
// split point of word. Splits whose prefix or suffix has no count are
// skipped. When no split is scorable the score is 0 and scorable is false.
func MinSplit(word []rune, nWord int64, count func(string) int64, total int64) (score float64, scorable bool) {
	score = math.Inf(1)
	for i := 1; i < len(word); i++ {
		v, ok := Split(nWord, count(string(word[:i])), count(string(word[i:])), total)
		if !ok {
			continue
		}
		scorable = true
		if v < score {
			score = v
		}
	}
	if !scorable {
		return 0, false
	}
	return score, true
}
