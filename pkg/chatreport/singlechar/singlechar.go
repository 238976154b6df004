// Package singlechar measures how often a character stands on its own.
package singlechar

import (
	"unicode/utf8"

	"github.com/cognicore/chatreport/pkg/chatreport/segment"
)

// Stats describes one character across the corpus.
type Stats struct {
	Total      int     // occurrences anywhere in the text
	Standalone int     // occurrences as a complete one-character token
	Ratio      float64 // Standalone / Total
}

// Analyze tokenizes every text and counts, per character, total and
// standalone occurrences. Characters that never occur have no entry.
func Analyze(texts []string, tok segment.Tokenizer) map[string]Stats {
	total := make(map[string]int)
	standalone := make(map[string]int)

	for _, text := range texts {
		for _, r := range text {
			total[string(r)]++
		}
		for _, token := range tok.Tokenize(text) {
			if utf8.RuneCountInString(token) == 1 {
				standalone[token]++
			}
		}
	}

	out := make(map[string]Stats, len(total))
	for ch, n := range total {
		s := standalone[ch]
		out[ch] = Stats{Total: n, Standalone: s, Ratio: float64(s) / float64(n)}
	}
	return out
}
