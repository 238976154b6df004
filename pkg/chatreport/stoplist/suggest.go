package stoplist

import (
	"cmp"
	"slices"
)

// Stats describes how one word is spread across the senders of a chat.
type Stats struct {
	Word string
	Freq int
	// SenderPercent is the share of all senders that used the word, 0..100.
	SenderPercent float64
	// SenderEntropy is the entropy of the word's per-sender counts divided
	// by its maximum for the chat, 0..1.
	SenderEntropy float64
}

// Thresholds defines criteria for stopword suggestion
type Thresholds struct {
	MinFreq       int
	SenderPercent float64
	SenderEntropy float64
}

// DefaultThresholds returns the thresholds used by the stopwords command.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinFreq:       20,
		SenderPercent: 60,
		SenderEntropy: 0.8,
	}
}

// Candidate is a suggested stopword. Score is SenderPercent/100 times
// SenderEntropy.
type Candidate struct {
	Word  string
	Freq  int
	Score float64
}

// Suggest returns words that nearly everyone uses about equally often,
// best first. Words already on existing are skipped.
func Suggest(stats []Stats, th Thresholds, existing *List) []Candidate {
	var out []Candidate
	for _, s := range stats {
		if existing.Contains(s.Word) {
			continue
		}
		if s.Freq < th.MinFreq || s.SenderPercent <= th.SenderPercent || s.SenderEntropy <= th.SenderEntropy {
			continue
		}
		out = append(out, Candidate{
			Word:  s.Word,
			Freq:  s.Freq,
			Score: s.SenderPercent / 100 * s.SenderEntropy,
		})
	}
	slices.SortFunc(out, func(a, b Candidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Word, b.Word)
	})
	return out
}
