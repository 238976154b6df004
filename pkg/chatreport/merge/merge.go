// Package merge joins adjacent tokens that almost always appear together
// into a single word.
package merge

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/cognicore/chatreport/pkg/chatreport/segment"
)

// WeightPerOccurrence scales a pair's count into its lexicon weight.
const WeightPerOccurrence = 1000

// digitsOrSymbols matches tokens made only of decimal digits and runes that
// are neither letters, numbers nor underscore. Han characters are letters.
var digitsOrSymbols = regexp.MustCompile(`^(?:\p{Nd}|[^\p{L}\p{N}_])+$`)

// Thresholds gate which token pairs are merged.
type Thresholds struct {
	MinFreq int64   // minimum co-occurrence count
	MinProb float64 // minimum P(right | left)
	MaxLen  int     // maximum merged length in runes
}

// Pair is an accepted merge.
type Pair struct {
	Left  string
	Right string
	Count int64
	Prob  float64
}

// Word returns the merged form.
func (p Pair) Word() string { return p.Left + p.Right }

// Result maps merged words to their pair. Order lists merged words in the
// order their pair was first seen.
type Result struct {
	Pairs map[string]Pair
	Order []string
}

// Entries converts the merges into lexicon entries weighted by count.
func (r Result) Entries() []segment.Entry {
	out := make([]segment.Entry, 0, len(r.Order))
	for _, w := range r.Order {
		p := r.Pairs[w]
		out = append(out, segment.Entry{Word: w, Weight: float64(p.Count * WeightPerOccurrence)})
	}
	return out
}

// Top returns up to n merges by descending count.
func (r Result) Top(n int) []Pair {
	out := make([]Pair, 0, len(r.Order))
	for _, w := range r.Order {
		out = append(out, r.Pairs[w])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

type key struct{ left, right string }

// Skippable reports whether a token may not take part in a merge.
func Skippable(token string) bool {
	return digitsOrSymbols.MatchString(token)
}

// Find tokenizes every text with tok and merges adjacent pairs passing th.
// Whitespace tokens are dropped before pairing. When two pairs produce the
// same merged word, the pair seen last wins.
func Find(texts []string, tok segment.Tokenizer, th Thresholds) Result {
	pairs := make(map[key]int64)
	var order []key
	rights := make(map[string]int64)

	for _, text := range texts {
		var words []string
		for _, w := range tok.Tokenize(text) {
			if w = strings.TrimSpace(w); w != "" {
				words = append(words, w)
			}
		}
		for i := 0; i+1 < len(words); i++ {
			w1, w2 := words[i], words[i+1]
			if Skippable(w1) || Skippable(w2) {
				continue
			}
			k := key{w1, w2}
			if _, seen := pairs[k]; !seen {
				order = append(order, k)
			}
			pairs[k]++
			rights[w1]++
		}
	}

	res := Result{Pairs: make(map[string]Pair)}
	for _, k := range order {
		count := pairs[k]
		merged := k.left + k.right
		if utf8.RuneCountInString(merged) > th.MaxLen || count < th.MinFreq {
			continue
		}
		total := rights[k.left]
		if total <= 0 {
			continue
		}
		prob := float64(count) / float64(total)
		if prob < th.MinProb {
			continue
		}
		if _, exists := res.Pairs[merged]; !exists {
			res.Order = append(res.Order, merged)
		}
		res.Pairs[merged] = Pair{Left: k.left, Right: k.right, Count: count, Prob: prob}
	}

	log.Debug().Int("pairs", len(pairs)).Int("merged", len(res.Order)).Msg("word pair merge")
	for _, p := range res.Top(10) {
		log.Debug().Str("word", p.Word()).Int64("count", p.Count).Float64("prob", p.Prob).Msg("merged pair")
	}
	return res
}
