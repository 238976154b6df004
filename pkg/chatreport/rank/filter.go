package rank

import (
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/cognicore/chatreport/pkg/chatreport/singlechar"
	"github.com/cognicore/chatreport/pkg/chatreport/stoplist"
)

// punctuation lists the single characters that are never words.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~" + "，。！？；：、“”‘’（）【】"

// FilterOptions are the word filter thresholds.
type FilterOptions struct {
	MinLen         int
	MaxLen         int
	MinFreq        int
	SingleMinRatio float64
	SingleMinCount int
	Policy         stoplist.Policy
}

// IsPunctuation reports whether word is a single punctuation character.
func IsPunctuation(word string) bool {
	return utf8.RuneCountInString(word) == 1 && strings.Contains(punctuation, word)
}

// Keep decides whether one counted word survives filtering.
//
// Length bounds apply to every word. A whitelisted word is then kept
// unconditionally. Otherwise blacklisted words are dropped, single
// characters must be non-punctuation and stand alone often enough, and
// the frequency must reach MinFreq.
func Keep(word string, freq int, single map[string]singlechar.Stats, opts FilterOptions) bool {
	n := utf8.RuneCountInString(word)
	if n < opts.MinLen || n > opts.MaxLen {
		return false
	}
	if opts.Policy.Allowed(word) {
		return true
	}
	if opts.Policy.Blocked(word) {
		return false
	}
	if n == 1 {
		if IsPunctuation(word) {
			return false
		}
		st, ok := single[word]
		if !ok || st.Ratio < opts.SingleMinRatio || st.Standalone < opts.SingleMinCount {
			return false
		}
	}
	return freq >= opts.MinFreq
}

// Filter returns the words of freq that Keep accepts.
func Filter(freq map[string]int, single map[string]singlechar.Stats, opts FilterOptions) map[string]int {
	out := make(map[string]int, len(freq))
	for word, f := range freq {
		if Keep(word, f, single, opts) {
			out[word] = f
		}
	}
	log.Debug().Int("before", len(freq)).Int("after", len(out)).Msg("word filter")
	return out
}
