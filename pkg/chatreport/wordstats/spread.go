package wordstats

import (
	"math"
	"sort"

	"github.com/cognicore/chatreport/pkg/chatreport/corpus"
	"github.com/cognicore/chatreport/pkg/chatreport/pmi"
	"github.com/cognicore/chatreport/pkg/chatreport/stoplist"
)

// Spread reports, for every counted word, how evenly the chat's senders
// use it. senders is the number of distinct senders in the chat.
func (s Stats) Spread(senders int) []stoplist.Stats {
	words := make([]string, 0, len(s.Freq))
	for w := range s.Freq {
		words = append(words, w)
	}
	sort.Strings(words)

	maxEntropy := 0.0
	if senders > 1 {
		maxEntropy = math.Log2(float64(senders))
	}

	out := make([]stoplist.Stats, 0, len(words))
	for _, w := range words {
		st := stoplist.Stats{Word: w, Freq: s.Freq[w]}
		byUser := s.Contributors[w]
		if senders > 0 {
			st.SenderPercent = 100 * float64(len(byUser)) / float64(senders)
		}
		if maxEntropy > 0 {
			st.SenderEntropy = pmi.Entropy(toInt64(byUser)) / maxEntropy
		}
		out = append(out, st)
	}
	return out
}

func toInt64(m map[corpus.ID]int) map[corpus.ID]int64 {
	out := make(map[corpus.ID]int64, len(m))
	for k, v := range m {
		out[k] = int64(v)
	}
	return out
}
