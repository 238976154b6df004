package discover

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/cognicore/chatreport/pkg/chatreport/pmi"
	"github.com/cognicore/chatreport/pkg/chatreport/segment"
)

// InjectWeight is the lexicon weight given to every discovered word.
const InjectWeight = 1000

// Thresholds gate which n-grams become words.
type Thresholds struct {
	MinFreq int64   // minimum n-gram frequency
	Entropy float64 // minimum of left and right neighbour entropy
	PMI     float64 // minimum split-point PMI
}

// Candidate is an accepted n-gram together with its scores.
type Candidate struct {
	Word         string
	Freq         int64
	LeftEntropy  float64
	RightEntropy float64
	PMI          float64
	Scorable     bool // false when no split had both halves counted
}

// Result holds the words discovered in one corpus.
type Result struct {
	Candidates []Candidate // sorted by word
	TotalChars int64
}

// Words returns the discovered words in sorted order.
func (r Result) Words() []string {
	out := make([]string, len(r.Candidates))
	for i, c := range r.Candidates {
		out[i] = c.Word
	}
	return out
}

// Entries converts the discovered words into lexicon entries.
func (r Result) Entries() []segment.Entry {
	out := make([]segment.Entry, len(r.Candidates))
	for i, c := range r.Candidates {
		out[i] = segment.Entry{Word: c.Word, Weight: InjectWeight}
	}
	return out
}

// Discover scans texts and returns every n-gram passing th. A word is
// accepted when it is frequent enough, its neighbours on both sides are
// varied enough, and no split of it is explained by its halves occurring
// independently. When no split of a word is scorable its PMI is taken as 0.
func Discover(ctx context.Context, texts []string, th Thresholds, workers int) (Result, error) {
	table, err := Scan(ctx, texts, workers)
	if err != nil {
		return Result{}, err
	}
	res := Evaluate(table, th)
	log.Debug().
		Int("texts", len(texts)).
		Int("ngrams", len(table.Grams)).
		Int64("total_chars", table.TotalChars).
		Int("accepted", len(res.Candidates)).
		Msg("new word discovery")
	return res, nil
}

// Evaluate applies th to a populated table.
func Evaluate(table *Table, th Thresholds) Result {
	res := Result{TotalChars: table.TotalChars}
	for word, g := range table.Grams {
		if g.Freq < th.MinFreq {
			continue
		}
		left := pmi.Entropy(g.Left)
		right := pmi.Entropy(g.Right)
		if min(left, right) < th.Entropy {
			continue
		}
		score, ok := pmi.MinSplit([]rune(word), g.Freq, table.Count, table.TotalChars)
		if score < th.PMI {
			continue
		}
		res.Candidates = append(res.Candidates, Candidate{
			Word:         word,
			Freq:         g.Freq,
			LeftEntropy:  left,
			RightEntropy: right,
			PMI:          score,
			Scorable:     ok,
		})
	}
	sort.Slice(res.Candidates, func(i, j int) bool {
		return res.Candidates[i].Word < res.Candidates[j].Word
	})
	return res
}
