// Package discover finds multi-character words that no dictionary knows,
// using adjacency entropy and split-point PMI over character n-grams.
package discover

import (
	"context"
	"strings"
	"unicode"

	"github.com/cognicore/chatreport/pkg/chatreport/shard"
)

// Boundary markers recorded as neighbours at fragment edges.
const (
	BOS = "<BOS>"
	EOS = "<EOS>"
)

const (
	minGram = 2
	maxGram = 5
)

// Sentence-terminating punctuation; whitespace is a break as well.
const breakRunes = "，。！？、；：“”‘’（）\"',.!?()"

// Gram is one n-gram with its neighbour distributions.
type Gram struct {
	Freq  int64
	Left  map[string]int64
	Right map[string]int64
}

// Table counts every n-gram of length 2..5 in a corpus.
type Table struct {
	Grams      map[string]*Gram
	TotalChars int64
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{Grams: make(map[string]*Gram)}
}

// Fragments splits text into sentence fragments of at least two runes.
func Fragments(text string) [][]rune {
	var out [][]rune
	for _, frag := range strings.FieldsFunc(text, isBreak) {
		runes := []rune(strings.TrimSpace(frag))
		if len(runes) < minGram {
			continue
		}
		out = append(out, runes)
	}
	return out
}

func isBreak(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(breakRunes, r)
}

// Add counts every fragment of text.
func (t *Table) Add(text string) {
	for _, sentence := range Fragments(text) {
		t.addFragment(sentence)
	}
}

func (t *Table) addFragment(sentence []rune) {
	l := len(sentence)
	t.TotalChars += int64(l)

	top := maxGram
	if l < top {
		top = l
	}
	for n := minGram; n <= top; n++ {
		for i := 0; i+n <= l; i++ {
			word := string(sentence[i : i+n])
			if strings.TrimSpace(word) == "" {
				continue
			}
			g := t.Grams[word]
			if g == nil {
				g = &Gram{Left: make(map[string]int64), Right: make(map[string]int64)}
				t.Grams[word] = g
			}
			g.Freq++
			if i > 0 {
				g.Left[string(sentence[i-1])]++
			} else {
				g.Left[BOS]++
			}
			if i+n < l {
				g.Right[string(sentence[i+n])]++
			} else {
				g.Right[EOS]++
			}
		}
	}
}

// Merge adds other's counts into t.
func (t *Table) Merge(other *Table) {
	t.TotalChars += other.TotalChars
	for word, og := range other.Grams {
		g := t.Grams[word]
		if g == nil {
			t.Grams[word] = og
			continue
		}
		g.Freq += og.Freq
		for k, v := range og.Left {
			g.Left[k] += v
		}
		for k, v := range og.Right {
			g.Right[k] += v
		}
	}
}

// Count returns the frequency of an n-gram, 0 when unseen.
func (t *Table) Count(word string) int64 {
	if g := t.Grams[word]; g != nil {
		return g.Freq
	}
	return 0
}

// Scan builds the table for texts, sharding the work across workers
// goroutines. Counts are summed, so the result does not depend on workers.
// A cancelled ctx stops every shard.
func Scan(ctx context.Context, texts []string, workers int) (*Table, error) {
	tables, err := shard.Map(ctx, len(texts), workers, func(ctx context.Context, r shard.Range) (*Table, error) {
		t := NewTable()
		for i, text := range texts[r.Start:r.End] {
			if err := shard.Cancelled(ctx, i); err != nil {
				return nil, err
			}
			t.Add(text)
		}
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return NewTable(), nil
	}
	out := tables[0]
	for _, t := range tables[1:] {
		out.Merge(t)
	}
	return out, nil
}
