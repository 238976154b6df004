package segment

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenizer splits text into an ordered list of substrings.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Entry is a run-specific vocabulary insertion. Weight acts like a corpus
// frequency: the larger it is, the more strongly segmentation keeps the entry
// as one token.
type Entry struct {
	Word   string
	Weight float64
}

// Lexicon is an immutable view over a base dictionary plus the entries
// injected during one analysis run. Extend never modifies the receiver, so a
// lexicon can be shared between goroutines and between pipeline stages
// without one run's vocabulary leaking into another.
type Lexicon struct {
	base    *Dictionary
	overlay map[string]float64
	total   float64
	maxLen  int
}

// NewLexicon wraps base (which may be nil) with an empty overlay.
func NewLexicon(base *Dictionary) *Lexicon {
	if base == nil {
		base = NewDictionary()
	}
	return &Lexicon{
		base:    base,
		overlay: map[string]float64{},
		total:   base.total,
		maxLen:  base.maxLen,
	}
}

// Extend returns a new lexicon holding the receiver's entries plus entries.
// A word inserted again takes the new weight.
func (l *Lexicon) Extend(entries []Entry) *Lexicon {
	next := &Lexicon{
		base:    l.base,
		overlay: make(map[string]float64, len(l.overlay)+len(entries)),
		total:   l.total,
		maxLen:  l.maxLen,
	}
	for w, f := range l.overlay {
		next.overlay[w] = f
	}
	for _, e := range entries {
		if e.Word == "" || e.Weight <= 0 {
			continue
		}
		if old, ok := next.overlay[e.Word]; ok {
			next.total -= old
		} else if old, ok := l.base.Frequency(e.Word); ok {
			next.total -= old
		}
		next.overlay[e.Word] = e.Weight
		next.total += e.Weight
		if n := utf8.RuneCountInString(e.Word); n > next.maxLen {
			next.maxLen = n
		}
	}
	return next
}

// Frequency returns the effective frequency of word.
func (l *Lexicon) Frequency(word string) (float64, bool) {
	if f, ok := l.overlay[word]; ok {
		return f, true
	}
	return l.base.Frequency(word)
}

// Injected returns how many run-specific entries the lexicon carries.
func (l *Lexicon) Injected() int {
	return len(l.overlay)
}

// Tokenize cuts text into words. Runs of Han characters, letters and digits
// are segmented by the maximum-probability path through the word graph;
// every other rune, whitespace included, becomes its own token.
func (l *Lexicon) Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	var tokens []string
	var block []rune
	flush := func() {
		if len(block) > 0 {
			tokens = l.cutBlock(block, tokens)
			block = block[:0]
		}
	}
	for _, r := range text {
		if isWordRune(r) {
			block = append(block, r)
			continue
		}
		flush()
		tokens = append(tokens, string(r))
	}
	flush()
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.Is(unicode.Han, r) || unicode.IsLetter(r) || unicode.IsDigit(r) ||
		strings.ContainsRune("+#&._%-", r)
}

func isASCIIAlnum(r rune) bool {
	return r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// dag lists, for every start index, the end indices of dictionary words.
// A single rune is always a candidate.
func (l *Lexicon) dag(runes []rune) [][]int {
	n := len(runes)
	graph := make([][]int, n)
	for k := 0; k < n; k++ {
		limit := k + l.maxLen
		if limit > n {
			limit = n
		}
		for i := k; i < limit; i++ {
			if f, ok := l.Frequency(string(runes[k : i+1])); ok && f > 0 {
				graph[k] = append(graph[k], i)
			}
		}
		if len(graph[k]) == 0 || graph[k][0] != k {
			graph[k] = append([]int{k}, graph[k]...)
		}
	}
	return graph
}

type route struct {
	logProb float64
	end     int
}

func (l *Lexicon) cutBlock(runes []rune, tokens []string) []string {
	n := len(runes)
	graph := l.dag(runes)

	total := l.total
	if total < 1 {
		total = 1
	}
	logTotal := math.Log(total)

	routes := make([]route, n+1)
	for idx := n - 1; idx >= 0; idx-- {
		best := route{logProb: math.Inf(-1)}
		for _, end := range graph[idx] {
			f, ok := l.Frequency(string(runes[idx : end+1]))
			if !ok || f <= 0 {
				f = 1
			}
			score := math.Log(f) - logTotal + routes[end+1].logProb
			if score > best.logProb || (score == best.logProb && end > best.end) {
				best = route{logProb: score, end: end}
			}
		}
		routes[idx] = best
	}

	var buf []rune
	for x := 0; x < n; {
		y := routes[x].end + 1
		if y-x == 1 && isASCIIAlnum(runes[x]) {
			buf = append(buf, runes[x])
		} else {
			if len(buf) > 0 {
				tokens = append(tokens, string(buf))
				buf = buf[:0]
			}
			tokens = append(tokens, string(runes[x:y]))
		}
		x = y
	}
	if len(buf) > 0 {
		tokens = append(tokens, string(buf))
	}
	return tokens
}
