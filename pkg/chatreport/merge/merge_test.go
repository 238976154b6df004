package merge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/chatreport/pkg/chatreport/segment"
)

// bars tokenizes on '|' so tests control token boundaries exactly.
type bars struct{}

func (bars) Tokenize(text string) []string { return strings.Split(text, "|") }

func repeat(text string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = text
	}
	return out
}

var defaults = Thresholds{MinFreq: 30, MinProb: 0.3, MaxLen: 6}

func TestFindMergesFrequentPair(t *testing.T) {
	lex := segment.NewLexicon(nil).Extend([]segment.Entry{
		{Word: "原神", Weight: 1000},
		{Word: "启动", Weight: 1000},
	})
	texts := append(repeat("原神启动", 40), repeat("原神真好", 10)...)

	res := Find(texts, lex, defaults)

	require.Equal(t, []string{"原神启动"}, res.Order)
	p := res.Pairs["原神启动"]
	assert.Equal(t, "原神", p.Left)
	assert.Equal(t, "启动", p.Right)
	assert.Equal(t, int64(40), p.Count)
	assert.InDelta(t, 0.8, p.Prob, 1e-9)

	entries := res.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, float64(40*WeightPerOccurrence), entries[0].Weight)

	next := lex.Extend(entries)
	assert.Equal(t, []string{"原神启动", "了"}, next.Tokenize("原神启动了"))
}

func TestFindThresholds(t *testing.T) {
	texts := append(repeat("a|b", 30), repeat("a|c", 70)...)

	res := Find(texts, bars{}, defaults)
	assert.Equal(t, []string{"ab", "ac"}, res.Order, "a|b has P=0.3 and passes")

	res = Find(texts, bars{}, Thresholds{MinFreq: 30, MinProb: 0.31, MaxLen: 6})
	assert.Equal(t, []string{"ac"}, res.Order)

	res = Find(texts, bars{}, Thresholds{MinFreq: 71, MinProb: 0, MaxLen: 6})
	assert.Empty(t, res.Order)

	res = Find(repeat("长长长|短短短短", 40), bars{}, defaults)
	assert.Empty(t, res.Order, "merged length 7 exceeds 6")
}

func TestFindSkipsDigitsAndSymbols(t *testing.T) {
	texts := append(repeat("2024|年", 40), repeat("哈哈|！！", 40)...)
	texts = append(texts, repeat("好|  |的", 40)...)

	res := Find(texts, bars{}, defaults)
	assert.Equal(t, []string{"好的"}, res.Order, "whitespace tokens are dropped before pairing")
}

func TestFindCollisionLastWins(t *testing.T) {
	texts := append(repeat("ab|c", 30), repeat("a|bc", 30)...)

	res := Find(texts, bars{}, defaults)
	require.Equal(t, []string{"abc"}, res.Order)
	assert.Equal(t, Pair{Left: "a", Right: "bc", Count: 30, Prob: 1}, res.Pairs["abc"])
}

func TestMergedWordIsConcatenation(t *testing.T) {
	texts := append(repeat("你|好|世界", 35), repeat("世界|和平", 35)...)

	res := Find(texts, bars{}, defaults)
	require.NotEmpty(t, res.Order)
	for word, p := range res.Pairs {
		assert.Equal(t, word, p.Left+p.Right)
		assert.Equal(t, word, p.Word())
	}
}

func TestSkippable(t *testing.T) {
	cases := map[string]bool{
		"123":   true,
		"!!":    true,
		"，":     true,
		"12.5%": true,
		"原神":    false,
		"abc":   false,
		"a1":    false,
		"_":     false,
		"3号":    false,
	}
	for token, want := range cases {
		assert.Equal(t, want, Skippable(token), token)
	}
}

func TestTop(t *testing.T) {
	res := Result{
		Pairs: map[string]Pair{
			"ab": {Left: "a", Right: "b", Count: 5},
			"cd": {Left: "c", Right: "d", Count: 9},
			"ef": {Left: "e", Right: "f", Count: 5},
		},
		Order: []string{"ab", "cd", "ef"},
	}
	top := res.Top(2)
	require.Len(t, top, 2)
	assert.Equal(t, "cd", top[0].Word())
	assert.Equal(t, "ab", top[1].Word())
}
