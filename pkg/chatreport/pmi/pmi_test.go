package pmi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntropyUniform(t *testing.T) {
	h := Entropy(map[string]int64{"a": 5, "b": 5, "c": 5, "d": 5})
	assert.InDelta(t, 2.0, h, 1e-9)
}

func TestEntropySingleContext(t *testing.T) {
	assert.Zero(t, Entropy(map[string]int64{"<BOS>": 42}))
}

func TestEntropyEmpty(t *testing.T) {
	assert.Zero(t, Entropy(map[string]int64{}))
	assert.Zero(t, Entropy(map[string]int64{"a": 0}))
}

func TestSplitPositiveAssociation(t *testing.T) {
	// word seen 10 times, halves 10 times each, 1000 chars total
	v, ok := Split(10, 10, 10, 1000)
	assert.True(t, ok)
	assert.InDelta(t, math.Log2(100), v, 1e-9)
}

func TestSplitGuards(t *testing.T) {
	cases := [][4]int64{
		{0, 1, 1, 10},
		{1, 0, 1, 10},
		{1, 1, 0, 10},
		{1, 1, 1, 0},
		{1, -1, 1, 10},
	}
	for _, c := range cases {
		_, ok := Split(c[0], c[1], c[2], c[3])
		assert.False(t, ok, "%v", c)
	}
}

func TestMinSplitTakesMinimum(t *testing.T) {
	counts := map[string]int64{"a": 10, "bc": 10, "ab": 20, "c": 40}
	count := func(s string) int64 { return counts[s] }

	score, ok := MinSplit([]rune("abc"), 10, count, 1000)
	assert.True(t, ok)
	// a|bc → log2(10*1000/100) = log2(100); ab|c → log2(10*1000/800) = log2(12.5)
	assert.InDelta(t, math.Log2(12.5), score, 1e-9)
}

func TestMinSplitSkipsUnscorable(t *testing.T) {
	counts := map[string]int64{"a": 10, "bc": 10}
	count := func(s string) int64 { return counts[s] }

	score, ok := MinSplit([]rune("abc"), 10, count, 1000)
	assert.True(t, ok)
	assert.InDelta(t, math.Log2(100), score, 1e-9, "ab|c is skipped, not -Inf")
}

func TestMinSplitNothingScorable(t *testing.T) {
	score, ok := MinSplit([]rune("ab"), 10, func(string) int64 { return 0 }, 1000)
	assert.False(t, ok)
	assert.Zero(t, score)
}
