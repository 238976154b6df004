package stoplist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	stats := []Stats{
		{Word: "哈哈", Freq: 100, SenderPercent: 90, SenderEntropy: 0.95},
		{Word: "原神", Freq: 80, SenderPercent: 30, SenderEntropy: 0.9},
		{Word: "然后", Freq: 50, SenderPercent: 70, SenderEntropy: 0.85},
		{Word: "的", Freq: 500, SenderPercent: 100, SenderEntropy: 1},
		{Word: "少见", Freq: 5, SenderPercent: 100, SenderEntropy: 1},
		{Word: "偏科", Freq: 60, SenderPercent: 80, SenderEntropy: 0.3},
	}

	got := Suggest(stats, DefaultThresholds(), New([]string{"的"}))
	words := make([]string, len(got))
	for i, c := range got {
		words[i] = c.Word
	}
	assert.Equal(t, []string{"哈哈", "然后"}, words)
	assert.InDelta(t, 0.855, got[0].Score, 1e-9)
}

func TestSuggestTiesByWord(t *testing.T) {
	stats := []Stats{
		{Word: "b", Freq: 30, SenderPercent: 100, SenderEntropy: 1},
		{Word: "a", Freq: 30, SenderPercent: 100, SenderEntropy: 1},
	}
	got := Suggest(stats, DefaultThresholds(), nil)
	assert.Equal(t, "a", got[0].Word)
	assert.Equal(t, "b", got[1].Word)
}
