package rank

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/chatreport/pkg/chatreport/corpus"
	"github.com/cognicore/chatreport/pkg/chatreport/funstats"
	"github.com/cognicore/chatreport/pkg/chatreport/singlechar"
	"github.com/cognicore/chatreport/pkg/chatreport/stoplist"
)

type names map[corpus.ID]string

func (n names) Name(id corpus.ID) string {
	if s, ok := n[id]; ok {
		return s
	}
	return "?" + string(id)
}

func defaultFilter() FilterOptions {
	return FilterOptions{MinLen: 1, MaxLen: 10, MinFreq: 1, SingleMinRatio: 0.01, SingleMinCount: 5}
}

func TestTopOrdering(t *testing.T) {
	got := Top(map[string]int{"b": 2, "a": 2, "c": 5, "d": 1}, 3)
	assert.Equal(t, []Count[string]{{"c", 5}, {"a", 2}, {"b", 2}}, got)
	assert.Len(t, Top(map[string]int{"a": 1}, -1), 1)
	assert.Empty(t, Top(map[string]int{"a": 1}, 0))
}

func TestKeepSingleCharRatio(t *testing.T) {
	single := map[string]singlechar.Stats{
		"的": {Total: 1000, Standalone: 3, Ratio: 0.003},
		"草": {Total: 100, Standalone: 50, Ratio: 0.5},
		"嗯": {Total: 4, Standalone: 4, Ratio: 1},
	}
	opts := defaultFilter()

	assert.False(t, Keep("的", 500, single, opts), "ratio 0.003 is below 0.01")
	assert.True(t, Keep("草", 50, single, opts))
	assert.False(t, Keep("嗯", 4, single, opts), "only 4 standalone uses")
	assert.False(t, Keep("啊", 9, single, opts), "no single-char stats")
	assert.False(t, Keep("，", 99, single, opts))
	assert.False(t, Keep("!", 99, single, opts))
}

func TestKeepListsAndLength(t *testing.T) {
	opts := defaultFilter()
	opts.MinFreq = 3
	opts.MaxLen = 4
	opts.Policy = stoplist.Policy{
		Blacklist: stoplist.New([]string{"哈哈", "图片"}),
		Whitelist: stoplist.New([]string{"哈哈", "的", "超级无敌长的词"}),
	}

	assert.True(t, Keep("哈哈", 1, nil, opts), "whitelist beats blacklist and MIN_FREQ")
	assert.True(t, Keep("的", 1, nil, opts), "whitelist skips single-char checks")
	assert.False(t, Keep("超级无敌长的词", 100, nil, opts), "length bounds apply to whitelisted words")
	assert.False(t, Keep("图片", 100, nil, opts))
	assert.False(t, Keep("原神", 2, nil, opts))
	assert.True(t, Keep("原神", 3, nil, opts))
}

func TestFilter(t *testing.T) {
	freq := map[string]int{"原神": 5, "的": 100, "，": 100}
	got := Filter(freq, map[string]singlechar.Stats{"的": {Total: 1000, Standalone: 3, Ratio: 0.003}}, defaultFilter())
	assert.Equal(t, map[string]int{"原神": 5}, got)
}

func TestDownsample(t *testing.T) {
	samples := map[string][]string{
		"a": {"1", "2", "3", "4", "5", "6"},
		"b": {"x"},
		"c": {"dropped"},
	}
	kept := map[string]int{"a": 6, "b": 1}

	got := Downsample(samples, kept, 3, rand.New(rand.NewSource(7)))
	require.Len(t, got["a"], 3)
	seen := map[string]bool{}
	for _, s := range got["a"] {
		assert.Contains(t, samples["a"], s)
		assert.False(t, seen[s], "sampled without replacement")
		seen[s] = true
	}
	assert.Equal(t, []string{"x"}, got["b"])
	assert.NotContains(t, got, "c")
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, samples["a"], "input untouched")

	again := Downsample(samples, kept, 3, rand.New(rand.NewSource(7)))
	assert.Equal(t, got, again)
}

func TestWords(t *testing.T) {
	freq := map[string]int{"原神": 9, "启动": 4, "屏蔽": 7}
	contributors := map[string]map[corpus.ID]int{
		"原神": {"1": 5, "2": 3, "3": 1},
	}
	samples := map[string][]string{"原神": {"a", "b", "c"}}
	opts := WordOptions{
		TopN:            10,
		ContributorTopN: 2,
		SampleCount:     2,
		Policy:          stoplist.Policy{Blacklist: stoplist.New([]string{"屏蔽"})},
	}

	got := Words(freq, contributors, samples, names{"1": "小明"}, opts)
	require.Len(t, got, 2)
	assert.Equal(t, "原神", got[0].Word)
	assert.Equal(t, 9, got[0].Freq)
	require.Len(t, got[0].Contributors, 2)
	assert.Equal(t, "小明", got[0].Contributors[0].Name)
	assert.Equal(t, "1", got[0].Contributors[0].UIN)
	assert.Equal(t, "?2", got[0].Contributors[1].Name)
	assert.Equal(t, []string{"a", "b"}, got[0].Samples)
	assert.Equal(t, "启动", got[1].Word)
	assert.NotNil(t, got[1].Contributors)
	assert.NotNil(t, got[1].Samples)
}

func TestLeaderboards(t *testing.T) {
	text := func(s string) *string { return &s }
	var msgs []corpus.Message
	for i := 0; i < 10; i++ {
		msgs = append(msgs, corpus.Message{Sender: corpus.Sender{UIN: "A", Name: "阿"}, Content: corpus.Content{Text: text("一二三")}})
	}
	msgs = append(msgs, corpus.Message{Sender: corpus.Sender{UIN: "B", Name: "贝"}, Content: corpus.Content{Text: text("嗨")}})
	corp := corpus.Build(&corpus.Chat{Messages: msgs}, corpus.Options{})
	stats := funstats.Collect(corp, funstats.Options{})

	rankings := Leaderboards(stats, corp, 1)
	require.Len(t, rankings, 14)
	assert.Equal(t, "话痨榜", rankings[0].Name)
	assert.Equal(t, "字数榜", rankings[1].Name)
	assert.Equal(t, LongForm, rankings[2].Name)
	assert.Equal(t, "复读机", rankings[13].Name)

	talk := rankings[0]
	require.Len(t, talk.Entries, 1)
	assert.Equal(t, "阿", talk.Entries[0].Name)
	assert.Equal(t, 10, talk.Entries[0].Value.Count)

	long := rankings[2]
	require.Len(t, long.Entries, 1)
	assert.Equal(t, "3.0字/条", long.Entries[0].Value.Text)

	repeat, ok := rankings.Get("复读机")
	require.True(t, ok)
	assert.Empty(t, repeat.Entries, "same-sender repeats never count")
	assert.NotNil(t, repeat.Entries)
}
