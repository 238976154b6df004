package chatreport

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/chatreport/pkg/chatreport/config"
	"github.com/cognicore/chatreport/pkg/chatreport/corpus"
	"github.com/cognicore/chatreport/pkg/chatreport/stoplist"
)

const baseTS = 1709362800 // 2024-03-02 15:00 UTC+8

func buildChat() *corpus.Chat {
	var msgs []corpus.Message
	add := func(sender, name, text string, sub int) {
		id := strconv.Itoa(len(msgs) + 1)
		t := text
		msgs = append(msgs, corpus.Message{
			MessageID: corpus.ID(id),
			Timestamp: corpus.Timestamp(strconv.Itoa(baseTS + len(msgs)*60)),
			Sender:    corpus.Sender{UIN: corpus.ID(sender), Name: name},
			Content:   corpus.Content{Text: &t},
			Raw:       corpus.RawMessage{SubMsgType: corpus.Code(sub)},
		})
	}
	prefixes := []string{"我", "你", "他", "她", "谁"}
	suffixes := []string{"吧", "啊", "了", "呢", "吗"}
	for i := 0; i < 25; i++ {
		sender := fmt.Sprintf("10%02d", i%3)
		add(sender, "用户"+sender, prefixes[i%5]+"原神"+suffixes[(i/5)%5], 0)
	}
	add("1000", "用户1000", "ok", 0)
	add("1001", "用户1001", "ok", 0)
	add("1001", "用户1001", "ok", 0)
	add("9999", "机器人", "原神原神原神", 577)
	return &corpus.Chat{Name: "测试群", Messages: msgs}
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.NewWordMinFreq = 20
	cfg.PMIThreshold = 0
	cfg.SampleSeed = 42
	return cfg
}

func TestAnalyze(t *testing.T) {
	engine := New(Options{Config: testConfig()})

	res, err := engine.Analyze(context.Background(), buildChat())
	require.NoError(t, err)
	rep := res.Report

	assert.Equal(t, "测试群", rep.ChatName)
	assert.Equal(t, 28, rep.MessageCount, "bot message excluded")
	assert.Equal(t, 28, rep.HourDistribution.Total())
	assert.Contains(t, res.Discovered, "原神")

	require.NotEmpty(t, rep.TopWords)
	top := rep.TopWords[0]
	assert.Equal(t, "原神", top.Word)
	assert.Equal(t, 25, top.Freq)
	assert.LessOrEqual(t, len(top.Samples), 10)
	require.Len(t, top.Contributors, 3)
	assert.Equal(t, "用户1000", top.Contributors[0].Name)
	assert.Equal(t, 9, top.Contributors[0].Count)

	require.Len(t, rep.Rankings, 14)
	repeat, ok := rep.Rankings.Get("复读机")
	require.True(t, ok)
	require.Len(t, repeat.Entries, 1)
	assert.Equal(t, "1001", repeat.Entries[0].UIN)
	assert.Equal(t, 1, repeat.Entries[0].Value.Count)

	for _, w := range rep.TopWords {
		assert.NotEqual(t, "机器人", w.Word)
	}
}

func TestAnalyzeDeterministicWithSeed(t *testing.T) {
	engine := New(Options{Config: testConfig()})

	var wg sync.WaitGroup
	results := make([]*Result, 4)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := engine.Analyze(context.Background(), buildChat())
			if err == nil {
				results[i] = res
			}
		}()
	}
	wg.Wait()

	for _, res := range results[1:] {
		require.NotNil(t, res)
		assert.Equal(t, results[0].Report, res.Report)
	}
}

func TestAnalyzeWorkersAgree(t *testing.T) {
	cfg := testConfig()
	one, err := New(Options{Config: cfg}).Analyze(context.Background(), buildChat())
	require.NoError(t, err)

	cfg.Workers = 4
	four, err := New(Options{Config: cfg}).Analyze(context.Background(), buildChat())
	require.NoError(t, err)

	assert.Equal(t, one.Report, four.Report)
}

func TestAnalyzeStopwords(t *testing.T) {
	cfg := testConfig()
	cfg.UseStopwords = true
	engine := New(Options{Config: cfg, Stopwords: []string{"原神"}})

	res, err := engine.Analyze(context.Background(), buildChat())
	require.NoError(t, err)
	for _, w := range res.Report.TopWords {
		assert.NotEqual(t, "原神", w.Word)
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{Config: testConfig()}).Analyze(ctx, buildChat())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewFromConfigRejectsInvalid(t *testing.T) {
	cfg := config.Default()
	cfg.MinWordLen = 0
	_, err := NewFromConfig(cfg)
	assert.Error(t, err)
}

func TestNewFromConfigMissingDictionary(t *testing.T) {
	cfg := config.Default()
	cfg.DictionaryPath = "/nonexistent/dict.txt"
	_, err := NewFromConfig(cfg)
	assert.Error(t, err)
}

func TestSuggestStopwords(t *testing.T) {
	engine := New(Options{Config: testConfig()})
	res, err := engine.Analyze(context.Background(), buildChat())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Senders)

	got := engine.SuggestStopwords(res, stoplist.DefaultThresholds())
	require.NotEmpty(t, got)
	assert.Equal(t, "原神", got[0].Word)
	assert.Equal(t, 25, got[0].Freq)

	listed := New(Options{Config: testConfig(), Stopwords: []string{"原神"}})
	for _, c := range listed.SuggestStopwords(res, stoplist.DefaultThresholds()) {
		assert.NotEqual(t, "原神", c.Word)
	}
}

func TestNewFromConfigUsesEmbeddedDictionary(t *testing.T) {
	engine, err := NewFromConfig(config.Default())
	require.NoError(t, err)

	var msgs []corpus.Message
	for i := 0; i < 20; i++ {
		text := "我们今天一起去吃饭吧"
		msgs = append(msgs, corpus.Message{
			MessageID: corpus.ID(strconv.Itoa(i + 1)),
			Sender:    corpus.Sender{UIN: corpus.ID(fmt.Sprintf("10%02d", i%4))},
			Content:   corpus.Content{Text: &text},
		})
	}

	res, err := engine.Analyze(context.Background(), &corpus.Chat{Name: "饭局", Messages: msgs})
	require.NoError(t, err)

	words := make(map[string]int)
	for _, w := range res.Report.TopWords {
		words[w.Word] = w.Freq
	}
	assert.Equal(t, 20, words["吃饭"])
	assert.Equal(t, 20, words["我们"])
	assert.NotContains(t, words, "去吃")
	assert.NotContains(t, words, "饭吧")
}
