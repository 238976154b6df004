// Package chatreport turns a group chat export into a word-cloud and
// leaderboard report.
//
// A run flows through fixed stages, each working on an immutable lexicon
// snapshot handed to it by the previous one:
//
//	corpus -> single-char stats -> discovery -> merge -> word count
//	       -> fun statistics -> filter and rank -> report
package chatreport

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cognicore/chatreport/pkg/chatreport/config"
	"github.com/cognicore/chatreport/pkg/chatreport/corpus"
	"github.com/cognicore/chatreport/pkg/chatreport/discover"
	"github.com/cognicore/chatreport/pkg/chatreport/funstats"
	"github.com/cognicore/chatreport/pkg/chatreport/merge"
	"github.com/cognicore/chatreport/pkg/chatreport/rank"
	"github.com/cognicore/chatreport/pkg/chatreport/report"
	"github.com/cognicore/chatreport/pkg/chatreport/segment"
	"github.com/cognicore/chatreport/pkg/chatreport/singlechar"
	"github.com/cognicore/chatreport/pkg/chatreport/stoplist"
	"github.com/cognicore/chatreport/pkg/chatreport/wordstats"
)

// Engine runs analyses. It holds only read-only state and may be shared
// between goroutines; every Analyze call gets its own lexicon and counters.
type Engine struct {
	cfg       config.Config
	dict      *segment.Dictionary
	stopwords *stoplist.List
}

// Options configures an Engine
type Options struct {
	Config config.Config
	// Dictionary is the base segmentation dictionary; nil means an empty one.
	// NewFromConfig falls back to segment.Builtin.
	Dictionary *segment.Dictionary
	// Stopwords are added to Config.Stopwords.
	Stopwords []string
}

// New creates an Engine with the given dependencies
func New(opts Options) *Engine {
	dict := opts.Dictionary
	if dict == nil {
		dict = segment.NewDictionary()
	}
	return &Engine{
		cfg:       opts.Config,
		dict:      dict,
		stopwords: stoplist.New(opts.Config.Stopwords, opts.Stopwords),
	}
}

// NewFromConfig validates cfg and loads the dictionary and stopword files
// it names. Without a dictionary path the embedded gse dictionary is used.
func NewFromConfig(cfg config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := Options{Config: cfg}
	if cfg.DictionaryPath != "" {
		dict, err := segment.LoadDictionary(cfg.DictionaryPath)
		if err != nil {
			return nil, err
		}
		opts.Dictionary = dict
		log.Info().Str("path", cfg.DictionaryPath).Int("words", dict.Len()).Msg("dictionary loaded")
	} else {
		dict, err := segment.Builtin()
		if err != nil {
			return nil, err
		}
		opts.Dictionary = dict
		log.Info().Int("words", dict.Len()).Msg("embedded dictionary loaded")
	}
	if cfg.StopwordsPath != "" {
		words, err := config.LoadWordList(cfg.StopwordsPath)
		if err != nil {
			return nil, err
		}
		opts.Stopwords = words
		log.Info().Str("path", cfg.StopwordsPath).Int("words", len(words)).Msg("stopwords loaded")
	}
	return New(opts), nil
}

// Config returns the engine configuration.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Result is the report plus the intermediate products worth inspecting.
type Result struct {
	Report     report.Report
	Discovered []string
	Merged     []merge.Pair
	Stats      *funstats.Stats
	Words      wordstats.Stats
	Senders    int
}

// Analyze runs the full pipeline over chat. The context is checked between
// stages and inside the sharded discovery and word-count passes.
func (e *Engine) Analyze(ctx context.Context, chat *corpus.Chat) (*Result, error) {
	cfg := e.cfg
	started := time.Now()
	logger := log.With().Str("chat", chat.Name).Logger()

	corp := corpus.Build(chat, corpus.Options{
		FilterBots:     cfg.FilterBotMessages,
		BotSubMsgTypes: cfg.BotSubMsgTypes,
		StartDate:      cfg.StartDate,
		EndDate:        cfg.EndDate,
	})
	texts := corp.Texts()
	logger.Info().
		Int("messages", len(chat.Messages)).
		Int("eligible", len(corp.Messages)).
		Int("texts", len(texts)).
		Int("senders", corp.Senders()).
		Msg("corpus built")

	policy := stoplist.Policy{
		Stopwords:    e.stopwords,
		Blacklist:    stoplist.New(cfg.Blacklist),
		Whitelist:    stoplist.New(cfg.Whitelist),
		UseStopwords: cfg.UseStopwords,
	}

	base := segment.NewLexicon(e.dict)
	single := singlechar.Analyze(texts, base)
	if err := stageDone(ctx, "single-char stats"); err != nil {
		return nil, err
	}

	disc, err := discover.Discover(ctx, texts, discover.Thresholds{
		MinFreq: int64(cfg.NewWordMinFreq),
		Entropy: cfg.EntropyThreshold,
		PMI:     cfg.PMIThreshold,
	}, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}
	discovered := base.Extend(disc.Entries())
	logger.Info().Int("words", len(disc.Candidates)).Msg("new words discovered")
	if err := stageDone(ctx, "discovery"); err != nil {
		return nil, err
	}

	merged := merge.Find(texts, discovered, merge.Thresholds{
		MinFreq: int64(cfg.MergeMinFreq),
		MinProb: cfg.MergeMinProb,
		MaxLen:  cfg.MergeMaxLen,
	})
	final := discovered.Extend(merged.Entries())
	logger.Info().Int("pairs", len(merged.Order)).Int("injected", final.Injected()).Msg("word pairs merged")
	if err := stageDone(ctx, "merge"); err != nil {
		return nil, err
	}

	words, err := wordstats.Count(ctx, corp, final, policy, cfg.SampleCount, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("word count: %w", err)
	}
	if err := stageDone(ctx, "word count"); err != nil {
		return nil, err
	}

	fun := funstats.Collect(corp, funstats.Options{
		NightHours:   config.HourSet(cfg.NightOwlHours),
		MorningHours: config.HourSet(cfg.EarlyBirdHours),
	})
	if err := stageDone(ctx, "fun statistics"); err != nil {
		return nil, err
	}

	kept := rank.Filter(words.Freq, single, rank.FilterOptions{
		MinLen:         cfg.MinWordLen,
		MaxLen:         cfg.MaxWordLen,
		MinFreq:        cfg.MinFreq,
		SingleMinRatio: cfg.SingleMinSoloRatio,
		SingleMinCount: cfg.SingleMinSoloCount,
		Policy:         policy,
	})
	samples := rank.Downsample(words.Samples, kept, cfg.SampleCount, e.rng())

	rep := report.Report{
		ChatName:     corp.ChatName,
		MessageCount: len(corp.Messages),
		TopWords: rank.Words(kept, words.Contributors, samples, corp, rank.WordOptions{
			TopN:            cfg.TopN,
			ContributorTopN: cfg.ContributorTopN,
			SampleCount:     cfg.SampleCount,
			Policy:          policy,
		}),
		Rankings:         rank.Leaderboards(fun, corp, cfg.RankTopN),
		HourDistribution: report.HourDistribution(fun.Hours),
	}

	logger.Info().
		Int("kept_words", len(kept)).
		Int("top_words", len(rep.TopWords)).
		Dur("elapsed", time.Since(started)).
		Msg("analysis complete")

	return &Result{
		Report:     rep,
		Discovered: disc.Words(),
		Merged:     merged.Top(-1),
		Stats:      fun,
		Words:      words,
		Senders:    corp.Senders(),
	}, nil
}

// SuggestStopwords proposes stopwords from the word spread of a finished
// run. Words already on the engine's stopword list are not suggested.
func (e *Engine) SuggestStopwords(res *Result, th stoplist.Thresholds) []stoplist.Candidate {
	return stoplist.Suggest(res.Words.Spread(res.Senders), th, e.stopwords)
}

// AnalyzeFile loads an export from path and analyzes it.
func (e *Engine) AnalyzeFile(ctx context.Context, path string) (*Result, error) {
	chat, err := corpus.Load(path)
	if err != nil {
		return nil, err
	}
	return e.Analyze(ctx, chat)
}

func (e *Engine) rng() *rand.Rand {
	seed := e.cfg.SampleSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func stageDone(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("analysis stopped after %s: %w", stage, err)
	}
	return nil
}
