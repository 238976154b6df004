package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/chatreport/pkg/chatreport/internalerr"
)

// Config holds every tunable of one analysis run.
type Config struct {
	// Discovery
	NewWordMinFreq   int     `yaml:"new_word_min_freq"`
	EntropyThreshold float64 `yaml:"entropy_threshold"`
	PMIThreshold     float64 `yaml:"pmi_threshold"`

	// Merging
	MergeMinFreq int     `yaml:"merge_min_freq"`
	MergeMinProb float64 `yaml:"merge_min_prob"`
	MergeMaxLen  int     `yaml:"merge_max_len"`

	// Filtering
	MinWordLen         int     `yaml:"min_word_len"`
	MaxWordLen         int     `yaml:"max_word_len"`
	MinFreq            int     `yaml:"min_freq"`
	SingleMinSoloRatio float64 `yaml:"single_min_solo_ratio"`
	SingleMinSoloCount int     `yaml:"single_min_solo_count"`

	// Output shaping
	TopN            int `yaml:"top_n"`
	SampleCount     int `yaml:"sample_count"`
	ContributorTopN int `yaml:"contributor_top_n"`
	RankTopN        int `yaml:"rank_top_n"`

	// Word lists
	Whitelist    []string `yaml:"whitelist"`
	Blacklist    []string `yaml:"blacklist"`
	Stopwords    []string `yaml:"stopwords"`
	UseStopwords bool     `yaml:"use_stopwords"`

	// Time-of-day windows (hours in UTC+8)
	NightOwlHours  []int `yaml:"night_owl_hours"`
	EarlyBirdHours []int `yaml:"early_bird_hours"`

	// Bot filtering
	FilterBotMessages bool  `yaml:"filter_bot_messages"`
	BotSubMsgTypes    []int `yaml:"bot_sub_msg_types"`

	// Optional inclusive date range, YYYY-MM-DD in UTC+8
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`

	// Resources
	DictionaryPath string `yaml:"dictionary_path"`
	StopwordsPath  string `yaml:"stopwords_path"`

	// Execution
	Workers    int   `yaml:"workers"`
	SampleSeed int64 `yaml:"sample_seed"`
}

// Default returns the thresholds the report has always shipped with.
func Default() Config {
	return Config{
		NewWordMinFreq:     20,
		EntropyThreshold:   0.5,
		PMIThreshold:       2.0,
		MergeMinFreq:       30,
		MergeMinProb:       0.3,
		MergeMaxLen:        6,
		MinWordLen:         1,
		MaxWordLen:         10,
		MinFreq:            1,
		SingleMinSoloRatio: 0.01,
		SingleMinSoloCount: 5,
		TopN:               200,
		SampleCount:        10,
		ContributorTopN:    10,
		RankTopN:           10,
		NightOwlHours:      []int{0, 1, 2, 3, 4, 5},
		EarlyBirdHours:     []int{6, 7, 8},
		FilterBotMessages:  true,
		BotSubMsgTypes:     []int{577, 65},
		Workers:            1,
	}
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports values no run could honour. Malformed dates are not
// checked here: they disable the bound at run time instead.
func (c Config) Validate() error {
	checks := []struct {
		ok  bool
		msg string
	}{
		{c.NewWordMinFreq >= 0, "new_word_min_freq must be >= 0"},
		{c.MergeMinFreq >= 0, "merge_min_freq must be >= 0"},
		{c.MergeMinProb >= 0 && c.MergeMinProb <= 1, "merge_min_prob must be within [0,1]"},
		{c.MergeMaxLen >= 2, "merge_max_len must be >= 2"},
		{c.MinWordLen >= 1, "min_word_len must be >= 1"},
		{c.MaxWordLen >= c.MinWordLen, "max_word_len must be >= min_word_len"},
		{c.SampleCount >= 0, "sample_count must be >= 0"},
		{c.TopN >= 0, "top_n must be >= 0"},
		{c.ContributorTopN >= 0, "contributor_top_n must be >= 0"},
		{c.RankTopN >= 0, "rank_top_n must be >= 0"},
		{c.Workers >= 0, "workers must be >= 0"},
		{validHours(c.NightOwlHours), "night_owl_hours must be within 0..23"},
		{validHours(c.EarlyBirdHours), "early_bird_hours must be within 0..23"},
		{disjoint(c.NightOwlHours, c.EarlyBirdHours), "night_owl_hours and early_bird_hours must not overlap"},
	}
	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("%w: %s", internalerr.ErrInvalidConfig, chk.msg)
		}
	}
	return nil
}

func validHours(hours []int) bool {
	for _, h := range hours {
		if h < 0 || h > 23 {
			return false
		}
	}
	return true
}

func disjoint(a, b []int) bool {
	set := HourSet(a)
	for _, h := range b {
		if h >= 0 && h < 24 && set[h] {
			return false
		}
	}
	return true
}

// HourSet turns an hour list into a 24-slot membership table.
func HourSet(hours []int) [24]bool {
	var set [24]bool
	for _, h := range hours {
		if h >= 0 && h < 24 {
			set[h] = true
		}
	}
	return set
}
