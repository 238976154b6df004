// Package wordstats tokenizes every eligible message and accumulates word
// frequencies, per-sender contributions and sample messages.
package wordstats

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/cognicore/chatreport/pkg/chatreport/corpus"
	"github.com/cognicore/chatreport/pkg/chatreport/segment"
	"github.com/cognicore/chatreport/pkg/chatreport/shard"
	"github.com/cognicore/chatreport/pkg/chatreport/stoplist"
)

// SampleFactor bounds how many samples are collected per word relative to
// the number finally shown.
const SampleFactor = 3

// Stats holds the word counts of one run.
type Stats struct {
	Freq         map[string]int
	Contributors map[string]map[corpus.ID]int
	Samples      map[string][]string
}

// Counter accumulates Stats.
type Counter struct {
	tok       segment.Tokenizer
	policy    stoplist.Policy
	sampleCap int
	stats     Stats
}

// NewCounter creates a counter keeping up to sampleCount*SampleFactor
// samples per word.
func NewCounter(tok segment.Tokenizer, policy stoplist.Policy, sampleCount int) *Counter {
	return &Counter{
		tok:       tok,
		policy:    policy,
		sampleCap: sampleCount * SampleFactor,
		stats: Stats{
			Freq:         make(map[string]int),
			Contributors: make(map[string]map[corpus.ID]int),
			Samples:      make(map[string][]string),
		},
	}
}

// Add counts the words of one cleaned message sent by sender.
// Senders that are not Valid count towards frequency only.
func (c *Counter) Add(sender corpus.ID, cleaned string) {
	if cleaned == "" {
		return
	}
	for _, word := range c.tok.Tokenize(cleaned) {
		word = strings.TrimSpace(word)
		if word == "" || c.policy.Stopped(word) || c.policy.Blocked(word) {
			continue
		}

		c.stats.Freq[word]++
		if sender.Valid() {
			byUser := c.stats.Contributors[word]
			if byUser == nil {
				byUser = make(map[corpus.ID]int)
				c.stats.Contributors[word] = byUser
			}
			byUser[sender]++
		}
		if len(c.stats.Samples[word]) < c.sampleCap {
			c.stats.Samples[word] = append(c.stats.Samples[word], cleaned)
		}
	}
}

// Stats returns the accumulated counts.
func (c *Counter) Stats() Stats {
	return c.stats
}

// Merge folds a counter that saw later messages into c. Samples keep
// their first-come order, so merging shards in message order matches a
// sequential pass.
func (c *Counter) Merge(later *Counter) {
	for word, n := range later.stats.Freq {
		c.stats.Freq[word] += n
	}
	for word, byUser := range later.stats.Contributors {
		dst := c.stats.Contributors[word]
		if dst == nil {
			dst = make(map[corpus.ID]int, len(byUser))
			c.stats.Contributors[word] = dst
		}
		for id, n := range byUser {
			dst[id] += n
		}
	}
	for word, list := range later.stats.Samples {
		have := c.stats.Samples[word]
		room := c.sampleCap - len(have)
		if room <= 0 {
			continue
		}
		c.stats.Samples[word] = append(have, list[:min(room, len(list))]...)
	}
}

// Count runs the counter over every eligible message of corp, sharded
// across workers goroutines. A cancelled ctx stops every shard.
func Count(ctx context.Context, corp *corpus.Corpus, tok segment.Tokenizer, policy stoplist.Policy, sampleCount, workers int) (Stats, error) {
	counters, err := shard.Map(ctx, len(corp.Messages), workers, func(ctx context.Context, r shard.Range) (*Counter, error) {
		c := NewCounter(tok, policy, sampleCount)
		for i := r.Start; i < r.End; i++ {
			if err := shard.Cancelled(ctx, i-r.Start); err != nil {
				return nil, err
			}
			c.Add(corp.Messages[i].Sender.UIN, corp.Cleaned[i])
		}
		return c, nil
	})
	if err != nil {
		return Stats{}, err
	}
	if len(counters) == 0 {
		return NewCounter(tok, policy, sampleCount).Stats(), nil
	}
	out := counters[0]
	for _, c := range counters[1:] {
		out.Merge(c)
	}
	log.Debug().Int("distinct_words", len(out.stats.Freq)).Int("shards", len(counters)).Msg("word count")
	return out.stats, nil
}
