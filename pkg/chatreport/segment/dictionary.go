// Package segment tokenizes Chinese chat text with a base dictionary and
// per-run vocabulary overlays.
package segment

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-ego/gse"
	"github.com/rs/zerolog/log"
)

// Dictionary is the base vocabulary: word → frequency. It is loaded once and
// only read afterwards, so one instance can back any number of concurrent runs.
type Dictionary struct {
	freq   map[string]float64
	total  float64
	maxLen int

	// builtin answers lookups missing from freq.
	builtin *gse.Segmenter
}

// NewDictionary creates an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{freq: make(map[string]float64), maxLen: 1}
}

// LoadDictionary reads a dictionary file.
func LoadDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary %s: %w", path, err)
	}
	defer f.Close()

	dict, err := ParseDictionary(f)
	if err != nil {
		return nil, fmt.Errorf("parse dictionary %s: %w", path, err)
	}
	return dict, nil
}

// ParseDictionary reads the jieba text format, one entry per line:
//
//	word frequency [part-of-speech]
//
// Lines with a missing or non-numeric frequency are skipped.
func ParseDictionary(r io.Reader) (*Dictionary, error) {
	dict := NewDictionary()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	skipped := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			skipped++
			continue
		}
		freq, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || freq < 0 {
			skipped++
			continue
		}
		dict.add(fields[0], freq)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	log.Debug().Int("words", len(dict.freq)).Int("skipped", skipped).Msg("dictionary loaded")
	return dict, nil
}

func (d *Dictionary) add(word string, freq float64) {
	if old, ok := d.freq[word]; ok {
		d.total -= old
	}
	d.freq[word] = freq
	d.total += freq
	if n := utf8.RuneCountInString(word); n > d.maxLen {
		d.maxLen = n
	}
}

// Frequency returns a word's frequency and existence.
func (d *Dictionary) Frequency(word string) (float64, bool) {
	if f, ok := d.freq[word]; ok {
		return f, true
	}
	if d.builtin != nil {
		if f, _, ok := d.builtin.Find(word); ok {
			return f, true
		}
	}
	return 0, false
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	if d.builtin != nil {
		return len(d.freq) + d.builtin.Dict.NumTokens()
	}
	return len(d.freq)
}
