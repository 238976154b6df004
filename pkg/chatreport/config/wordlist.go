package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// WordList is the YAML layout shared by stopword, blacklist and whitelist files.
type WordList struct {
	Terms []string `yaml:"terms"`
}

// LoadWordList reads a word list either as YAML (`terms: [...]`) or as plain
// text with one word per line. Blank lines and lines starting with '#' are
// ignored in the plain format.
func LoadWordList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read word list %s: %w", path, err)
	}

	if looksLikeYAMLList(data) {
		var wl WordList
		if err := yaml.Unmarshal(data, &wl); err != nil {
			return nil, fmt.Errorf("parse word list %s: %w", path, err)
		}
		return trimWords(wl.Terms), nil
	}

	var words []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan word list %s: %w", path, err)
	}
	return words, nil
}

func looksLikeYAMLList(data []byte) bool {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return strings.HasPrefix(line, "terms:")
	}
	return false
}

func trimWords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, w := range in {
		w = strings.TrimSpace(w)
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}
