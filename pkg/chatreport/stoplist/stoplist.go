package stoplist

import "sort"

// List is a set of words.
type List struct {
	words map[string]struct{}
}

// New creates a list from any number of word slices. Empty words are ignored.
func New(sources ...[]string) *List {
	l := &List{words: make(map[string]struct{})}
	for _, src := range sources {
		for _, w := range src {
			l.Add(w)
		}
	}
	return l
}

// Contains checks if word is on the list. A nil list contains nothing.
func (l *List) Contains(word string) bool {
	if l == nil {
		return false
	}
	_, ok := l.words[word]
	return ok
}

// Add adds a word to the list
func (l *List) Add(word string) {
	if word == "" {
		return
	}
	l.words[word] = struct{}{}
}

// Remove removes a word from the list
func (l *List) Remove(word string) {
	delete(l.words, word)
}

// Len returns the number of words
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.words)
}

// All returns all words, sorted
func (l *List) All() []string {
	if l == nil {
		return nil
	}
	result := make([]string, 0, len(l.words))
	for w := range l.words {
		result = append(result, w)
	}
	sort.Strings(result)
	return result
}

// Policy combines the three word lists of a run.
// A whitelisted word overrides the blacklist; stopwords only apply when
// UseStopwords is set.
type Policy struct {
	Stopwords    *List
	Blacklist    *List
	Whitelist    *List
	UseStopwords bool
}

// Stopped reports whether word is dropped as a stopword.
func (p Policy) Stopped(word string) bool {
	return p.UseStopwords && p.Stopwords.Contains(word)
}

// Blocked reports whether word is blacklisted and not rescued by the whitelist.
func (p Policy) Blocked(word string) bool {
	return p.Blacklist.Contains(word) && !p.Whitelist.Contains(word)
}

// Allowed reports whether word is whitelisted.
func (p Policy) Allowed(word string) bool {
	return p.Whitelist.Contains(word)
}
