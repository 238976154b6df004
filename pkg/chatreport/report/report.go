// Package report defines the exported analysis document.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Report is the document produced by one analysis run.
type Report struct {
	ChatName         string           `json:"chatName"`
	MessageCount     int              `json:"messageCount"`
	TopWords         []Word           `json:"topWords"`
	Rankings         Rankings         `json:"rankings"`
	HourDistribution HourDistribution `json:"hourDistribution"`
}

// Word is one entry of the ranked word list.
type Word struct {
	Word         string        `json:"word"`
	Freq         int           `json:"freq"`
	Contributors []Contributor `json:"contributors"`
	Samples      []string      `json:"samples"`
	Comment      string        `json:"comment,omitempty"`
}

// Contributor is a sender who used a word.
type Contributor struct {
	Name  string `json:"name"`
	UIN   string `json:"uin"`
	Count int    `json:"count"`
}

// Entry is one row of a leaderboard.
type Entry struct {
	Name  string `json:"name"`
	UIN   string `json:"uin"`
	Value Value  `json:"value"`
}

// Value is a leaderboard value: a count, or preformatted text.
type Value struct {
	Count int
	Text  string
}

// MarshalJSON writes Text as a string when set, Count otherwise.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Text != "" {
		return json.Marshal(v.Text)
	}
	return json.Marshal(v.Count)
}

// UnmarshalJSON accepts a number or a string.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*v = Value{}
		return json.Unmarshal(data, &v.Text)
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("leaderboard value: %w", err)
	}
	*v = Value{Count: n}
	return nil
}

func (v Value) String() string {
	if v.Text != "" {
		return v.Text
	}
	return strconv.Itoa(v.Count)
}

// Leaderboard is a named ranking of senders.
type Leaderboard struct {
	Name    string
	Entries []Entry
}

// Rankings keeps leaderboards in presentation order. It encodes as a JSON
// object whose keys appear in that order.
type Rankings []Leaderboard

// Get returns the leaderboard called name.
func (r Rankings) Get(name string) (Leaderboard, bool) {
	for _, lb := range r {
		if lb.Name == name {
			return lb, true
		}
	}
	return Leaderboard{}, false
}

// MarshalJSON writes an ordered object.
func (r Rankings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, lb := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(lb.Name)
		if err != nil {
			return nil, err
		}
		entries := lb.Entries
		if entries == nil {
			entries = []Entry{}
		}
		val, err := json.Marshal(entries)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object, keeping key order.
func (r *Rankings) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*r = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("rankings: expected object, got %v", tok)
	}
	var out Rankings
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("rankings: expected key, got %v", tok)
		}
		var entries []Entry
		if err := dec.Decode(&entries); err != nil {
			return fmt.Errorf("rankings %q: %w", name, err)
		}
		out = append(out, Leaderboard{Name: name, Entries: entries})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}

// HourDistribution counts messages per UTC+8 hour. It encodes as an object
// with keys "0" to "23", all present.
type HourDistribution [24]int

// Total sums every bucket.
func (h HourDistribution) Total() int {
	var n int
	for _, v := range h {
		n += v
	}
	return n
}

// Peak returns the busiest hour, the earliest one on ties.
func (h HourDistribution) Peak() int {
	peak := 0
	for hour, n := range h {
		if n > h[peak] {
			peak = hour
		}
	}
	return peak
}

// MarshalJSON writes the 24 buckets in hour order.
func (h HourDistribution) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for hour, n := range h {
		if hour > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:%d", strconv.Itoa(hour), n)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an hour-keyed object. Missing hours are zero.
func (h *HourDistribution) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*h = HourDistribution{}
	for key, n := range raw {
		hour, err := strconv.Atoi(key)
		if err != nil || hour < 0 || hour > 23 {
			return fmt.Errorf("hour distribution: bad hour %q", key)
		}
		h[hour] = n
	}
	return nil
}
