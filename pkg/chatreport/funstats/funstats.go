// Package funstats walks the eligible messages once, in export order, and
// collects per-sender engagement counters plus an hour-of-day histogram.
package funstats

import (
	"math"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/cognicore/chatreport/pkg/chatreport/corpus"
	"github.com/cognicore/chatreport/pkg/chatreport/textutil"
)

// Kind names one per-sender counter.
type Kind int

const (
	Messages Kind = iota
	Chars
	Images
	Forwards
	Replies
	Replied
	Ats
	Ated
	Emojis
	Links
	Night
	Morning
	Repeats
	numKinds
)

var kindNames = [numKinds]string{
	"messages", "chars", "images", "forwards", "replies", "replied",
	"ats", "ated", "emojis", "links", "night", "morning", "repeats",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "unknown"
	}
	return kindNames[k]
}

// Kinds lists every counter in declaration order.
func Kinds() []Kind {
	out := make([]Kind, numKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// MinMessagesForAverage is the message count from which a sender gets a
// chars-per-message value.
const MinMessagesForAverage = 10

const minRepeatLen = 2

// Options carries the time-of-day windows, indexed by UTC+8 hour.
type Options struct {
	NightHours   [24]bool
	MorningHours [24]bool
}

// Stats is the result of one pass.
type Stats struct {
	counters        [numKinds]map[corpus.ID]int
	CharsPerMessage map[corpus.ID]float64
	Hours           [24]int
}

func newStats() *Stats {
	s := &Stats{CharsPerMessage: make(map[corpus.ID]float64)}
	for i := range s.counters {
		s.counters[i] = make(map[corpus.ID]int)
	}
	return s
}

// Counter returns the per-sender values of kind. The map must not be modified.
func (s *Stats) Counter(kind Kind) map[corpus.ID]int {
	return s.counters[kind]
}

// Get returns one sender's value for kind.
func (s *Stats) Get(kind Kind, id corpus.ID) int {
	return s.counters[kind][id]
}

func (s *Stats) add(kind Kind, id corpus.ID, n int) {
	if n == 0 {
		return
	}
	s.counters[kind][id] += n
}

// HourTotal is the sum of the histogram.
func (s *Stats) HourTotal() int {
	var n int
	for _, v := range s.Hours {
		n += v
	}
	return n
}

// Collect runs the pass over corp. It must see messages in order, so it
// always runs on a single goroutine.
func Collect(corp *corpus.Corpus, opts Options) *Stats {
	s := newStats()
	var (
		prevClean  string
		prevSender corpus.ID
	)

	for i, msg := range corp.Messages {
		clean := corp.Cleaned[i]
		hour, hasHour := textutil.Hour(string(msg.Timestamp))
		if hasHour {
			s.Hours[hour]++
		}

		sender := msg.Sender.UIN
		if !sender.Valid() {
			continue
		}

		s.add(Messages, sender, 1)
		s.add(Chars, sender, utf8.RuneCountInString(clean))

		el := scanElements(msg.Raw.Elements)
		for _, target := range el.mentions {
			s.add(Ats, sender, 1)
			s.add(Ated, target, 1)
		}

		if hasImageResource(msg.Content.Resources) && !el.emojiImage {
			s.add(Images, sender, 1)
		}
		if el.forward {
			s.add(Forwards, sender, 1)
		}
		if reply := msg.Content.Reply; reply != nil {
			s.add(Replies, sender, 1)
			if target, ok := corp.SenderOf(reply.ReferencedMessageID); ok {
				s.add(Replied, target, 1)
			}
		}
		s.add(Emojis, sender, len(msg.Content.Emojis)+el.emojiCount)
		if el.link {
			s.add(Links, sender, 1)
		}

		if hasHour {
			if opts.NightHours[hour] {
				s.add(Night, sender, 1)
			}
			if opts.MorningHours[hour] {
				s.add(Morning, sender, 1)
			}
		}

		if utf8.RuneCountInString(clean) >= minRepeatLen && clean == prevClean && sender != prevSender {
			s.add(Repeats, sender, 1)
		}
		if clean != "" {
			prevClean = clean
		}
		prevSender = sender
	}

	for id, n := range s.counters[Messages] {
		if n >= MinMessagesForAverage {
			s.CharsPerMessage[id] = roundTenth(float64(s.counters[Chars][id]) / float64(n))
		}
	}

	log.Debug().
		Int("senders", len(s.counters[Messages])).
		Int("timed_messages", s.HourTotal()).
		Msg("fun statistics")
	return s
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

type elementScan struct {
	emojiImage bool
	emojiCount int
	forward    bool
	link       bool
	mentions   []corpus.ID
}

func scanElements(elements []corpus.Element) elementScan {
	var out elementScan
	for _, el := range elements {
		switch el.ElementType {
		case corpus.ElementReply:
			continue
		case corpus.ElementPicture:
			if el.PicElement != nil && corpus.IsEmojiSummary(el.PicElement.Summary) {
				out.emojiImage = true
				out.emojiCount++
			}
		case corpus.ElementText:
			te := el.TextElement
			if te == nil {
				continue
			}
			if te.AtType > 0 && te.AtUID.Valid() {
				out.mentions = append(out.mentions, te.AtUID)
			}
			if !out.link && textutil.HasURL(te.Content) {
				out.link = true
			}
		case corpus.ElementArk:
			out.link = true
		case corpus.ElementMultiForward:
			if el.MultiForward != nil {
				out.forward = true
			}
		}
	}
	return out
}

func hasImageResource(resources []corpus.Resource) bool {
	for _, r := range resources {
		if r.Type == "image" {
			return true
		}
	}
	return false
}
