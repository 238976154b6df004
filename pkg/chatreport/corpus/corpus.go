package corpus

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cognicore/chatreport/pkg/chatreport/textutil"
)

// Options controls which messages take part in a run.
type Options struct {
	FilterBots     bool
	BotSubMsgTypes []int
	StartDate      string // YYYY-MM-DD, inclusive, UTC+8
	EndDate        string // YYYY-MM-DD, inclusive, UTC+8
}

// Corpus is the eligible message set of one run together with the derived
// sender identity map and the cleaned text of every message.
type Corpus struct {
	ChatName string

	// Messages are the eligible messages in export order.
	Messages []*Message
	// Cleaned is parallel to Messages; empty strings are kept so that
	// indices line up.
	Cleaned []string

	names    map[ID]string
	senderOf map[ID]ID
}

// Build filters chat by date range and bot classification, then derives the
// sender identity map and cleaned texts. Build never fails: malformed date
// bounds are logged and ignored.
func Build(chat *Chat, opts Options) *Corpus {
	c := &Corpus{
		ChatName: chat.Name,
		names:    make(map[ID]string),
		senderOf: make(map[ID]ID),
	}

	start, end := dateBounds(opts.StartDate, opts.EndDate)
	bots := make(map[int]struct{}, len(opts.BotSubMsgTypes))
	for _, code := range opts.BotSubMsgTypes {
		bots[code] = struct{}{}
	}

	var outOfRange, botCount int
	for i := range chat.Messages {
		msg := &chat.Messages[i]
		if !inRange(msg, start, end) {
			outOfRange++
			continue
		}
		if opts.FilterBots {
			if _, isBot := bots[int(msg.Raw.SubMsgType)]; isBot {
				botCount++
				continue
			}
		}
		c.Messages = append(c.Messages, msg)
	}

	if start != nil || end != nil {
		log.Info().
			Str("start", opts.StartDate).
			Str("end", opts.EndDate).
			Int("total", len(chat.Messages)).
			Int("dropped", outOfRange).
			Msg("date range filter applied")
	}
	if botCount > 0 {
		log.Debug().Int("bot_messages", botCount).Msg("bot messages filtered")
	}

	c.buildIdentities()

	c.Cleaned = make([]string, len(c.Messages))
	for i, msg := range c.Messages {
		c.Cleaned[i] = textutil.Clean(msg.Text())
	}
	return c
}

// Texts returns the non-empty cleaned texts in order.
func (c *Corpus) Texts() []string {
	out := make([]string, 0, len(c.Cleaned))
	for _, t := range c.Cleaned {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Name returns the chosen display name for a sender id.
func (c *Corpus) Name(id ID) string {
	if name, ok := c.names[id]; ok {
		return name
	}
	return fmt.Sprintf("未知用户(%s)", string(id))
}

// SenderOf resolves a message id to the id of its sender.
func (c *Corpus) SenderOf(messageID ID) (ID, bool) {
	if !messageID.Valid() {
		return "", false
	}
	sender, ok := c.senderOf[messageID]
	return sender, ok
}

// Senders returns how many distinct senders have a chosen name.
func (c *Corpus) Senders() int {
	return len(c.names)
}

// buildIdentities picks one display name per sender: the most recent name
// that is not just the id, else the last sendMemberName, else the last seen
// name, else the id itself.
func (c *Corpus) buildIdentities() {
	history := make(map[ID][]string)
	memberNames := make(map[ID]string)
	var order []ID

	for _, msg := range c.Messages {
		uin := msg.Sender.UIN
		if !uin.Valid() {
			continue
		}
		if _, seen := history[uin]; !seen {
			history[uin] = nil
			order = append(order, uin)
		}

		name := strings.TrimSpace(msg.Sender.Name)
		if name != "" {
			names := history[uin]
			if len(names) == 0 || names[len(names)-1] != name {
				history[uin] = append(names, name)
			}
		}
		if member := strings.TrimSpace(msg.Raw.SendMemberName); member != "" {
			memberNames[uin] = member
		}
		if msg.MessageID.Valid() {
			c.senderOf[msg.MessageID] = uin
		}
	}

	for _, uin := range order {
		c.names[uin] = chooseName(uin, history[uin], memberNames[uin])
	}
}

func chooseName(uin ID, names []string, member string) string {
	for i := len(names) - 1; i >= 0; i-- {
		if names[i] != string(uin) {
			return names[i]
		}
	}
	if member != "" {
		return member
	}
	if len(names) > 0 {
		return names[len(names)-1]
	}
	return string(uin)
}

func dateBounds(startDate, endDate string) (*time.Time, *time.Time) {
	var start, end *time.Time
	if startDate != "" {
		if t, err := textutil.ParseDate(startDate); err != nil {
			log.Warn().Err(err).Str("start_date", startDate).Msg("malformed start date, ignoring bound")
		} else {
			start = &t
		}
	}
	if endDate != "" {
		if t, err := textutil.ParseDate(endDate); err != nil {
			log.Warn().Err(err).Str("end_date", endDate).Msg("malformed end date, ignoring bound")
		} else {
			last := t.Add(24*time.Hour - time.Nanosecond)
			end = &last
		}
	}
	return start, end
}

func inRange(msg *Message, start, end *time.Time) bool {
	if start == nil && end == nil {
		return true
	}
	ts, ok := textutil.ParseTime(string(msg.Timestamp))
	if !ok {
		return false
	}
	if start != nil && ts.Before(*start) {
		return false
	}
	if end != nil && ts.After(*end) {
		return false
	}
	return true
}
