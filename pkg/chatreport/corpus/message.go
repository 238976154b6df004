package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Element types found in rawMessage.elements.
const (
	ElementText         = 1
	ElementPicture      = 2
	ElementReply        = 7
	ElementArk          = 10
	ElementMultiForward = 16
)

// ID is a sender or message identifier. Exports write it either as a JSON
// string or as a number; both decode to the same textual form.
type ID string

// UnmarshalJSON accepts strings, numbers and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	s, err := scalarText(data)
	if err != nil {
		return err
	}
	*id = ID(s)
	return nil
}

// Valid reports whether the id identifies someone ("" and "0" do not).
func (id ID) Valid() bool {
	return id != "" && id != "0"
}

// String formats the id for logs.
func (id ID) String() string {
	if id == "" {
		return "<none>"
	}
	return string(id)
}

// Timestamp is an exported time: an ISO 8601 string, or unix seconds or
// milliseconds written either as a string or as a number.
type Timestamp string

// UnmarshalJSON accepts strings, numbers and null.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	s, err := scalarText(data)
	if err != nil {
		return err
	}
	*ts = Timestamp(s)
	return nil
}

// Code is a numeric classification (element type, sub-message type,
// mention type). Some exporters quote it.
type Code int

// UnmarshalJSON accepts integers, numeric strings and null.
func (c *Code) UnmarshalJSON(data []byte) error {
	s, err := scalarText(data)
	if err != nil {
		return err
	}
	if s == "" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("code %q is not an integer", s)
	}
	*c = Code(n)
	return nil
}

func scalarText(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// Export is the top-level document written by the chat exporter.
type Export struct {
	ChatName string          `json:"chatName"`
	ChatInfo ChatInfo        `json:"chatInfo"`
	Messages json.RawMessage `json:"messages"`
}

// ChatInfo carries the fallback chat name.
type ChatInfo struct {
	Name string `json:"name"`
}

// Message is one exported chat record. It is never mutated after decoding.
//
// Decoding is field by field: a member of the wrong shape is logged and
// left at its zero value instead of failing the message. Only a message
// that is not a JSON object fails.
type Message struct {
	MessageID ID         `json:"messageId"`
	Timestamp Timestamp  `json:"timestamp"`
	Sender    Sender     `json:"sender"`
	Content   Content    `json:"content"`
	Raw       RawMessage `json:"rawMessage"`
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var out Message
	err := decodeFields(data, "message", []field{
		{"messageId", &out.MessageID},
		{"timestamp", &out.Timestamp},
		{"sender", &out.Sender},
		{"content", &out.Content},
		{"rawMessage", &out.Raw},
	})
	if err != nil {
		return err
	}
	*m = out
	return nil
}

// Sender identifies the author.
type Sender struct {
	UIN  ID     `json:"uin"`
	Name string `json:"name"`
}

func (s *Sender) UnmarshalJSON(data []byte) error {
	var out Sender
	err := decodeFields(data, "sender", []field{
		{"uin", &out.UIN},
		{"name", &out.Name},
	})
	if err != nil {
		return err
	}
	*s = out
	return nil
}

// Content is the exporter's normalized view of the message.
type Content struct {
	Text      *string           `json:"text"`
	Resources []Resource        `json:"resources"`
	Reply     *Reply            `json:"reply"`
	Emojis    []json.RawMessage `json:"emojis"`
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var out Content
	err := decodeFields(data, "content", []field{
		{"text", &out.Text},
		{"resources", &out.Resources},
		{"reply", &out.Reply},
		{"emojis", &out.Emojis},
	})
	if err != nil {
		return err
	}
	*c = out
	return nil
}

// Resource is an embedded media descriptor.
type Resource struct {
	Type string `json:"type"`
}

// Reply references the message being answered.
type Reply struct {
	ReferencedMessageID ID `json:"referencedMessageId"`
}

// RawMessage is the client's original structure.
type RawMessage struct {
	SubMsgType     Code      `json:"subMsgType"`
	SendMemberName string    `json:"sendMemberName"`
	Elements       []Element `json:"elements"`
}

func (r *RawMessage) UnmarshalJSON(data []byte) error {
	var out RawMessage
	err := decodeFields(data, "rawMessage", []field{
		{"subMsgType", &out.SubMsgType},
		{"sendMemberName", &out.SendMemberName},
		{"elements", &out.Elements},
	})
	if err != nil {
		return err
	}
	*r = out
	return nil
}

// Element is one typed structured element.
type Element struct {
	ElementType  Code             `json:"elementType"`
	TextElement  *TextElement     `json:"textElement,omitempty"`
	PicElement   *PicElement      `json:"picElement,omitempty"`
	MultiForward *json.RawMessage `json:"multiForwardMsgElement,omitempty"`
}

func (e *Element) UnmarshalJSON(data []byte) error {
	var out Element
	err := decodeFields(data, "element", []field{
		{"elementType", &out.ElementType},
		{"textElement", &out.TextElement},
		{"picElement", &out.PicElement},
		{"multiForwardMsgElement", &out.MultiForward},
	})
	if err != nil {
		return err
	}
	*e = out
	return nil
}

// TextElement carries text and optional @-mention data.
type TextElement struct {
	Content string `json:"content"`
	AtType  Code   `json:"atType"`
	AtUID   ID     `json:"atUid"`
}

func (t *TextElement) UnmarshalJSON(data []byte) error {
	var out TextElement
	err := decodeFields(data, "textElement", []field{
		{"content", &out.Content},
		{"atType", &out.AtType},
		{"atUid", &out.AtUID},
	})
	if err != nil {
		return err
	}
	*t = out
	return nil
}

// PicElement describes a picture; emoji-style stickers carry a bracketed summary.
type PicElement struct {
	Summary string `json:"summary"`
}

// Text returns the message text, or "" when absent.
func (m *Message) Text() string {
	if m.Content.Text == nil {
		return ""
	}
	return *m.Content.Text
}

// IsEmojiSummary reports whether a picture summary marks a sticker, e.g. "[动画表情]".
func IsEmojiSummary(summary string) bool {
	return len(summary) >= 2 && summary[0] == '[' && summary[len(summary)-1] == ']'
}

type field struct {
	name   string
	target any
}

// decodeFields decodes the named members of a JSON object into their
// targets. Absent members keep their zero value; a member that fails to
// decode is logged, reset to zero and skipped. It fails only when data is
// not an object (null decodes to all zero values).
func decodeFields(data []byte, where string, fields []field) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return fmt.Errorf("%s is not an object: %w", where, err)
	}
	for _, f := range fields {
		raw, ok := members[f.name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, f.target); err != nil {
			reflect.ValueOf(f.target).Elem().SetZero()
			log.Warn().Err(err).Str("field", where+"."+f.name).Msg("skipping malformed field")
		}
	}
	return nil
}
