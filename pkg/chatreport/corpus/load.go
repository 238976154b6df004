package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cognicore/chatreport/pkg/chatreport/internalerr"
)

// DefaultChatName is used when the export names no chat.
const DefaultChatName = "未知群聊"

// Chat is a decoded export: a chat name and its messages in export order.
type Chat struct {
	Name     string
	Messages []Message
}

// Load decodes a chat export from a file.
func Load(path string) (*Chat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export %s: %w", path, err)
	}
	defer f.Close()

	chat, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode export %s: %w", path, err)
	}
	return chat, nil
}

// Decode reads a chat export. A non-array "messages" value, an undecodable
// message, or a message without a content.text field violates the input
// contract and is reported once as ErrInvalidInput.
func Decode(r io.Reader) (*Chat, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidInput, err)
	}

	var rawMessages []json.RawMessage
	if len(export.Messages) == 0 {
		return nil, fmt.Errorf("%w: missing messages", internalerr.ErrInvalidInput)
	}
	if err := json.Unmarshal(export.Messages, &rawMessages); err != nil {
		return nil, fmt.Errorf("%w: messages is not a list", internalerr.ErrInvalidInput)
	}

	chat := &Chat{
		Name:     export.ChatName,
		Messages: make([]Message, len(rawMessages)),
	}
	if chat.Name == "" {
		chat.Name = export.ChatInfo.Name
	}
	if chat.Name == "" {
		chat.Name = DefaultChatName
	}

	for i, raw := range rawMessages {
		if err := json.Unmarshal(raw, &chat.Messages[i]); err != nil {
			return nil, fmt.Errorf("%w: message %d: %v", internalerr.ErrInvalidInput, i, err)
		}
		if chat.Messages[i].Content.Text == nil {
			return nil, fmt.Errorf("%w: message %d has no text field", internalerr.ErrInvalidInput, i)
		}
	}

	return chat, nil
}
