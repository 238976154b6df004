package corpus

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/chatreport/pkg/chatreport/internalerr"
	"github.com/cognicore/chatreport/pkg/chatreport/textutil"
)

const sampleExport = `{
  "chatInfo": {"name": "测试群"},
  "messages": [
    {"messageId": "1", "timestamp": "2024-01-01T01:00:00Z",
     "sender": {"uin": 1001, "name": "1001"},
     "content": {"text": "早上好"},
     "rawMessage": {"subMsgType": 0, "sendMemberName": "小明"}},
    {"messageId": "2", "timestamp": "2024-01-02T01:00:00Z",
     "sender": {"uin": "1002", "name": "阿强"},
     "content": {"text": "[图片]", "resources": [{"type": "image"}]},
     "rawMessage": {"subMsgType": 0}},
    {"messageId": "3", "timestamp": "2024-01-03T01:00:00Z",
     "sender": {"uin": "1002", "name": "强哥"},
     "content": {"text": "机器人消息"},
     "rawMessage": {"subMsgType": 577}},
    {"messageId": "4", "timestamp": "2024-01-04T01:00:00Z",
     "sender": {"uin": "1003", "name": "1003"},
     "content": {"text": "hi"},
     "rawMessage": {"subMsgType": 0}}
  ]
}`

func decodeSample(t *testing.T) *Chat {
	t.Helper()
	chat, err := Decode(strings.NewReader(sampleExport))
	require.NoError(t, err)
	return chat
}

func TestDecode(t *testing.T) {
	chat := decodeSample(t)

	assert.Equal(t, "测试群", chat.Name)
	require.Len(t, chat.Messages, 4)
	assert.Equal(t, ID("1001"), chat.Messages[0].Sender.UIN, "numeric uin decodes to text")
	assert.Equal(t, "早上好", chat.Messages[0].Text())
}

func TestDecodeBOMAndDefaultName(t *testing.T) {
	chat, err := Decode(strings.NewReader("\xef\xbb\xbf" + `{"messages": []}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultChatName, chat.Name)
	assert.Empty(t, chat.Messages)
}

func TestDecodeContractViolations(t *testing.T) {
	cases := map[string]string{
		"messages not a list": `{"messages": {"a": 1}}`,
		"missing messages":    `{"chatName": "x"}`,
		"missing text":        `{"messages": [{"messageId": "1", "content": {}}]}`,
		"not json":            `nope`,
		"message not object":  `{"messages": ["hello"]}`,
		"text not a string":   `{"messages": [{"content": {"text": 5}}]}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))
		})
	}
}

func TestDecodeLooselyTypedFields(t *testing.T) {
	input := `{"messages": [
	  {"messageId": 7, "timestamp": 1704074400,
	   "sender": {"uin": "1001", "name": 42},
	   "content": {"text": "@B 你好", "resources": "none", "reply": {"referencedMessageId": 3}},
	   "rawMessage": {"subMsgType": "577", "elements": [
	     {"elementType": "1", "textElement": {"content": "@B", "atType": "1", "atUid": 1002}},
	     {"elementType": 2, "picElement": "oops"},
	     {"elementType": 1, "textElement": {"content": "x", "atType": "all"}}
	   ]}},
	  {"timestamp": "1704074400000", "sender": {"uin": 1002}, "content": {"text": "ok"}}
	]}`

	chat, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, chat.Messages, 2)

	m := chat.Messages[0]
	assert.Equal(t, ID("7"), m.MessageID)
	assert.Equal(t, Timestamp("1704074400"), m.Timestamp)
	assert.Equal(t, ID("1001"), m.Sender.UIN)
	assert.Empty(t, m.Sender.Name, "wrong-typed name is dropped")
	assert.Empty(t, m.Content.Resources)
	require.NotNil(t, m.Content.Reply)
	assert.Equal(t, ID("3"), m.Content.Reply.ReferencedMessageID)
	assert.Equal(t, Code(577), m.Raw.SubMsgType)

	require.Len(t, m.Raw.Elements, 3)
	te := m.Raw.Elements[0].TextElement
	require.NotNil(t, te)
	assert.Equal(t, Code(ElementText), m.Raw.Elements[0].ElementType)
	assert.Equal(t, Code(1), te.AtType)
	assert.Equal(t, ID("1002"), te.AtUID)
	assert.Nil(t, m.Raw.Elements[1].PicElement)
	assert.Zero(t, m.Raw.Elements[2].TextElement.AtType)
	assert.Equal(t, "x", m.Raw.Elements[2].TextElement.Content)

	hour, ok := textutil.Hour(string(m.Timestamp))
	require.True(t, ok)
	assert.Equal(t, 10, hour)
	hour, ok = textutil.Hour(string(chat.Messages[1].Timestamp))
	require.True(t, ok)
	assert.Equal(t, 10, hour)

	c := Build(chat, Options{FilterBots: true, BotSubMsgTypes: []int{577}})
	assert.Len(t, c.Messages, 1, "quoted bot code still filters")
}

func TestBuildFiltersBots(t *testing.T) {
	c := Build(decodeSample(t), Options{FilterBots: true, BotSubMsgTypes: []int{577, 65}})

	require.Len(t, c.Messages, 3)
	require.Len(t, c.Cleaned, 3)
	assert.Equal(t, "", c.Cleaned[1], "placeholder-only text cleans to empty")
	assert.Equal(t, []string{"早上好", "hi"}, c.Texts())
}

func TestBuildKeepsBotsWhenDisabled(t *testing.T) {
	c := Build(decodeSample(t), Options{FilterBots: false, BotSubMsgTypes: []int{577}})
	assert.Len(t, c.Messages, 4)
}

func TestNameSelection(t *testing.T) {
	c := Build(decodeSample(t), Options{FilterBots: true, BotSubMsgTypes: []int{577}})

	assert.Equal(t, "小明", c.Name("1001"), "name equal to uin falls back to member name")
	assert.Equal(t, "阿强", c.Name("1002"), "bot message names are not observed")
	assert.Equal(t, "1003", c.Name("1003"), "no alternative keeps the last name")
	assert.Equal(t, "未知用户(9999)", c.Name("9999"))
}

func TestNameSelectionMostRecent(t *testing.T) {
	c := Build(decodeSample(t), Options{})
	assert.Equal(t, "强哥", c.Name("1002"))
}

func TestZeroSenderHasNoIdentity(t *testing.T) {
	text := "系统消息"
	chat := decodeSample(t)
	chat.Messages = append(chat.Messages, Message{
		MessageID: "5",
		Sender:    Sender{UIN: "0", Name: "系统"},
		Content:   Content{Text: &text},
	})

	c := Build(chat, Options{})
	assert.Equal(t, 3, c.Senders())
	assert.Equal(t, "未知用户(0)", c.Name("0"))
	_, ok := c.SenderOf("5")
	assert.False(t, ok, "messages from the zero uin resolve to no sender")
}

func TestSenderOf(t *testing.T) {
	c := Build(decodeSample(t), Options{FilterBots: true, BotSubMsgTypes: []int{577}})

	sender, ok := c.SenderOf("2")
	require.True(t, ok)
	assert.Equal(t, ID("1002"), sender)

	_, ok = c.SenderOf("3")
	assert.False(t, ok, "bot messages are not resolvable")
	_, ok = c.SenderOf("")
	assert.False(t, ok)
}

func TestDateRange(t *testing.T) {
	chat := decodeSample(t)

	c := Build(chat, Options{StartDate: "2024-01-02", EndDate: "2024-01-03"})
	require.Len(t, c.Messages, 2)
	assert.Equal(t, ID("2"), c.Messages[0].MessageID)
	assert.Equal(t, ID("3"), c.Messages[1].MessageID)
}

func TestMalformedDateRangeIsIgnored(t *testing.T) {
	c := Build(decodeSample(t), Options{StartDate: "2024/01/02", EndDate: "soon"})
	assert.Len(t, c.Messages, 4)
}
