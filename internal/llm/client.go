package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cognicore/chatreport/pkg/chatreport/report"
)

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string

	HTTPClient *http.Client
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

const commentSystem = "你是一个毒舌又幽默的群聊年度报告点评员。根据给出的热词、出现次数、主要使用者和原句，" +
	"用一句不超过40字的中文锐评这个词在群里的地位。不要复述数据，不要加引号。"

// Configured reports whether the client has an endpoint to call.
func (c *Client) Configured() bool {
	return c != nil && c.BaseURL != "" && c.Model != ""
}

// CommentWord asks the model for a one-line comment on a chat word.
func (c *Client) CommentWord(ctx context.Context, w report.Word) (string, error) {
	out, err := c.Chat(ctx, commentSystem, formatWordPrompt(w))
	if err != nil {
		return "", err
	}
	out = strings.Trim(strings.TrimSpace(out), "\"“”")
	if out == "" {
		return "", fmt.Errorf("llm: empty comment for %q", w.Word)
	}
	return out, nil
}

func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("llm: base URL and model required")
	}
	messages := []chatMessage{{Role: "system", Content: system}, {Role: "user", Content: user}}
	payload, err := c.send(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response")
	}
	return payload.Choices[0].Message.Content, nil
}

func (c *Client) send(ctx context.Context, messages []chatMessage) (*chatResponse, error) {
	reqBody, err := json.Marshal(chatRequest{Model: c.Model, Messages: messages})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("llm: decode response (status %d): %w", resp.StatusCode, err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("llm error: %s", payload.Error.Message)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("llm: status %d", resp.StatusCode)
	}
	return &payload, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}

func formatWordPrompt(w report.Word) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "热词：%s\n出现次数：%d\n", w.Word, w.Freq)
	if len(w.Contributors) > 0 {
		buf.WriteString("主要使用者：")
		for i, c := range w.Contributors {
			if i == 3 {
				break
			}
			if i > 0 {
				buf.WriteString("、")
			}
			fmt.Fprintf(&buf, "%s(%d次)", c.Name, c.Count)
		}
		buf.WriteString("\n")
	}
	if len(w.Samples) > 0 {
		buf.WriteString("原句：\n")
		for i, s := range w.Samples {
			if i == 5 {
				break
			}
			fmt.Fprintf(&buf, "- %s\n", s)
		}
	}
	return buf.String()
}

var fallbacks = []string{
	"「%s」出现得太频繁，建议申请群内商标。",
	"离开了「%s」，这个群大概会失去一半的话题。",
	"「%s」：本群年度通货，流通量惊人。",
	"有人说「%s」，就有人跟着说「%s」。",
	"「%s」已经不是一个词，是一种群体信仰。",
}

// Fallback returns a canned comment for word. The same word always gets the
// same comment.
func Fallback(word string) string {
	h := fnv.New32a()
	h.Write([]byte(word))
	tmpl := fallbacks[int(h.Sum32()%uint32(len(fallbacks)))]
	return strings.ReplaceAll(tmpl, "%s", word)
}

// Commenter produces one comment per word. Words the model cannot comment
// on get their Fallback.
type Commenter struct {
	Client *Client
}

// Comments returns word -> comment for every word in words.
func (c Commenter) Comments(ctx context.Context, words []report.Word) map[string]string {
	out := make(map[string]string, len(words))
	if !c.Client.Configured() {
		for _, w := range words {
			out[w.Word] = Fallback(w.Word)
		}
		return out
	}
	for _, w := range words {
		comment, err := c.Client.CommentWord(ctx, w)
		if err != nil {
			log.Warn().Err(err).Str("word", w.Word).Msg("word comment failed, using fallback")
			comment = Fallback(w.Word)
		}
		out[w.Word] = comment
	}
	return out
}
