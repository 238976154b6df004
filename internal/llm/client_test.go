package llm

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/cognicore/chatreport/pkg/chatreport/report"
)

type roundTrip func(*http.Request) *http.Response

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req), nil
}

func respond(status int, body string) roundTrip {
	return func(req *http.Request) *http.Response {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
		}
	}
}

var word = report.Word{
	Word:         "原神",
	Freq:         42,
	Contributors: []report.Contributor{{Name: "小明", UIN: "1001", Count: 30}},
	Samples:      []string{"原神启动"},
}

func TestCommentWordSuccess(t *testing.T) {
	client := &Client{
		BaseURL: "https://api.test/v1/chat/completions",
		Model:   "gpt-test",
		APIKey:  "key",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				if got := req.Header.Get("Authorization"); got != "Bearer key" {
					t.Errorf("Authorization = %q", got)
				}
				body, _ := io.ReadAll(req.Body)
				for _, want := range []string{"原神", "42", "小明(30次)", "原神启动"} {
					if !strings.Contains(string(body), want) {
						t.Errorf("expected %q in payload", want)
					}
				}
				return respond(200, `{"choices":[{"message":{"role":"assistant","content":" “启动！” "}}]}`)(req)
			}),
		},
	}

	out, err := client.CommentWord(context.Background(), word)
	if err != nil {
		t.Fatalf("CommentWord: %v", err)
	}
	if out != "启动！" {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestChatErrors(t *testing.T) {
	cases := map[string]roundTrip{
		"api error":  respond(200, `{"error":{"message":"bad"}}`),
		"bad status": respond(502, `{}`),
		"no choices": respond(200, `{"choices":[]}`),
		"not json":   respond(200, `<html>`),
	}
	for name, rt := range cases {
		t.Run(name, func(t *testing.T) {
			client := &Client{BaseURL: "https://api.test", Model: "m", HTTPClient: &http.Client{Transport: rt}}
			if _, err := client.Chat(context.Background(), "s", "u"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestChatRequiresEndpoint(t *testing.T) {
	if _, err := (&Client{}).Chat(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error without base URL")
	}
}

func TestFallbackStable(t *testing.T) {
	a, b := Fallback("原神"), Fallback("原神")
	if a != b {
		t.Fatalf("fallback not stable: %q vs %q", a, b)
	}
	if !strings.Contains(a, "原神") || strings.Contains(a, "%s") {
		t.Fatalf("fallback should name the word: %q", a)
	}
}

func TestCommenterFallsBack(t *testing.T) {
	words := []report.Word{word, {Word: "哈哈"}}

	unconfigured := Commenter{}.Comments(context.Background(), words)
	if unconfigured["原神"] != Fallback("原神") || unconfigured["哈哈"] != Fallback("哈哈") {
		t.Fatalf("unexpected comments: %v", unconfigured)
	}

	failing := Commenter{Client: &Client{
		BaseURL:    "https://api.test",
		Model:      "m",
		HTTPClient: &http.Client{Transport: respond(500, `{"error":{"message":"down"}}`)},
	}}
	got := failing.Comments(context.Background(), words)
	if len(got) != 2 || got["原神"] != Fallback("原神") {
		t.Fatalf("unexpected comments: %v", got)
	}
}
