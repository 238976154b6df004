// Package textutil normalizes exported message text and timestamps.
package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	urlPattern         = regexp.MustCompile(`https?://[^\s]+`)
	placeholderPattern = regexp.MustCompile(`\[[^\[\]\s]{1,12}\]`)
	mentionPattern     = regexp.MustCompile(`@\S+`)
	spacePattern       = regexp.MustCompile(`\s+`)
)

// Clean normalizes raw message text to the comparable form every statistic
// works on: HTML entities decoded, URLs, @mentions and bracketed media
// placeholders such as [图片] removed, whitespace collapsed.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = html.UnescapeString(text)
	text = urlPattern.ReplaceAllString(text, " ")
	text = placeholderPattern.ReplaceAllString(text, " ")
	text = mentionPattern.ReplaceAllString(text, " ")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// HasURL reports whether text carries an http(s) link.
func HasURL(text string) bool {
	return strings.Contains(text, "http://") || strings.Contains(text, "https://")
}
