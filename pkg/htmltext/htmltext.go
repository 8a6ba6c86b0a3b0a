// Package htmltext turns HTML mail bodies into readable plain text.
package htmltext

import (
	"html"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var (
	scriptStyleRe = regexp.MustCompile(`(?is)<(script|style)\b[^>]*>.*?</(script|style)\s*>`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)
	blankLinesRe  = regexp.MustCompile(`\n{3,}`)

	imageRe    = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkRe     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	emphasisRe = regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`)
	headingRe  = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	quoteRe    = regexp.MustCompile(`(?m)^>[ \t]?`)
	escapeRe   = regexp.MustCompile(`\\([\\*_\[\]()#+\-.!>|~` + "`" + `])`)
)

// ToText strips script and style blocks and converts the remaining markup to
// text. If conversion fails, tags are removed with a regexp instead.
func ToText(s string) string {
	s = scriptStyleRe.ReplaceAllString(s, "")

	text, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		text = html.UnescapeString(tagRe.ReplaceAllString(s, " "))
	} else {
		text = stripMarkdown(text)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// stripMarkdown drops the link, emphasis, heading and quote syntax the
// converter emits, then unescapes literal punctuation.
func stripMarkdown(s string) string {
	s = imageRe.ReplaceAllString(s, "$1")
	s = linkRe.ReplaceAllString(s, "$1")
	s = emphasisRe.ReplaceAllString(s, "$2")
	s = headingRe.ReplaceAllString(s, "")
	s = quoteRe.ReplaceAllString(s, "")
	return escapeRe.ReplaceAllString(s, "$1")
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
