package narrator

import (
	"regexp"
	"strings"
)

// paraSentinel stands in for a paragraph break while single line breaks are collapsed.
const paraSentinel = "\x00PARA\x00"

var (
	storyRe      = regexp.MustCompile(`(?s)<story>(.*?)</story>`)
	paragraphRe  = regexp.MustCompile(`\n{2,}`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// ExtractStory returns the first <story>…</story> body, or the whole text when
// the markers are missing. The result is normalized.
func ExtractStory(text string) (story string, tagged bool) {
	if m := storyRe.FindStringSubmatch(text); m != nil {
		return Normalize(m[1]), true
	}
	return Normalize(text), false
}

// Normalize collapses single line breaks and whitespace runs to one space while
// keeping paragraph breaks (two or more newlines) as exactly "\n\n".
// The steps must run in this order or paragraphs are lost.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = paragraphRe.ReplaceAllString(text, paraSentinel)
	text = strings.ReplaceAll(text, "\n", " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, paraSentinel, "\n\n")
	return strings.TrimSpace(text)
}
